// Package gitstatus implements the git tracker of §4.4: discovers the
// enclosing worktree for a base directory and merges index-vs-HEAD and
// worktree-vs-index status into the taxonomy fileindex.GitStatus defines,
// applying results onto live FileRecords by absolute path. No library in
// the reference pack touches git plumbing directly, so this wires
// go-git/go-git/v5, the ecosystem-standard pure-Go implementation, named
// rather than grounded (see DESIGN.md).
package gitstatus

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/nrupatunga/fff.nvim/fileindex"
)

// ErrGitUnavailable is returned by Refresh when the repository is
// corrupt or locked (§4.4, §7). The tracker keeps serving last-known
// statuses.
var ErrGitUnavailable = errors.New("gitstatus: repository unavailable")

// Index is the subset of fileindex.Index the tracker needs: resolving
// an absolute path to its live record, and enumerating every currently
// indexed record to classify gitignored paths that git status itself
// never reports.
type Index interface {
	RecordByAbsolutePath(absPath string) (*fileindex.FileRecord, bool)
	Snapshot() *fileindex.Snapshot
}

// Tracker owns the discovered repository, if any, for one base
// directory. A Tracker with no repository is inert: every file reports
// GitStatusUnknown and Refresh is a no-op (§4.4).
type Tracker struct {
	repo          *git.Repository
	workdir       string
	gitDir        string
	ignoreMatcher gitignore.Matcher
	logger        *slog.Logger
}

// Discover locates the git working tree enclosing basePath. A missing
// repository is not an error: the returned Tracker is simply inert.
func Discover(basePath string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	repo, err := git.PlainOpenWithOptions(basePath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		logger.Debug("no enclosing git worktree found", "base", basePath, "error", err)
		return &Tracker{logger: logger}
	}

	wt, err := repo.Worktree()
	if err != nil {
		logger.Debug("git repository has no worktree", "base", basePath, "error", err)
		return &Tracker{logger: logger}
	}

	patterns, err := gitignore.ReadPatterns(wt.Filesystem, nil)
	if err != nil {
		logger.Debug("failed to read gitignore patterns", "base", basePath, "error", err)
	}

	return &Tracker{
		repo:          repo,
		workdir:       wt.Filesystem.Root(),
		gitDir:        filepath.Join(wt.Filesystem.Root(), ".git"),
		ignoreMatcher: gitignore.NewMatcher(patterns),
		logger:        logger,
	}
}

// Active reports whether a repository was found.
func (t *Tracker) Active() bool {
	return t.repo != nil
}

// Refresh enumerates the status iterator of the repository, merging
// index-vs-HEAD and worktree-vs-index bits into fileindex.GitStatus, and
// writes the result onto matching FileRecords in ix. Returns the number
// of records whose status actually changed (§4.4).
func (t *Tracker) Refresh(ix Index) (int, error) {
	if !t.Active() {
		return 0, nil
	}

	wt, err := t.repo.Worktree()
	if err != nil {
		return 0, ErrGitUnavailable
	}

	statusMap, err := wt.Status()
	if err != nil {
		return 0, ErrGitUnavailable
	}

	updated := 0
	changed := make(map[string]bool, len(statusMap))

	for relPath, fileStatus := range statusMap {
		if fileStatus == nil {
			continue
		}
		changed[relPath] = true
		absPath := filepath.Join(t.workdir, relPath)
		rec, ok := ix.RecordByAbsolutePath(absPath)
		if !ok {
			continue
		}
		status := classify(*fileStatus)
		if rec.SetGitStatus(status) {
			updated++
		}
	}

	// go-git's Status() only reports files that differ from HEAD, so
	// anything tracked but not listed there is clean; walk the HEAD
	// tree once to mark those explicitly rather than leaving them at
	// whatever status a prior refresh happened to set. This also records
	// every tracked path into `changed` so the ignored-path pass below
	// never reclassifies a tracked file as ignored.
	n, err := t.markCleanTrackedFiles(ix, changed)
	if err != nil {
		t.logger.Debug("failed to enumerate HEAD tree for clean status", "error", err)
	}
	updated += n

	// wt.Status() excludes gitignored paths entirely (mirroring `git
	// status`), so they are never classified by either pass above. The
	// index still surfaces them whenever ignore.Matcher's
	// RespectGitignore is off, so without this pass they are stuck at
	// GitStatusUnknown forever.
	updated += t.markIgnoredUntracked(ix, changed)

	return updated, nil
}

func (t *Tracker) markCleanTrackedFiles(ix Index, changed map[string]bool) (int, error) {
	head, err := t.repo.Head()
	if err != nil {
		return 0, err
	}
	commit, err := t.repo.CommitObject(head.Hash())
	if err != nil {
		return 0, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return 0, err
	}

	updated := 0
	err = tree.Files().ForEach(func(f *object.File) error {
		alreadyClassified := changed[f.Name]
		changed[f.Name] = true
		if alreadyClassified {
			return nil
		}
		absPath := filepath.Join(t.workdir, f.Name)
		rec, ok := ix.RecordByAbsolutePath(absPath)
		if !ok {
			return nil
		}
		if rec.SetGitStatus(fileindex.GitStatusClean) {
			updated++
		}
		return nil
	})
	return updated, err
}

// markIgnoredUntracked classifies every indexed record whose relative
// path (to the worktree root) is neither in changed (untracked-but-seen
// or tracked) nor matched by the HEAD walk, but does match the
// repository's gitignore patterns, as GitStatusIgnored (§3, §4.4).
func (t *Tracker) markIgnoredUntracked(ix Index, changed map[string]bool) int {
	if t.ignoreMatcher == nil {
		return 0
	}

	updated := 0
	for _, rec := range ix.Snapshot().Records {
		rel, err := filepath.Rel(t.workdir, rec.AbsolutePath)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		if changed[rel] {
			continue
		}
		if !t.ignoreMatcher.Match(strings.Split(rel, "/"), false) {
			continue
		}
		if rec.SetGitStatus(fileindex.GitStatusIgnored) {
			updated++
		}
	}
	return updated
}

// classify merges go-git's staging/worktree status codes into the
// taxonomy of §3. Precedence, checking staging and worktree together:
// renamed, then conflicted, then modified, then deleted, then a staged
// add, then untracked on both sides; anything else is clean.
func classify(s git.FileStatus) fileindex.GitStatus {
	switch {
	case s.Staging == git.Renamed || s.Worktree == git.Renamed:
		return fileindex.GitStatusRenamed
	case s.Staging == git.UpdatedButUnmerged || s.Worktree == git.UpdatedButUnmerged:
		return fileindex.GitStatusConflicted
	case s.Worktree == git.Modified || s.Staging == git.Modified:
		return fileindex.GitStatusModified
	case s.Worktree == git.Deleted || s.Staging == git.Deleted:
		return fileindex.GitStatusDeleted
	case s.Staging == git.Added:
		return fileindex.GitStatusAdded
	case s.Worktree == git.Untracked && s.Staging == git.Untracked:
		return fileindex.GitStatusUntracked
	case s.Worktree == git.Unmodified && s.Staging == git.Unmodified:
		return fileindex.GitStatusClean
	default:
		return fileindex.GitStatusClean
	}
}

// IsModifiedStatus reports whether status represents an uncommitted
// change (modified, added, deleted, renamed or conflicted). The scorer's
// current_file_bonus applies the same classification through its own
// score.isModifiedStatus.
func IsModifiedStatus(s fileindex.GitStatus) bool {
	switch s {
	case fileindex.GitStatusModified, fileindex.GitStatusAdded, fileindex.GitStatusDeleted,
		fileindex.GitStatusRenamed, fileindex.GitStatusConflicted:
		return true
	default:
		return false
	}
}

// IsDotGitChangeAffectingStatus reports whether a change inside the
// repository's .git directory should trigger a git status rescan,
// grounded on background_watcher.rs::is_dotgit_change_affecting_status:
// index/HEAD/refs/packed-refs/info-exclude/info-sparse-checkout and
// MERGE_HEAD/CHERRY_PICK_HEAD/REVERT_HEAD changes matter; objects/,
// logs/, and hooks/ churn does not.
func (t *Tracker) IsDotGitChangeAffectingStatus(changedAbsPath string) bool {
	if !t.Active() {
		return false
	}
	rel, err := filepath.Rel(t.gitDir, changedAbsPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)

	switch {
	case strings.HasPrefix(rel, "objects/"), strings.HasPrefix(rel, "logs/"), strings.HasPrefix(rel, "hooks/"):
		return false
	case rel == "index", rel == "index.lock", rel == "HEAD", rel == "MERGE_HEAD",
		rel == "CHERRY_PICK_HEAD", rel == "REVERT_HEAD":
		return true
	case strings.HasPrefix(rel, "refs/"), rel == "packed-refs", rel == "info/exclude", rel == "info/sparse-checkout":
		return true
	default:
		return false
	}
}

// IsGitInternalPath reports whether path falls inside the repository's
// .git directory at all, used to reject it outright from the ordinary
// file index scan/watch path (§12).
func (t *Tracker) IsGitInternalPath(absPath string) bool {
	if !t.Active() {
		return strings.Contains(filepath.ToSlash(absPath), "/.git/") || strings.HasSuffix(filepath.ToSlash(absPath), "/.git")
	}
	rel, err := filepath.Rel(t.gitDir, absPath)
	return err == nil && !strings.HasPrefix(rel, "..")
}
