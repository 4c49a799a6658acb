// Package watcher implements the background watcher of §4.2: a
// recursive fsnotify subscription that debounces rapid repeat events per
// path, then bridges the debounced batch into fileindex.Event values
// the coordinator applies to the live index. Grounded on the teacher's
// own fsnotify-based watcher, generalized here to emit index events and
// to classify .git-internal changes the way
// background_watcher.rs::is_dotgit_change_affecting_status does (§12).
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nrupatunga/fff.nvim/fileindex"
)

// maxBatchPaths is the debounce-batch-overflow threshold of §12: a
// single quiet-period batch touching more paths than this is treated as
// unreliable bookkeeping and triggers a full rescan instead of being
// replayed path by path.
const maxBatchPaths = 50

// EventOp represents the type of file system operation collapsed into a
// debounce window.
type EventOp int

const (
	OpCreate EventOp = iota
	OpWrite
	OpRemove
	OpRename
)

// IgnoreChecker is used by the watcher to check if a path should be
// ignored, satisfied by *ignore.Matcher.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// GitClassifier distinguishes .git-internal paths that matter for
// status tracking from ones that don't, satisfied by *gitstatus.Tracker.
// A nil GitClassifier disables git-aware coalescing entirely.
type GitClassifier interface {
	Active() bool
	IsGitInternalPath(absPath string) bool
	IsDotGitChangeAffectingStatus(absPath string) bool
}

// Batch is what one debounce quiet-period resolves to: either a set of
// normalized index events, or a signal that the batch was too large or
// too ambiguous to replay incrementally and the index should be fully
// rescanned (§4.2, §12).
type Batch struct {
	Events              []fileindex.Event
	FullRescanRequested bool
	GitRescanRequested  bool
}

// Watcher provides recursive file system watching with debouncing,
// translated into fileindex-domain events. Rapid repeat events for the
// same path within one quiet period collapse to a single entry keyed by
// path, carrying only the most recent operation — §4.2's "multiple
// events for the same path within the debounce window are collapsed
// into one" applies per batch, not globally, since a later batch must
// still see a path that changed again after the previous flush.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	ignoreChecker IgnoreChecker
	gitClassifier GitClassifier
	rootDir       string
	logger        *slog.Logger
	batches       chan Batch

	debounceInterval time.Duration
	debounceMu       sync.Mutex
	pending          map[string]EventOp
	timer            *time.Timer
	closed           bool
}

// Options configures a new Watcher.
type Options struct {
	DebounceInterval time.Duration // default 75ms, within §4.2's 50-100ms guidance
	GitClassifier    GitClassifier
	Logger           *slog.Logger
}

// New creates a recursive file watcher on the given root directory. It
// registers all non-ignored subdirectories for watching.
func New(rootDir string, ignoreChecker IgnoreChecker, opts Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if opts.DebounceInterval <= 0 {
		opts.DebounceInterval = 75 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	w := &Watcher{
		fsWatcher:        fsWatcher,
		ignoreChecker:    ignoreChecker,
		gitClassifier:    opts.GitClassifier,
		rootDir:          rootDir,
		logger:           opts.Logger,
		batches:          make(chan Batch, 16),
		debounceInterval: opts.DebounceInterval,
		pending:          make(map[string]EventOp),
	}

	err = filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootDir && ignoreChecker.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Batches returns the channel that receives translated event batches.
func (w *Watcher) Batches() <-chan Batch {
	return w.batches
}

// Run begins listening for file system events, debouncing them, and
// translating each quiet-period batch into index events. Blocks until
// the watcher is closed; run it in its own goroutine.
func (w *Watcher) Run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				w.stopDebounce()
				close(w.batches)
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if !w.ignoreChecker.ShouldIgnoreDir(path) {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	// .git-internal paths are never ordinary index entries, but some of
	// them still need to drive a git status refresh — that
	// classification happens in translate, after debouncing, so a burst
	// of git-internal churn collapses to one decision instead of one
	// fsnotify event.
	isGitInternal := w.gitClassifier != nil && w.gitClassifier.Active() && w.gitClassifier.IsGitInternalPath(path)
	if !isGitInternal && w.ignoreChecker.ShouldIgnore(path) {
		return
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.scheduleFlush(path, op)
}

// scheduleFlush records path's latest operation and (re)starts the
// quiet-period timer. A burst of events for the same path only ever
// resets the timer once per call, so a file under continuous rewrite
// never gets flushed until the writes actually stop.
func (w *Watcher) scheduleFlush(path string, op EventOp) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.closed {
		return
	}

	w.pending[path] = op
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceInterval, w.flushPending)
}

// flushPending translates the accumulated path set into a Batch and
// hands it to Batches(). Runs on the timer's own goroutine.
func (w *Watcher) flushPending() {
	w.debounceMu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.debounceMu.Unlock()
		return
	}
	raw := w.pending
	w.pending = make(map[string]EventOp)
	w.debounceMu.Unlock()

	w.batches <- w.translate(raw)
}

func (w *Watcher) stopDebounce() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

// translate implements §4.2's overflow rule and §12's .git-file
// classification: paths inside .git never become ordinary index events,
// but a HEAD/index/refs change among them requests a git status
// refresh; everything else becomes a Created/Modified/Deleted
// fileindex.Event. fsnotify cannot reliably pair the two halves of a
// rename, so OpRename is treated as a modify-in-place rather than a
// fileindex.EventRenamed — renames are only observed as such when
// produced internally by ApplyEvent's own callers.
func (w *Watcher) translate(raw map[string]EventOp) Batch {
	if len(raw) > maxBatchPaths {
		w.logger.Warn("debounce batch exceeded threshold, requesting full rescan", "paths", len(raw))
		return Batch{FullRescanRequested: true}
	}

	batch := Batch{Events: make([]fileindex.Event, 0, len(raw))}

	for path, op := range raw {
		if w.gitClassifier != nil && w.gitClassifier.Active() && w.gitClassifier.IsGitInternalPath(path) {
			if w.gitClassifier.IsDotGitChangeAffectingStatus(path) {
				batch.GitRescanRequested = true
			}
			continue
		}

		if op == OpRemove {
			batch.Events = append(batch.Events, fileindex.Event{Kind: fileindex.EventDeleted, Path: path})
			continue
		}
		batch.Events = append(batch.Events, fileindex.Event{Kind: fileindex.EventModified, Path: path})
	}

	return batch
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
