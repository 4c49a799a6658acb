// Package score implements the ranking pipeline of §4.6: composing the
// fuzzy match score with path heuristics, frecency, git status, and
// current-file bias into a single total score, grounded on score.rs
// (match_and_score_files / sort_and_truncate) and path_utils.rs
// (calculate_distance_penalty) from the original implementation this
// system is based on.
package score

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nrupatunga/fff.nvim/fileindex"
	"github.com/nrupatunga/fff.nvim/fuzzy"
	"github.com/nrupatunga/fff.nvim/pathutil"
)

// mtimeDecayTau sets how quickly a file's mtime_bonus fades as it ages,
// mirroring frecency's exponential decay shape (frecency/store.go) so a
// file edited minutes ago clearly outranks one edited weeks ago without
// a hard cutoff.
const mtimeDecayTau = 3 * 24 * time.Hour

// Weights tunes the relative contribution of each component. Zero value
// uses the defaults below.
type Weights struct {
	FrecencyAlpha   int // α_freq, percent applied to frecency_score
	NameBonus       int // β_name
	ExtBonus        int // β_ext
	DepthPenaltyPer int // penalty per path separator
	CurrentDirBonus int // bonus for files sharing the focused file's directory
	MtimeBonusMax   int // ceiling of the empty-query recency bonus, reached at age 0
}

func (w Weights) withDefaults() Weights {
	if w.FrecencyAlpha == 0 {
		w.FrecencyAlpha = 1 // frecency_bonus = frecency_score * base / 100, see matchAndScore
	}
	if w.NameBonus == 0 {
		w.NameBonus = 12
	}
	if w.ExtBonus == 0 {
		w.ExtBonus = 6
	}
	if w.DepthPenaltyPer == 0 {
		w.DepthPenaltyPer = 1
	}
	if w.CurrentDirBonus == 0 {
		w.CurrentDirBonus = 4
	}
	if w.MtimeBonusMax == 0 {
		w.MtimeBonusMax = 20
	}
	return w
}

// gitBonusByStatus implements §4.6's fixed ordering:
// modified > added > untracked > renamed > conflicted > clean > deleted > ignored > unknown.
var gitBonusByStatus = map[fileindex.GitStatus]int{
	fileindex.GitStatusModified:   40,
	fileindex.GitStatusAdded:      35,
	fileindex.GitStatusUntracked:  30,
	fileindex.GitStatusRenamed:    25,
	fileindex.GitStatusConflicted: 20,
	fileindex.GitStatusClean:      15,
	fileindex.GitStatusDeleted:    10,
	fileindex.GitStatusIgnored:    5,
	fileindex.GitStatusUnknown:    0,
}

// Breakdown mirrors §4.6's component_scores, carried through so a host
// editor can show why a result ranked where it did in debug mode.
type Breakdown struct {
	Total            int
	Fuzzy            int
	PathBonus        int
	FrecencyBonus    int
	GitBonus         int
	CurrentFileBonus int
	MtimeBonus       int
	ExactMatch       bool
	MatchType        string
}

// Result pairs one candidate file with its computed score and the byte
// positions (within RelativePath) that should be highlighted.
type Result struct {
	Record    *fileindex.FileRecord
	Score     Breakdown
	Positions []int
}

// Context bundles the parameters that influence ranking for one query,
// mirroring the original implementation's ScoringContext.
type Context struct {
	Query        string
	CurrentFile  string // relative path of the file currently open in the host editor, "" if none
	MaxResults   int
	MaxTypos     int
	ReverseOrder bool // true lists lowest-scoring-first, for UIs that render bottom-up
	Weights      Weights
	// Now anchors mtime_bonus (§4.6's empty-query ranking). Callers that
	// care about reproducible ordering (tests) set it explicitly; it
	// defaults to the wall clock otherwise.
	Now time.Time
}

func (c Context) withDefaults() Context {
	if c.MaxResults <= 0 {
		c.MaxResults = 50
	}
	if c.MaxTypos <= 0 {
		c.MaxTypos = 2
	}
	if c.Now.IsZero() {
		c.Now = time.Now()
	}
	c.Weights = c.Weights.withDefaults()
	return c
}

var specialEntryPointFiles = map[string]bool{
	"mod.rs": true, "lib.rs": true, "main.rs": true,
	"index.js": true, "index.jsx": true, "index.ts": true, "index.tsx": true,
	"index.mjs": true, "index.cjs": true, "index.vue": true,
	"__init__.py": true, "__main__.py": true,
	"main.go": true, "main.c": true,
	"index.php": true, "main.rb": true, "index.rb": true,
}

func isSpecialEntryPointFile(name string) bool {
	return specialEntryPointFiles[name]
}

// RankAndTruncate matches and scores every candidate record against ctx
// and returns the top MaxResults, in descending score order by default
// (ascending when ReverseOrder is set), alongside the total number of
// records that produced any match at all (§4.6).
func RankAndTruncate(records []*fileindex.FileRecord, ctx Context) ([]Result, int) {
	ctx = ctx.withDefaults()

	if len([]rune(ctx.Query)) < 1 {
		return SortAndTruncate(scoreAllByFrecency(records, ctx), ctx)
	}
	if len(records) == 0 {
		return nil, 0
	}
	return SortAndTruncate(matchAndScore(records, ctx), ctx)
}

func matchAndScore(records []*fileindex.FileRecord, ctx Context) []Result {
	// Case-sensitivity and capitalization bonuses are already baked into
	// fuzzy.Match's boundary scoring regardless of query casing, unlike
	// the original implementation, which toggled them only when the
	// query contained an uppercase letter.
	opts := fuzzy.Options{MaxTypos: ctx.MaxTypos}
	queryHasSeparator := strings.Contains(ctx.Query, "/")
	queryExt := pathutil.Extension(ctx.Query)

	results := make([]Result, 0, len(records))

	for _, rec := range records {
		var pathMatch *fuzzy.Result
		if queryHasSeparator {
			pathMatch = fuzzy.MatchPathPieces(ctx.Query, rec.RelativePath, opts)
		} else {
			pathMatch = fuzzy.Match(ctx.Query, rec.RelativePath, opts)
		}
		if pathMatch == nil {
			continue
		}

		fuzzyScore := pathMatch.Score

		var filenameMatch *fuzzy.Result
		if !queryHasSeparator {
			filenameMatch = fuzzy.Match(ctx.Query, rec.Name, opts)
		}

		matchType := "fuzzy_path"
		exactMatch := pathMatch.Exact
		nameOverlap := filenameMatch != nil
		filenameBonusFromShape := 0

		switch {
		case filenameMatch != nil && filenameMatch.Exact:
			filenameBonusFromShape = filenameMatch.Score / 5 * 2 // 40% bonus, exact filename match
			matchType = "exact_filename"
			exactMatch = true
		case filenameMatch != nil && filenameMatch.Score >= fuzzyScore:
			fuzzyScore = filenameMatch.Score
			filenameBonusFromShape = fuzzyScore / 6
			if filenameBonusFromShape > 30 {
				filenameBonusFromShape = 30
			}
			matchType = "fuzzy_filename"
		case filenameMatch == nil && isSpecialEntryPointFile(rec.Name):
			filenameBonusFromShape = fuzzyScore * 5 / 100
		}

		pathBonus := pathBonusFor(rec, queryExt, nameOverlap, ctx) + filenameBonusFromShape
		frecencyBonus := fuzzyScore * int(rec.FrecencyScore()) * ctx.Weights.FrecencyAlpha / 100
		gitBonus := gitBonusByStatus[rec.GitStatus()]
		currentFileBonus := currentFileBonusFor(rec, fuzzyScore, ctx)

		total := fuzzyScore + pathBonus + frecencyBonus + gitBonus + currentFileBonus

		positions := pathMatch.Positions
		if filenameMatch != nil && matchType != "fuzzy_path" {
			positions = filenamePositionsToPathPositions(rec.RelativePath, rec.Name, filenameMatch.Positions)
		}

		results = append(results, Result{
			Record: rec,
			Score: Breakdown{
				Total:            total,
				Fuzzy:            fuzzyScore,
				PathBonus:        pathBonus,
				FrecencyBonus:    frecencyBonus,
				GitBonus:         gitBonus,
				CurrentFileBonus: currentFileBonus,
				ExactMatch:       exactMatch,
				MatchType:        matchType,
			},
			Positions: positions,
		})
	}

	return results
}

// pathBonusFor implements §4.6's path_bonus: a depth penalty proportional
// to the number of path separators, a name-overlap bonus when the match
// touches the filename rather than only the directory prefix, an
// extension bonus when the query names the file's own extension, and the
// distance-from-current-file penalty carried over from the original
// implementation's path_utils.rs.
func pathBonusFor(rec *fileindex.FileRecord, queryExt string, nameOverlap bool, ctx Context) int {
	bonus := -pathutil.Depth(rec.RelativePath) * ctx.Weights.DepthPenaltyPer
	if nameOverlap {
		bonus += ctx.Weights.NameBonus
	}
	if queryExt != "" && queryExt == rec.Extension {
		bonus += ctx.Weights.ExtBonus
	}
	bonus += pathutil.DistancePenalty(ctx.CurrentFile, rec.RelativePath)
	return bonus
}

func filenamePositionsToPathPositions(relativePath, name string, namePositions []int) []int {
	offset := len(relativePath) - len(name)
	if offset < 0 {
		offset = 0
	}
	out := make([]int, len(namePositions))
	for i, p := range namePositions {
		out[i] = p + offset
	}
	return out
}

// scoreAllByFrecency implements §4.6's empty-query path: ranking by
// frecency_bonus + current-directory bias + mtime, with no fuzzy
// component at all. mtime_bonus decays exponentially with age so that on
// a freshly scanned index, where frecency_score is uniformly zero, ties
// still resolve by recency rather than falling through to the
// path-length/lexicographic tie-break (§8's "Empty query returns up to
// max_results items ordered by frecency+mtime").
func scoreAllByFrecency(records []*fileindex.FileRecord, ctx Context) []Result {
	results := make([]Result, 0, len(records))
	for _, rec := range records {
		frecencyBonus := int(rec.FrecencyScore()) * ctx.Weights.FrecencyAlpha
		gitBonus := gitBonusByStatus[rec.GitStatus()]
		mtimeBonus := mtimeBonusFor(rec, ctx)
		dirBonus := 0
		if ctx.CurrentFile != "" && pathutil.Dir(rec.RelativePath) == pathutil.Dir(ctx.CurrentFile) {
			dirBonus = ctx.Weights.CurrentDirBonus
		}
		currentFileBonus := currentFileBonusFor(rec, frecencyBonus, ctx) + dirBonus

		total := frecencyBonus + gitBonus + mtimeBonus + currentFileBonus
		results = append(results, Result{
			Record: rec,
			Score: Breakdown{
				Total:            total,
				FrecencyBonus:    frecencyBonus,
				GitBonus:         gitBonus,
				MtimeBonus:       mtimeBonus,
				CurrentFileBonus: currentFileBonus,
				MatchType:        "frecency",
			},
		})
	}
	return results
}

func mtimeBonusFor(rec *fileindex.FileRecord, ctx Context) int {
	age := ctx.Now.Sub(rec.ModifiedAt())
	if age < 0 {
		age = 0
	}
	return int(float64(ctx.Weights.MtimeBonusMax) * math.Exp(-age.Seconds()/mtimeDecayTau.Seconds()))
}

// currentFileBonusFor implements §4.6's current_file_bonus: a large
// negative bias when the candidate is the file currently focused in the
// host editor (halved when that file carries an uncommitted git change,
// since a dirty buffer is more likely to be revisited than reopened from
// a picker), zero otherwise.
func currentFileBonusFor(rec *fileindex.FileRecord, baseScore int, ctx Context) int {
	if ctx.CurrentFile == "" || rec.RelativePath != ctx.CurrentFile {
		return 0
	}
	if isModifiedStatus(rec.GitStatus()) {
		return -(baseScore / 2)
	}
	return -baseScore
}

func isModifiedStatus(s fileindex.GitStatus) bool {
	switch s {
	case fileindex.GitStatusModified, fileindex.GitStatusAdded, fileindex.GitStatusDeleted,
		fileindex.GitStatusRenamed, fileindex.GitStatusConflicted:
		return true
	default:
		return false
	}
}

// SortAndTruncate orders results per §4.6's tie-break rule and truncates
// to ctx.MaxResults. The original implementation partitions around the
// kth element before sorting only the surviving slice; Go's sort.Slice is
// already an efficient introsort, and result sets here top out in the tens
// of thousands of records, so a full stable sort followed by a slice
// truncation is simpler and fast enough without a separate partition step.
func SortAndTruncate(results []Result, ctx Context) ([]Result, int) {
	totalMatched := len(results)
	if totalMatched == 0 {
		return nil, 0
	}

	less := func(i, j int) bool {
		if results[i].Score.Total != results[j].Score.Total {
			if ctx.ReverseOrder {
				return results[i].Score.Total < results[j].Score.Total
			}
			return results[i].Score.Total > results[j].Score.Total
		}
		return tieBreakLess(results[i], results[j])
	}

	sort.SliceStable(results, less)

	if len(results) > ctx.MaxResults {
		results = results[:ctx.MaxResults]
	}
	return results, totalMatched
}

// tieBreakLess implements §4.6's tie-break order: higher fuzzy, shorter
// relative_path, lexicographically smaller relative_path, lower index_id.
func tieBreakLess(a, b Result) bool {
	if a.Score.Fuzzy != b.Score.Fuzzy {
		return a.Score.Fuzzy > b.Score.Fuzzy
	}
	la, lb := len(a.Record.RelativePath), len(b.Record.RelativePath)
	if la != lb {
		return la < lb
	}
	if a.Record.RelativePath != b.Record.RelativePath {
		return a.Record.RelativePath < b.Record.RelativePath
	}
	return a.Record.IndexID < b.Record.IndexID
}
