// Package coordinator implements the single façade of §4.7: it owns the
// file index, the background watcher, the git tracker, and the frecency
// store, and exposes the lifecycle and search operations of §6 as plain
// Go methods. Grounded on the teacher's main.go / sync.go wiring
// (ignore matcher + file index + watcher + MCP tool handlers built and
// owned by one place), generalized from a single demonstration binary's
// ad hoc wiring into a reusable, explicitly-owned value per §9's
// "re-architect global mutable state as an explicitly owned coordinator".
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nrupatunga/fff.nvim/fileindex"
	"github.com/nrupatunga/fff.nvim/frecency"
	"github.com/nrupatunga/fff.nvim/gitstatus"
	"github.com/nrupatunga/fff.nvim/ignore"
	"github.com/nrupatunga/fff.nvim/pathutil"
	"github.com/nrupatunga/fff.nvim/score"
	"github.com/nrupatunga/fff.nvim/watcher"
)

// searchBatchSize bounds how many records are scored before the
// cancellation flag is checked again (§5, §9: "a per-search stop flag
// observed at per-record-batch boundaries, not by killing threads").
const searchBatchSize = 2048

// searchToken tracks one in-flight search so a newer call can cancel it.
type searchToken struct {
	cancelled atomic.Bool
}

// Coordinator owns every long-lived resource of one file-picker session.
// Lifecycle methods (InitDB, InitFilePicker, RestartIndexInPath,
// CleanupFilePicker) serialize on lifecycleMu, matching §5's "coordinator
// serializes lifecycle calls on the calling thread"; search may run
// concurrently with those, reading only an immutable snapshot.
type Coordinator struct {
	lifecycleMu sync.Mutex

	cfg    Config
	logger *slog.Logger
	clock  pathutil.Clock

	ignoreMatcher *ignore.Matcher
	index         *fileindex.Index
	gitTracker    *gitstatus.Tracker
	frecencyStore *frecency.Store
	fsWatcher     *watcher.Watcher

	watcherDone chan struct{}

	initialized   atomic.Bool
	dbFailures    atomic.Int64
	currentSearch atomic.Pointer[searchToken]
}

// New constructs a Coordinator from cfg without performing any I/O; call
// InitDB (optional) and InitFilePicker to bring it up.
func New(cfg Config) *Coordinator {
	cfg = cfg.WithDefaults()
	logger := slog.Default()
	if cfg.Logging.Enabled && cfg.Logging.LogFile != "" {
		_, logger = InitTracing(cfg.Logging.LogFile, cfg.Logging.LogLevel)
	}
	return &Coordinator{
		cfg:    cfg,
		logger: logger,
		clock:  pathutil.SystemClock{},
	}
}

// InitTracing redirects the coordinator's logger to logFile at the given
// level and returns the resolved absolute path actually used (§6).
func (c *Coordinator) InitTracing(logFile, level string) string {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	abs, logger := InitTracing(logFile, level)
	c.logger = logger
	return abs
}

// Log returns the logger the coordinator was constructed with, for a host
// binary that wants to log through the same sink (e.g. tool handlers).
func (c *Coordinator) Log() *slog.Logger {
	return c.logger
}

// InitDB opens the frecency database at path (§6). Calling it before
// InitFilePicker lets a host pre-warm persisted scores; InitFilePicker
// also calls it lazily with the config's db_path if it hasn't run yet.
func (c *Coordinator) InitDB(path string, createIfMissing bool) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	return c.initDBLocked(path, createIfMissing)
}

func (c *Coordinator) initDBLocked(path string, createIfMissing bool) error {
	if c.frecencyStore != nil {
		c.frecencyStore.Close()
	}
	store, err := frecency.New(frecency.Options{
		DBPath:          path,
		CreateIfMissing: createIfMissing,
		Clock:           c.clock,
		Logger:          c.logger,
	})
	if err != nil {
		c.logger.Warn("frecency database unavailable, continuing with in-memory scores", "error", err)
		c.frecencyStore = frecency.NewInMemory(frecency.Options{Clock: c.clock, Logger: c.logger})
		return fmt.Errorf("%w: %v", ErrDbUnavailable, err)
	}
	c.frecencyStore = store
	return nil
}

// InitFilePicker performs the initial scan rooted at base (§4.7, §6):
// opens the frecency store if not already open, builds the ignore
// matcher, discovers a git tracker, scans the index, and starts the
// background watcher.
func (c *Coordinator) InitFilePicker(base string) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.frecencyStore == nil && c.cfg.Frecency.enabled() {
		// Failure already logs and downgrades to an in-memory store.
		_ = c.initDBLocked(c.cfg.Frecency.DBPath, true)
	}
	if c.frecencyStore == nil {
		c.frecencyStore = frecency.NewInMemory(frecency.Options{Clock: c.clock, Logger: c.logger})
	}

	c.ignoreMatcher = ignore.New(ignore.Options{RootDir: base, Globs: c.cfg.ExtraIgnore})

	ix, err := fileindex.New(base, fileindex.Options{
		MaxThreads:     int(c.cfg.MaxThreads),
		Ignore:         c.ignoreMatcher,
		FrecencyScorer: c.frecencyStore.ScoreFor,
		Logger:         c.logger,
		Clock:          c.clock,
	})
	if err != nil {
		return err
	}
	c.index = ix

	if err := c.index.Scan(context.Background()); err != nil {
		return err
	}

	c.gitTracker = gitstatus.Discover(base, c.logger)
	if c.gitTracker.Active() {
		if _, err := c.gitTracker.Refresh(c.index); err != nil {
			c.logger.Warn("initial git status refresh failed", "error", err)
		}
	}

	if err := c.startWatcherLocked(base); err != nil {
		c.logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
	}

	c.initialized.Store(true)
	return nil
}

func (c *Coordinator) startWatcherLocked(base string) error {
	w, err := watcher.New(base, c.ignoreMatcher, watcher.Options{
		GitClassifier: c.gitTracker,
		Logger:        c.logger,
	})
	if err != nil {
		return err
	}
	c.fsWatcher = w
	c.watcherDone = make(chan struct{})

	go w.Run()
	go c.pumpWatcherBatches()
	return nil
}

func (c *Coordinator) pumpWatcherBatches() {
	defer close(c.watcherDone)
	for batch := range c.fsWatcher.Batches() {
		c.applyBatch(batch)
	}
}

func (c *Coordinator) applyBatch(batch watcher.Batch) {
	if batch.FullRescanRequested {
		if err := c.index.Rescan(context.Background()); err != nil {
			c.logger.Warn("full rescan after debounce overflow failed", "error", err)
		}
	} else {
		for _, ev := range batch.Events {
			if err := c.index.ApplyEvent(ev); err != nil {
				c.logger.Debug("failed to apply watcher event", "path", ev.Path, "error", err)
			}
		}
	}

	if batch.GitRescanRequested && c.gitTracker != nil && c.gitTracker.Active() {
		if _, err := c.gitTracker.Refresh(c.index); err != nil {
			c.logger.Warn("git status refresh after watcher event failed", "error", err)
		}
	}
}

// ScanFiles forces a full rescan of the current base directory (§6).
func (c *Coordinator) ScanFiles() error {
	if !c.initialized.Load() {
		return ErrNotInitialized
	}
	return c.index.Rescan(context.Background())
}

// RestartIndexInPath tears down the current index and watcher and
// re-initializes the whole coordinator rooted at newBase (§6).
func (c *Coordinator) RestartIndexInPath(newBase string) error {
	c.lifecycleMu.Lock()
	if c.fsWatcher != nil {
		c.fsWatcher.Close()
		<-c.watcherDone
		c.fsWatcher = nil
	}
	c.lifecycleMu.Unlock()

	if !c.initialized.Load() {
		return c.InitFilePicker(newBase)
	}

	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if err := c.index.Restart(context.Background(), newBase); err != nil {
		return err
	}

	c.gitTracker = gitstatus.Discover(newBase, c.logger)
	if c.gitTracker.Active() {
		if _, err := c.gitTracker.Refresh(c.index); err != nil {
			c.logger.Warn("git status refresh after restart failed", "error", err)
		}
	}

	if err := c.startWatcherLocked(newBase); err != nil {
		c.logger.Warn("failed to restart file watcher", "error", err)
	}
	return nil
}

// TrackAccess records a visit to absPath for frecency purposes (§4.3,
// §6). The write lands in the in-memory cache synchronously and is
// persisted asynchronously, so a subsequent search within the same
// process sees it immediately without waiting on disk I/O.
func (c *Coordinator) TrackAccess(absPath string) error {
	if !c.initialized.Load() {
		return ErrNotInitialized
	}
	if err := c.frecencyStore.TrackAccess(absPath); err != nil {
		c.dbFailures.Add(1)
		return err
	}
	if rec, ok := c.index.RecordByAbsolutePath(absPath); ok {
		rec.SetFrecencyScore(c.frecencyStore.ScoreFor(absPath))
	}
	return nil
}

// RefreshGitStatus re-enumerates git status for every indexed file and
// returns the count of records whose status changed (§6).
func (c *Coordinator) RefreshGitStatus() (uint, error) {
	if !c.initialized.Load() {
		return 0, ErrNotInitialized
	}
	if c.gitTracker == nil || !c.gitTracker.Active() {
		return 0, ErrGitUnavailable
	}
	n, err := c.gitTracker.Refresh(c.index)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}

// SearchOptions carries fuzzy_search_files's optional parameters (§6).
type SearchOptions struct {
	CurrentFile string
	Cwd         string
	Debug       bool
}

// resolveCurrentFile turns current_file into a path relative to base, the
// same frame score.Context.CurrentFile and every FileRecord.RelativePath
// already live in (§4.6, §6). current_file arrives in one of three shapes:
// already base-relative (the common editor case, nothing to do), absolute
// (resolved against base directly), or relative to a working directory
// that differs from base, in which case cwd anchors it before resolving.
// An empty cwd with a non-absolute current_file preserves the historical
// behavior of treating it as already base-relative.
func resolveCurrentFile(base, cwd, currentFile string) string {
	if currentFile == "" {
		return ""
	}
	if filepath.IsAbs(currentFile) {
		return pathutil.Relative(base, currentFile)
	}
	if cwd != "" {
		return pathutil.Relative(base, filepath.Join(cwd, currentFile))
	}
	return pathutil.ToSlash(currentFile)
}

// FuzzySearchFiles implements §6's fuzzy_search_files. A new call
// cancels any search still in flight from a previous call on this
// Coordinator (§5, §9); the superseded call returns ErrCancelled.
func (c *Coordinator) FuzzySearchFiles(query string, max uint, opts SearchOptions) (SearchResponse, error) {
	if !c.initialized.Load() {
		return SearchResponse{}, ErrNotInitialized
	}

	token := &searchToken{}
	if prior := c.currentSearch.Swap(token); prior != nil {
		prior.cancelled.Store(true)
	}

	searchStart := c.clock.Monotonic()

	if max == 0 {
		max = c.cfg.MaxResults
	}

	ctx := score.Context{
		Query:       query,
		CurrentFile: resolveCurrentFile(c.index.Base(), opts.Cwd, opts.CurrentFile),
		MaxResults:  int(max),
		Now:         c.clock.Now(),
	}

	snapshot := c.index.Snapshot()
	records := snapshot.Records

	var merged []score.Result
	totalMatched := 0

	for batchStart := 0; batchStart < len(records); batchStart += searchBatchSize {
		if token.cancelled.Load() {
			return SearchResponse{}, ErrCancelled
		}
		batchEnd := batchStart + searchBatchSize
		if batchEnd > len(records) {
			batchEnd = len(records)
		}
		partial, n := score.RankAndTruncate(records[batchStart:batchEnd], ctx)
		merged = append(merged, partial...)
		totalMatched += n
	}

	final, _ := score.SortAndTruncate(merged, ctx)

	items := make([]ResultItem, 0, len(final))
	for _, r := range final {
		items = append(items, toResultItem(r, opts.Debug, query))
	}

	elapsed := c.clock.Monotonic() - searchStart
	return SearchResponse{
		Items:           items,
		TotalMatched:    uint(totalMatched),
		QueryDurationMs: uint(elapsed / time.Millisecond),
	}, nil
}

// CleanupFilePicker drains the watcher, flushes the frecency store, and
// closes the database (§5, §6). Safe to call more than once.
func (c *Coordinator) CleanupFilePicker() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.fsWatcher != nil {
		c.fsWatcher.Close()
		<-c.watcherDone
		c.fsWatcher = nil
	}

	var err error
	if c.frecencyStore != nil {
		err = c.frecencyStore.Close()
		c.frecencyStore = nil
	}

	c.initialized.Store(false)
	return err
}

// DBFailures reports the running count of frecency persistence failures,
// surfaced in health per §7's "counted and surfaced in health" policy.
func (c *Coordinator) DBFailures() int64 {
	if c.frecencyStore != nil {
		return c.frecencyStore.DBFailures()
	}
	return c.dbFailures.Load()
}

// Health is a point-in-time summary of the coordinator's state, for a
// host's status/diagnostics surface (§7's db-failure counter plus the
// index generation and base path a host would otherwise have no way to
// observe without reaching into internals).
type Health struct {
	Initialized bool
	BasePath    string
	FileCount   int
	Generation  uint64
	GitActive   bool
	DBFailures  int64
}

// Health reports the current state of the coordinator.
func (c *Coordinator) Health() Health {
	h := Health{
		Initialized: c.initialized.Load(),
		DBFailures:  c.DBFailures(),
	}
	if c.index != nil {
		h.BasePath = c.index.Base()
		h.Generation = c.index.Generation()
		h.FileCount = len(c.index.Snapshot().Records)
	}
	if c.gitTracker != nil {
		h.GitActive = c.gitTracker.Active()
	}
	return h
}
