package fileindex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/nrupatunga/fff.nvim/pathutil"
)

// Options configures a new Index.
type Options struct {
	// MaxThreads bounds the scan worker pool (§5). Defaults to 4.
	MaxThreads int
	// Ignore is the opaque ignore predicate consulted during scan,
	// rescan, and incremental updates (§4.1, §9).
	Ignore IgnoreChecker
	// FrecencyScorer seeds a newly discovered record's frecency_score from
	// persisted history (§3: "recomputed on load and on access events").
	// Called once per path the first time the index sees it; nil disables
	// seeding and leaves new records at zero until their next access.
	FrecencyScorer func(absPath string) int64
	Logger         *slog.Logger
	Clock          pathutil.Clock
}

// Index maintains a live, queryable snapshot of files under a base
// directory. Readers call Snapshot and never take the write lock;
// writers (Scan/Rescan/Restart/ApplyEvent) serialize through writeMu.
type Index struct {
	base           string
	ignore         IgnoreChecker
	frecencyScorer func(absPath string) int64
	logger         *slog.Logger
	clock          pathutil.Clock
	maxThreads     int

	generation atomic.Uint64
	snapshot   atomic.Pointer[Snapshot]

	writeMu     sync.Mutex
	pathToID    map[string]uint64
	byID        map[uint64]*FileRecord
	tombstones  map[uint64]struct{}
	nextID      uint64
	recordsList []*FileRecord
}

// New validates base_path and returns an Index with an empty snapshot.
// Call Scan to populate it. A scan publishes its records in one step when
// it finishes, so queries issued before then see the empty snapshot, not
// a partially scanned set.
func New(base string, opts Options) (*Index, error) {
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		return nil, ErrInvalidBase
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, ErrInvalidBase
	}

	ix := &Index{
		base:           abs,
		ignore:         opts.Ignore,
		frecencyScorer: opts.FrecencyScorer,
		logger:         opts.Logger,
		clock:          opts.Clock,
		maxThreads:     opts.MaxThreads,
		pathToID:       make(map[string]uint64),
		byID:           make(map[uint64]*FileRecord),
		tombstones:     make(map[uint64]struct{}),
	}
	if ix.maxThreads <= 0 {
		ix.maxThreads = 4
	}
	if ix.logger == nil {
		ix.logger = slog.Default()
	}
	if ix.clock == nil {
		ix.clock = pathutil.SystemClock{}
	}
	ix.snapshot.Store(&Snapshot{Generation: 0, Records: nil})
	return ix, nil
}

// Base returns the current base directory.
func (ix *Index) Base() string {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()
	return ix.base
}

// Snapshot returns the current immutable view. Safe to call concurrently
// with any writer.
func (ix *Index) Snapshot() *Snapshot {
	return ix.snapshot.Load()
}

// Generation returns the current generation counter.
func (ix *Index) Generation() uint64 {
	return ix.generation.Load()
}

// RecordByAbsolutePath is an O(1) lookup used by the git tracker and
// track_access to resolve a path to its live record without scanning the
// snapshot.
func (ix *Index) RecordByAbsolutePath(absPath string) (*FileRecord, bool) {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()
	id, ok := ix.pathToID[absPath]
	if !ok {
		return nil, false
	}
	rec, ok := ix.byID[id]
	return rec, ok
}

// Scan performs the initial full walk described in §4.1.
func (ix *Index) Scan(ctx context.Context) error {
	return ix.fullScan(ctx)
}

// Rescan performs a full re-walk, diffs it against the prior generation,
// and swaps the snapshot atomically (§4.1).
func (ix *Index) Rescan(ctx context.Context) error {
	return ix.fullScan(ctx)
}

// Restart bumps the generation, clears all records, and begins a fresh
// scan rooted at new_base (§4.1).
func (ix *Index) Restart(ctx context.Context, newBase string) error {
	info, err := os.Stat(newBase)
	if err != nil || !info.IsDir() {
		return ErrInvalidBase
	}
	abs, err := filepath.Abs(newBase)
	if err != nil {
		return ErrInvalidBase
	}

	ix.writeMu.Lock()
	ix.base = abs
	ix.pathToID = make(map[string]uint64)
	ix.byID = make(map[uint64]*FileRecord)
	ix.tombstones = make(map[uint64]struct{})
	ix.nextID = 0
	ix.recordsList = nil
	ix.writeMu.Unlock()

	gen := ix.generation.Add(1)
	ix.snapshot.Store(&Snapshot{Generation: gen, Records: nil})

	return ix.fullScan(ctx)
}

func (ix *Index) fullScan(ctx context.Context) error {
	scanned, err := ix.walk(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	seen := make(map[string]bool, len(scanned))
	newList := make([]*FileRecord, 0, len(scanned))

	for _, sf := range scanned {
		seen[sf.absPath] = true

		if id, ok := ix.pathToID[sf.absPath]; ok {
			rec := ix.byID[id]
			rec.touchStat(sf.size, sf.modified, sf.symlink)
			newList = append(newList, rec)
			continue
		}

		ix.nextID++
		id := ix.nextID
		rec := newRecord(id, sf.absPath, sf.relPath, sf.name, sf.ext, sf.size, sf.modified, sf.symlink)
		if ix.frecencyScorer != nil {
			rec.SetFrecencyScore(ix.frecencyScorer(sf.absPath))
		}
		ix.pathToID[sf.absPath] = id
		ix.byID[id] = rec
		newList = append(newList, rec)
	}

	for absPath, id := range ix.pathToID {
		if seen[absPath] {
			continue
		}
		delete(ix.pathToID, absPath)
		delete(ix.byID, id)
		ix.tombstones[id] = struct{}{}
	}

	sort.Slice(newList, func(i, j int) bool { return newList[i].IndexID < newList[j].IndexID })
	ix.recordsList = newList

	gen := ix.generation.Add(1)
	ix.snapshot.Store(&Snapshot{Generation: gen, Records: newList})

	ix.logger.Debug("scan complete", "generation", gen, "files", len(newList))
	return nil
}
