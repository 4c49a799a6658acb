// Package frecency persists per-path access history to an embedded
// key-value store and computes the frequency+recency score §4.3 folds
// into the ranker. Wiring is grounded on
// meghashyamc-wheresthat/db/kvdb/bbolt.go: a single bucket, typed
// sentinel errors, and a logger threaded through the constructor rather
// than a package-global.
package frecency

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/nrupatunga/fff.nvim/pathutil"
)

const bucketName = "frecency"

// Options tunes the decay formula and ring size. Zero value uses the
// defaults the score formula in §4.3 calls "biases toward recent-day
// activity".
type Options struct {
	DBPath          string
	CreateIfMissing bool
	RingSize        int
	Base            int64
	TauSeconds      float64
	AccessWeight    float64
	Clock           pathutil.Clock
	Logger          *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.RingSize <= 0 {
		o.RingSize = 10
	}
	if o.Base == 0 {
		o.Base = 100
	}
	if o.TauSeconds == 0 {
		o.TauSeconds = 3 * 24 * 3600 // 3 days
	}
	if o.AccessWeight == 0 {
		o.AccessWeight = 8
	}
	if o.Clock == nil {
		o.Clock = pathutil.SystemClock{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

type entry struct {
	Timestamps  []int64 `json:"timestamps"`
	AccessCount int64   `json:"access_count"`
}

type pathState struct {
	mu     sync.Mutex
	entry  entry
	loaded bool
}

type persistJob struct {
	path  string
	entry entry
}

// Store is the embedded frecency database (§4.3). Reads are O(1)
// lookups against an in-memory per-path cache; writes update that cache
// synchronously and are flushed to disk by a single background writer,
// which gives each path a total write order without serializing unrelated
// paths against each other.
type Store struct {
	db      *bolt.DB // nil in in-memory mode
	opts    Options
	states  sync.Map // path -> *pathState
	writeCh chan persistJob
	wg      sync.WaitGroup
	closed  atomic.Bool

	dbFailures atomic.Int64
}

// New opens the embedded store at opts.DBPath. Returns ErrDBUnavailable
// wrapping the underlying I/O error if the database cannot be opened.
func New(opts Options) (*Store, error) {
	opts = opts.withDefaults()

	if opts.DBPath == "" {
		return nil, fmt.Errorf("%w: empty db_path", ErrDBUnavailable)
	}
	if err := os.MkdirAll(filepath.Dir(opts.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBUnavailable, err)
	}

	db, err := bolt.Open(opts.DBPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBUnavailable, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrDBUnavailable, err)
	}

	s := &Store{db: db, opts: opts, writeCh: make(chan persistJob, 256)}
	s.wg.Add(1)
	go s.runWriter()
	return s, nil
}

// NewInMemory builds a Store with no backing database, for the
// DbUnavailable fallback path: scores are computed and cached exactly
// the same way, but TrackAccess never persists.
func NewInMemory(opts Options) *Store {
	opts = opts.withDefaults()
	return &Store{opts: opts}
}

func (s *Store) state(path string) *pathState {
	v, _ := s.states.LoadOrStore(path, &pathState{})
	return v.(*pathState)
}

// TrackAccess appends now to path's timestamp ring, bumps its access
// count, and writes through asynchronously (§4.3). Always succeeds from
// the caller's point of view; database failures are counted, not
// propagated.
func (s *Store) TrackAccess(path string) error {
	now := s.opts.Clock.Now().Unix()
	st := s.state(path)

	st.mu.Lock()
	if !st.loaded {
		st.entry = s.loadFromDB(path)
		st.loaded = true
	}
	st.entry.Timestamps = pushRing(st.entry.Timestamps, now, s.opts.RingSize)
	st.entry.AccessCount++
	snapshot := entry{Timestamps: append([]int64(nil), st.entry.Timestamps...), AccessCount: st.entry.AccessCount}
	st.mu.Unlock()

	s.enqueuePersist(path, snapshot)
	return nil
}

// ScoreFor computes the current frecency score for path, an O(1) lookup
// against the in-memory cache (§4.3).
func (s *Store) ScoreFor(path string) int64 {
	st := s.state(path)
	st.mu.Lock()
	if !st.loaded {
		st.entry = s.loadFromDB(path)
		st.loaded = true
	}
	e := st.entry
	st.mu.Unlock()
	return s.computeScore(e)
}

func (s *Store) computeScore(e entry) int64 {
	now := s.opts.Clock.Now().Unix()
	var total float64
	for _, t := range e.Timestamps {
		delta := float64(now - t)
		if delta < 0 {
			delta = 0
		}
		total += math.Floor(float64(s.opts.Base) * math.Exp(-delta/s.opts.TauSeconds))
	}
	total += s.opts.AccessWeight * math.Log(1+float64(e.AccessCount))
	if total < 0 {
		total = 0
	}
	return int64(total)
}

// pushRing appends v to the ring, dropping the oldest entry once the
// configured bound is reached.
func pushRing(ring []int64, v int64, max int) []int64 {
	ring = append(ring, v)
	if len(ring) > max {
		ring = ring[len(ring)-max:]
	}
	return ring
}

// Clear truncates the store, both the on-disk bucket and the in-memory
// cache (§4.3).
func (s *Store) Clear() error {
	s.states.Clear()
	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
}

// DBFailures reports the number of persistence failures observed since
// startup, surfaced in the coordinator's health report (§7).
func (s *Store) DBFailures() int64 {
	return s.dbFailures.Load()
}

// Close flushes pending writes and closes the database. Safe to call on
// an in-memory store.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.writeCh != nil {
		close(s.writeCh)
	}
	s.wg.Wait()
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) enqueuePersist(path string, e entry) {
	if s.db == nil || s.closed.Load() {
		return
	}
	select {
	case s.writeCh <- persistJob{path: path, entry: e}:
	default:
		// Writer is backed up; drop the oldest pending persist rather
		// than block the caller, matching §4.2's channel-full policy.
		select {
		case <-s.writeCh:
		default:
		}
		select {
		case s.writeCh <- persistJob{path: path, entry: e}:
		default:
		}
	}
}

func (s *Store) runWriter() {
	defer s.wg.Done()
	for job := range s.writeCh {
		if err := s.persist(job.path, job.entry); err != nil {
			s.dbFailures.Add(1)
			s.opts.Logger.Debug("frecency persist failed", "path", job.path, "error", err)
		}
	}
}

func (s *Store) persist(path string, e entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return fmt.Errorf("frecency: bucket not found")
		}
		return bucket.Put([]byte(path), data)
	})
}

func (s *Store) loadFromDB(path string) entry {
	if s.db == nil {
		return entry{}
	}
	var e entry
	_ = s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return nil
		}
		v := bucket.Get([]byte(path))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &e)
	})
	return e
}
