package pathutil

import "time"

// Clock abstracts wall-clock and monotonic time so tests can control
// "now" without sleeping. Production code uses SystemClock; tests use a
// FixedClock or a manually-advanced clock.
type Clock interface {
	// Now returns the current wall-clock time, used for persisted
	// timestamps (frecency, mtime comparisons).
	Now() time.Time
	// Monotonic returns a monotonically increasing duration since an
	// arbitrary epoch, used only for measuring elapsed durations
	// (query_duration_ms) where wall-clock adjustments must not matter.
	Monotonic() time.Duration
}

// SystemClock is the production Clock backed by the OS clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Monotonic() time.Duration {
	return time.Duration(time.Now().UnixNano())
}

// FixedClock is a Clock that always returns the same instant, for
// deterministic tests of frecency decay and tie-breaking.
type FixedClock struct {
	At time.Time
}

func (f FixedClock) Now() time.Time { return f.At }

func (f FixedClock) Monotonic() time.Duration { return time.Duration(f.At.UnixNano()) }
