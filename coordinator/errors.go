package coordinator

import (
	"errors"

	"github.com/nrupatunga/fff.nvim/fileindex"
	"github.com/nrupatunga/fff.nvim/frecency"
	"github.com/nrupatunga/fff.nvim/gitstatus"
)

// Error kinds of §7. InvalidBase, ScanFailed, DbUnavailable, and
// GitUnavailable are the coordinator-facing names for sentinels already
// defined by the packages that detect them; they are re-exported here so
// a caller of this package's API never needs to import fileindex,
// frecency, or gitstatus directly just to compare errors.
var (
	// ErrInvalidBase is returned when base_path does not name a
	// readable directory.
	ErrInvalidBase = fileindex.ErrInvalidBase
	// ErrScanFailed is returned when the root walk itself fails.
	ErrScanFailed = fileindex.ErrScanFailed
	// ErrDbUnavailable is returned when the frecency database cannot be
	// opened or written; callers keep operating on cached scores.
	ErrDbUnavailable = frecency.ErrDBUnavailable
	// ErrGitUnavailable is returned when a git status refresh fails
	// against a corrupt or locked repository.
	ErrGitUnavailable = gitstatus.ErrGitUnavailable
	// ErrNotInitialized is returned by any operation that requires
	// init_file_picker to have run first.
	ErrNotInitialized = errors.New("coordinator: file picker not initialized")
	// ErrCancelled is returned by fuzzy_search_files when the caller's
	// stop flag was observed mid-scan (§5, §9).
	ErrCancelled = errors.New("coordinator: search cancelled")
)
