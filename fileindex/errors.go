package fileindex

import "errors"

// ErrInvalidBase is returned by New when base_path is not a readable
// directory (§7 InvalidBase).
var ErrInvalidBase = errors.New("fileindex: base path is not a readable directory")

// ErrScanFailed is returned when the root walk itself fails, e.g. the
// root directory is removed mid-scan (§7 ScanFailed).
var ErrScanFailed = errors.New("fileindex: scan of root directory failed")
