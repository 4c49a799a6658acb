package fileindex

import (
	"time"

	"github.com/nrupatunga/fff.nvim/pathutil"
)

// NewTestRecord builds a FileRecord for use by other packages' tests
// (score, frecency, gitstatus) without requiring a real filesystem walk.
// AbsolutePath is synthesized from relativePath; size and modification
// time default to zero values.
func NewTestRecord(id uint64, relativePath string) *FileRecord {
	return newRecord(id, "/test/"+relativePath, relativePath, pathutil.Name(relativePath), pathutil.Extension(relativePath), 0, time.Unix(0, 0), false)
}

// NewTestRecordWithMtime is NewTestRecord with an explicit modification
// time, for tests asserting recency-dependent ordering.
func NewTestRecordWithMtime(id uint64, relativePath string, modified time.Time) *FileRecord {
	return newRecord(id, "/test/"+relativePath, relativePath, pathutil.Name(relativePath), pathutil.Extension(relativePath), 0, modified, false)
}

// NewTestRecordAt is NewTestRecord with an explicit absolute path, for
// tests (gitstatus) that resolve a record's status by real filesystem
// location rather than by synthesized "/test/..." paths.
func NewTestRecordAt(id uint64, absPath, relativePath string) *FileRecord {
	return newRecord(id, absPath, relativePath, pathutil.Name(relativePath), pathutil.Extension(relativePath), 0, time.Unix(0, 0), false)
}
