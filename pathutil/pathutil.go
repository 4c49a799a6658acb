// Package pathutil provides path normalization and relative-path helpers
// shared by the file index, ignore matcher, and scorer.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToSlash normalizes a path to forward slashes for consistent matching
// across platforms, the same convention the index and ignore matcher use
// for every relative path they store or compare.
func ToSlash(path string) string {
	return filepath.ToSlash(path)
}

// Canonicalize resolves symlinks and returns an absolute, cleaned path.
// Falls back to the absolute (unresolved) path if the target does not
// exist or cannot be resolved, so a deleted-mid-walk file still yields a
// usable path instead of an error.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, nil
	}
	return resolved, nil
}

// Relative computes path relative to base, normalized to forward slashes.
// Falls back to the absolute path if it cannot be made relative (e.g. on
// Windows when base and path are on different volumes).
func Relative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return ToSlash(path)
	}
	return ToSlash(rel)
}

// Name returns the final path component.
func Name(path string) string {
	return filepath.Base(path)
}

// Extension returns the lowercase file extension without the leading dot,
// or the empty string if there is none.
func Extension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// HasHiddenComponent reports whether any path component (other than the
// base itself) begins with a dot, the default predicate §4.1/§9 call for
// before any host-supplied ignore glob is consulted.
func HasHiddenComponent(relativePath string) bool {
	if relativePath == "" || relativePath == "." {
		return false
	}
	for _, part := range strings.Split(ToSlash(relativePath), "/") {
		if part == "" || part == "." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Depth returns the number of path separators in a relative path, used by
// the scorer's path_bonus depth penalty.
func Depth(relativePath string) int {
	if relativePath == "" {
		return 0
	}
	return strings.Count(ToSlash(relativePath), "/")
}

// Dir returns the directory portion of a path, normalized to forward
// slashes, matching Rust's Path::parent() semantics used by the distance
// penalty: the root-level file has an empty directory.
func Dir(path string) string {
	dir := filepath.Dir(ToSlash(path))
	if dir == "." {
		return ""
	}
	return dir
}

// SplitSegments splits a forward-slash path into its non-empty components.
func SplitSegments(path string) []string {
	parts := strings.Split(ToSlash(path), "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
