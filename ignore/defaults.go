package ignore

// DefaultIgnoreDirs are directory names that are always pruned from the
// walk, regardless of .gitignore contents. Trimmed to directories a file
// picker should never surface — unlike a content indexer, a picker still
// wants to offer build output, lockfiles, images, and docs as valid
// targets, since the user may want to open any of them.
var DefaultIgnoreDirs = map[string]bool{
	".git":          true,
	".svn":          true,
	".hg":           true,
	"node_modules":  true,
	".idea":         true,
	".vscode":       true,
	".vs":           true,
	".cache":        true,
	".parcel-cache": true,
	"__pycache__":   true,
}

// DefaultIgnoreGlobs are doublestar glob patterns matched against the
// relative path. Deliberately short: editor swap files and OS noise that
// are never useful to open, not a broad content-indexer denylist.
var DefaultIgnoreGlobs = []string{
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
	"**/Thumbs.db",
	"**/desktop.ini",
}
