package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_Matcher_DefaultPatterns_NodeModules(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := New(Options{RootDir: tmpDir})

	nodePath := filepath.Join(tmpDir, "node_modules", "express", "index.js")
	if !matcher.ShouldIgnore(nodePath) {
		t.Error("expected node_modules files to be ignored")
	}
}

func Test_Matcher_DefaultPatterns_GitDir(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := New(Options{RootDir: tmpDir})

	gitPath := filepath.Join(tmpDir, ".git", "config")
	if !matcher.ShouldIgnore(gitPath) {
		t.Error("expected .git files to be ignored")
	}
}

func Test_Matcher_DefaultPatterns_HiddenComponent(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := New(Options{RootDir: tmpDir})

	hiddenPath := filepath.Join(tmpDir, ".config", "settings.json")
	if !matcher.ShouldIgnore(hiddenPath) {
		t.Error("expected dot-directory contents to be ignored by the default predicate")
	}
}

func Test_Matcher_AllowsMediaAndDocs(t *testing.T) {
	// Unlike a content indexer, a file picker must surface images, docs,
	// and binaries — the user may want to open them.
	tmpDir := t.TempDir()
	matcher := New(Options{RootDir: tmpDir})

	for _, name := range []string{"app.exe", "logo.png", "spec.pdf", "archive.zip"} {
		if matcher.ShouldIgnore(filepath.Join(tmpDir, name)) {
			t.Errorf("expected %s to NOT be ignored by default", name)
		}
	}
}

func Test_Matcher_DefaultPatterns_AllowsSourceFiles(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := New(Options{RootDir: tmpDir})

	goPath := filepath.Join(tmpDir, "main.go")
	if matcher.ShouldIgnore(goPath) {
		t.Error("expected .go files to NOT be ignored")
	}
}

func Test_Matcher_GitignoreIntegration(t *testing.T) {
	tmpDir := t.TempDir()

	gitignoreContent := "*.generated.go\nsecret/\n"
	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte(gitignoreContent), 0644)

	matcher := New(Options{RootDir: tmpDir, RespectGitignore: true})

	generatedPath := filepath.Join(tmpDir, "models.generated.go")
	if !matcher.ShouldIgnore(generatedPath) {
		t.Error("expected .gitignore pattern to ignore *.generated.go")
	}

	normalPath := filepath.Join(tmpDir, "main.go")
	if matcher.ShouldIgnore(normalPath) {
		t.Error("expected normal .go files to NOT be ignored by .gitignore")
	}
}

func Test_Matcher_GitignoreOffByDefault(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("*.secret\n"), 0644)

	matcher := New(Options{RootDir: tmpDir})
	if matcher.ShouldIgnore(filepath.Join(tmpDir, "a.secret")) {
		t.Error("expected .gitignore to be inert unless RespectGitignore is set")
	}
}

func Test_Matcher_ConfigurableGlobs(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := New(Options{
		RootDir: tmpDir,
		Globs:   []string{"**/*.custom", "generated/**"},
	})

	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "data.custom")) {
		t.Error("expected custom glob to ignore *.custom files")
	}
	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "generated", "out.go")) {
		t.Error("expected custom glob to ignore generated/** files")
	}
	if matcher.ShouldIgnore(filepath.Join(tmpDir, "main.go")) {
		t.Error("expected main.go to not match the custom globs")
	}
}

func Test_Matcher_CustomPredicate(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := New(Options{
		RootDir: tmpDir,
		Predicate: func(relativePath string, _ bool) bool {
			return filepath.Base(relativePath) == "skip-me.txt"
		},
	})

	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "skip-me.txt")) {
		t.Error("expected host predicate override to be consulted")
	}
	// the default hidden-component rule must no longer apply once a
	// caller supplies a predicate of their own.
	if matcher.ShouldIgnore(filepath.Join(tmpDir, ".hidden", "file.txt")) {
		t.Error("expected custom predicate to fully replace the default rule")
	}
}

func Test_Matcher_ShouldIgnoreDir(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := New(Options{RootDir: tmpDir})

	tests := []struct {
		dirName string
		ignored bool
	}{
		{".git", true},
		{"node_modules", true},
		{"__pycache__", true},
		{".idea", true},
		{"src", false},
		{"lib", false},
	}

	for _, tt := range tests {
		dirPath := filepath.Join(tmpDir, tt.dirName)
		got := matcher.ShouldIgnoreDir(dirPath)
		if got != tt.ignored {
			t.Errorf("ShouldIgnoreDir(%s) = %v, want %v", tt.dirName, got, tt.ignored)
		}
	}
}

func Test_Matcher_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := New(Options{RootDir: tmpDir, RespectGitignore: true})

	path := filepath.Join(tmpDir, "a.secret")
	if matcher.ShouldIgnore(path) {
		t.Fatal("expected a.secret to not be ignored before .gitignore exists")
	}

	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("*.secret\n"), 0644)
	matcher.Reload()

	if !matcher.ShouldIgnore(path) {
		t.Error("expected Reload to pick up the new .gitignore contents")
	}
}
