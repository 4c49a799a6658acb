package coordinator

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/nrupatunga/fff.nvim/pathutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte("content\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestCoordinator(t *testing.T, base string, clock pathutil.Clock) *Coordinator {
	t.Helper()
	if clock == nil {
		clock = pathutil.SystemClock{}
	}
	c := &Coordinator{
		cfg:    Config{BasePath: base, Frecency: FrecencyConfig{DBPath: filepath.Join(t.TempDir(), "frecency.db")}}.WithDefaults(),
		logger: discardLogger(),
		clock:  clock,
	}
	if err := c.InitFilePicker(base); err != nil {
		t.Fatalf("InitFilePicker: %v", err)
	}
	t.Cleanup(func() { c.CleanupFilePicker() })
	return c
}

func Test_FuzzySearchFiles_ExactFilename(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "src/main.c")
	writeFile(t, base, "src/util.c")
	writeFile(t, base, "docs/readme.md")

	c := newTestCoordinator(t, base, nil)

	resp, err := c.FuzzySearchFiles("readme", 10, SearchOptions{})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].RelativePath != "docs/readme.md" {
		t.Fatalf("expected docs/readme.md first, got %+v", resp.Items)
	}
}

func Test_FuzzySearchFiles_DebugIncludesBreadcrumb(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "documents/doc.md")

	c := newTestCoordinator(t, base, nil)

	resp, err := c.FuzzySearchFiles("doc", 10, SearchOptions{Debug: true})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) == 0 {
		t.Fatal("expected a match")
	}
	comp := resp.Items[0].Components
	if comp == nil {
		t.Fatal("expected Components to be populated in debug mode")
	}
	if len(comp.Breadcrumb) != 1 || comp.Breadcrumb[0].Text != "documents" {
		t.Fatalf("expected a single documents breadcrumb segment, got %+v", comp.Breadcrumb)
	}
}

func Test_FuzzySearchFiles_TypoTolerance(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "src/config.rs")
	writeFile(t, base, "src/conflict.rs")

	c := newTestCoordinator(t, base, nil)

	resp, err := c.FuzzySearchFiles("cofnig", 10, SearchOptions{})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].RelativePath != "src/config.rs" {
		t.Fatalf("expected src/config.rs first, got %+v", resp.Items)
	}
	if len(resp.Items[0].FuzzyPositions) == 0 {
		t.Error("expected non-empty fuzzy_positions for a typo match")
	}
}

func Test_FuzzySearchFiles_PathPiece(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "a/b/foo.rs")
	writeFile(t, base, "x/foo.rs")

	c := newTestCoordinator(t, base, nil)

	resp, err := c.FuzzySearchFiles("b/foo", 10, SearchOptions{})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].RelativePath != "a/b/foo.rs" {
		t.Fatalf("expected a/b/foo.rs first, got %+v", resp.Items)
	}
}

// Test_FuzzySearchFiles_FrecencyInfluence is the coordinator-level
// version of spec §8 scenario 4: two equally-named-length files that
// match a one-character query identically (same match position, same
// remaining haystack shape) tie on the fuzzy component alone, so the
// tie-break (shorter then lexicographically-smaller relative_path) picks
// a1.txt first; repeated access to a2.txt then overturns that via
// frecency_bonus.
func Test_FuzzySearchFiles_FrecencyInfluence(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "a1.txt")
	writeFile(t, base, "a2.txt")

	clock := &pathutil.FixedClock{At: time.Unix(1_000_000, 0)}
	c := newTestCoordinator(t, base, clock)

	resp, err := c.FuzzySearchFiles("a", 10, SearchOptions{})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].RelativePath != "a1.txt" {
		t.Fatalf("expected a1.txt first on tie-break before any access tracking, got %+v", resp.Items)
	}

	a2Abs := filepath.Join(base, "a2.txt")
	for i := 0; i < 5; i++ {
		clock.At = clock.At.Add(time.Hour)
		if err := c.TrackAccess(a2Abs); err != nil {
			t.Fatalf("TrackAccess: %v", err)
		}
	}

	resp2, err := c.FuzzySearchFiles("a", 10, SearchOptions{})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp2.Items) == 0 || resp2.Items[0].RelativePath != "a2.txt" {
		t.Fatalf("expected a2.txt first after repeated access, got %+v", resp2.Items)
	}
}

func Test_FuzzySearchFiles_CurrentFileDemotion(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "x.rs")
	writeFile(t, base, "y.rs")

	c := newTestCoordinator(t, base, nil)

	resp, err := c.FuzzySearchFiles("r", 10, SearchOptions{CurrentFile: "x.rs"})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].RelativePath != "y.rs" {
		t.Fatalf("expected y.rs first with x.rs open, got %+v", resp.Items)
	}
}

func Test_FuzzySearchFiles_CurrentFileDemotion_AbsoluteWithCwd(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "x.rs")
	writeFile(t, base, "y.rs")

	c := newTestCoordinator(t, base, nil)

	// current_file arrives absolute, as a host editor reports it; cwd is
	// unused in this shape but must not break resolution.
	resp, err := c.FuzzySearchFiles("r", 10, SearchOptions{
		CurrentFile: filepath.Join(base, "x.rs"),
		Cwd:         base,
	})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].RelativePath != "y.rs" {
		t.Fatalf("expected y.rs first with x.rs open, got %+v", resp.Items)
	}
}

func Test_FuzzySearchFiles_CurrentFileDemotion_RelativeToCwd(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "sub/x.rs")
	writeFile(t, base, "y.rs")

	c := newTestCoordinator(t, base, nil)

	// current_file is relative to a working directory (sub) that differs
	// from the indexed root, the shape an editor running with its cwd set
	// to a subdirectory would report.
	resp, err := c.FuzzySearchFiles("r", 10, SearchOptions{
		CurrentFile: "x.rs",
		Cwd:         filepath.Join(base, "sub"),
	})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].RelativePath != "y.rs" {
		t.Fatalf("expected y.rs first with sub/x.rs open, got %+v", resp.Items)
	}
}

func Test_FuzzySearchFiles_GitBonus(t *testing.T) {
	base := t.TempDir()
	repo, err := git.PlainInit(base, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	writeFile(t, base, "x.rs")
	writeFile(t, base, "y.rs")
	if _, err := wt.Add("x.rs"); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("y.rs"); err != nil {
		t.Fatal(err)
	}
	sig := &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(1_000_000, 0)}
	if _, err := wt.Commit("initial", &git.CommitOptions{Author: sig}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "x.rs"), []byte("changed\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c := newTestCoordinator(t, base, nil)
	if _, err := c.RefreshGitStatus(); err != nil {
		t.Fatalf("RefreshGitStatus: %v", err)
	}

	resp, err := c.FuzzySearchFiles("", 10, SearchOptions{})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) < 2 || resp.Items[0].RelativePath != "x.rs" {
		t.Fatalf("expected modified x.rs to rank before clean y.rs, got %+v", resp.Items)
	}
}

func Test_FuzzySearchFiles_NotInitialized(t *testing.T) {
	c := &Coordinator{logger: discardLogger(), clock: pathutil.SystemClock{}}
	_, err := c.FuzzySearchFiles("anything", 10, SearchOptions{})
	if err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func Test_TrackAccess_NotInitialized(t *testing.T) {
	c := &Coordinator{logger: discardLogger(), clock: pathutil.SystemClock{}}
	if err := c.TrackAccess("/tmp/whatever"); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func Test_ScanFiles_PicksUpNewFile(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "existing.txt")
	c := newTestCoordinator(t, base, nil)

	writeFile(t, base, "fresh.txt")
	if err := c.ScanFiles(); err != nil {
		t.Fatalf("ScanFiles: %v", err)
	}

	resp, err := c.FuzzySearchFiles("fresh", 10, SearchOptions{})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].RelativePath != "fresh.txt" {
		t.Fatalf("expected fresh.txt to be found after rescan, got %+v", resp.Items)
	}
}

func Test_RestartIndexInPath_SwitchesBase(t *testing.T) {
	base1 := t.TempDir()
	base2 := t.TempDir()
	writeFile(t, base1, "one.txt")
	writeFile(t, base2, "two.txt")

	c := newTestCoordinator(t, base1, nil)

	if err := c.RestartIndexInPath(base2); err != nil {
		t.Fatalf("RestartIndexInPath: %v", err)
	}

	resp, err := c.FuzzySearchFiles("two", 10, SearchOptions{})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].RelativePath != "two.txt" {
		t.Fatalf("expected two.txt after restart into base2, got %+v", resp.Items)
	}

	respOld, err := c.FuzzySearchFiles("one", 10, SearchOptions{})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	// "one" may still typo-match two.txt; only one.txt itself must be gone.
	for _, item := range respOld.Items {
		if item.RelativePath == "one.txt" {
			t.Fatalf("expected one.txt to no longer be indexed after restart, got %+v", respOld.Items)
		}
	}
}

func Test_CleanupFilePicker_IsIdempotent(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "a.txt")
	c := newTestCoordinator(t, base, nil)

	if err := c.CleanupFilePicker(); err != nil {
		t.Fatalf("first cleanup: %v", err)
	}
	if err := c.CleanupFilePicker(); err != nil {
		t.Fatalf("second cleanup: %v", err)
	}
}

func Test_InitFilePicker_HonorsExtraIgnore(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "keep.go")
	writeFile(t, base, "build/output.generated.go")

	c := &Coordinator{
		cfg: Config{
			BasePath:    base,
			ExtraIgnore: []string{"build/**"},
			Frecency:    FrecencyConfig{DBPath: filepath.Join(t.TempDir(), "frecency.db")},
		}.WithDefaults(),
		logger: discardLogger(),
		clock:  pathutil.SystemClock{},
	}
	if err := c.InitFilePicker(base); err != nil {
		t.Fatalf("InitFilePicker: %v", err)
	}
	t.Cleanup(func() { c.CleanupFilePicker() })

	resp, err := c.FuzzySearchFiles("generated", 10, SearchOptions{})
	if err != nil {
		t.Fatalf("FuzzySearchFiles: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Fatalf("expected build/** to be ignored, got %+v", resp.Items)
	}
}

func Test_RunPeriodicSync_PicksUpNewFile(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "existing.txt")
	c := newTestCoordinator(t, base, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.RunPeriodicSync(ctx, 10*time.Millisecond)
		close(done)
	}()

	writeFile(t, base, "fresh.txt")

	deadline := time.After(2 * time.Second)
	for {
		resp, err := c.FuzzySearchFiles("fresh", 10, SearchOptions{})
		if err != nil {
			t.Fatalf("FuzzySearchFiles: %v", err)
		}
		if len(resp.Items) > 0 && resp.Items[0].RelativePath == "fresh.txt" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("periodic sync did not pick up the new file in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func Test_Config_WithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.MaxResults != 100 {
		t.Errorf("expected default max results 100, got %d", cfg.MaxResults)
	}
	if cfg.MaxThreads != 4 {
		t.Errorf("expected default max threads 4, got %d", cfg.MaxThreads)
	}
	if !cfg.Frecency.enabled() {
		t.Error("expected frecency enabled by default")
	}
	if cfg.Frecency.DBPath == "" {
		t.Error("expected a default frecency db path")
	}
}

func Test_Config_WithDefaults_ExplicitFrecencyOptOut(t *testing.T) {
	disabled := false
	cfg := Config{Frecency: FrecencyConfig{Enabled: &disabled}}.WithDefaults()
	if cfg.Frecency.enabled() {
		t.Error("expected explicit opt-out to stick")
	}
}
