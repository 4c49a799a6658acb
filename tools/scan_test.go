package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func Test_ScanHandler_Rescan(t *testing.T) {
	c := newTestCoordinator(t)
	h := &ScanHandler{Coordinator: c, Logger: discardLogger()}

	result, _, err := h.Handle(context.Background(), nil, ScanArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result")
	}
}

func Test_ScanHandler_RestartAtNewBase(t *testing.T) {
	c := newTestCoordinator(t)
	h := &ScanHandler{Coordinator: c, Logger: discardLogger()}

	newBase := t.TempDir()
	if err := os.WriteFile(filepath.Join(newBase, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	result, _, err := h.Handle(context.Background(), nil, ScanArgs{NewBase: newBase})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result")
	}
	text := result.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, newBase) {
		t.Errorf("expected result to mention the new base, got: %s", text)
	}
}
