package tools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func Test_TrackAccessHandler_EmptyPath(t *testing.T) {
	h := &TrackAccessHandler{Coordinator: newTestCoordinator(t), Logger: discardLogger()}

	result, _, err := h.Handle(context.Background(), nil, TrackAccessArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true for empty absolutePath")
	}
}

func Test_TrackAccessHandler_RecordsAccess(t *testing.T) {
	c := newTestCoordinator(t)
	h := &TrackAccessHandler{Coordinator: c, Logger: discardLogger()}

	result, _, err := h.Handle(context.Background(), nil, TrackAccessArgs{
		AbsolutePath: filepath.Join(t.TempDir(), "does-not-need-to-exist.go"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result")
	}
	text := result.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, "ok") {
		t.Errorf("expected ok response, got: %s", text)
	}
}
