package tools

import (
	"context"
	"testing"
)

func Test_GitStatusHandler_NoRepo(t *testing.T) {
	c := newTestCoordinator(t)
	h := &GitStatusHandler{Coordinator: c, Logger: discardLogger()}

	result, _, err := h.Handle(context.Background(), nil, GitStatusArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true when no git repository is present")
	}
}
