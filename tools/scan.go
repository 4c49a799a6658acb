package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nrupatunga/fff.nvim/coordinator"
)

// ScanArgs defines the input parameters for the fff_scan tool. An empty
// newBase rescans the current base path; a non-empty one restarts the
// index rooted at newBase (§6 scan_files / restart_index_in_path).
type ScanArgs struct {
	NewBase string `json:"newBase,omitempty" jsonschema:"If set, restart the index rooted at this directory instead of rescanning the current one"`
}

// ScanHandler holds the dependencies for the fff_scan tool.
type ScanHandler struct {
	Coordinator *coordinator.Coordinator
	Logger      *slog.Logger
}

// Handle processes an fff_scan request.
func (h *ScanHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ScanArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	var err error
	if args.NewBase != "" {
		err = h.Coordinator.RestartIndexInPath(args.NewBase)
	} else {
		err = h.Coordinator.ScanFiles()
	}
	if err != nil {
		h.Logger.Error("fff_scan failed", "newBase", args.NewBase, "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Scan error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	h.Logger.Info("fff_scan complete", "newBase", args.NewBase, "elapsed", elapsed)

	output := fmt.Sprintf("scan complete in %s", elapsed)
	if args.NewBase != "" {
		output = fmt.Sprintf("restarted index at %s in %s", args.NewBase, elapsed)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: output}},
	}, nil, nil
}
