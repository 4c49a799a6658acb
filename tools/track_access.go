package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nrupatunga/fff.nvim/coordinator"
)

// TrackAccessArgs defines the input parameters for the fff_track_access tool.
type TrackAccessArgs struct {
	AbsolutePath string `json:"absolutePath" jsonschema:"Absolute path of the file the user just opened or focused"`
}

// TrackAccessHandler holds the dependencies for the fff_track_access tool.
type TrackAccessHandler struct {
	Coordinator *coordinator.Coordinator
	Logger      *slog.Logger
}

// Handle processes an fff_track_access request.
func (h *TrackAccessHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args TrackAccessArgs) (*mcp.CallToolResult, any, error) {
	if args.AbsolutePath == "" {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Error: absolutePath parameter is required"}},
			IsError: true,
		}, nil, nil
	}

	if err := h.Coordinator.TrackAccess(args.AbsolutePath); err != nil {
		h.Logger.Error("fff_track_access failed", "path", args.AbsolutePath, "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Track access error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	h.Logger.Debug("fff_track_access", "path", args.AbsolutePath)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "ok"}},
	}, nil, nil
}
