package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nrupatunga/fff.nvim/coordinator"
)

// GitStatusArgs defines the input parameters for the fff_refresh_git_status
// tool (none required).
type GitStatusArgs struct{}

// GitStatusHandler holds the dependencies for the fff_refresh_git_status tool.
type GitStatusHandler struct {
	Coordinator *coordinator.Coordinator
	Logger      *slog.Logger
}

// Handle processes an fff_refresh_git_status request.
func (h *GitStatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args GitStatusArgs) (*mcp.CallToolResult, any, error) {
	changed, err := h.Coordinator.RefreshGitStatus()
	if err != nil {
		h.Logger.Warn("fff_refresh_git_status failed", "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Git status error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	h.Logger.Info("fff_refresh_git_status", "changed", changed)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%d records changed status", changed)}},
	}, nil, nil
}
