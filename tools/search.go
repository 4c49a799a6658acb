package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nrupatunga/fff.nvim/coordinator"
)

// SearchArgs defines the input parameters for the fff_search tool.
type SearchArgs struct {
	Query       string `json:"query" jsonschema:"Fuzzy query to match against indexed file paths"`
	MaxResults  int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default from config)"`
	CurrentFile string `json:"currentFile,omitempty" jsonschema:"Path of the file currently focused in the editor (absolute, or relative to cwd), used to de-rank it and bias same-directory files"`
	Cwd         string `json:"cwd,omitempty" jsonschema:"Absolute working directory currentFile is relative to, when currentFile is not itself absolute or not already relative to the indexed root"`
	Debug       bool   `json:"debug,omitempty" jsonschema:"If true include the per-component score breakdown"`
}

// SearchHandler holds the dependencies for the fff_search tool.
type SearchHandler struct {
	Coordinator *coordinator.Coordinator
	Logger      *slog.Logger
}

// Handle processes an fff_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	resp, err := h.Coordinator.FuzzySearchFiles(args.Query, uint(args.MaxResults), coordinator.SearchOptions{
		CurrentFile: args.CurrentFile,
		Cwd:         args.Cwd,
		Debug:       args.Debug,
	})
	if err != nil {
		h.Logger.Error("fff_search failed", "query", args.Query, "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Search error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	h.Logger.Info("fff_search",
		"query", args.Query,
		"results", len(resp.Items),
		"totalMatched", resp.TotalMatched,
		"elapsed", time.Since(start),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatSearchResults(resp)}},
	}, nil, nil
}
