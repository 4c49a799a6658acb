package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nrupatunga/fff.nvim/tools"
)

// Setup creates and configures the MCP server exposing the coordinator's
// file-picker core as tools for a host editor or agent.
func Setup(
	searchHandler *tools.SearchHandler,
	trackAccessHandler *tools.TrackAccessHandler,
	scanHandler *tools.ScanHandler,
	gitStatusHandler *tools.GitStatusHandler,
	statusHandler *tools.StatusHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fff-nvim",
			Version: "0.1.0",
		},
		&mcp.ServerOptions{
			Instructions: `This server exposes a fuzzy file picker backed by a live in-memory index of one project directory.

- Use fff_search for interactive "find file" queries: typo-tolerant fuzzy matching blended with path heuristics, frecency, and git status.
- Call fff_track_access whenever the user opens or focuses a file, so future searches rank it higher by frecency.
- Call fff_refresh_git_status after operations that change the working tree (checkout, commit, stage) to keep git bonuses current.
- fff_scan forces a rescan of the current base directory, or restarts the index at a new base when newBase is given.
- fff_status reports index size, generation, and frecency database health.`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "fff_search",
		Description: `Fuzzy-search indexed file paths under the current base directory. Typo-tolerant, rewards path-segment boundaries, prefixes, and case matches.

Query forms:
  - Plain text: subsequence fuzzy match (e.g., "cofnig" still finds "config.rs")
  - "piece/piece": matched right-to-left against path segments (e.g., "b/foo" favors "a/b/foo.rs")
  - "" (empty): no fuzzy filtering, ranked by frecency and recency of modification`,
	}, searchHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "fff_track_access",
		Description: "Record that a file was opened or focused, so fff_search ranks that file higher in future queries.",
	}, trackAccessHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "fff_scan",
		Description: "Force a full rescan of the current base directory, or restart the index rooted at a new directory when newBase is provided.",
	}, scanHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "fff_refresh_git_status",
		Description: "Re-enumerate git status (modified/added/untracked/etc.) for every indexed file against the current worktree.",
	}, gitStatusHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "fff_status",
		Description: "Show index status: file count, generation, git tracking state, frecency database health, and uptime.",
	}, statusHandler.Handle)

	return mcpServer
}
