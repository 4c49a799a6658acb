package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nrupatunga/fff.nvim/coordinator"
)

// StatusArgs defines the input parameters for the fff_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the fff_status tool.
type StatusHandler struct {
	Coordinator *coordinator.Coordinator
	StartTime   time.Time
	Logger      *slog.Logger
}

// Handle processes an fff_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	health := h.Coordinator.Health()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("fff_status",
		"files", health.FileCount,
		"generation", health.Generation,
		"dbFailures", health.DBFailures,
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	var builder strings.Builder
	builder.WriteString("=== fff.nvim file-picker status ===\n\n")
	builder.WriteString(fmt.Sprintf("Base directory: %s\n", health.BasePath))
	builder.WriteString(fmt.Sprintf("Initialized: %v\n", health.Initialized))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(int(uptime.Seconds()))))
	builder.WriteString(fmt.Sprintf("Indexed files: %d\n", health.FileCount))
	builder.WriteString(fmt.Sprintf("Index generation: %d\n", health.Generation))
	builder.WriteString(fmt.Sprintf("Git tracking active: %v\n", health.GitActive))
	builder.WriteString(fmt.Sprintf("Frecency db failures: %d\n", health.DBFailures))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: builder.String()}},
	}, nil, nil
}
