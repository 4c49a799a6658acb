package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nrupatunga/fff.nvim/coordinator"
	"github.com/nrupatunga/fff.nvim/server"
	"github.com/nrupatunga/fff.nvim/tools"
)

// excludePatterns is a repeatable CLI flag for custom ignore globs,
// merged into the ignore matcher's configurable glob list.
type excludePatterns []string

func (e *excludePatterns) String() string { return strings.Join(*e, ", ") }
func (e *excludePatterns) Set(value string) error {
	*e = append(*e, value)
	return nil
}

func main() {
	var rootDir string
	var maxResults uint
	var maxThreads uint
	var logLevel string
	var logFile string
	var frecencyDBPath string
	var noFrecency bool
	var syncIntervalSeconds int
	var excludes excludePatterns

	flag.StringVar(&rootDir, "root", "", "Project root directory (default: current working directory)")
	flag.Var(&excludes, "exclude", "Extra ignore pattern (repeatable)")
	flag.UintVar(&maxResults, "max-results", 100, "Default max search results")
	flag.UintVar(&maxThreads, "max-threads", 4, "Worker pool size for the initial scan")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: error|warn|info|debug|trace")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: <root>/fff-nvim.log)")
	flag.StringVar(&frecencyDBPath, "frecency-db", "", "Frecency database path (default: <root>/.fff-frecency.db)")
	flag.BoolVar(&noFrecency, "no-frecency", false, "Disable the persisted frecency database (access history is kept in memory for this process only)")
	flag.IntVar(&syncIntervalSeconds, "sync-interval", 0, "Periodic full-rescan interval in seconds as a watcher-drop safety net (0 disables it)")
	flag.Parse()

	if rootDir == "" {
		var err error
		rootDir, err = os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
			os.Exit(1)
		}
	}
	rootDir, _ = filepath.Abs(rootDir)

	if logFile == "" {
		logFile = filepath.Join(rootDir, "fff-nvim.log")
	}

	frecencyEnabled := !noFrecency
	cfg := coordinator.Config{
		BasePath:    rootDir,
		MaxResults:  maxResults,
		MaxThreads:  maxThreads,
		ExtraIgnore: excludes,
		Frecency: coordinator.FrecencyConfig{
			Enabled: &frecencyEnabled,
			DBPath:  frecencyDBPath,
		},
		Logging: coordinator.LoggingConfig{
			Enabled:  true,
			LogFile:  logFile,
			LogLevel: logLevel,
		},
	}.WithDefaults()

	startTime := time.Now()
	coord := coordinator.New(cfg)

	coord.Log().Info("starting fff.nvim file-picker core",
		"root", rootDir,
		"maxResults", cfg.MaxResults,
		"maxThreads", cfg.MaxThreads,
	)

	if err := coord.InitFilePicker(rootDir); err != nil {
		coord.Log().Error("failed to initialize file picker", "error", err)
		os.Exit(1)
	}
	defer coord.CleanupFilePicker()

	coord.Log().Info("initial scan complete", "duration", time.Since(startTime))

	if syncIntervalSeconds > 0 {
		syncCtx, cancelSync := context.WithCancel(context.Background())
		defer cancelSync()
		go coord.RunPeriodicSync(syncCtx, time.Duration(syncIntervalSeconds)*time.Second)
	}

	searchHandler := &tools.SearchHandler{Coordinator: coord, Logger: coord.Log()}
	trackAccessHandler := &tools.TrackAccessHandler{Coordinator: coord, Logger: coord.Log()}
	scanHandler := &tools.ScanHandler{Coordinator: coord, Logger: coord.Log()}
	gitStatusHandler := &tools.GitStatusHandler{Coordinator: coord, Logger: coord.Log()}
	statusHandler := &tools.StatusHandler{Coordinator: coord, StartTime: startTime, Logger: coord.Log()}

	mcpServer := server.Setup(searchHandler, trackAccessHandler, scanHandler, gitStatusHandler, statusHandler)

	coord.Log().Info("MCP server starting on stdio")
	if err := mcpServer.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		coord.Log().Error("MCP server error", "error", err)
		os.Exit(1)
	}
}
