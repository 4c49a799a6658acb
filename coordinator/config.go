package coordinator

import (
	"log/slog"
	"os"
)

// LoggingConfig configures init_tracing (§6, §10).
type LoggingConfig struct {
	Enabled  bool
	LogFile  string
	LogLevel string // error|warn|info|debug|trace
}

// FrecencyConfig configures the embedded access-history store (§4.3, §6).
// Enabled is a pointer so WithDefaults can distinguish "caller didn't
// say" (defaults to true) from an explicit opt-out, which a plain bool's
// zero value cannot.
type FrecencyConfig struct {
	Enabled *bool
	DBPath  string
}

func (f FrecencyConfig) enabled() bool {
	return f.Enabled == nil || *f.Enabled
}

// Config is the coordinator's config surface (§6). Every field is
// optional; WithDefaults fills in the documented defaults.
type Config struct {
	BasePath   string
	MaxResults uint
	MaxThreads uint
	// ExtraIgnore is a host-supplied glob list merged into the ignore
	// matcher's configurable glob list (§4.1), on top of the default
	// dotfile/.git predicate.
	ExtraIgnore []string
	Frecency    FrecencyConfig
	Logging     LoggingConfig
}

// WithDefaults returns a copy of c with unset fields filled in per §6's
// documented defaults.
func (c Config) WithDefaults() Config {
	if c.BasePath == "" {
		if wd, err := os.Getwd(); err == nil {
			c.BasePath = wd
		}
	}
	if c.MaxResults == 0 {
		c.MaxResults = 100
	}
	if c.MaxThreads == 0 {
		c.MaxThreads = 4
	}
	if c.Frecency.DBPath == "" {
		c.Frecency.DBPath = defaultFrecencyPath(c.BasePath)
	}
	if c.Logging.LogLevel == "" {
		c.Logging.LogLevel = "info"
	}
	return c
}

func defaultFrecencyPath(basePath string) string {
	return basePath + "/.fff-frecency.db"
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
