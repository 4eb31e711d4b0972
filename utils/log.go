package utils

import (
	"log/slog"
	"os"
	"strings"
)

// LogEnv names the environment variable holding the CLI log level
// (debug, info, warn or error).
const LogEnv = "BMPTOOL_LOG"

// Logger is shared by every command. Status lines go to stderr so stdout
// stays clean for reports.
var Logger = NewLogger(os.Getenv(LogEnv))

// NewLogger returns a text logger on stderr at the named level. Unknown
// names fall back to info.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
