package command

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joeycumines/decisioncore/internal/config"
)

// logConfig holds resolved logging configuration.
type logConfig struct {
	level   slog.Level
	format  string
	logFile io.WriteCloser // nil if no file logging
}

// resolveLogConfig resolves log configuration from flags and config defaults.
// Flag values take precedence; config values are used when flags have their
// zero/default value. The caller must Close() the returned logConfig.logFile
// when done (if non-nil).
func resolveLogConfig(flagPath, flagLevel, flagFormat string, cfg *config.Config) (logConfig, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	var lc logConfig

	// Resolve log level: flag → config → "info".
	levelStr := flagLevel
	if levelStr == "" || levelStr == "info" {
		if v := cfg.Log.Level; v != "" {
			levelStr = v
		}
	}
	switch strings.ToLower(levelStr) {
	case "debug":
		lc.level = slog.LevelDebug
	case "info", "":
		lc.level = slog.LevelInfo
	case "warn":
		lc.level = slog.LevelWarn
	case "error":
		lc.level = slog.LevelError
	default:
		return lc, fmt.Errorf("invalid log level: %s", levelStr)
	}

	// Resolve format: flag → config → "text".
	lc.format = flagFormat
	if lc.format == "" {
		lc.format = cfg.Log.Format
	}
	switch lc.format {
	case "":
		lc.format = "text"
	case "text", "json":
	default:
		return lc, fmt.Errorf("invalid log format: %s", lc.format)
	}

	// Resolve log path: flag → config → "".
	logPath := flagPath
	if logPath == "" {
		logPath = cfg.Log.File
	}

	if logPath != "" {
		w, err := newRotatingFile(logPath, cfg.Log.MaxSizeMB, cfg.Log.MaxFiles)
		if err != nil {
			return lc, fmt.Errorf("failed to open log file %s: %w", logPath, err)
		}
		lc.logFile = w
	}

	return lc, nil
}

// logger builds the slog logger, writing to the log file if one was
// configured and to stderr otherwise.
func (lc logConfig) logger(stderr io.Writer) *slog.Logger {
	w := stderr
	if lc.logFile != nil {
		w = lc.logFile
	}
	opts := &slog.HandlerOptions{Level: lc.level}
	if lc.format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
