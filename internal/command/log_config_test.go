package command

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeycumines/decisioncore/internal/config"
)

func TestResolveLogConfig_Defaults(t *testing.T) {
	t.Parallel()

	lc, err := resolveLogConfig("", "", "", config.NewConfig())
	if err != nil {
		t.Fatalf("resolveLogConfig: %v", err)
	}
	if lc.logFile != nil {
		t.Fatal("expected nil logFile when no path specified")
	}
	if lc.level != slog.LevelInfo {
		t.Fatalf("expected level Info, got %v", lc.level)
	}
	if lc.format != "text" {
		t.Fatalf("expected format text, got %q", lc.format)
	}
}

func TestResolveLogConfig_NilConfig(t *testing.T) {
	t.Parallel()

	lc, err := resolveLogConfig("", "warn", "json", nil)
	if err != nil {
		t.Fatalf("resolveLogConfig: %v", err)
	}
	if lc.level != slog.LevelWarn || lc.format != "json" {
		t.Fatalf("got level %v format %q", lc.level, lc.format)
	}
}

func TestResolveLogConfig_FlagOverridesConfig(t *testing.T) {
	t.Parallel()
	logPath := filepath.Join(t.TempDir(), "test.log")

	cfg := config.NewConfig()
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"
	cfg.Log.File = "/should/not/use/this"

	lc, err := resolveLogConfig(logPath, "debug", "text", cfg)
	if err != nil {
		t.Fatalf("resolveLogConfig: %v", err)
	}
	defer lc.logFile.Close()

	if lc.level != slog.LevelDebug {
		t.Fatalf("expected level Debug (flag override), got %v", lc.level)
	}
	if lc.format != "text" {
		t.Fatalf("expected format text (flag override), got %q", lc.format)
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("expected log file from flag path: %v", err)
	}
}

func TestResolveLogConfig_ConfigFallback(t *testing.T) {
	t.Parallel()
	logPath := filepath.Join(t.TempDir(), "logs", "config.log")

	cfg := config.NewConfig()
	cfg.Log.Level = "error"
	cfg.Log.Format = "json"
	cfg.Log.File = logPath
	cfg.Log.MaxSizeMB = 5
	cfg.Log.MaxFiles = 3

	// "info" is the flag default, so the config level wins
	lc, err := resolveLogConfig("", "info", "", cfg)
	if err != nil {
		t.Fatalf("resolveLogConfig: %v", err)
	}
	defer lc.logFile.Close()

	if lc.level != slog.LevelError {
		t.Fatalf("expected level Error from config, got %v", lc.level)
	}
	if lc.format != "json" {
		t.Fatalf("expected format json from config, got %q", lc.format)
	}
	rf, ok := lc.logFile.(*rotatingFile)
	if !ok {
		t.Fatalf("expected *rotatingFile, got %T", lc.logFile)
	}
	if rf.maxSize != 5<<20 || rf.maxBackups != 3 {
		t.Fatalf("expected 5 MB and 3 backups, got %d bytes and %d", rf.maxSize, rf.maxBackups)
	}
}

func TestResolveLogConfig_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := resolveLogConfig("", "loud", "", nil); err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Fatalf("expected invalid log level, got %v", err)
	}
	if _, err := resolveLogConfig("", "", "xml", nil); err == nil || !strings.Contains(err.Error(), "invalid log format") {
		t.Fatalf("expected invalid log format, got %v", err)
	}
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveLogConfig(filepath.Join(blocker, "x.log"), "", "", nil); err == nil {
		t.Fatal("expected an error opening a log file below a regular file")
	}
}

func TestLogConfig_Logger(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	lc := logConfig{level: slog.LevelWarn, format: "json"}
	logger := lc.logger(&stderr)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	out := stderr.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":1`) {
		t.Fatalf("expected a JSON record, got %s", out)
	}

	path := filepath.Join(t.TempDir(), "out.log")
	f, err := newRotatingFile(path, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	stderr.Reset()
	logConfig{level: slog.LevelInfo, format: "text", logFile: f}.logger(&stderr).Info("to file")
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if stderr.Len() != 0 {
		t.Fatalf("expected nothing on stderr, got %s", stderr.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "msg=\"to file\"") {
		t.Fatalf("expected a text record in the file, got %s", data)
	}
}
