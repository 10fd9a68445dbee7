package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"songscout/internal/config"
	"songscout/internal/services"
)

func TestConsoleHandlerRendersComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger = NewComponentLogger(logger, "jobqueue")
	logger.Info("job started", String(FieldJobID, "abc"), Int("tracks", 3))

	line := buf.String()
	if !strings.Contains(line, " INFO jobqueue: job started") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "job_id=abc") || !strings.Contains(line, "tracks=3") {
		t.Fatalf("missing attrs: %q", line)
	}
}

func TestNewFromConfigWritesDaemonLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("daemon log probe")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "songscout.log"))
	if err != nil {
		t.Fatalf("read daemon log: %v", err)
	}
	if !strings.Contains(string(data), "daemon log probe") {
		t.Fatalf("expected probe line in daemon log, got %q", data)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger.Warn("scrape failed", String("detail", "session cookie rejected"))

	if !strings.Contains(buf.String(), `detail="session cookie rejected"`) {
		t.Fatalf("expected quoted value: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v want %v", input, got, want)
		}
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	ctx := services.WithJobID(context.Background(), "job-1")
	ctx = services.WithPhase(ctx, "metadata")
	WithContext(ctx, logger).Info("processing")

	line := buf.String()
	if !strings.Contains(line, "job_id=job-1") || !strings.Contains(line, "phase=metadata") {
		t.Fatalf("missing context fields: %q", line)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Info("ignored")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop logger should report disabled")
	}
}
