package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestRenderStatusLinePlain(t *testing.T) {
	line := renderStatusLine("Queued jobs", statusOK, "3", false)
	if !strings.Contains(line, "Queued jobs:") || !strings.Contains(line, "[OK] 3") {
		t.Fatalf("unexpected line: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("unexpected ansi codes in plain output: %q", line)
	}
}

func TestRenderStatusLineColorized(t *testing.T) {
	line := renderStatusLine("Scraping auth", statusError, "3 consecutive failures", true)
	if !strings.HasPrefix(line, ansiRed) || !strings.HasSuffix(line, ansiReset) {
		t.Fatalf("expected red wrapping: %q", line)
	}
}

func TestShouldColorizeRejectsBuffers(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are not terminals")
	}
}

func TestShouldColorizeHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if shouldColorize(os.Stdout) {
		t.Fatal("NO_COLOR must disable ansi output")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]tableColumn{column("NAME"), rightColumn("COUNT")},
		[][]string{{"only-name"}},
	)
	if !strings.Contains(out, "only-name") {
		t.Fatalf("missing cell value: %q", out)
	}
	if strings.Contains(out, "<nil>") {
		t.Fatalf("short row must pad with empty cells: %q", out)
	}
}

func TestParseTrackIDs(t *testing.T) {
	ids, err := parseTrackIDs([]string{"1,2", "3"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if _, err := parseTrackIDs([]string{"x"}); err == nil {
		t.Fatal("expected parse failure")
	}
	if _, err := parseTrackIDs(nil); err == nil {
		t.Fatal("expected empty input failure")
	}
}

func TestRedact(t *testing.T) {
	if got := redact(""); got != "(unset)" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := redact("ab"); got != "****" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := redact("secret-token"); got != "****oken" {
		t.Fatalf("unexpected: %q", got)
	}
}
