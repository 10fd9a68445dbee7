package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample file missing: %v", err)
	}

	// A second init without --overwrite refuses to clobber the file.
	if _, err := runCommand(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	if _, err := runCommand(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestConfigValidateAcceptsTestConfig(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, cfgPath, "config", "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if strings.Contains(out, "test-client") {
		t.Fatalf("client id leaked: %s", out)
	}
	if !strings.Contains(out, "****ient") {
		t.Fatalf("expected redacted client id tail, got: %s", out)
	}
	if !strings.Contains(out, "credits.enabled") {
		t.Fatalf("missing credits section: %s", out)
	}
}
