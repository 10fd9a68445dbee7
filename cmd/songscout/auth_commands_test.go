package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAuthImportStoresCookies(t *testing.T) {
	cfgPath := writeTestConfig(t)

	cookieFile := filepath.Join(t.TempDir(), "cookies.json")
	cookies := `[{"name":"sp_dc","value":"abc123","domain":".spotify.com","path":"/"}]`
	if err := os.WriteFile(cookieFile, []byte(cookies), 0o600); err != nil {
		t.Fatalf("write cookies: %v", err)
	}

	out, err := runCommand(t, cfgPath, "auth", "import", "--file", cookieFile)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 1 cookies") {
		t.Fatalf("unexpected output: %s", out)
	}

	// The vault file lives under the configured data dir.
	vaultPath := filepath.Join(filepath.Dir(cfgPath), "data", "token.enc")
	if _, err := os.Stat(vaultPath); err != nil {
		t.Fatalf("vault file missing: %v", err)
	}
}

func TestAuthImportRequiresCookies(t *testing.T) {
	cfgPath := writeTestConfig(t)

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte(`[]`), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}
	if _, err := runCommand(t, cfgPath, "auth", "import", "--file", empty); err == nil {
		t.Fatal("expected empty cookie file to be rejected")
	}
}

func TestAuthStatusBeforeFirstRun(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, cfgPath, "auth", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "never authenticated") {
		t.Fatalf("expected never-authenticated warning: %s", out)
	}
}
