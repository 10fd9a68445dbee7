package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// writeTestConfig lays down a minimal config with all state under the test
// temp dir. Credits scraping is disabled so no browser is ever launched.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[catalog]
client_id = "test-client"
client_secret = "test-secret"

[credits]
enabled = false

[vault]
secret = "unit-test-vault-secret"

[scheduler]
enabled = false
`, filepath.Join(dir, "data"), filepath.Join(dir, "logs"))

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", configPath))
	err := cmd.Execute()
	return out.String(), err
}
