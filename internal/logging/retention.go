package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanupOldLogs removes rotated log files in dir matching pattern that are
// older than retentionDays. A retentionDays value of 0 disables pruning.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, dir, pattern string) {
	if retentionDays <= 0 || strings.TrimSpace(dir) == "" {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		if logger != nil {
			logger.Warn("log cleanup glob failed", Error(err))
		}
		return
	}
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && logger != nil {
			logger.Warn("log cleanup remove failed", String("path", path), Error(err))
		}
	}
}
