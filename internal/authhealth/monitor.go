package authhealth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"songscout/internal/logging"
)

// Status is the persisted, process-wide auth health record for the scraping
// session.
type Status struct {
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastFailure         *time.Time `json:"last_failure,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	CookieSource        string     `json:"cookie_source,omitempty"`
	CookieExpiry        *time.Time `json:"cookie_expiry,omitempty"`
	LastFailureStatus   int        `json:"last_failure_status,omitempty"`
	LastFailureMessage  string     `json:"last_failure_message,omitempty"`
}

// Monitor records auth outcomes for the browser session, persists them across
// restarts, and emits operator diagnostics when the session likely needs
// manual renewal.
type Monitor struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	status Status
}

// Load reads persisted state from path, starting fresh when none exists.
func Load(path string, logger *slog.Logger) (*Monitor, error) {
	monitor := &Monitor{
		path:   path,
		logger: logging.NewComponentLogger(logger, "authhealth"),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return monitor, nil
		}
		return nil, fmt.Errorf("read auth status: %w", err)
	}
	if err := json.Unmarshal(data, &monitor.status); err != nil {
		// A corrupt state file should not block startup; start fresh and warn.
		logging.WarnWithContext(monitor.logger, "auth status file unreadable, starting fresh", "auth_state_corrupt",
			logging.String("path", path), logging.Error(err))
		monitor.status = Status{}
	}
	return monitor, nil
}

// RecordSuccess resets the failure counter and stamps the success time. An
// optional cookie expiry refreshes the recorded session lifetime.
func (m *Monitor) RecordSuccess(source string, expiry *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	m.status.LastSuccess = &now
	m.status.ConsecutiveFailures = 0
	m.status.LastFailureStatus = 0
	m.status.LastFailureMessage = ""
	if source != "" {
		m.status.CookieSource = source
	}
	if expiry != nil {
		utc := expiry.UTC()
		m.status.CookieExpiry = &utc
	}
	m.persistLocked()
}

// RecordFailure increments the failure counter, persists, and produces an
// operator-facing diagnostic with remediation steps.
func (m *Monitor) RecordFailure(httpStatus int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	m.status.LastFailure = &now
	m.status.ConsecutiveFailures++
	m.status.LastFailureStatus = httpStatus
	m.status.LastFailureMessage = message
	m.persistLocked()

	attrs := []logging.Attr{
		logging.Int("consecutive_failures", m.status.ConsecutiveFailures),
		logging.String(logging.FieldErrorHint, remediation(httpStatus)),
	}
	if httpStatus > 0 {
		attrs = append(attrs, logging.Int("http_status", httpStatus))
	}
	if message != "" {
		attrs = append(attrs, logging.String("detail", message))
	}
	logging.ErrorWithContext(m.logger, "scraping session auth failure", "auth_failure", attrs...)
}

// Healthy reports whether the session is usable: no outstanding failures and
// a cookie that has not expired.
func (m *Monitor) Healthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.ConsecutiveFailures > 0 {
		return false
	}
	if m.status.CookieExpiry != nil && m.status.CookieExpiry.Before(time.Now()) {
		return false
	}
	return true
}

// Status returns a copy of the current auth state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// EverSucceeded reports whether any successful auth has been recorded.
func (m *Monitor) EverSucceeded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status.LastSuccess != nil
}

func (m *Monitor) persistLocked() {
	data, err := json.MarshalIndent(m.status, "", "  ")
	if err != nil {
		m.logger.Warn("encode auth status", logging.Error(err))
		return
	}
	if dir := filepath.Dir(m.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			m.logger.Warn("create auth status directory", logging.Error(err))
			return
		}
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		m.logger.Warn("write auth status", logging.String("path", m.path), logging.Error(err))
	}
}

func remediation(httpStatus int) string {
	switch httpStatus {
	case 401, 403:
		return "re-export session cookies from a logged-in browser, update the vault, and restart"
	case 429:
		return "the source is rate limiting; wait before retrying and reduce enrichment concurrency"
	default:
		return "check connectivity, then re-export session cookies if failures persist"
	}
}
