package services

import (
	"errors"
	"fmt"
	"strings"

	"songscout/internal/store"
)

var (
	// ErrSourceUnavailable marks network failures and timeouts that are worth
	// retrying on a later pass.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNoData marks a source that responded but had no match. Not a failure.
	ErrNoData = errors.New("no data found")
	// ErrAuthExpired marks an invalid session or token that needs operator
	// remediation before the source can be called again.
	ErrAuthExpired = errors.New("auth expired")
	// ErrMalformedResponse marks a response whose shape could not be parsed.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrConfigurationMissing marks absent credentials; calls short-circuit
	// instead of failing.
	ErrConfigurationMissing = errors.New("configuration missing")
)

// Wrap builds an error message that includes source context while tagging it
// with the provided marker for later status classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, source, operation, message string, err error) error {
	detail := buildDetail(source, operation, message)
	if marker == nil {
		marker = ErrSourceUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// StatusForError maps a source-client error to the per-track enrichment status
// a phase executor should persist for the affected track.
func StatusForError(err error) store.EnrichmentStatus {
	if errors.Is(err, ErrNoData) {
		return store.EnrichmentNoData
	}
	return store.EnrichmentFailed
}

func buildDetail(source, operation, message string) string {
	parts := make([]string, 0, 3)
	if source = strings.TrimSpace(source); source != "" {
		parts = append(parts, source)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
