package catalog

import (
	"strings"
	"unicode"

	"github.com/zmb3/spotify/v2"
)

// labelFromCopyrights extracts a label name from an album's copyright lines.
// The phonographic (P) line names the label that owns the recording; the
// copyright (C) line is only a fallback.
func labelFromCopyrights(copyrights []spotify.Copyright) string {
	var fallback string
	for _, line := range copyrights {
		cleaned := stripCopyrightPrefix(line.Text)
		if cleaned == "" {
			continue
		}
		if strings.EqualFold(line.Type, "P") {
			return cleaned
		}
		if fallback == "" {
			fallback = cleaned
		}
	}
	return fallback
}

// stripCopyrightPrefix drops the leading symbol and year from a copyright
// line, e.g. "℗ 2026 DIY Records" yields "DIY Records".
func stripCopyrightPrefix(text string) string {
	cleaned := strings.TrimSpace(text)
	for _, prefix := range []string{"℗", "©", "(P)", "(C)", "(p)", "(c)"} {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, prefix))
	}
	cleaned = strings.TrimLeftFunc(cleaned, func(r rune) bool {
		return unicode.IsDigit(r) || unicode.IsSpace(r)
	})
	return strings.TrimSpace(cleaned)
}
