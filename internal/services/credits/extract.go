package credits

import "strings"

// Credits is the writer/publisher text extracted from one credits page.
type Credits struct {
	Writers   []string
	Publisher string
}

// Empty reports whether extraction found nothing usable.
func (c Credits) Empty() bool {
	return len(c.Writers) == 0 && c.Publisher == ""
}

// extractCredits parses page text into credits. Structural panel text is
// preferred; the full-page text is the fallback when the panel was absent.
func extractCredits(panelText, bodyText string) Credits {
	if parsed := parseCreditsText(panelText); !parsed.Empty() {
		return parsed
	}
	return parseCreditsText(bodyText)
}

func parseCreditsText(text string) Credits {
	var out Credits
	if text == "" {
		return out
	}

	if m := reWrittenBy.FindStringSubmatch(text); m != nil {
		out.Writers = splitNames(m[1])
	}
	if m := rePublisher.FindStringSubmatch(text); m != nil {
		out.Publisher = strings.TrimSpace(m[1])
	} else if m := reSource.FindStringSubmatch(text); m != nil {
		out.Publisher = strings.TrimSpace(m[1])
	}
	return out
}

func splitNames(list string) []string {
	var names []string
	for _, name := range reNameSplit.Split(list, -1) {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// isLoginWall reports whether the rendered page is a login prompt rather
// than track content.
func isLoginWall(pageURL, bodyText string) bool {
	lowered := strings.ToLower(bodyText)
	url := strings.ToLower(pageURL)
	for _, marker := range loginMarkers {
		if strings.Contains(lowered, marker) || strings.Contains(url, marker) {
			return true
		}
	}
	return false
}
