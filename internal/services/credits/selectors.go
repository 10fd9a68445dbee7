package credits

import "regexp"

// Every selector and text pattern the scraper depends on lives here. The
// target page changes without notice; orchestration code never references
// page structure directly.

const (
	// selCreditsDialog is the structural container for the credits panel.
	selCreditsDialog = `div[aria-label="Credits"]`
	// selCreditsRows matches the label/value rows inside the credits panel.
	selCreditsRows = `div[aria-label="Credits"] p`
	// selPageBody is the text-pattern fallback scope when structure is absent.
	selPageBody = `body`
)

var (
	// reWrittenBy captures the writer list from free text, e.g.
	// "Written by: Jane Doe, John Smith".
	reWrittenBy = regexp.MustCompile(`(?i)written by[:\s]+([^\n]+)`)

	// reSource captures the credited source/publisher line, e.g.
	// "Source: DIY Records".
	reSource = regexp.MustCompile(`(?i)source[:\s]+([^\n]+)`)

	// rePublisher captures an explicit publisher line when present.
	rePublisher = regexp.MustCompile(`(?i)publisher[:\s]+([^\n]+)`)

	// reNameSplit separates individual names in a credited list.
	reNameSplit = regexp.MustCompile(`\s*(?:,|&| and )\s*`)
)

// loginMarkers indicate the session was rejected and the page rendered a
// login wall instead of content.
var loginMarkers = []string{
	"log in to continue",
	"login to spotify",
	"/login?continue",
	"sign up to get unlimited",
}
