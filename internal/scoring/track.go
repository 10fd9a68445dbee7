package scoring

import (
	"strings"

	"songscout/internal/textutil"
)

// TrackInput carries the enrichment attributes the track rubric consumes.
type TrackInput struct {
	Publisher    string
	Writer       string
	Songwriter   string
	PlaylistName string
	Label        string
	ArtistName   string
	WowGrowthPct float64
}

const (
	minScore = 0
	maxScore = 10
)

// editorialMarkers flag playlists curated for emerging, unsigned talent.
var editorialMarkers = []string{"fresh finds"}

// indieLabelPatterns match label strings that indicate an independent or DIY
// release rather than a label deal.
var indieLabelPatterns = []string{
	"diy",
	"independent",
	"indie",
	"self-released",
	"self released",
	"unsigned",
	"no label",
}

// CalculateUnsignedScore maps track enrichment attributes to a 0-10 publishing
// opportunity score. Pure and deterministic; the weights are the contract.
//
//	+5 publisher absent
//	+3 writer metadata absent
//	+3 self-written on an editorial discovery playlist
//	+2 self-written on an independent/DIY label
//	+2 week-over-week growth above 50%, else +1 above 20%
//
// Major-label tracks carry no penalty: a hired songwriter can still be an
// unsigned publisher.
func CalculateUnsignedScore(in TrackInput) int {
	score := 0

	if strings.TrimSpace(in.Publisher) == "" {
		score += 5
	}
	if strings.TrimSpace(in.Writer) == "" {
		score += 3
	}

	selfWritten := isSelfWritten(in.ArtistName, in.Songwriter, in.Writer)
	if selfWritten && hasEditorialMarker(in.PlaylistName) {
		score += 3
	}
	if selfWritten && isIndieLabel(in.Label) {
		score += 2
	}

	score += growthBonus(in.WowGrowthPct)

	return clamp(score)
}

// isSelfWritten reports whether the performer appears inside the songwriter
// credit. Falls back to the writer field when no songwriter was scraped.
func isSelfWritten(artist, songwriter, writer string) bool {
	credit := songwriter
	if strings.TrimSpace(credit) == "" {
		credit = writer
	}
	return textutil.ContainsName(credit, artist)
}

func hasEditorialMarker(playlistName string) bool {
	lowered := strings.ToLower(playlistName)
	for _, marker := range editorialMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func isIndieLabel(label string) bool {
	lowered := strings.ToLower(label)
	if strings.TrimSpace(lowered) == "" {
		return false
	}
	for _, pattern := range indieLabelPatterns {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}

// growthBonus awards +2 above 50% week-over-week growth, +1 above 20%. The
// thresholds are mutually exclusive; the higher one wins.
func growthBonus(growthPct float64) int {
	switch {
	case growthPct > 50:
		return 2
	case growthPct > 20:
		return 1
	default:
		return 0
	}
}

func clamp(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// ClassifyMomentum buckets week-over-week growth into a coarse class.
func ClassifyMomentum(growthPct float64) string {
	switch {
	case growthPct > 50:
		return "surging"
	case growthPct > 20:
		return "rising"
	case growthPct >= 0:
		return "steady"
	default:
		return "declining"
	}
}
