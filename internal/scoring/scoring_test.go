package scoring_test

import (
	"testing"

	"songscout/internal/scoring"
	"songscout/internal/store"
)

func TestCalculateUnsignedScoreMaxFixtureClampsToTen(t *testing.T) {
	in := scoring.TrackInput{
		Publisher:    "",
		Writer:       "",
		PlaylistName: "Fresh Finds X",
		Label:        "DIY Records",
		ArtistName:   "Jane",
		Songwriter:   "Jane Doe",
		WowGrowthPct: 60,
	}
	// 5 + 3 + 3 + 2 + 2 = 15, clamped.
	if got := scoring.CalculateUnsignedScore(in); got != 10 {
		t.Fatalf("expected clamp to 10, got %d", got)
	}
}

func TestCalculateUnsignedScoreNeutralFixtureIsZero(t *testing.T) {
	in := scoring.TrackInput{
		Publisher:    "Sony",
		Writer:       "Bob",
		PlaylistName: "Top Hits",
		Label:        "Sony Music",
		WowGrowthPct: 5,
	}
	if got := scoring.CalculateUnsignedScore(in); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestCalculateUnsignedScoreBounds(t *testing.T) {
	inputs := []scoring.TrackInput{
		{},
		{Publisher: "X", Writer: "Y", WowGrowthPct: -50},
		{ArtistName: "Jane", Songwriter: "Jane Doe", PlaylistName: "Fresh Finds", Label: "independent", WowGrowthPct: 1000},
		{Publisher: "", Writer: "", ArtistName: "A", Songwriter: "A", PlaylistName: "fresh finds pop", Label: "diy", WowGrowthPct: 51},
	}
	for i, in := range inputs {
		got := scoring.CalculateUnsignedScore(in)
		if got < 0 || got > 10 {
			t.Fatalf("input %d: score %d out of bounds", i, got)
		}
	}
}

func TestGrowthThresholdsAreExclusive(t *testing.T) {
	base := scoring.TrackInput{Publisher: "Sony", Writer: "Bob"}

	base.WowGrowthPct = 60
	if got := scoring.CalculateUnsignedScore(base); got != 2 {
		t.Fatalf("expected +2 above 50%%, got %d", got)
	}
	base.WowGrowthPct = 30
	if got := scoring.CalculateUnsignedScore(base); got != 1 {
		t.Fatalf("expected +1 above 20%%, got %d", got)
	}
	base.WowGrowthPct = 20
	if got := scoring.CalculateUnsignedScore(base); got != 0 {
		t.Fatalf("expected no bonus at 20%%, got %d", got)
	}
}

func TestCalculateContactScore(t *testing.T) {
	in := scoring.ContactInput{
		RegistrySearchedCount:  3,
		RegistryFoundCount:     0,
		TrackCount:             4,
		TracksWithoutPublisher: 3,
		TracksWithoutWriter:    3,
		SelfWrittenTracks:      3,
		AnyEditorialPlaylist:   true,
		AvgWowGrowthPct:        60,
	}
	// 6 + 3 + 2 + 2 + 2 = 15, clamped.
	if got := scoring.CalculateContactScore(in); got != 10 {
		t.Fatalf("expected clamp to 10, got %d", got)
	}

	neutral := scoring.ContactInput{
		RegistrySearchedCount: 2,
		RegistryFoundCount:    2,
		TrackCount:            4,
	}
	if got := scoring.CalculateContactScore(neutral); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestContactScoreHalfBoundaries(t *testing.T) {
	// Exactly half does not qualify; over half does.
	exactlyHalf := scoring.ContactInput{TrackCount: 4, TracksWithoutPublisher: 2}
	if got := scoring.CalculateContactScore(exactlyHalf); got != 0 {
		t.Fatalf("exactly half should not score, got %d", got)
	}
	overHalf := scoring.ContactInput{TrackCount: 4, TracksWithoutPublisher: 3}
	if got := scoring.CalculateContactScore(overHalf); got != 3 {
		t.Fatalf("over half should score +3, got %d", got)
	}
}

func TestClassifyMomentum(t *testing.T) {
	cases := map[float64]string{
		75:  "surging",
		30:  "rising",
		5:   "steady",
		0:   "steady",
		-10: "declining",
	}
	for growth, want := range cases {
		if got := scoring.ClassifyMomentum(growth); got != want {
			t.Fatalf("ClassifyMomentum(%v) = %q want %q", growth, got, want)
		}
	}
}

func TestContactInputFromTracks(t *testing.T) {
	tracks := []*store.Track{
		{ArtistName: "Jane", Songwriter: "Jane Doe", PlaylistName: "Fresh Finds", RegistrySearched: true, WowGrowthPct: 40},
		{ArtistName: "Jane", WriterNames: "Jane Doe", PlaylistName: "Top Hits", Publisher: "Indie House", RegistrySearched: true, RegistryFound: true, WowGrowthPct: 20},
		{ArtistName: "Jane", PlaylistName: "Top Hits"},
	}
	in := scoring.ContactInputFromTracks(tracks)
	if in.TrackCount != 3 {
		t.Fatalf("track count: %d", in.TrackCount)
	}
	if in.RegistrySearchedCount != 2 || in.RegistryFoundCount != 1 {
		t.Fatalf("registry counts: %+v", in)
	}
	if in.TracksWithoutPublisher != 2 {
		t.Fatalf("without publisher: %d", in.TracksWithoutPublisher)
	}
	if in.SelfWrittenTracks != 2 {
		t.Fatalf("self written: %d", in.SelfWrittenTracks)
	}
	if !in.AnyEditorialPlaylist {
		t.Fatal("expected editorial playlist flag")
	}
	if in.AvgWowGrowthPct != 30 {
		t.Fatalf("avg growth: %v", in.AvgWowGrowthPct)
	}
}
