package catalog

import (
	"testing"

	"github.com/zmb3/spotify/v2"
)

func TestLabelFromCopyrightsPrefersPhonographicLine(t *testing.T) {
	label := labelFromCopyrights([]spotify.Copyright{
		{Text: "© 2026 Some Distributor", Type: "C"},
		{Text: "℗ 2026 DIY Records", Type: "P"},
	})
	if label != "DIY Records" {
		t.Fatalf("expected phonographic label, got %q", label)
	}
}

func TestLabelFromCopyrightsFallsBackToFirstLine(t *testing.T) {
	label := labelFromCopyrights([]spotify.Copyright{
		{Text: "(C) 2025 Indie House", Type: "C"},
	})
	if label != "Indie House" {
		t.Fatalf("expected fallback label, got %q", label)
	}
	if got := labelFromCopyrights(nil); got != "" {
		t.Fatalf("expected empty label for no copyrights, got %q", got)
	}
}

func TestStripCopyrightPrefix(t *testing.T) {
	cases := map[string]string{
		"℗ 2026 DIY Records":   "DIY Records",
		"(P) 2024 Sony Music":  "Sony Music",
		"2023 Self-Released":   "Self-Released",
		"  © Tiny Label  ":     "Tiny Label",
		"No Prefix Recordings": "No Prefix Recordings",
	}
	for input, want := range cases {
		if got := stripCopyrightPrefix(input); got != want {
			t.Errorf("stripCopyrightPrefix(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBestSearchMatchRequiresArtist(t *testing.T) {
	tracks := []spotify.FullTrack{
		track("1", "Cover Band"),
		track("2", "Jane Doe"),
	}
	match := bestSearchMatch(tracks, "jane doe")
	if match == nil || match.ID != "2" {
		t.Fatalf("expected match on track 2, got %+v", match)
	}
	if bestSearchMatch(tracks, "Nobody Known") != nil {
		t.Fatal("expected no match for unknown artist")
	}
}

func track(id, artist string) spotify.FullTrack {
	var t spotify.FullTrack
	t.ID = spotify.ID(id)
	t.Artists = []spotify.SimpleArtist{{Name: artist}}
	return t
}
