package playlist_test

import (
	"testing"
	"time"

	"songscout/internal/playlist"
)

func TestISOWeek(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		// Jan 1 2027 is a Friday, still ISO week 53 of 2026.
		{"2027-01-01", "2026-W53"},
		{"2026-08-31", "2026-W36"},
		{"2026-01-05", "2026-W02"},
	}
	for _, tc := range cases {
		day, err := time.Parse("2006-01-02", tc.date)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.date, err)
		}
		if got := playlist.ISOWeek(day); got != tc.want {
			t.Errorf("ISOWeek(%s) = %s, want %s", tc.date, got, tc.want)
		}
	}
}

func TestToTrackRows(t *testing.T) {
	rows := []playlist.Row{
		{PlaylistName: "Fresh Finds", TrackName: "Song", ArtistName: "Jane", SourceURL: "https://example.com/t/1"},
	}
	converted := playlist.ToTrackRows(rows, "2026-W36", 7)
	if len(converted) != 1 {
		t.Fatalf("expected 1 row, got %d", len(converted))
	}
	if converted[0].Week != "2026-W36" || converted[0].PlaylistID != 7 {
		t.Fatalf("unexpected keys: %+v", converted[0])
	}
	if converted[0].SourceURL != "https://example.com/t/1" {
		t.Fatalf("unexpected url: %+v", converted[0])
	}
}
