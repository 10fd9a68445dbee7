package scoring

import (
	"strings"

	"songscout/internal/store"
)

// InputFromTrack builds the track rubric input from a persisted track.
func InputFromTrack(t *store.Track) TrackInput {
	return TrackInput{
		Publisher:    t.Publisher,
		Writer:       t.WriterNames,
		Songwriter:   t.Songwriter,
		PlaylistName: t.PlaylistName,
		Label:        t.Label,
		ArtistName:   t.ArtistName,
		WowGrowthPct: t.WowGrowthPct,
	}
}

// ContactInputFromTracks aggregates a songwriter's linked tracks into the
// contact rubric input.
func ContactInputFromTracks(tracks []*store.Track) ContactInput {
	in := ContactInput{TrackCount: len(tracks)}
	var growthSum float64
	var growthCount int
	for _, t := range tracks {
		if t.RegistrySearched {
			in.RegistrySearchedCount++
		}
		if t.RegistryFound {
			in.RegistryFoundCount++
		}
		if strings.TrimSpace(t.Publisher) == "" {
			in.TracksWithoutPublisher++
		}
		if strings.TrimSpace(t.WriterNames) == "" {
			in.TracksWithoutWriter++
		}
		if isSelfWritten(t.ArtistName, t.Songwriter, t.WriterNames) {
			in.SelfWrittenTracks++
		}
		if hasEditorialMarker(t.PlaylistName) {
			in.AnyEditorialPlaylist = true
		}
		if t.WowGrowthPct != 0 {
			growthSum += t.WowGrowthPct
			growthCount++
		}
	}
	if growthCount > 0 {
		in.AvgWowGrowthPct = growthSum / float64(growthCount)
	}
	return in
}
