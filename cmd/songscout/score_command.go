package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"songscout/internal/config"
	"songscout/internal/scoring"
	"songscout/internal/services/registry"
	"songscout/internal/store"
)

// score recomputes a track's unsigned score from its current row so an
// operator can see why a track ranks where it does.
func newScoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "score <track-id>",
		Short: "Show the scoring inputs and result for one track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid track id %q", args[0])
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				track, err := st.GetTrack(cmd.Context(), id)
				if err != nil {
					return err
				}
				if track == nil {
					return fmt.Errorf("track %d not found", id)
				}

				input := scoring.InputFromTrack(track)
				score := scoring.CalculateUnsignedScore(input)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s - %s (%s)\n", track.ArtistName, track.TrackName, track.Week)
				fmt.Fprintf(out, "  playlist:     %s\n", track.PlaylistName)
				fmt.Fprintf(out, "  label:        %s\n", orDash(track.Label))
				fmt.Fprintf(out, "  publisher:    %s\n", orDash(track.Publisher))
				fmt.Fprintf(out, "  pub status:   %s\n", registry.ClassifyPublisherStatus(splitPublishers(track.Publisher)))
				fmt.Fprintf(out, "  writers:      %s\n", orDash(track.WriterNames))
				fmt.Fprintf(out, "  songwriter:   %s\n", orDash(track.Songwriter))
				fmt.Fprintf(out, "  registry:     searched=%s found=%s iswc=%s\n",
					yesNo(track.RegistrySearched), yesNo(track.RegistryFound), orDash(track.ISWC))
				fmt.Fprintf(out, "  streams:      %d (prev %d, growth %.1f%%, momentum %s)\n",
					track.StreamsTotal, track.StreamsPrev, track.WowGrowthPct, orDash(track.Momentum))
				fmt.Fprintf(out, "  score:        %d/10 (stored %d)\n", score, track.UnsignedScore)
				return nil
			})
		},
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func splitPublishers(publisher string) []string {
	if strings.TrimSpace(publisher) == "" {
		return nil
	}
	parts := strings.Split(publisher, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
