package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"songscout/internal/config"
	"songscout/internal/scheduler"
	"songscout/internal/store"
)

func newPlaylistsCommand(ctx *commandContext) *cobra.Command {
	playlistsCmd := &cobra.Command{
		Use:   "playlists",
		Short: "Manage tracked source playlists",
	}

	playlistsCmd.AddCommand(newPlaylistsAddCommand(ctx))
	playlistsCmd.AddCommand(newPlaylistsListCommand(ctx))
	playlistsCmd.AddCommand(newPlaylistsRefreshCommand(ctx))

	return playlistsCmd
}

func newPlaylistsAddCommand(ctx *commandContext) *cobra.Command {
	var name string
	var untrack bool

	cmd := &cobra.Command{
		Use:   "add <catalog-id>",
		Short: "Track a playlist for the weekly refresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if name == "" {
					existing, err := st.PlaylistByCatalogID(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if existing != nil {
						name = existing.Name
					}
				}
				playlist, err := st.UpsertPlaylist(cmd.Context(), args[0], name, !untrack)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Playlist %s tracked=%s\n", playlist.CatalogID, yesNo(playlist.Tracked))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (filled in automatically on first refresh)")
	cmd.Flags().BoolVar(&untrack, "untrack", false, "Stop refreshing this playlist")
	return cmd
}

func newPlaylistsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List playlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				playlists, err := st.ListPlaylists(cmd.Context())
				if err != nil {
					return err
				}
				if len(playlists) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No playlists; add one with 'songscout playlists add <catalog-id>'")
					return nil
				}

				rows := make([][]string, 0, len(playlists))
				for _, playlist := range playlists {
					week := playlist.LastCheckedWeek
					if week == "" {
						week = "-"
					}
					rows = append(rows, []string{
						strconv.FormatInt(playlist.ID, 10),
						playlist.CatalogID,
						truncate(playlist.Name, 40),
						yesNo(playlist.Tracked),
						week,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]tableColumn{
						rightColumn("ID"), column("CATALOG ID"), column("NAME"),
						column("TRACKED"), column("LAST CHECKED"),
					},
					rows,
				))
				return nil
			})
		},
	}
}

func newPlaylistsRefreshCommand(ctx *commandContext) *cobra.Command {
	var process bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch playlists due this week and queue new tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedulerEntry(cmd, ctx, process, func(sched *scheduler.Scheduler) (int, string, error) {
				count, err := sched.RunPlaylistUpdateJob(cmd.Context())
				return count, "new tracks queued", err
			})
		},
	}

	cmd.Flags().BoolVar(&process, "process", false, "Drain the queue inline instead of waiting for the daemon")
	return cmd
}
