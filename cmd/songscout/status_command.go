package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"songscout/internal/authhealth"
	"songscout/internal/config"
	"songscout/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue depth, auth health, and the latest snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Songscout", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Database", statusInfo, st.Path(), colorize))

				depth, err := st.QueueDepth(cmd.Context())
				if err != nil {
					return err
				}
				queueKind := statusOK
				if depth > 0 {
					queueKind = statusInfo
				}
				fmt.Fprintln(out, renderStatusLine("Queued jobs", queueKind, fmt.Sprintf("%d", depth), colorize))

				jobs, err := st.ListJobs(cmd.Context(), 1)
				if err != nil {
					return err
				}
				if len(jobs) > 0 {
					job := jobs[0]
					fmt.Fprintln(out, renderStatusLine("Last job", statusInfo,
						fmt.Sprintf("%s %s (%d processed, %d enriched, %d errors)",
							shortJobID(job.ID), job.Status, job.TracksProcessed, job.TracksEnriched, job.Errors),
						colorize))
				}

				logger, err := cliLogger()
				if err != nil {
					return err
				}
				monitor, err := authhealth.Load(cfg.AuthStatePath(), logger)
				if err != nil {
					return err
				}
				authKind := statusOK
				authMessage := "session healthy"
				switch {
				case !monitor.EverSucceeded():
					authKind = statusWarn
					authMessage = "never authenticated"
				case !monitor.Healthy():
					authKind = statusError
					authMessage = fmt.Sprintf("%d consecutive failures", monitor.Status().ConsecutiveFailures)
				}
				fmt.Fprintln(out, renderStatusLine("Scraping auth", authKind, authMessage, colorize))

				snapshot, err := st.LatestSnapshot(cmd.Context())
				if err != nil {
					return err
				}
				if snapshot == nil {
					fmt.Fprintln(out, renderStatusLine("Snapshot", statusInfo, "none captured", colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Snapshot", statusInfo,
						fmt.Sprintf("%s (%d tracks, %d streams)",
							snapshot.CapturedAt.Local().Format("2006-01-02 15:04"),
							snapshot.TrackCount, snapshot.TotalStreams),
						colorize))
				}

				events, err := st.RecentActivity(cmd.Context(), 5)
				if err != nil {
					return err
				}
				if len(events) > 0 {
					for _, line := range renderSectionHeader("Recent activity", colorize) {
						fmt.Fprintln(out, line)
					}
					for _, event := range events {
						fmt.Fprintf(out, "%s%s  %s: %s\n", statusIndent,
							event.CreatedAt.Local().Format("2006-01-02 15:04"), event.Event, event.Detail)
					}
				}
				return nil
			})
		},
	}
}
