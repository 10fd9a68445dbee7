package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"songscout/internal/config"
	"songscout/internal/scheduler"
	"songscout/internal/store"
)

func newEnqueueCommand(ctx *commandContext) *cobra.Command {
	var phase string
	var snapshot bool
	var process bool

	cmd := &cobra.Command{
		Use:   "enqueue <track-id> [track-id...]",
		Short: "Queue tracks for enrichment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseTrackIDs(args)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cliLogger()
			if err != nil {
				return err
			}

			set, err := buildServices(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer set.close()

			job, err := set.queue.Enqueue(cmd.Context(), ids, phase, snapshot)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued job %s for %d tracks\n", shortJobID(job.ID), len(ids))

			if process {
				processed, err := set.queue.ProcessQueuedJobs(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %d jobs\n", processed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&phase, "phase", "", "Run a single phase instead of the full sequence")
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "Capture a performance snapshot after the job")
	cmd.Flags().BoolVar(&process, "process", false, "Drain the queue inline instead of waiting for the daemon")
	return cmd
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	var process bool

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Queue failed enrichments for another pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedulerEntry(cmd, ctx, process, func(sched *scheduler.Scheduler) (int, string, error) {
				count, err := sched.RunRetryJob(cmd.Context())
				return count, "tracks queued for retry", err
			})
		},
	}

	cmd.Flags().BoolVar(&process, "process", false, "Drain the queue inline instead of waiting for the daemon")
	return cmd
}

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	var process bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Refresh analytics for all charting tracks and capture a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedulerEntry(cmd, ctx, process, func(sched *scheduler.Scheduler) (int, string, error) {
				count, err := sched.RunPerformanceSnapshotJob(cmd.Context())
				return count, "tracks queued for analytics refresh", err
			})
		},
	}

	cmd.Flags().BoolVar(&process, "process", false, "Drain the queue inline instead of waiting for the daemon")
	return cmd
}

func runSchedulerEntry(cmd *cobra.Command, ctx *commandContext, process bool, entry func(*scheduler.Scheduler) (int, string, error)) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cliLogger()
	if err != nil {
		return err
	}

	set, err := buildServices(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer set.close()

	sched := scheduler.New(cfg.Scheduler, set.store, set.queue, set.fetcher, set.health, logger)
	count, what, err := entry(sched)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", count, what)

	if process && count > 0 {
		processed, err := set.queue.ProcessQueuedJobs(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d jobs\n", processed)
	}
	return nil
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent enrichment jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				jobs, err := st.ListJobs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					phase := job.TargetPhase
					if phase == "" {
						phase = "all"
					}
					rows = append(rows, []string{
						shortJobID(job.ID),
						string(job.Status),
						phase,
						strconv.Itoa(len(job.TrackIDs)),
						strconv.FormatInt(job.TracksProcessed, 10),
						strconv.FormatInt(job.TracksEnriched, 10),
						strconv.FormatInt(job.Errors, 10),
						formatTime(&job.CreatedAt),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]tableColumn{
						column("JOB"), column("STATUS"), column("PHASE"),
						rightColumn("TRACKS"), rightColumn("PROCESSED"),
						rightColumn("ENRICHED"), rightColumn("ERRORS"), column("CREATED"),
					},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of jobs to list")
	return cmd
}
