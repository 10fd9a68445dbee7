package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"songscout/internal/logging"
	"songscout/internal/notifications"
	"songscout/internal/scheduler"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the enrichment daemon",
		Long:  "Runs the queue worker and the recurring scheduler until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd.Context(), ctx)
		},
	}
}

func runDaemonProcess(cmdCtx context.Context, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("songscout-%s.log", runID))
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir, "songscout-*.log")

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another songscout daemon is already running (lock %s)", cfg.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	set, err := buildServices(signalCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer set.close()

	pump := notifications.NewPump(cfg.Notifications, set.notifier, logger)
	go pump.Run(signalCtx, set.queue.Events())

	sched := scheduler.New(cfg.Scheduler, set.store, set.queue, set.fetcher, set.health, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		set.queue.Start(signalCtx)
	}()

	logger.Info("songscout daemon started",
		logging.String("db", set.store.Path()),
		logging.String("lock", cfg.LockPath()),
		logging.String("log", logPath))

	<-signalCtx.Done()
	sched.Stop()
	wg.Wait()
	logger.Info("songscout daemon shutting down")
	return nil
}
