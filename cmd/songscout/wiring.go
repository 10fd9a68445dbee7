package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"songscout/internal/authhealth"
	"songscout/internal/config"
	"songscout/internal/enrich"
	"songscout/internal/jobqueue"
	"songscout/internal/logging"
	"songscout/internal/notifications"
	"songscout/internal/playlist"
	"songscout/internal/services/catalog"
	"songscout/internal/services/chartdata"
	"songscout/internal/services/credits"
	"songscout/internal/services/musicdb"
	"songscout/internal/services/registry"
	"songscout/internal/store"
	"songscout/internal/vault"
)

// serviceSet bundles the wired runtime components the daemon and the
// scheduler entry points share.
type serviceSet struct {
	store    *store.Store
	vault    *vault.Manager
	health   *authhealth.Monitor
	fetcher  playlist.Fetcher
	queue    *jobqueue.Manager
	notifier notifications.Service

	closers []func()
}

// buildServices wires the store, vault, auth monitor, source clients, and
// job queue. Optional sources missing their configuration are left out of the
// phase list; the queue skips absent phases at run time.
func buildServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*serviceSet, error) {
	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	set := &serviceSet{store: st}
	set.closers = append(set.closers, func() { _ = st.Close() })

	cipher := vault.NewCipher(cfg.Vault.Secret, logger)
	set.vault = vault.NewManager(vault.NewFileTokenStore(cfg.Vault.TokenPath, cipher), nil, logger)

	set.health, err = authhealth.Load(cfg.AuthStatePath(), logger)
	if err != nil {
		set.close()
		return nil, fmt.Errorf("load auth state: %w", err)
	}

	catalogClient, err := catalog.New(ctx, cfg.Catalog, logger)
	if err != nil {
		set.close()
		return nil, fmt.Errorf("catalog client: %w", err)
	}
	set.fetcher = catalogClient

	phases := []enrich.Phase{
		enrich.NewMetadataPhase(st, catalogClient, logger),
	}

	if cfg.Credits.Enabled {
		scraper := credits.New(cfg.Credits, set.vault, set.health, logger)
		set.closers = append(set.closers, scraper.Close)
		phases = append(phases, enrich.NewCreditsPhase(st, scraper, logger))
	} else {
		logger.Info("credits scraping disabled, phase not registered")
	}

	phases = append(phases, enrich.NewArtistPhase(st, musicdb.New(cfg.MusicDB, logger), logger))

	if cfg.Chart.APIKey != "" {
		phases = append(phases, enrich.NewAnalyticsPhase(st, chartdata.New(cfg.Chart, logger),
			cfg.Workflow.EnrichConcurrency, cfg.Chart.StalenessDays, logger))
	} else {
		logger.Info("chart api key missing, analytics phase not registered")
	}

	if cfg.Registry.ClientID != "" || cfg.Registry.PortalURL != "" {
		var portal registry.PortalSearcher
		if cfg.Registry.PortalURL != "" {
			p := registry.NewPortal(cfg.Registry, logger)
			set.closers = append(set.closers, p.Close)
			portal = p
		}
		phases = append(phases, enrich.NewRegistryPhase(st, registry.New(cfg.Registry, portal, logger), logger))
	} else {
		logger.Info("registry credentials and portal missing, phase not registered")
	}

	set.queue = jobqueue.NewManager(st, phases,
		time.Duration(cfg.Workflow.QueuePollInterval)*time.Second, logger)

	set.notifier = notifications.NewService(cfg.Notifications)
	set.queue.SetLeadNotifier(set.notifier)

	names := make([]string, 0, len(phases))
	for _, phase := range phases {
		names = append(names, phase.Name())
	}
	logger.Info("services wired", logging.Any("phases", names))
	return set, nil
}

// close releases resources in reverse wiring order.
func (s *serviceSet) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
