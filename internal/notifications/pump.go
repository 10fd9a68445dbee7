package notifications

import (
	"context"
	"log/slog"

	"songscout/internal/config"
	"songscout/internal/jobqueue"
	"songscout/internal/logging"
)

// Pump forwards queue progress events to the notification service, filtered
// by the per-event configuration flags. Delivery failures are logged and
// dropped; the queue never waits on a push.
type Pump struct {
	cfg     config.Notifications
	service Service
	logger  *slog.Logger
}

func NewPump(cfg config.Notifications, service Service, logger *slog.Logger) *Pump {
	return &Pump{
		cfg:     cfg,
		service: service,
		logger:  logging.NewComponentLogger(logger, "notifications"),
	}
}

// Run consumes events from the broadcaster until ctx is cancelled.
func (p *Pump) Run(ctx context.Context, events *jobqueue.Broadcaster) {
	ch, cancel := events.Subscribe(64)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			p.handle(ctx, event)
		}
	}
}

func (p *Pump) handle(ctx context.Context, event jobqueue.ProgressEvent) {
	var err error
	switch event.Type {
	case jobqueue.EventJobStarted:
		if !p.cfg.JobStarted {
			return
		}
		err = p.service.NotifyJobStarted(ctx, event.JobID, int(event.TrackCount))
	case jobqueue.EventTrackEnriched:
		if !p.cfg.TrackEnriched {
			return
		}
		err = p.service.NotifyTrackEnriched(ctx, event.JobID, event.Phase, event.TrackID)
	case jobqueue.EventJobCompleted:
		if !p.cfg.JobCompleted {
			return
		}
		err = p.service.NotifyJobCompleted(ctx, event.JobID,
			int(event.TracksProcessed), int(event.TracksEnriched), int(event.Errors))
	case jobqueue.EventJobFailed:
		if !p.cfg.Errors {
			return
		}
		err = p.service.NotifyJobFailed(ctx, event.JobID, event.Message)
	default:
		return
	}

	if err != nil {
		p.logger.Warn("notification delivery failed",
			logging.String("event", string(event.Type)),
			logging.String(logging.FieldJobID, event.JobID),
			logging.Error(err))
	}
}
