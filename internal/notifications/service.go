package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"songscout/internal/config"
)

const userAgent = "Songscout-Go/0.1.0"

// Service defines the notification surface exposed to pipeline components.
// Delivery is best-effort; callers never block on a push.
type Service interface {
	NotifyJobStarted(ctx context.Context, jobID string, trackCount int) error
	NotifyTrackEnriched(ctx context.Context, jobID, phase string, trackID int64) error
	NotifyJobCompleted(ctx context.Context, jobID string, processed, enriched, errors int) error
	NotifyJobFailed(ctx context.Context, jobID, message string) error
	NotifyHotLead(ctx context.Context, songwriter string, score int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyJobStarted(ctx context.Context, jobID string, trackCount int) error {
	data := payload{
		title:   "Songscout - Job Started",
		message: fmt.Sprintf("Enriching %d tracks (job %s)", trackCount, shortID(jobID)),
		tags:    []string{"songscout", "job", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTrackEnriched(ctx context.Context, jobID, phase string, trackID int64) error {
	data := payload{
		title:    "Songscout - Track Enriched",
		message:  fmt.Sprintf("Track %d passed %s (job %s)", trackID, phase, shortID(jobID)),
		tags:     []string{"songscout", "track", "enriched"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, jobID string, processed, enriched, errors int) error {
	var title, message string
	if errors == 0 {
		title = "Songscout - Job Complete"
		message = fmt.Sprintf("Job %s: %d processed, %d enriched", shortID(jobID), processed, enriched)
	} else {
		title = "Songscout - Job Complete (with errors)"
		message = fmt.Sprintf("Job %s: %d processed, %d enriched, %d errors", shortID(jobID), processed, enriched, errors)
	}
	data := payload{
		title:   title,
		message: message,
		tags:    []string{"songscout", "job", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, jobID, message string) error {
	data := payload{
		title:    "Songscout - Job Failed",
		message:  fmt.Sprintf("Job %s failed: %s", shortID(jobID), strings.TrimSpace(message)),
		tags:     []string{"songscout", "job", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyHotLead(ctx context.Context, songwriter string, score int) error {
	data := payload{
		title:    "Songscout - Hot Lead",
		message:  fmt.Sprintf("%s scored %d/10", strings.TrimSpace(songwriter), score),
		tags:     []string{"songscout", "lead", "hot"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Songscout - Test",
		message:  "Notification system test",
		tags:     []string{"songscout", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func shortID(jobID string) string {
	if len(jobID) > 8 {
		return jobID[:8]
	}
	return jobID
}

type noopService struct{}

func (noopService) NotifyJobStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyTrackEnriched(context.Context, string, string, int64) error {
	return nil
}
func (noopService) NotifyJobCompleted(context.Context, string, int, int, int) error { return nil }
func (noopService) NotifyJobFailed(context.Context, string, string) error           { return nil }
func (noopService) NotifyHotLead(context.Context, string, int) error                { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }
