package registry

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"songscout/internal/config"
	"songscout/internal/logging"
	"songscout/internal/services"
)

// Portal searches the registry's public web portal with a browser when the
// API path yields nothing. No session is required; results are parsed
// heuristically from rendered table text.
type Portal struct {
	cfg    config.Registry
	logger *slog.Logger

	mu          sync.Mutex
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
}

// NewPortal builds a portal searcher. The browser launches lazily.
func NewPortal(cfg config.Registry, logger *slog.Logger) *Portal {
	return &Portal{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "registry-portal"),
	}
}

// Search queries the public portal by ISRC and parses the result table.
func (p *Portal) Search(ctx context.Context, isrc string) (*Work, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureBrowserLocked(); err != nil {
		return nil, err
	}

	searchURL := p.cfg.PortalURL + "?query=" + url.QueryEscape(isrc)
	navCtx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.TimeoutSeconds)*time.Second)
	defer cancel()
	tabCtx, cancelTab := chromedp.NewContext(p.browserCtx)
	defer cancelTab()

	var bodyText string
	err := chromedp.Run(tabCtx, chromedp.Tasks{
		chromedp.ActionFunc(func(actionCtx context.Context) error {
			done := make(chan error, 1)
			go func() { done <- chromedp.Navigate(searchURL).Do(actionCtx) }()
			select {
			case err := <-done:
				return err
			case <-navCtx.Done():
				return navCtx.Err()
			}
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Text("body", &bodyText, chromedp.ByQuery, chromedp.AtLeast(0)),
	})
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, sourceName, "portal search", "page load failed", err)
	}

	work := parsePortalText(bodyText)
	if work == nil {
		return nil, services.Wrap(services.ErrNoData, sourceName, "portal search",
			"no work rows on portal results page", nil)
	}
	p.logger.Debug("portal result parsed",
		logging.String("isrc", isrc),
		logging.Int("publishers", len(work.Publishers)))
	return work, nil
}

// Close tears down the browser if one was launched.
func (p *Portal) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelCtx != nil {
		p.cancelCtx()
		p.cancelCtx = nil
	}
	if p.cancelAlloc != nil {
		p.cancelAlloc()
		p.cancelAlloc = nil
	}
	p.browserCtx = nil
}

func (p *Portal) ensureBrowserLocked() error {
	if p.browserCtx != nil {
		return nil
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return services.Wrap(services.ErrSourceUnavailable, sourceName, "portal launch", "browser launch failed", err)
	}
	p.browserCtx = browserCtx
	p.cancelAlloc = cancelAlloc
	p.cancelCtx = cancelCtx
	return nil
}

var (
	reISWC = regexp.MustCompile(`\bT-?\d{3}[.\s]?\d{3}[.\s]?\d{3}-?\d\b`)

	rePortalPublishers = regexp.MustCompile(`(?i)publishers?[:\s]+([^\n]+)`)
	rePortalWriters    = regexp.MustCompile(`(?i)writers?[:\s]+([^\n]+)`)

	rePortalListSplit = regexp.MustCompile(`\s*(?:,|;|/|\|)\s*`)
)

// parsePortalText extracts a work from rendered portal text. Returns nil when
// the page carries no recognizable work data.
func parsePortalText(text string) *Work {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var work Work
	if m := reISWC.FindString(text); m != "" {
		work.ISWC = m
	}
	if m := rePortalPublishers.FindStringSubmatch(text); m != nil {
		work.Publishers = splitPortalList(m[1])
	}
	if m := rePortalWriters.FindStringSubmatch(text); m != nil {
		work.Writers = splitPortalList(m[1])
	}

	if work.ISWC == "" && len(work.Publishers) == 0 && len(work.Writers) == 0 {
		return nil
	}
	return &work
}

func splitPortalList(list string) []string {
	var out []string
	for _, item := range rePortalListSplit.Split(list, -1) {
		item = strings.TrimSpace(item)
		if item != "" && !strings.EqualFold(item, "n/a") {
			out = append(out, item)
		}
	}
	return out
}
