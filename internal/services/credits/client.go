package credits

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"songscout/internal/authhealth"
	"songscout/internal/config"
	"songscout/internal/logging"
	"songscout/internal/services"
	"songscout/internal/vault"
)

const sourceName = "credits"

// Client scrapes writer/publisher credits through a real browser session.
// The session cookies come from the vault; one navigation runs at a time
// against the shared session.
type Client struct {
	cfg    config.Credits
	vault  *vault.Manager
	health *authhealth.Monitor
	logger *slog.Logger

	mu          sync.Mutex
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
}

// New builds a credits scraper. The browser launches lazily on first scrape.
func New(cfg config.Credits, vaultMgr *vault.Manager, health *authhealth.Monitor, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		vault:  vaultMgr,
		health: health,
		logger: logging.NewComponentLogger(logger, sourceName),
	}
}

// Scrape loads a track page and extracts its credits. Auth outcomes are
// recorded on the health monitor for every session-bound navigation; an
// unhealthy session short-circuits without navigating.
func (c *Client) Scrape(ctx context.Context, sourceURL string) (*Credits, error) {
	if !c.cfg.Enabled {
		return nil, services.Wrap(services.ErrConfigurationMissing, sourceName, "scrape", "credits scraping disabled", nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.health.Healthy() {
		return nil, services.Wrap(services.ErrAuthExpired, sourceName, "scrape", "scraping session unhealthy, remediation required", nil)
	}

	cookies, err := c.vault.Cookies()
	if err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, services.Wrap(services.ErrConfigurationMissing, sourceName, "scrape", "no session cookies stored", nil)
	}

	if err := c.ensureBrowserLocked(); err != nil {
		return nil, err
	}

	navCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.NavTimeout)*time.Second)
	defer cancel()
	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	defer cancelTab()

	var panelText, bodyText, finalURL string
	err = chromedp.Run(tabCtx, chromedp.Tasks{
		network.Enable(),
		setCookies(cookies),
		navigateWithDeadline(navCtx, sourceURL),
		chromedp.WaitReady(selPageBody, chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.Text(selCreditsDialog, &panelText, chromedp.ByQuery, chromedp.AtLeast(0)),
		chromedp.Text(selPageBody, &bodyText, chromedp.ByQuery, chromedp.AtLeast(0)),
	})
	if err != nil {
		// Navigation or render failure, not a session verdict.
		return nil, services.Wrap(services.ErrSourceUnavailable, sourceName, "navigate", "page load failed", err)
	}

	if isLoginWall(finalURL, bodyText) {
		c.health.RecordFailure(http.StatusUnauthorized, "credits page rendered a login wall")
		return nil, services.Wrap(services.ErrAuthExpired, sourceName, "scrape", "session rejected by credits page", nil)
	}
	c.health.RecordSuccess(sourceName, nil)

	extracted := extractCredits(panelText, bodyText)
	if extracted.Empty() {
		return nil, services.Wrap(services.ErrNoData, sourceName, "scrape", "no credits text on page", nil)
	}
	c.logger.Debug("credits extracted",
		logging.String("url", sourceURL),
		logging.Int("writers", len(extracted.Writers)))
	return &extracted, nil
}

// Close tears down the browser if one was launched.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelCtx != nil {
		c.cancelCtx()
		c.cancelCtx = nil
	}
	if c.cancelAlloc != nil {
		c.cancelAlloc()
		c.cancelAlloc = nil
	}
	c.browserCtx = nil
}

func (c *Client) ensureBrowserLocked() error {
	if c.browserCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("mute-audio", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Launch now so the first scrape fails fast when no browser is installed.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return services.Wrap(services.ErrSourceUnavailable, sourceName, "launch", "browser launch failed", err)
	}

	c.browserCtx = browserCtx
	c.cancelAlloc = cancelAlloc
	c.cancelCtx = cancelCtx
	c.logger.Info("browser session started", logging.Bool("headless", c.cfg.Headless))
	return nil
}

func setCookies(cookies []vault.Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, cookie := range cookies {
			param := network.SetCookie(cookie.Name, cookie.Value).
				WithDomain(cookie.Domain).
				WithPath(cookie.Path).
				WithSecure(true).
				WithHTTPOnly(true)
			if err := param.Do(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// navigateWithDeadline bounds a single navigation by the caller's deadline
// while keeping the tab context alive for extraction.
func navigateWithDeadline(deadline context.Context, url string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		done := make(chan error, 1)
		go func() {
			done <- chromedp.Navigate(url).Do(ctx)
		}()
		select {
		case err := <-done:
			return err
		case <-deadline.Done():
			return deadline.Err()
		}
	})
}
