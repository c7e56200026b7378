package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"reelscraper/pkg/browser"
	"reelscraper/pkg/instagram"
	"reelscraper/pkg/logger"
	"reelscraper/pkg/models"
)

// CrawlerConfig tunes a Crawler
type CrawlerConfig struct {
	NavigationTimeout time.Duration
	ProbeTimeout      time.Duration
	MaxScrolls        int
}

// Crawler drives a browser tab through a user's reels feed and
// extracts what loaded.
type Crawler struct {
	manager    *browser.Manager
	classifier *classifier
	scroller   *scroller
	pipeline   *pipeline
	navTimeout time.Duration
	logger     logger.Logger
}

// NewCrawler creates a Crawler on top of a shared browser manager
func NewCrawler(manager *browser.Manager, cfg CrawlerConfig, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.GetLogger()
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = time.Second
	}
	if cfg.MaxScrolls <= 0 {
		cfg.MaxScrolls = 50
	}

	return &Crawler{
		manager:    manager,
		classifier: newClassifier(cfg.ProbeTimeout, log),
		scroller:   newScroller(cfg.MaxScrolls, log),
		pipeline:   newPipeline(log),
		navTimeout: cfg.NavigationTimeout,
		logger:     log,
	}
}

// payloadBuffer collects intercepted response bodies. The browser event
// loop writes from its own goroutine.
type payloadBuffer struct {
	mu       sync.Mutex
	payloads []string
}

func (b *payloadBuffer) add(payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads = append(b.payloads, payload)
}

func (b *payloadBuffer) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.payloads))
	copy(out, b.payloads)
	return out
}

func (b *payloadBuffer) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads = nil
}

// CrawlFeed loads a user's reels feed in a fresh incognito tab, scrolls
// until enough items are visible and extracts them. Failures are
// reported through the result status, never as a panic.
func (c *Crawler) CrawlFeed(ctx context.Context, username string, limit int) (result models.CrawlResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorWithFields("crawl panicked", map[string]interface{}{
				"username": username,
				"panic":    fmt.Sprint(r),
			})
			result = errorResult(fmt.Sprintf("crawl failed: %v", r))
		}
	}()

	start := time.Now()
	c.logger.InfoWithFields("starting feed crawl", map[string]interface{}{
		"username": username,
		"limit":    limit,
	})

	b, err := c.manager.Browser()
	if err != nil {
		return errorResult(err.Error())
	}

	incognito, err := b.Incognito()
	if err != nil {
		return errorResult(fmt.Sprintf("failed to open incognito context: %v", err))
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return errorResult(fmt.Sprintf("failed to open tab: %v", err))
	}
	page = page.Context(ctx)

	buffer := &payloadBuffer{}
	defer func() {
		buffer.clear()
		if err := page.Close(); err != nil {
			c.logger.WarnWithFields("failed to close tab", map[string]interface{}{
				"username": username,
				"error":    err.Error(),
			})
		}
		dispose := proto.TargetDisposeBrowserContext{BrowserContextID: incognito.BrowserContextID}
		if err := dispose.Call(incognito); err != nil {
			c.logger.WarnWithFields("failed to dispose browsing context", map[string]interface{}{
				"username": username,
				"error":    err.Error(),
			})
		}
	}()

	c.listenForPayloads(page, buffer)

	if err := c.navigate(page, username); err != nil {
		return errorResult(err.Error())
	}

	result = c.harvest(ctx, NewPage(page), username, limit, buffer)

	c.logger.InfoWithFields("feed crawl finished", map[string]interface{}{
		"username": username,
		"status":   string(result.Status),
		"reels":    len(result.Reels),
		"duration": time.Since(start),
	})
	return result
}

// harvest runs the post-navigation stages on a loaded feed page:
// classify the account, scroll until enough reels are visible, extract
// and truncate to the requested limit.
func (c *Crawler) harvest(ctx context.Context, page Page, username string, limit int, buffer *payloadBuffer) models.CrawlResult {
	status, message := c.classifier.Classify(page)
	if status != models.StatusSuccess {
		c.logger.WarnWithFields("feed crawl short-circuited", map[string]interface{}{
			"username": username,
			"status":   string(status),
			"message":  message,
		})
		return models.CrawlResult{Reels: []models.Reel{}, Status: status, Message: message}
	}

	visible, err := c.scroller.Run(ctx, page, limit)
	if err != nil {
		return errorResult(fmt.Sprintf("scrolling failed: %v", err))
	}

	reels := c.pipeline.Extract(&ExtractionContext{
		Page:     page,
		Payloads: buffer.snapshot(),
		Username: username,
	})
	if len(reels) > limit {
		reels = reels[:limit]
	}
	if reels == nil {
		reels = []models.Reel{}
	}

	c.logger.DebugWithFields("feed extraction complete", map[string]interface{}{
		"username": username,
		"visible":  visible,
		"reels":    len(reels),
	})

	return models.CrawlResult{Reels: reels, Status: models.StatusSuccess}
}

// listenForPayloads buffers bodies of data endpoint responses for the
// life of the tab. The consumer goroutine exits when the tab closes.
func (c *Crawler) listenForPayloads(page *rod.Page, buffer *payloadBuffer) {
	go page.EachEvent(func(e *proto.NetworkResponseReceived) {
		if !instagram.IsDataEndpoint(e.Response.URL) {
			return
		}
		body, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(page)
		if err != nil {
			// Bodies of streamed or evicted responses are gone; skip.
			return
		}
		buffer.add(body.Body)
	})()
}

// navigate loads the reels feed and waits for DOMContentLoaded.
func (c *Crawler) navigate(page *rod.Page, username string) error {
	feedURL := instagram.ReelsURL(username)
	timed := page.Timeout(c.navTimeout)

	wait := timed.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := timed.Navigate(feedURL); err != nil {
		if strings.Contains(err.Error(), context.DeadlineExceeded.Error()) {
			return fmt.Errorf("request timeout")
		}
		return fmt.Errorf("navigation failed: %v", err)
	}
	wait()

	if timed.GetContext().Err() != nil {
		return fmt.Errorf("request timeout")
	}
	return nil
}

func errorResult(message string) models.CrawlResult {
	return models.CrawlResult{
		Reels:   []models.Reel{},
		Status:  models.StatusError,
		Message: message,
	}
}
