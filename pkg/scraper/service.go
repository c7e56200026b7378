package scraper

import (
	"context"
	"time"

	"reelscraper/pkg/browser"
	"reelscraper/pkg/cache"
	"reelscraper/pkg/config"
	"reelscraper/pkg/errors"
	"reelscraper/pkg/instagram"
	"reelscraper/pkg/logger"
	"reelscraper/pkg/models"
	"reelscraper/pkg/proxy"
	"reelscraper/pkg/ratelimit"
)

const (
	// DefaultFeedLimit is the number of reels a feed crawl returns when
	// the caller does not ask for a specific count.
	DefaultFeedLimit = 30

	// MaxFeedLimit caps how many reels a single crawl will chase.
	MaxFeedLimit = 100
)

// Service is the public entry point: one shared browser, proxy pool
// and cache behind the two fetch operations.
type Service struct {
	fetcher *Fetcher
	crawler *Crawler
	items   *cache.Cache[models.Reel]
	flags   *cache.Cache[bool]
	manager *browser.Manager
	logger  logger.Logger
}

// NewService wires a Service from configuration
func NewService(cfg *config.Config, log logger.Logger) *Service {
	if log == nil {
		log = logger.GetLogger()
	}

	items := cache.New[models.Reel](cfg.Cache.ItemTTL)
	flags := cache.New[bool](cfg.Cache.RateLimitTTL)
	rotator := proxy.New(cfg.Proxy.Endpoints)
	limiter := ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)
	manager := browser.NewManager(cfg.Browser.Headless, log)
	client := instagram.NewClient(cfg.Instagram.RequestTimeout, cfg.Instagram.UserAgent, log)

	fetcher := NewFetcher(client, rotator, items, flags, limiter, FetcherConfig{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		BaseDelay:    cfg.Retry.BaseDelay,
		ItemTTL:      cfg.Cache.ItemTTL,
		RateLimitTTL: cfg.Cache.RateLimitTTL,
	}, log)

	crawler := NewCrawler(manager, CrawlerConfig{
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		ProbeTimeout:      cfg.Browser.ProbeTimeout,
		MaxScrolls:        cfg.Browser.MaxScrolls,
	}, log)

	return &Service{
		fetcher: fetcher,
		crawler: crawler,
		items:   items,
		flags:   flags,
		manager: manager,
		logger:  log,
	}
}

// FetchItem resolves a single reel URL to its data
func (s *Service) FetchItem(ctx context.Context, rawURL string) (models.Reel, error) {
	if rawURL == "" {
		return models.Reel{}, errors.New(errors.ErrorTypeInvalidInput, "url is required")
	}
	return s.fetcher.FetchItem(ctx, rawURL)
}

// FetchUserFeed crawls a user's reels feed. A zero limit means
// DefaultFeedLimit; anything outside [1, MaxFeedLimit] is rejected.
func (s *Service) FetchUserFeed(ctx context.Context, username string, limit int) (models.CrawlResult, error) {
	username = instagram.SanitizeUsername(username)
	if !instagram.IsValidUsername(username) {
		return models.CrawlResult{}, errors.Newf(errors.ErrorTypeInvalidInput, "invalid username %q", username)
	}

	if limit == 0 {
		limit = DefaultFeedLimit
	}
	if limit < 1 || limit > MaxFeedLimit {
		return models.CrawlResult{}, errors.Newf(errors.ErrorTypeInvalidInput, "limit must be between 1 and %d", MaxFeedLimit)
	}

	return s.crawler.CrawlFeed(ctx, username, limit), nil
}

// CacheStats exposes item cache counters for observability
func (s *Service) CacheStats() cache.Stats {
	return s.items.Stats()
}

// Close releases the shared browser
func (s *Service) Close() {
	s.manager.Close()
}
