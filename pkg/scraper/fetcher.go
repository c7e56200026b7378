package scraper

import (
	"context"
	"time"

	"reelscraper/pkg/cache"
	"reelscraper/pkg/errors"
	"reelscraper/pkg/instagram"
	"reelscraper/pkg/logger"
	"reelscraper/pkg/models"
	"reelscraper/pkg/proxy"
	"reelscraper/pkg/ratelimit"
	"reelscraper/pkg/retry"
)

// ItemClient fetches a single post's data, optionally through a proxy
type ItemClient interface {
	FetchPost(ctx context.Context, shortcode, proxy string) (models.Reel, error)
}

// FetcherConfig tunes a Fetcher
type FetcherConfig struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	ItemTTL      time.Duration
	RateLimitTTL time.Duration
}

// Fetcher resolves a single reel URL to its data, riding out transient
// rate limiting with cached copies and proxy rotation.
type Fetcher struct {
	client     ItemClient
	rotator    *proxy.Rotator
	items      *cache.Cache[models.Reel]
	flags      *cache.Cache[bool]
	limiter    ratelimit.Limiter
	cfg        FetcherConfig
	useProxies bool
	logger     logger.Logger
}

// NewFetcher creates a Fetcher. The caches are shared with the rest of
// the service; a rotator with no endpoints means direct connections.
func NewFetcher(
	client ItemClient,
	rotator *proxy.Rotator,
	items *cache.Cache[models.Reel],
	flags *cache.Cache[bool],
	limiter ratelimit.Limiter,
	cfg FetcherConfig,
	log logger.Logger,
) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 5 * time.Second
	}
	if cfg.ItemTTL <= 0 {
		cfg.ItemTTL = 5 * time.Minute
	}
	if cfg.RateLimitTTL <= 0 {
		cfg.RateLimitTTL = time.Minute
	}

	return &Fetcher{
		client:     client,
		rotator:    rotator,
		items:      items,
		flags:      flags,
		limiter:    limiter,
		cfg:        cfg,
		useProxies: rotator != nil && rotator.Size() > 0,
		logger:     log,
	}
}

func itemKey(shortcode string) string      { return "reel:" + shortcode }
func rateLimitKey(shortcode string) string { return "ratelimit:" + shortcode }

// FetchItem resolves a reel or post URL to its data. While a rate-limit
// flag for the item is active, a cached copy is served without touching
// the network at all.
func (f *Fetcher) FetchItem(ctx context.Context, rawURL string) (models.Reel, error) {
	shortcode, err := instagram.ShortcodeFromURL(rawURL)
	if err != nil {
		return models.Reel{}, errors.Newf(errors.ErrorTypeInvalidInput, "unsupported reel url %q: %v", rawURL, err)
	}

	if _, flagged := f.flags.Get(rateLimitKey(shortcode)); flagged {
		if cached, ok := f.items.Get(itemKey(shortcode)); ok {
			f.logger.DebugWithFields("serving cached reel during active rate limit", map[string]interface{}{
				"shortcode": shortcode,
			})
			return cached, nil
		}
	}

	reel, err := retry.DoWithResult(func() (models.Reel, error) {
		return f.fetchOnce(ctx, shortcode)
	}, &retry.Config{
		MaxAttempts: f.cfg.MaxAttempts,
		Backoff: &retry.LinearBackoff{
			BaseDelay: f.cfg.BaseDelay,
			Increment: f.cfg.BaseDelay,
		},
		RetryIf: func(err error) bool {
			return errors.IsType(err, errors.ErrorTypeRateLimit)
		},
		Context: ctx,
		Logger:  f.logger,
	})
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeRateLimit) {
			// Retries exhausted; one last chance to serve stale.
			if cached, ok := f.items.Get(itemKey(shortcode)); ok {
				return cached, nil
			}
		}
		return models.Reel{}, err
	}

	return reel, nil
}

// fetchOnce performs a single throttled network attempt.
func (f *Fetcher) fetchOnce(ctx context.Context, shortcode string) (models.Reel, error) {
	endpoint := ""
	if f.useProxies {
		var ok bool
		endpoint, ok = f.rotator.Next()
		if !ok {
			if cached, found := f.items.Get(itemKey(shortcode)); found {
				return cached, nil
			}
			return models.Reel{}, errors.New(errors.ErrorTypePoolExhausted, "all proxy endpoints evicted")
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return models.Reel{}, errors.Newf(errors.ErrorTypeTimeout, "throttle wait cancelled: %v", err)
		}
	}

	reel, err := f.client.FetchPost(ctx, shortcode, endpoint)
	if err != nil {
		if endpoint != "" {
			f.rotator.Evict(endpoint)
			f.logger.WarnWithFields("evicted proxy endpoint after failure", map[string]interface{}{
				"endpoint":  endpoint,
				"shortcode": shortcode,
				"remaining": f.rotator.Size(),
			})
		}

		if errors.IsType(err, errors.ErrorTypeRateLimit) || errors.IsRateLimitSignature(err.Error()) {
			f.flags.SetWithTTL(rateLimitKey(shortcode), true, f.cfg.RateLimitTTL)
			if cached, found := f.items.Get(itemKey(shortcode)); found {
				f.logger.InfoWithFields("rate limited, serving cached reel", map[string]interface{}{
					"shortcode": shortcode,
				})
				return cached, nil
			}
			if !errors.IsType(err, errors.ErrorTypeRateLimit) {
				return models.Reel{}, errors.Newf(errors.ErrorTypeRateLimit, "rate limited: %v", err)
			}
		}
		return models.Reel{}, err
	}

	f.items.SetWithTTL(itemKey(shortcode), reel, f.cfg.ItemTTL)
	f.flags.Delete(rateLimitKey(shortcode))
	return reel, nil
}
