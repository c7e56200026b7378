package scraper

import (
	"strings"
	"time"

	"reelscraper/pkg/logger"
	"reelscraper/pkg/models"
)

// Marker texts Instagram renders for dead-end profile pages. Probed as
// regular expressions, so special characters are escaped.
var (
	notFoundMarkers = []string{
		`Sorry, this page isn't available\.`,
		`Page Not Found`,
	}
	privateMarkers = []string{
		`This Account is Private`,
		`This account is private`,
	}
	blockedURLFragments = []string{
		"challenge",
		"login",
	}
)

// classifierSettleDelay gives dynamically rendered markers a chance to
// appear before the first probe.
const classifierSettleDelay = 2 * time.Second

// classifier decides what kind of profile page the crawler landed on
type classifier struct {
	probeTimeout time.Duration
	settleDelay  time.Duration
	sleep        func(time.Duration)
	logger       logger.Logger
}

func newClassifier(probeTimeout time.Duration, log logger.Logger) *classifier {
	if log == nil {
		log = logger.GetLogger()
	}
	return &classifier{
		probeTimeout: probeTimeout,
		settleDelay:  classifierSettleDelay,
		sleep:        time.Sleep,
		logger:       log,
	}
}

// Classify probes the page in a fixed order: not-found markers, then
// private markers, then redirect checks. Marker misses are data; only
// a page fault yields ERROR.
func (c *classifier) Classify(page Page) (models.AccountStatus, string) {
	if c.settleDelay > 0 {
		c.sleep(c.settleDelay)
	}

	for _, marker := range notFoundMarkers {
		found, err := page.HasText(marker, c.probeTimeout)
		if err != nil {
			return models.StatusError, err.Error()
		}
		if found {
			return models.StatusNotFound, "Account does not exist"
		}
	}

	for _, marker := range privateMarkers {
		found, err := page.HasText(marker, c.probeTimeout)
		if err != nil {
			return models.StatusError, err.Error()
		}
		if found {
			return models.StatusPrivate, "Account is private"
		}
	}

	currentURL, err := page.URL()
	if err != nil {
		return models.StatusError, err.Error()
	}
	for _, fragment := range blockedURLFragments {
		if strings.Contains(currentURL, fragment) {
			c.logger.WarnWithFields("crawl redirected to a block page", map[string]interface{}{
				"url": currentURL,
			})
			return models.StatusRateLimited, "Rate limited by Instagram"
		}
	}

	return models.StatusSuccess, ""
}
