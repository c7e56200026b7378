package scraper

import (
	"context"
	"time"

	"reelscraper/pkg/logger"
	"reelscraper/pkg/retry"
)

const (
	jsScrollToBottom = `window.scrollTo(0, document.body.scrollHeight)`
	jsScrollHeight   = `document.body.scrollHeight`
	jsVisibleReels   = `document.querySelectorAll('a[href*="/reel/"]').length`

	// maxStalls is how many consecutive no-growth iterations mean the
	// feed has no more content.
	maxStalls = 3

	settleDelay = 500 * time.Millisecond
)

// scroller drives the reels feed down until enough items are visible
// or the feed stops growing.
type scroller struct {
	maxIterations int
	stallBackoff  retry.BackoffStrategy
	wait          func(ctx context.Context, delay time.Duration) error
	logger        logger.Logger
}

func newScroller(maxIterations int, log logger.Logger) *scroller {
	if log == nil {
		log = logger.GetLogger()
	}
	return &scroller{
		maxIterations: maxIterations,
		stallBackoff: &retry.ExponentialBackoff{
			BaseDelay:  1 * time.Second,
			MaxDelay:   5 * time.Second,
			Multiplier: 2.0,
		},
		wait:   retry.Wait,
		logger: log,
	}
}

// Run scrolls until targetCount reel links are visible, the feed stalls
// maxStalls times in a row, or the iteration cap is hit. It returns the
// number of visible reel links when it stopped.
func (s *scroller) Run(ctx context.Context, page Page, targetCount int) (int, error) {
	lastHeight := int64(0)
	stalls := 0
	visible := 0

	for iteration := 0; iteration < s.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return visible, err
		}

		countResult, err := page.Eval(jsVisibleReels)
		if err != nil {
			return visible, err
		}
		visible = countResult.Int()

		if visible >= targetCount {
			s.logger.DebugWithFields("scroll target reached", map[string]interface{}{
				"visible":    visible,
				"target":     targetCount,
				"iterations": iteration,
			})
			return visible, nil
		}

		if _, err := page.Eval(jsScrollToBottom); err != nil {
			return visible, err
		}

		heightResult, err := page.Eval(jsScrollHeight)
		if err != nil {
			return visible, err
		}
		height := int64(heightResult.Int())

		if height == lastHeight {
			stalls++
			if err := s.wait(ctx, s.stallBackoff.NextDelay(stalls)); err != nil {
				return visible, err
			}
			if stalls >= maxStalls {
				s.logger.DebugWithFields("feed stopped growing", map[string]interface{}{
					"visible": visible,
					"stalls":  stalls,
				})
				return visible, nil
			}
			continue
		}

		lastHeight = height
		stalls = 0
		if err := s.wait(ctx, settleDelay); err != nil {
			return visible, err
		}
	}

	s.logger.WarnWithFields("scroll iteration cap hit", map[string]interface{}{
		"visible": visible,
		"target":  targetCount,
		"cap":     s.maxIterations,
	})
	return visible, nil
}
