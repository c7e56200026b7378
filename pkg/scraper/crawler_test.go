package scraper

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelscraper/pkg/models"
)

// newTestCrawler builds a Crawler whose waits are instant so harvest
// runs synchronously against a fakePage.
func newTestCrawler() *Crawler {
	c := NewCrawler(nil, CrawlerConfig{}, nil)
	c.classifier.sleep = func(time.Duration) {}
	c.scroller.wait = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return c
}

// feedPayload builds an intercepted feed response carrying one video
// node per shortcode.
func feedPayload(shortcodes ...string) string {
	nodes := make([]string, len(shortcodes))
	for i, sc := range shortcodes {
		nodes[i] = fmt.Sprintf(
			`{"node": {"shortcode": %q, "is_video": true, "video_url": "https://cdn.example/%s.mp4"}}`,
			sc, sc,
		)
	}
	return `{"data": {"user": {"edge_owner_to_timeline_media": {"edges": [` +
		strings.Join(nodes, ",") + `]}}}}`
}

func TestHarvestNotFoundShortCircuits(t *testing.T) {
	c := newTestCrawler()
	page := &fakePage{hasText: map[string]bool{
		notFoundMarkers[0]: true,
	}}
	buffer := &payloadBuffer{}
	buffer.add(feedPayload("R1"))

	result := c.harvest(context.Background(), page, "nouser", 10, buffer)

	assert.Equal(t, models.StatusNotFound, result.Status)
	assert.Equal(t, "Account does not exist", result.Message)
	require.NotNil(t, result.Reels)
	assert.Empty(t, result.Reels)

	// Scrolling and extraction never touched the page.
	assert.Empty(t, page.evalCalls)
}

func TestHarvestTruncatesToLimit(t *testing.T) {
	c := newTestCrawler()
	page := &fakePage{
		hasText: map[string]bool{},
		counts:  []int{7},
		heights: []int64{1000},
	}
	buffer := &payloadBuffer{}
	buffer.add(feedPayload("R1", "R2", "R3", "R4", "R5", "R6", "R7"))

	result := c.harvest(context.Background(), page, "pubuser", 5, buffer)

	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Empty(t, result.Message)
	require.Len(t, result.Reels, 5)
	for i, reel := range result.Reels {
		assert.Equal(t, fmt.Sprintf("R%d", i+1), reel.ID)
	}
}

func TestHarvestEmptyFeedIsSuccess(t *testing.T) {
	c := newTestCrawler()
	page := &fakePage{
		hasText: map[string]bool{},
		counts:  []int{0},
		heights: []int64{1000},
	}

	result := c.harvest(context.Background(), page, "pubuser", 10, &payloadBuffer{})

	assert.Equal(t, models.StatusSuccess, result.Status)
	require.NotNil(t, result.Reels)
	assert.Empty(t, result.Reels)
}

func TestHarvestRateLimitedRedirect(t *testing.T) {
	c := newTestCrawler()
	page := &fakePage{
		hasText: map[string]bool{},
		url:     "https://www.instagram.com/accounts/login/?next=%2Fpubuser%2Freels%2F",
	}

	result := c.harvest(context.Background(), page, "pubuser", 10, &payloadBuffer{})

	assert.Equal(t, models.StatusRateLimited, result.Status)
	assert.Equal(t, "Rate limited by Instagram", result.Message)
	assert.Empty(t, result.Reels)
}
