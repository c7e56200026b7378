package scraper

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ysmood/gson"

	"reelscraper/pkg/models"
)

// mustGson wraps a value the way a real Eval result arrives: as
// decoded JSON.
func mustGson(v interface{}) gson.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return gson.NewFrom(string(raw))
}

// fakePage scripts the browser-facing behavior the scraper reads
type fakePage struct {
	// sequential results for the scroll loop
	counts    []int
	heights   []int64
	countIdx  int
	heightIdx int

	// extraction sources
	sharedData string
	hrefs      []string

	// classifier probes
	hasText    map[string]bool
	hasTextErr error
	url        string
	urlErr     error

	evalCalls []string
}

func (p *fakePage) Eval(js string) (gson.JSON, error) {
	p.evalCalls = append(p.evalCalls, js)

	switch {
	case js == jsVisibleReels:
		idx := p.countIdx
		p.countIdx++
		if idx >= len(p.counts) {
			idx = len(p.counts) - 1
		}
		if idx < 0 {
			return mustGson(0), nil
		}
		return mustGson(p.counts[idx]), nil

	case js == jsScrollHeight:
		idx := p.heightIdx
		p.heightIdx++
		if idx >= len(p.heights) {
			idx = len(p.heights) - 1
		}
		if idx < 0 {
			return mustGson(0), nil
		}
		return mustGson(p.heights[idx]), nil

	case js == jsScrollToBottom:
		return mustGson(nil), nil

	case strings.Contains(js, "window._sharedData"):
		return mustGson(p.sharedData), nil

	case strings.Contains(js, "querySelectorAll"):
		return mustGson(append([]string{}, p.hrefs...)), nil
	}

	return mustGson(nil), nil
}

func (p *fakePage) HasText(pattern string, timeout time.Duration) (bool, error) {
	if p.hasTextErr != nil {
		return false, p.hasTextErr
	}
	return p.hasText[pattern], nil
}

func (p *fakePage) URL() (string, error) {
	if p.urlErr != nil {
		return "", p.urlErr
	}
	if p.url == "" {
		return "https://www.instagram.com/someone/reels/", nil
	}
	return p.url, nil
}

// fetchCall records one FetchPost invocation
type fetchCall struct {
	shortcode string
	proxy     string
}

// fakeClient replays a scripted sequence of FetchPost outcomes
type fakeClient struct {
	reels []models.Reel
	errs  []error
	calls []fetchCall
}

func (c *fakeClient) FetchPost(ctx context.Context, shortcode, proxy string) (models.Reel, error) {
	idx := len(c.calls)
	c.calls = append(c.calls, fetchCall{shortcode: shortcode, proxy: proxy})

	if idx < len(c.errs) && c.errs[idx] != nil {
		return models.Reel{}, c.errs[idx]
	}
	if idx < len(c.reels) {
		return c.reels[idx], nil
	}
	if len(c.reels) > 0 {
		return c.reels[len(c.reels)-1], nil
	}
	return models.Reel{ID: shortcode}, nil
}
