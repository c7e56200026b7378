package scraper

import (
	"encoding/json"
	"time"

	"reelscraper/pkg/instagram"
	"reelscraper/pkg/logger"
	"reelscraper/pkg/models"
)

// ExtractionContext carries everything a strategy may draw on: the live
// page and the network payloads buffered during the crawl.
type ExtractionContext struct {
	Page     Page
	Payloads []string
	Username string
}

// Strategy extracts reels from one source. Strategies run in order and
// the first non-empty result wins.
type Strategy interface {
	Name() string
	Extract(ctx *ExtractionContext) ([]models.Reel, error)
}

// pipeline runs extraction strategies in priority order
type pipeline struct {
	strategies []Strategy
	logger     logger.Logger
}

func newPipeline(log logger.Logger) *pipeline {
	if log == nil {
		log = logger.GetLogger()
	}
	return &pipeline{
		strategies: []Strategy{
			&interceptedStrategy{logger: log},
			&sharedDataStrategy{logger: log},
			&domStrategy{logger: log},
		},
		logger: log,
	}
}

// Extract tries each strategy until one yields reels. Strategy failures
// are logged and skipped; an empty result from every strategy is an
// empty feed, not an error.
func (p *pipeline) Extract(ctx *ExtractionContext) []models.Reel {
	for _, strategy := range p.strategies {
		reels, err := strategy.Extract(ctx)
		if err != nil {
			p.logger.DebugWithFields("extraction strategy failed", map[string]interface{}{
				"strategy": strategy.Name(),
				"error":    err.Error(),
			})
			continue
		}
		if len(reels) > 0 {
			p.logger.DebugWithFields("extraction strategy succeeded", map[string]interface{}{
				"strategy": strategy.Name(),
				"count":    len(reels),
			})
			return reels
		}
	}
	return nil
}

// interceptedStrategy reads the GraphQL payloads captured off the wire
// while the feed was loading. This is the richest source: full media
// nodes with URLs, captions and counts.
type interceptedStrategy struct {
	logger logger.Logger
}

func (s *interceptedStrategy) Name() string { return "intercepted" }

func (s *interceptedStrategy) Extract(ctx *ExtractionContext) ([]models.Reel, error) {
	var reels []models.Reel
	seen := make(map[string]struct{})

	for _, payload := range ctx.Payloads {
		var response instagram.GraphQLResponse
		if err := json.Unmarshal([]byte(payload), &response); err != nil {
			// Non-GraphQL payloads end up in the buffer too; skip them.
			continue
		}

		for _, edge := range response.Data.User.EdgeOwnerToTimelineMedia.Edges {
			if !edge.Node.IsVideo {
				continue
			}
			reel, ok := instagram.NodeToReel(edge.Node)
			if !ok {
				continue
			}
			if _, dup := seen[reel.ID]; dup {
				continue
			}
			seen[reel.ID] = struct{}{}
			reels = append(reels, reel)
		}
	}

	return reels, nil
}

// sharedDataStrategy reads the window._sharedData bootstrap blob that
// profile pages embed for their first render.
type sharedDataStrategy struct {
	logger logger.Logger
}

func (s *sharedDataStrategy) Name() string { return "shared_data" }

func (s *sharedDataStrategy) Extract(ctx *ExtractionContext) ([]models.Reel, error) {
	raw, err := ctx.Page.Eval(`window._sharedData ? JSON.stringify(window._sharedData) : ""`)
	if err != nil {
		return nil, err
	}
	blob := raw.Str()
	if blob == "" {
		return nil, nil
	}

	var shared instagram.SharedData
	if err := json.Unmarshal([]byte(blob), &shared); err != nil {
		return nil, err
	}

	var reels []models.Reel
	for _, profilePage := range shared.EntryData.ProfilePage {
		for _, edge := range profilePage.GraphQL.User.EdgeOwnerToTimelineMedia.Edges {
			if !edge.Node.IsVideo {
				continue
			}
			if reel, ok := instagram.NodeToReel(edge.Node); ok {
				reels = append(reels, reel)
			}
		}
	}

	return reels, nil
}

// domStrategy is the last resort: it scrapes reel links straight out of
// the rendered DOM. Only shortcodes are recoverable this way, so the
// result carries a synthesized thumbnail and no media URL or counts.
type domStrategy struct {
	logger logger.Logger
}

func (s *domStrategy) Name() string { return "dom" }

func (s *domStrategy) Extract(ctx *ExtractionContext) ([]models.Reel, error) {
	raw, err := ctx.Page.Eval(`Array.from(document.querySelectorAll('a[href*="/reel/"]')).map(a => a.href)`)
	if err != nil {
		return nil, err
	}

	var reels []models.Reel
	seen := make(map[string]struct{})

	for _, href := range raw.Arr() {
		shortcode, err := instagram.ShortcodeFromURL(href.Str())
		if err != nil {
			continue
		}
		if _, dup := seen[shortcode]; dup {
			continue
		}
		seen[shortcode] = struct{}{}

		reels = append(reels, models.Reel{
			ID:           shortcode,
			SourceURL:    instagram.ReelURL(shortcode),
			ThumbnailURL: instagram.SyntheticThumbnailURL(shortcode),
			PostedAt:     time.Now().UTC(),
		})
	}

	return reels, nil
}
