package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelscraper/pkg/config"
	"reelscraper/pkg/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := NewService(config.DefaultConfig(), nil)
	t.Cleanup(s.Close)
	return s
}

func TestServiceFetchItemRejectsEmptyURL(t *testing.T) {
	s := newTestService(t)

	_, err := s.FetchItem(context.Background(), "")
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
}

func TestServiceFetchUserFeedValidatesUsername(t *testing.T) {
	s := newTestService(t)

	tests := []string{"", "has space", "way-too!strange"}
	for _, username := range tests {
		_, err := s.FetchUserFeed(context.Background(), username, 10)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput), username)
	}
}

func TestServiceFetchUserFeedValidatesLimit(t *testing.T) {
	s := newTestService(t)

	for _, limit := range []int{-1, 101, 1000} {
		_, err := s.FetchUserFeed(context.Background(), "natgeo", limit)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput), limit)
	}
}

func TestServiceCacheStats(t *testing.T) {
	s := newTestService(t)

	stats := s.CacheStats()
	assert.Equal(t, 0, stats.Total)
}
