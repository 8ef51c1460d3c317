package trending

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCount = 10
	maxCount     = 50
	cacheTTL     = 10 * time.Minute
	minTopicLen  = 3
)

// FeedProvider supplies most-popular videos.
type FeedProvider interface {
	Fetch(ctx context.Context, max int) ([]Video, error)
}

// Service builds the trending keyword feed: live chart titles distilled into
// topics, topped up from the curated suggestion list, cached in redis.
// Concurrent cache misses for the same count collapse onto one upstream
// fetch.
type Service struct {
	feed   FeedProvider
	cache  *redis.Client
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs the trending service. A nil cache client disables
// caching.
func NewService(feed FeedProvider, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{feed: feed, cache: cache, logger: logger}
}

// Keywords returns up to count trending keywords. Provider failure is not an
// error: the curated suggestions stand in so the endpoint stays useful.
func (s *Service) Keywords(ctx context.Context, count int) ([]Keyword, error) {
	if count <= 0 {
		count = defaultCount
	}
	if count > maxCount {
		count = maxCount
	}

	key := fmt.Sprintf("trending:keywords:%d", count)
	if keywords, ok := s.cacheGet(ctx, key); ok {
		return keywords, nil
	}

	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		return s.build(ctx, key, count), nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		return res.Val.([]Keyword), nil
	}
}

func (s *Service) build(ctx context.Context, key string, count int) []Keyword {
	fetchMax := count * 2
	if fetchMax > maxCount {
		fetchMax = maxCount
	}
	videos, err := s.feed.Fetch(ctx, fetchMax)
	if err != nil {
		s.logger.Warn("trending feed unavailable, serving suggestions", "error", err)
		return suggestionsOnly(count)
	}

	keywords := distill(videos, count)
	s.cacheSet(ctx, key, keywords)
	return keywords
}

// distill turns feed titles into de-duplicated keywords and tops the list up
// from the suggestions when the feed yields too few.
func distill(videos []Video, count int) []Keyword {
	keywords := make([]Keyword, 0, count)
	seen := make(map[string]struct{})

	for _, video := range videos {
		if len(keywords) >= count {
			break
		}
		topic := extractTopic(video.Title)
		if utf8.RuneCountInString(topic) < minTopicLen {
			continue
		}
		lower := strings.ToLower(topic)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		keywords = append(keywords, Keyword{
			Keyword:        topic,
			Category:       categoryName(video.CategoryID),
			EstimatedViews: video.ViewCount,
			Source:         SourceTrending,
		})
	}

	for _, suggestion := range suggestedKeywords {
		if len(keywords) >= count {
			break
		}
		lower := strings.ToLower(suggestion.Keyword)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		keywords = append(keywords, suggestion)
	}
	return keywords
}

func suggestionsOnly(count int) []Keyword {
	if count > len(suggestedKeywords) {
		count = len(suggestedKeywords)
	}
	return append([]Keyword(nil), suggestedKeywords[:count]...)
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]Keyword, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("trending cache read failed", "error", err)
		return nil, false
	}
	var keywords []Keyword
	if err := json.Unmarshal(payload, &keywords); err != nil {
		return nil, false
	}
	return keywords, true
}

func (s *Service) cacheSet(ctx context.Context, key string, keywords []Keyword) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(keywords)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
		s.logger.Warn("trending cache write failed", "error", err)
	}
}
