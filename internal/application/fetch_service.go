package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kvasern/roost/internal/domain"
	"github.com/kvasern/roost/internal/ports"
)

const (
	DefaultSearchMax   = 50
	DefaultTimelineMax = 20
)

type FetchConfig struct {
	SearchMax   int
	TimelineMax int
}

func (c *FetchConfig) applyDefaults() {
	if c.SearchMax <= 0 {
		c.SearchMax = DefaultSearchMax
	}
	if c.TimelineMax <= 0 {
		c.TimelineMax = DefaultTimelineMax
	}
}

// FetchService composes the read operations against the platform: cache
// lookup, pool acquisition, guarded external call, cache write, release. The
// release runs on every path of an acquired lease, success or not.
type FetchService struct {
	pool   *AccountPool
	guard  *CallGuard
	cache  ports.Cache
	ttls   CacheTTLs
	cfg    FetchConfig
	logger *zap.Logger
	group  singleflight.Group
}

func NewFetchService(pool *AccountPool, guard *CallGuard, cache ports.Cache, ttls CacheTTLs, cfg FetchConfig, logger *zap.Logger) *FetchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()

	return &FetchService{
		pool:   pool,
		guard:  guard,
		cache:  cache,
		ttls:   ttls,
		cfg:    cfg,
		logger: logger,
	}
}

// SearchByQuery runs a bounded keyword search. Concurrent misses for the same
// query collapse into one upstream call.
func (s *FetchService) SearchByQuery(ctx context.Context, query SearchQuery) (SearchResult, error) {
	key := searchKey(query.Query)

	if !query.ForceUpdate {
		var items []domain.Tweet
		if s.readCache(ctx, key, &items) {
			return SearchResult{Query: query.Query, Items: items, FromCache: true}, nil
		}
	}

	value, err, _ := s.group.Do(key, func() (any, error) {
		return s.searchLive(ctx, query, key)
	})
	if err != nil {
		return SearchResult{}, err
	}

	return value.(SearchResult), nil
}

func (s *FetchService) searchLive(ctx context.Context, query SearchQuery, key string) (SearchResult, error) {
	lease, err := s.pool.Acquire(ctx, query.Preferred)
	if err != nil {
		return SearchResult{}, fmt.Errorf("acquire account: %w", err)
	}
	defer s.pool.Release(lease)

	items, err := Guarded(ctx, s.guard, "search", lease, func(opCtx context.Context) ([]domain.Tweet, error) {
		return collectTweets(lease.Session.Search(opCtx, query.Query, s.cfg.SearchMax), s.cfg.SearchMax)
	})
	if err != nil {
		// Negative-cache the failure so a broken query cannot hammer the pool.
		s.writeCache(ctx, key, []domain.Tweet{}, s.ttls.Search.Negative)
		return SearchResult{}, err
	}

	s.writeCache(ctx, key, items, s.ttls.Search.ForCount(len(items)))

	return SearchResult{Query: query.Query, Items: items}, nil
}

type cachedProfile struct {
	Profile  *domain.Profile `json:"profile,omitempty"`
	NotFound bool            `json:"not_found,omitempty"`
}

// FetchUserData resolves profile and timeline as independently cached
// sub-results. The pool is only touched when at least one of them is missing,
// and the timeline is never fetched for an unresolved profile.
func (s *FetchService) FetchUserData(ctx context.Context, query UserQuery) (UserDataResult, error) {
	username := normalizeUsername(query.Username)
	if username == "" {
		return UserDataResult{}, fmt.Errorf("username is required")
	}

	var result UserDataResult
	profileCached := false
	timelineCached := false

	if !query.ForceUpdate {
		var profileEnv cachedProfile
		if s.readCache(ctx, profileKey(username), &profileEnv) {
			profileCached = true
			result.UserInfo = profileEnv.Profile
			result.UserNotFound = profileEnv.NotFound
		}
		if !query.SkipTweets {
			var items []domain.Tweet
			if s.readCache(ctx, timelineKey(username), &items) {
				timelineCached = true
				result.Tweets = items
			}
		}
	}

	needProfile := !profileCached
	needTimeline := !query.SkipTweets && !timelineCached
	if !needProfile && (!needTimeline || result.UserInfo == nil) {
		return result, nil
	}

	lease, err := s.pool.Acquire(ctx, query.Preferred)
	if err != nil {
		return UserDataResult{}, fmt.Errorf("acquire account: %w", err)
	}
	defer s.pool.Release(lease)

	if needProfile {
		profile, err := Guarded(ctx, s.guard, "profile", lease, func(opCtx context.Context) (domain.Profile, error) {
			return lease.Session.GetProfile(opCtx, username)
		})
		switch {
		case errors.Is(err, domain.ErrNotFound):
			result.UserInfo = nil
			result.UserNotFound = true
			s.writeCache(ctx, profileKey(username), cachedProfile{NotFound: true}, s.ttls.ProfileNegative)
		case err != nil:
			return UserDataResult{}, err
		default:
			result.UserInfo = &profile
			s.writeCache(ctx, profileKey(username), cachedProfile{Profile: &profile}, s.ttls.Profile)
		}
	}

	if needTimeline && result.UserInfo != nil {
		items, err := Guarded(ctx, s.guard, "timeline", lease, func(opCtx context.Context) ([]domain.Tweet, error) {
			return collectTweets(lease.Session.Timeline(opCtx, username, s.cfg.TimelineMax), s.cfg.TimelineMax)
		})
		if err != nil {
			s.writeCache(ctx, timelineKey(username), []domain.Tweet{}, s.ttls.Timeline.Negative)
			return UserDataResult{}, err
		}

		result.Tweets = items
		s.writeCache(ctx, timelineKey(username), items, s.ttls.Timeline.ForCount(len(items)))
	}

	return result, nil
}

type cachedTweet struct {
	Tweet    *domain.Tweet `json:"tweet,omitempty"`
	NotFound bool          `json:"not_found,omitempty"`
}

// FetchSingleTweet resolves one item plus its author's profile. A missing item
// is surfaced as a marker with an empty item list, never as a failure.
func (s *FetchService) FetchSingleTweet(ctx context.Context, query TweetQuery) (TweetFetchResult, error) {
	id := strings.TrimSpace(query.ID)
	if id == "" {
		return TweetFetchResult{}, fmt.Errorf("tweet id is required")
	}

	var result TweetFetchResult
	var authorUsername string

	var tweetEnv cachedTweet
	tweetCached := s.readCache(ctx, tweetKey(id), &tweetEnv)
	if tweetCached {
		result.NotFound = tweetEnv.NotFound
		if tweetEnv.Tweet != nil {
			result.Items = []domain.Tweet{*tweetEnv.Tweet}
			authorUsername = tweetEnv.Tweet.Username
		}
	}
	if tweetCached && tweetEnv.Tweet == nil {
		// Covers both the not-found marker and a negative-cached failure.
		return result, nil
	}

	needAuthor := authorUsername != ""
	if needAuthor {
		var author domain.Profile
		if s.readCache(ctx, authorKey(authorUsername), &author) {
			result.Author = &author
			return result, nil
		}
	}

	lease, err := s.pool.Acquire(ctx, query.Preferred)
	if err != nil {
		return TweetFetchResult{}, fmt.Errorf("acquire account: %w", err)
	}
	defer s.pool.Release(lease)

	if !tweetCached {
		tweet, err := Guarded(ctx, s.guard, "tweet", lease, func(opCtx context.Context) (*domain.Tweet, error) {
			return lease.Session.GetTweet(opCtx, id)
		})
		if err != nil {
			s.writeCache(ctx, tweetKey(id), cachedTweet{}, s.ttls.TweetNegative)
			return TweetFetchResult{}, err
		}
		if tweet == nil {
			result.NotFound = true
			s.writeCache(ctx, tweetKey(id), cachedTweet{NotFound: true}, s.ttls.TweetNegative)
			return result, nil
		}

		result.Items = []domain.Tweet{*tweet}
		authorUsername = tweet.Username
		s.writeCache(ctx, tweetKey(id), cachedTweet{Tweet: tweet}, s.ttls.Tweet)
	}

	if authorUsername != "" && result.Author == nil {
		var author domain.Profile
		if s.readCache(ctx, authorKey(authorUsername), &author) {
			result.Author = &author
			return result, nil
		}

		profile, err := Guarded(ctx, s.guard, "author-profile", lease, func(opCtx context.Context) (domain.Profile, error) {
			return lease.Session.GetProfile(opCtx, authorUsername)
		})
		if err != nil {
			// Author enrichment is best effort; the item itself already resolved.
			s.logger.Warn("author profile fetch failed",
				zap.String("username", authorUsername),
				zap.Error(err),
			)
			return result, nil
		}

		result.Author = &profile
		s.writeCache(ctx, authorKey(authorUsername), profile, s.ttls.Profile)
	}

	return result, nil
}

// collectTweets drains a lazy sequence up to cap items. Stopping early just
// abandons the channel; the producer unblocks once its context is cancelled.
func collectTweets(stream <-chan ports.TweetResult, cap int) ([]domain.Tweet, error) {
	items := make([]domain.Tweet, 0, cap)
	for res := range stream {
		if res.Err != nil {
			return nil, res.Err
		}
		items = append(items, res.Tweet)
		if len(items) >= cap {
			break
		}
	}

	return items, nil
}

func (s *FetchService) readCache(ctx context.Context, key string, out any) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			// A cache outage degrades to a live fetch.
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

func (s *FetchService) writeCache(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("encoding cache entry failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}
