package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	twitterscraper "github.com/imperatrona/twitter-scraper"

	"github.com/kvasern/roost/internal/domain"
	"github.com/kvasern/roost/internal/ports"
)

type session struct {
	scraper *twitterscraper.Scraper
	account domain.IdentityName
}

var _ ports.Session = (*session)(nil)

func (s *session) Search(ctx context.Context, query string, max int) <-chan ports.TweetResult {
	return forwardTweets(ctx, s.scraper.SearchTweets(ctx, query, max))
}

func (s *session) Timeline(ctx context.Context, username string, max int) <-chan ports.TweetResult {
	return forwardTweets(ctx, s.scraper.GetTweets(ctx, username, max))
}

func (s *session) GetProfile(_ context.Context, username string) (domain.Profile, error) {
	profile, err := s.scraper.GetProfile(username)
	if err != nil {
		return domain.Profile{}, mapError(fmt.Errorf("get profile %q: %w", username, err))
	}

	return convertProfile(profile), nil
}

func (s *session) GetTweet(_ context.Context, id string) (*domain.Tweet, error) {
	tweet, err := s.scraper.GetTweet(id)
	if err != nil {
		mapped := mapError(fmt.Errorf("get tweet %q: %w", id, err))
		if errors.Is(mapped, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, mapped
	}
	if tweet == nil {
		return nil, nil
	}

	converted := convertTweet(tweet)
	return &converted, nil
}

// forwardTweets bridges the scraping client's result channel into the domain
// shape. The consumer may abandon the returned channel at any time; the
// forwarding goroutine exits once ctx is cancelled.
func forwardTweets(ctx context.Context, in <-chan *twitterscraper.TweetResult) <-chan ports.TweetResult {
	out := make(chan ports.TweetResult)

	go func() {
		defer close(out)
		for res := range in {
			var item ports.TweetResult
			if res.Error != nil {
				item.Err = mapError(res.Error)
			} else {
				item.Tweet = convertTweet(&res.Tweet)
			}

			select {
			case out <- item:
			case <-ctx.Done():
				return
			}

			if item.Err != nil {
				return
			}
		}
	}()

	return out
}

func convertTweet(t *twitterscraper.Tweet) domain.Tweet {
	item := domain.Tweet{
		ID:       t.ID,
		Text:     t.Text,
		Name:     t.Name,
		Username: t.Username,
		Likes:    t.Likes,
		Retweets: t.Retweets,
		Replies:  t.Replies,
		Views:    t.Views,
		PostedAt: t.TimeParsed,
	}

	// One level deep only; quotes of quotes are not expanded.
	if t.QuotedStatus != nil {
		item.Quoted = &domain.QuotedTweet{
			Text:     t.QuotedStatus.Text,
			Name:     t.QuotedStatus.Name,
			Username: t.QuotedStatus.Username,
		}
	}

	return item
}

func convertProfile(p twitterscraper.Profile) domain.Profile {
	return domain.Profile{
		UserID:         p.UserID,
		Username:       p.Username,
		Name:           p.Name,
		Biography:      p.Biography,
		Location:       p.Location,
		Website:        p.Website,
		Avatar:         p.Avatar,
		FollowersCount: p.FollowersCount,
		FollowingCount: p.FollowingCount,
		TweetsCount:    p.TweetsCount,
		Verified:       p.IsVerified,
		Joined:         p.Joined,
	}
}

// mapError normalizes platform failures onto the domain taxonomy so the
// orchestration layer can match with errors.Is.
func mapError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist") || strings.Contains(msg, "no status found"):
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case strings.Contains(msg, "suspended") || strings.Contains(msg, "denied") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "403"):
		return fmt.Errorf("%w: %v", domain.ErrAccessDenied, err)
	default:
		return err
	}
}

