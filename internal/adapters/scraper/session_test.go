package scraper

import (
	"errors"
	"testing"
	"time"

	twitterscraper "github.com/imperatrona/twitter-scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasern/roost/internal/domain"
)

func TestMapErrorNotFound(t *testing.T) {
	t.Parallel()

	for _, msg := range []string{
		"tweet with ID 123 not found",
		"user does not exist",
		"no status found with that ID",
	} {
		err := mapError(errors.New(msg))
		assert.ErrorIs(t, err, domain.ErrNotFound, msg)
	}
}

func TestMapErrorAccessDenied(t *testing.T) {
	t.Parallel()

	for _, msg := range []string{
		"account is suspended",
		"response status 403 Forbidden",
		"request unauthorized",
	} {
		err := mapError(errors.New(msg))
		assert.ErrorIs(t, err, domain.ErrAccessDenied, msg)
	}
}

func TestMapErrorPassesThroughUnknownFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset by peer")
	assert.Equal(t, boom, mapError(boom))
}

func TestConvertTweetCarriesQuoteOneLevel(t *testing.T) {
	t.Parallel()

	posted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	src := &twitterscraper.Tweet{
		ID:         "1",
		Text:       "outer",
		Name:       "Poster",
		Username:   "poster",
		Likes:      3,
		Retweets:   2,
		Replies:    1,
		Views:      100,
		TimeParsed: posted,
		QuotedStatus: &twitterscraper.Tweet{
			Text:     "inner",
			Name:     "Quoted",
			Username: "quoted",
			QuotedStatus: &twitterscraper.Tweet{
				Text: "nested quotes are dropped",
			},
		},
	}

	tweet := convertTweet(src)
	assert.Equal(t, "outer", tweet.Text)
	assert.Equal(t, posted, tweet.PostedAt)
	require.NotNil(t, tweet.Quoted)
	assert.Equal(t, "inner", tweet.Quoted.Text)
	assert.Equal(t, "quoted", tweet.Quoted.Username)
}

func TestConvertProfile(t *testing.T) {
	t.Parallel()

	joined := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	src := twitterscraper.Profile{
		UserID:         "42",
		Username:       "poster",
		Name:           "Poster",
		Biography:      "bio",
		FollowersCount: 10,
		FollowingCount: 5,
		TweetsCount:    99,
		IsVerified:     true,
		Joined:         &joined,
	}

	profile := convertProfile(src)
	assert.Equal(t, "42", profile.UserID)
	assert.Equal(t, "poster", profile.Username)
	assert.True(t, profile.Verified)
	require.NotNil(t, profile.Joined)
	assert.Equal(t, joined, *profile.Joined)
}
