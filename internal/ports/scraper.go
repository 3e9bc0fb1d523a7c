package ports

import (
	"context"

	"github.com/kvasern/roost/internal/domain"
)

// SessionProvisioner turns a credential record into a ready-to-use
// authenticated session, reusing saved tokens when they are still valid and
// performing a fresh login otherwise. A failed provision wraps
// domain.ErrLoginFailed.
type SessionProvisioner interface {
	Provision(ctx context.Context, identity domain.Identity) (Session, error)
}

// TweetResult is one element of a lazy tweet sequence. Exactly one of Tweet
// or Err is meaningful.
type TweetResult struct {
	Tweet domain.Tweet
	Err   error
}

// Session is an authenticated client capability bound to one identity for the
// duration of one logical operation. It is never shared across concurrent
// operations.
//
// Search and Timeline return finite, non-restartable sequences; a consumer
// stops by simply abandoning the channel, the producer unblocks when ctx is
// cancelled. GetProfile wraps domain.ErrNotFound for unknown users and
// domain.ErrAccessDenied for suspended access; GetTweet returns (nil, nil)
// when the item does not exist upstream.
type Session interface {
	Search(ctx context.Context, query string, max int) <-chan TweetResult
	GetProfile(ctx context.Context, username string) (domain.Profile, error)
	Timeline(ctx context.Context, username string, max int) <-chan TweetResult
	GetTweet(ctx context.Context, id string) (*domain.Tweet, error)
}
