package ports

import (
	"context"
	"time"

	"github.com/kvasern/roost/internal/domain"
)

// Cache is the read-through/write-through store in front of every external
// call. Get wraps domain.ErrCacheMiss when the key is absent or expired.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Quarantine tracks time-boxed exclusion flags for identities. A set flag
// expires on its own; it is never cleared early.
type Quarantine interface {
	Flag(ctx context.Context, name domain.IdentityName, ttl time.Duration) error
	Flagged(ctx context.Context, name domain.IdentityName) (bool, error)
}
