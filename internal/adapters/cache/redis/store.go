package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kvasern/roost/internal/domain"
	"github.com/kvasern/roost/internal/ports"
)

const quarantineKeyPrefix = "account-quarantine:"

// Store backs both the fetch cache and the quarantine flags with one Redis
// connection. Entries are idempotent recomputations, so last-write-wins is
// acceptable.
type Store struct {
	rdb *goredis.Client
}

var (
	_ ports.Cache      = (*Store)(nil)
	_ ports.Quarantine = (*Store)(nil)
)

func NewStore(rdb *goredis.Client) *Store {
	return &Store{rdb: rdb}
}

// NewClient dials Redis and verifies the connection before first use.
func NewClient(addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return rdb, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("%q: %w", key, domain.ErrCacheMiss)
		}
		return nil, fmt.Errorf("get cache entry %q: %w", key, err)
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set cache entry %q: %w", key, err)
	}

	return nil
}

func (s *Store) Flag(ctx context.Context, name domain.IdentityName, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, quarantineKey(name), "1", ttl).Err(); err != nil {
		return fmt.Errorf("set quarantine flag for %q: %w", name, err)
	}

	return nil
}

func (s *Store) Flagged(ctx context.Context, name domain.IdentityName) (bool, error) {
	n, err := s.rdb.Exists(ctx, quarantineKey(name)).Result()
	if err != nil {
		return false, fmt.Errorf("check quarantine flag for %q: %w", name, err)
	}

	return n > 0, nil
}

func quarantineKey(name domain.IdentityName) string {
	return quarantineKeyPrefix + string(name)
}
