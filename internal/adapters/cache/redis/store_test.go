package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasern/roost/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb), mr
}

func TestStoreGetSetRoundtrip(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "search-results-by-query:q", []byte(`["a"]`), time.Minute))

	value, err := store.Get(ctx, "search-results-by-query:q")
	require.NoError(t, err)
	assert.Equal(t, []byte(`["a"]`), value)
}

func TestStoreGetMissingKeyIsCacheMiss(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestStoreEntryExpires(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestQuarantineFlagLifecycle(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()

	flagged, err := store.Flagged(ctx, "acc")
	require.NoError(t, err)
	assert.False(t, flagged)

	require.NoError(t, store.Flag(ctx, "acc", 24*time.Hour))

	flagged, err = store.Flagged(ctx, "acc")
	require.NoError(t, err)
	assert.True(t, flagged)

	assert.True(t, mr.Exists("account-quarantine:acc"))

	mr.FastForward(25 * time.Hour)

	flagged, err = store.Flagged(ctx, "acc")
	require.NoError(t, err)
	assert.False(t, flagged, "flag must expire on its own")
}

func TestQuarantineFlagsAreScopedPerAccount(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Flag(ctx, "one", time.Hour))

	flagged, err := store.Flagged(ctx, "two")
	require.NoError(t, err)
	assert.False(t, flagged)
}
