package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasern/roost/internal/domain"
)

type recordingDemoter struct {
	mu      sync.Mutex
	demoted []domain.IdentityName
}

func (d *recordingDemoter) QuarantineAndDemote(_ context.Context, name domain.IdentityName) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.demoted = append(d.demoted, name)
}

func (d *recordingDemoter) names() []domain.IdentityName {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.IdentityName(nil), d.demoted...)
}

func testLease(name string) *Lease {
	return &Lease{ID: "lease-1", Identity: domain.Identity{Name: domain.IdentityName(name)}}
}

func TestGuardedReturnsResultWithinDeadline(t *testing.T) {
	t.Parallel()

	demoter := &recordingDemoter{}
	guard := NewCallGuard(time.Second, demoter, nil)

	value, err := Guarded(context.Background(), guard, "op", testLease("a"), func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Empty(t, demoter.names())
}

func TestGuardedTimeoutDemotesIdentity(t *testing.T) {
	t.Parallel()

	demoter := &recordingDemoter{}
	guard := NewCallGuard(20*time.Millisecond, demoter, nil)

	_, err := Guarded(context.Background(), guard, "op", testLease("slow"), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, domain.ErrTimedOut)
	assert.Equal(t, []domain.IdentityName{"slow"}, demoter.names())
}

func TestGuardedAccessDeniedDemotesIdentity(t *testing.T) {
	t.Parallel()

	demoter := &recordingDemoter{}
	guard := NewCallGuard(time.Second, demoter, nil)

	_, err := Guarded(context.Background(), guard, "op", testLease("denied"), func(context.Context) (int, error) {
		return 0, domain.ErrAccessDenied
	})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.Equal(t, []domain.IdentityName{"denied"}, demoter.names())
}

func TestGuardedOtherFailuresDoNotDemote(t *testing.T) {
	t.Parallel()

	demoter := &recordingDemoter{}
	guard := NewCallGuard(time.Second, demoter, nil)

	boom := errors.New("network hiccup")
	_, err := Guarded(context.Background(), guard, "op", testLease("a"), func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, demoter.names())
}

func TestGuardedCallerCancellationDoesNotDemote(t *testing.T) {
	t.Parallel()

	demoter := &recordingDemoter{}
	guard := NewCallGuard(time.Second, demoter, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Guarded(ctx, guard, "op", testLease("a"), func(opCtx context.Context) (int, error) {
		<-opCtx.Done()
		return 0, opCtx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, demoter.names())
}

func TestGuardedWrapsErrorsWithOperationLabel(t *testing.T) {
	t.Parallel()

	guard := NewCallGuard(time.Second, &recordingDemoter{}, nil)

	_, err := Guarded(context.Background(), guard, "timeline", testLease("a"), func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeline:")
}

func TestGuardedLateResultIsDiscarded(t *testing.T) {
	t.Parallel()

	demoter := &recordingDemoter{}
	guard := NewCallGuard(20*time.Millisecond, demoter, nil)

	released := make(chan struct{})
	_, err := Guarded(context.Background(), guard, "op", testLease("slow"), func(context.Context) (int, error) {
		// Ignores the forwarded deadline entirely.
		<-released
		return 7, nil
	})
	assert.ErrorIs(t, err, domain.ErrTimedOut)

	// The late completion must not block: the done channel is buffered.
	close(released)
	time.Sleep(10 * time.Millisecond)
}
