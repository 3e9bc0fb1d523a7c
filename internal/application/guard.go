package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kvasern/roost/internal/domain"
)

const DefaultCallTimeout = 12 * time.Second

type accountDemoter interface {
	QuarantineAndDemote(ctx context.Context, name domain.IdentityName)
}

// CallGuard races an external call against a wall-clock deadline. A call that
// hits the deadline, or that reports access denial, demotes the identity the
// lease is bound to before the failure propagates. Other failures leave pool
// state untouched.
type CallGuard struct {
	timeout time.Duration
	pool    accountDemoter
	logger  *zap.Logger
}

func NewCallGuard(timeout time.Duration, pool accountDemoter, logger *zap.Logger) *CallGuard {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CallGuard{timeout: timeout, pool: pool, logger: logger}
}

// Guarded runs fn under the guard's deadline. The deadline is forwarded
// through the context, but the underlying network call is not guaranteed to
// stop: a result arriving after the deadline is simply discarded.
func Guarded[T any](ctx context.Context, g *CallGuard, op string, lease *Lease, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	opCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}

	// Buffered so a late completion does not leak the goroutine.
	done := make(chan outcome, 1)
	go func() {
		value, err := fn(opCtx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case <-opCtx.Done():
		if ctx.Err() != nil {
			// Caller cancellation is not the identity's fault.
			return zero, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		g.demote(ctx, op, lease, "deadline exceeded")
		return zero, fmt.Errorf("%s: %w", op, domain.ErrTimedOut)

	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, domain.ErrAccessDenied) {
				g.demote(ctx, op, lease, "access denied")
			}
			return zero, fmt.Errorf("%s: %w", op, out.err)
		}
		return out.value, nil
	}
}

func (g *CallGuard) demote(ctx context.Context, op string, lease *Lease, reason string) {
	if lease == nil || g.pool == nil {
		return
	}

	g.logger.Warn("demoting account after guarded call",
		zap.String("op", op),
		zap.String("account", string(lease.Identity.Name)),
		zap.String("reason", reason),
	)

	g.pool.QuarantineAndDemote(ctx, lease.Identity.Name)
}
