package ports

import (
	"context"

	"github.com/kvasern/roost/internal/domain"
)

// IdentitySource yields the configured account roster at process start.
type IdentitySource interface {
	List(ctx context.Context) ([]domain.Identity, error)
}
