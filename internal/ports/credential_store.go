package ports

import "context"

// CredentialStore persists per-identity session material (serialized cookies)
// between process runs so re-acquisition can skip a fresh login.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
