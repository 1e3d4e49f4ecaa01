// Package lease provides the single-flight primitive guarding sync runs:
// at most one holder per key, acquire is atomic, release is idempotent.
package lease

import "context"

type Lease interface {
	// TryAcquire returns false without blocking when the key is held.
	TryAcquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
