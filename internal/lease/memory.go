package lease

import (
	"context"
	"sync"
)

// MemoryLease is a process-local lease for single-instance deployments
// and tests.
type MemoryLease struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMemoryLease() *MemoryLease {
	return &MemoryLease{held: make(map[string]bool)}
}

func (l *MemoryLease) TryAcquire(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *MemoryLease) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
