package lease

import (
	"context"
	"fmt"
	"strings"

	"github.com/brickops/backend/internal/model"
	"github.com/brickops/backend/internal/repository"
)

// Key builds the lease key for a (user, job type) pair.
func Key(userID string, jobType model.SyncJobType) string {
	return userID + "/" + string(jobType)
}

// StatusLease acquires through a conditional update on the sync status
// row, so the running flag and the lease are the same bit.
type StatusLease struct {
	repo repository.SyncStatusRepository
}

func NewStatusLease(repo repository.SyncStatusRepository) *StatusLease {
	return &StatusLease{repo: repo}
}

func (l *StatusLease) split(key string) (string, model.SyncJobType, error) {
	idx := strings.LastIndex(key, "/")
	if idx <= 0 || idx == len(key)-1 {
		return "", "", fmt.Errorf("malformed lease key %q", key)
	}
	return key[:idx], model.SyncJobType(key[idx+1:]), nil
}

func (l *StatusLease) TryAcquire(ctx context.Context, key string) (bool, error) {
	userID, jobType, err := l.split(key)
	if err != nil {
		return false, err
	}
	if _, err := l.repo.GetOrCreate(ctx, userID, jobType); err != nil {
		return false, err
	}
	n, err := l.repo.SetRunning(ctx, userID, jobType, true)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *StatusLease) Release(ctx context.Context, key string) error {
	userID, jobType, err := l.split(key)
	if err != nil {
		return err
	}
	_, err = l.repo.SetRunning(ctx, userID, jobType, false)
	return err
}
