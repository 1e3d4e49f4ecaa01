package repository

import (
	"context"
	"errors"

	"github.com/brickops/backend/internal/model"
	"gorm.io/gorm"
)

type SyncStatusRepository interface {
	Get(ctx context.Context, userID string, jobType model.SyncJobType) (*model.SyncStatus, error)
	GetOrCreate(ctx context.Context, userID string, jobType model.SyncJobType) (*model.SyncStatus, error)
	Update(ctx context.Context, s *model.SyncStatus) error
	// SetRunning flips running from !running to running; RowsAffected
	// reports whether the transition happened. This is the atomic
	// acquire the lease abstraction builds on.
	SetRunning(ctx context.Context, userID string, jobType model.SyncJobType, running bool) (int64, error)
}

type syncStatusRepository struct {
	db *gorm.DB
}

func NewSyncStatusRepository(db *gorm.DB) SyncStatusRepository {
	return &syncStatusRepository{db: db}
}

func (r *syncStatusRepository) Get(ctx context.Context, userID string, jobType model.SyncJobType) (*model.SyncStatus, error) {
	var s model.SyncStatus
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND job_type = ?", userID, jobType).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *syncStatusRepository) GetOrCreate(ctx context.Context, userID string, jobType model.SyncJobType) (*model.SyncStatus, error) {
	s, err := r.Get(ctx, userID, jobType)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := &model.SyncStatus{UserID: userID, JobType: jobType}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		// Lost a create race; the row exists now.
		if existing, gerr := r.Get(ctx, userID, jobType); gerr == nil {
			return existing, nil
		}
		return nil, err
	}
	return created, nil
}

func (r *syncStatusRepository) Update(ctx context.Context, s *model.SyncStatus) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *syncStatusRepository) SetRunning(ctx context.Context, userID string, jobType model.SyncJobType, running bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.SyncStatus{}).
		Where("user_id = ? AND job_type = ? AND running = ?", userID, jobType, !running).
		Update("running", running)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
