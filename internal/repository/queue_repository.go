package repository

import (
	"context"

	"github.com/brickops/backend/internal/model"
	"gorm.io/gorm"
)

type QueueRepository interface {
	Create(ctx context.Context, item *model.ResolutionQueueItem) error
	Update(ctx context.Context, item *model.ResolutionQueueItem) error
	FindByPublicID(ctx context.Context, publicID string) (*model.ResolutionQueueItem, error)
	FindPendingByLineItem(ctx context.Context, lineItemID uint64) (*model.ResolutionQueueItem, error)
	ListPending(ctx context.Context, userID string, limit, offset int) ([]model.ResolutionQueueItem, error)
	CountPending(ctx context.Context, userID string) (int64, error)
}

type queueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) QueueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) Create(ctx context.Context, item *model.ResolutionQueueItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *queueRepository) Update(ctx context.Context, item *model.ResolutionQueueItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *queueRepository) FindByPublicID(ctx context.Context, publicID string) (*model.ResolutionQueueItem, error) {
	var item model.ResolutionQueueItem
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *queueRepository) FindPendingByLineItem(ctx context.Context, lineItemID uint64) (*model.ResolutionQueueItem, error) {
	var item model.ResolutionQueueItem
	if err := r.db.WithContext(ctx).
		Where("line_item_id = ? AND status = ?", lineItemID, model.QueuePending).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *queueRepository) ListPending(ctx context.Context, userID string, limit, offset int) ([]model.ResolutionQueueItem, error) {
	var list []model.ResolutionQueueItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.QueuePending).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *queueRepository) CountPending(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&model.ResolutionQueueItem{}).
		Where("user_id = ? AND status = ?", userID, model.QueuePending).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
