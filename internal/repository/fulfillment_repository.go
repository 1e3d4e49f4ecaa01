package repository

import (
	"context"
	"errors"

	"github.com/brickops/backend/internal/model"
	"gorm.io/gorm"
)

type FulfillmentRepository interface {
	Upsert(ctx context.Context, f *model.Fulfillment) (created bool, err error)
	ListByOrder(ctx context.Context, orderID uint64) ([]model.Fulfillment, error)
}

type fulfillmentRepository struct {
	db *gorm.DB
}

func NewFulfillmentRepository(db *gorm.DB) FulfillmentRepository {
	return &fulfillmentRepository{db: db}
}

func (r *fulfillmentRepository) Upsert(ctx context.Context, f *model.Fulfillment) (bool, error) {
	var existing model.Fulfillment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND external_id = ?", f.OrderID, f.ExternalID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, r.db.WithContext(ctx).Create(f).Error
	}
	if err != nil {
		return false, err
	}
	f.ID = existing.ID
	f.CreatedAt = existing.CreatedAt
	return false, r.db.WithContext(ctx).Save(f).Error
}

func (r *fulfillmentRepository) ListByOrder(ctx context.Context, orderID uint64) ([]model.Fulfillment, error) {
	var list []model.Fulfillment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
