package repository

import (
	"context"

	"github.com/brickops/backend/internal/model"
	"gorm.io/gorm"
)

// OrderLinkCount is one fulfilled order's line-item linkage tally, used
// by the stats endpoint and the historical backfill.
type OrderLinkCount struct {
	OrderID uint64
	Total   int64
	Linked  int64
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	Update(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uint64) (*model.Order, error)
	FindByExternalID(ctx context.Context, userID, externalID string) (*model.Order, error)
	ListFulfilledWithUnlinkedItems(ctx context.Context, userID string, limit, offset int) ([]model.Order, error)
	LinkCounts(ctx context.Context, userID string) ([]OrderLinkCount, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) Update(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) FindByExternalID(ctx context.Context, userID, externalID string) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND external_id = ?", userID, externalID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) ListFulfilledWithUnlinkedItems(ctx context.Context, userID string, limit, offset int) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND fulfillment_status = ?", userID, model.FulfillmentFulfilled).
		Where("EXISTS (SELECT 1 FROM line_items WHERE line_items.order_id = orders.id AND line_items.linked_at IS NULL)").
		Order("last_modified_date ASC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) LinkCounts(ctx context.Context, userID string) ([]OrderLinkCount, error) {
	var rows []OrderLinkCount
	if err := r.db.WithContext(ctx).
		Model(&model.LineItem{}).
		Select("line_items.order_id AS order_id, COUNT(*) AS total, COUNT(line_items.linked_at) AS linked").
		Joins("JOIN orders ON orders.id = line_items.order_id").
		Where("orders.user_id = ? AND orders.fulfillment_status = ?", userID, model.FulfillmentFulfilled).
		Group("line_items.order_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
