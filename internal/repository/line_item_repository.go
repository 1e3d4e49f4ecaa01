package repository

import (
	"context"
	"time"

	"github.com/brickops/backend/internal/model"
	"gorm.io/gorm"
)

type LineItemRepository interface {
	Create(ctx context.Context, li *model.LineItem) error
	Update(ctx context.Context, li *model.LineItem) error
	FindByID(ctx context.Context, id uint64) (*model.LineItem, error)
	FindByExternalID(ctx context.Context, orderID uint64, externalID string) (*model.LineItem, error)
	ListByOrder(ctx context.Context, orderID uint64) ([]model.LineItem, error)
	MarkLinked(ctx context.Context, id uint64, inventoryItemID *uint64, method string) (int64, error)
	CreateAllocations(ctx context.Context, allocs []model.LineItemAllocation) error
}

type lineItemRepository struct {
	db *gorm.DB
}

func NewLineItemRepository(db *gorm.DB) LineItemRepository {
	return &lineItemRepository{db: db}
}

func (r *lineItemRepository) Create(ctx context.Context, li *model.LineItem) error {
	return r.db.WithContext(ctx).Create(li).Error
}

func (r *lineItemRepository) Update(ctx context.Context, li *model.LineItem) error {
	return r.db.WithContext(ctx).Save(li).Error
}

func (r *lineItemRepository) FindByID(ctx context.Context, id uint64) (*model.LineItem, error) {
	var li model.LineItem
	if err := r.db.WithContext(ctx).First(&li, id).Error; err != nil {
		return nil, err
	}
	return &li, nil
}

func (r *lineItemRepository) FindByExternalID(ctx context.Context, orderID uint64, externalID string) (*model.LineItem, error) {
	var li model.LineItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND external_id = ?", orderID, externalID).
		First(&li).Error; err != nil {
		return nil, err
	}
	return &li, nil
}

func (r *lineItemRepository) ListByOrder(ctx context.Context, orderID uint64) ([]model.LineItem, error) {
	var list []model.LineItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkLinked sets the inventory link only while the line item is still
// unlinked; RowsAffected tells the caller whether it won.
func (r *lineItemRepository) MarkLinked(ctx context.Context, id uint64, inventoryItemID *uint64, method string) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.LineItem{}).
		Where("id = ? AND linked_at IS NULL", id).
		Updates(map[string]interface{}{
			"inventory_item_id": inventoryItemID,
			"linked_at":         now,
			"link_method":       method,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *lineItemRepository) CreateAllocations(ctx context.Context, allocs []model.LineItemAllocation) error {
	if len(allocs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&allocs).Error
}
