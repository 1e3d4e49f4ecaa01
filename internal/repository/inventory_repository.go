package repository

import (
	"context"
	"strings"
	"time"

	"github.com/brickops/backend/internal/model"
	"gorm.io/gorm"
)

type InventoryRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	Update(ctx context.Context, item *model.InventoryItem) error
	FindByID(ctx context.Context, id uint64) (*model.InventoryItem, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]model.InventoryItem, error)
	ListBySKU(ctx context.Context, userID, sku string, statuses []model.InventoryStatus) ([]model.InventoryItem, error)
	ListBySetNumber(ctx context.Context, userID, setNumber string, statuses []model.InventoryStatus) ([]model.InventoryItem, error)
	SearchByTitle(ctx context.Context, userID string, keywords []string, statuses []model.InventoryStatus, limit int) ([]model.InventoryItem, error)
	MarkSold(ctx context.Context, id, orderID uint64) (int64, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *inventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *inventoryRepository) FindByID(ctx context.Context, id uint64) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.InventoryItem, error) {
	var list []model.InventoryItem
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *inventoryRepository) ListBySKU(ctx context.Context, userID, sku string, statuses []model.InventoryStatus) ([]model.InventoryItem, error) {
	var list []model.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND sku = ? AND status IN ?", userID, sku, statuses).
		Order("purchase_date ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *inventoryRepository) ListBySetNumber(ctx context.Context, userID, setNumber string, statuses []model.InventoryStatus) ([]model.InventoryItem, error) {
	var list []model.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND set_number = ? AND status IN ?", userID, setNumber, statuses).
		Order("purchase_date ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *inventoryRepository) SearchByTitle(ctx context.Context, userID string, keywords []string, statuses []model.InventoryStatus, limit int) ([]model.InventoryItem, error) {
	var list []model.InventoryItem
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, statuses)
	clauses := make([]string, 0, len(keywords))
	args := make([]interface{}, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		clauses = append(clauses, "title LIKE ?")
		args = append(args, "%"+kw+"%")
	}
	if len(clauses) == 0 {
		return list, nil
	}
	q = q.Where(strings.Join(clauses, " OR "), args...)
	if limit <= 0 {
		limit = 20
	}
	if err := q.Order("purchase_date ASC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkSold claims the item only while it is still sellable, so two
// concurrent resolutions cannot both take it.
func (r *inventoryRepository) MarkSold(ctx context.Context, id, orderID uint64) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.InventoryItem{}).
		Where("id = ? AND status IN ?", id, []model.InventoryStatus{model.InventoryBacklog, model.InventoryListed}).
		Updates(map[string]interface{}{
			"status":        model.InventorySold,
			"sold_order_id": orderID,
			"sold_at":       now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
