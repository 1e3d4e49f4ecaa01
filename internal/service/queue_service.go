package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brickops/backend/internal/model"
	"github.com/brickops/backend/internal/repository"
	"gorm.io/gorm"
)

// PendingQueueItem is the operator view of one queue row: the frozen
// candidate list plus the line item under resolution, its provisional
// proceeds, and any shipping records already on the order.
type PendingQueueItem struct {
	Item         model.ResolutionQueueItem `json:"item"`
	LineItem     *model.LineItem           `json:"lineItem,omitempty"`
	NetSale      *NetSale                  `json:"netSale,omitempty"`
	Fulfillments []model.Fulfillment       `json:"fulfillments,omitempty"`
}

type QueueService interface {
	// Resolve commits exactly quantity-needed inventory ids onto the
	// queued line item and flips each selected item to SOLD. Count
	// mismatch and non-pending items fail before anything is written.
	Resolve(ctx context.Context, publicID string, inventoryIDs []uint64) error
	Skip(ctx context.Context, publicID string, reason string) error
	ListPending(ctx context.Context, userID string, limit, offset int) ([]PendingQueueItem, error)
}

type queueService struct {
	queueRepo       repository.QueueRepository
	lineItemRepo    repository.LineItemRepository
	invRepo         repository.InventoryRepository
	fulfillmentRepo repository.FulfillmentRepository
	finance         FinanceService
}

func NewQueueService(
	queueRepo repository.QueueRepository,
	lineItemRepo repository.LineItemRepository,
	invRepo repository.InventoryRepository,
	fulfillmentRepo repository.FulfillmentRepository,
	finance FinanceService,
) QueueService {
	return &queueService{
		queueRepo:       queueRepo,
		lineItemRepo:    lineItemRepo,
		invRepo:         invRepo,
		fulfillmentRepo: fulfillmentRepo,
		finance:         finance,
	}
}

func (s *queueService) Resolve(ctx context.Context, publicID string, inventoryIDs []uint64) error {
	item, err := s.queueRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if item.Status != model.QueuePending {
		return ErrAlreadyResolved
	}

	unique := make([]uint64, 0, len(inventoryIDs))
	seen := make(map[uint64]bool, len(inventoryIDs))
	for _, id := range inventoryIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) != item.QuantityNeeded {
		return fmt.Errorf("%w: need %d distinct inventory items, got %d", ErrCountMismatch, item.QuantityNeeded, len(unique))
	}

	selected, err := s.invRepo.FindByIDs(ctx, unique)
	if err != nil {
		return err
	}
	if len(selected) != len(unique) {
		return fmt.Errorf("%w: one or more inventory items do not exist", ErrNotFound)
	}
	for i := range selected {
		switch selected[i].Status {
		case model.InventoryBacklog, model.InventoryListed:
		default:
			return fmt.Errorf("%w: item %d is %s", ErrItemNotSellable, selected[i].ID, selected[i].Status)
		}
	}

	allocs := make([]model.LineItemAllocation, 0, len(unique))
	for _, id := range unique {
		allocs = append(allocs, model.LineItemAllocation{LineItemID: item.LineItemID, InventoryItemID: id})
	}
	if err := s.lineItemRepo.CreateAllocations(ctx, allocs); err != nil {
		return err
	}
	for _, id := range unique {
		if _, err := s.invRepo.MarkSold(ctx, id, item.OrderID); err != nil {
			return err
		}
	}

	var primary *uint64
	if item.QuantityNeeded == 1 {
		primary = &unique[0]
	}
	if _, err := s.lineItemRepo.MarkLinked(ctx, item.LineItemID, primary, "manual"); err != nil {
		return err
	}

	now := time.Now()
	item.Status = model.QueueResolved
	item.ResolvedAt = &now
	return s.queueRepo.Update(ctx, item)
}

func (s *queueService) Skip(ctx context.Context, publicID string, reason string) error {
	item, err := s.queueRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if item.Status != model.QueuePending {
		return ErrAlreadyResolved
	}
	parsed, ok := model.ParseSkipReason(reason)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSkipReason, reason)
	}
	now := time.Now()
	item.Status = model.QueueSkipped
	item.SkipReason = &parsed
	item.ResolvedAt = &now
	return s.queueRepo.Update(ctx, item)
}

func (s *queueService) ListPending(ctx context.Context, userID string, limit, offset int) ([]PendingQueueItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.queueRepo.ListPending(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	// Enrichment is best effort: a failed line item, fee, or shipping
	// lookup leaves that field nil rather than failing the listing.
	out := make([]PendingQueueItem, 0, len(items))
	for i := range items {
		view := PendingQueueItem{Item: items[i]}
		if li, err := s.lineItemRepo.FindByID(ctx, items[i].LineItemID); err == nil {
			view.LineItem = li
			if sale, err := s.finance.CalculateNetSale(ctx, items[i].OrderID, li); err == nil {
				view.NetSale = sale
			}
		}
		if fulfillments, err := s.fulfillmentRepo.ListByOrder(ctx, items[i].OrderID); err == nil && len(fulfillments) > 0 {
			view.Fulfillments = fulfillments
		}
		out = append(out, view)
	}
	return out, nil
}
