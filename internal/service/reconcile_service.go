package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/brickops/backend/internal/matching"
	"github.com/brickops/backend/internal/model"
	"github.com/brickops/backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderLinkStatus string

const (
	OrderLinkComplete OrderLinkStatus = "complete"
	OrderLinkPartial  OrderLinkStatus = "partial"
	OrderLinkPending  OrderLinkStatus = "pending"
)

type OrderLinkResult struct {
	Status              OrderLinkStatus `json:"status"`
	AutoLinked          int             `json:"autoLinked"`
	QueuedForResolution int             `json:"queuedForResolution"`
	AlreadyLinked       int             `json:"alreadyLinked"`
	Errors              []string        `json:"errors,omitempty"`
}

type HistoricalProgress struct {
	OrdersProcessed int
	AutoLinked      int
	Queued          int
}

type HistoricalOptions struct {
	PageSize int
	// IncludeSold widens candidate eligibility to SOLD inventory so old
	// sales can be reconciled against stock that already moved.
	IncludeSold bool
	Progress    func(HistoricalProgress)
}

type HistoricalResult struct {
	OrdersProcessed int      `json:"ordersProcessed"`
	Complete        int      `json:"complete"`
	Partial         int      `json:"partial"`
	Pending         int      `json:"pending"`
	AutoLinked      int      `json:"autoLinked"`
	Queued          int      `json:"queued"`
	Errors          []string `json:"errors,omitempty"`
}

type LinkStats struct {
	TotalFulfilledOrders int64 `json:"totalFulfilledOrders"`
	LinkedOrders         int64 `json:"linkedOrders"`
	PartialOrders        int64 `json:"partialOrders"`
	PendingOrders        int64 `json:"pendingOrders"`
	PendingQueueItems    int64 `json:"pendingQueueItems"`
}

const defaultHistoricalPageSize = 500

type ReconcileService interface {
	// ProcessFulfilledOrder matches every unlinked line item on the
	// order, committing auto-matches and queueing the rest. Idempotent:
	// a fully linked order comes back complete with zero work done.
	ProcessFulfilledOrder(ctx context.Context, orderID uint64) (*OrderLinkResult, error)
	// ProcessFulfilledOrderInRun shares one matching context across
	// orders so a batch never offers the same inventory twice.
	ProcessFulfilledOrderInRun(ctx context.Context, run *matching.Context, includeSold bool, orderID uint64) (*OrderLinkResult, error)
	ProcessHistoricalOrders(ctx context.Context, userID string, opts HistoricalOptions) (*HistoricalResult, error)
	Stats(ctx context.Context, userID string) (*LinkStats, error)
}

type reconcileService struct {
	orderRepo    repository.OrderRepository
	lineItemRepo repository.LineItemRepository
	invRepo      repository.InventoryRepository
	queueRepo    repository.QueueRepository
	logger       *log.Logger
}

func NewReconcileService(
	orderRepo repository.OrderRepository,
	lineItemRepo repository.LineItemRepository,
	invRepo repository.InventoryRepository,
	queueRepo repository.QueueRepository,
) ReconcileService {
	return &reconcileService{
		orderRepo:    orderRepo,
		lineItemRepo: lineItemRepo,
		invRepo:      invRepo,
		queueRepo:    queueRepo,
		logger:       log.New(log.Writer(), "[RECONCILE] ", log.LstdFlags),
	}
}

// inventorySource adapts the inventory repository to the matching
// engine, pinning owner and eligible statuses.
type inventorySource struct {
	repo     repository.InventoryRepository
	userID   string
	statuses []model.InventoryStatus
}

func eligibleStatuses(includeSold bool) []model.InventoryStatus {
	statuses := []model.InventoryStatus{model.InventoryBacklog, model.InventoryListed}
	if includeSold {
		statuses = append(statuses, model.InventorySold)
	}
	return statuses
}

func (s *inventorySource) BySKU(ctx context.Context, sku string) ([]model.InventoryItem, error) {
	return s.repo.ListBySKU(ctx, s.userID, sku, s.statuses)
}

func (s *inventorySource) BySetNumber(ctx context.Context, setNumber string) ([]model.InventoryItem, error) {
	return s.repo.ListBySetNumber(ctx, s.userID, setNumber, s.statuses)
}

func (s *inventorySource) ByTitleKeywords(ctx context.Context, keywords []string) ([]model.InventoryItem, error) {
	return s.repo.SearchByTitle(ctx, s.userID, keywords, s.statuses, 20)
}

func (s *reconcileService) ProcessFulfilledOrder(ctx context.Context, orderID uint64) (*OrderLinkResult, error) {
	return s.ProcessFulfilledOrderInRun(ctx, matching.NewContext(), false, orderID)
}

func (s *reconcileService) ProcessFulfilledOrderInRun(ctx context.Context, run *matching.Context, includeSold bool, orderID uint64) (*OrderLinkResult, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.FulfillmentStatus != model.FulfillmentFulfilled {
		return nil, ErrOrderNotFulfilled
	}

	all, err := s.lineItemRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	res := &OrderLinkResult{}
	matcher := matching.NewMatcher(&inventorySource{
		repo:     s.invRepo,
		userID:   order.UserID,
		statuses: eligibleStatuses(includeSold),
	})

	linked := 0
	for i := range all {
		li := &all[i]
		if li.Linked() {
			linked++
			res.AlreadyLinked++
			continue
		}
		result, err := matcher.Match(ctx, run, li)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line item %s: %v", li.ExternalID, err))
			continue
		}
		switch result.Outcome {
		case matching.OutcomeMatched:
			if err := s.commitMatch(ctx, order, li, result); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("line item %s: %v", li.ExternalID, err))
				continue
			}
			linked++
			res.AutoLinked++
		default:
			created, err := s.enqueue(ctx, order, li, result)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("line item %s: %v", li.ExternalID, err))
				continue
			}
			if created {
				res.QueuedForResolution++
			}
		}
	}

	switch {
	case len(all) > 0 && linked == len(all):
		res.Status = OrderLinkComplete
	case linked > 0:
		res.Status = OrderLinkPartial
	default:
		res.Status = OrderLinkPending
	}
	return res, nil
}

func (s *reconcileService) commitMatch(ctx context.Context, order *model.Order, li *model.LineItem, result matching.Result) error {
	invID := result.InventoryItemID
	if err := s.lineItemRepo.CreateAllocations(ctx, []model.LineItemAllocation{
		{LineItemID: li.ID, InventoryItemID: invID},
	}); err != nil {
		return fmt.Errorf("allocate inventory %d: %w", invID, err)
	}
	n, err := s.invRepo.MarkSold(ctx, invID, order.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		// Already SOLD: fine for historical backfill, where eligibility
		// includes sold stock.
		item, err := s.invRepo.FindByID(ctx, invID)
		if err != nil {
			return err
		}
		if item.Status != model.InventorySold {
			return fmt.Errorf("inventory %d is %s, cannot claim", invID, item.Status)
		}
	}
	if _, err := s.lineItemRepo.MarkLinked(ctx, li.ID, &invID, string(result.Method)); err != nil {
		return err
	}
	return nil
}

// enqueue creates a pending queue row unless one already exists for the
// line item, keeping reprocessing idempotent.
func (s *reconcileService) enqueue(ctx context.Context, order *model.Order, li *model.LineItem, result matching.Result) (bool, error) {
	_, err := s.queueRepo.FindPendingByLineItem(ctx, li.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	candidatesJSON, err := json.Marshal(result.Candidates)
	if err != nil {
		return false, err
	}
	item := &model.ResolutionQueueItem{
		PublicID:       uuid.NewString(),
		UserID:         order.UserID,
		OrderID:        order.ID,
		LineItemID:     li.ID,
		QuantityNeeded: li.Quantity,
		Reason:         string(result.Reason),
		Status:         model.QueuePending,
		Candidates:     candidatesJSON,
	}
	if err := s.queueRepo.Create(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}

func (s *reconcileService) ProcessHistoricalOrders(ctx context.Context, userID string, opts HistoricalOptions) (*HistoricalResult, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultHistoricalPageSize
	}

	// Snapshot the order ids first: linking mutates the unlinked filter,
	// which would make offset pagination skip rows mid-walk.
	var orderIDs []uint64
	for offset := 0; ; offset += pageSize {
		page, err := s.orderRepo.ListFulfilledWithUnlinkedItems(ctx, userID, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for i := range page {
			orderIDs = append(orderIDs, page[i].ID)
		}
		if len(page) < pageSize {
			break
		}
	}

	res := &HistoricalResult{}
	run := matching.NewContext()
	for i, orderID := range orderIDs {
		linkRes, err := s.ProcessFulfilledOrderInRun(ctx, run, opts.IncludeSold, orderID)
		if err != nil {
			// One order's failure never aborts the batch.
			res.Errors = append(res.Errors, fmt.Sprintf("order %d: %v", orderID, err))
			s.logger.Printf("historical: order %d failed: %v", orderID, err)
			continue
		}
		res.OrdersProcessed++
		res.AutoLinked += linkRes.AutoLinked
		res.Queued += linkRes.QueuedForResolution
		res.Errors = append(res.Errors, linkRes.Errors...)
		switch linkRes.Status {
		case OrderLinkComplete:
			res.Complete++
		case OrderLinkPartial:
			res.Partial++
		default:
			res.Pending++
		}
		if opts.Progress != nil && ((i+1)%pageSize == 0 || i == len(orderIDs)-1) {
			opts.Progress(HistoricalProgress{
				OrdersProcessed: res.OrdersProcessed,
				AutoLinked:      res.AutoLinked,
				Queued:          res.Queued,
			})
		}
	}
	return res, nil
}

func (s *reconcileService) Stats(ctx context.Context, userID string) (*LinkStats, error) {
	rows, err := s.orderRepo.LinkCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := &LinkStats{}
	for _, row := range rows {
		stats.TotalFulfilledOrders++
		switch {
		case row.Linked == row.Total && row.Total > 0:
			stats.LinkedOrders++
		case row.Linked > 0:
			stats.PartialOrders++
		default:
			stats.PendingOrders++
		}
	}
	pending, err := s.queueRepo.CountPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.PendingQueueItems = pending
	return stats, nil
}
