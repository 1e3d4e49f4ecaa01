package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/brickops/backend/internal/lease"
	"github.com/brickops/backend/internal/marketplace"
	"github.com/brickops/backend/internal/matching"
	"github.com/brickops/backend/internal/model"
	"github.com/brickops/backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SyncType string

const (
	SyncIncremental SyncType = "incremental"
	SyncFull        SyncType = "full"
	SyncHistorical  SyncType = "historical"
)

type SyncOptions struct {
	FullSync           bool
	FromDate           *time.Time
	ToDate             *time.Time
	EnrichTransactions bool
}

type SyncResult struct {
	Success                      bool      `json:"success"`
	SyncType                     SyncType  `json:"syncType"`
	OrdersProcessed              int       `json:"ordersProcessed"`
	OrdersCreated                int       `json:"ordersCreated"`
	OrdersUpdated                int       `json:"ordersUpdated"`
	LineItemsCreated             int       `json:"lineItemsCreated"`
	LineItemsUpdated             int       `json:"lineItemsUpdated"`
	FulfillmentsProcessed        int       `json:"fulfilmentsProcessed"`
	TransactionsEnriched         int       `json:"transactionsEnriched"`
	InventoryAutoLinked          int       `json:"inventoryAutoLinked"`
	InventoryQueuedForResolution int       `json:"inventoryQueuedForResolution"`
	StartedAt                    time.Time `json:"startedAt"`
	CompletedAt                  time.Time `json:"completedAt"`
	Errors                       []string  `json:"errors,omitempty"`
	Error                        string    `json:"error,omitempty"`
}

type SyncService interface {
	// SyncOrders runs one ingestion pass for the user. At most one sync
	// per (user, job type) runs at a time; a second caller fails fast
	// with ErrSyncAlreadyRunning and performs no API calls.
	SyncOrders(ctx context.Context, userID string, opts SyncOptions) (*SyncResult, error)
	GetSyncStatus(ctx context.Context, userID string) (*model.SyncStatus, error)
}

type syncService struct {
	orderRepo       repository.OrderRepository
	lineItemRepo    repository.LineItemRepository
	fulfillmentRepo repository.FulfillmentRepository
	syncRepo        repository.SyncStatusRepository
	client          marketplace.Client
	leases          lease.Lease
	reconciler      ReconcileService
	finance         FinanceService
	pageSize        int
	window          time.Duration
	logger          *log.Logger
	now             func() time.Time
}

func NewSyncService(
	orderRepo repository.OrderRepository,
	lineItemRepo repository.LineItemRepository,
	fulfillmentRepo repository.FulfillmentRepository,
	syncRepo repository.SyncStatusRepository,
	client marketplace.Client,
	leases lease.Lease,
	reconciler ReconcileService,
	finance FinanceService,
	pageSize int,
	window time.Duration,
) SyncService {
	if pageSize <= 0 || pageSize > 1000 {
		pageSize = 1000
	}
	if window <= 0 {
		window = maxQueryWindow
	}
	return &syncService{
		orderRepo:       orderRepo,
		lineItemRepo:    lineItemRepo,
		fulfillmentRepo: fulfillmentRepo,
		syncRepo:        syncRepo,
		client:          client,
		leases:          leases,
		reconciler:      reconciler,
		finance:         finance,
		pageSize:        pageSize,
		window:          window,
		logger:          log.New(log.Writer(), "[ORDER_SYNC] ", log.LstdFlags),
		now:             time.Now,
	}
}

// processedOrder tracks one upserted order through the post-ingestion
// stages (fulfillments already handled, fees and linking still pending).
type processedOrder struct {
	id         uint64
	externalID string
	fulfilled  bool
}

func (s *syncService) SyncOrders(ctx context.Context, userID string, opts SyncOptions) (*SyncResult, error) {
	res := &SyncResult{StartedAt: s.now()}

	status, err := s.syncRepo.GetOrCreate(ctx, userID, model.SyncJobOrders)
	if err != nil {
		return nil, err
	}

	key := lease.Key(userID, model.SyncJobOrders)
	ok, err := s.leases.TryAcquire(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		res.Success = false
		res.Error = ErrSyncAlreadyRunning.Error()
		res.CompletedAt = s.now()
		return res, ErrSyncAlreadyRunning
	}

	from, to, syncType, err := s.resolveBounds(status, opts)
	if err != nil {
		_ = s.leases.Release(ctx, key)
		return nil, err
	}
	res.SyncType = syncType
	s.logger.Printf("user=%s type=%s range=%s..%s", userID, syncType,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))

	var processed []processedOrder
	var maxModified time.Time

	for _, chunk := range splitDateRange(from, to, s.window) {
		chunkProcessed, chunkMax, err := s.ingestChunk(ctx, userID, chunk, res)
		processed = append(processed, chunkProcessed...)
		if chunkMax.After(maxModified) {
			maxModified = chunkMax
		}
		if err != nil {
			// The chunk's remaining pages are abandoned; committed data
			// stays and the next chunk proceeds.
			res.Errors = append(res.Errors, fmt.Sprintf("chunk %s..%s: %v",
				chunk.From.UTC().Format(time.RFC3339), chunk.To.UTC().Format(time.RFC3339), err))
			s.logger.Printf("chunk failed: %v", err)
		}
	}

	if opts.EnrichTransactions {
		for _, po := range processed {
			if !po.fulfilled {
				continue
			}
			enriched, err := s.finance.EnrichOrderTransaction(ctx, po.id, po.externalID)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("order %s: enrich: %v", po.externalID, err))
				continue
			}
			if enriched {
				res.TransactionsEnriched++
			}
		}
	}

	run := matching.NewContext()
	for _, po := range processed {
		if !po.fulfilled {
			continue
		}
		linkRes, err := s.reconciler.ProcessFulfilledOrderInRun(ctx, run, false, po.id)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("order %s: link: %v", po.externalID, err))
			continue
		}
		res.InventoryAutoLinked += linkRes.AutoLinked
		res.InventoryQueuedForResolution += linkRes.QueuedForResolution
		res.Errors = append(res.Errors, linkRes.Errors...)
	}

	res.CompletedAt = s.now()
	res.Success = len(res.Errors) == 0
	if !res.Success {
		res.Error = res.Errors[0]
	}
	s.finishRun(ctx, status, res, maxModified)
	if err := s.leases.Release(ctx, key); err != nil {
		s.logger.Printf("release lease %s: %v", key, err)
	}
	return res, nil
}

func (s *syncService) resolveBounds(status *model.SyncStatus, opts SyncOptions) (time.Time, time.Time, SyncType, error) {
	now := s.now()
	if opts.FromDate != nil || opts.ToDate != nil {
		if opts.FromDate == nil || opts.ToDate == nil {
			return time.Time{}, time.Time{}, "", errors.New("historical sync needs both fromDate and toDate")
		}
		if !opts.FromDate.Before(*opts.ToDate) {
			return time.Time{}, time.Time{}, "", errors.New("fromDate must precede toDate")
		}
		return *opts.FromDate, *opts.ToDate, SyncHistorical, nil
	}
	if opts.FullSync || status.Watermark == nil {
		return time.Unix(0, 0).UTC(), now, SyncFull, nil
	}
	return *status.Watermark, now, SyncIncremental, nil
}

// ingestChunk pulls every page of the chunk and upserts what it finds.
// Per-order failures are recorded and skipped; a page fetch failure
// aborts the rest of the chunk.
func (s *syncService) ingestChunk(ctx context.Context, userID string, chunk dateRange, res *SyncResult) ([]processedOrder, time.Time, error) {
	var processed []processedOrder
	var maxModified time.Time

	for offset := 0; ; offset += s.pageSize {
		page, err := s.client.ListOrders(ctx, marketplace.DateRange{From: chunk.From, To: chunk.To}, s.pageSize, offset)
		if err != nil {
			return processed, maxModified, err
		}
		for i := range page.Orders {
			po, err := s.upsertOrder(ctx, userID, &page.Orders[i], res)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("order %s: %v", page.Orders[i].OrderID, err))
				continue
			}
			processed = append(processed, po)
			res.OrdersProcessed++
			if page.Orders[i].LastModifiedDate.After(maxModified) {
				maxModified = page.Orders[i].LastModifiedDate
			}
		}
		if len(page.Orders) < s.pageSize {
			return processed, maxModified, nil
		}
	}
}

func (s *syncService) upsertOrder(ctx context.Context, userID string, mo *marketplace.Order, res *SyncResult) (processedOrder, error) {
	status, ok := model.ParseFulfillmentStatus(mo.FulfillmentStatus)
	if !ok {
		return processedOrder{}, fmt.Errorf("unknown fulfillment status %q", mo.FulfillmentStatus)
	}

	existing, err := s.orderRepo.FindByExternalID(ctx, userID, mo.OrderID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		order := &model.Order{
			UserID:            userID,
			ExternalID:        mo.OrderID,
			CreatedDate:       mo.CreationDate,
			LastModifiedDate:  mo.LastModifiedDate,
			FulfillmentStatus: status,
			PaymentStatus:     mo.PaymentStatus,
			BuyerUsername:     mo.BuyerUsername,
			Currency:          mo.Currency,
			TotalAmount:       mo.Total,
		}
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return processedOrder{}, err
		}
		res.OrdersCreated++
		if err := s.upsertLineItems(ctx, order.ID, mo.LineItems, res); err != nil {
			return processedOrder{}, err
		}
		return s.finishOrder(ctx, order, res), nil

	case err != nil:
		return processedOrder{}, err

	default:
		// Update only when upstream is strictly newer; re-syncing an
		// unchanged order is a no-op.
		if !mo.LastModifiedDate.After(existing.LastModifiedDate) {
			return processedOrder{
				id:         existing.ID,
				externalID: existing.ExternalID,
				fulfilled:  existing.FulfillmentStatus == model.FulfillmentFulfilled,
			}, nil
		}
		existing.LastModifiedDate = mo.LastModifiedDate
		existing.FulfillmentStatus = status
		existing.PaymentStatus = mo.PaymentStatus
		existing.BuyerUsername = mo.BuyerUsername
		existing.Currency = mo.Currency
		existing.TotalAmount = mo.Total
		if err := s.orderRepo.Update(ctx, existing); err != nil {
			return processedOrder{}, err
		}
		res.OrdersUpdated++
		if err := s.upsertLineItems(ctx, existing.ID, mo.LineItems, res); err != nil {
			return processedOrder{}, err
		}
		return s.finishOrder(ctx, existing, res), nil
	}
}

func (s *syncService) upsertLineItems(ctx context.Context, orderID uint64, items []marketplace.LineItem, res *SyncResult) error {
	for i := range items {
		mi := &items[i]
		existing, err := s.lineItemRepo.FindByExternalID(ctx, orderID, mi.LineItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			li := &model.LineItem{
				OrderID:     orderID,
				ExternalID:  mi.LineItemID,
				Title:       mi.Title,
				Quantity:    mi.Quantity,
				TotalAmount: mi.Total,
			}
			if mi.SKU != "" {
				sku := mi.SKU
				li.SKU = &sku
			}
			if st, ok := model.ParseFulfillmentStatus(mi.FulfillmentStatus); ok {
				li.FulfillmentStatus = st
			}
			if err := s.lineItemRepo.Create(ctx, li); err != nil {
				return err
			}
			res.LineItemsCreated++
			continue
		}
		if err != nil {
			return err
		}
		existing.Title = mi.Title
		existing.Quantity = mi.Quantity
		existing.TotalAmount = mi.Total
		if mi.SKU != "" {
			sku := mi.SKU
			existing.SKU = &sku
		}
		if st, ok := model.ParseFulfillmentStatus(mi.FulfillmentStatus); ok {
			existing.FulfillmentStatus = st
		}
		if err := s.lineItemRepo.Update(ctx, existing); err != nil {
			return err
		}
		res.LineItemsUpdated++
	}
	return nil
}

// finishOrder fetches shipping fulfillments for fulfilled orders. A
// fetch failure is partial data, not an error: the order stands without
// fulfillment detail.
func (s *syncService) finishOrder(ctx context.Context, order *model.Order, res *SyncResult) processedOrder {
	po := processedOrder{
		id:         order.ID,
		externalID: order.ExternalID,
		fulfilled:  order.FulfillmentStatus == model.FulfillmentFulfilled,
	}
	if !po.fulfilled {
		return po
	}
	fulfillments, err := s.client.ListFulfillments(ctx, order.ExternalID)
	if err != nil {
		s.logger.Printf("order %s: fulfillment fetch failed, continuing: %v", order.ExternalID, err)
		return po
	}
	for i := range fulfillments {
		f := &model.Fulfillment{
			OrderID:        order.ID,
			ExternalID:     fulfillments[i].FulfillmentID,
			Carrier:        fulfillments[i].Carrier,
			TrackingNumber: fulfillments[i].TrackingNumber,
			ShippedDate:    fulfillments[i].ShippedDate,
		}
		if _, err := s.fulfillmentRepo.Upsert(ctx, f); err != nil {
			s.logger.Printf("order %s: fulfillment upsert failed: %v", order.ExternalID, err)
			continue
		}
		res.FulfillmentsProcessed++
	}
	return po
}

// finishRun writes the run summary onto the status row. The watermark
// advances only after an error-free run so a partial failure re-covers
// its window next time.
func (s *syncService) finishRun(ctx context.Context, status *model.SyncStatus, res *SyncResult, maxModified time.Time) {
	now := s.now()
	runID := uuid.NewString()
	status.LastRunID = &runID
	status.LastRunAt = &now
	status.SyncDate = &now
	if res.Success && !maxModified.IsZero() {
		status.Watermark = &maxModified
	}
	if res.Error != "" {
		msg := res.Error
		status.LastError = &msg
	} else {
		status.LastError = nil
	}
	if stats, err := json.Marshal(res); err == nil {
		status.StatsJSON = stats
	}
	if err := s.syncRepo.Update(ctx, status); err != nil {
		s.logger.Printf("persist sync status: %v", err)
	}
}

func (s *syncService) GetSyncStatus(ctx context.Context, userID string) (*model.SyncStatus, error) {
	status, err := s.syncRepo.Get(ctx, userID, model.SyncJobOrders)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return status, nil
}
