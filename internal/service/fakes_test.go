package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/brickops/backend/internal/marketplace"
	"github.com/brickops/backend/internal/model"
	"github.com/brickops/backend/internal/repository"
	"gorm.io/gorm"
)

// fakeStore is the shared in-memory backing for the per-aggregate fake
// repositories used across the service tests.
type fakeStore struct {
	mu sync.Mutex

	orders       []*model.Order
	lineItems    []*model.LineItem
	allocations  []model.LineItemAllocation
	inventory    []*model.InventoryItem
	queueItems   []*model.ResolutionQueueItem
	syncStatuses []*model.SyncStatus
	fulfillments []*model.Fulfillment
	transactions []*model.OrderTransaction

	nextID uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (s *fakeStore) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addInventory(item model.InventoryItem) *model.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.id()
	cp := item
	s.inventory = append(s.inventory, &cp)
	return &cp
}

func (s *fakeStore) addOrder(o model.Order) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.id()
	cp := o
	s.orders = append(s.orders, &cp)
	return &cp
}

func (s *fakeStore) addLineItem(li model.LineItem) *model.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	li.ID = s.id()
	cp := li
	s.lineItems = append(s.lineItems, &cp)
	return &cp
}

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = r.s.id()
	cp := *o
	r.s.orders = append(r.s.orders, &cp)
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, stored := range r.s.orders {
		if stored.ID == o.ID {
			cp := *o
			r.s.orders[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uint64) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) FindByExternalID(_ context.Context, userID, externalID string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.UserID == userID && o.ExternalID == externalID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) ListFulfilledWithUnlinkedItems(_ context.Context, userID string, limit, offset int) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []model.Order
	for _, o := range r.s.orders {
		if o.UserID != userID || o.FulfillmentStatus != model.FulfillmentFulfilled {
			continue
		}
		unlinked := false
		for _, li := range r.s.lineItems {
			if li.OrderID == o.ID && li.LinkedAt == nil {
				unlinked = true
				break
			}
		}
		if unlinked {
			matched = append(matched, *o)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeOrderRepo) LinkCounts(_ context.Context, userID string) ([]repository.OrderLinkCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []repository.OrderLinkCount
	for _, o := range r.s.orders {
		if o.UserID != userID || o.FulfillmentStatus != model.FulfillmentFulfilled {
			continue
		}
		row := repository.OrderLinkCount{OrderID: o.ID}
		for _, li := range r.s.lineItems {
			if li.OrderID != o.ID {
				continue
			}
			row.Total++
			if li.LinkedAt != nil {
				row.Linked++
			}
		}
		if row.Total > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type fakeLineItemRepo struct{ s *fakeStore }

func (r *fakeLineItemRepo) Create(_ context.Context, li *model.LineItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	li.ID = r.s.id()
	cp := *li
	r.s.lineItems = append(r.s.lineItems, &cp)
	return nil
}

func (r *fakeLineItemRepo) Update(_ context.Context, li *model.LineItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, stored := range r.s.lineItems {
		if stored.ID == li.ID {
			cp := *li
			r.s.lineItems[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeLineItemRepo) FindByID(_ context.Context, id uint64) (*model.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, li := range r.s.lineItems {
		if li.ID == id {
			cp := *li
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLineItemRepo) FindByExternalID(_ context.Context, orderID uint64, externalID string) (*model.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, li := range r.s.lineItems {
		if li.OrderID == orderID && li.ExternalID == externalID {
			cp := *li
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLineItemRepo) ListByOrder(_ context.Context, orderID uint64) ([]model.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.LineItem
	for _, li := range r.s.lineItems {
		if li.OrderID == orderID {
			out = append(out, *li)
		}
	}
	return out, nil
}

func (r *fakeLineItemRepo) MarkLinked(_ context.Context, id uint64, inventoryItemID *uint64, method string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, li := range r.s.lineItems {
		if li.ID == id && li.LinkedAt == nil {
			now := time.Now()
			li.InventoryItemID = inventoryItemID
			li.LinkedAt = &now
			li.LinkMethod = &method
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeLineItemRepo) CreateAllocations(_ context.Context, allocs []model.LineItemAllocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range allocs {
		for _, existing := range r.s.allocations {
			if existing.InventoryItemID == a.InventoryItemID {
				return gorm.ErrDuplicatedKey
			}
		}
		a.ID = r.s.id()
		r.s.allocations = append(r.s.allocations, a)
	}
	return nil
}

type fakeInventoryRepo struct{ s *fakeStore }

func (r *fakeInventoryRepo) Create(_ context.Context, item *model.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.ID = r.s.id()
	cp := *item
	r.s.inventory = append(r.s.inventory, &cp)
	return nil
}

func (r *fakeInventoryRepo) Update(_ context.Context, item *model.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, stored := range r.s.inventory {
		if stored.ID == item.ID {
			cp := *item
			r.s.inventory[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeInventoryRepo) FindByID(_ context.Context, id uint64) (*model.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range r.s.inventory {
		if item.ID == id {
			cp := *item
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInventoryRepo) FindByIDs(_ context.Context, ids []uint64) ([]model.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.InventoryItem
	for _, id := range ids {
		for _, item := range r.s.inventory {
			if item.ID == id {
				out = append(out, *item)
			}
		}
	}
	return out, nil
}

func hasStatus(statuses []model.InventoryStatus, st model.InventoryStatus) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

func (r *fakeInventoryRepo) ListBySKU(_ context.Context, userID, sku string, statuses []model.InventoryStatus) ([]model.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.InventoryItem
	for _, item := range r.s.inventory {
		if item.UserID == userID && item.SKU != nil && *item.SKU == sku && hasStatus(statuses, item.Status) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) ListBySetNumber(_ context.Context, userID, setNumber string, statuses []model.InventoryStatus) ([]model.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.InventoryItem
	for _, item := range r.s.inventory {
		if item.UserID == userID && item.SetNumber != nil && *item.SetNumber == setNumber && hasStatus(statuses, item.Status) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) SearchByTitle(_ context.Context, userID string, keywords []string, statuses []model.InventoryStatus, limit int) ([]model.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.InventoryItem
	for _, item := range r.s.inventory {
		if item.UserID != userID || !hasStatus(statuses, item.Status) {
			continue
		}
		title := strings.ToLower(item.Title)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(title, strings.ToLower(kw)) {
				out = append(out, *item)
				break
			}
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) MarkSold(_ context.Context, id, orderID uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range r.s.inventory {
		if item.ID != id {
			continue
		}
		if item.Status != model.InventoryBacklog && item.Status != model.InventoryListed {
			return 0, nil
		}
		now := time.Now()
		item.Status = model.InventorySold
		item.SoldOrderID = &orderID
		item.SoldAt = &now
		return 1, nil
	}
	return 0, nil
}

type fakeQueueRepo struct{ s *fakeStore }

func (r *fakeQueueRepo) Create(_ context.Context, item *model.ResolutionQueueItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.ID = r.s.id()
	cp := *item
	r.s.queueItems = append(r.s.queueItems, &cp)
	return nil
}

func (r *fakeQueueRepo) Update(_ context.Context, item *model.ResolutionQueueItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, stored := range r.s.queueItems {
		if stored.ID == item.ID {
			cp := *item
			r.s.queueItems[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeQueueRepo) FindByPublicID(_ context.Context, publicID string) (*model.ResolutionQueueItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range r.s.queueItems {
		if item.PublicID == publicID {
			cp := *item
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQueueRepo) FindPendingByLineItem(_ context.Context, lineItemID uint64) (*model.ResolutionQueueItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range r.s.queueItems {
		if item.LineItemID == lineItemID && item.Status == model.QueuePending {
			cp := *item
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQueueRepo) ListPending(_ context.Context, userID string, limit, offset int) ([]model.ResolutionQueueItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.ResolutionQueueItem
	for _, item := range r.s.queueItems {
		if item.UserID == userID && item.Status == model.QueuePending {
			out = append(out, *item)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeQueueRepo) CountPending(_ context.Context, userID string) (int64, error) {
	items, _ := r.ListPending(context.Background(), userID, 0, 0)
	return int64(len(items)), nil
}

type fakeSyncStatusRepo struct{ s *fakeStore }

func (r *fakeSyncStatusRepo) Get(_ context.Context, userID string, jobType model.SyncJobType) (*model.SyncStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.syncStatuses {
		if st.UserID == userID && st.JobType == jobType {
			cp := *st
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSyncStatusRepo) GetOrCreate(ctx context.Context, userID string, jobType model.SyncJobType) (*model.SyncStatus, error) {
	if st, err := r.Get(ctx, userID, jobType); err == nil {
		return st, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := &model.SyncStatus{ID: r.s.id(), UserID: userID, JobType: jobType}
	r.s.syncStatuses = append(r.s.syncStatuses, st)
	cp := *st
	return &cp, nil
}

func (r *fakeSyncStatusRepo) Update(_ context.Context, s *model.SyncStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, stored := range r.s.syncStatuses {
		if stored.ID == s.ID {
			cp := *s
			r.s.syncStatuses[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeSyncStatusRepo) SetRunning(_ context.Context, userID string, jobType model.SyncJobType, running bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.syncStatuses {
		if st.UserID == userID && st.JobType == jobType && st.Running != running {
			st.Running = running
			return 1, nil
		}
	}
	return 0, nil
}

type fakeFulfillmentRepo struct{ s *fakeStore }

func (r *fakeFulfillmentRepo) Upsert(_ context.Context, f *model.Fulfillment) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, stored := range r.s.fulfillments {
		if stored.OrderID == f.OrderID && stored.ExternalID == f.ExternalID {
			f.ID = stored.ID
			cp := *f
			r.s.fulfillments[i] = &cp
			return false, nil
		}
	}
	f.ID = r.s.id()
	cp := *f
	r.s.fulfillments = append(r.s.fulfillments, &cp)
	return true, nil
}

func (r *fakeFulfillmentRepo) ListByOrder(_ context.Context, orderID uint64) ([]model.Fulfillment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Fulfillment
	for _, f := range r.s.fulfillments {
		if f.OrderID == orderID {
			out = append(out, *f)
		}
	}
	return out, nil
}

type fakeTransactionRepo struct{ s *fakeStore }

func (r *fakeTransactionRepo) FindByOrderID(_ context.Context, orderID uint64) (*model.OrderTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, txn := range r.s.transactions {
		if txn.OrderID == orderID {
			cp := *txn
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTransactionRepo) Upsert(_ context.Context, txn *model.OrderTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, stored := range r.s.transactions {
		if stored.OrderID == txn.OrderID {
			txn.ID = stored.ID
			cp := *txn
			r.s.transactions[i] = &cp
			return nil
		}
	}
	txn.ID = r.s.id()
	cp := *txn
	r.s.transactions = append(r.s.transactions, &cp)
	return nil
}

// fakeMarketClient serves canned orders filtered by the requested
// last-modified range and records call counts.
type fakeMarketClient struct {
	orders       []marketplace.Order
	fulfillments map[string][]marketplace.Fulfillment
	fees         map[string]*marketplace.FeeBreakdown
	listErr      error
	// listErrOnCall makes only that ListOrders call (1-based) fail;
	// zero fails every call once listErr is set.
	listErrOnCall int
	fulfillErr    error

	listCalls        int
	fulfillmentCalls int
	feeCalls         int
}

func (c *fakeMarketClient) ListOrders(_ context.Context, rng marketplace.DateRange, limit, offset int) (*marketplace.OrderPage, error) {
	c.listCalls++
	if c.listErr != nil && (c.listErrOnCall == 0 || c.listCalls == c.listErrOnCall) {
		return nil, c.listErr
	}
	var matched []marketplace.Order
	for _, o := range c.orders {
		if o.LastModifiedDate.Before(rng.From) || o.LastModifiedDate.After(rng.To) {
			continue
		}
		matched = append(matched, o)
	}
	page := &marketplace.OrderPage{Total: len(matched), Offset: offset, Limit: limit}
	if offset < len(matched) {
		matched = matched[offset:]
		if len(matched) > limit {
			matched = matched[:limit]
		}
		page.Orders = matched
	}
	return page, nil
}

func (c *fakeMarketClient) ListFulfillments(_ context.Context, orderID string) ([]marketplace.Fulfillment, error) {
	c.fulfillmentCalls++
	if c.fulfillErr != nil {
		return nil, c.fulfillErr
	}
	return c.fulfillments[orderID], nil
}

func (c *fakeMarketClient) GetTransactionFees(_ context.Context, orderID string) (*marketplace.FeeBreakdown, error) {
	c.feeCalls++
	return c.fees[orderID], nil
}
