package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/brickops/backend/internal/config"
	"github.com/brickops/backend/internal/db"
	"github.com/brickops/backend/internal/model"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const seedUserID = "dev-user"

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(
		&model.Order{}, &model.LineItem{}, &model.LineItemAllocation{},
		&model.Fulfillment{}, &model.InventoryItem{},
		&model.ResolutionQueueItem{}, &model.SyncStatus{}, &model.OrderTransaction{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("inventory already exists; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	items := buildSeedInventory()
	if err := gdb.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}

	order, lineItems := buildSeedOrder()
	if err := gdb.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for i := range lineItems {
		lineItems[i].OrderID = order.ID
	}
	if err := gdb.WithContext(ctx).Create(&lineItems).Error; err != nil {
		return fmt.Errorf("insert line items: %w", err)
	}

	log.Printf("seeded %d inventory items and order %s with %d line items",
		len(items), order.ExternalID, len(lineItems))
	return nil
}

func buildSeedInventory() []model.InventoryItem {
	daysAgo := func(d int) *time.Time {
		t := time.Now().AddDate(0, 0, -d)
		return &t
	}
	str := func(s string) *string { return &s }

	return []model.InventoryItem{
		{UserID: seedUserID, SetNumber: str("75192"), SKU: str("LEGO-75192-N"), Title: "LEGO Star Wars Millennium Falcon 75192", Condition: model.ConditionNew, Status: model.InventoryListed, StorageLocation: "A1", CostPrice: 520, ListingValue: 710, PurchaseDate: daysAgo(210)},
		{UserID: seedUserID, SetNumber: str("10276"), SKU: str("LEGO-10276-N"), Title: "LEGO Creator Colosseum 10276", Condition: model.ConditionNew, Status: model.InventoryBacklog, StorageLocation: "A2", CostPrice: 340, ListingValue: 480, PurchaseDate: daysAgo(95)},
		{UserID: seedUserID, SetNumber: str("21318"), SKU: str("LEGO-21318-U"), Title: "LEGO Ideas Tree House 21318", Condition: model.ConditionUsed, Status: model.InventoryListed, StorageLocation: "B1", CostPrice: 110, ListingValue: 175, PurchaseDate: daysAgo(40)},
		{UserID: seedUserID, SetNumber: str("21318"), SKU: str("LEGO-21318-N"), Title: "LEGO Ideas Tree House 21318 Sealed", Condition: model.ConditionNew, Status: model.InventoryBacklog, StorageLocation: "B2", CostPrice: 150, ListingValue: 220, PurchaseDate: daysAgo(12)},
		{UserID: seedUserID, SetNumber: str("42115"), Title: "LEGO Technic Lamborghini Sian 42115", Condition: model.ConditionNew, Status: model.InventoryBacklog, CostPrice: 280, ListingValue: 390, PurchaseDate: daysAgo(130)},
	}
}

func buildSeedOrder() (*model.Order, []model.LineItem) {
	now := time.Now()
	sku := "LEGO-75192-N"
	order := &model.Order{
		UserID:            seedUserID,
		ExternalID:        "11-00001-00001",
		CreatedDate:       now.AddDate(0, 0, -3),
		LastModifiedDate:  now.AddDate(0, 0, -1),
		FulfillmentStatus: model.FulfillmentFulfilled,
		PaymentStatus:     "PAID",
		BuyerUsername:     "brickbuyer42",
		Currency:          "GBP",
		TotalAmount:       885,
	}
	lineItems := []model.LineItem{
		{ExternalID: "li-1", SKU: &sku, Title: "LEGO Star Wars Millennium Falcon 75192 New Sealed", Quantity: 1, TotalAmount: 710, FulfillmentStatus: model.FulfillmentFulfilled},
		{ExternalID: "li-2", Title: "LEGO Ideas Tree House 21318", Quantity: 1, TotalAmount: 175, FulfillmentStatus: model.FulfillmentFulfilled},
	}
	return order, lineItems
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.InventoryItem{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count inventory: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}
