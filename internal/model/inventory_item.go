package model

import "time"

type InventoryStatus string

const (
	InventoryBacklog        InventoryStatus = "BACKLOG"
	InventoryListed         InventoryStatus = "LISTED"
	InventorySold           InventoryStatus = "SOLD"
	InventoryReturned       InventoryStatus = "RETURNED"
	InventoryNotYetReceived InventoryStatus = "NOT_YET_RECEIVED"
)

func ParseInventoryStatus(s string) (InventoryStatus, bool) {
	switch InventoryStatus(s) {
	case InventoryBacklog, InventoryListed, InventorySold, InventoryReturned, InventoryNotYetReceived:
		return InventoryStatus(s), true
	}
	return "", false
}

type Condition string

const (
	ConditionNew  Condition = "New"
	ConditionUsed Condition = "Used"
)

type InventoryItem struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement"`
	UserID          string          `gorm:"column:user_id;size:128;not null;index"`
	SetNumber       *string         `gorm:"column:set_number;size:16;index"`
	SKU             *string         `gorm:"column:sku;size:64;index"`
	Title           string          `gorm:"column:title;size:255;not null"`
	Condition       Condition       `gorm:"column:condition;size:16"`
	Status          InventoryStatus `gorm:"column:status;size:32;not null;index"`
	StorageLocation string          `gorm:"column:storage_location;size:64"`
	CostPrice       float64         `gorm:"column:cost_price"`
	ListingValue    float64         `gorm:"column:listing_value"`
	PurchaseDate    *time.Time      `gorm:"column:purchase_date"`
	SoldOrderID     *uint64         `gorm:"column:sold_order_id;index"`
	SoldAt          *time.Time      `gorm:"column:sold_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}
