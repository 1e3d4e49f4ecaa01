package model

import "time"

type LineItem struct {
	ID                uint64            `gorm:"primaryKey;autoIncrement"`
	OrderID           uint64            `gorm:"column:order_id;not null;uniqueIndex:idx_line_items_order_external"`
	ExternalID        string            `gorm:"column:external_id;size:64;not null;uniqueIndex:idx_line_items_order_external"`
	SKU               *string           `gorm:"column:sku;size:64;index"`
	Title             string            `gorm:"column:title;size:255;not null"`
	Quantity          int               `gorm:"column:quantity;not null"`
	TotalAmount       float64           `gorm:"column:total_amount"`
	FulfillmentStatus FulfillmentStatus `gorm:"column:fulfillment_status;size:32"`
	InventoryItemID   *uint64           `gorm:"column:inventory_item_id;index"`
	LinkedAt          *time.Time        `gorm:"column:linked_at"`
	LinkMethod        *string           `gorm:"column:link_method;size:32"`
	CreatedAt         time.Time         `gorm:"autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime"`
}

func (LineItem) TableName() string {
	return "line_items"
}

// Linked reports whether every unit of the line item has an inventory
// record behind it. Multi-unit lines are linked through allocations, so
// linked_at is the authoritative marker for both paths.
func (li *LineItem) Linked() bool {
	return li.LinkedAt != nil
}

// LineItemAllocation records one physical inventory unit assigned to a
// line item. The unique index on inventory_item_id is what makes
// double-allocation impossible at the store level.
type LineItemAllocation struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	LineItemID      uint64    `gorm:"column:line_item_id;not null;index"`
	InventoryItemID uint64    `gorm:"column:inventory_item_id;not null;uniqueIndex"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (LineItemAllocation) TableName() string {
	return "line_item_allocations"
}
