package model

import "time"

// Fulfillment is one shipping record for an order, upserted from the
// marketplace's shipping fulfillment endpoint.
type Fulfillment struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement"`
	OrderID        uint64     `gorm:"column:order_id;not null;uniqueIndex:idx_fulfillments_order_external"`
	ExternalID     string     `gorm:"column:external_id;size:64;not null;uniqueIndex:idx_fulfillments_order_external"`
	Carrier        string     `gorm:"column:carrier;size:64"`
	TrackingNumber string     `gorm:"column:tracking_number;size:128"`
	ShippedDate    *time.Time `gorm:"column:shipped_date"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (Fulfillment) TableName() string {
	return "fulfillments"
}
