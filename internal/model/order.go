package model

import "time"

type FulfillmentStatus string

const (
	FulfillmentNotStarted FulfillmentStatus = "NOT_STARTED"
	FulfillmentInProgress FulfillmentStatus = "IN_PROGRESS"
	FulfillmentFulfilled  FulfillmentStatus = "FULFILLED"
)

// ParseFulfillmentStatus rejects values outside the known enum so bad
// upstream data is caught at the store boundary, not at use sites.
func ParseFulfillmentStatus(s string) (FulfillmentStatus, bool) {
	switch FulfillmentStatus(s) {
	case FulfillmentNotStarted, FulfillmentInProgress, FulfillmentFulfilled:
		return FulfillmentStatus(s), true
	}
	return "", false
}

type Order struct {
	ID                uint64            `gorm:"primaryKey;autoIncrement"`
	UserID            string            `gorm:"column:user_id;size:128;not null;uniqueIndex:idx_orders_user_external"`
	ExternalID        string            `gorm:"column:external_id;size:64;not null;uniqueIndex:idx_orders_user_external"`
	CreatedDate       time.Time         `gorm:"column:created_date"`
	LastModifiedDate  time.Time         `gorm:"column:last_modified_date;index"`
	FulfillmentStatus FulfillmentStatus `gorm:"column:fulfillment_status;size:32;not null"`
	PaymentStatus     string            `gorm:"column:payment_status;size:32"`
	BuyerUsername     string            `gorm:"column:buyer_username;size:128"`
	Currency          string            `gorm:"column:currency;size:8"`
	TotalAmount       float64           `gorm:"column:total_amount"`
	CreatedAt         time.Time         `gorm:"autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
