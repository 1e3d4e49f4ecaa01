// Package marketplace wraps the seller-side marketplace REST API: paged
// order listing by last-modified range, shipping fulfillments, and
// settled transaction fees.
package marketplace

import (
	"context"
	"time"
)

// DateRange is an inclusive last-modified window, serialized as ISO-8601.
type DateRange struct {
	From time.Time
	To   time.Time
}

type Order struct {
	OrderID           string
	CreationDate      time.Time
	LastModifiedDate  time.Time
	FulfillmentStatus string
	PaymentStatus     string
	BuyerUsername     string
	Currency          string
	Total             float64
	LineItems         []LineItem
}

type LineItem struct {
	LineItemID        string
	SKU               string
	Title             string
	Quantity          int
	Total             float64
	FulfillmentStatus string
}

type OrderPage struct {
	Orders []Order
	Total  int
	Offset int
	Limit  int
}

type Fulfillment struct {
	FulfillmentID  string
	Carrier        string
	TrackingNumber string
	ShippedDate    *time.Time
}

// FeeBreakdown is the settled fee record for one order. Components the
// marketplace has not reported yet are nil.
type FeeBreakdown struct {
	TransactionID         string
	FinalValueFeeFixed    *float64
	FinalValueFeeVariable *float64
	RegulatoryFee         *float64
	InternationalFee      *float64
	AdFee                 *float64
	PostageCost           *float64
	SettledAt             *time.Time
}

type Client interface {
	ListOrders(ctx context.Context, rng DateRange, limit, offset int) (*OrderPage, error)
	ListFulfillments(ctx context.Context, orderID string) ([]Fulfillment, error)
	// GetTransactionFees returns (nil, nil) while the order has no
	// settled transaction yet.
	GetTransactionFees(ctx context.Context, orderID string) (*FeeBreakdown, error)
}
