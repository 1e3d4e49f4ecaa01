package model

import "time"

// OrderTransaction is the settled fee breakdown for an order. Fee
// components are nullable because the marketplace reports them piecemeal;
// a missing component is treated as zero downstream, never as an error.
type OrderTransaction struct {
	ID                    uint64     `gorm:"primaryKey;autoIncrement"`
	OrderID               uint64     `gorm:"column:order_id;not null;uniqueIndex"`
	ExternalTransactionID string     `gorm:"column:external_transaction_id;size:64"`
	FinalValueFeeFixed    *float64   `gorm:"column:final_value_fee_fixed"`
	FinalValueFeeVariable *float64   `gorm:"column:final_value_fee_variable"`
	RegulatoryFee         *float64   `gorm:"column:regulatory_fee"`
	InternationalFee      *float64   `gorm:"column:international_fee"`
	AdFee                 *float64   `gorm:"column:ad_fee"`
	PostageCost           *float64   `gorm:"column:postage_cost"`
	SettledAt             *time.Time `gorm:"column:settled_at"`
	CreatedAt             time.Time  `gorm:"autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime"`
}

func (OrderTransaction) TableName() string {
	return "order_transactions"
}
