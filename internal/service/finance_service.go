package service

import (
	"context"
	"errors"
	"time"

	"github.com/brickops/backend/internal/marketplace"
	"github.com/brickops/backend/internal/model"
	"github.com/brickops/backend/internal/repository"
	"gorm.io/gorm"
)

type NetSaleStatus string

const (
	// NetSalePending means no fee record exists yet; normal for very
	// recent sales the marketplace has not settled.
	NetSalePending    NetSaleStatus = "pending_transaction"
	NetSaleCalculated NetSaleStatus = "calculated"
)

// NetSale is the per-line-item proceeds figure. Fees and Net are nil
// until a transaction record exists. PostagePaid is what the seller
// spent on shipping, reported alongside but never counted as a fee.
type NetSale struct {
	GrossAmount float64       `json:"grossAmount"`
	FeesAmount  *float64      `json:"feesAmount"`
	NetAmount   *float64      `json:"netAmount"`
	PostagePaid *float64      `json:"postagePaid"`
	Status      NetSaleStatus `json:"status"`
}

type FinanceService interface {
	CalculateNetSale(ctx context.Context, orderID uint64, li *model.LineItem) (*NetSale, error)
	// EnrichOrderTransaction pulls the fee breakdown for an order and
	// stores it; returns false when the marketplace has not settled yet.
	EnrichOrderTransaction(ctx context.Context, orderID uint64, externalOrderID string) (bool, error)
}

type financeService struct {
	orderRepo repository.OrderRepository
	txnRepo   repository.TransactionRepository
	client    marketplace.Client
}

func NewFinanceService(orderRepo repository.OrderRepository, txnRepo repository.TransactionRepository, client marketplace.Client) FinanceService {
	return &financeService{orderRepo: orderRepo, txnRepo: txnRepo, client: client}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func (s *financeService) CalculateNetSale(ctx context.Context, orderID uint64, li *model.LineItem) (*NetSale, error) {
	txn, err := s.txnRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NetSale{GrossAmount: li.TotalAmount, Status: NetSalePending}, nil
		}
		return nil, err
	}

	// Missing components count as zero so partial fee data still yields
	// a best-effort net figure.
	orderFees := deref(txn.FinalValueFeeFixed) +
		deref(txn.FinalValueFeeVariable) +
		deref(txn.RegulatoryFee) +
		deref(txn.InternationalFee) +
		deref(txn.AdFee)

	// Fees settle per order; apportion by the line item's share of the
	// order total when the order has more than this line on it.
	share := 1.0
	if order, err := s.orderRepo.FindByID(ctx, orderID); err == nil && order.TotalAmount > 0 {
		share = li.TotalAmount / order.TotalAmount
		if share > 1 {
			share = 1
		}
	}
	fees := orderFees * share
	net := li.TotalAmount - fees

	out := &NetSale{
		GrossAmount: li.TotalAmount,
		FeesAmount:  &fees,
		NetAmount:   &net,
		Status:      NetSaleCalculated,
	}
	if txn.PostageCost != nil {
		postage := *txn.PostageCost * share
		out.PostagePaid = &postage
	}
	return out, nil
}

func (s *financeService) EnrichOrderTransaction(ctx context.Context, orderID uint64, externalOrderID string) (bool, error) {
	fees, err := s.client.GetTransactionFees(ctx, externalOrderID)
	if err != nil {
		return false, err
	}
	if fees == nil {
		return false, nil
	}
	txn := &model.OrderTransaction{
		OrderID:               orderID,
		ExternalTransactionID: fees.TransactionID,
		FinalValueFeeFixed:    fees.FinalValueFeeFixed,
		FinalValueFeeVariable: fees.FinalValueFeeVariable,
		RegulatoryFee:         fees.RegulatoryFee,
		InternationalFee:      fees.InternationalFee,
		AdFee:                 fees.AdFee,
		PostageCost:           fees.PostageCost,
		SettledAt:             fees.SettledAt,
	}
	if txn.SettledAt == nil {
		now := time.Now()
		txn.SettledAt = &now
	}
	if err := s.txnRepo.Upsert(ctx, txn); err != nil {
		return false, err
	}
	return true, nil
}
