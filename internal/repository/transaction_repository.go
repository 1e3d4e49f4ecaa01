package repository

import (
	"context"
	"errors"

	"github.com/brickops/backend/internal/model"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	FindByOrderID(ctx context.Context, orderID uint64) (*model.OrderTransaction, error)
	Upsert(ctx context.Context, txn *model.OrderTransaction) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) FindByOrderID(ctx context.Context, orderID uint64) (*model.OrderTransaction, error) {
	var txn model.OrderTransaction
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) Upsert(ctx context.Context, txn *model.OrderTransaction) error {
	var existing model.OrderTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", txn.OrderID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(txn).Error
	}
	if err != nil {
		return err
	}
	txn.ID = existing.ID
	txn.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(txn).Error
}
