package repository

import (
	"context"
	"errors"
	"time"

	"auctionhouse/internal/domain/transaction"
	auction_errors "auctionhouse/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresTransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

func (r *PostgresTransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	res := r.db.WithContext(ctx).Create(t)
	if res.Error != nil {
		// The unique index on item_id enforces at most one sale per item.
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) || isUniqueViolation(res.Error) {
			return auction_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresTransactionRepository) GetByItemID(ctx context.Context, itemID uuid.UUID) (transaction.Transaction, error) {
	var t transaction.Transaction
	err := r.db.WithContext(ctx).Where("item_id = ?", itemID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return transaction.Transaction{}, auction_errors.ErrNotFound
		}
		return transaction.Transaction{}, err
	}
	return t, nil
}

func (r *PostgresTransactionRepository) TotalCommission(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&transaction.Transaction{}).
		Select("COALESCE(SUM(commission_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PostgresTransactionRepository) CommissionBetween(ctx context.Context, start, end time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&transaction.Transaction{}).
		Select("COALESCE(SUM(commission_amount), 0)").
		Where("completed_at BETWEEN ? AND ?", start, end).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
