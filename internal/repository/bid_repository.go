package repository

import (
	"context"
	"errors"

	"auctionhouse/internal/domain/bid"
	auction_errors "auctionhouse/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresBidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) BidRepository {
	return &PostgresBidRepository{db: db}
}

func (r *PostgresBidRepository) Create(ctx context.Context, b *bid.Bid) error {
	res := r.db.WithContext(ctx).Create(b)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) || isUniqueViolation(res.Error) {
			return auction_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

// GetByItemID returns the item's bid ledger, newest first.
func (r *PostgresBidRepository) GetByItemID(ctx context.Context, itemID uuid.UUID) ([]bid.Bid, error) {
	var bids []bid.Bid
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *PostgresBidRepository) CountByItemID(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&bid.Bid{}).Where("item_id = ?", itemID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresBidRepository) HighestBid(ctx context.Context, itemID uuid.UUID) (bid.Bid, error) {
	var b bid.Bid
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("amount DESC, created_at ASC").
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bid.Bid{}, auction_errors.ErrNotFound
		}
		return bid.Bid{}, err
	}
	return b, nil
}
