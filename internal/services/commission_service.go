package services

import (
	"context"
	"time"

	"auctionhouse/internal/domain/item"
	"auctionhouse/internal/repository"
	auction_errors "auctionhouse/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionService owns the platform's cut arithmetic. The calculations are
// pure decimal math; rate validation happens when a rate is set on an item,
// never at calculation time.
type CommissionService struct {
	store       repository.Store
	defaultRate decimal.Decimal
}

func NewCommissionService(store repository.Store, defaultRate float64) *CommissionService {
	return &CommissionService{
		store:       store,
		defaultRate: decimal.NewFromFloat(defaultRate),
	}
}

// DefaultRate returns the platform-wide commission rate.
func (s *CommissionService) DefaultRate() decimal.Decimal {
	return s.defaultRate
}

// CalculateCommission returns salePrice * rate rounded to 2 decimal places.
func (s *CommissionService) CalculateCommission(salePrice, rate decimal.Decimal) decimal.Decimal {
	return salePrice.Mul(rate).Round(2)
}

// CalculateSellerPayout returns salePrice - commission rounded to 2 decimal
// places, so commission + payout always reassembles the sale price.
func (s *CommissionService) CalculateSellerPayout(salePrice, commission decimal.Decimal) decimal.Decimal {
	return salePrice.Sub(commission).Round(2)
}

// RateFor returns the item's override when present, otherwise the platform
// default.
func (s *CommissionService) RateFor(i item.Item) decimal.Decimal {
	if i.CommissionRate.Valid {
		return i.CommissionRate.Decimal
	}
	return s.defaultRate
}

// SetCommissionRate stores a per-item override. Rates outside [0,1] are
// rejected here, at the point the rate is set.
func (s *CommissionService) SetCommissionRate(ctx context.Context, itemID uuid.UUID, sellerID uuid.UUID, rate decimal.Decimal) error {
	i, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if i.SellerID != sellerID {
		return auction_errors.ErrForbidden
	}
	if err := i.SetCommissionRate(rate); err != nil {
		return err
	}
	return s.store.Items().Update(ctx, i)
}

// TotalPlatformEarnings sums commission across all completed transactions.
func (s *CommissionService) TotalPlatformEarnings(ctx context.Context) (float64, error) {
	return s.store.Transactions().TotalCommission(ctx)
}

// EarningsBetween sums commission for transactions completed in [start, end].
func (s *CommissionService) EarningsBetween(ctx context.Context, start, end time.Time) (float64, error) {
	return s.store.Transactions().CommissionBetween(ctx, start, end)
}
