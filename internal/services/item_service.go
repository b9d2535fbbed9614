package services

import (
	"context"
	"time"

	"auctionhouse/internal/domain/item"
	"auctionhouse/internal/domain/transaction"
	"auctionhouse/internal/metrics"
	"auctionhouse/internal/notifier"
	"auctionhouse/internal/repository"
	auction_errors "auctionhouse/pkg/errors"
	"auctionhouse/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemService owns auction creation, reserve handling, and resolution.
type ItemService struct {
	store      repository.Store
	commission *CommissionService
	sink       notifier.Sink
	log        *logger.Logger
	clock      func() time.Time
}

func NewItemService(store repository.Store, commission *CommissionService, sink notifier.Sink, log *logger.Logger) *ItemService {
	return &ItemService{
		store:      store,
		commission: commission,
		sink:       sink,
		log:        log,
		clock:      time.Now,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, sellerID uuid.UUID, title, description string, startingPrice decimal.Decimal, endTime time.Time) (item.Item, error) {
	i, err := item.New(sellerID, title, description, startingPrice, endTime, s.clock())
	if err != nil {
		return item.Item{}, err
	}
	if err := s.store.Items().Create(ctx, i); err != nil {
		return item.Item{}, err
	}
	return *i, nil
}

func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (item.Item, error) {
	return s.store.Items().GetByID(ctx, id)
}

// SetReservePrice attaches a hidden reserve. Only the seller may set it.
func (s *ItemService) SetReservePrice(ctx context.Context, itemID, sellerID uuid.UUID, reserve decimal.Decimal) error {
	i, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if i.SellerID != sellerID {
		return auction_errors.ErrForbidden
	}
	if i.Status != item.StatusActive {
		return auction_errors.ErrAuctionNotActive
	}
	if err := i.SetReservePrice(reserve); err != nil {
		return err
	}
	return s.store.Items().Update(ctx, i)
}

// CheckAndCompleteExpiredAuctions resolves every active auction whose end
// time has passed and returns how many produced a completed transaction.
// Items are resolved independently: one failure is logged and skipped so it
// cannot block the rest of the sweep. Re-runs are no-ops for resolved items
// because they are no longer active.
func (s *ItemService) CheckAndCompleteExpiredAuctions(ctx context.Context) (int, error) {
	start := s.clock()
	defer func() {
		metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	expired, err := s.store.Items().FindExpired(ctx, start)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, i := range expired {
		sold, err := s.completeAuction(ctx, i)
		if err != nil {
			s.log.Errorf("failed to resolve auction %s: %v", i.ID, err)
			continue
		}
		if sold {
			completed++
		}
	}
	return completed, nil
}

// completeAuction resolves a single expired item. It reports whether a sale
// transaction was created.
func (s *ItemService) completeAuction(ctx context.Context, i item.Item) (bool, error) {
	count, err := s.store.Bids().CountByItemID(ctx, i.ID)
	if err != nil {
		return false, err
	}

	if count == 0 {
		if err := s.resolve(ctx, i.ID, func(locked *item.Item) error {
			locked.Status = item.StatusExpired
			return nil
		}); err != nil {
			return false, err
		}
		metrics.AuctionsResolvedTotal.WithLabelValues(notifier.OutcomeExpired).Inc()
		s.sink.AuctionEnded(i.ID, notifier.OutcomeExpired, nil, nil, nil)
		return false, nil
	}

	highest, err := s.store.Bids().HighestBid(ctx, i.ID)
	if err != nil {
		return false, err
	}
	finalPrice := highest.Amount

	// The stored reserve_met flag is a cached projection; the authoritative
	// check recomputes it from the winning bid here.
	if i.HasReserve() && finalPrice.LessThan(i.ReservePrice.Decimal) {
		if err := s.resolve(ctx, i.ID, func(locked *item.Item) error {
			locked.Status = item.StatusCompleted
			locked.ReserveMet = false
			return nil
		}); err != nil {
			return false, err
		}
		metrics.AuctionsResolvedTotal.WithLabelValues(notifier.OutcomeReserveNotMet).Inc()
		price := finalPrice.InexactFloat64()
		s.sink.AuctionEnded(i.ID, notifier.OutcomeReserveNotMet, &price, nil, nil)
		return false, nil
	}

	rate := s.commission.RateFor(i)
	commission := s.commission.CalculateCommission(finalPrice, rate)
	payout := s.commission.CalculateSellerPayout(finalPrice, commission)
	now := s.clock()

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Items().GetForUpdate(ctx, i.ID)
		if err != nil {
			return err
		}
		if locked.Status != item.StatusActive {
			// Already resolved by a concurrent sweep.
			return auction_errors.ErrConflict
		}
		locked.Status = item.StatusCompleted
		locked.ReserveMet = true
		if err := tx.Items().Update(ctx, locked); err != nil {
			return err
		}
		return tx.Transactions().Create(ctx, transaction.New(
			i.ID, i.SellerID, highest.BidderID, finalPrice, commission, payout, now,
		))
	})
	if err != nil {
		return false, err
	}

	metrics.AuctionsResolvedTotal.WithLabelValues(notifier.OutcomeCompleted).Inc()
	price := finalPrice.InexactFloat64()
	winnerID := highest.BidderID
	winnerName := s.store.Users().DisplayName(ctx, winnerID)
	s.sink.AuctionEnded(i.ID, notifier.OutcomeCompleted, &price, &winnerID, &winnerName)
	return true, nil
}

// resolve applies a status mutation under the item row lock, skipping items
// another sweep already resolved.
func (s *ItemService) resolve(ctx context.Context, itemID uuid.UUID, mutate func(*item.Item) error) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Items().GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if locked.Status != item.StatusActive {
			return auction_errors.ErrConflict
		}
		if err := mutate(&locked); err != nil {
			return err
		}
		return tx.Items().Update(ctx, locked)
	})
}

// BroadcastEndingSoon emits advisory auction_ending countdowns for items
// closing within the horizon. No state is mutated.
func (s *ItemService) BroadcastEndingSoon(ctx context.Context, horizon time.Duration) (int, error) {
	now := s.clock()
	ending, err := s.store.Items().FindEndingWithin(ctx, now, horizon)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, i := range ending {
		remaining := int64(i.EndTime.Sub(now).Seconds())
		if remaining <= 0 {
			continue
		}
		s.sink.AuctionEnding(i.ID, remaining)
		sent++
	}
	return sent, nil
}
