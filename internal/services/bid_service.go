package services

import (
	"context"
	"time"

	"auctionhouse/internal/domain/bid"
	"auctionhouse/internal/domain/item"
	"auctionhouse/internal/metrics"
	"auctionhouse/internal/notifier"
	"auctionhouse/internal/repository"
	auction_errors "auctionhouse/pkg/errors"
	"auctionhouse/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BidService is the bid engine: it validates, commits, and announces bids.
type BidService struct {
	store repository.Store
	sink  notifier.Sink
	log   *logger.Logger
	clock func() time.Time
}

func NewBidService(store repository.Store, sink notifier.Sink, log *logger.Logger) *BidService {
	return &BidService{
		store: store,
		sink:  sink,
		log:   log,
		clock: time.Now,
	}
}

// BidRecord is what a successful placement returns to the HTTP layer.
type BidRecord struct {
	BidID      uuid.UUID `json:"bidId"`
	ItemID     uuid.UUID `json:"itemId"`
	BidderID   uuid.UUID `json:"bidderId"`
	BidderName string    `json:"bidderName"`
	Amount     float64   `json:"amount"`
	Timestamp  time.Time `json:"timestamp"`
}

// PlaceBid validates and commits a bid. The pre-checks run against a plain
// read so rejections are cheap; the transaction then re-reads the item under
// FOR UPDATE and re-validates the amount, which is what serializes
// concurrent bids on one item: the loser sees the winner's committed price
// and fails with bid-too-low.
func (s *BidService) PlaceBid(ctx context.Context, itemID, bidderID uuid.UUID, amount decimal.Decimal) (BidRecord, error) {
	now := s.clock()

	if amount.LessThanOrEqual(decimal.Zero) {
		return BidRecord{}, s.reject("invalid_amount", auction_errors.ErrInvalidAmount)
	}

	i, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return BidRecord{}, err
	}
	if err := validateBidAgainst(i, bidderID, amount, now); err != nil {
		return BidRecord{}, s.reject(rejectionReason(err), err)
	}

	var placed *bid.Bid
	var reserveMet *bool
	var previousBidder uuid.NullUUID
	var previousPrice decimal.Decimal
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Items().GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		// Re-validate against the locked row: a concurrent bid may have
		// committed between the read above and taking the lock.
		if err := validateBidAgainst(locked, bidderID, amount, now); err != nil {
			return err
		}

		// The outbid context must come from the locked row too, or a
		// concurrently committed bid would be notified with stale data.
		previousBidder = locked.HighestBidderID
		previousPrice = locked.CurrentPrice

		placed = bid.New(itemID, bidderID, amount, now)
		if err := tx.Bids().Create(ctx, placed); err != nil {
			return err
		}

		locked.CurrentPrice = amount
		locked.HighestBidderID = uuid.NullUUID{UUID: bidderID, Valid: true}
		if locked.HasReserve() {
			met := amount.GreaterThanOrEqual(locked.ReservePrice.Decimal)
			locked.ReserveMet = met
			reserveMet = &met
		}
		return tx.Items().Update(ctx, locked)
	})
	if err != nil {
		return BidRecord{}, s.reject(rejectionReason(err), err)
	}

	metrics.BidsAcceptedTotal.Inc()
	bidderName := s.store.Users().DisplayName(ctx, bidderID)

	// Post-commit side effects are best-effort: a notify failure must never
	// surface as a bid failure.
	s.sink.BidUpdate(itemID, amount.InexactFloat64(), bidderID, bidderName, now, reserveMet)
	if previousBidder.Valid && previousBidder.UUID != bidderID {
		s.sink.Outbid(itemID, previousBidder.UUID, amount.InexactFloat64(), previousPrice.InexactFloat64())
	}

	return BidRecord{
		BidID:      placed.ID,
		ItemID:     placed.ItemID,
		BidderID:   placed.BidderID,
		BidderName: bidderName,
		Amount:     placed.Amount.InexactFloat64(),
		Timestamp:  placed.CreatedAt,
	}, nil
}

// GetBidHistory returns the item's bids newest first. A missing item is an
// error; an item with no bids returns an empty slice.
func (s *BidService) GetBidHistory(ctx context.Context, itemID uuid.UUID) ([]BidRecord, error) {
	if _, err := s.store.Items().GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	bids, err := s.store.Bids().GetByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	records := make([]BidRecord, 0, len(bids))
	for _, b := range bids {
		records = append(records, BidRecord{
			BidID:      b.ID,
			ItemID:     b.ItemID,
			BidderID:   b.BidderID,
			BidderName: s.store.Users().DisplayName(ctx, b.BidderID),
			Amount:     b.Amount.InexactFloat64(),
			Timestamp:  b.CreatedAt,
		})
	}
	return records, nil
}

func (s *BidService) reject(reason string, err error) error {
	if reason != "" {
		metrics.BidsRejectedTotal.WithLabelValues(reason).Inc()
	}
	return err
}

func validateBidAgainst(i item.Item, bidderID uuid.UUID, amount decimal.Decimal, now time.Time) error {
	if i.Status != item.StatusActive {
		return auction_errors.ErrAuctionNotActive
	}
	if !i.EndTime.After(now) {
		return auction_errors.ErrAuctionExpired
	}
	if i.SellerID == bidderID {
		return auction_errors.ErrSelfBidForbidden
	}
	// Ties are rejected: the bid must be strictly higher.
	if amount.LessThanOrEqual(i.CurrentPrice) {
		return auction_errors.ErrBidTooLow
	}
	return nil
}

func rejectionReason(err error) string {
	switch err {
	case auction_errors.ErrInvalidAmount:
		return "invalid_amount"
	case auction_errors.ErrAuctionNotActive:
		return "not_active"
	case auction_errors.ErrAuctionExpired:
		return "expired"
	case auction_errors.ErrSelfBidForbidden:
		return "self_bid"
	case auction_errors.ErrBidTooLow:
		return "too_low"
	default:
		return ""
	}
}
