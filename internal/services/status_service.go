package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auctionhouse/internal/domain/item"
	"auctionhouse/internal/repository"

	"github.com/google/uuid"
)

// StatusService assembles the polling-friendly live views of an auction.
type StatusService struct {
	store repository.Store
	bids  *BidService
	clock func() time.Time
}

func NewStatusService(store repository.Store, bids *BidService) *StatusService {
	return &StatusService{
		store: store,
		bids:  bids,
		clock: time.Now,
	}
}

// TimeRemaining decomposes the interval until an auction closes.
type TimeRemaining struct {
	Expired   bool   `json:"expired"`
	Seconds   int64  `json:"seconds"`
	Days      int64  `json:"days,omitempty"`
	Hours     int64  `json:"hours,omitempty"`
	Minutes   int64  `json:"minutes,omitempty"`
	Formatted string `json:"formatted"`
}

// AuctionStatus is the full live view for one item.
type AuctionStatus struct {
	ItemID                  uuid.UUID     `json:"itemId"`
	Title                   string        `json:"title"`
	Status                  item.Status   `json:"status"`
	CurrentPrice            float64       `json:"currentPrice"`
	StartingPrice           float64       `json:"startingPrice"`
	HighestBidderID         *uuid.UUID    `json:"highestBidderId"`
	BidCount                int64         `json:"bidCount"`
	EndTime                 time.Time     `json:"endTime"`
	TimeRemaining           TimeRemaining `json:"timeRemaining"`
	IsActive                bool          `json:"isActive"`
	LatestBids              []BidRecord   `json:"latestBids"`
	PriceIncrease           float64       `json:"priceIncrease"`
	PriceIncreasePercentage float64       `json:"priceIncreasePercentage"`
	Timestamp               time.Time     `json:"timestamp"`
}

// BatchStatus is the reduced view used by the multi-item endpoint.
type BatchStatus struct {
	ItemID        uuid.UUID     `json:"itemId"`
	CurrentPrice  float64       `json:"currentPrice"`
	BidCount      int64         `json:"bidCount"`
	Status        item.Status   `json:"status"`
	TimeRemaining TimeRemaining `json:"timeRemaining"`
	IsActive      bool          `json:"isActive"`
}

// PricePoint is one step in an item's price history.
type PricePoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Price      float64   `json:"price"`
	Type       string    `json:"type"`
	BidderName *string   `json:"bidderName"`
}

// PriceHistory is the chronological price curve for an item.
type PriceHistory struct {
	ItemID       uuid.UUID    `json:"itemId"`
	Title        string       `json:"title"`
	CurrentPrice float64      `json:"currentPrice"`
	History      []PricePoint `json:"priceHistory"`
	TotalBids    int          `json:"totalBids"`
}

func (s *StatusService) GetAuctionStatus(ctx context.Context, itemID uuid.UUID) (AuctionStatus, error) {
	i, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return AuctionStatus{}, err
	}
	history, err := s.bids.GetBidHistory(ctx, itemID)
	if err != nil {
		return AuctionStatus{}, err
	}

	latest := history
	if len(latest) > 5 {
		latest = latest[:5]
	}

	now := s.clock()
	current := i.CurrentPrice.InexactFloat64()
	starting := i.StartingPrice.InexactFloat64()

	var highestBidder *uuid.UUID
	if i.HighestBidderID.Valid {
		id := i.HighestBidderID.UUID
		highestBidder = &id
	}

	return AuctionStatus{
		ItemID:                  i.ID,
		Title:                   i.Title,
		Status:                  i.Status,
		CurrentPrice:            current,
		StartingPrice:           starting,
		HighestBidderID:         highestBidder,
		BidCount:                int64(len(history)),
		EndTime:                 i.EndTime,
		TimeRemaining:           calculateTimeRemaining(i.EndTime, now),
		IsActive:                i.IsActive(now),
		LatestBids:              latest,
		PriceIncrease:           current - starting,
		PriceIncreasePercentage: priceIncreasePercentage(starting, current),
		Timestamp:               now,
	}, nil
}

// GetMultipleStatus returns the reduced status for each resolvable id,
// silently skipping ids that do not exist.
func (s *StatusService) GetMultipleStatus(ctx context.Context, itemIDs []uuid.UUID) []BatchStatus {
	now := s.clock()
	statuses := make([]BatchStatus, 0, len(itemIDs))
	for _, id := range itemIDs {
		i, err := s.store.Items().GetByID(ctx, id)
		if err != nil {
			continue
		}
		count, err := s.store.Bids().CountByItemID(ctx, id)
		if err != nil {
			continue
		}
		statuses = append(statuses, BatchStatus{
			ItemID:        i.ID,
			CurrentPrice:  i.CurrentPrice.InexactFloat64(),
			BidCount:      count,
			Status:        i.Status,
			TimeRemaining: calculateTimeRemaining(i.EndTime, now),
			IsActive:      i.IsActive(now),
		})
	}
	return statuses
}

// GetPriceHistory returns a synthetic starting-price point followed by one
// point per bid, oldest first.
func (s *StatusService) GetPriceHistory(ctx context.Context, itemID uuid.UUID) (PriceHistory, error) {
	i, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return PriceHistory{}, err
	}
	history, err := s.bids.GetBidHistory(ctx, itemID)
	if err != nil {
		return PriceHistory{}, err
	}

	points := make([]PricePoint, 0, len(history)+1)
	points = append(points, PricePoint{
		Timestamp: i.CreatedAt,
		Price:     i.StartingPrice.InexactFloat64(),
		Type:      "starting_price",
	})
	// Bid history arrives newest first; the curve reads oldest first.
	for idx := len(history) - 1; idx >= 0; idx-- {
		b := history[idx]
		name := b.BidderName
		points = append(points, PricePoint{
			Timestamp:  b.Timestamp,
			Price:      b.Amount,
			Type:       "bid",
			BidderName: &name,
		})
	}

	return PriceHistory{
		ItemID:       i.ID,
		Title:        i.Title,
		CurrentPrice: i.CurrentPrice.InexactFloat64(),
		History:      points,
		TotalBids:    len(history),
	}, nil
}

func calculateTimeRemaining(endTime, now time.Time) TimeRemaining {
	diff := int64(endTime.Sub(now).Seconds())
	if diff <= 0 {
		return TimeRemaining{
			Expired:   true,
			Seconds:   0,
			Formatted: "Expired",
		}
	}

	days := diff / 86400
	hours := (diff % 86400) / 3600
	minutes := (diff % 3600) / 60
	seconds := diff % 60

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dd ", days)
	}
	if hours > 0 {
		fmt.Fprintf(&b, "%dh ", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dm ", minutes)
	}
	if days == 0 && hours == 0 {
		fmt.Fprintf(&b, "%ds", seconds)
	}

	return TimeRemaining{
		Seconds:   diff,
		Days:      days,
		Hours:     hours,
		Minutes:   minutes,
		Formatted: strings.TrimSpace(b.String()),
	}
}

func priceIncreasePercentage(starting, current float64) float64 {
	if starting == 0 {
		return 0
	}
	pct := (current - starting) / starting * 100
	// Two decimal places, matching the money rounding elsewhere.
	return float64(int64(pct*100+0.5)) / 100
}
