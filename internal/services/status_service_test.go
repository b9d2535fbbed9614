package services

import (
	"context"
	"testing"
	"time"

	auction_errors "auctionhouse/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStatusService(store *fakeStore) (*StatusService, *BidService) {
	bids, _ := newTestBidService(store)
	return NewStatusService(store, bids), bids
}

func TestCalculateTimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tr := calculateTimeRemaining(now.Add(2*24*time.Hour+3*time.Hour+4*time.Minute+5*time.Second), now)
	assert.False(t, tr.Expired)
	assert.Equal(t, int64(2), tr.Days)
	assert.Equal(t, int64(3), tr.Hours)
	assert.Equal(t, int64(4), tr.Minutes)
	assert.Equal(t, int64(183845), tr.Seconds)
	assert.Equal(t, "2d 3h 4m", tr.Formatted)

	tr = calculateTimeRemaining(now.Add(45*time.Second), now)
	assert.Equal(t, "45s", tr.Formatted)
	assert.Equal(t, int64(45), tr.Seconds)

	tr = calculateTimeRemaining(now.Add(90*time.Minute), now)
	assert.Equal(t, "1h 30m", tr.Formatted)

	tr = calculateTimeRemaining(now.Add(-time.Second), now)
	assert.True(t, tr.Expired)
	assert.Equal(t, int64(0), tr.Seconds)
	assert.Equal(t, "Expired", tr.Formatted)

	tr = calculateTimeRemaining(now, now)
	assert.True(t, tr.Expired)
}

func TestGetAuctionStatus(t *testing.T) {
	store := newFakeStore()
	svc, bids := newTestStatusService(store)

	seller := store.addUser("seller")
	alice := store.addUser("alice")
	i := newActiveItem(t, store, seller, 100, time.Hour)

	base := time.Now()
	for n := 1; n <= 7; n++ {
		bids.clock = func() time.Time { return base.Add(time.Duration(n) * time.Second) }
		_, err := bids.PlaceBid(context.Background(), i.ID, alice, decimal.NewFromInt(int64(100+n*10)))
		require.NoError(t, err)
	}

	status, err := svc.GetAuctionStatus(context.Background(), i.ID)
	require.NoError(t, err)

	assert.Equal(t, i.ID, status.ItemID)
	assert.Equal(t, int64(7), status.BidCount)
	assert.Len(t, status.LatestBids, 5)
	assert.InDelta(t, 170, status.LatestBids[0].Amount, 0.001)
	assert.InDelta(t, 170, status.CurrentPrice, 0.001)
	assert.InDelta(t, 70, status.PriceIncrease, 0.001)
	assert.InDelta(t, 70, status.PriceIncreasePercentage, 0.001)
	assert.True(t, status.IsActive)
	assert.False(t, status.TimeRemaining.Expired)
}

func TestGetAuctionStatusUnknownItem(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestStatusService(store)

	_, err := svc.GetAuctionStatus(context.Background(), uuid.New())
	assert.ErrorIs(t, err, auction_errors.ErrNotFound)
}

func TestGetMultipleStatusSkipsUnknownIDs(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestStatusService(store)

	seller := store.addUser("seller")
	a := newActiveItem(t, store, seller, 100, time.Hour)
	b := newActiveItem(t, store, seller, 50, time.Hour)

	statuses := svc.GetMultipleStatus(context.Background(), []uuid.UUID{a.ID, uuid.New(), b.ID})
	assert.Len(t, statuses, 2)
}

func TestGetPriceHistory(t *testing.T) {
	store := newFakeStore()
	svc, bids := newTestStatusService(store)

	seller := store.addUser("seller")
	alice := store.addUser("alice")
	i := newActiveItem(t, store, seller, 100, time.Hour)

	base := time.Now()
	for n := 1; n <= 3; n++ {
		bids.clock = func() time.Time { return base.Add(time.Duration(n) * time.Second) }
		_, err := bids.PlaceBid(context.Background(), i.ID, alice, decimal.NewFromInt(int64(100+n*25)))
		require.NoError(t, err)
	}

	history, err := svc.GetPriceHistory(context.Background(), i.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, history.TotalBids)
	require.Len(t, history.History, 4)

	first := history.History[0]
	assert.Equal(t, "starting_price", first.Type)
	assert.InDelta(t, 100, first.Price, 0.001)
	assert.Nil(t, first.BidderName)

	// Bid points run oldest to newest after the synthetic start.
	assert.InDelta(t, 125, history.History[1].Price, 0.001)
	assert.InDelta(t, 175, history.History[3].Price, 0.001)
	require.NotNil(t, history.History[1].BidderName)
	assert.Equal(t, "alice", *history.History[1].BidderName)
	assert.InDelta(t, 175, history.CurrentPrice, 0.001)
}

func TestPriceIncreasePercentage(t *testing.T) {
	assert.InDelta(t, 50, priceIncreasePercentage(100, 150), 0.001)
	assert.InDelta(t, 0, priceIncreasePercentage(0, 150), 0.001)
	assert.InDelta(t, 33.33, priceIncreasePercentage(300, 400), 0.01)
}
