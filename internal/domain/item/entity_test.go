package item

import (
	"testing"
	"time"

	auction_errors "auctionhouse/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	now := time.Now()
	seller := uuid.New()

	i, err := New(seller, "camera", "desc", decimal.NewFromInt(100), now.Add(time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, i.Status)
	assert.True(t, i.CurrentPrice.Equal(i.StartingPrice))
	assert.False(t, i.HasReserve())
	assert.False(t, i.HighestBidderID.Valid)

	_, err = New(seller, "camera", "", decimal.Zero, now.Add(time.Hour), now)
	assert.ErrorIs(t, err, auction_errors.ErrInvalidStartingPrice)

	_, err = New(seller, "camera", "", decimal.NewFromInt(100), now, now)
	assert.ErrorIs(t, err, auction_errors.ErrEndTimeInPast)

	_, err = New(seller, "", "", decimal.NewFromInt(100), now.Add(time.Hour), now)
	assert.ErrorIs(t, err, auction_errors.ErrInvalidInput)
}

func TestIsActive(t *testing.T) {
	now := time.Now()
	i, err := New(uuid.New(), "camera", "", decimal.NewFromInt(100), now.Add(time.Hour), now)
	require.NoError(t, err)

	assert.True(t, i.IsActive(now))
	assert.False(t, i.IsActive(now.Add(2*time.Hour)))

	i.Status = StatusCompleted
	assert.False(t, i.IsActive(now))
}

func TestSetReserveAndCommission(t *testing.T) {
	now := time.Now()
	i, err := New(uuid.New(), "camera", "", decimal.NewFromInt(100), now.Add(time.Hour), now)
	require.NoError(t, err)

	assert.ErrorIs(t, i.SetReservePrice(decimal.Zero), auction_errors.ErrInvalidReservePrice)
	require.NoError(t, i.SetReservePrice(decimal.NewFromInt(200)))
	assert.True(t, i.HasReserve())

	assert.ErrorIs(t, i.SetCommissionRate(decimal.NewFromFloat(1.01)), auction_errors.ErrInvalidCommissionRate)
	assert.ErrorIs(t, i.SetCommissionRate(decimal.NewFromFloat(-0.01)), auction_errors.ErrInvalidCommissionRate)
	require.NoError(t, i.SetCommissionRate(decimal.NewFromFloat(0.1)))
	require.True(t, i.CommissionRate.Valid)
}
