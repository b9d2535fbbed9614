package item

import (
	"time"

	auction_errors "auctionhouse/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an auction item.
// Transitions are one-way: active -> completed or active -> expired.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Item represents the items table.
type Item struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SellerID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	Title           string              `gorm:"type:varchar(255);not null"`
	Description     string              `gorm:"type:text"`
	StartingPrice   decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	CurrentPrice    decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	ReservePrice    decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	CommissionRate  decimal.NullDecimal `gorm:"type:numeric(5,4)"`
	EndTime         time.Time           `gorm:"not null;index"`
	Status          Status              `gorm:"type:varchar(20);not null;default:'active';index"`
	HighestBidderID uuid.NullUUID       `gorm:"type:uuid"`
	ReserveMet      bool                `gorm:"not null;default:false"`
	CreatedAt       time.Time           `gorm:"not null;default:now()"`
	UpdatedAt       time.Time           `gorm:"not null;default:now()"`
}

func (Item) TableName() string {
	return "items"
}

// New builds an active item priced at its starting price. It rejects
// non-positive starting prices and end times that are not in the future.
func New(sellerID uuid.UUID, title, description string, startingPrice decimal.Decimal, endTime time.Time, now time.Time) (*Item, error) {
	if startingPrice.LessThanOrEqual(decimal.Zero) {
		return nil, auction_errors.ErrInvalidStartingPrice
	}
	if !endTime.After(now) {
		return nil, auction_errors.ErrEndTimeInPast
	}
	if title == "" {
		return nil, auction_errors.ErrInvalidInput
	}
	return &Item{
		ID:            uuid.New(),
		SellerID:      sellerID,
		Title:         title,
		Description:   description,
		StartingPrice: startingPrice,
		CurrentPrice:  startingPrice,
		EndTime:       endTime,
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SetReservePrice attaches a hidden minimum sale price. Only positive values
// are accepted.
func (i *Item) SetReservePrice(reserve decimal.Decimal) error {
	if reserve.LessThanOrEqual(decimal.Zero) {
		return auction_errors.ErrInvalidReservePrice
	}
	i.ReservePrice = decimal.NewNullDecimal(reserve)
	return nil
}

// SetCommissionRate overrides the platform rate for this item. The rate is
// validated here, at the point it is set, not at calculation time.
func (i *Item) SetCommissionRate(rate decimal.Decimal) error {
	if rate.LessThan(decimal.Zero) || rate.GreaterThan(decimal.NewFromInt(1)) {
		return auction_errors.ErrInvalidCommissionRate
	}
	i.CommissionRate = decimal.NewNullDecimal(rate)
	return nil
}

// HasReserve reports whether a reserve price is set.
func (i *Item) HasReserve() bool {
	return i.ReservePrice.Valid
}

// IsActive reports whether the auction is accepting bids at the given time.
func (i *Item) IsActive(now time.Time) bool {
	return i.Status == StatusActive && i.EndTime.After(now)
}
