package bid

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid represents the bids table. Bids are append-only: rows are never
// updated or deleted once written.
type Bid struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ItemID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BidderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"not null;default:now();index"`
}

func (Bid) TableName() string {
	return "bids"
}

// New builds a bid record. Amount validation against the item's current
// price happens in the bid engine under the item row lock, not here.
func New(itemID, bidderID uuid.UUID, amount decimal.Decimal, now time.Time) *Bid {
	return &Bid{
		ID:        uuid.New(),
		ItemID:    itemID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: now,
	}
}
