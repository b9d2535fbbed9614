package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction records a completed sale. At most one exists per item,
// enforced by a unique index on item_id.
type Transaction struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ItemID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	SellerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	BuyerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	FinalPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CommissionAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SellerPayout     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CompletedAt      time.Time       `gorm:"not null;default:now()"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// New builds a sale record. The caller supplies commission and payout from
// the commission calculator so that commission + payout == finalPrice.
func New(itemID, sellerID, buyerID uuid.UUID, finalPrice, commission, payout decimal.Decimal, completedAt time.Time) *Transaction {
	return &Transaction{
		ID:               uuid.New(),
		ItemID:           itemID,
		SellerID:         sellerID,
		BuyerID:          buyerID,
		FinalPrice:       finalPrice,
		CommissionAmount: commission,
		SellerPayout:     payout,
		CompletedAt:      completedAt,
	}
}
