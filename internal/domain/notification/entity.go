package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type enumerates the queued event kinds.
type Type string

const (
	TypeBidUpdate     Type = "bid_update"
	TypeOutbid        Type = "outbid"
	TypeAuctionEnding Type = "auction_ending"
	TypeAuctionEnded  Type = "auction_ended"
)

// Notification is a queued event awaiting delivery to a user whose live
// send failed or who was offline. Rows are deduplicated per (event_id,
// user_id) so a replayed broadcast never queues twice.
type Notification struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ItemID      uuid.NullUUID
	Type        Type
	EventID     string
	Payload     []byte
	Delivered   bool
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

// New builds an undelivered notification carrying the original frame bytes.
func New(userID uuid.UUID, itemID uuid.NullUUID, typ Type, eventID string, payload []byte, now time.Time) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		ItemID:    itemID,
		Type:      typ,
		EventID:   eventID,
		Payload:   payload,
		Delivered: false,
		CreatedAt: now,
	}
}
