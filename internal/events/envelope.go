package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire format between the request-handling process and the
// connection-owning hub. Frame holds the exact JSON delivered to sockets;
// EventID lets clients dedup replays.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	ItemID     uuid.UUID       `json:"item_id"`
	UserID     uuid.NullUUID   `json:"user_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Frame      json.RawMessage `json:"frame"`
}

// Redis channel prefixes. Item channels carry broadcasts for every
// subscriber of the item; user channels carry user-directed events.
const (
	ChannelPrefixItem = "auction:item:"
	ChannelPrefixUser = "auction:user:"
	ChannelPattern    = "auction:*"
)

// Channel returns the redis channel the envelope is published on. A set
// UserID routes to the user channel, everything else fans out per item.
func (e Envelope) Channel() string {
	if e.UserID.Valid {
		return ChannelPrefixUser + e.UserID.UUID.String()
	}
	return ChannelPrefixItem + e.ItemID.String()
}
