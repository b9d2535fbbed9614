package notifier

import (
	"time"

	"github.com/google/uuid"
)

// Event type names, matching the queued notification types.
const (
	EventBidUpdate     = "bid_update"
	EventOutbid        = "outbid"
	EventAuctionEnding = "auction_ending"
	EventAuctionEnded  = "auction_ended"
)

// Auction outcome values carried by auction_ended frames.
const (
	OutcomeCompleted     = "completed"
	OutcomeExpired       = "expired"
	OutcomeReserveNotMet = "reserve_not_met"
)

// BidUpdateFrame is broadcast to every subscriber of an item after a bid
// commits.
type BidUpdateFrame struct {
	Type       string    `json:"type"`
	EventID    string    `json:"eventId"`
	ItemID     uuid.UUID `json:"itemId"`
	BidAmount  float64   `json:"bidAmount"`
	BidderID   uuid.UUID `json:"bidderId"`
	BidderName string    `json:"bidderName"`
	Timestamp  time.Time `json:"timestamp"`
	ReserveMet *bool     `json:"reserveMet"`
}

// OutbidFrame goes only to the previous highest bidder.
type OutbidFrame struct {
	Type          string    `json:"type"`
	EventID       string    `json:"eventId"`
	ItemID        uuid.UUID `json:"itemId"`
	NewBidAmount  float64   `json:"newBidAmount"`
	YourBidAmount float64   `json:"yourBidAmount"`
}

// AuctionEndingFrame is the advisory countdown broadcast.
type AuctionEndingFrame struct {
	Type             string    `json:"type"`
	EventID          string    `json:"eventId"`
	ItemID           uuid.UUID `json:"itemId"`
	SecondsRemaining int64     `json:"secondsRemaining"`
}

// AuctionEndedFrame announces the terminal outcome of an auction. Winner
// fields are null unless the reserve was met.
type AuctionEndedFrame struct {
	Type       string     `json:"type"`
	EventID    string     `json:"eventId"`
	ItemID     uuid.UUID  `json:"itemId"`
	Status     string     `json:"status"`
	FinalPrice *float64   `json:"finalPrice"`
	WinnerID   *uuid.UUID `json:"winnerId"`
	WinnerName *string    `json:"winnerName"`
}

// ErrorFrame is sent for protocol and auth failures on the socket.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
