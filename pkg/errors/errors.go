package auction_errors

import "errors"

// Common errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyExists = errors.New("already exists")
)

// Bid placement errors. Each one names the invariant the caller violated so
// handlers can surface the reason verbatim.
var (
	ErrInvalidAmount    = errors.New("bid amount must be positive")
	ErrAuctionNotActive = errors.New("auction is not active")
	ErrAuctionExpired   = errors.New("auction has expired")
	ErrSelfBidForbidden = errors.New("you cannot bid on your own item")
	ErrBidTooLow        = errors.New("bid amount must be higher than current price")
)

// Item errors
var (
	ErrInvalidCommissionRate = errors.New("commission rate must be between 0 and 1")
	ErrInvalidReservePrice   = errors.New("reserve price must be positive")
	ErrInvalidStartingPrice  = errors.New("starting price must be positive")
	ErrEndTimeInPast         = errors.New("end time must be in the future")
)
