package httpdto

import "time"

type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
}

type LoginRequest struct {
	Identity string `json:"identity" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateItemRequest struct {
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	StartingPrice float64 `json:"startingPrice" binding:"required"`
	EndTime       string  `json:"endTime" binding:"required"`
}

type SetReserveRequest struct {
	ReservePrice float64 `json:"reservePrice" binding:"required"`
}

type SetCommissionRateRequest struct {
	Rate float64 `json:"rate"`
}

type PlaceBidRequest struct {
	ItemID string  `json:"itemId" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

// ItemDTO is the public view of an item. Reserve and commission details are
// populated only when the viewer is the seller.
type ItemDTO struct {
	ID              string    `json:"id"`
	SellerID        string    `json:"sellerId"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	StartingPrice   float64   `json:"startingPrice"`
	CurrentPrice    float64   `json:"currentPrice"`
	EndTime         time.Time `json:"endTime"`
	Status          string    `json:"status"`
	HighestBidderID *string   `json:"highestBidderId,omitempty"`
	HasReserve      bool      `json:"hasReserve"`
	ReserveMet      *bool     `json:"reserveMet,omitempty"`
	ReservePrice    *float64  `json:"reservePrice,omitempty"`
	CommissionRate  *float64  `json:"commissionRate,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// EarningsDTO reports platform commission earnings.
type EarningsDTO struct {
	Total float64 `json:"total"`
	From  *string `json:"from,omitempty"`
	To    *string `json:"to,omitempty"`
}
