package services

import (
	"errors"
	"net/http"

	auction_errors "auctionhouse/pkg/errors"
)

// HTTPStatus maps service errors to HTTP status codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, auction_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auction_errors.ErrForbidden),
		errors.Is(err, auction_errors.ErrSelfBidForbidden):
		return http.StatusForbidden
	case errors.Is(err, auction_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auction_errors.ErrConflict),
		errors.Is(err, auction_errors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, auction_errors.ErrInvalidInput),
		errors.Is(err, auction_errors.ErrInvalidAmount),
		errors.Is(err, auction_errors.ErrAuctionNotActive),
		errors.Is(err, auction_errors.ErrAuctionExpired),
		errors.Is(err, auction_errors.ErrBidTooLow),
		errors.Is(err, auction_errors.ErrInvalidCommissionRate),
		errors.Is(err, auction_errors.ErrInvalidReservePrice),
		errors.Is(err, auction_errors.ErrInvalidStartingPrice),
		errors.Is(err, auction_errors.ErrEndTimeInPast):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
