package handler

import (
	"net/http"

	"auctionhouse/internal/services"
	"auctionhouse/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BidHandler handles bid placement and history endpoints.
type BidHandler struct {
	bids *services.BidService
}

// NewBidHandler creates a bid handler.
func NewBidHandler(bids *services.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

// Place handles bid placement.
func (h *BidHandler) Place(c *gin.Context) {
	bidderID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req httpdto.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid item id", "INVALID_REQUEST"))
		return
	}

	record, err := h.bids.PlaceBid(c.Request.Context(), itemID, bidderID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(record))
}

// History returns the item's bids newest first. A missing item is a 404; an
// item with no bids returns an empty list.
func (h *BidHandler) History(c *gin.Context) {
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	records, err := h.bids.GetBidHistory(c.Request.Context(), itemID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(records))
}
