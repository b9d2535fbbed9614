package handler

import (
	"net/http"
	"time"

	"auctionhouse/internal/domain/item"
	"auctionhouse/internal/services"
	"auctionhouse/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemHandler handles auction item HTTP endpoints.
type ItemHandler struct {
	items      *services.ItemService
	commission *services.CommissionService
}

// NewItemHandler creates an item handler.
func NewItemHandler(items *services.ItemService, commission *services.CommissionService) *ItemHandler {
	return &ItemHandler{items: items, commission: commission}
}

// Create handles auction item creation.
func (h *ItemHandler) Create(c *gin.Context) {
	sellerID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req httpdto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid end time", "INVALID_REQUEST"))
		return
	}

	created, err := h.items.CreateItem(c.Request.Context(), sellerID, req.Title, req.Description,
		decimal.NewFromFloat(req.StartingPrice), endTime)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(itemDTO(created, sellerID)))
}

// Get returns a single item. Reserve details are only visible to the seller.
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	i, err := h.items.GetItem(c.Request.Context(), itemID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	viewerID, _ := services.UserIDFromContext(c.Request.Context())
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(itemDTO(i, viewerID)))
}

// SetReserve attaches a hidden reserve price to the caller's item.
func (h *ItemHandler) SetReserve(c *gin.Context) {
	sellerID, ok := mustUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	var req httpdto.SetReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.items.SetReservePrice(c.Request.Context(), itemID, sellerID,
		decimal.NewFromFloat(req.ReservePrice)); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// SetCommissionRate overrides the platform commission rate for the caller's
// item.
func (h *ItemHandler) SetCommissionRate(c *gin.Context) {
	sellerID, ok := mustUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	var req httpdto.SetCommissionRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.commission.SetCommissionRate(c.Request.Context(), itemID, sellerID,
		decimal.NewFromFloat(req.Rate)); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func itemDTO(i item.Item, viewerID uuid.UUID) httpdto.ItemDTO {
	dto := httpdto.ItemDTO{
		ID:            i.ID.String(),
		SellerID:      i.SellerID.String(),
		Title:         i.Title,
		Description:   i.Description,
		StartingPrice: i.StartingPrice.InexactFloat64(),
		CurrentPrice:  i.CurrentPrice.InexactFloat64(),
		EndTime:       i.EndTime,
		Status:        string(i.Status),
		CreatedAt:     i.CreatedAt,
	}
	if i.HighestBidderID.Valid {
		id := i.HighestBidderID.UUID.String()
		dto.HighestBidderID = &id
	}
	// The reserve stays hidden from bidders; only its outcome flag is public.
	if i.HasReserve() {
		dto.HasReserve = true
		dto.ReserveMet = &i.ReserveMet
		if viewerID == i.SellerID {
			reserve := i.ReservePrice.Decimal.InexactFloat64()
			dto.ReservePrice = &reserve
		}
	}
	if i.CommissionRate.Valid && viewerID == i.SellerID {
		rate := i.CommissionRate.Decimal.InexactFloat64()
		dto.CommissionRate = &rate
	}
	return dto
}
