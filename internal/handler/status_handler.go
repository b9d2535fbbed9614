package handler

import (
	"net/http"
	"strings"

	"auctionhouse/internal/services"
	"auctionhouse/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StatusHandler handles the polling-friendly auction status endpoints.
type StatusHandler struct {
	status *services.StatusService
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(status *services.StatusService) *StatusHandler {
	return &StatusHandler{status: status}
}

// Get returns the full live view for one item.
func (h *StatusHandler) Get(c *gin.Context) {
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	status, err := h.status.GetAuctionStatus(c.Request.Context(), itemID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(status))
}

// GetMultiple returns the reduced view for a batch of items, read from a
// comma-separated itemIds query parameter. Unknown or malformed ids are
// skipped rather than failing the batch.
func (h *StatusHandler) GetMultiple(c *gin.Context) {
	raw := c.Query("itemIds")
	if raw == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("itemIds is required", "INVALID_REQUEST"))
		return
	}

	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(h.status.GetMultipleStatus(c.Request.Context(), ids)))
}

// PriceHistory returns the chronological price curve for an item.
func (h *StatusHandler) PriceHistory(c *gin.Context) {
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	history, err := h.status.GetPriceHistory(c.Request.Context(), itemID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(history))
}
