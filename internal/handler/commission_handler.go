package handler

import (
	"net/http"
	"time"

	"auctionhouse/internal/services"
	"auctionhouse/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// CommissionHandler exposes platform earnings reporting.
type CommissionHandler struct {
	commission *services.CommissionService
}

// NewCommissionHandler creates a commission handler.
func NewCommissionHandler(commission *services.CommissionService) *CommissionHandler {
	return &CommissionHandler{commission: commission}
}

// Earnings reports total platform commission. Optional from/to query
// parameters (RFC 3339) narrow the window.
func (h *CommissionHandler) Earnings(c *gin.Context) {
	fromRaw := c.Query("from")
	toRaw := c.Query("to")

	if fromRaw == "" && toRaw == "" {
		total, err := h.commission.TotalPlatformEarnings(c.Request.Context())
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.EarningsDTO{Total: total}))
		return
	}

	from, err := time.Parse(time.RFC3339, fromRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid from time", "INVALID_REQUEST"))
		return
	}
	to := time.Now()
	if toRaw != "" {
		to, err = time.Parse(time.RFC3339, toRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid to time", "INVALID_REQUEST"))
			return
		}
	}

	total, err := h.commission.EarningsBetween(c.Request.Context(), from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	fromStr := from.Format(time.RFC3339)
	toStr := to.Format(time.RFC3339)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.EarningsDTO{
		Total: total,
		From:  &fromStr,
		To:    &toStr,
	}))
}
