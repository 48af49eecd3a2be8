package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/gin-gonic/gin"
)

const defaultCalendarDays = 90

type AvailabilityReader interface {
	UnavailableDates(ctx context.Context, propertyID string) (*availability.UnavailableSet, error)
	IsRangeAvailable(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error)
	Calendar(ctx context.Context, propertyID string, from, to time.Time) ([]availability.DayState, error)
}

type AvailabilityHandler struct {
	ledger AvailabilityReader
	now    func() time.Time
}

func NewAvailabilityHandler(ledger AvailabilityReader) *AvailabilityHandler {
	return &AvailabilityHandler{ledger: ledger, now: time.Now}
}

// Register mounts under the properties group so routes share the :id
// segment with the property handler.
func (h *AvailabilityHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/availability", h.unavailable)
	router.GET("/:id/availability/check", h.check)
	router.GET("/:id/calendar", h.calendar)
}

func (h *AvailabilityHandler) unavailable(c *gin.Context) {
	set, err := h.ledger.UnavailableDates(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *AvailabilityHandler) check(c *gin.Context) {
	checkIn, checkOut, err := availability.ParseRange(c.Query("checkIn"), c.Query("checkOut"))
	if err != nil {
		writeError(c, err)
		return
	}

	ok, err := h.ledger.IsRangeAvailable(c.Request.Context(), c.Param("id"), checkIn, checkOut)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"propertyId": c.Param("id"),
		"checkIn":    availability.DayKey(checkIn),
		"checkOut":   availability.DayKey(checkOut),
		"nights":     availability.Nights(checkIn, checkOut),
		"available":  ok,
	})
}

func (h *AvailabilityHandler) calendar(c *gin.Context) {
	from := availability.Day(h.now())
	if raw := c.Query("from"); raw != "" {
		parsed, err := availability.ParseDay(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		from = parsed
	}
	to := from.AddDate(0, 0, defaultCalendarDays)
	if raw := c.Query("to"); raw != "" {
		parsed, err := availability.ParseDay(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		to = parsed
	}

	days, err := h.ledger.Calendar(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"propertyId": c.Param("id"), "days": days})
}
