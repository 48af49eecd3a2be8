package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/Domenick1991/shortlet/internal/auth"
	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/Domenick1991/shortlet/internal/payment"
	"github.com/Domenick1991/shortlet/internal/service/booking"
	"github.com/Domenick1991/shortlet/internal/service/property"
	"github.com/Domenick1991/shortlet/internal/service/review"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, availability.ErrInvalidRange),
		errors.Is(err, booking.ErrValidation),
		errors.Is(err, property.ErrValidation),
		errors.Is(err, review.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPropertyNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrReviewNotFound),
		errors.Is(err, payment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrDatesUnavailable),
		errors.Is(err, booking.ErrBookingInactive),
		errors.Is(err, domain.ErrPropertyHasBookings):
		return http.StatusConflict
	case errors.Is(err, booking.ErrPaymentNotSuccessful),
		errors.Is(err, booking.ErrAmountMismatch):
		return http.StatusPaymentRequired
	case errors.Is(err, payment.ErrInvalidSignature),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError answers {"error": ...}. Internal errors are logged and their
// text is not exposed.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[http] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
