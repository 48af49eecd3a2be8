package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/Domenick1991/shortlet/internal/service/booking"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	service booking.BookingUseCase
}

func NewPaymentHandler(service booking.BookingUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.GET("/verify/:reference", h.verify)
	router.POST("/webhook", h.webhook)
}

func (h *PaymentHandler) verify(c *gin.Context) {
	b, err := h.service.VerifyPayment(c.Request.Context(), c.Param("reference"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

// webhook needs the raw body for signature checks, so it never binds.
func (h *PaymentHandler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	signature := c.GetHeader(h.service.SignatureHeader())
	if err := h.service.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
