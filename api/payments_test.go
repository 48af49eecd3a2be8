package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/Domenick1991/shortlet/internal/payment"
	"github.com/Domenick1991/shortlet/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPaymentHandler_verify(t *testing.T) {
	testCases := []struct {
		name   string
		result *domain.Booking
		err    error
		want   int
	}{
		{name: "completed", result: testBooking(domain.PaymentStatusCompleted), want: http.StatusOK},
		{name: "not paid", err: booking.ErrPaymentNotSuccessful, want: http.StatusPaymentRequired},
		{name: "underpaid", err: booking.ErrAmountMismatch, want: http.StatusPaymentRequired},
		{name: "dates taken", err: booking.ErrDatesUnavailable, want: http.StatusConflict},
		{name: "unknown reference", err: domain.ErrBookingNotFound, want: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewPaymentHandler(mockService)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "reference", Value: "GHA_123ABCD"}}
			c.Request = httptest.NewRequest("GET", "/api/payments/verify/GHA_123ABCD", nil)

			if tc.result != nil {
				mockService.On("VerifyPayment", c.Request.Context(), "GHA_123ABCD").Return(tc.result, nil)
			} else {
				mockService.On("VerifyPayment", c.Request.Context(), "GHA_123ABCD").Return(nil, tc.err)
			}

			handler.verify(c)

			assert.Equal(t, tc.want, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestPaymentHandler_webhook(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPaymentHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	payload := []byte(`{"event":"charge.success","data":{"reference":"GHA_1"}}`)
	c.Request = httptest.NewRequest("POST", "/api/payments/webhook", bytes.NewReader(payload))
	c.Request.Header.Set("x-paystack-signature", "abc123")

	mockService.On("SignatureHeader").Return("x-paystack-signature")
	mockService.On("HandleWebhook", c.Request.Context(), payload, "abc123").Return(nil)

	handler.webhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestPaymentHandler_webhook_badSignature(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPaymentHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/payments/webhook", bytes.NewBufferString(`{}`))

	mockService.On("SignatureHeader").Return("x-paystack-signature")
	mockService.On("HandleWebhook", c.Request.Context(), []byte(`{}`), "").Return(payment.ErrInvalidSignature)

	handler.webhook(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
