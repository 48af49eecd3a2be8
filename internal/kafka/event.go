package kafka

import (
	"time"

	"github.com/Domenick1991/shortlet/internal/domain"
)

const (
	EventBookingCreated         = "booking_created"
	EventBookingCompleted       = "booking_completed"
	EventBookingFailed          = "booking_failed"
	EventBookingExpired         = "booking_expired"
	EventBookingCancelled       = "booking_cancelled"
	EventBookingConflict        = "booking_conflict"
	EventAvailabilitySyncFailed = "availability_sync_failed"
)

type BookingEvent struct {
	Type          string    `json:"type"`
	Reference     string    `json:"reference"`
	PropertyID    string    `json:"property_id"`
	PropertyTitle string    `json:"property_title,omitempty"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Guests        int       `json:"guests"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency,omitempty"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		Reference:  b.Reference,
		PropertyID: b.PropertyID,
		Name:       b.Name,
		Email:      b.Email,
		Phone:      b.Phone,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		Guests:     b.Guests,
		Amount:     b.Amount,
		Status:     string(b.PaymentStatus),
		OccurredAt: time.Now().UTC(),
	}
}
