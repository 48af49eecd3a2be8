package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Booking is a guest stay over [CheckIn, CheckOut). CheckOut is not occupied.
type Booking struct {
	ID                 string
	PropertyID         string
	Reference          string
	Name               string
	Email              string
	Phone              string
	CheckIn            time.Time
	CheckOut           time.Time
	Guests             int
	Amount             int64
	PaymentStatus      PaymentStatus
	IsActive           bool
	AvailabilitySynced bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ConsumesAvailability reports whether the booking blocks calendar days.
// Only active bookings with a completed payment do.
func (b Booking) ConsumesAvailability() bool {
	return b.IsActive && b.PaymentStatus == PaymentStatusCompleted
}

type BookingFilter struct {
	PropertyID    string
	PaymentStatus PaymentStatus
	ActiveOnly    bool
	Limit         int
}
