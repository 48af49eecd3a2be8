package domain

import "errors"

var (
	ErrPropertyNotFound    = errors.New("property not found")
	ErrPropertyHasBookings = errors.New("property has bookings")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrReviewNotFound      = errors.New("review not found")
)
