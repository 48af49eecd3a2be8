package domain

import "time"

// DateOverride is an explicit per-day availability flag. Date is always a
// UTC midnight day once it has passed through the ledger.
type DateOverride struct {
	Date        time.Time
	IsAvailable bool
}

type Specifications struct {
	Bedrooms  int
	Bathrooms int
	Size      string
	Type      string
}

type Property struct {
	ID             string
	Slug           string
	Title          string
	Description    string
	Thumbnail      string
	PricePerNight  int64
	Currency       string
	Location       string
	Images         []string
	Features       []string
	AirbnbLink     string
	Specifications Specifications
	IsBookable     bool
	Availability   []DateOverride
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
