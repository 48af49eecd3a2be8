package api

import (
	"time"

	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/Domenick1991/shortlet/internal/domain"
)

type specificationsResponse struct {
	Bedrooms  int    `json:"bedrooms"`
	Bathrooms int    `json:"bathrooms"`
	Size      string `json:"size"`
	Type      string `json:"type"`
}

type dateOverrideResponse struct {
	Date        string `json:"date"`
	IsAvailable bool   `json:"isAvailable"`
}

type propertyResponse struct {
	ID             string                 `json:"id"`
	Slug           string                 `json:"slug"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Thumbnail      string                 `json:"thumbnail"`
	PricePerNight  int64                  `json:"pricePerNight"`
	Currency       string                 `json:"currency"`
	Location       string                 `json:"location"`
	Images         []string               `json:"images"`
	Features       []string               `json:"features"`
	AirbnbLink     string                 `json:"airbnbLink,omitempty"`
	Specifications specificationsResponse `json:"specifications"`
	IsBookable     bool                   `json:"isBookable"`
	Availability   []dateOverrideResponse `json:"availability,omitempty"`
	CreatedAt      string                 `json:"createdAt"`
	UpdatedAt      string                 `json:"updatedAt"`
}

func newPropertyResponse(p *domain.Property) propertyResponse {
	resp := propertyResponse{
		ID:            p.ID,
		Slug:          p.Slug,
		Title:         p.Title,
		Description:   p.Description,
		Thumbnail:     p.Thumbnail,
		PricePerNight: p.PricePerNight,
		Currency:      p.Currency,
		Location:      p.Location,
		Images:        p.Images,
		Features:      p.Features,
		AirbnbLink:    p.AirbnbLink,
		Specifications: specificationsResponse{
			Bedrooms:  p.Specifications.Bedrooms,
			Bathrooms: p.Specifications.Bathrooms,
			Size:      p.Specifications.Size,
			Type:      p.Specifications.Type,
		},
		IsBookable: p.IsBookable,
		CreatedAt:  formatTime(p.CreatedAt),
		UpdatedAt:  formatTime(p.UpdatedAt),
	}
	for _, o := range p.Availability {
		resp.Availability = append(resp.Availability, dateOverrideResponse{Date: availability.DayKey(o.Date), IsAvailable: o.IsAvailable})
	}
	return resp
}

type bookingResponse struct {
	ID                 string `json:"id"`
	PropertyID         string `json:"propertyId"`
	Reference          string `json:"reference"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	CheckIn            string `json:"checkIn"`
	CheckOut           string `json:"checkOut"`
	Nights             int    `json:"nights"`
	Guests             int    `json:"guests"`
	Amount             int64  `json:"amount"`
	PaymentStatus      string `json:"paymentStatus"`
	IsActive           bool   `json:"isActive"`
	AvailabilitySynced bool   `json:"availabilitySynced"`
	CreatedAt          string `json:"createdAt"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:                 b.ID,
		PropertyID:         b.PropertyID,
		Reference:          b.Reference,
		Name:               b.Name,
		Email:              b.Email,
		Phone:              b.Phone,
		CheckIn:            availability.DayKey(b.CheckIn),
		CheckOut:           availability.DayKey(b.CheckOut),
		Nights:             availability.Nights(b.CheckIn, b.CheckOut),
		Guests:             b.Guests,
		Amount:             b.Amount,
		PaymentStatus:      string(b.PaymentStatus),
		IsActive:           b.IsActive,
		AvailabilitySynced: b.AvailabilitySynced,
		CreatedAt:          formatTime(b.CreatedAt),
	}
}

type reviewResponse struct {
	ID               string `json:"id"`
	PropertyID       string `json:"propertyId"`
	Name             string `json:"name"`
	Rating           int    `json:"rating"`
	Comment          string `json:"comment"`
	Status           string `json:"status"`
	IsVerifiedStay   bool   `json:"isVerifiedStay"`
	BookingReference string `json:"bookingReference,omitempty"`
	Email            string `json:"email,omitempty"`
	CreatedAt        string `json:"createdAt"`
}

// newReviewResponse hides the reviewer's email and booking reference from
// public callers.
func newReviewResponse(rv *domain.Review, admin bool) reviewResponse {
	resp := reviewResponse{
		ID:             rv.ID,
		PropertyID:     rv.PropertyID,
		Name:           rv.Name,
		Rating:         rv.Rating,
		Comment:        rv.Comment,
		Status:         string(rv.Status),
		IsVerifiedStay: rv.IsVerifiedStay,
		CreatedAt:      formatTime(rv.CreatedAt),
	}
	if admin {
		resp.Email = rv.Email
		resp.BookingReference = rv.BookingReference
	}
	return resp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
