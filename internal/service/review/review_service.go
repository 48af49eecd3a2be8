package review

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/Domenick1991/shortlet/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

var ErrValidation = errors.New("invalid review")

var fieldValidator = validator.New()

type ReviewUseCase interface {
	Create(ctx context.Context, input CreateReviewInput) (*domain.Review, error)
	Get(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context, filter domain.ReviewFilter, admin bool) (*ReviewList, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
}

type PropertyReader interface {
	GetByID(ctx context.Context, id string) (*domain.Property, error)
}

type BookingFinder interface {
	FindCompleted(ctx context.Context, reference, email, propertyID string) (*domain.Booking, error)
}

type CreateReviewInput struct {
	PropertyID       string
	Name             string
	Email            string
	Rating           int
	Comment          string
	BookingReference string
}

type ReviewList struct {
	Reviews       []domain.Review `json:"reviews"`
	AverageRating *float64        `json:"averageRating"`
	Count         int             `json:"count"`
}

type ReviewService struct {
	reviews    repository.ReviewRepository
	properties PropertyReader
	bookings   BookingFinder
}

func NewReviewService(reviews repository.ReviewRepository, properties PropertyReader, bookings BookingFinder) *ReviewService {
	return &ReviewService{reviews: reviews, properties: properties, bookings: bookings}
}

// Create stores a review. A booking reference that matches a completed stay
// for the same email and property marks it verified and approves it.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}
	if _, err := s.properties.GetByID(ctx, input.PropertyID); err != nil {
		return nil, err
	}

	rv := &domain.Review{
		ID:               uuid.NewString(),
		PropertyID:       input.PropertyID,
		Name:             input.Name,
		Email:            input.Email,
		Rating:           input.Rating,
		Comment:          input.Comment,
		BookingReference: input.BookingReference,
		Status:           domain.ReviewStatusPending,
	}

	if input.BookingReference != "" {
		_, err := s.bookings.FindCompleted(ctx, input.BookingReference, input.Email, input.PropertyID)
		switch {
		case err == nil:
			rv.IsVerifiedStay = true
			rv.Status = domain.ReviewStatusApproved
		case !errors.Is(err, domain.ErrBookingNotFound):
			return nil, fmt.Errorf("check booking reference: %w", err)
		}
	}

	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// List returns newest first. Non-admin callers only ever see approved
// reviews. The average is computed when the filter names a property.
func (s *ReviewService) List(ctx context.Context, filter domain.ReviewFilter, admin bool) (*ReviewList, error) {
	if !admin {
		filter.Status = domain.ReviewStatusApproved
	} else if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	reviews, err := s.reviews.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	list := &ReviewList{Reviews: reviews, Count: len(reviews)}

	if filter.PropertyID != "" {
		avg, err := s.reviews.AverageRating(ctx, filter.PropertyID)
		if err != nil {
			return nil, err
		}
		if avg != nil {
			rounded := math.Round(*avg*10) / 10
			list.AverageRating = &rounded
		}
	}
	return list, nil
}

func (s *ReviewService) UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus) (*domain.Review, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.reviews.UpdateStatus(ctx, id, status)
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	return s.reviews.Delete(ctx, id)
}

func validate(input *CreateReviewInput) error {
	input.PropertyID = strings.TrimSpace(input.PropertyID)
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Comment = strings.TrimSpace(input.Comment)
	input.BookingReference = strings.TrimSpace(input.BookingReference)

	switch {
	case input.PropertyID == "":
		return fmt.Errorf("%w: property id is required", ErrValidation)
	case input.Name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case input.Comment == "":
		return fmt.Errorf("%w: comment is required", ErrValidation)
	case input.Rating < 1 || input.Rating > 5:
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if err := fieldValidator.Var(input.Email, "required,email"); err != nil {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return nil
}

var _ ReviewUseCase = (*ReviewService)(nil)
