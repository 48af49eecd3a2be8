package property

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/Domenick1991/shortlet/internal/repository"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const defaultCurrency = "NGN"

var ErrValidation = errors.New("invalid property")

type PropertyUseCase interface {
	List(ctx context.Context) ([]domain.Property, error)
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Create(ctx context.Context, input PropertyInput) (*domain.Property, error)
	Update(ctx context.Context, id string, input PropertyInput) (*domain.Property, error)
	Delete(ctx context.Context, id string) error
	UpdateAvailability(ctx context.Context, id string, input AvailabilityUpdate) (*AvailabilityResult, error)
}

type PropertyCache interface {
	GetProperties(ctx context.Context) ([]domain.Property, error)
	SetProperties(ctx context.Context, properties []domain.Property) error
	InvalidateProperties(ctx context.Context) error
}

type Ledger interface {
	Exclusive(ctx context.Context, propertyID string, fn func(ctx context.Context) error) error
	ApplyAvailability(ctx context.Context, propertyID string, bookable *bool, entries []availability.OverrideInput) (*availability.OverrideResult, error)
	Invalidate(ctx context.Context, propertyID string)
}

type PropertyInput struct {
	Title         string
	Description   string
	Thumbnail     string
	PricePerNight int64
	Currency      string
	Location      string
	Images        []string
	Features      []string
	AirbnbLink    string
	Bedrooms      int
	Bathrooms     int
	Size          string
	Type          string
}

// AvailabilityUpdate leaves the bookable switch untouched when IsBookable is
// nil.
type AvailabilityUpdate struct {
	IsBookable *bool
	Dates      []availability.OverrideInput
}

type AvailabilityResult struct {
	PropertyID string   `json:"propertyId"`
	IsBookable *bool    `json:"isBookable,omitempty"`
	Applied    []string `json:"applied"`
	Skipped    []string `json:"skipped"`
}

type PropertyService struct {
	repo   repository.PropertyRepository
	cache  PropertyCache
	ledger Ledger
}

func NewPropertyService(repo repository.PropertyRepository, cache PropertyCache, ledger Ledger) *PropertyService {
	return &PropertyService{repo: repo, cache: cache, ledger: ledger}
}

func (s *PropertyService) List(ctx context.Context) ([]domain.Property, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetProperties(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	properties, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetProperties(ctx, properties)
	}
	return properties, nil
}

func (s *PropertyService) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PropertyService) Create(ctx context.Context, input PropertyInput) (*domain.Property, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	p := &domain.Property{ID: id, IsBookable: true}
	apply(p, input)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateList(ctx)
	return p, nil
}

func (s *PropertyService) Update(ctx context.Context, id string, input PropertyInput) (*domain.Property, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	p := &domain.Property{ID: id}
	apply(p, input)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateList(ctx)
	return s.repo.GetByID(ctx, id)
}

func (s *PropertyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.ledger.Invalidate(ctx, id)
	s.invalidateList(ctx)
	return nil
}

// UpdateAvailability applies the bookable switch and the date overrides
// under the property lock as a single write.
func (s *PropertyService) UpdateAvailability(ctx context.Context, id string, input AvailabilityUpdate) (*AvailabilityResult, error) {
	if input.IsBookable == nil && len(input.Dates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	result := &AvailabilityResult{PropertyID: id, IsBookable: input.IsBookable, Applied: []string{}, Skipped: []string{}}
	err := s.ledger.Exclusive(ctx, id, func(ctx context.Context) error {
		overrides, err := s.ledger.ApplyAvailability(ctx, id, input.IsBookable, input.Dates)
		if err != nil {
			return err
		}
		result.Applied = overrides.Applied
		result.Skipped = overrides.Skipped
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateList(ctx)
	return result, nil
}

func (s *PropertyService) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProperties(ctx); err != nil {
		log.Printf("[property] invalidate list cache: %v", err)
	}
}

func validate(input *PropertyInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))

	var missing []string
	if input.Title == "" {
		missing = append(missing, "title")
	}
	if input.Description == "" {
		missing = append(missing, "description")
	}
	if input.Location == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	if input.PricePerNight <= 0 {
		return fmt.Errorf("%w: price per night must be positive", ErrValidation)
	}
	if input.Bedrooms < 0 || input.Bathrooms < 0 {
		return fmt.Errorf("%w: room counts cannot be negative", ErrValidation)
	}
	if input.Currency == "" {
		input.Currency = defaultCurrency
	}
	return nil
}

func apply(p *domain.Property, input PropertyInput) {
	p.Slug = makeSlug(input.Title, p.ID)
	p.Title = input.Title
	p.Description = input.Description
	p.Thumbnail = input.Thumbnail
	p.PricePerNight = input.PricePerNight
	p.Currency = input.Currency
	p.Location = input.Location
	p.Images = nonNil(input.Images)
	p.Features = nonNil(input.Features)
	p.AirbnbLink = input.AirbnbLink
	p.Specifications = domain.Specifications{
		Bedrooms:  input.Bedrooms,
		Bathrooms: input.Bathrooms,
		Size:      input.Size,
		Type:      input.Type,
	}
	if p.Thumbnail == "" && len(p.Images) > 0 {
		p.Thumbnail = p.Images[0]
	}
}

// makeSlug suffixes the title slug with part of the id to keep it unique.
func makeSlug(title, id string) string {
	suffix := strings.ReplaceAll(id, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return slug.Make(title) + "-" + suffix
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ PropertyUseCase = (*PropertyService)(nil)
