package property

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

func (m *MockPropertyRepository) List(ctx context.Context) ([]domain.Property, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Property), args.Error(1)
}

func (m *MockPropertyRepository) GetAvailability(ctx context.Context, id string) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

func (m *MockPropertyRepository) UpsertOverrides(ctx context.Context, id string, overrides []domain.DateOverride) error {
	return m.Called(ctx, id, overrides).Error(0)
}

func (m *MockPropertyRepository) ApplyAvailability(ctx context.Context, id string, bookable *bool, overrides []domain.DateOverride) error {
	return m.Called(ctx, id, bookable, overrides).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetProperties(ctx context.Context) ([]domain.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Property), args.Error(1)
}

func (m *MockCache) SetProperties(ctx context.Context, properties []domain.Property) error {
	return m.Called(ctx, properties).Error(0)
}

func (m *MockCache) InvalidateProperties(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Exclusive(ctx context.Context, propertyID string, fn func(ctx context.Context) error) error {
	if err := m.Called(ctx, propertyID).Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

func (m *MockLedger) ApplyAvailability(ctx context.Context, propertyID string, bookable *bool, entries []availability.OverrideInput) (*availability.OverrideResult, error) {
	args := m.Called(ctx, propertyID, bookable, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.OverrideResult), args.Error(1)
}

func (m *MockLedger) Invalidate(ctx context.Context, propertyID string) {
	m.Called(ctx, propertyID)
}

func validInput() PropertyInput {
	return PropertyInput{
		Title:         "Lekki Phase 1 Loft",
		Description:   "Two-bed loft near the beach",
		PricePerNight: 5000000,
		Location:      "Lekki, Lagos",
		Images:        []string{"https://cdn.example.com/a.jpg"},
		Bedrooms:      2,
	}
}

func TestPropertyService_List_CacheMiss(t *testing.T) {
	repo, cache, ledger := &MockPropertyRepository{}, &MockCache{}, &MockLedger{}
	service := NewPropertyService(repo, cache, ledger)
	ctx := context.Background()

	properties := []domain.Property{{ID: "p1", Title: "Loft"}}
	cache.On("GetProperties", ctx).Return(nil, nil)
	repo.On("List", ctx).Return(properties, nil)
	cache.On("SetProperties", ctx, properties).Return(nil)

	result, err := service.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, properties, result)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestPropertyService_List_CacheHit(t *testing.T) {
	repo, cache, ledger := &MockPropertyRepository{}, &MockCache{}, &MockLedger{}
	service := NewPropertyService(repo, cache, ledger)
	ctx := context.Background()

	properties := []domain.Property{{ID: "p1", Title: "Loft"}}
	cache.On("GetProperties", ctx).Return(properties, nil)

	result, err := service.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, properties, result)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestPropertyService_List_CacheErrorFallsBack(t *testing.T) {
	repo, cache, ledger := &MockPropertyRepository{}, &MockCache{}, &MockLedger{}
	service := NewPropertyService(repo, cache, ledger)
	ctx := context.Background()

	cache.On("GetProperties", ctx).Return(nil, errors.New("redis down"))
	repo.On("List", ctx).Return([]domain.Property{}, nil)
	cache.On("SetProperties", ctx, []domain.Property{}).Return(errors.New("redis down"))

	result, err := service.List(ctx)

	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestPropertyService_Create(t *testing.T) {
	repo, cache, ledger := &MockPropertyRepository{}, &MockCache{}, &MockLedger{}
	service := NewPropertyService(repo, cache, ledger)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Property")).Return(nil)
	cache.On("InvalidateProperties", ctx).Return(nil)

	p, err := service.Create(ctx, validInput())

	require.NoError(t, err)
	assert.True(t, p.IsBookable)
	assert.Equal(t, "NGN", p.Currency)
	assert.True(t, strings.HasPrefix(p.Slug, "lekki-phase-1-loft-"), p.Slug)
	assert.Equal(t, "https://cdn.example.com/a.jpg", p.Thumbnail)
	assert.Equal(t, []string{}, p.Features)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestPropertyService_Create_Validation(t *testing.T) {
	service := NewPropertyService(&MockPropertyRepository{}, nil, &MockLedger{})

	input := validInput()
	input.Title = " "
	input.Location = ""
	_, err := service.Create(context.Background(), input)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorContains(t, err, "title, location")

	input = validInput()
	input.PricePerNight = 0
	_, err = service.Create(context.Background(), input)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPropertyService_Update_NotFound(t *testing.T) {
	repo, cache, ledger := &MockPropertyRepository{}, &MockCache{}, &MockLedger{}
	service := NewPropertyService(repo, cache, ledger)
	ctx := context.Background()

	repo.On("Update", ctx, mock.AnythingOfType("*domain.Property")).Return(domain.ErrPropertyNotFound)

	_, err := service.Update(ctx, "missing", validInput())

	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
	cache.AssertNotCalled(t, "InvalidateProperties", mock.Anything)
}

func TestPropertyService_Delete(t *testing.T) {
	repo, cache, ledger := &MockPropertyRepository{}, &MockCache{}, &MockLedger{}
	service := NewPropertyService(repo, cache, ledger)
	ctx := context.Background()

	repo.On("Delete", ctx, "p1").Return(nil)
	ledger.On("Invalidate", ctx, "p1").Return()
	cache.On("InvalidateProperties", ctx).Return(nil)

	require.NoError(t, service.Delete(ctx, "p1"))
	repo.AssertExpectations(t)
	ledger.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestPropertyService_UpdateAvailability(t *testing.T) {
	repo, cache, ledger := &MockPropertyRepository{}, &MockCache{}, &MockLedger{}
	service := NewPropertyService(repo, cache, ledger)
	ctx := context.Background()

	closed := false
	dates := []availability.OverrideInput{{Date: "2025-07-10", IsAvailable: false}, {Date: "garbage", IsAvailable: false}}
	ledger.On("Exclusive", ctx, "p1").Return(nil)
	ledger.On("ApplyAvailability", ctx, "p1", &closed, dates).Return(&availability.OverrideResult{Applied: []string{"2025-07-10"}, Skipped: []string{"garbage"}}, nil).Once()
	cache.On("InvalidateProperties", ctx).Return(nil)

	result, err := service.UpdateAvailability(ctx, "p1", AvailabilityUpdate{IsBookable: &closed, Dates: dates})

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-07-10"}, result.Applied)
	assert.Equal(t, []string{"garbage"}, result.Skipped)
	require.NotNil(t, result.IsBookable)
	assert.False(t, *result.IsBookable)
	ledger.AssertExpectations(t)
}

func TestPropertyService_UpdateAvailability_OnlyDates(t *testing.T) {
	repo, ledger := &MockPropertyRepository{}, &MockLedger{}
	service := NewPropertyService(repo, nil, ledger)
	ctx := context.Background()

	dates := []availability.OverrideInput{{Date: "2025-07-10", IsAvailable: true}}
	ledger.On("Exclusive", ctx, "p1").Return(nil)
	ledger.On("ApplyAvailability", ctx, "p1", (*bool)(nil), dates).Return(&availability.OverrideResult{Applied: []string{"2025-07-10"}, Skipped: []string{}}, nil)

	result, err := service.UpdateAvailability(ctx, "p1", AvailabilityUpdate{Dates: dates})

	require.NoError(t, err)
	assert.Nil(t, result.IsBookable)
	assert.Equal(t, []string{"2025-07-10"}, result.Applied)
	ledger.AssertExpectations(t)
}

func TestPropertyService_UpdateAvailability_Empty(t *testing.T) {
	service := NewPropertyService(&MockPropertyRepository{}, nil, &MockLedger{})

	_, err := service.UpdateAvailability(context.Background(), "p1", AvailabilityUpdate{})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestPropertyService_UpdateAvailability_UnknownProperty(t *testing.T) {
	ledger := &MockLedger{}
	service := NewPropertyService(&MockPropertyRepository{}, nil, ledger)
	ctx := context.Background()

	open := true
	ledger.On("Exclusive", ctx, "nope").Return(nil)
	ledger.On("ApplyAvailability", ctx, "nope", &open, ([]availability.OverrideInput)(nil)).Return(nil, domain.ErrPropertyNotFound)

	_, err := service.UpdateAvailability(ctx, "nope", AvailabilityUpdate{IsBookable: &open})

	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
}

func TestPropertyService_UpdateAvailability_FailedWriteSkipsListInvalidation(t *testing.T) {
	cache, ledger := &MockCache{}, &MockLedger{}
	service := NewPropertyService(&MockPropertyRepository{}, cache, ledger)
	ctx := context.Background()

	closed := false
	dates := []availability.OverrideInput{{Date: "2025-07-10", IsAvailable: false}}
	ledger.On("Exclusive", ctx, "p1").Return(nil)
	ledger.On("ApplyAvailability", ctx, "p1", &closed, dates).Return(nil, errors.New("save availability: boom"))

	_, err := service.UpdateAvailability(ctx, "p1", AvailabilityUpdate{IsBookable: &closed, Dates: dates})

	assert.ErrorContains(t, err, "boom")
	ledger.AssertNumberOfCalls(t, "ApplyAvailability", 1)
	cache.AssertNotCalled(t, "InvalidateProperties", mock.Anything)
}

func TestMakeSlug(t *testing.T) {
	assert.Equal(t, "ikoyi-penthouse-p1", makeSlug("Ikoyi Penthouse!", "p1"))
	assert.Equal(t, "loft-0f8fad5b", makeSlug("Loft", "0f8fad5b-d9cb-469f-a165-70867728950e"))
}
