package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/Domenick1991/shortlet/internal/service/property"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testProperty() *domain.Property {
	return &domain.Property{
		ID:            "p-1",
		Slug:          "lekki-loft-p-1",
		Title:         "Lekki Loft",
		Description:   "Two bedroom loft",
		PricePerNight: 50000,
		Currency:      "NGN",
		Location:      "Lekki, Lagos",
		Images:        []string{},
		Features:      []string{"wifi"},
		IsBookable:    true,
		Availability:  []domain.DateOverride{{Date: day("2025-06-10"), IsAvailable: false}},
	}
}

func TestPropertyHandler_list(t *testing.T) {
	mockService := &MockPropertyUseCase{}
	handler := NewPropertyHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/properties", nil)

	mockService.On("List", c.Request.Context()).Return([]domain.Property{*testProperty()}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []propertyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "Lekki Loft", response[0].Title)
	assert.Equal(t, []dateOverrideResponse{{Date: "2025-06-10", IsAvailable: false}}, response[0].Availability)
	mockService.AssertExpectations(t)
}

func TestPropertyHandler_get_notFound(t *testing.T) {
	mockService := &MockPropertyUseCase{}
	handler := NewPropertyHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	c.Request = httptest.NewRequest("GET", "/api/properties/nope", nil)

	mockService.On("GetByID", c.Request.Context(), "nope").Return(nil, domain.ErrPropertyNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPropertyHandler_create(t *testing.T) {
	mockService := &MockPropertyUseCase{}
	handler := NewPropertyHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"title":"Lekki Loft","description":"Two bedroom loft","pricePerNight":50000,"location":"Lekki, Lagos",
		"features":["wifi"],"specifications":{"bedrooms":2,"bathrooms":1,"type":"apartment"}}`
	c.Request = httptest.NewRequest("POST", "/api/admin/properties", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	input := property.PropertyInput{
		Title:         "Lekki Loft",
		Description:   "Two bedroom loft",
		PricePerNight: 50000,
		Location:      "Lekki, Lagos",
		Features:      []string{"wifi"},
		Bedrooms:      2,
		Bathrooms:     1,
		Type:          "apartment",
	}
	mockService.On("Create", c.Request.Context(), input).Return(testProperty(), nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestPropertyHandler_create_missingPrice(t *testing.T) {
	mockService := &MockPropertyUseCase{}
	handler := NewPropertyHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/admin/properties",
		bytes.NewBufferString(`{"title":"Loft","description":"x","location":"Lagos"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPropertyHandler_updateAvailability(t *testing.T) {
	mockService := &MockPropertyUseCase{}
	handler := NewPropertyHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}

	body := `{"isBookable":false,"dates":[{"date":"2025-06-10","isAvailable":false},{"date":"junk","isAvailable":true}]}`
	c.Request = httptest.NewRequest("PUT", "/api/admin/properties/p-1/availability", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	bookable := false
	update := property.AvailabilityUpdate{
		IsBookable: &bookable,
		Dates: []availability.OverrideInput{
			{Date: "2025-06-10", IsAvailable: false},
			{Date: "junk", IsAvailable: true},
		},
	}
	result := &property.AvailabilityResult{PropertyID: "p-1", IsBookable: &bookable, Applied: []string{"2025-06-10"}, Skipped: []string{"junk"}}
	mockService.On("UpdateAvailability", c.Request.Context(), "p-1", update).Return(result, nil)

	handler.updateAvailability(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"propertyId":"p-1","isBookable":false,"applied":["2025-06-10"],"skipped":["junk"]}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestPropertyHandler_updateAvailability_empty(t *testing.T) {
	mockService := &MockPropertyUseCase{}
	handler := NewPropertyHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	c.Request = httptest.NewRequest("PUT", "/api/admin/properties/p-1/availability", bytes.NewBufferString(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.updateAvailability(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPropertyHandler_delete(t *testing.T) {
	mockService := &MockPropertyUseCase{}
	handler := NewPropertyHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	c.Request = httptest.NewRequest("DELETE", "/api/admin/properties/p-1", nil)

	mockService.On("Delete", c.Request.Context(), "p-1").Return(nil)

	handler.delete(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	mockService.AssertExpectations(t)
}

func TestPropertyHandler_delete_WithBookings(t *testing.T) {
	mockService := &MockPropertyUseCase{}
	handler := NewPropertyHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	c.Request = httptest.NewRequest("DELETE", "/api/admin/properties/p-1", nil)

	mockService.On("Delete", c.Request.Context(), "p-1").Return(domain.ErrPropertyHasBookings)

	handler.delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "property has bookings")
	mockService.AssertExpectations(t)
}
