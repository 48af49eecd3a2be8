package api

import (
	"net/http"

	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/Domenick1991/shortlet/internal/service/property"
	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	service property.PropertyUseCase
}

type propertyRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description" binding:"required"`
	Thumbnail      string   `json:"thumbnail"`
	PricePerNight  int64    `json:"pricePerNight" binding:"required,gt=0"`
	Currency       string   `json:"currency" binding:"omitempty,len=3"`
	Location       string   `json:"location" binding:"required"`
	Images         []string `json:"images"`
	Features       []string `json:"features"`
	AirbnbLink     string   `json:"airbnbLink" binding:"omitempty,url"`
	Specifications struct {
		Bedrooms  int    `json:"bedrooms" binding:"min=0"`
		Bathrooms int    `json:"bathrooms" binding:"min=0"`
		Size      string `json:"size"`
		Type      string `json:"type"`
	} `json:"specifications"`
}

type overrideRequest struct {
	Date        string `json:"date"`
	IsAvailable bool   `json:"isAvailable"`
}

// Dates entries are not validated here; the ledger skips bad ones and
// reports them back.
type availabilityRequest struct {
	IsBookable *bool             `json:"isBookable"`
	Dates      []overrideRequest `json:"dates"`
}

func NewPropertyHandler(service property.PropertyUseCase) *PropertyHandler {
	return &PropertyHandler{service: service}
}

func (h *PropertyHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *PropertyHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.PUT("/:id/availability", h.updateAvailability)
}

func (h *PropertyHandler) list(c *gin.Context) {
	properties, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]propertyResponse, 0, len(properties))
	for i := range properties {
		resp = append(resp, newPropertyResponse(&properties[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PropertyHandler) get(c *gin.Context) {
	p, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPropertyResponse(p))
}

func (h *PropertyHandler) create(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Create(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPropertyResponse(p))
}

func (h *PropertyHandler) update(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPropertyResponse(p))
}

func (h *PropertyHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PropertyHandler) updateAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.IsBookable == nil && len(req.Dates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	update := property.AvailabilityUpdate{IsBookable: req.IsBookable}
	for _, d := range req.Dates {
		update.Dates = append(update.Dates, availability.OverrideInput{Date: d.Date, IsAvailable: d.IsAvailable})
	}

	result, err := h.service.UpdateAvailability(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (r propertyRequest) input() property.PropertyInput {
	return property.PropertyInput{
		Title:         r.Title,
		Description:   r.Description,
		Thumbnail:     r.Thumbnail,
		PricePerNight: r.PricePerNight,
		Currency:      r.Currency,
		Location:      r.Location,
		Images:        r.Images,
		Features:      r.Features,
		AirbnbLink:    r.AirbnbLink,
		Bedrooms:      r.Specifications.Bedrooms,
		Bathrooms:     r.Specifications.Bathrooms,
		Size:          r.Specifications.Size,
		Type:          r.Specifications.Type,
	}
}
