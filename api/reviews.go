package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/Domenick1991/shortlet/internal/service/review"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	service review.ReviewUseCase
}

type createReviewRequest struct {
	PropertyID       string `json:"propertyId" binding:"required"`
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Rating           int    `json:"rating" binding:"required,min=1,max=5"`
	Comment          string `json:"comment" binding:"required"`
	BookingReference string `json:"bookingReference"`
}

type reviewStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

func NewReviewHandler(service review.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/:id", h.get)
}

func (h *ReviewHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.PUT("/:id", h.updateStatus)
	router.DELETE("/:id", h.delete)
}

func (h *ReviewHandler) list(c *gin.Context) {
	admin := isAdmin(c)
	filter := domain.ReviewFilter{
		PropertyID: c.Query("propertyId"),
		Status:     domain.ReviewStatus(c.Query("status")),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number"})
			return
		}
		filter.Limit = limit
	}

	list, err := h.service.List(c.Request.Context(), filter, admin)
	if err != nil {
		writeError(c, err)
		return
	}

	reviews := make([]reviewResponse, 0, len(list.Reviews))
	for i := range list.Reviews {
		reviews = append(reviews, newReviewResponse(&list.Reviews[i], admin))
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews":       reviews,
		"averageRating": list.AverageRating,
		"count":         list.Count,
	})
}

func (h *ReviewHandler) create(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rv, err := h.service.Create(c.Request.Context(), review.CreateReviewInput{
		PropertyID:       req.PropertyID,
		Name:             req.Name,
		Email:            req.Email,
		Rating:           req.Rating,
		Comment:          req.Comment,
		BookingReference: req.BookingReference,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newReviewResponse(rv, false))
}

// get hides reviews that are not approved from public callers.
func (h *ReviewHandler) get(c *gin.Context) {
	rv, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if rv.Status != domain.ReviewStatusApproved && !isAdmin(c) {
		writeError(c, domain.ErrReviewNotFound)
		return
	}
	c.JSON(http.StatusOK, newReviewResponse(rv, isAdmin(c)))
}

func (h *ReviewHandler) updateStatus(c *gin.Context) {
	var req reviewStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rv, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), domain.ReviewStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewResponse(rv, true))
}

func (h *ReviewHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
