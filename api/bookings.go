package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/Domenick1991/shortlet/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"required"`
	CheckIn    string `json:"checkIn" binding:"required,day"`
	CheckOut   string `json:"checkOut" binding:"required,day"`
	Guests     int    `json:"guests" binding:"required,min=1"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:reference", h.get)
}

func (h *BookingHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.PUT("/:reference/complete", h.complete)
	router.PUT("/:reference/cancel", h.cancel)
	router.DELETE("/:id", h.delete)
}

// RegisterReconcile mounts the manual calendar repair under the admin
// availability group.
func (h *BookingHandler) RegisterReconcile(router *gin.RouterGroup) {
	router.POST("/reconcile", h.reconcile)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		PropertyID: req.PropertyID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Guests:     req.Guests,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBookingResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("reference"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) list(c *gin.Context) {
	filter := domain.BookingFilter{
		PropertyID:    c.Query("propertyId"),
		PaymentStatus: domain.PaymentStatus(c.Query("status")),
		ActiveOnly:    c.Query("active") == "true",
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment status"})
		return
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number"})
			return
		}
		filter.Limit = limit
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, newBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": resp, "count": len(resp)})
}

func (h *BookingHandler) complete(c *gin.Context) {
	b, err := h.service.CompleteBooking(c.Request.Context(), c.Param("reference"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("reference"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) delete(c *gin.Context) {
	if err := h.service.DeleteBooking(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) reconcile(c *gin.Context) {
	synced, err := h.service.ReconcileAvailability(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": synced})
}
