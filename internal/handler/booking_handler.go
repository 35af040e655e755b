package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/platform/auth"
	"github.com/stayloop/service-booking/internal/platform/middleware"
	"github.com/stayloop/service-booking/internal/platform/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	traveler := middleware.RequireRole(auth.RoleTraveler)
	owner := middleware.RequireRole(auth.RoleOwner)

	r.GET("/api/v1/bookings/bookedDates/:propertyId", h.BookedDates)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", traveler, h.CreateBooking)
		bookings.GET("", traveler, h.History)
		bookings.GET("/status", traveler, h.Status)
		bookings.GET("/incoming", owner, h.Incoming)
		bookings.PATCH("/:id/accept", owner, h.AcceptBooking)
		bookings.PATCH("/:id/cancel", owner, h.CancelBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AcceptBooking handles PATCH /api/v1/bookings/:id/accept.
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.AcceptBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles PATCH /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// BookedDates handles GET /api/v1/bookings/bookedDates/:propertyId.
func (h *BookingHandler) BookedDates(c *gin.Context) {
	propertyID, ok := pathID(c, "propertyId")
	if !ok {
		return
	}

	ranges, err := h.service.ListBookedDateRanges(c.Request.Context(), propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ranges)
}

// History handles GET /api/v1/bookings.
func (h *BookingHandler) History(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	history, err := h.service.GetTravelerHistory(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, history)
}

// Status handles GET /api/v1/bookings/status.
func (h *BookingHandler) Status(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	status, err := h.service.GetTravelerStatus(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, status)
}

// Incoming handles GET /api/v1/bookings/incoming?status=.
func (h *BookingHandler) Incoming(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	status, ok := statusQuery(c)
	if !ok {
		return
	}

	bookings, err := h.service.ListIncoming(c.Request.Context(), userID, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, bookings)
}
