package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/platform/auth"
	"github.com/stayloop/service-booking/internal/platform/middleware"
	"github.com/stayloop/service-booking/internal/platform/response"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AdminHandler serves the operator views over every booking.
type AdminHandler struct {
	service *application.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.BookingService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	admin.GET("/bookings", h.ListBookings)
	admin.GET("/stats/bookings", h.BookingStats)
	admin.GET("/properties/:propertyId/conflicts", h.PropertyConflicts)
}

// ListBookings handles GET /api/v1/admin/bookings?status=&page=&limit=.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	status, ok := statusQuery(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), status, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// PropertyConflicts handles GET /api/v1/admin/properties/:propertyId/conflicts.
func (h *AdminHandler) PropertyConflicts(c *gin.Context) {
	propertyID, ok := pathID(c, "propertyId")
	if !ok {
		return
	}

	pairs, err := h.service.AuditPropertyConflicts(c.Request.Context(), propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, pairs)
}

// pageParams reads page and limit, falling back to the first page of defaultPageSize.
func pageParams(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit
}
