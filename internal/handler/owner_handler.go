package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/platform/auth"
	"github.com/stayloop/service-booking/internal/platform/middleware"
	"github.com/stayloop/service-booking/internal/platform/response"
)

// OwnerHandler serves the owner dashboard.
type OwnerHandler struct {
	service *application.BookingService
}

// NewOwnerHandler creates a new OwnerHandler.
func NewOwnerHandler(service *application.BookingService) *OwnerHandler {
	return &OwnerHandler{service: service}
}

// RegisterRoutes registers owner routes.
func (h *OwnerHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	owner := r.Group("/api/v1/owner")
	owner.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleOwner))
	owner.GET("/dashboard", h.Dashboard)
}

// Dashboard handles GET /api/v1/owner/dashboard.
func (h *OwnerHandler) Dashboard(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	dash, err := h.service.GetOwnerDashboard(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dash)
}
