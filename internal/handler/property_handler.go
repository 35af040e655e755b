package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/platform/auth"
	"github.com/stayloop/service-booking/internal/platform/middleware"
	"github.com/stayloop/service-booking/internal/platform/response"
)

// PropertyHandler handles HTTP requests for property listings and their images.
type PropertyHandler struct {
	service *application.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(service *application.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// RegisterRoutes registers property routes. Reads are public; writes need an owner token.
func (h *PropertyHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	ownerOnly := []gin.HandlerFunc{middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleOwner)}

	props := r.Group("/api/v1/properties")
	{
		props.GET("/mine", append(ownerOnly, h.ListMine)...)
		props.GET("/:id", h.GetProperty)
		props.GET("/:id/images", h.ListImages)

		props.POST("", append(ownerOnly, h.CreateProperty)...)
		props.PUT("/:id", append(ownerOnly, h.UpdateProperty)...)
		props.DELETE("/:id", append(ownerOnly, h.DeleteProperty)...)
		props.PUT("/:id/images", append(ownerOnly, h.ReplaceImages)...)
	}
}

// CreateProperty handles POST /api/v1/properties.
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req application.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	prop, err := h.service.CreateProperty(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, prop)
}

// GetProperty handles GET /api/v1/properties/:id.
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	prop, err := h.service.GetProperty(c.Request.Context(), propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, prop)
}

// ListMine handles GET /api/v1/properties/mine.
func (h *PropertyHandler) ListMine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	props, err := h.service.ListMyProperties(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, props)
}

// UpdateProperty handles PUT /api/v1/properties/:id.
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req application.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	prop, err := h.service.UpdateProperty(c.Request.Context(), userID, propertyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, prop)
}

// DeleteProperty handles DELETE /api/v1/properties/:id.
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteProperty(c.Request.Context(), userID, propertyID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListImages handles GET /api/v1/properties/:id/images.
func (h *PropertyHandler) ListImages(c *gin.Context) {
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	images, err := h.service.ListImages(c.Request.Context(), propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, images)
}

// ReplaceImages handles PUT /api/v1/properties/:id/images.
func (h *PropertyHandler) ReplaceImages(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req application.ReplaceImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	images, err := h.service.ReplaceImages(c.Request.Context(), userID, propertyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, images)
}
