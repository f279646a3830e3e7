package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stayflow/service-hotel/internal/application"
	"github.com/stayflow/service-hotel/internal/auth"
	"github.com/stayflow/service-hotel/internal/middleware"
	"github.com/stayflow/service-hotel/internal/response"
)

// AdminHandler exposes reporting endpoints for managers.
type AdminHandler struct {
	bookings *application.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService) *AdminHandler {
	return &AdminHandler{bookings: bookings}
}

// RegisterRoutes registers admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, middleware.RequireRole(auth.RoleManager))
	{
		admin.GET("/bookings/stats", h.BookingStats)
	}
}

// BookingStats handles GET /api/v1/admin/bookings/stats.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.CountByStatus(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
