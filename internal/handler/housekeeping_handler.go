package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stayflow/service-hotel/internal/application"
	"github.com/stayflow/service-hotel/internal/auth"
	"github.com/stayflow/service-hotel/internal/middleware"
	"github.com/stayflow/service-hotel/internal/response"
)

// HousekeepingHandler exposes the manual sweep trigger.
type HousekeepingHandler struct {
	service *application.HousekeepingService
}

// NewHousekeepingHandler creates a new HousekeepingHandler.
func NewHousekeepingHandler(service *application.HousekeepingService) *HousekeepingHandler {
	return &HousekeepingHandler{service: service}
}

// RegisterRoutes registers housekeeping routes on the given router group.
func (h *HousekeepingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	housekeeping := r.Group("/api/v1/housekeeping")
	housekeeping.Use(authMW)
	{
		housekeeping.POST("/sweep", middleware.RequireRole(auth.RoleManager), h.RunSweep)
	}
}

// RunSweep handles POST /api/v1/housekeeping/sweep.
func (h *HousekeepingHandler) RunSweep(c *gin.Context) {
	report, err := h.service.RunSweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, report)
}
