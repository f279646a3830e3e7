package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayflow/service-hotel/internal/application"
	"github.com/stayflow/service-hotel/internal/auth"
	"github.com/stayflow/service-hotel/internal/middleware"
	"github.com/stayflow/service-hotel/internal/response"
)

// RoomHandler handles HTTP requests for room inventory and status.
type RoomHandler struct {
	service      *application.RoomService
	reassignment *application.ReassignmentService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(service *application.RoomService, reassignment *application.ReassignmentService) *RoomHandler {
	return &RoomHandler{service: service, reassignment: reassignment}
}

// RegisterRoutes registers all room routes on the given router group.
func (h *RoomHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	staffMW := middleware.RequireRole(auth.RoleStaff, auth.RoleManager)

	rooms := r.Group("/api/v1/rooms")
	rooms.Use(authMW)
	{
		rooms.POST("", middleware.RequireRole(auth.RoleManager), h.CreateRoom)
		rooms.GET("", h.ListRooms)
		rooms.GET("/occupancy", h.GetOccupancy)
		rooms.GET("/:id", h.GetRoom)
		rooms.PUT("/:id/status", staffMW, h.UpdateStatus)
		rooms.POST("/:id/end-status", staffMW, h.EndStatus)
		rooms.GET("/:id/changes", h.GetChanges)
	}
}

// CreateRoom handles POST /api/v1/rooms.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req application.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateRoom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListRooms handles GET /api/v1/rooms.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListRooms(c.Request.Context(), c.Query("room_type"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetRoom handles GET /api/v1/rooms/:id.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	result, err := h.service.GetRoom(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateStatus handles PUT /api/v1/rooms/:id/status.
func (h *RoomHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	var req application.UpdateRoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateRoomStatus(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// EndStatus handles POST /api/v1/rooms/:id/end-status.
func (h *RoomHandler) EndStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	result, err := h.service.EndRoomStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetOccupancy handles GET /api/v1/rooms/occupancy. An optional date query
// (YYYY-MM-DD) defaults to today.
func (h *RoomHandler) GetOccupancy(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	result, err := h.service.GetOccupancySummary(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetChanges handles GET /api/v1/rooms/:id/changes.
func (h *RoomHandler) GetChanges(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}
	page, limit := parsePagination(c)

	result, err := h.reassignment.GetRoomChanges(c.Request.Context(), id, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}
