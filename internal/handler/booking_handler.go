package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayflow/service-hotel/internal/application"
	"github.com/stayflow/service-hotel/internal/auth"
	"github.com/stayflow/service-hotel/internal/middleware"
	"github.com/stayflow/service-hotel/internal/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service      *application.BookingService
	reassignment *application.ReassignmentService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService, reassignment *application.ReassignmentService) *BookingHandler {
	return &BookingHandler{service: service, reassignment: reassignment}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	staffMW := middleware.RequireRole(auth.RoleStaff, auth.RoleManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", staffMW, h.CreateBooking)
		bookings.GET("", staffMW, h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/number/:number", h.GetBookingByNumber)
		bookings.POST("/walk-in", staffMW, h.WalkInCheckIn)
		bookings.POST("/:id/confirm", staffMW, h.ConfirmBooking)
		bookings.POST("/:id/check-in", staffMW, h.CheckIn)
		bookings.POST("/:id/check-out", staffMW, h.CheckOut)
		bookings.POST("/:id/complete", staffMW, h.Complete)
		bookings.POST("/:id/cancel", h.Cancel)
		bookings.POST("/:id/no-show", staffMW, h.MarkNoShow)
		bookings.POST("/:id/release", staffMW, h.Release)
		bookings.POST("/:id/complimentary", middleware.RequireRole(auth.RoleManager), h.SetComplimentary)
		bookings.DELETE("/:id/complimentary", middleware.RequireRole(auth.RoleManager), h.RemoveComplimentary)
		bookings.POST("/:id/payments", staffMW, h.RecordPayment)
		bookings.POST("/:id/refund", middleware.RequireRole(auth.RoleManager), h.Refund)
		bookings.POST("/:id/reassign", staffMW, h.Reassign)
		bookings.GET("/:id/changes", h.GetChanges)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. An optional guest_id query
// narrows the list to one guest.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	if guestParam := c.Query("guest_id"); guestParam != "" {
		guestID, err := uuid.Parse(guestParam)
		if err != nil {
			response.BadRequest(c, "invalid guest ID")
			return
		}
		result, err := h.service.GetGuestBookings(c.Request.Context(), guestID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
		return
	}

	result, err := h.service.ListBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBookingByNumber handles GET /api/v1/bookings/number/:number.
func (h *BookingHandler) GetBookingByNumber(c *gin.Context) {
	result, err := h.service.GetBookingByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// WalkInCheckIn handles POST /api/v1/bookings/walk-in.
func (h *BookingHandler) WalkInCheckIn(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.WalkInCheckIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ConfirmBooking handles POST /api/v1/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	h.transition(c, h.service.ConfirmBooking)
}

// CheckIn handles POST /api/v1/bookings/:id/check-in.
func (h *BookingHandler) CheckIn(c *gin.Context) {
	h.transition(c, h.service.CheckInBooking)
}

// CheckOut handles POST /api/v1/bookings/:id/check-out.
func (h *BookingHandler) CheckOut(c *gin.Context) {
	h.transition(c, h.service.CheckOutBooking)
}

// Complete handles POST /api/v1/bookings/:id/complete.
func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.service.CompleteBooking)
}

// MarkNoShow handles POST /api/v1/bookings/:id/no-show.
func (h *BookingHandler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.service.MarkNoShow)
}

// Release handles POST /api/v1/bookings/:id/release.
func (h *BookingHandler) Release(c *gin.Context) {
	h.transition(c, h.service.ReleaseBooking)
}

// Cancel handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	actor, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), id, actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SetComplimentary handles POST /api/v1/bookings/:id/complimentary.
func (h *BookingHandler) SetComplimentary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.ComplimentaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetComplimentary(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RemoveComplimentary handles DELETE /api/v1/bookings/:id/complimentary.
func (h *BookingHandler) RemoveComplimentary(c *gin.Context) {
	h.transition(c, h.service.RemoveComplimentary)
}

// RecordPayment handles POST /api/v1/bookings/:id/payments.
func (h *BookingHandler) RecordPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Refund handles POST /api/v1/bookings/:id/refund.
func (h *BookingHandler) Refund(c *gin.Context) {
	h.transition(c, h.service.RefundPayment)
}

// Reassign handles POST /api/v1/bookings/:id/reassign.
func (h *BookingHandler) Reassign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.ReassignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.reassignment.ReassignRoom(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetChanges handles GET /api/v1/bookings/:id/changes.
func (h *BookingHandler) GetChanges(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.reassignment.GetBookingChanges(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// transition runs a parameterless booking state change endpoint.
func (h *BookingHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*application.BookingDTO, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := fn(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func parsePagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
