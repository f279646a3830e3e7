package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayflow/service-hotel/internal/domain"
	bookingDomain "github.com/stayflow/service-hotel/internal/domain/booking"
	roomDomain "github.com/stayflow/service-hotel/internal/domain/room"
	"github.com/stayflow/service-hotel/internal/events"
	"github.com/stayflow/service-hotel/internal/kafka"
)

// CreateRoomRequest holds the data needed to register a room.
type CreateRoomRequest struct {
	RoomNumber   string `json:"room_number" binding:"required"`
	RoomType     string `json:"room_type" binding:"required"`
	PriceCents   int64  `json:"price_cents" binding:"required"`
	MaxOccupancy int    `json:"max_occupancy" binding:"required,min=1"`
	Floor        int    `json:"floor"`
	Description  string `json:"description"`
}

// UpdateRoomStatusRequest is a human-initiated explicit status change.
type UpdateRoomStatusRequest struct {
	Status    string     `json:"status" binding:"required"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Notes     string     `json:"notes"`
}

// RoomService orchestrates room inventory and status use cases.
type RoomService struct {
	rooms    roomDomain.Repository
	bookings bookingDomain.Repository
	producer *kafka.Producer
	clock    domain.Clock
	logger   *zap.Logger
}

// NewRoomService creates a new RoomService.
func NewRoomService(
	rooms roomDomain.Repository,
	bookings bookingDomain.Repository,
	producer *kafka.Producer,
	clock domain.Clock,
	logger *zap.Logger,
) *RoomService {
	return &RoomService{
		rooms:    rooms,
		bookings: bookings,
		producer: producer,
		clock:    clock,
		logger:   logger,
	}
}

// CreateRoom registers a new room in available status.
func (s *RoomService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomDTO, error) {
	room, err := roomDomain.NewRoom(
		req.RoomNumber,
		req.RoomType,
		req.PriceCents,
		req.MaxOccupancy,
		req.Floor,
		req.Description,
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	dto := toRoomDTO(room, roomDomain.Resolution{Status: roomDomain.EffectiveAvailable})
	return &dto, nil
}

// GetRoom retrieves a room with its resolved effective status.
func (s *RoomService) GetRoom(ctx context.Context, id uuid.UUID) (*RoomDTO, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.resolve(ctx, room)
	if err != nil {
		return nil, err
	}
	dto := toRoomDTO(room, res)
	return &dto, nil
}

// ListRooms retrieves rooms with resolved effective statuses, optionally
// filtered by room type.
func (s *RoomService) ListRooms(ctx context.Context, roomType string, page, limit int) (*domain.PaginatedResult[RoomDTO], error) {
	var rooms []*roomDomain.Room
	var total int64
	var err error
	if roomType != "" {
		rooms, total, err = s.rooms.ListByType(ctx, roomType, page, limit)
	} else {
		rooms, total, err = s.rooms.ListAll(ctx, page, limit)
	}
	if err != nil {
		return nil, err
	}

	dtos, err := s.resolveAll(ctx, rooms)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UpdateRoomStatus applies a human-initiated explicit status change, gated by
// the room's current effective status.
func (s *RoomService) UpdateRoomStatus(ctx context.Context, id uuid.UUID, req UpdateRoomStatusRequest) (*RoomDTO, error) {
	target, err := roomDomain.ParseExplicitStatus(req.Status)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.resolve(ctx, room)
	if err != nil {
		return nil, err
	}

	var window *roomDomain.StatusWindow
	if req.StartDate != nil && req.EndDate != nil {
		window = &roomDomain.StatusWindow{Start: *req.StartDate, End: *req.EndDate}
	}

	now := s.clock.Now()
	if err := room.ApplyExplicitStatus(target, window, req.Notes, res.Status, now); err != nil {
		return nil, err
	}
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}

	s.publishRoomStatus(ctx, room)
	s.logger.Info("room status updated",
		zap.String("room_number", room.RoomNumber()),
		zap.String("status", string(room.Status())),
	)

	updated, err := s.resolve(ctx, room)
	if err != nil {
		return nil, err
	}
	dto := toRoomDTO(room, updated)
	return &dto, nil
}

// EndRoomStatus reverts a time-bounded explicit state to available ahead of
// its expiry.
func (s *RoomService) EndRoomStatus(ctx context.Context, id uuid.UUID) (*RoomDTO, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.resolve(ctx, room)
	if err != nil {
		return nil, err
	}

	if err := room.EndExplicitState(res.Status, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}

	s.publishRoomStatus(ctx, room)

	updated, err := s.resolve(ctx, room)
	if err != nil {
		return nil, err
	}
	dto := toRoomDTO(room, updated)
	return &dto, nil
}

// GetOccupancySummary aggregates effective statuses across all active rooms
// for the given date.
func (s *RoomService) GetOccupancySummary(ctx context.Context, date time.Time) (*OccupancySummaryDTO, error) {
	rooms, err := s.rooms.ListAllUnpaged(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID()
	}
	byRoom, err := s.bookings.FindCurrentForRooms(ctx, ids, date)
	if err != nil {
		return nil, err
	}

	summary := &OccupancySummaryDTO{
		Date:         domain.DateOf(date),
		TotalRooms:   len(rooms),
		StatusCounts: make(map[string]int),
	}
	occupied := 0
	for _, r := range rooms {
		res := roomDomain.Resolve(r, byRoom[r.ID()], date)
		summary.StatusCounts[string(res.Status)]++
		if res.Status == roomDomain.EffectiveOccupied {
			occupied++
		}
		if res.Inconsistent {
			summary.Inconsistencies = append(summary.Inconsistencies, res.Note)
		}
	}
	if len(rooms) > 0 {
		summary.OccupancyRate = float64(occupied) / float64(len(rooms))
	}
	return summary, nil
}

// --- helpers ---

func (s *RoomService) resolve(ctx context.Context, room *roomDomain.Room) (roomDomain.Resolution, error) {
	now := s.clock.Now()
	byRoom, err := s.bookings.FindCurrentForRooms(ctx, []uuid.UUID{room.ID()}, now)
	if err != nil {
		return roomDomain.Resolution{}, err
	}
	res := roomDomain.Resolve(room, byRoom[room.ID()], now)
	if res.Inconsistent {
		s.logger.Warn("room state inconsistency detected",
			zap.String("room_number", room.RoomNumber()),
			zap.String("note", res.Note),
		)
	}
	return res, nil
}

func (s *RoomService) resolveAll(ctx context.Context, rooms []*roomDomain.Room) ([]RoomDTO, error) {
	now := s.clock.Now()
	ids := make([]uuid.UUID, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID()
	}
	byRoom, err := s.bookings.FindCurrentForRooms(ctx, ids, now)
	if err != nil {
		return nil, err
	}

	dtos := make([]RoomDTO, len(rooms))
	for i, r := range rooms {
		res := roomDomain.Resolve(r, byRoom[r.ID()], now)
		if res.Inconsistent {
			s.logger.Warn("room state inconsistency detected",
				zap.String("room_number", r.RoomNumber()),
				zap.String("note", res.Note),
			)
		}
		dtos[i] = toRoomDTO(r, res)
	}
	return dtos, nil
}

func (s *RoomService) publishRoomStatus(ctx context.Context, room *roomDomain.Room) {
	if s.producer == nil {
		return
	}
	s.producer.Publish(ctx, events.TopicRoomEvents, events.RoomStatusChanged, room.ID().String(), events.RoomStatusEvent{
		RoomID:     room.ID(),
		RoomNumber: room.RoomNumber(),
		Status:     string(room.Status()),
	})
}
