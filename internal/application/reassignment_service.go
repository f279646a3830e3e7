package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayflow/service-hotel/internal/domain"
	roomDomain "github.com/stayflow/service-hotel/internal/domain/room"
	roomchangeDomain "github.com/stayflow/service-hotel/internal/domain/roomchange"
	"github.com/stayflow/service-hotel/internal/events"
	"github.com/stayflow/service-hotel/internal/kafka"
	"github.com/stayflow/service-hotel/internal/repository"
)

// ReassignRoomRequest moves an in-house guest to a different room.
type ReassignRoomRequest struct {
	ToRoomID  uuid.UUID `json:"to_room_id" binding:"required"`
	Reason    string    `json:"reason" binding:"required"`
	ChangedBy string    `json:"changed_by"`
}

// ReassignmentService moves in-house guests between rooms. The booking
// update, both room updates and the audit record commit in one transaction;
// any failure leaves everything untouched.
type ReassignmentService struct {
	tx                *repository.TxManager
	changes           roomchangeDomain.Repository
	producer          *kafka.Producer
	clock             domain.Clock
	vacatedRoomStatus string
	logger            *zap.Logger
}

// NewReassignmentService creates a new ReassignmentService.
func NewReassignmentService(
	tx *repository.TxManager,
	changes roomchangeDomain.Repository,
	producer *kafka.Producer,
	clock domain.Clock,
	vacatedRoomStatus string,
	logger *zap.Logger,
) *ReassignmentService {
	return &ReassignmentService{
		tx:                tx,
		changes:           changes,
		producer:          producer,
		clock:             clock,
		vacatedRoomStatus: vacatedRoomStatus,
		logger:            logger,
	}
}

// ReassignRoom moves the booking's guest to the target room. The target must
// be effectively available at the time of the move; the source room is
// flagged per the vacated-room policy.
func (s *ReassignmentService) ReassignRoom(ctx context.Context, bookingID uuid.UUID, req ReassignRoomRequest) (*BookingDTO, error) {
	var dto *BookingDTO
	var record *roomchangeDomain.Record

	err := s.tx.WithinTx(ctx, func(repos repository.TxRepositories) error {
		bk, err := repos.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if bk.RoomID() == req.ToRoomID {
			return domain.NewValidationError("booking is already in the requested room")
		}

		// Lock both rooms in a fixed order so two concurrent moves touching
		// the same pair cannot deadlock.
		firstID, secondID := bk.RoomID(), req.ToRoomID
		if secondID.String() < firstID.String() {
			firstID, secondID = secondID, firstID
		}
		first, err := repos.Rooms.FindByIDForUpdate(ctx, firstID)
		if err != nil {
			return err
		}
		second, err := repos.Rooms.FindByIDForUpdate(ctx, secondID)
		if err != nil {
			return err
		}
		source, target := first, second
		if source.ID() != bk.RoomID() {
			source, target = second, first
		}

		if !target.IsActive() {
			return domain.NewValidationError(fmt.Sprintf("room %s is not in service", target.RoomNumber()))
		}

		// The source room must hold exactly this booking as its single
		// occupant. Anything else is surfaced for manual reconciliation.
		now := s.clock.Now()
		occupants, err := repos.Bookings.FindActiveByRoomID(ctx, source.ID(), now)
		if err != nil {
			return err
		}
		if len(occupants) != 1 || occupants[0].ID() != bk.ID() {
			return domain.NewConsistencyViolationError(fmt.Sprintf(
				"room %s has %d active bookings; expected exactly booking %s",
				source.RoomNumber(), len(occupants), bk.BookingNumber()))
		}

		// Re-check the target's effective status under the lock.
		byRoom, err := repos.Bookings.FindCurrentForRooms(ctx, []uuid.UUID{target.ID()}, now)
		if err != nil {
			return err
		}
		res := roomDomain.Resolve(target, byRoom[target.ID()], now)
		if res.Status != roomDomain.EffectiveAvailable {
			return domain.NewConflictError(fmt.Sprintf(
				"room %s is %s and cannot receive the guest", target.RoomNumber(), res.Status))
		}

		fromRoomID := bk.RoomID()
		if err := bk.MoveToRoom(target.ID(), now); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := repos.Bookings.Update(ctx, bk); err != nil {
			return err
		}

		if s.vacatedRoomStatus == string(roomDomain.StatusAvailable) {
			source.MarkAvailable(now)
		} else {
			source.MarkDirty(now)
		}
		if err := repos.Rooms.Update(ctx, source); err != nil {
			return err
		}

		target.MarkOccupied(now)
		if err := repos.Rooms.Update(ctx, target); err != nil {
			return err
		}

		record, err = roomchangeDomain.NewRecord(
			bk.ID(), bk.GuestID(), fromRoomID, target.ID(),
			bk.BookingNumber(), bk.GuestName(), source.RoomNumber(), target.RoomNumber(),
			req.Reason, req.ChangedBy, now,
		)
		if err != nil {
			return err
		}
		if err := repos.RoomChanges.Create(ctx, record); err != nil {
			return err
		}

		d := toBookingDTO(bk)
		dto = &d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishRoomChanged(ctx, record)
	s.logger.Info("guest reassigned",
		zap.String("booking_id", bookingID.String()),
		zap.String("from_room_id", record.FromRoomID().String()),
		zap.String("to_room_id", record.ToRoomID().String()),
	)

	return dto, nil
}

// GetBookingChanges retrieves the room change history for a booking.
func (s *ReassignmentService) GetBookingChanges(ctx context.Context, bookingID uuid.UUID) ([]RoomChangeDTO, error) {
	records, err := s.changes.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return toRoomChangeDTOs(records), nil
}

// GetRoomChanges retrieves changes involving a room with pagination.
func (s *ReassignmentService) GetRoomChanges(ctx context.Context, roomID uuid.UUID, page, limit int) (*domain.PaginatedResult[RoomChangeDTO], error) {
	records, total, err := s.changes.FindByRoomID(ctx, roomID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toRoomChangeDTOs(records), total, page, limit)
	return &result, nil
}

func (s *ReassignmentService) publishRoomChanged(ctx context.Context, record *roomchangeDomain.Record) {
	if s.producer == nil || record == nil {
		return
	}
	s.producer.Publish(ctx, events.TopicBookingEvents, events.BookingRoomChanged, record.BookingID().String(), events.RoomChangedEvent{
		BookingID:      record.BookingID(),
		BookingNumber:  record.BookingNumber(),
		GuestID:        record.GuestID(),
		FromRoomID:     record.FromRoomID(),
		FromRoomNumber: record.FromRoomNumber(),
		ToRoomID:       record.ToRoomID(),
		ToRoomNumber:   record.ToRoomNumber(),
		Reason:         record.Reason(),
		ChangedBy:      record.ChangedBy(),
	})
}
