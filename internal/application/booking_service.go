package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayflow/service-hotel/internal/domain"
	bookingDomain "github.com/stayflow/service-hotel/internal/domain/booking"
	roomDomain "github.com/stayflow/service-hotel/internal/domain/room"
	"github.com/stayflow/service-hotel/internal/events"
	"github.com/stayflow/service-hotel/internal/kafka"
	"github.com/stayflow/service-hotel/internal/repository"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	GuestID         uuid.UUID  `json:"guest_id" binding:"required"`
	GuestName       string     `json:"guest_name" binding:"required"`
	CompanyID       *uuid.UUID `json:"company_id"`
	RoomID          uuid.UUID  `json:"room_id" binding:"required"`
	CheckInDate     time.Time  `json:"check_in_date" binding:"required"`
	CheckOutDate    time.Time  `json:"check_out_date" binding:"required"`
	Adults          int        `json:"adults" binding:"required,min=1"`
	Children        int        `json:"children"`
	ExtraBeds       int        `json:"extra_beds"`
	Confirmed       bool       `json:"confirmed"`
	Source          string     `json:"source"`
	SpecialRequests string     `json:"special_requests"`
}

// CancelBookingRequest holds cancellation input.
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ComplimentaryRequest marks a date range of the stay as free of charge.
type ComplimentaryRequest struct {
	Reason    string    `json:"reason" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// PaymentRequest records a collected amount against a booking.
type PaymentRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required"`
	IsDeposit   bool  `json:"is_deposit"`
}

// BookingService orchestrates the booking lifecycle use cases.
type BookingService struct {
	bookings          bookingDomain.Repository
	rooms             roomDomain.Repository
	tx                *repository.TxManager
	rates             *bookingDomain.RateCalculator
	producer          *kafka.Producer
	clock             domain.Clock
	vacatedRoomStatus string
	logger            *zap.Logger
}

// NewBookingService creates a new BookingService. vacatedRoomStatus controls
// what a room becomes after checkout: "dirty" or "available".
func NewBookingService(
	bookings bookingDomain.Repository,
	rooms roomDomain.Repository,
	tx *repository.TxManager,
	rates *bookingDomain.RateCalculator,
	producer *kafka.Producer,
	clock domain.Clock,
	vacatedRoomStatus string,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:          bookings,
		rooms:             rooms,
		tx:                tx,
		rates:             rates,
		producer:          producer,
		clock:             clock,
		vacatedRoomStatus: vacatedRoomStatus,
		logger:            logger,
	}
}

// CreateBooking creates a new booking against an active room. The room's
// availability for the date range is enforced atomically by the repository.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	room, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive() {
		return nil, domain.NewValidationError(fmt.Sprintf("room %s is not in service", room.RoomNumber()))
	}
	if room.Status().TakesRoomOutOfService() {
		return nil, domain.NewConflictError(fmt.Sprintf(
			"room %s is %s and cannot be booked", room.RoomNumber(), room.Status()))
	}
	if req.Adults+req.Children > room.MaxOccupancy() {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"room %s sleeps at most %d guests", room.RoomNumber(), room.MaxOccupancy()))
	}

	quote, err := s.rates.Quote(room.PriceCents(), req.CheckInDate, req.CheckOutDate, req.ExtraBeds)
	if err != nil {
		return nil, err
	}

	initialStatus := bookingDomain.StatusPending
	if req.Confirmed {
		initialStatus = bookingDomain.StatusConfirmed
	}

	now := s.clock.Now()
	bk, err := bookingDomain.NewBooking(
		req.GuestID,
		req.GuestName,
		req.CompanyID,
		req.RoomID,
		req.CheckInDate,
		req.CheckOutDate,
		req.Adults,
		req.Children,
		req.ExtraBeds,
		quote,
		initialStatus,
		req.Source,
		req.SpecialRequests,
		now,
	)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Create(ctx, bk); err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, events.BookingCreated, bk)

	s.logger.Info("booking created",
		zap.String("booking_number", bk.BookingNumber()),
		zap.String("room_id", bk.RoomID().String()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByNumber retrieves a booking by its booking number.
func (s *BookingService) GetBookingByNumber(ctx context.Context, number string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetGuestBookings retrieves a guest's bookings with pagination.
func (s *BookingService) GetGuestBookings(ctx context.Context, guestID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByGuestID(ctx, guestID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// ListBookings retrieves all bookings with pagination.
func (s *BookingService) ListBookings(ctx context.Context, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// CountByStatus returns booking counts grouped by status.
func (s *BookingService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return s.bookings.CountByStatus(ctx)
}

// ConfirmBooking moves a pending booking to confirmed.
func (s *BookingService) ConfirmBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	return s.mutate(ctx, id, events.BookingConfirmed, func(bk *bookingDomain.Booking, now time.Time) error {
		return bk.Confirm(now)
	})
}

// CheckInBooking records the guest's arrival and marks the room occupied.
// Blocked while the room is not presentable (dirty, cleaning, maintenance,
// out of order). The booking and room writes commit in one transaction.
func (s *BookingService) CheckInBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	var arrived *bookingDomain.Booking
	err := s.tx.WithinTx(ctx, func(repos repository.TxRepositories) error {
		bk, err := repos.Bookings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		room, err := repos.Rooms.FindByIDForUpdate(ctx, bk.RoomID())
		if err != nil {
			return err
		}
		if err := roomPresentable(room); err != nil {
			return err
		}

		now := s.clock.Now()
		if err := bk.CheckIn(now); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := repos.Bookings.Update(ctx, bk); err != nil {
			return err
		}

		room.MarkOccupied(now)
		if err := repos.Rooms.Update(ctx, room); err != nil {
			return err
		}

		arrived = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, events.BookingCheckedIn, arrived)
	result := toBookingDTO(arrived)
	return &result, nil
}

// CheckOutBooking records the guest's departure and applies the configured
// vacated-room policy to the room.
func (s *BookingService) CheckOutBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	var dto *BookingDTO
	err := s.tx.WithinTx(ctx, func(repos repository.TxRepositories) error {
		bk, err := repos.Bookings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		room, err := repos.Rooms.FindByIDForUpdate(ctx, bk.RoomID())
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := bk.CheckOut(now); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := repos.Bookings.Update(ctx, bk); err != nil {
			return err
		}

		if s.vacatedRoomStatus == string(roomDomain.StatusAvailable) {
			room.MarkAvailable(now)
		} else {
			room.MarkDirty(now)
		}
		if err := repos.Rooms.Update(ctx, room); err != nil {
			return err
		}

		d := toBookingDTO(bk)
		dto = &d
		return nil
	})
	if err != nil {
		return nil, err
	}

	bk, err := s.bookings.FindByID(ctx, id)
	if err == nil {
		s.publishBookingEvent(ctx, events.BookingCheckedOut, bk)
	}
	return dto, nil
}

// CompleteBooking closes out a checked-out booking.
func (s *BookingService) CompleteBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	return s.mutate(ctx, id, events.BookingCompleted, func(bk *bookingDomain.Booking, now time.Time) error {
		return bk.Complete(now)
	})
}

// CancelBooking cancels a booking with a required reason.
func (s *BookingService) CancelBooking(ctx context.Context, id uuid.UUID, actor uuid.UUID, req CancelBookingRequest) (*BookingDTO, error) {
	return s.mutate(ctx, id, events.BookingCancelled, func(bk *bookingDomain.Booking, now time.Time) error {
		return bk.Cancel(req.Reason, actor, now)
	})
}

// MarkNoShow flags a booking whose guest never arrived.
func (s *BookingService) MarkNoShow(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	return s.mutate(ctx, id, events.BookingNoShow, func(bk *bookingDomain.Booking, now time.Time) error {
		return bk.MarkNoShow(now)
	})
}

// ReleaseBooking ends an occupancy without a regular checkout, returning the
// room per the vacated-room policy. The booking and room writes commit in
// one transaction.
func (s *BookingService) ReleaseBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	var released *bookingDomain.Booking
	err := s.tx.WithinTx(ctx, func(repos repository.TxRepositories) error {
		bk, err := repos.Bookings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		room, err := repos.Rooms.FindByIDForUpdate(ctx, bk.RoomID())
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := bk.Release(now); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := repos.Bookings.Update(ctx, bk); err != nil {
			return err
		}

		if s.vacatedRoomStatus == string(roomDomain.StatusAvailable) {
			room.MarkAvailable(now)
		} else {
			room.MarkDirty(now)
		}
		if err := repos.Rooms.Update(ctx, room); err != nil {
			return err
		}

		released = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, events.BookingReleased, released)
	result := toBookingDTO(released)
	return &result, nil
}

// SetComplimentary marks part or all of the stay as free of charge.
func (s *BookingService) SetComplimentary(ctx context.Context, id uuid.UUID, req ComplimentaryRequest) (*BookingDTO, error) {
	return s.mutate(ctx, id, events.BookingComplimentary, func(bk *bookingDomain.Booking, now time.Time) error {
		return bk.MarkComplimentary(req.Reason, req.StartDate, req.EndDate, now)
	})
}

// RemoveComplimentary restores the original charge on a complimentary
// booking.
func (s *BookingService) RemoveComplimentary(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	return s.mutate(ctx, id, events.BookingComplimentary, func(bk *bookingDomain.Booking, now time.Time) error {
		return bk.RemoveComplimentary(now)
	})
}

// RecordPayment applies a collected amount or deposit against the booking.
func (s *BookingService) RecordPayment(ctx context.Context, id uuid.UUID, req PaymentRequest) (*BookingDTO, error) {
	return s.mutate(ctx, id, "", func(bk *bookingDomain.Booking, now time.Time) error {
		if req.IsDeposit {
			return bk.RecordDeposit(req.AmountCents, now)
		}
		return bk.RecordPayment(req.AmountCents, now)
	})
}

// RefundPayment marks collected money as returned.
func (s *BookingService) RefundPayment(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	return s.mutate(ctx, id, "", func(bk *bookingDomain.Booking, now time.Time) error {
		return bk.Refund(now)
	})
}

// WalkInCheckIn creates a confirmed booking starting today and checks the
// guest straight in.
func (s *BookingService) WalkInCheckIn(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	now := s.clock.Now()
	req.Confirmed = true
	req.CheckInDate = domain.DateOf(now)
	if req.Source == "" {
		req.Source = "walk_in"
	}

	if err := s.ensureRoomPresentable(ctx, req.RoomID); err != nil {
		return nil, err
	}

	created, err := s.CreateBooking(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.CheckInBooking(ctx, created.ID)
}

// --- helpers ---

// mutate loads a booking, applies fn, bumps the version and persists with
// optimistic locking, then publishes eventType if non-empty.
func (s *BookingService) mutate(ctx context.Context, id uuid.UUID, eventType string, fn func(*bookingDomain.Booking, time.Time) error) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.mutateLoaded(ctx, bk, eventType, fn)
}

func (s *BookingService) mutateLoaded(ctx context.Context, bk *bookingDomain.Booking, eventType string, fn func(*bookingDomain.Booking, time.Time) error) (*BookingDTO, error) {
	now := s.clock.Now()
	if err := fn(bk, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	if eventType != "" {
		s.publishBookingEvent(ctx, eventType, bk)
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// roomPresentable rejects check-in while the room is dirty, being cleaned,
// under maintenance or out of order.
func roomPresentable(room *roomDomain.Room) error {
	switch room.Status() {
	case roomDomain.StatusDirty, roomDomain.StatusCleaning, roomDomain.StatusMaintenance, roomDomain.StatusOutOfOrder:
		return domain.NewConflictError(fmt.Sprintf(
			"room %s is %s and not ready for check-in", room.RoomNumber(), room.Status()))
	}
	return nil
}

func (s *BookingService) ensureRoomPresentable(ctx context.Context, roomID uuid.UUID) error {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	return roomPresentable(room)
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking) {
	if s.producer == nil {
		return
	}
	s.producer.Publish(ctx, events.TopicBookingEvents, eventType, bk.ID().String(), events.BookingEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		GuestID:       bk.GuestID(),
		RoomID:        bk.RoomID(),
		Status:        string(bk.Status()),
		PaymentStatus: string(bk.PaymentStatus()),
		CheckInDate:   bk.CheckInDate(),
		CheckOutDate:  bk.CheckOutDate(),
		TotalCents:    bk.TotalCents(),
	})
}
