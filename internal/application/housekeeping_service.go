package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayflow/service-hotel/internal/domain"
	bookingDomain "github.com/stayflow/service-hotel/internal/domain/booking"
	roomDomain "github.com/stayflow/service-hotel/internal/domain/room"
)

// SweepReport summarizes one housekeeping sweep run.
type SweepReport struct {
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	ExpiredWindows    int       `json:"expired_windows"`
	VacatedRooms      int       `json:"vacated_rooms"`
	AutoCheckIns      int       `json:"auto_check_ins"`
	Inconsistencies   []string  `json:"inconsistencies,omitempty"`
	SkippedConcurrent bool      `json:"skipped_concurrent,omitempty"`
}

// HousekeepingService runs the periodic sweep that keeps stored room statuses
// in line with the calendar. Only one sweep runs at a time; an overlapping
// trigger returns immediately with SkippedConcurrent set.
type HousekeepingService struct {
	rooms             roomDomain.Repository
	bookings          bookingDomain.Repository
	clock             domain.Clock
	vacatedRoomStatus string
	autoCheckIn       bool
	logger            *zap.Logger

	mu sync.Mutex
}

// NewHousekeepingService creates a new HousekeepingService.
func NewHousekeepingService(
	rooms roomDomain.Repository,
	bookings bookingDomain.Repository,
	clock domain.Clock,
	vacatedRoomStatus string,
	autoCheckIn bool,
	logger *zap.Logger,
) *HousekeepingService {
	return &HousekeepingService{
		rooms:             rooms,
		bookings:          bookings,
		clock:             clock,
		vacatedRoomStatus: vacatedRoomStatus,
		autoCheckIn:       autoCheckIn,
		logger:            logger,
	}
}

// RunSweep executes the sweep steps in order: expire lapsed status windows,
// surface stored-state inconsistencies, apply the vacated-room policy to
// today's departures, and optionally auto check-in overdue arrivals.
func (s *HousekeepingService) RunSweep(ctx context.Context) (*SweepReport, error) {
	if !s.mu.TryLock() {
		s.logger.Info("sweep already running, skipping trigger")
		return &SweepReport{SkippedConcurrent: true}, nil
	}
	defer s.mu.Unlock()

	now := s.clock.Now()
	report := &SweepReport{StartedAt: now}

	rooms, err := s.rooms.ListAllUnpaged(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.expireWindows(ctx, rooms, report, now); err != nil {
		return nil, err
	}
	if err := s.surfaceInconsistencies(ctx, rooms, report, now); err != nil {
		return nil, err
	}
	if err := s.processDepartures(ctx, report, now); err != nil {
		return nil, err
	}
	if s.autoCheckIn {
		if err := s.processArrivals(ctx, report, now); err != nil {
			return nil, err
		}
	}

	report.FinishedAt = s.clock.Now()
	s.logger.Info("housekeeping sweep completed",
		zap.Int("expired_windows", report.ExpiredWindows),
		zap.Int("vacated_rooms", report.VacatedRooms),
		zap.Int("auto_check_ins", report.AutoCheckIns),
		zap.Int("inconsistencies", len(report.Inconsistencies)),
	)
	return report, nil
}

// expireWindows reverts maintenance, cleaning and manual occupancy states
// whose windows have lapsed.
func (s *HousekeepingService) expireWindows(ctx context.Context, rooms []*roomDomain.Room, report *SweepReport, now time.Time) error {
	for _, r := range rooms {
		status := r.Status()
		var window *roomDomain.StatusWindow
		switch status {
		case roomDomain.StatusMaintenance, roomDomain.StatusCleaning, roomDomain.StatusOccupied:
			window = r.StatusWindowFor(status)
		default:
			continue
		}
		if window == nil || window.End.After(now) {
			continue
		}

		// A manually occupied room past its window goes through the vacated
		// policy rather than straight to available.
		if status == roomDomain.StatusOccupied && s.vacatedRoomStatus != string(roomDomain.StatusAvailable) {
			r.MarkDirty(now)
		} else {
			r.MarkAvailable(now)
		}
		if err := s.rooms.Update(ctx, r); err != nil {
			return err
		}
		report.ExpiredWindows++
		s.logger.Info("expired room status window",
			zap.String("room_number", r.RoomNumber()),
			zap.String("was", string(status)),
		)
	}
	return nil
}

// surfaceInconsistencies resolves every room and records contradictions
// between stored flags and booking data. Nothing is silently repaired.
func (s *HousekeepingService) surfaceInconsistencies(ctx context.Context, rooms []*roomDomain.Room, report *SweepReport, now time.Time) error {
	ids := make([]uuid.UUID, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID()
	}
	byRoom, err := s.bookings.FindCurrentForRooms(ctx, ids, now)
	if err != nil {
		return err
	}
	for _, r := range rooms {
		res := roomDomain.Resolve(r, byRoom[r.ID()], now)
		if res.Inconsistent {
			report.Inconsistencies = append(report.Inconsistencies, res.Note)
			s.logger.Warn("room state inconsistency",
				zap.String("room_number", r.RoomNumber()),
				zap.String("note", res.Note),
			)
		}
	}
	return nil
}

// processDepartures applies the vacated-room policy to rooms whose guests
// checked out today and whose room flag was not already updated.
func (s *HousekeepingService) processDepartures(ctx context.Context, report *SweepReport, now time.Time) error {
	departed, err := s.bookings.FindDeparted(ctx, now)
	if err != nil {
		return err
	}
	for _, bk := range departed {
		room, err := s.rooms.FindByID(ctx, bk.RoomID())
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return err
		}
		// Skip rooms already handled by checkout or re-occupied since.
		if room.Status() != roomDomain.StatusOccupied {
			continue
		}
		active, err := s.bookings.FindActiveByRoomID(ctx, room.ID(), now)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			continue
		}

		if s.vacatedRoomStatus == string(roomDomain.StatusAvailable) {
			room.MarkAvailable(now)
		} else {
			room.MarkDirty(now)
		}
		if err := s.rooms.Update(ctx, room); err != nil {
			return err
		}
		report.VacatedRooms++
	}
	return nil
}

// processArrivals checks in confirmed bookings whose check-in date has
// arrived, marking them distinguishably as auto checked in.
func (s *HousekeepingService) processArrivals(ctx context.Context, report *SweepReport, now time.Time) error {
	due, err := s.bookings.FindArrivalsDue(ctx, now)
	if err != nil {
		return err
	}
	for _, bk := range due {
		if err := bk.AutoCheckIn(now); err != nil {
			s.logger.Warn("auto check-in skipped",
				zap.String("booking_number", bk.BookingNumber()),
				zap.Error(err),
			)
			continue
		}
		bk.IncrementVersion()
		if err := s.bookings.Update(ctx, bk); err != nil {
			if domain.IsConflict(err) {
				continue
			}
			return err
		}

		room, err := s.rooms.FindByID(ctx, bk.RoomID())
		if err == nil {
			room.MarkOccupied(now)
			if err := s.rooms.Update(ctx, room); err != nil {
				return err
			}
		}
		report.AutoCheckIns++
	}
	return nil
}
