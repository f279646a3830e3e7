package room

import (
	"fmt"
	"time"

	"github.com/stayflow/service-hotel/internal/domain"
	"github.com/stayflow/service-hotel/internal/domain/booking"
)

// EffectiveStatus is the status a room presents to consumers. It is always
// computed by Resolve; the persisted ExplicitStatus is only one input.
type EffectiveStatus string

const (
	EffectiveAvailable   EffectiveStatus = "available"
	EffectiveOccupied    EffectiveStatus = "occupied"
	EffectiveReserved    EffectiveStatus = "reserved"
	EffectiveCleaning    EffectiveStatus = "cleaning"
	EffectiveMaintenance EffectiveStatus = "maintenance"
	EffectiveDirty       EffectiveStatus = "dirty"
	EffectiveOutOfOrder  EffectiveStatus = "out_of_order"
)

// Resolution is the outcome of resolving a room's effective status at a point
// in time.
type Resolution struct {
	Status EffectiveStatus

	// Booking is the booking that determined the status, when one did.
	Booking *booking.Booking

	// ArrivalToday is true when the room is reserved and the driving
	// booking's check-in date is on or before the resolution date.
	ArrivalToday bool

	// Inconsistent is true when the stored data contradicts itself, e.g. two
	// occupying bookings on one room, or an explicit reserved flag with no
	// backing booking. The resolver still returns a best-effort status; the
	// inconsistency is surfaced for the sweep and logging, never silently
	// repaired here.
	Inconsistent bool
	Note         string
}

// Resolve computes the effective status of a room for the given date.
//
// Priority, highest first:
//  1. occupied: a checked-in booking whose stay contains the date
//  2. maintenance / out_of_order: explicit out-of-service states
//  3. reserved: a confirmed or pending booking arriving on or before the date
//  4. reserved: a future confirmed or pending booking
//  5. explicit occupied (window containing the date), cleaning, dirty
//  6. available
//
// A guest physically in the room can never be hidden, so occupancy outranks
// even out-of-service flags. Out-of-service flags in turn outrank
// reservations: a room under repair must not present as bookable.
//
// bookings must be the room-blocking bookings for this room around the date
// (see booking.Repository.FindCurrentForRooms). date is truncated to a UTC
// day boundary.
func Resolve(r *Room, bookings []*booking.Booking, date time.Time) Resolution {
	today := domain.DateOf(date)

	var occupying []*booking.Booking
	var arrived, future []*booking.Booking
	for _, b := range bookings {
		switch {
		case b.Status().IsOccupying() && b.ContainsDate(today):
			occupying = append(occupying, b)
		case b.Status().BlocksRoom() && !b.Status().IsOccupying():
			if !b.CheckInDate().After(today) {
				arrived = append(arrived, b)
			} else {
				future = append(future, b)
			}
		}
	}

	if len(occupying) > 0 {
		res := Resolution{Status: EffectiveOccupied, Booking: earliestCheckIn(occupying)}
		if len(occupying) > 1 {
			res.Inconsistent = true
			res.Note = fmt.Sprintf("%d checked-in bookings occupy room %s simultaneously", len(occupying), r.RoomNumber())
		}
		return res
	}

	if r.Status().TakesRoomOutOfService() {
		if r.Status() == StatusOutOfOrder {
			return Resolution{Status: EffectiveOutOfOrder}
		}
		return Resolution{Status: EffectiveMaintenance}
	}

	if len(arrived) > 0 {
		return Resolution{Status: EffectiveReserved, Booking: earliestCheckIn(arrived), ArrivalToday: true}
	}
	if len(future) > 0 {
		return Resolution{Status: EffectiveReserved, Booking: earliestCheckIn(future)}
	}

	switch r.Status() {
	case StatusCleaning:
		return Resolution{Status: EffectiveCleaning}
	case StatusDirty:
		return Resolution{Status: EffectiveDirty}
	case StatusOccupied:
		// Manual occupancy only holds while its window contains the date.
		if w := r.StatusWindowFor(StatusOccupied); w != nil && windowContains(*w, today) {
			return Resolution{Status: EffectiveOccupied}
		}
		return Resolution{
			Status:       EffectiveAvailable,
			Inconsistent: true,
			Note:         fmt.Sprintf("room %s flagged occupied with no current stay", r.RoomNumber()),
		}
	case StatusReserved:
		// An explicit reserved flag must be backed by a booking; with none
		// present the room is effectively bookable.
		return Resolution{
			Status:       EffectiveAvailable,
			Inconsistent: true,
			Note:         fmt.Sprintf("room %s flagged reserved with no backing booking", r.RoomNumber()),
		}
	}

	return Resolution{Status: EffectiveAvailable}
}

// earliestCheckIn picks the booking with the earliest check-in date,
// tie-breaking on creation time so the result is deterministic.
func earliestCheckIn(bookings []*booking.Booking) *booking.Booking {
	best := bookings[0]
	for _, b := range bookings[1:] {
		if b.CheckInDate().Before(best.CheckInDate()) ||
			(b.CheckInDate().Equal(best.CheckInDate()) && b.CreatedAt().Before(best.CreatedAt())) {
			best = b
		}
	}
	return best
}

func windowContains(w StatusWindow, date time.Time) bool {
	return !date.Before(domain.DateOf(w.Start)) && !date.After(domain.DateOf(w.End))
}
