package room

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stayflow/service-hotel/internal/domain"
)

// StatusWindow is the time span attached to a time-bounded explicit state
// (maintenance, cleaning, manual occupancy).
type StatusWindow struct {
	Start time.Time
	End   time.Time
}

// Room is the physical inventory entity. Its explicit status field is gated
// by ApplyExplicitStatus for human-initiated edits; system paths (checkout,
// sweep, reassignment) use the Mark* methods.
type Room struct {
	id           uuid.UUID
	roomNumber   string
	roomType     string
	priceCents   int64
	maxOccupancy int
	floor        int
	description  string

	status           ExplicitStatus
	statusNotes      string
	maintenanceStart *time.Time
	maintenanceEnd   *time.Time
	cleaningStart    *time.Time
	cleaningEnd      *time.Time
	reservedStart    *time.Time
	reservedEnd      *time.Time
	occupiedStart    *time.Time
	occupiedEnd      *time.Time

	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

// NewRoom creates a new Room in available status.
func NewRoom(roomNumber, roomType string, priceCents int64, maxOccupancy, floor int, description string, now time.Time) (*Room, error) {
	if roomNumber == "" {
		return nil, domain.NewValidationError("room number is required")
	}
	if roomType == "" {
		return nil, domain.NewValidationError("room type is required")
	}
	if priceCents < 0 {
		return nil, domain.NewValidationError("price per night cannot be negative")
	}
	if maxOccupancy < 1 {
		return nil, domain.NewValidationError("max occupancy must be at least 1")
	}
	now = now.UTC()
	return &Room{
		id:           uuid.New(),
		roomNumber:   roomNumber,
		roomType:     roomType,
		priceCents:   priceCents,
		maxOccupancy: maxOccupancy,
		floor:        floor,
		description:  description,
		status:       StatusAvailable,
		isActive:     true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructRoom rebuilds a Room from persistence data (no validation).
func ReconstructRoom(
	id uuid.UUID,
	roomNumber, roomType string,
	priceCents int64,
	maxOccupancy, floor int,
	description string,
	status ExplicitStatus,
	statusNotes string,
	maintenanceStart, maintenanceEnd *time.Time,
	cleaningStart, cleaningEnd *time.Time,
	reservedStart, reservedEnd *time.Time,
	occupiedStart, occupiedEnd *time.Time,
	isActive bool,
	createdAt, updatedAt time.Time,
) *Room {
	return &Room{
		id:               id,
		roomNumber:       roomNumber,
		roomType:         roomType,
		priceCents:       priceCents,
		maxOccupancy:     maxOccupancy,
		floor:            floor,
		description:      description,
		status:           status,
		statusNotes:      statusNotes,
		maintenanceStart: maintenanceStart,
		maintenanceEnd:   maintenanceEnd,
		cleaningStart:    cleaningStart,
		cleaningEnd:      cleaningEnd,
		reservedStart:    reservedStart,
		reservedEnd:      reservedEnd,
		occupiedStart:    occupiedStart,
		occupiedEnd:      occupiedEnd,
		isActive:         isActive,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

func (r *Room) ID() uuid.UUID               { return r.id }
func (r *Room) RoomNumber() string          { return r.roomNumber }
func (r *Room) RoomType() string            { return r.roomType }
func (r *Room) PriceCents() int64           { return r.priceCents }
func (r *Room) MaxOccupancy() int           { return r.maxOccupancy }
func (r *Room) Floor() int                  { return r.floor }
func (r *Room) Description() string         { return r.description }
func (r *Room) Status() ExplicitStatus      { return r.status }
func (r *Room) StatusNotes() string         { return r.statusNotes }
func (r *Room) MaintenanceStart() *time.Time { return r.maintenanceStart }
func (r *Room) MaintenanceEnd() *time.Time  { return r.maintenanceEnd }
func (r *Room) CleaningStart() *time.Time   { return r.cleaningStart }
func (r *Room) CleaningEnd() *time.Time     { return r.cleaningEnd }
func (r *Room) ReservedStart() *time.Time   { return r.reservedStart }
func (r *Room) ReservedEnd() *time.Time     { return r.reservedEnd }
func (r *Room) OccupiedStart() *time.Time   { return r.occupiedStart }
func (r *Room) OccupiedEnd() *time.Time     { return r.occupiedEnd }
func (r *Room) IsActive() bool              { return r.isActive }
func (r *Room) CreatedAt() time.Time        { return r.createdAt }
func (r *Room) UpdatedAt() time.Time        { return r.updatedAt }

// StatusWindowFor returns the window attached to the given explicit state, if
// any.
func (r *Room) StatusWindowFor(status ExplicitStatus) *StatusWindow {
	pair := func(start, end *time.Time) *StatusWindow {
		if start == nil || end == nil {
			return nil
		}
		return &StatusWindow{Start: *start, End: *end}
	}
	switch status {
	case StatusMaintenance:
		return pair(r.maintenanceStart, r.maintenanceEnd)
	case StatusCleaning:
		return pair(r.cleaningStart, r.cleaningEnd)
	case StatusReserved:
		return pair(r.reservedStart, r.reservedEnd)
	case StatusOccupied:
		return pair(r.occupiedStart, r.occupiedEnd)
	default:
		return nil
	}
}

// --- Explicit status edits (human-initiated, validator-gated) ---

// ApplyExplicitStatus performs a human-initiated status change, enforcing the
// transition rules. effective is the room's current effective status as seen
// by Resolve; booking-derived occupancy blocks every edit except the
// occupied→occupied window refresh.
//
// Destination rules: available is never settable here (it is only reachable
// via the sweep, end-of-state, or checkout), and reserved must always
// originate from a real booking.
func (r *Room) ApplyExplicitStatus(target ExplicitStatus, window *StatusWindow, notes string, effective EffectiveStatus, now time.Time) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid room status: %s", target))
	}
	switch target {
	case StatusAvailable:
		return domain.NewInvalidTransitionError("room", string(effective), string(target))
	case StatusReserved:
		return domain.NewValidationError(
			"rooms cannot be reserved directly; create a booking with guest details instead")
	}

	if effective == EffectiveOccupied {
		// The only edit allowed on an occupied room is refreshing the
		// tracked date window of a manual occupancy.
		if target == StatusOccupied && r.status == StatusOccupied {
			if window == nil {
				return domain.NewValidationError("occupied window refresh requires a date range")
			}
			return r.setOccupiedWindow(*window, notes, now)
		}
		return domain.NewInvalidTransitionError("room", string(EffectiveOccupied), string(target))
	}

	if effective != EffectiveAvailable {
		return domain.NewInvalidTransitionError("room", string(effective), string(target))
	}

	switch target {
	case StatusMaintenance, StatusCleaning:
		if window == nil {
			return domain.NewValidationError(fmt.Sprintf("%s requires a start and end timestamp", target))
		}
		if !window.End.After(window.Start) {
			return domain.NewValidationError(fmt.Sprintf("%s window end must be after start", target))
		}
	case StatusOccupied:
		// Manual occupancy not tied to a formal booking.
		if window == nil {
			return domain.NewValidationError("marking a room occupied requires a date range")
		}
	}

	r.clearWindows()
	r.status = target
	r.statusNotes = notes
	if window != nil {
		switch target {
		case StatusMaintenance:
			r.maintenanceStart, r.maintenanceEnd = &window.Start, &window.End
		case StatusCleaning:
			r.cleaningStart, r.cleaningEnd = &window.Start, &window.End
		case StatusOccupied:
			r.occupiedStart, r.occupiedEnd = &window.Start, &window.End
		}
	}
	r.touch(now)
	return nil
}

func (r *Room) setOccupiedWindow(window StatusWindow, notes string, now time.Time) error {
	if !window.End.After(window.Start) {
		return domain.NewValidationError("occupied window end must be after start")
	}
	r.occupiedStart, r.occupiedEnd = &window.Start, &window.End
	if notes != "" {
		r.statusNotes = notes
	}
	r.touch(now)
	return nil
}

// EndExplicitState reverts a time-bounded explicit state back to available
// ahead of its natural expiry. Equivalent to what the sweep does when the
// window lapses.
func (r *Room) EndExplicitState(effective EffectiveStatus, now time.Time) error {
	if effective == EffectiveOccupied {
		return domain.NewValidationError("cannot clear status for an occupied room; check out the guest first")
	}
	if r.status == StatusAvailable {
		return domain.NewValidationError("room has no explicit state to end")
	}
	r.MarkAvailable(now)
	return nil
}

// --- System paths (checkout, sweep, reassignment) ---

// MarkDirty flags the room as needing housekeeping after a guest vacated.
func (r *Room) MarkDirty(now time.Time) {
	r.clearWindows()
	r.status = StatusDirty
	r.touch(now)
}

// MarkAvailable returns the room to inventory, clearing any window fields.
func (r *Room) MarkAvailable(now time.Time) {
	r.clearWindows()
	r.status = StatusAvailable
	r.statusNotes = ""
	r.touch(now)
}

// MarkOccupied caches the occupied flag when a guest is placed in the room.
func (r *Room) MarkOccupied(now time.Time) {
	r.clearWindows()
	r.status = StatusOccupied
	r.touch(now)
}

func (r *Room) clearWindows() {
	r.maintenanceStart, r.maintenanceEnd = nil, nil
	r.cleaningStart, r.cleaningEnd = nil, nil
	r.reservedStart, r.reservedEnd = nil, nil
	r.occupiedStart, r.occupiedEnd = nil, nil
}

func (r *Room) touch(now time.Time) {
	r.updatedAt = now.UTC()
}
