package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable booking number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindByGuestID retrieves bookings belonging to a guest with pagination.
	FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindActiveByRoomID retrieves the bookings currently occupying the given
	// room (checked-in statuses whose stay window contains the given date).
	FindActiveByRoomID(ctx context.Context, roomID uuid.UUID, date time.Time) ([]*Booking, error)

	// FindOverlapping retrieves room-blocking bookings on the room whose
	// [check-in, check-out) range intersects the given range.
	FindOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) ([]*Booking, error)

	// FindCurrentForRooms retrieves, for each given room, the room-blocking
	// bookings whose stay could overlap the given date. Used by the status
	// resolver read path.
	FindCurrentForRooms(ctx context.Context, roomIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]*Booking, error)

	// FindArrivalsDue retrieves confirmed bookings whose check-in date is on
	// or before the given date. Used by the sweep's auto check-in step.
	FindArrivalsDue(ctx context.Context, date time.Time) ([]*Booking, error)

	// FindDeparted retrieves checked-out bookings whose actual check-out
	// falls on the given date. Used by the sweep's vacated-room step.
	FindDeparted(ctx context.Context, date time.Time) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination.
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Create persists a new booking. The room's availability for the
	// booking's date range is re-checked inside the same atomic unit under a
	// per-room exclusion; an overlapping claim returns a ConflictError.
	Create(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	// A stale version returns a ConflictError.
	Update(ctx context.Context, booking *Booking) error
}
