package roomchange

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for room change records.
type Repository interface {
	// FindByBookingID retrieves the change history for a booking, most recent
	// first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Record, error)

	// FindByRoomID retrieves changes involving the given room (as source or
	// target) with pagination.
	FindByRoomID(ctx context.Context, roomID uuid.UUID, page, limit int) ([]*Record, int64, error)

	// Create persists a new change record.
	Create(ctx context.Context, record *Record) error
}
