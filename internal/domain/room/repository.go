package room

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for room entities.
type Repository interface {
	// FindByID retrieves a room by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindByIDForUpdate retrieves a room holding a row lock for the duration
	// of the enclosing transaction. Outside a transaction it behaves as
	// FindByID.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindByNumber retrieves a room by its room number.
	FindByNumber(ctx context.Context, number string) (*Room, error)

	// ListAll retrieves all active rooms with pagination.
	ListAll(ctx context.Context, page, limit int) ([]*Room, int64, error)

	// ListByType retrieves active rooms of the given type with pagination.
	ListByType(ctx context.Context, roomType string, page, limit int) ([]*Room, int64, error)

	// ListAllUnpaged retrieves every active room. Used by the sweep and the
	// occupancy summary.
	ListAllUnpaged(ctx context.Context) ([]*Room, error)

	// Create persists a new room.
	Create(ctx context.Context, room *Room) error

	// Update persists changes to an existing room.
	Update(ctx context.Context, room *Room) error
}
