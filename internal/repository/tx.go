package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/stayflow/service-hotel/internal/domain/booking"
	"github.com/stayflow/service-hotel/internal/domain/room"
	"github.com/stayflow/service-hotel/internal/domain/roomchange"
)

// TxRepositories bundles repositories bound to a single database transaction.
// Mutations made through them commit or roll back together.
type TxRepositories struct {
	Bookings    booking.Repository
	Rooms       room.Repository
	RoomChanges roomchange.Repository
}

// TxManager runs multi-aggregate operations in one transaction. Used where a
// unit of work spans bookings, rooms and the change audit trail, e.g. moving
// a guest between rooms.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx executes fn inside a database transaction. Returning an error
// rolls back every change made through the provided repositories.
func (m *TxManager) WithinTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Bookings:    NewGormBookingRepository(tx),
			Rooms:       NewGormRoomRepository(tx),
			RoomChanges: NewGormRoomChangeRepository(tx),
		})
	})
}
