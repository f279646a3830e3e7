package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	roomchangeDomain "github.com/stayflow/service-hotel/internal/domain/roomchange"
)

// RoomChangeModel is the GORM model for the room_changes audit table. Booking
// number, guest and room numbers are denormalized for the audit trail.
type RoomChangeModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID      uuid.UUID `gorm:"type:uuid;index;not null"`
	BookingNumber  string    `gorm:"not null;size:20"`
	GuestID        uuid.UUID `gorm:"type:uuid;index;not null"`
	GuestName      string    `gorm:"size:255"`
	FromRoomID     uuid.UUID `gorm:"type:uuid;index;not null"`
	FromRoomNumber string    `gorm:"not null;size:20"`
	ToRoomID       uuid.UUID `gorm:"type:uuid;index;not null"`
	ToRoomNumber   string    `gorm:"not null;size:20"`
	Reason         string    `gorm:"not null;size:500"`
	ChangedBy      string    `gorm:"size:255"`
	ChangedAt      time.Time `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (RoomChangeModel) TableName() string {
	return "room_changes"
}

// GormRoomChangeRepository is the GORM-based implementation of
// roomchange.Repository.
type GormRoomChangeRepository struct {
	db *gorm.DB
}

// NewGormRoomChangeRepository creates a new GormRoomChangeRepository.
func NewGormRoomChangeRepository(db *gorm.DB) *GormRoomChangeRepository {
	return &GormRoomChangeRepository{db: db}
}

// FindByBookingID retrieves the change history for a booking, most recent
// first.
func (r *GormRoomChangeRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*roomchangeDomain.Record, error) {
	var models []RoomChangeModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("changed_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find room changes for booking: %w", err)
	}
	records := make([]*roomchangeDomain.Record, len(models))
	for i, m := range models {
		records[i] = toDomainRoomChange(&m)
	}
	return records, nil
}

// FindByRoomID retrieves changes involving the given room with pagination.
func (r *GormRoomChangeRepository) FindByRoomID(ctx context.Context, roomID uuid.UUID, page, limit int) ([]*roomchangeDomain.Record, int64, error) {
	query := r.db.WithContext(ctx).Model(&RoomChangeModel{}).
		Where("from_room_id = ? OR to_room_id = ?", roomID, roomID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count room changes: %w", err)
	}

	var models []RoomChangeModel
	offset := (page - 1) * limit
	if err := query.
		Order("changed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find room changes: %w", err)
	}

	records := make([]*roomchangeDomain.Record, len(models))
	for i, m := range models {
		records[i] = toDomainRoomChange(&m)
	}
	return records, total, nil
}

// Create persists a new change record.
func (r *GormRoomChangeRepository) Create(ctx context.Context, record *roomchangeDomain.Record) error {
	model := toRoomChangeModel(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save room change: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toRoomChangeModel(record *roomchangeDomain.Record) *RoomChangeModel {
	return &RoomChangeModel{
		ID:             record.ID(),
		BookingID:      record.BookingID(),
		BookingNumber:  record.BookingNumber(),
		GuestID:        record.GuestID(),
		GuestName:      record.GuestName(),
		FromRoomID:     record.FromRoomID(),
		FromRoomNumber: record.FromRoomNumber(),
		ToRoomID:       record.ToRoomID(),
		ToRoomNumber:   record.ToRoomNumber(),
		Reason:         record.Reason(),
		ChangedBy:      record.ChangedBy(),
		ChangedAt:      record.ChangedAt(),
	}
}

func toDomainRoomChange(m *RoomChangeModel) *roomchangeDomain.Record {
	return roomchangeDomain.ReconstructRecord(
		m.ID,
		m.BookingID,
		m.GuestID,
		m.FromRoomID,
		m.ToRoomID,
		m.BookingNumber,
		m.GuestName,
		m.FromRoomNumber,
		m.ToRoomNumber,
		m.Reason,
		m.ChangedBy,
		m.ChangedAt,
	)
}
