package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stayflow/service-hotel/internal/domain"
	roomDomain "github.com/stayflow/service-hotel/internal/domain/room"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoomNumber       string     `gorm:"uniqueIndex;not null;size:20"`
	RoomType         string     `gorm:"not null;size:50;index"`
	PriceCents       int64      `gorm:"not null"`
	MaxOccupancy     int        `gorm:"not null;default:1"`
	Floor            int        `gorm:"not null;default:0"`
	Description      string     `gorm:"size:1000"`
	Status           string     `gorm:"not null;size:30;index"`
	StatusNotes      string     `gorm:"size:500"`
	MaintenanceStart *time.Time `gorm:""`
	MaintenanceEnd   *time.Time `gorm:""`
	CleaningStart    *time.Time `gorm:""`
	CleaningEnd      *time.Time `gorm:""`
	ReservedStart    *time.Time `gorm:""`
	ReservedEnd      *time.Time `gorm:""`
	OccupiedStart    *time.Time `gorm:""`
	OccupiedEnd      *time.Time `gorm:""`
	IsActive         bool       `gorm:"not null;default:true"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string {
	return "rooms"
}

// GormRoomRepository is the GORM-based implementation of room.Repository.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID retrieves a room by its unique identifier.
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", id.String())
		}
		return nil, fmt.Errorf("failed to find room by ID: %w", err)
	}
	return toDomainRoom(&model), nil
}

// FindByIDForUpdate retrieves a room by ID holding a row lock for the
// enclosing transaction. On dialects without FOR UPDATE support this degrades
// to a plain read.
func (r *GormRoomRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	var model RoomModel
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", id.String())
		}
		return nil, fmt.Errorf("failed to lock room by ID: %w", err)
	}
	return toDomainRoom(&model), nil
}

// FindByNumber retrieves a room by its room number.
func (r *GormRoomRepository) FindByNumber(ctx context.Context, number string) (*roomDomain.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).Where("room_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", number)
		}
		return nil, fmt.Errorf("failed to find room by number: %w", err)
	}
	return toDomainRoom(&model), nil
}

// ListAll retrieves all active rooms with pagination.
func (r *GormRoomRepository) ListAll(ctx context.Context, page, limit int) ([]*roomDomain.Room, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("is_active = ?", true), page, limit)
}

// ListByType retrieves active rooms of the given type with pagination.
func (r *GormRoomRepository) ListByType(ctx context.Context, roomType string, page, limit int) ([]*roomDomain.Room, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("is_active = ? AND room_type = ?", true, roomType), page, limit)
}

func (r *GormRoomRepository) list(ctx context.Context, query *gorm.DB, page, limit int) ([]*roomDomain.Room, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Model(&RoomModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rooms: %w", err)
	}

	var models []RoomModel
	offset := (page - 1) * limit
	if err := query.
		Order("room_number ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make([]*roomDomain.Room, len(models))
	for i, m := range models {
		rooms[i] = toDomainRoom(&m)
	}
	return rooms, total, nil
}

// ListAllUnpaged retrieves every active room ordered by room number.
func (r *GormRoomRepository) ListAllUnpaged(ctx context.Context) ([]*roomDomain.Room, error) {
	var models []RoomModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("room_number ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	rooms := make([]*roomDomain.Room, len(models))
	for i, m := range models {
		rooms[i] = toDomainRoom(&m)
	}
	return rooms, nil
}

// Create persists a new room.
func (r *GormRoomRepository) Create(ctx context.Context, room *roomDomain.Room) error {
	model := toRoomModel(room)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

// Update persists changes to an existing room.
func (r *GormRoomRepository) Update(ctx context.Context, room *roomDomain.Room) error {
	model := toRoomModel(room)
	result := r.db.WithContext(ctx).
		Model(&RoomModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"room_number":       model.RoomNumber,
			"room_type":         model.RoomType,
			"price_cents":       model.PriceCents,
			"max_occupancy":     model.MaxOccupancy,
			"floor":             model.Floor,
			"description":       model.Description,
			"status":            model.Status,
			"status_notes":      model.StatusNotes,
			"maintenance_start": model.MaintenanceStart,
			"maintenance_end":   model.MaintenanceEnd,
			"cleaning_start":    model.CleaningStart,
			"cleaning_end":      model.CleaningEnd,
			"reserved_start":    model.ReservedStart,
			"reserved_end":      model.ReservedEnd,
			"occupied_start":    model.OccupiedStart,
			"occupied_end":      model.OccupiedEnd,
			"is_active":         model.IsActive,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update room: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Room", model.ID.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toRoomModel(room *roomDomain.Room) *RoomModel {
	return &RoomModel{
		ID:               room.ID(),
		RoomNumber:       room.RoomNumber(),
		RoomType:         room.RoomType(),
		PriceCents:       room.PriceCents(),
		MaxOccupancy:     room.MaxOccupancy(),
		Floor:            room.Floor(),
		Description:      room.Description(),
		Status:           string(room.Status()),
		StatusNotes:      room.StatusNotes(),
		MaintenanceStart: room.MaintenanceStart(),
		MaintenanceEnd:   room.MaintenanceEnd(),
		CleaningStart:    room.CleaningStart(),
		CleaningEnd:      room.CleaningEnd(),
		ReservedStart:    room.ReservedStart(),
		ReservedEnd:      room.ReservedEnd(),
		OccupiedStart:    room.OccupiedStart(),
		OccupiedEnd:      room.OccupiedEnd(),
		IsActive:         room.IsActive(),
		CreatedAt:        room.CreatedAt(),
		UpdatedAt:        room.UpdatedAt(),
	}
}

func toDomainRoom(m *RoomModel) *roomDomain.Room {
	return roomDomain.ReconstructRoom(
		m.ID,
		m.RoomNumber,
		m.RoomType,
		m.PriceCents,
		m.MaxOccupancy,
		m.Floor,
		m.Description,
		roomDomain.ExplicitStatus(m.Status),
		m.StatusNotes,
		m.MaintenanceStart,
		m.MaintenanceEnd,
		m.CleaningStart,
		m.CleaningEnd,
		m.ReservedStart,
		m.ReservedEnd,
		m.OccupiedStart,
		m.OccupiedEnd,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
