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
	bookingDomain "github.com/stayflow/service-hotel/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber       string     `gorm:"uniqueIndex;not null;size:20"`
	GuestID             uuid.UUID  `gorm:"type:uuid;index;not null"`
	GuestName           string     `gorm:"not null;size:255"`
	CompanyID           *uuid.UUID `gorm:"type:uuid;index"`
	RoomID              uuid.UUID  `gorm:"type:uuid;index;not null"`
	CheckInDate         time.Time  `gorm:"not null;index"`
	CheckOutDate        time.Time  `gorm:"not null;index"`
	Adults              int        `gorm:"not null;default:1"`
	Children            int        `gorm:"not null;default:0"`
	ExtraBeds           int        `gorm:"not null;default:0"`
	RoomRateCents       int64      `gorm:"not null"`
	SubtotalCents       int64      `gorm:"not null"`
	TaxCents            int64      `gorm:"not null"`
	TotalCents          int64      `gorm:"not null"`
	Status              string     `gorm:"not null;size:30;index"`
	PaymentStatus       string     `gorm:"not null;size:30;index"`
	ActualCheckIn       *time.Time `gorm:""`
	ActualCheckOut      *time.Time `gorm:""`
	DepositCents        int64      `gorm:"not null;default:0"`
	DepositPaid         bool       `gorm:"not null;default:false"`
	DepositPaidAt       *time.Time `gorm:""`
	IsComplimentary     bool       `gorm:"not null;default:false"`
	ComplimentaryReason string     `gorm:"size:500"`
	ComplimentaryStart  *time.Time `gorm:""`
	ComplimentaryEnd    *time.Time `gorm:""`
	ComplimentaryNights int        `gorm:"not null;default:0"`
	OriginalTotalCents  *int64     `gorm:""`
	CancellationReason  string     `gorm:"size:500"`
	CancelledAt         *time.Time `gorm:""`
	CancelledBy         *uuid.UUID `gorm:"type:uuid"`
	Source              string     `gorm:"size:50"`
	SpecialRequests     string     `gorm:"size:1000"`
	Version             int64      `gorm:"not null;default:1"`
	CreatedAt           time.Time  `gorm:"not null"`
	UpdatedAt           time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByGuestID retrieves bookings for a specific guest with pagination.
func (r *GormBookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("guest_id = ?", guestID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count guest bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find guest bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindActiveByRoomID retrieves the bookings currently occupying the room on
// the given date.
func (r *GormBookingRepository) FindActiveByRoomID(ctx context.Context, roomID uuid.UUID, date time.Time) ([]*bookingDomain.Booking, error) {
	day := domain.DateOf(date)
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("room_id = ? AND status IN ? AND check_in_date <= ? AND check_out_date >= ?",
			roomID, bookingDomain.OccupyingStatuses(), day, day).
		Order("check_in_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find active bookings for room: %w", err)
	}
	bookings, _, err := toDomainBookings(models, 0)
	return bookings, err
}

// FindOverlapping retrieves room-blocking bookings whose stay range intersects
// [checkIn, checkOut).
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("room_id = ? AND status IN ? AND check_in_date < ? AND check_out_date > ?",
			roomID, bookingDomain.BlockingStatuses(), domain.DateOf(checkOut), domain.DateOf(checkIn)).
		Order("check_in_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	bookings, _, err := toDomainBookings(models, 0)
	return bookings, err
}

// FindCurrentForRooms retrieves, per room, the room-blocking bookings whose
// stay has not yet ended as of the given date. This is the input set for the
// status resolver.
func (r *GormBookingRepository) FindCurrentForRooms(ctx context.Context, roomIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]*bookingDomain.Booking, error) {
	if len(roomIDs) == 0 {
		return map[uuid.UUID][]*bookingDomain.Booking{}, nil
	}
	day := domain.DateOf(date)
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("room_id IN ? AND status IN ? AND check_out_date >= ?",
			roomIDs, bookingDomain.BlockingStatuses(), day).
		Order("check_in_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find current bookings for rooms: %w", err)
	}

	result := make(map[uuid.UUID][]*bookingDomain.Booking, len(roomIDs))
	for _, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		result[m.RoomID] = append(result[m.RoomID], bk)
	}
	return result, nil
}

// FindArrivalsDue retrieves confirmed bookings whose check-in date is on or
// before the given date.
func (r *GormBookingRepository) FindArrivalsDue(ctx context.Context, date time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND check_in_date <= ?", string(bookingDomain.StatusConfirmed), domain.DateOf(date)).
		Order("check_in_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find due arrivals: %w", err)
	}
	bookings, _, err := toDomainBookings(models, 0)
	return bookings, err
}

// FindDeparted retrieves checked-out bookings whose actual check-out falls on
// the given calendar day.
func (r *GormBookingRepository) FindDeparted(ctx context.Context, date time.Time) ([]*bookingDomain.Booking, error) {
	day := domain.DateOf(date)
	next := day.AddDate(0, 0, 1)
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND actual_check_out >= ? AND actual_check_out < ?",
			[]string{string(bookingDomain.StatusCheckedOut), string(bookingDomain.StatusCompleted)}, day, next).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find departed bookings: %w", err)
	}
	bookings, _, err := toDomainBookings(models, 0)
	return bookings, err
}

// ListAll retrieves all bookings with pagination.
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Create persists a new booking. The target room row is locked for the
// duration of the transaction and the date-range overlap check is repeated
// under that lock, so two concurrent claims on the same room cannot both
// commit.
func (r *GormBookingRepository) Create(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room RoomModel
		q := tx.Where("id = ?", model.RoomID)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Room", model.RoomID.String())
			}
			return fmt.Errorf("failed to lock room: %w", err)
		}

		var overlapping int64
		if err := tx.Model(&BookingModel{}).
			Where("room_id = ? AND status IN ? AND check_in_date < ? AND check_out_date > ?",
				model.RoomID, bookingDomain.BlockingStatuses(), model.CheckOutDate, model.CheckInDate).
			Count(&overlapping).Error; err != nil {
			return fmt.Errorf("failed to check booking overlap: %w", err)
		}
		if overlapping > 0 {
			return domain.NewConflictError(fmt.Sprintf(
				"room %s already has a booking overlapping %s to %s",
				room.RoomNumber,
				model.CheckInDate.Format("2006-01-02"),
				model.CheckOutDate.Format("2006-01-02")))
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
	return err
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the stored version matches the version the aggregate was
	// loaded at (current version - 1 since IncrementVersion was called).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"guest_name":           model.GuestName,
			"room_id":              model.RoomID,
			"check_in_date":        model.CheckInDate,
			"check_out_date":       model.CheckOutDate,
			"adults":               model.Adults,
			"children":             model.Children,
			"extra_beds":           model.ExtraBeds,
			"room_rate_cents":      model.RoomRateCents,
			"subtotal_cents":       model.SubtotalCents,
			"tax_cents":            model.TaxCents,
			"total_cents":          model.TotalCents,
			"status":               model.Status,
			"payment_status":       model.PaymentStatus,
			"actual_check_in":      model.ActualCheckIn,
			"actual_check_out":     model.ActualCheckOut,
			"deposit_cents":        model.DepositCents,
			"deposit_paid":         model.DepositPaid,
			"deposit_paid_at":      model.DepositPaidAt,
			"is_complimentary":     model.IsComplimentary,
			"complimentary_reason": model.ComplimentaryReason,
			"complimentary_start":  model.ComplimentaryStart,
			"complimentary_end":    model.ComplimentaryEnd,
			"complimentary_nights": model.ComplimentaryNights,
			"original_total_cents": model.OriginalTotalCents,
			"cancellation_reason":  model.CancellationReason,
			"cancelled_at":         model.CancelledAt,
			"cancelled_by":         model.CancelledBy,
			"special_requests":     model.SpecialRequests,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:                  bk.ID(),
		BookingNumber:       bk.BookingNumber(),
		GuestID:             bk.GuestID(),
		GuestName:           bk.GuestName(),
		CompanyID:           bk.CompanyID(),
		RoomID:              bk.RoomID(),
		CheckInDate:         bk.CheckInDate(),
		CheckOutDate:        bk.CheckOutDate(),
		Adults:              bk.Adults(),
		Children:            bk.Children(),
		ExtraBeds:           bk.ExtraBeds(),
		RoomRateCents:       bk.RoomRateCents(),
		SubtotalCents:       bk.SubtotalCents(),
		TaxCents:            bk.TaxCents(),
		TotalCents:          bk.TotalCents(),
		Status:              string(bk.Status()),
		PaymentStatus:       string(bk.PaymentStatus()),
		ActualCheckIn:       bk.ActualCheckIn(),
		ActualCheckOut:      bk.ActualCheckOut(),
		DepositCents:        bk.DepositCents(),
		DepositPaid:         bk.DepositPaid(),
		DepositPaidAt:       bk.DepositPaidAt(),
		IsComplimentary:     bk.IsComplimentary(),
		ComplimentaryReason: bk.ComplimentaryReason(),
		ComplimentaryStart:  bk.ComplimentaryStart(),
		ComplimentaryEnd:    bk.ComplimentaryEnd(),
		ComplimentaryNights: bk.ComplimentaryNights(),
		OriginalTotalCents:  bk.OriginalTotalCents(),
		CancellationReason:  bk.CancellationReason(),
		CancelledAt:         bk.CancelledAt(),
		CancelledBy:         bk.CancelledBy(),
		Source:              bk.Source(),
		SpecialRequests:     bk.SpecialRequests(),
		Version:             bk.Version(),
		CreatedAt:           bk.CreatedAt(),
		UpdatedAt:           bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.GuestID,
		m.GuestName,
		m.CompanyID,
		m.RoomID,
		m.CheckInDate,
		m.CheckOutDate,
		m.Adults,
		m.Children,
		m.ExtraBeds,
		m.RoomRateCents,
		m.SubtotalCents,
		m.TaxCents,
		m.TotalCents,
		status,
		paymentStatus,
		m.ActualCheckIn,
		m.ActualCheckOut,
		m.DepositCents,
		m.DepositPaid,
		m.DepositPaidAt,
		m.IsComplimentary,
		m.ComplimentaryReason,
		m.ComplimentaryStart,
		m.ComplimentaryEnd,
		m.ComplimentaryNights,
		m.OriginalTotalCents,
		m.CancellationReason,
		m.CancelledAt,
		m.CancelledBy,
		m.Source,
		m.SpecialRequests,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
