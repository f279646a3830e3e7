package roomchange

import (
	"time"

	"github.com/google/uuid"

	"github.com/stayflow/service-hotel/internal/domain"
)

// Record is the audit trail entry written whenever a guest is moved between
// rooms mid-stay. The booking number, guest and room numbers are denormalized
// onto the record so the trail stays readable even if the booking or rooms
// are later removed.
type Record struct {
	id             uuid.UUID
	bookingID      uuid.UUID
	bookingNumber  string
	guestID        uuid.UUID
	guestName      string
	fromRoomID     uuid.UUID
	fromRoomNumber string
	toRoomID       uuid.UUID
	toRoomNumber   string
	reason         string
	changedBy      string
	changedAt      time.Time
}

// NewRecord creates an audit record for a room move.
func NewRecord(
	bookingID, guestID, fromRoomID, toRoomID uuid.UUID,
	bookingNumber, guestName, fromRoomNumber, toRoomNumber, reason, changedBy string,
	now time.Time,
) (*Record, error) {
	if bookingID == uuid.Nil || bookingNumber == "" {
		return nil, domain.NewValidationError("booking reference is required")
	}
	if guestID == uuid.Nil {
		return nil, domain.NewValidationError("guest reference is required")
	}
	if fromRoomID == uuid.Nil || toRoomID == uuid.Nil {
		return nil, domain.NewValidationError("source and target room IDs are required")
	}
	if fromRoomID == toRoomID {
		return nil, domain.NewValidationError("source and target rooms must differ")
	}
	if fromRoomNumber == "" || toRoomNumber == "" {
		return nil, domain.NewValidationError("source and target room numbers are required")
	}
	if reason == "" {
		return nil, domain.NewValidationError("a reason for the room change is required")
	}
	return &Record{
		id:             uuid.New(),
		bookingID:      bookingID,
		bookingNumber:  bookingNumber,
		guestID:        guestID,
		guestName:      guestName,
		fromRoomID:     fromRoomID,
		fromRoomNumber: fromRoomNumber,
		toRoomID:       toRoomID,
		toRoomNumber:   toRoomNumber,
		reason:         reason,
		changedBy:      changedBy,
		changedAt:      now.UTC(),
	}, nil
}

// ReconstructRecord rebuilds a Record from persistence data.
func ReconstructRecord(
	id, bookingID, guestID, fromRoomID, toRoomID uuid.UUID,
	bookingNumber, guestName, fromRoomNumber, toRoomNumber, reason, changedBy string,
	changedAt time.Time,
) *Record {
	return &Record{
		id:             id,
		bookingID:      bookingID,
		bookingNumber:  bookingNumber,
		guestID:        guestID,
		guestName:      guestName,
		fromRoomID:     fromRoomID,
		fromRoomNumber: fromRoomNumber,
		toRoomID:       toRoomID,
		toRoomNumber:   toRoomNumber,
		reason:         reason,
		changedBy:      changedBy,
		changedAt:      changedAt,
	}
}

func (r *Record) ID() uuid.UUID          { return r.id }
func (r *Record) BookingID() uuid.UUID   { return r.bookingID }
func (r *Record) BookingNumber() string  { return r.bookingNumber }
func (r *Record) GuestID() uuid.UUID     { return r.guestID }
func (r *Record) GuestName() string      { return r.guestName }
func (r *Record) FromRoomID() uuid.UUID  { return r.fromRoomID }
func (r *Record) FromRoomNumber() string { return r.fromRoomNumber }
func (r *Record) ToRoomID() uuid.UUID    { return r.toRoomID }
func (r *Record) ToRoomNumber() string   { return r.toRoomNumber }
func (r *Record) Reason() string         { return r.reason }
func (r *Record) ChangedBy() string      { return r.changedBy }
func (r *Record) ChangedAt() time.Time   { return r.changedAt }
