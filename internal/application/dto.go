package application

import (
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/stayflow/service-hotel/internal/domain/booking"
	roomDomain "github.com/stayflow/service-hotel/internal/domain/room"
	roomchangeDomain "github.com/stayflow/service-hotel/internal/domain/roomchange"
)

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                  uuid.UUID  `json:"id"`
	BookingNumber       string     `json:"booking_number"`
	GuestID             uuid.UUID  `json:"guest_id"`
	GuestName           string     `json:"guest_name"`
	CompanyID           *uuid.UUID `json:"company_id,omitempty"`
	RoomID              uuid.UUID  `json:"room_id"`
	CheckInDate         time.Time  `json:"check_in_date"`
	CheckOutDate        time.Time  `json:"check_out_date"`
	Nights              int        `json:"nights"`
	Adults              int        `json:"adults"`
	Children            int        `json:"children"`
	ExtraBeds           int        `json:"extra_beds"`
	RoomRateCents       int64      `json:"room_rate_cents"`
	SubtotalCents       int64      `json:"subtotal_cents"`
	TaxCents            int64      `json:"tax_cents"`
	TotalCents          int64      `json:"total_cents"`
	Status              string     `json:"status"`
	PaymentStatus       string     `json:"payment_status"`
	ActualCheckIn       *time.Time `json:"actual_check_in,omitempty"`
	ActualCheckOut      *time.Time `json:"actual_check_out,omitempty"`
	DepositCents        int64      `json:"deposit_cents"`
	DepositPaid         bool       `json:"deposit_paid"`
	IsComplimentary     bool       `json:"is_complimentary"`
	ComplimentaryReason string     `json:"complimentary_reason,omitempty"`
	OriginalTotalCents  *int64     `json:"original_total_cents,omitempty"`
	CancellationReason  string     `json:"cancellation_reason,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	Source              string     `json:"source,omitempty"`
	SpecialRequests     string     `json:"special_requests,omitempty"`
	Version             int64      `json:"version"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                  bk.ID(),
		BookingNumber:       bk.BookingNumber(),
		GuestID:             bk.GuestID(),
		GuestName:           bk.GuestName(),
		CompanyID:           bk.CompanyID(),
		RoomID:              bk.RoomID(),
		CheckInDate:         bk.CheckInDate(),
		CheckOutDate:        bk.CheckOutDate(),
		Nights:              bk.Nights(),
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
		IsComplimentary:     bk.IsComplimentary(),
		ComplimentaryReason: bk.ComplimentaryReason(),
		OriginalTotalCents:  bk.OriginalTotalCents(),
		CancellationReason:  bk.CancellationReason(),
		CancelledAt:         bk.CancelledAt(),
		Source:              bk.Source(),
		SpecialRequests:     bk.SpecialRequests(),
		Version:             bk.Version(),
		CreatedAt:           bk.CreatedAt(),
		UpdatedAt:           bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

// RoomDTO is the response representation of a room, carrying both the stored
// status flag and the resolved effective status.
type RoomDTO struct {
	ID              uuid.UUID  `json:"id"`
	RoomNumber      string     `json:"room_number"`
	RoomType        string     `json:"room_type"`
	PriceCents      int64      `json:"price_cents"`
	MaxOccupancy    int        `json:"max_occupancy"`
	Floor           int        `json:"floor"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status"`
	EffectiveStatus string     `json:"effective_status"`
	StatusNotes     string     `json:"status_notes,omitempty"`
	ArrivalToday    bool       `json:"arrival_today,omitempty"`
	CurrentGuest    string     `json:"current_guest,omitempty"`
	BookingID       *uuid.UUID `json:"booking_id,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toRoomDTO(r *roomDomain.Room, res roomDomain.Resolution) RoomDTO {
	dto := RoomDTO{
		ID:              r.ID(),
		RoomNumber:      r.RoomNumber(),
		RoomType:        r.RoomType(),
		PriceCents:      r.PriceCents(),
		MaxOccupancy:    r.MaxOccupancy(),
		Floor:           r.Floor(),
		Description:     r.Description(),
		Status:          string(r.Status()),
		EffectiveStatus: string(res.Status),
		StatusNotes:     r.StatusNotes(),
		ArrivalToday:    res.ArrivalToday,
		IsActive:        r.IsActive(),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}
	if res.Booking != nil {
		id := res.Booking.ID()
		dto.BookingID = &id
		dto.CurrentGuest = res.Booking.GuestName()
	}
	return dto
}

// RoomChangeDTO is the response representation of a room change record.
type RoomChangeDTO struct {
	ID             uuid.UUID `json:"id"`
	BookingID      uuid.UUID `json:"booking_id"`
	BookingNumber  string    `json:"booking_number"`
	GuestID        uuid.UUID `json:"guest_id"`
	GuestName      string    `json:"guest_name,omitempty"`
	FromRoomID     uuid.UUID `json:"from_room_id"`
	FromRoomNumber string    `json:"from_room_number"`
	ToRoomID       uuid.UUID `json:"to_room_id"`
	ToRoomNumber   string    `json:"to_room_number"`
	Reason         string    `json:"reason"`
	ChangedBy      string    `json:"changed_by,omitempty"`
	ChangedAt      time.Time `json:"changed_at"`
}

func toRoomChangeDTO(rec *roomchangeDomain.Record) RoomChangeDTO {
	return RoomChangeDTO{
		ID:             rec.ID(),
		BookingID:      rec.BookingID(),
		BookingNumber:  rec.BookingNumber(),
		GuestID:        rec.GuestID(),
		GuestName:      rec.GuestName(),
		FromRoomID:     rec.FromRoomID(),
		FromRoomNumber: rec.FromRoomNumber(),
		ToRoomID:       rec.ToRoomID(),
		ToRoomNumber:   rec.ToRoomNumber(),
		Reason:         rec.Reason(),
		ChangedBy:      rec.ChangedBy(),
		ChangedAt:      rec.ChangedAt(),
	}
}

func toRoomChangeDTOs(records []*roomchangeDomain.Record) []RoomChangeDTO {
	dtos := make([]RoomChangeDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRoomChangeDTO(rec)
	}
	return dtos
}

// OccupancySummaryDTO aggregates effective room statuses for dashboards.
type OccupancySummaryDTO struct {
	Date            time.Time      `json:"date"`
	TotalRooms      int            `json:"total_rooms"`
	StatusCounts    map[string]int `json:"status_counts"`
	OccupancyRate   float64        `json:"occupancy_rate"`
	Inconsistencies []string       `json:"inconsistencies,omitempty"`
}
