package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "hotel.booking.events"
	TopicRoomEvents    = "hotel.room.events"
	TopicPaymentEvents = "hotel.payment.events"
)

// Event types published by this service.
const (
	BookingCreated       = "booking.created"
	BookingConfirmed     = "booking.confirmed"
	BookingCheckedIn     = "booking.checked_in"
	BookingCheckedOut    = "booking.checked_out"
	BookingCompleted     = "booking.completed"
	BookingCancelled     = "booking.cancelled"
	BookingNoShow        = "booking.no_show"
	BookingReleased      = "booking.released"
	BookingRoomChanged   = "booking.room_changed"
	BookingComplimentary = "booking.complimentary_set"

	RoomStatusChanged = "room.status_changed"
)

// Event types consumed from the payments service.
const (
	PaymentReceived = "payment.received"
	PaymentRefunded = "payment.refunded"
)

// BookingEvent is the payload for booking lifecycle events.
type BookingEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	GuestID       uuid.UUID `json:"guest_id"`
	RoomID        uuid.UUID `json:"room_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CheckInDate   time.Time `json:"check_in_date"`
	CheckOutDate  time.Time `json:"check_out_date"`
	TotalCents    int64     `json:"total_cents"`
}

// RoomChangedEvent is the payload for mid-stay room moves.
type RoomChangedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	BookingNumber  string    `json:"booking_number"`
	GuestID        uuid.UUID `json:"guest_id"`
	FromRoomID     uuid.UUID `json:"from_room_id"`
	FromRoomNumber string    `json:"from_room_number"`
	ToRoomID       uuid.UUID `json:"to_room_id"`
	ToRoomNumber   string    `json:"to_room_number"`
	Reason         string    `json:"reason"`
	ChangedBy      string    `json:"changed_by"`
}

// RoomStatusEvent is the payload for explicit room status changes.
type RoomStatusEvent struct {
	RoomID     uuid.UUID `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	Status     string    `json:"status"`
}

// PaymentEvent is the payload received from the payments service.
type PaymentEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	PaymentID   uuid.UUID `json:"payment_id"`
	AmountCents int64     `json:"amount_cents"`
	IsDeposit   bool      `json:"is_deposit"`
}
