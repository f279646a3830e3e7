package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/stayflow/service-hotel/internal/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain. All lifecycle and
// payment mutations go through its methods; callers never edit fields
// directly.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	guestID       uuid.UUID
	guestName     string
	companyID     *uuid.UUID
	roomID        uuid.UUID

	checkInDate  time.Time
	checkOutDate time.Time
	adults       int
	children     int
	extraBeds    int

	roomRateCents int64
	subtotalCents int64
	taxCents      int64
	totalCents    int64

	status        Status
	paymentStatus PaymentStatus

	actualCheckIn  *time.Time
	actualCheckOut *time.Time

	depositCents  int64
	depositPaid   bool
	depositPaidAt *time.Time

	isComplimentary     bool
	complimentaryReason string
	complimentaryStart  *time.Time
	complimentaryEnd    *time.Time
	complimentaryNights int
	originalTotalCents  *int64

	cancellationReason string
	cancelledAt        *time.Time
	cancelledBy        *uuid.UUID

	source          string
	specialRequests string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking aggregate. The initial status must be
// pending or confirmed.
func NewBooking(
	guestID uuid.UUID,
	guestName string,
	companyID *uuid.UUID,
	roomID uuid.UUID,
	checkInDate time.Time,
	checkOutDate time.Time,
	adults int,
	children int,
	extraBeds int,
	quote Quote,
	initialStatus Status,
	source string,
	specialRequests string,
	now time.Time,
) (*Booking, error) {
	if guestID == uuid.Nil {
		return nil, domain.NewValidationError("guest ID is required")
	}
	if roomID == uuid.Nil {
		return nil, domain.NewValidationError("room ID is required")
	}
	checkIn := domain.DateOf(checkInDate)
	checkOut := domain.DateOf(checkOutDate)
	if !checkOut.After(checkIn) {
		return nil, domain.NewValidationError("check-out date must be after check-in date")
	}
	if adults < 1 {
		return nil, domain.NewValidationError("at least one adult is required")
	}
	if children < 0 || extraBeds < 0 {
		return nil, domain.NewValidationError("children and extra bed counts cannot be negative")
	}
	if initialStatus != StatusPending && initialStatus != StatusConfirmed {
		return nil, domain.NewValidationError(fmt.Sprintf("bookings start as pending or confirmed, not %s", initialStatus))
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Booking{
		id:              uuid.New(),
		bookingNumber:   bookingNumber,
		guestID:         guestID,
		guestName:       guestName,
		companyID:       companyID,
		roomID:          roomID,
		checkInDate:     checkIn,
		checkOutDate:    checkOut,
		adults:          adults,
		children:        children,
		extraBeds:       extraBeds,
		roomRateCents:   quote.RoomRateCents,
		subtotalCents:   quote.SubtotalCents,
		taxCents:        quote.TaxCents,
		totalCents:      quote.TotalCents,
		status:          initialStatus,
		paymentStatus:   PaymentUnpaid,
		source:          source,
		specialRequests: specialRequests,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	guestID uuid.UUID,
	guestName string,
	companyID *uuid.UUID,
	roomID uuid.UUID,
	checkInDate, checkOutDate time.Time,
	adults, children, extraBeds int,
	roomRateCents, subtotalCents, taxCents, totalCents int64,
	status Status,
	paymentStatus PaymentStatus,
	actualCheckIn, actualCheckOut *time.Time,
	depositCents int64,
	depositPaid bool,
	depositPaidAt *time.Time,
	isComplimentary bool,
	complimentaryReason string,
	complimentaryStart, complimentaryEnd *time.Time,
	complimentaryNights int,
	originalTotalCents *int64,
	cancellationReason string,
	cancelledAt *time.Time,
	cancelledBy *uuid.UUID,
	source, specialRequests string,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                  id,
		bookingNumber:       bookingNumber,
		guestID:             guestID,
		guestName:           guestName,
		companyID:           companyID,
		roomID:              roomID,
		checkInDate:         checkInDate,
		checkOutDate:        checkOutDate,
		adults:              adults,
		children:            children,
		extraBeds:           extraBeds,
		roomRateCents:       roomRateCents,
		subtotalCents:       subtotalCents,
		taxCents:            taxCents,
		totalCents:          totalCents,
		status:              status,
		paymentStatus:       paymentStatus,
		actualCheckIn:       actualCheckIn,
		actualCheckOut:      actualCheckOut,
		depositCents:        depositCents,
		depositPaid:         depositPaid,
		depositPaidAt:       depositPaidAt,
		isComplimentary:     isComplimentary,
		complimentaryReason: complimentaryReason,
		complimentaryStart:  complimentaryStart,
		complimentaryEnd:    complimentaryEnd,
		complimentaryNights: complimentaryNights,
		originalTotalCents:  originalTotalCents,
		cancellationReason:  cancellationReason,
		cancelledAt:         cancelledAt,
		cancelledBy:         cancelledBy,
		source:              source,
		specialRequests:     specialRequests,
		version:             version,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) BookingNumber() string        { return b.bookingNumber }
func (b *Booking) GuestID() uuid.UUID           { return b.guestID }
func (b *Booking) GuestName() string            { return b.guestName }
func (b *Booking) CompanyID() *uuid.UUID        { return b.companyID }
func (b *Booking) RoomID() uuid.UUID            { return b.roomID }
func (b *Booking) CheckInDate() time.Time       { return b.checkInDate }
func (b *Booking) CheckOutDate() time.Time      { return b.checkOutDate }
func (b *Booking) Adults() int                  { return b.adults }
func (b *Booking) Children() int                { return b.children }
func (b *Booking) ExtraBeds() int               { return b.extraBeds }
func (b *Booking) RoomRateCents() int64         { return b.roomRateCents }
func (b *Booking) SubtotalCents() int64         { return b.subtotalCents }
func (b *Booking) TaxCents() int64              { return b.taxCents }
func (b *Booking) TotalCents() int64            { return b.totalCents }
func (b *Booking) Status() Status               { return b.status }
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }
func (b *Booking) ActualCheckIn() *time.Time    { return b.actualCheckIn }
func (b *Booking) ActualCheckOut() *time.Time   { return b.actualCheckOut }
func (b *Booking) DepositCents() int64          { return b.depositCents }
func (b *Booking) DepositPaid() bool            { return b.depositPaid }
func (b *Booking) DepositPaidAt() *time.Time    { return b.depositPaidAt }
func (b *Booking) IsComplimentary() bool        { return b.isComplimentary }
func (b *Booking) ComplimentaryReason() string  { return b.complimentaryReason }
func (b *Booking) ComplimentaryStart() *time.Time {
	return b.complimentaryStart
}
func (b *Booking) ComplimentaryEnd() *time.Time { return b.complimentaryEnd }
func (b *Booking) ComplimentaryNights() int     { return b.complimentaryNights }
func (b *Booking) OriginalTotalCents() *int64   { return b.originalTotalCents }
func (b *Booking) CancellationReason() string   { return b.cancellationReason }
func (b *Booking) CancelledAt() *time.Time      { return b.cancelledAt }
func (b *Booking) CancelledBy() *uuid.UUID      { return b.cancelledBy }
func (b *Booking) Source() string               { return b.source }
func (b *Booking) SpecialRequests() string      { return b.specialRequests }
func (b *Booking) Version() int64               { return b.version }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }

// Nights returns the number of nights covered by the stay.
func (b *Booking) Nights() int {
	return int(b.checkOutDate.Sub(b.checkInDate).Hours() / 24)
}

// ContainsDate reports whether the given calendar date falls inside the stay
// window. The check-out day itself counts: the guest is still in the room
// until check-out time that day.
func (b *Booking) ContainsDate(date time.Time) bool {
	d := domain.DateOf(date)
	return !d.Before(b.checkInDate) && !d.After(b.checkOutDate)
}

// --- Lifecycle behavior ---

func (b *Booking) invalidTransition(target Status) error {
	return domain.NewInvalidTransitionError("booking", string(b.status), string(target))
}

// Confirm transitions the booking from pending to confirmed.
func (b *Booking) Confirm(now time.Time) error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return b.invalidTransition(StatusConfirmed)
	}
	b.status = StatusConfirmed
	b.touch(now)
	return nil
}

// CheckIn records the guest's arrival. Permitted only once the check-in date
// has been reached; sets actual_check_in. This is the only operation (besides
// AutoCheckIn) that sets actual_check_in.
func (b *Booking) CheckIn(now time.Time) error {
	return b.checkInAs(StatusCheckedIn, now)
}

// AutoCheckIn is the housekeeping sweep's arrival step for confirmed bookings
// whose check-in date has passed. Behaves as CheckIn but is distinguishable in
// reporting.
func (b *Booking) AutoCheckIn(now time.Time) error {
	return b.checkInAs(StatusAutoCheckedIn, now)
}

func (b *Booking) checkInAs(target Status, now time.Time) error {
	if !b.status.CanTransitionTo(target) {
		return b.invalidTransition(target)
	}
	if domain.DateOf(b.checkInDate).After(domain.DateOf(now)) {
		return domain.NewValidationError(fmt.Sprintf(
			"cannot check in before the check-in date %s", b.checkInDate.Format("2006-01-02")))
	}
	t := now.UTC()
	b.status = target
	b.actualCheckIn = &t
	b.touch(now)
	return nil
}

// CheckOut records the guest's departure, sets actual_check_out, and leaves
// the room eligible for the housekeeping dirty flag.
func (b *Booking) CheckOut(now time.Time) error {
	if !b.status.CanTransitionTo(StatusCheckedOut) {
		return b.invalidTransition(StatusCheckedOut)
	}
	t := now.UTC()
	b.status = StatusCheckedOut
	b.actualCheckOut = &t
	b.touch(now)
	return nil
}

// Complete is the administrative closeout after folio settlement.
func (b *Booking) Complete(now time.Time) error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return b.invalidTransition(StatusCompleted)
	}
	b.status = StatusCompleted
	b.touch(now)
	return nil
}

// Cancel moves the booking to cancelled. A reason is required and the
// cancellation fields are set atomically. Uncollected payment states collapse
// to payment cancelled; collected money (partial/paid) stays put until an
// explicit refund.
func (b *Booking) Cancel(reason string, actor uuid.UUID, now time.Time) error {
	if !b.status.CanBeCancelled() {
		return b.invalidTransition(StatusCancelled)
	}
	if reason == "" {
		return domain.NewValidationError("cancellation reason is required")
	}
	t := now.UTC()
	b.status = StatusCancelled
	b.cancellationReason = reason
	b.cancelledAt = &t
	b.cancelledBy = &actor
	switch b.paymentStatus {
	case PaymentUnpaid, PaymentUnpaidDeposit, PaymentPaidRate:
		b.paymentStatus = PaymentCancelled
	}
	b.touch(now)
	return nil
}

// MarkNoShow flags a booking whose guest never arrived. Only valid once the
// check-in date is in the past.
func (b *Booking) MarkNoShow(now time.Time) error {
	if !b.status.CanTransitionTo(StatusNoShow) {
		return b.invalidTransition(StatusNoShow)
	}
	if !domain.DateOf(b.checkInDate).Before(domain.DateOf(now)) {
		return domain.NewValidationError("cannot mark no-show before the check-in date has passed")
	}
	b.status = StatusNoShow
	b.touch(now)
	return nil
}

// Release returns the room to inventory without a stay, e.g. when a
// complimentary credit is used elsewhere. The total is forced to zero.
func (b *Booking) Release(now time.Time) error {
	if !b.status.CanTransitionTo(StatusReleased) {
		return b.invalidTransition(StatusReleased)
	}
	b.status = StatusReleased
	b.subtotalCents = 0
	b.taxCents = 0
	b.totalCents = 0
	if b.paymentStatus != PaymentCancelled {
		// A zero total admits only paid or cancelled.
		b.paymentStatus = PaymentPaid
	}
	b.touch(now)
	return nil
}

// --- Payment behavior ---

func (b *Booking) invalidPaymentTransition(target PaymentStatus) error {
	return domain.NewInvalidTransitionError("payment", string(b.paymentStatus), string(target))
}

// SetPaymentStatus moves the payment axis along the allowed edges. Payment
// cancellation is only reachable once the booking itself is cancelled.
func (b *Booking) SetPaymentStatus(target PaymentStatus, now time.Time) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid payment status: %s", target))
	}
	if target == b.paymentStatus {
		return nil
	}
	if !b.paymentStatus.CanTransitionTo(target) {
		return b.invalidPaymentTransition(target)
	}
	if target == PaymentCancelled && b.status != StatusCancelled {
		return domain.NewValidationError("payment can only be cancelled on a cancelled booking")
	}
	b.paymentStatus = target
	b.touch(now)
	return nil
}

// RecordDeposit records collection of the deposit. Deposit bookkeeping is
// independent of the overall payment status, except that a fresh unpaid
// booking advances to unpaid_deposit.
func (b *Booking) RecordDeposit(amountCents int64, now time.Time) error {
	if amountCents <= 0 {
		return domain.NewValidationError("deposit amount must be positive")
	}
	t := now.UTC()
	b.depositCents = amountCents
	b.depositPaid = true
	b.depositPaidAt = &t
	if b.paymentStatus == PaymentUnpaid {
		b.paymentStatus = PaymentUnpaidDeposit
	}
	b.touch(now)
	return nil
}

// RecordPayment applies a collected amount against the total: the booking
// becomes paid when the amount covers the outstanding total, partial
// otherwise.
func (b *Booking) RecordPayment(amountCents int64, now time.Time) error {
	if amountCents <= 0 {
		return domain.NewValidationError("payment amount must be positive")
	}
	target := PaymentPartial
	if amountCents >= b.totalCents {
		target = PaymentPaid
	}
	return b.SetPaymentStatus(target, now)
}

// Refund marks collected money as returned. Only reachable from partial or
// paid.
func (b *Booking) Refund(now time.Time) error {
	return b.SetPaymentStatus(PaymentRefunded, now)
}

// --- Complimentary accounting ---

// MarkComplimentary converts a sub-range of the stay to zero charge. The
// original total is preserved in original_total_amount and the remaining
// charge is recomputed from the paid nights, with tax scaled proportionally.
// Only pending or confirmed bookings can be marked.
func (b *Booking) MarkComplimentary(reason string, start, end time.Time, now time.Time) error {
	if b.status != StatusPending && b.status != StatusConfirmed {
		return domain.NewInvalidTransitionError("booking", string(b.status), "complimentary")
	}
	if b.isComplimentary {
		return domain.NewValidationError("booking is already complimentary")
	}
	if reason == "" {
		return domain.NewValidationError("complimentary reason is required")
	}
	compStart := domain.DateOf(start)
	compEnd := domain.DateOf(end)
	if !compEnd.After(compStart) {
		return domain.NewValidationError("complimentary end date must be after start date")
	}
	if compStart.Before(b.checkInDate) || compEnd.After(b.checkOutDate) {
		return domain.NewValidationError(fmt.Sprintf(
			"complimentary dates must be within the stay (%s to %s)",
			b.checkInDate.Format("2006-01-02"), b.checkOutDate.Format("2006-01-02")))
	}

	totalNights := b.Nights()
	compNights := int(compEnd.Sub(compStart).Hours() / 24)
	if compNights > totalNights {
		return domain.NewValidationError("complimentary nights cannot exceed the stay length")
	}
	paidNights := totalNights - compNights

	original := b.totalCents
	b.originalTotalCents = &original

	newSubtotal := b.roomRateCents * int64(paidNights)
	// Scale tax by the share of nights still charged.
	var newTax int64
	if totalNights > 0 {
		newTax = b.taxCents * int64(paidNights) / int64(totalNights)
	}

	b.isComplimentary = true
	b.complimentaryReason = reason
	b.complimentaryStart = &compStart
	b.complimentaryEnd = &compEnd
	b.complimentaryNights = compNights
	b.subtotalCents = newSubtotal
	b.taxCents = newTax
	b.totalCents = newSubtotal + newTax

	if compNights == totalNights {
		b.status = StatusFullyComplimentary
		b.totalCents = 0
		b.subtotalCents = 0
		b.taxCents = 0
		b.paymentStatus = PaymentPaid
	} else {
		b.status = StatusPartialComplimentary
		b.paymentStatus = PaymentPartial
	}
	b.touch(now)
	return nil
}

// RemoveComplimentary undoes MarkComplimentary before arrival, restoring the
// original charge.
func (b *Booking) RemoveComplimentary(now time.Time) error {
	if !b.isComplimentary || b.originalTotalCents == nil {
		return domain.NewValidationError("booking is not complimentary")
	}
	if b.status != StatusPartialComplimentary && b.status != StatusFullyComplimentary {
		return domain.NewInvalidTransitionError("booking", string(b.status), "remove complimentary")
	}
	total := *b.originalTotalCents
	subtotal := b.roomRateCents * int64(b.Nights())
	b.totalCents = total
	b.subtotalCents = subtotal
	b.taxCents = total - subtotal
	b.isComplimentary = false
	b.complimentaryReason = ""
	b.complimentaryStart = nil
	b.complimentaryEnd = nil
	b.complimentaryNights = 0
	b.originalTotalCents = nil
	b.status = StatusConfirmed
	b.paymentStatus = PaymentUnpaid
	b.touch(now)
	return nil
}

// --- Reassignment ---

// MoveToRoom rewrites the room reference during a room change. Only an
// in-progress occupancy can move.
func (b *Booking) MoveToRoom(roomID uuid.UUID, now time.Time) error {
	if !b.status.IsOccupying() {
		return domain.NewInvalidTransitionError("booking", string(b.status), "room change")
	}
	if roomID == uuid.Nil {
		return domain.NewValidationError("target room ID is required")
	}
	if roomID == b.roomID {
		return domain.NewValidationError("cannot move a booking to its current room")
	}
	b.roomID = roomID
	b.touch(now)
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}

func (b *Booking) touch(now time.Time) {
	b.updatedAt = now.UTC()
}
