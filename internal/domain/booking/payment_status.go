package booking

import "fmt"

// PaymentStatus tracks how much of a booking's total has been collected. It is
// an axis independent of Status, constrained only where the two cross:
// payment cancellation requires a cancelled booking, and a zero total forces
// the booking to be either paid or cancelled.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentUnpaidDeposit PaymentStatus = "unpaid_deposit"
	PaymentPaidRate      PaymentStatus = "paid_rate"
	PaymentPartial       PaymentStatus = "partial"
	PaymentPaid          PaymentStatus = "paid"
	PaymentRefunded      PaymentStatus = "refunded"
	PaymentCancelled     PaymentStatus = "cancelled"
)

// validPaymentTransitions defines the allowed payment status moves. Refunds
// are only reachable once money has actually been collected.
var validPaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentUnpaid:        {PaymentUnpaidDeposit, PaymentPaidRate, PaymentPartial, PaymentPaid, PaymentCancelled},
	PaymentUnpaidDeposit: {PaymentPaidRate, PaymentPartial, PaymentPaid, PaymentCancelled},
	PaymentPaidRate:      {PaymentPartial, PaymentPaid, PaymentCancelled},
	PaymentPartial:       {PaymentPaid, PaymentRefunded, PaymentCancelled},
	PaymentPaid:          {PaymentRefunded, PaymentCancelled},
	PaymentRefunded:      {},
	PaymentCancelled:     {},
}

// IsValid returns true if the payment status is recognized.
func (p PaymentStatus) IsValid() bool {
	_, exists := validPaymentTransitions[p]
	return exists
}

// CanTransitionTo returns true if a move from this payment status to the
// target is allowed.
func (p PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	allowed, exists := validPaymentTransitions[p]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// String returns the string representation of the payment status.
func (p PaymentStatus) String() string {
	return string(p)
}

// ParsePaymentStatus converts a string to a PaymentStatus, returning an error
// if invalid.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}
