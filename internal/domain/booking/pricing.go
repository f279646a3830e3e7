package booking

import (
	"fmt"
	"time"

	"github.com/stayflow/service-hotel/internal/domain"
)

// Quote holds the computed charge breakdown for a stay.
type Quote struct {
	RoomRateCents int64
	Nights        int
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// RateCalculator computes stay charges from a nightly rate.
type RateCalculator struct {
	taxRateBps        int64
	extraBedRateCents int64
}

// NewRateCalculator creates a RateCalculator. taxRateBps is the tax rate in
// basis points (1000 = 10%).
func NewRateCalculator(taxRateBps, extraBedRateCents int64) *RateCalculator {
	return &RateCalculator{taxRateBps: taxRateBps, extraBedRateCents: extraBedRateCents}
}

// Quote computes the charge for a stay: nights times the nightly rate, plus
// extra bed charges, plus tax.
func (c *RateCalculator) Quote(rateCents int64, checkIn, checkOut time.Time, extraBeds int) (Quote, error) {
	if rateCents < 0 {
		return Quote{}, domain.NewValidationError("room rate cannot be negative")
	}
	in := domain.DateOf(checkIn)
	out := domain.DateOf(checkOut)
	if !out.After(in) {
		return Quote{}, domain.NewValidationError(fmt.Sprintf(
			"check-out %s must be after check-in %s", out.Format("2006-01-02"), in.Format("2006-01-02")))
	}
	nights := int(out.Sub(in).Hours() / 24)

	subtotal := rateCents*int64(nights) + c.extraBedRateCents*int64(extraBeds)*int64(nights)
	tax := subtotal * c.taxRateBps / 10000

	return Quote{
		RoomRateCents: rateCents,
		Nights:        nights,
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
	}, nil
}
