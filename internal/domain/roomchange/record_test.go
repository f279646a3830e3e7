package roomchange

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayflow/service-hotel/internal/domain"
)

var recordTestNow = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func TestNewRecord_CarriesDenormalizedReferences(t *testing.T) {
	bookingID, guestID := uuid.New(), uuid.New()
	from, to := uuid.New(), uuid.New()

	rec, err := NewRecord(bookingID, guestID, from, to,
		"BK-A1B2C3D4E", "Alice Tan", "201", "202", "aircon failure", "front-desk", recordTestNow)
	require.NoError(t, err)

	assert.Equal(t, bookingID, rec.BookingID())
	assert.Equal(t, "BK-A1B2C3D4E", rec.BookingNumber())
	assert.Equal(t, guestID, rec.GuestID())
	assert.Equal(t, "Alice Tan", rec.GuestName())
	assert.Equal(t, from, rec.FromRoomID())
	assert.Equal(t, "201", rec.FromRoomNumber())
	assert.Equal(t, to, rec.ToRoomID())
	assert.Equal(t, "202", rec.ToRoomNumber())
	assert.Equal(t, recordTestNow, rec.ChangedAt())
}

func TestNewRecord_Validation(t *testing.T) {
	bookingID, guestID := uuid.New(), uuid.New()
	from, to := uuid.New(), uuid.New()

	cases := []struct {
		name string
		fn   func() (*Record, error)
	}{
		{"missing booking ID", func() (*Record, error) {
			return NewRecord(uuid.Nil, guestID, from, to, "BK-A1B2C3D4E", "Alice Tan", "201", "202", "upgrade", "", recordTestNow)
		}},
		{"missing booking number", func() (*Record, error) {
			return NewRecord(bookingID, guestID, from, to, "", "Alice Tan", "201", "202", "upgrade", "", recordTestNow)
		}},
		{"missing guest reference", func() (*Record, error) {
			return NewRecord(bookingID, uuid.Nil, from, to, "BK-A1B2C3D4E", "Alice Tan", "201", "202", "upgrade", "", recordTestNow)
		}},
		{"same source and target", func() (*Record, error) {
			return NewRecord(bookingID, guestID, from, from, "BK-A1B2C3D4E", "Alice Tan", "201", "201", "upgrade", "", recordTestNow)
		}},
		{"missing room numbers", func() (*Record, error) {
			return NewRecord(bookingID, guestID, from, to, "BK-A1B2C3D4E", "Alice Tan", "", "", "upgrade", "", recordTestNow)
		}},
		{"missing reason", func() (*Record, error) {
			return NewRecord(bookingID, guestID, from, to, "BK-A1B2C3D4E", "Alice Tan", "201", "202", "", "", recordTestNow)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fn()
			assert.True(t, domain.IsValidation(err))
		})
	}
}
