package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stayflow/service-hotel/internal/domain"
	bookingDomain "github.com/stayflow/service-hotel/internal/domain/booking"
	roomDomain "github.com/stayflow/service-hotel/internal/domain/room"
)

var repoTestNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&RoomModel{}, &BookingModel{}, &RoomChangeModel{}))
	return db
}

func seedRoom(t *testing.T, db *gorm.DB, number string) *roomDomain.Room {
	t.Helper()
	r, err := roomDomain.NewRoom(number, "standard", 12000, 2, 1, "", repoTestNow)
	require.NoError(t, err)
	require.NoError(t, NewGormRoomRepository(db).Create(context.Background(), r))
	return r
}

func seedBooking(t *testing.T, db *gorm.DB, roomID uuid.UUID, checkInOffsetDays, nights int) *bookingDomain.Booking {
	t.Helper()
	checkIn := domain.DateOf(repoTestNow).AddDate(0, 0, checkInOffsetDays)
	checkOut := checkIn.AddDate(0, 0, nights)
	quote := bookingDomain.Quote{
		RoomRateCents: 12000,
		Nights:        nights,
		SubtotalCents: int64(nights) * 12000,
	}
	quote.TaxCents = quote.SubtotalCents / 10
	quote.TotalCents = quote.SubtotalCents + quote.TaxCents

	bk, err := bookingDomain.NewBooking(
		uuid.New(), "Alice Tan", nil, roomID,
		checkIn, checkOut,
		2, 0, 0,
		quote, bookingDomain.StatusConfirmed, "direct", "",
		repoTestNow,
	)
	require.NoError(t, err)
	require.NoError(t, NewGormBookingRepository(db).Create(context.Background(), bk))
	return bk
}

func TestBookingCreate_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db, "101")
	bk := seedBooking(t, db, room.ID(), 1, 2)

	repo := NewGormBookingRepository(db)
	loaded, err := repo.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)

	assert.Equal(t, bk.BookingNumber(), loaded.BookingNumber())
	assert.Equal(t, bk.GuestID(), loaded.GuestID())
	assert.Equal(t, bookingDomain.StatusConfirmed, loaded.Status())
	assert.Equal(t, bookingDomain.PaymentUnpaid, loaded.PaymentStatus())
	assert.Equal(t, bk.TotalCents(), loaded.TotalCents())
	assert.Equal(t, int64(1), loaded.Version())

	byNumber, err := repo.FindByNumber(context.Background(), bk.BookingNumber())
	require.NoError(t, err)
	assert.Equal(t, bk.ID(), byNumber.ID())
}

func TestBookingCreate_OverlapConflict(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db, "101")
	seedBooking(t, db, room.ID(), 1, 3)

	repo := NewGormBookingRepository(db)
	checkIn := domain.DateOf(repoTestNow).AddDate(0, 0, 2)
	overlapping, err := bookingDomain.NewBooking(
		uuid.New(), "Bob Lim", nil, room.ID(),
		checkIn, checkIn.AddDate(0, 0, 2),
		1, 0, 0,
		bookingDomain.Quote{RoomRateCents: 12000, Nights: 2, SubtotalCents: 24000, TaxCents: 2400, TotalCents: 26400},
		bookingDomain.StatusConfirmed, "direct", "",
		repoTestNow,
	)
	require.NoError(t, err)

	err = repo.Create(context.Background(), overlapping)
	assert.True(t, domain.IsConflict(err))

	// Nothing was persisted.
	_, err = repo.FindByID(context.Background(), overlapping.ID())
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingCreate_CancelledBookingDoesNotBlock(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db, "101")
	bk := seedBooking(t, db, room.ID(), 1, 3)

	repo := NewGormBookingRepository(db)
	require.NoError(t, bk.Cancel("plans changed", uuid.New(), repoTestNow))
	bk.IncrementVersion()
	require.NoError(t, repo.Update(context.Background(), bk))

	// Same dates, same room, now bookable again.
	replacement, err := bookingDomain.NewBooking(
		uuid.New(), "Bob Lim", nil, room.ID(),
		bk.CheckInDate(), bk.CheckOutDate(),
		1, 0, 0,
		bookingDomain.Quote{RoomRateCents: 12000, Nights: 3, SubtotalCents: 36000, TaxCents: 3600, TotalCents: 39600},
		bookingDomain.StatusConfirmed, "direct", "",
		repoTestNow,
	)
	require.NoError(t, err)
	assert.NoError(t, repo.Create(context.Background(), replacement))
}

func TestBookingCreate_UnknownRoom(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormBookingRepository(db)

	checkIn := domain.DateOf(repoTestNow).AddDate(0, 0, 1)
	bk, err := bookingDomain.NewBooking(
		uuid.New(), "Alice Tan", nil, uuid.New(),
		checkIn, checkIn.AddDate(0, 0, 1),
		1, 0, 0,
		bookingDomain.Quote{RoomRateCents: 12000, Nights: 1, SubtotalCents: 12000, TaxCents: 1200, TotalCents: 13200},
		bookingDomain.StatusConfirmed, "direct", "",
		repoTestNow,
	)
	require.NoError(t, err)

	err = repo.Create(context.Background(), bk)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingUpdate_OptimisticLockConflict(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db, "101")
	bk := seedBooking(t, db, room.ID(), 1, 2)
	repo := NewGormBookingRepository(db)

	// Two actors load the same version.
	first, err := repo.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)

	require.NoError(t, first.Cancel("guest request", uuid.New(), repoTestNow))
	first.IncrementVersion()
	require.NoError(t, repo.Update(context.Background(), first))

	require.NoError(t, second.Cancel("duplicate request", uuid.New(), repoTestNow))
	second.IncrementVersion()
	err = repo.Update(context.Background(), second)
	assert.True(t, domain.IsConflict(err))

	// The first write won.
	loaded, err := repo.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	assert.Equal(t, "guest request", loaded.CancellationReason())
	assert.Equal(t, int64(2), loaded.Version())
}

func TestFindCurrentForRooms_GroupsByRoom(t *testing.T) {
	db := newTestDB(t)
	roomA := seedRoom(t, db, "101")
	roomB := seedRoom(t, db, "102")
	bkA := seedBooking(t, db, roomA.ID(), 0, 2)
	bkB1 := seedBooking(t, db, roomB.ID(), 1, 2)
	bkB2 := seedBooking(t, db, roomB.ID(), 4, 2)

	repo := NewGormBookingRepository(db)
	byRoom, err := repo.FindCurrentForRooms(context.Background(),
		[]uuid.UUID{roomA.ID(), roomB.ID()}, repoTestNow)
	require.NoError(t, err)

	require.Len(t, byRoom[roomA.ID()], 1)
	assert.Equal(t, bkA.ID(), byRoom[roomA.ID()][0].ID())
	require.Len(t, byRoom[roomB.ID()], 2)
	assert.Equal(t, bkB1.ID(), byRoom[roomB.ID()][0].ID(), "ordered by check-in date")
	assert.Equal(t, bkB2.ID(), byRoom[roomB.ID()][1].ID())
}

func TestFindCurrentForRooms_ExcludesEndedStays(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db, "101")
	seedBooking(t, db, room.ID(), 1, 2)

	repo := NewGormBookingRepository(db)
	later := repoTestNow.AddDate(0, 0, 10)
	byRoom, err := repo.FindCurrentForRooms(context.Background(), []uuid.UUID{room.ID()}, later)
	require.NoError(t, err)
	assert.Empty(t, byRoom[room.ID()])
}

func TestFindArrivalsDue(t *testing.T) {
	db := newTestDB(t)
	roomA := seedRoom(t, db, "101")
	roomB := seedRoom(t, db, "102")
	due := seedBooking(t, db, roomA.ID(), 0, 2)
	seedBooking(t, db, roomB.ID(), 3, 2)

	repo := NewGormBookingRepository(db)
	arrivals, err := repo.FindArrivalsDue(context.Background(), repoTestNow)
	require.NoError(t, err)
	require.Len(t, arrivals, 1)
	assert.Equal(t, due.ID(), arrivals[0].ID())
}

func TestCountByStatus(t *testing.T) {
	db := newTestDB(t)
	roomA := seedRoom(t, db, "101")
	roomB := seedRoom(t, db, "102")
	seedBooking(t, db, roomA.ID(), 0, 2)
	bk := seedBooking(t, db, roomB.ID(), 0, 2)

	repo := NewGormBookingRepository(db)
	require.NoError(t, bk.Cancel("plans changed", uuid.New(), repoTestNow))
	bk.IncrementVersion()
	require.NoError(t, repo.Update(context.Background(), bk))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[string(bookingDomain.StatusConfirmed)])
	assert.Equal(t, int64(1), counts[string(bookingDomain.StatusCancelled)])
}

func TestRoomRepository_UpdateUnknownRoom(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormRoomRepository(db)

	r, err := roomDomain.NewRoom("999", "suite", 50000, 4, 9, "", repoTestNow)
	require.NoError(t, err)
	err = repo.Update(context.Background(), r)
	assert.True(t, domain.IsNotFound(err))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db, "101")
	bk := seedBooking(t, db, room.ID(), 0, 2)

	sentinel := errors.New("boom")
	err := NewTxManager(db).WithinTx(context.Background(), func(repos TxRepositories) error {
		loaded, err := repos.Bookings.FindByID(context.Background(), bk.ID())
		if err != nil {
			return err
		}
		if err := loaded.Cancel("should not stick", uuid.New(), repoTestNow); err != nil {
			return err
		}
		loaded.IncrementVersion()
		if err := repos.Bookings.Update(context.Background(), loaded); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	loaded, err := NewGormBookingRepository(db).FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusConfirmed, loaded.Status())
	assert.Equal(t, int64(1), loaded.Version())
}
