package services

import (
	"context"
	"testing"
	"time"

	"bookinghub/constants"
	apperrors "bookinghub/errors"
	"bookinghub/models"
	"bookinghub/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAvailable_PicksFreeUnit(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	ten := baseTime.Add(2 * time.Hour)

	// 10:00-12:00 trên phòng đầu tiên
	testutil.BookingAt(t, e.db, e.f, e.f.Units[0], ten, 2, constants.BookingStatusConfirmed, constants.PaymentStatusPaid)

	res, err := e.availability.IsAvailable(ctx, e.f.Type.ID, e.f.Location.ID, ten.Add(time.Hour), ten.Add(3*time.Hour))
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Equal(t, []uint{e.f.Units[1].ID}, res.CandidateUnits)

	// hai khoảng liền nhau không tính là giao nhau
	res, err = e.availability.IsAvailable(ctx, e.f.Type.ID, e.f.Location.ID, ten.Add(2*time.Hour), ten.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []uint{e.f.Units[0].ID, e.f.Units[1].ID}, res.CandidateUnits)
}

func TestIsAvailable_AllUnitsBusy(t *testing.T) {
	e := newTestEnv(t, nil)
	ten := baseTime.Add(2 * time.Hour)
	for _, u := range e.f.Units {
		testutil.BookingAt(t, e.db, e.f, u, ten, 2, constants.BookingStatusPending, constants.PaymentStatusPending)
	}

	res, err := e.availability.IsAvailable(context.Background(), e.f.Type.ID, e.f.Location.ID, ten, ten.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Empty(t, res.CandidateUnits)
}

func TestIsAvailable_IgnoresReleasedBookings(t *testing.T) {
	e := newTestEnv(t, nil)
	ten := baseTime.Add(2 * time.Hour)
	for _, status := range []constants.BookingStatus{constants.BookingStatusCancelled, constants.BookingStatusCompleted, constants.BookingStatusRefund} {
		testutil.BookingAt(t, e.db, e.f, e.f.Units[0], ten, 2, status, constants.PaymentStatusPaid)
	}

	res, err := e.availability.IsAvailable(context.Background(), e.f.Type.ID, e.f.Location.ID, ten, ten.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, res.CandidateUnits, 2)
}

func TestIsAvailable_Errors(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	ten := baseTime.Add(2 * time.Hour)

	_, err := e.availability.IsAvailable(ctx, 9999, e.f.Location.ID, ten, ten.Add(time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.False(t, apperrors.HasCode(err, apperrors.ErrCodeNoUnitsAtLocation))

	_, err = e.availability.IsAvailable(ctx, e.f.Type.ID, e.f.Location.ID, ten, ten)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidWindow))

	other := &models.RentalLocation{OwnerID: e.f.Owner.ID, Name: "Cơ sở trống"}
	require.NoError(t, e.db.Create(other).Error)
	_, err = e.availability.IsAvailable(ctx, e.f.Type.ID, other.ID, ten, ten.Add(time.Hour))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNoUnitsAtLocation))
}

func TestOccupiedSlots_CachedAndInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := newTestEnv(t, nil)
	e.availability = NewAvailabilityService(AvailabilityServiceOptions{Store: e.store, Cache: NewSlotCache(rdb), SlotTTL: time.Minute})
	ctx := context.Background()
	from, to := baseTime, baseTime.Add(24*time.Hour)

	b := testutil.BookingAt(t, e.db, e.f, e.f.Units[1], baseTime.Add(3*time.Hour), 2, constants.BookingStatusConfirmed, constants.PaymentStatusPaid)

	units, err := e.availability.OccupiedSlots(ctx, e.f.Type.ID, e.f.Location.ID, from, to)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Empty(t, units[0].Slots)
	require.Len(t, units[1].Slots, 1)
	assert.Equal(t, b.ID, units[1].Slots[0].BookingID)
	assert.True(t, units[1].Slots[0].End.Equal(b.ReservedUntil))
	assert.True(t, mr.Exists(slotKey(e.f.Type.ID, e.f.Location.ID, from, to)))

	// bản ghi mới chưa hiện ra khi còn cache
	testutil.BookingAt(t, e.db, e.f, e.f.Units[0], baseTime.Add(5*time.Hour), 1, constants.BookingStatusConfirmed, constants.PaymentStatusPaid)
	units, err = e.availability.OccupiedSlots(ctx, e.f.Type.ID, e.f.Location.ID, from, to)
	require.NoError(t, err)
	assert.Empty(t, units[0].Slots)

	e.availability.InvalidateSlots(ctx, e.f.Type.ID)
	units, err = e.availability.OccupiedSlots(ctx, e.f.Type.ID, e.f.Location.ID, from, to)
	require.NoError(t, err)
	assert.Len(t, units[0].Slots, 1)
}
