package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookinghub/constants"
	"bookinghub/models"
	"bookinghub/services/notification"
	"bookinghub/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestCheckIns(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	due := testutil.BookingAt(t, e.db, e.f, e.f.Units[0], baseTime, 2, constants.BookingStatusConfirmed, constants.PaymentStatusPaid)
	later := testutil.BookingAt(t, e.db, e.f, e.f.Units[1], baseTime.Add(time.Second), 2, constants.BookingStatusConfirmed, constants.PaymentStatusPaid)
	unpaid := testutil.BookingAt(t, e.db, e.f, e.f.Units[1], baseTime.Add(-3*time.Hour), 1, constants.BookingStatusConfirmed, constants.PaymentStatusBooking)

	report, err := e.bookings.RequestCheckIns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Transitioned)
	assert.Equal(t, 1, report.Notified)
	assert.Equal(t, constants.BookingStatusNeedCheckIn, e.reload(t, due.ID).Status)
	assert.Equal(t, constants.BookingStatusConfirmed, e.reload(t, later.ID).Status)
	assert.Equal(t, constants.BookingStatusConfirmed, e.reload(t, unpaid.ID).Status)

	// chạy lại không đổi gì
	report, err = e.bookings.RequestCheckIns(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Transitioned)
	assert.Zero(t, report.Notified)
	assert.EqualValues(t, 1, e.notificationCount(t, due.ID, constants.NotificationCheckInRequested))
}

func TestAutoCompleteNoShows_Boundary(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	b := testutil.BookingAt(t, e.db, e.f, e.f.Units[0], baseTime, 2, constants.BookingStatusNeedCheckIn, constants.PaymentStatusPaid)

	e.clock.Set(baseTime.Add(2*time.Hour - time.Second))
	report, err := e.bookings.AutoCompleteNoShows(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Transitioned)

	// đúng bằng reservedUntil vẫn chưa tính là vắng mặt
	e.clock.Set(baseTime.Add(2 * time.Hour))
	report, err = e.bookings.AutoCompleteNoShows(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Transitioned)

	e.clock.Set(baseTime.Add(2*time.Hour + time.Second))
	report, err = e.bookings.AutoCompleteNoShows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Transitioned)

	out := e.reload(t, b.ID)
	assert.Equal(t, constants.BookingStatusCompleted, out.Status)
	assert.True(t, out.IsNoShow)
	assert.NotNil(t, out.CompletedDate)
	assert.EqualValues(t, 1, e.notificationCount(t, b.ID, constants.NotificationAutoCompleted))

	// hoàn thành do vắng mặt không nhận thêm thông báo COMPLETED
	_, err = e.bookings.FinalizeCheckedOut(ctx)
	require.NoError(t, err)
	assert.Zero(t, e.notificationCount(t, b.ID, constants.NotificationCompleted))
}

func TestCheckOutFlowSweeps(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	b := testutil.BookingAt(t, e.db, e.f, e.f.Units[0], baseTime.Add(-2*time.Hour), 2, constants.BookingStatusCheckedIn, constants.PaymentStatusPaid)

	report, err := e.bookings.RequestCheckOuts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Transitioned)
	assert.Equal(t, constants.BookingStatusNeedCheckOut, e.reload(t, b.ID).Status)
	assert.EqualValues(t, 1, e.notificationCount(t, b.ID, constants.NotificationCheckOutRequested))

	e.clock.Advance(30 * time.Minute)
	out, err := e.bookings.CheckOut(ctx, b.ID, e.owner())
	require.NoError(t, err)
	assert.Equal(t, 50000.0, out.OvertimeFee)

	report, err = e.bookings.FinalizeCheckedOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Transitioned)
	assert.Equal(t, 1, report.Notified)
	out = e.reload(t, b.ID)
	assert.Equal(t, constants.BookingStatusCompleted, out.Status)
	assert.False(t, out.IsNoShow)
}

func TestExpireUnpaid(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()

	in := e.input(baseTime.Add(3*time.Hour), 1, constants.PaymentMethodMomo)
	in.CouponCode = "GIAM10"
	momo, err := e.bookings.CreateBooking(ctx, in)
	require.NoError(t, err)
	cash := e.create(t, baseTime.Add(time.Hour), 1, constants.PaymentMethodCash)

	e.clock.Advance(14 * time.Minute)
	report, err := e.bookings.ExpireUnpaid(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Transitioned)

	e.clock.Advance(2 * time.Hour)
	report, err = e.bookings.ExpireUnpaid(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Transitioned)
	assert.Equal(t, 2, report.Notified)

	for _, id := range []uint{momo.Booking.ID, cash.Booking.ID} {
		b := e.reload(t, id)
		assert.Equal(t, constants.BookingStatusCancelled, b.Status)
		assert.Equal(t, constants.CancelSourceSystem, b.CancelSource)
		assert.EqualValues(t, 1, e.notificationCount(t, id, constants.NotificationExpired))
	}

	var coupon models.Coupon
	require.NoError(t, e.db.First(&coupon, e.f.Coupon.ID).Error)
	assert.Equal(t, 1, coupon.Quantity)

	// lượt thứ hai không trả coupon thêm lần nữa
	report, err = e.bookings.ExpireUnpaid(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Transitioned)
	require.NoError(t, e.db.First(&coupon, e.f.Coupon.ID).Error)
	assert.Equal(t, 1, coupon.Quantity)

	// đã hủy tự động thì không gửi thêm thông báo CANCELLED
	report, err = e.bookings.RetryNotifications(ctx)
	require.NoError(t, err)
	assert.Zero(t, e.notificationCount(t, momo.Booking.ID, constants.NotificationCancelled))
}

func TestSweeps_ConcurrentRunsNotifyOnce(t *testing.T) {
	e := newTestEnv(t, nil)
	counter := &countingDispatcher{
		inner: notification.NewStoreDispatcher(e.store.Notifications, nil, nil),
		sent:  map[string]int{},
	}
	e.bookings = NewBookingService(BookingServiceOptions{
		Store:        e.store,
		Availability: e.availability,
		Dispatcher:   counter,
		Now:          e.clock.Now,
	})
	var ids []uint
	for i, u := range e.f.Units {
		b := testutil.BookingAt(t, e.db, e.f, u, baseTime.Add(-time.Duration(i)*time.Minute), 2, constants.BookingStatusConfirmed, constants.PaymentStatusPaid)
		ids = append(ids, b.ID)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		moved int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := e.bookings.RequestCheckIns(context.Background())
			assert.NoError(t, err)
			mu.Lock()
			moved += report.Transitioned
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, len(ids), moved)
	for _, id := range ids {
		key := models.BookingDedupeKey(id, constants.NotificationCheckInRequested)
		assert.Equal(t, 1, counter.sent[key], key)
		assert.EqualValues(t, 1, e.notificationCount(t, id, constants.NotificationCheckInRequested))
	}
}

func TestRetryNotifications(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	paid := testutil.BookingAt(t, e.db, e.f, e.f.Units[0], baseTime.Add(5*time.Hour), 1, constants.BookingStatusConfirmed, constants.PaymentStatusPaid)
	refunded := testutil.BookingAt(t, e.db, e.f, e.f.Units[1], baseTime.Add(5*time.Hour), 1, constants.BookingStatusRefund, constants.PaymentStatusRefund)
	require.NoError(t, e.db.Model(&models.Booking{}).Where("id = ?", refunded.ID).
		Update("cancel_source", constants.CancelSourceCustomer).Error)

	report, err := e.bookings.RetryNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Notified)
	assert.EqualValues(t, 1, e.notificationCount(t, paid.ID, constants.NotificationPaymentConfirmed))
	assert.EqualValues(t, 1, e.notificationCount(t, refunded.ID, constants.NotificationCancelled))
	assert.EqualValues(t, 1, e.notificationCount(t, refunded.ID, constants.NotificationRefunded))

	report, err = e.bookings.RetryNotifications(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Notified)
}

func TestDeactivateExpiredCoupons(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()

	report, err := e.coupons.DeactivateExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Transitioned)

	e.clock.Advance(31 * 24 * time.Hour)
	report, err = e.coupons.DeactivateExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Transitioned)

	var coupon models.Coupon
	require.NoError(t, e.db.First(&coupon, e.f.Coupon.ID).Error)
	assert.False(t, coupon.IsActive)
}
