package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookinghub/constants"
	"bookinghub/models"
	"bookinghub/repositories"
	"bookinghub/testutil"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 08:00 giờ Việt Nam
var baseTime = time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)

type testEnv struct {
	db           *gorm.DB
	store        *repositories.Store
	clock        *testutil.Clock
	f            *testutil.Fixture
	availability *AvailabilityService
	bookings     *BookingService
	payments     *PaymentService
	coupons      *CouponService
}

func newTestEnv(t *testing.T, gateway PaymentGateway) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	clock := testutil.NewClock(baseTime)
	store := repositories.NewStore(db)
	availability := NewAvailabilityService(AvailabilityServiceOptions{Store: store})
	if gateway == nil {
		gateway = ManualGateway{}
	}
	return &testEnv{
		db:           db,
		store:        store,
		clock:        clock,
		f:            testutil.Seed(t, db, baseTime),
		availability: availability,
		bookings: NewBookingService(BookingServiceOptions{
			Store:          store,
			Availability:   availability,
			Gateway:        gateway,
			Now:            clock.Now,
			PendingTimeout: 15 * time.Minute,
		}),
		payments: NewPaymentService(PaymentServiceOptions{Store: store, Now: clock.Now}),
		coupons:  NewCouponService(CouponServiceOptions{Store: store, Now: clock.Now}),
	}
}

func (e *testEnv) customer() Actor {
	return Actor{UserID: e.f.Customer.ID, Role: constants.RoleCustomer}
}

func (e *testEnv) owner() Actor {
	return Actor{UserID: e.f.Owner.ID, Role: constants.RoleOwner}
}

func (e *testEnv) input(checkIn time.Time, hours int, method constants.PaymentMethod) CreateBookingInput {
	return CreateBookingInput{
		CustomerID:          e.f.Customer.ID,
		AccommodationTypeID: e.f.Type.ID,
		RentalLocationID:    e.f.Location.ID,
		CheckIn:             checkIn,
		DurationHour:        hours,
		AdultNumber:         2,
		PaymentMethod:       method,
	}
}

func (e *testEnv) create(t *testing.T, checkIn time.Time, hours int, method constants.PaymentMethod) *CreateBookingResult {
	t.Helper()
	res, err := e.bookings.CreateBooking(context.Background(), e.input(checkIn, hours, method))
	require.NoError(t, err)
	return res
}

// paid tạo đơn MOMO rồi giả lập callback thành công
func (e *testEnv) paid(t *testing.T, checkIn time.Time, hours int) *models.Booking {
	t.Helper()
	res := e.create(t, checkIn, hours, constants.PaymentMethodMomo)
	b, err := e.payments.ConfirmPayment(context.Background(), PaymentResult{
		OrderID:    res.Payment.OrderID,
		Amount:     res.Payment.Amount,
		ResultCode: constants.PaymentResultSuccess,
		TransID:    "momo-" + res.Payment.OrderID,
	})
	require.NoError(t, err)
	require.Equal(t, constants.BookingStatusConfirmed, b.Status)
	return b
}

func (e *testEnv) reload(t *testing.T, id uint) *models.Booking {
	t.Helper()
	b, err := e.store.Bookings.FindDetail(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (e *testEnv) setStatus(t *testing.T, id uint, status constants.BookingStatus) {
	t.Helper()
	require.NoError(t, e.db.Model(&models.Booking{}).Where("id = ?", id).Update("status", status).Error)
}

func (e *testEnv) notificationCount(t *testing.T, bookingID uint, kind constants.NotificationKind) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Notification{}).
		Where("booking_id = ? AND kind = ?", bookingID, kind).Count(&n).Error)
	return n
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*RefundResult)
	return res, args.Error(1)
}

// countingDispatcher đếm số lần gửi thực sự, dùng để kiểm tra chống trùng khi chạy song song
type countingDispatcher struct {
	mu    sync.Mutex
	inner interface {
		Dispatch(ctx context.Context, n *models.Notification) (bool, error)
	}
	sent map[string]int
}

func (d *countingDispatcher) Dispatch(ctx context.Context, n *models.Notification) (bool, error) {
	created, err := d.inner.Dispatch(ctx, n)
	if created {
		d.mu.Lock()
		d.sent[n.DedupeKey]++
		d.mu.Unlock()
	}
	return created, err
}
