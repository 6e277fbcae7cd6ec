package services

import (
	"context"
	"testing"
	"time"

	"bookinghub/constants"
	apperrors "bookinghub/errors"
	"bookinghub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func successFor(res *CreateBookingResult) PaymentResult {
	return PaymentResult{
		OrderID:    res.Payment.OrderID,
		Amount:     res.Payment.Amount,
		ResultCode: constants.PaymentResultSuccess,
		TransID:    "4088878653",
		Message:    "Successful.",
	}
}

func TestConfirmPayment_Idempotent(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	res := e.create(t, baseTime.Add(time.Hour), 2, constants.PaymentMethodMomo)

	for i := 0; i < 2; i++ {
		b, err := e.payments.ConfirmPayment(ctx, successFor(res))
		require.NoError(t, err)
		assert.Equal(t, constants.BookingStatusConfirmed, b.Status)
		assert.Equal(t, constants.PaymentStatusPaid, b.PaymentStatus)
		require.NotNil(t, b.ConfirmDate)
	}

	txs, err := e.store.Payments.ListTransactions(ctx, res.Booking.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, constants.PaymentTransactionPayment, txs[0].Kind)
	assert.Equal(t, "4088878653", txs[0].ExternalRef)

	info, err := e.store.Payments.FindInformationByBooking(ctx, res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.PaymentStatusPaid, info.Status)
	assert.NotNil(t, info.PaidAt)
	assert.EqualValues(t, 1, e.notificationCount(t, res.Booking.ID, constants.NotificationPaymentConfirmed))
}

func TestConfirmPayment_Failure(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	res := e.create(t, baseTime.Add(time.Hour), 1, constants.PaymentMethodMomo)

	in := successFor(res)
	in.ResultCode = 1006
	in.Message = "Transaction denied by user."
	b, err := e.payments.ConfirmPayment(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusPending, b.Status)
	assert.Equal(t, constants.PaymentStatusFailed, b.PaymentStatus)
	assert.EqualValues(t, 1, e.notificationCount(t, res.Booking.ID, constants.NotificationPaymentFailed))

	// thanh toán lại thành công trước hạn vẫn được xác nhận
	b, err = e.payments.ConfirmPayment(ctx, successFor(res))
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusConfirmed, b.Status)
	assert.Equal(t, constants.PaymentStatusPaid, b.PaymentStatus)
}

func TestConfirmPayment_AmountMismatch(t *testing.T) {
	e := newTestEnv(t, nil)
	res := e.create(t, baseTime.Add(time.Hour), 1, constants.PaymentMethodMomo)

	in := successFor(res)
	in.Amount = res.Payment.Amount - 1000
	_, err := e.payments.ConfirmPayment(context.Background(), in)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAmountMismatch))

	b := e.reload(t, res.Booking.ID)
	assert.Equal(t, constants.BookingStatusPending, b.Status)
	assert.Equal(t, constants.PaymentStatusPending, b.PaymentStatus)
}

func TestConfirmPayment_UnknownOrder(t *testing.T) {
	e := newTestEnv(t, nil)
	_, err := e.payments.ConfirmPayment(context.Background(), PaymentResult{OrderID: "khong-ton-tai"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = e.payments.ConfirmPayment(context.Background(), PaymentResult{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRequiredField))
}

func TestConfirmPayment_AfterExpiry(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	res := e.create(t, baseTime.Add(2*time.Hour), 1, constants.PaymentMethodMomo)

	e.clock.Advance(16 * time.Minute)
	report, err := e.bookings.ExpireUnpaid(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Transitioned)

	// tiền về sau khi đơn bị hủy: ghi nhận PAID và chờ hoàn toàn bộ
	b, err := e.payments.ConfirmPayment(ctx, successFor(res))
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusCancelled, b.Status)
	assert.Equal(t, constants.PaymentStatusPaid, b.PaymentStatus)
	assert.Equal(t, b.TotalPrice, b.RefundAmount)

	report, err = e.bookings.RetryRefunds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Transitioned)
	assert.Equal(t, constants.BookingStatusRefund, e.reload(t, b.ID).Status)
}

func TestMarkPaid(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	cash := e.create(t, baseTime.Add(time.Hour), 1, constants.PaymentMethodCash).Booking

	_, err := e.payments.MarkPaid(ctx, cash.ID, e.customer())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	b, err := e.payments.MarkPaid(ctx, cash.ID, e.owner())
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusConfirmed, b.Status)
	assert.Equal(t, constants.PaymentStatusPaid, b.PaymentStatus)

	var tx models.PaymentTransaction
	require.NoError(t, e.db.Where("booking_id = ?", cash.ID).First(&tx).Error)
	assert.Equal(t, "cash-1", tx.ExternalRef)

	momo := e.create(t, baseTime.Add(5*time.Hour), 1, constants.PaymentMethodMomo).Booking
	_, err = e.payments.MarkPaid(ctx, momo.ID, e.owner())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
