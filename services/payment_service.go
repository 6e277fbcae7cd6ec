package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"bookinghub/constants"
	apperrors "bookinghub/errors"
	"bookinghub/models"
	"bookinghub/repositories"
	"bookinghub/services/logger"
	"bookinghub/services/notification"

	"gorm.io/gorm"
)

// PaymentResult là kết quả cổng thanh toán gửi về, OrderID là mã tương quan tạo lúc đặt phòng
type PaymentResult struct {
	OrderID    string
	Amount     float64
	ResultCode int
	TransID    string
	Message    string
}

type PaymentServiceOptions struct {
	Store      *repositories.Store
	Dispatcher notification.Dispatcher
	Logger     logger.Logger
	Now        func() time.Time
}

type PaymentService struct {
	store      *repositories.Store
	dispatcher notification.Dispatcher
	logger     logger.Logger
	now        func() time.Time
}

func NewPaymentService(opts PaymentServiceOptions) *PaymentService {
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = notification.NewStoreDispatcher(opts.Store.Notifications, nil, opts.Logger)
	}
	return &PaymentService{
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		logger:     opts.Logger,
		now:        opts.Now,
	}
}

// paidLater là các trạng thái vẫn nhận tiền mà không đổi status (đơn tiền mặt)
var paidLater = []constants.BookingStatus{
	constants.BookingStatusConfirmed,
	constants.BookingStatusNeedCheckIn,
	constants.BookingStatusCheckedIn,
	constants.BookingStatusNeedCheckOut,
	constants.BookingStatusCheckedOut,
	constants.BookingStatusCompleted,
}

// ConfirmPayment xử lý callback của cổng thanh toán. Gọi lại cùng OrderID không tạo thêm giao dịch và không đổi trạng thái lần nữa
func (s *PaymentService) ConfirmPayment(ctx context.Context, in PaymentResult) (*models.Booking, error) {
	if in.OrderID == "" {
		return nil, apperrors.Validation(apperrors.ErrCodeRequiredField, "orderId không được để trống")
	}
	now := s.now().UTC()

	var (
		bookingID uint
		kind      constants.NotificationKind
	)
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		info, err := tx.Payments.FindInformationByOrderID(ctx, in.OrderID, true)
		if err != nil {
			return err
		}
		bookingID = info.BookingID
		if info.Status == constants.PaymentStatusPaid || info.Status == constants.PaymentStatusRefund {
			return nil
		}

		code := in.ResultCode
		if in.ResultCode != constants.PaymentResultSuccess {
			pending := []constants.PaymentStatus{constants.PaymentStatusBooking, constants.PaymentStatusPending}
			ok, err := tx.Payments.UpdateInformation(ctx, info.ID, pending, map[string]interface{}{
				"status":      constants.PaymentStatusFailed,
				"result_code": code,
				"trans_id":    in.TransID,
				"message":     in.Message,
			})
			if err != nil || !ok {
				return err
			}
			if _, err := tx.Bookings.ConditionalUpdate(ctx, info.BookingID, repositories.Guard{PaymentStatuses: pending},
				map[string]interface{}{"payment_status": constants.PaymentStatusFailed}); err != nil {
				return err
			}
			kind = constants.NotificationPaymentFailed
			return nil
		}

		if math.Abs(in.Amount-info.Amount) >= 1 {
			return apperrors.Validation(apperrors.ErrCodeAmountMismatch,
				fmt.Sprintf("Số tiền thanh toán %.0f không khớp với đơn %.0f", in.Amount, info.Amount))
		}
		created, err := tx.Payments.CreateTransaction(ctx, &models.PaymentTransaction{
			BookingID:            info.BookingID,
			PaymentInformationID: info.ID,
			OrderID:              info.OrderID,
			Kind:                 constants.PaymentTransactionPayment,
			Amount:               in.Amount,
			ExternalRef:          in.TransID,
		})
		if err != nil || !created {
			return err
		}
		if _, err := tx.Payments.UpdateInformation(ctx, info.ID, constants.UnpaidPaymentStatuses, map[string]interface{}{
			"status":      constants.PaymentStatusPaid,
			"result_code": code,
			"trans_id":    in.TransID,
			"message":     in.Message,
			"paid_at":     now,
		}); err != nil {
			return err
		}
		kind, err = s.applyPaid(ctx, tx, info.BookingID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	b, err := s.store.Bookings.FindDetail(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if kind != "" {
		n := notification.NewMessageBuilder(b, kind).Build()
		if _, err := s.dispatcher.Dispatch(ctx, n); err != nil {
			s.logger.Warn("dispatch %s: %v", n.DedupeKey, err)
		}
	}
	return b, nil
}

// applyPaid: PENDING → CONFIRMED; đơn tiền mặt giữ nguyên status; đơn đã bị hủy trước khi tiền về thì chờ hoàn toàn bộ
func (s *PaymentService) applyPaid(ctx context.Context, tx *repositories.Store, bookingID uint, now time.Time) (constants.NotificationKind, error) {
	to, err := models.NextStatus(constants.BookingStatusPending, models.EventPaymentConfirmed)
	if err != nil {
		return "", err
	}
	ok, err := tx.Bookings.Transition(ctx, bookingID, repositories.Guard{
		Statuses:        models.SourcesFor(models.EventPaymentConfirmed),
		PaymentStatuses: constants.UnpaidPaymentStatuses,
	}, to, map[string]interface{}{
		"payment_status": constants.PaymentStatusPaid,
		"confirm_date":   now,
	})
	if err != nil || ok {
		return constants.NotificationPaymentConfirmed, err
	}

	ok, err = tx.Bookings.ConditionalUpdate(ctx, bookingID, repositories.Guard{
		Statuses:        paidLater,
		PaymentStatuses: constants.UnpaidPaymentStatuses,
	}, map[string]interface{}{"payment_status": constants.PaymentStatusPaid})
	if err != nil || ok {
		return constants.NotificationPaymentConfirmed, err
	}

	ok, err = tx.Bookings.ConditionalUpdate(ctx, bookingID, repositories.Guard{
		Statuses:        []constants.BookingStatus{constants.BookingStatusCancelled},
		PaymentStatuses: constants.UnpaidPaymentStatuses,
	}, map[string]interface{}{
		"payment_status": constants.PaymentStatusPaid,
		"refund_amount":  gorm.Expr("total_price"),
	})
	if err != nil {
		return "", err
	}
	if ok {
		s.logger.Warn("booking %d paid after cancellation, full refund scheduled", bookingID)
	}
	return "", nil
}

// MarkPaid cho chủ nhà xác nhận khách đã trả tiền mặt, đi qua cùng luồng với callback
func (s *PaymentService) MarkPaid(ctx context.Context, bookingID uint, actor Actor) (*models.Booking, error) {
	if actor.Role == constants.RoleCustomer {
		return nil, apperrors.Forbidden("Chỉ chủ nhà được xác nhận thanh toán")
	}
	b, err := s.store.Bookings.FindDetail(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, b); err != nil {
		return nil, err
	}
	if b.PaymentMethod != constants.PaymentMethodCash {
		return nil, apperrors.Validation(apperrors.ErrCodeValidation, "Chỉ xác nhận thủ công cho đơn trả tiền mặt")
	}
	info, err := s.store.Payments.FindInformationByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return s.ConfirmPayment(ctx, PaymentResult{
		OrderID:    info.OrderID,
		Amount:     info.Amount,
		ResultCode: constants.PaymentResultSuccess,
		TransID:    fmt.Sprintf("cash-%d", b.ID),
		Message:    "Thanh toán tiền mặt",
	})
}
