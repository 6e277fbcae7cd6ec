package services

import (
	"time"

	"bookinghub/constants"
	apperrors "bookinghub/errors"
	"bookinghub/models"
)

// BookingProcess định nghĩa quy trình đặt phòng theo phương thức thanh toán
type BookingProcess interface {
	Method() constants.PaymentMethod
	ValidateBooking(b *models.Booking) error
	ApplyInitialState(b *models.Booking, now time.Time)
}

// BaseBookingProcess định nghĩa cấu trúc cơ bản cho quy trình đặt phòng
type BaseBookingProcess struct {
	method constants.PaymentMethod
}

func (p BaseBookingProcess) Method() constants.PaymentMethod {
	return p.method
}

func (p BaseBookingProcess) ValidateBooking(b *models.Booking) error {
	if b.CustomerID == 0 {
		return apperrors.Validation(apperrors.ErrCodeRequiredField, "Khách hàng không được để trống")
	}
	if b.AccommodationID == 0 {
		return apperrors.Validation(apperrors.ErrCodeRequiredField, "Phòng không được để trống")
	}
	if b.DurationBookingHour <= 0 {
		return apperrors.Validation(apperrors.ErrCodeValidation, "Số giờ thuê phải lớn hơn 0")
	}
	return nil
}

// CashBooking trả tiền mặt tại quầy: giữ phòng ngay, chủ nhà xác nhận thanh toán sau
type CashBooking struct {
	BaseBookingProcess
}

func NewCashBooking() *CashBooking {
	return &CashBooking{BaseBookingProcess{method: constants.PaymentMethodCash}}
}

func (p *CashBooking) ApplyInitialState(b *models.Booking, now time.Time) {
	b.PaymentMethod = p.method
	b.Status = constants.BookingStatusConfirmed
	b.PaymentStatus = constants.PaymentStatusBooking
	confirm := now.UTC()
	b.ConfirmDate = &confirm
}

// MomoBooking chờ callback của cổng thanh toán trong thời hạn timeout
type MomoBooking struct {
	BaseBookingProcess
	timeout time.Duration
}

func NewMomoBooking(timeout time.Duration) *MomoBooking {
	return &MomoBooking{BaseBookingProcess: BaseBookingProcess{method: constants.PaymentMethodMomo}, timeout: timeout}
}

func (p *MomoBooking) ValidateBooking(b *models.Booking) error {
	if err := p.BaseBookingProcess.ValidateBooking(b); err != nil {
		return err
	}
	if b.TotalPrice <= 0 {
		return apperrors.Validation(apperrors.ErrCodeValidation, "Đơn 0 đồng không thanh toán qua MOMO")
	}
	return nil
}

func (p *MomoBooking) ApplyInitialState(b *models.Booking, now time.Time) {
	b.PaymentMethod = p.method
	b.Status = constants.BookingStatusPending
	b.PaymentStatus = constants.PaymentStatusPending
	deadline := now.UTC().Add(p.timeout)
	b.PaymentDeadline = &deadline
}

func NewBookingProcess(method constants.PaymentMethod, timeout time.Duration) (BookingProcess, error) {
	switch method {
	case constants.PaymentMethodCash:
		return NewCashBooking(), nil
	case constants.PaymentMethodMomo:
		return NewMomoBooking(timeout), nil
	}
	return nil, apperrors.Validation(apperrors.ErrCodeInvalidFormat, "Phương thức thanh toán không hợp lệ")
}
