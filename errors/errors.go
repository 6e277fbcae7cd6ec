package errors

import (
	"errors"
	"fmt"
)

// Kind phân loại lỗi theo cách xử lý ở tầng trên
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindExternal     Kind = "EXTERNAL_SERVICE"
	KindTransaction  Kind = "TRANSACTION"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindInternal     Kind = "INTERNAL"
)

// ErrorCode định nghĩa mã lỗi
type ErrorCode string

const (
	// Auth errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeMissingToken ErrorCode = "MISSING_TOKEN"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeRequiredField ErrorCode = "REQUIRED_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	ErrCodeInvalidWindow ErrorCode = "INVALID_WINDOW"

	// Booking errors
	ErrCodeNoUnitsAtLocation ErrorCode = "NO_UNITS_AT_LOCATION"
	ErrCodeUnitUnavailable   ErrorCode = "UNIT_UNAVAILABLE"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeStaleTransition   ErrorCode = "STALE_TRANSITION"
	ErrCodeCapacityExceeded  ErrorCode = "CAPACITY_EXCEEDED"
	ErrCodeInvalidPassword   ErrorCode = "INVALID_ROOM_PASSWORD"

	// Coupon errors
	ErrCodeCouponUnusable ErrorCode = "COUPON_UNUSABLE"

	// Payment errors
	ErrCodeAmountMismatch ErrorCode = "AMOUNT_MISMATCH"
	ErrCodePaymentGateway ErrorCode = "PAYMENT_GATEWAY_ERROR"

	// Database errors
	ErrCodeDBError     ErrorCode = "DB_ERROR"
	ErrCodeDBNotFound  ErrorCode = "DB_NOT_FOUND"
	ErrCodeTransaction ErrorCode = "TRANSACTION_ABORTED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError định nghĩa lỗi của ứng dụng
type AppError struct {
	Kind    Kind
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is so khớp theo Kind, để errors.Is(err, ErrConflict) nhận mọi lỗi conflict
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Kind == e.Kind
}

// NewAppError tạo một AppError mới
func NewAppError(kind Kind, code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Validation(code ErrorCode, message string) *AppError {
	return NewAppError(KindValidation, code, message, nil)
}

func NotFound(message string) *AppError {
	return NewAppError(KindNotFound, ErrCodeDBNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return NewAppError(KindConflict, ErrCodeStaleTransition, message, nil)
}

func External(message string, err error) *AppError {
	return NewAppError(KindExternal, ErrCodePaymentGateway, message, err)
}

func Transaction(err error) *AppError {
	return NewAppError(KindTransaction, ErrCodeTransaction, "Giao dịch dữ liệu thất bại", err)
}

func Unauthorized(code ErrorCode, message string, err error) *AppError {
	return NewAppError(KindUnauthorized, code, message, err)
}

func Forbidden(message string) *AppError {
	return NewAppError(KindForbidden, ErrCodeForbidden, message, nil)
}

func Internal(message string, err error) *AppError {
	return NewAppError(KindInternal, ErrCodeDBError, message, err)
}

// IsAppError kiểm tra xem error có phải là AppError không
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError lấy AppError từ error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode kiểm tra mã lỗi cụ thể trong chuỗi wrap
func HasCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

var (
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrNotFound     = &AppError{Kind: KindNotFound}
	ErrConflict     = &AppError{Kind: KindConflict}
	ErrExternal     = &AppError{Kind: KindExternal}
	ErrTransaction  = &AppError{Kind: KindTransaction}
	ErrUnauthorized = &AppError{Kind: KindUnauthorized}
	ErrForbidden    = &AppError{Kind: KindForbidden}

	ErrNoUnitsAtLocation = &AppError{Kind: KindValidation, Code: ErrCodeNoUnitsAtLocation}
	ErrUnitUnavailable   = &AppError{Kind: KindValidation, Code: ErrCodeUnitUnavailable}
	ErrInvalidTransition = &AppError{Kind: KindValidation, Code: ErrCodeInvalidTransition}
)
