package constants

// User roles
const (
	RoleCustomer     = 0
	RoleSuperAdmin   = 1
	RoleOwner        = 2
	RoleReceptionist = 3
)

// BookingStatus trạng thái của đơn đặt phòng
type BookingStatus string

const (
	BookingStatusPending      BookingStatus = "PENDING"
	BookingStatusConfirmed    BookingStatus = "CONFIRMED"
	BookingStatusNeedCheckIn  BookingStatus = "NEEDCHECKIN"
	BookingStatusCheckedIn    BookingStatus = "CHECKEDIN"
	BookingStatusNeedCheckOut BookingStatus = "NEEDCHECKOUT"
	BookingStatusCheckedOut   BookingStatus = "CHECKEDOUT"
	BookingStatusCancelled    BookingStatus = "CANCELLED"
	BookingStatusCompleted    BookingStatus = "COMPLETED"
	BookingStatusRefund       BookingStatus = "REFUND"
)

// BlockingBookingStatuses là các trạng thái còn giữ phòng
var BlockingBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusNeedCheckIn,
	BookingStatusCheckedIn,
	BookingStatusNeedCheckOut,
	BookingStatusCheckedOut,
}

// RoomPasswordStatuses: từ CONFIRMED tới trước CHECKEDOUT
var RoomPasswordStatuses = []BookingStatus{
	BookingStatusConfirmed,
	BookingStatusNeedCheckIn,
	BookingStatusCheckedIn,
	BookingStatusNeedCheckOut,
}

// PaymentStatus trạng thái thanh toán, độc lập với BookingStatus
type PaymentStatus string

const (
	PaymentStatusBooking PaymentStatus = "BOOKING"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusRefund  PaymentStatus = "REFUND"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// UnpaidPaymentStatuses là các trạng thái còn có thể chuyển sang PAID
var UnpaidPaymentStatuses = []PaymentStatus{
	PaymentStatusBooking,
	PaymentStatusPending,
	PaymentStatusFailed,
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodMomo PaymentMethod = "MOMO"
)

// PaymentResultSuccess là resultCode thành công của cổng thanh toán
const PaymentResultSuccess = 0

type PaymentTransactionKind string

const (
	PaymentTransactionPayment PaymentTransactionKind = "PAYMENT"
	PaymentTransactionRefund  PaymentTransactionKind = "REFUND"
)

type AccommodationStatus string

const (
	AccommodationStatusActive      AccommodationStatus = "ACTIVE"
	AccommodationStatusMaintenance AccommodationStatus = "MAINTENANCE"
)

type CancelSource string

const (
	CancelSourceCustomer CancelSource = "CUSTOMER"
	CancelSourceOwner    CancelSource = "OWNER"
	CancelSourceSystem   CancelSource = "SYSTEM"
)

// NotificationKind loại thông báo, cùng booking id tạo thành khóa chống trùng
type NotificationKind string

const (
	NotificationBookingCreated    NotificationKind = "BOOKING_CREATED"
	NotificationPaymentConfirmed  NotificationKind = "PAYMENT_CONFIRMED"
	NotificationPaymentFailed     NotificationKind = "PAYMENT_FAILED"
	NotificationCheckInRequested  NotificationKind = "CHECKIN_REQUESTED"
	NotificationCheckOutRequested NotificationKind = "CHECKOUT_REQUESTED"
	NotificationAutoCompleted     NotificationKind = "AUTO_COMPLETED"
	NotificationCompleted         NotificationKind = "COMPLETED"
	NotificationCancelled         NotificationKind = "CANCELLED"
	NotificationExpired           NotificationKind = "EXPIRED"
	NotificationRefunded          NotificationKind = "REFUNDED"
)
