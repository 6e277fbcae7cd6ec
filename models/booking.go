package models

import (
	"time"

	"bookinghub/constants"

	"gorm.io/gorm"
	"gorm.io/plugin/soft_delete"
)

type Booking struct {
	ID                  uint               `gorm:"primaryKey" json:"id"`
	CustomerID          uint               `gorm:"index;not null" json:"customerId"`
	Customer            *User              `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	AccommodationTypeID uint               `gorm:"index;not null" json:"accommodationTypeId"`
	AccommodationType   *AccommodationType `gorm:"foreignKey:AccommodationTypeID" json:"accommodationType,omitempty"`
	AccommodationID     uint               `gorm:"index;not null" json:"accommodationId"`
	Accommodation       *Accommodation     `gorm:"foreignKey:AccommodationID" json:"accommodation,omitempty"`
	CouponID            *uint              `json:"couponId,omitempty"`
	Coupon              *Coupon            `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
	FeedbackID          *uint              `json:"feedbackId,omitempty"`
	Policies            []BookingPolicy    `gorm:"foreignKey:BookingID" json:"policies,omitempty"`

	CheckInHour     time.Time  `gorm:"index;not null" json:"checkInHour"`
	CheckOutHour    *time.Time `json:"checkOutHour,omitempty"`
	ReservedUntil   time.Time  `gorm:"index;not null" json:"reservedUntil"` // CheckInHour + DurationBookingHour
	ConfirmDate     *time.Time `json:"confirmDate,omitempty"`
	CompletedDate   *time.Time `json:"completedDate,omitempty"`
	CheckedInAt     *time.Time `json:"checkedInAt,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
	PaymentDeadline *time.Time `json:"paymentDeadline,omitempty"`

	BasePrice           float64 `json:"basePrice"`
	OvertimeHourlyPrice float64 `json:"overtimeHourlyPrice"`
	AdultNumber         int     `json:"adultNumber"`
	ChildNumber         int     `json:"childNumber"`
	DurationBookingHour int     `gorm:"not null" json:"durationBookingHour"`
	DiscountAmount      float64 `json:"discountAmount"`
	OvertimeFee         float64 `json:"overtimeFee"`
	TotalPrice          float64 `json:"totalPrice"`
	RefundAmount        float64 `json:"refundAmount"`

	PaymentMethod constants.PaymentMethod `gorm:"size:20" json:"paymentMethod"`
	PaymentStatus constants.PaymentStatus `gorm:"size:20;index" json:"paymentStatus"`
	Status        constants.BookingStatus `gorm:"size:20;index" json:"status"`
	CancelSource  constants.CancelSource  `gorm:"size:20" json:"cancelSource,omitempty"`
	CancelReason  string                  `json:"cancelReason,omitempty"`
	IsNoShow      bool                    `gorm:"default:false" json:"isNoShow"`

	PasswordRoomHash string `json:"-"`
	EKeyNo           string `json:"eKeyNo,omitempty"`

	IsDelete  soft_delete.DeletedAt `gorm:"softDelete:flag;index" json:"isDelete"`
	CreatedAt time.Time             `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time             `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BookingPolicy lưu lại giá trị chính sách tại thời điểm đặt
type BookingPolicy struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	BookingID        uint      `gorm:"index;not null" json:"bookingId"`
	PolicySystemID   uint      `gorm:"index;not null" json:"policySystemId"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	RefundWindowHour int       `json:"refundWindowHour"`
	RefundPercent    int       `json:"refundPercent"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// BeforeSave giữ các mốc thời gian ở UTC
func (b *Booking) BeforeSave(tx *gorm.DB) error {
	b.CheckInHour = b.CheckInHour.UTC()
	b.ReservedUntil = b.ReservedUntil.UTC()
	return nil
}

// Overlaps so khớp hai khoảng nửa mở [start, end)
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// End là thời điểm kết thúc danh nghĩa của đơn
func (b *Booking) End() time.Time {
	return b.CheckInHour.Add(time.Duration(b.DurationBookingHour) * time.Hour)
}

func (b *Booking) OverlapsWindow(start, end time.Time) bool {
	return Overlaps(b.CheckInHour, b.End(), start, end)
}

// RefundFor tính số tiền hoàn theo chính sách có lợi nhất còn trong hạn
func (b *Booking) RefundFor(now time.Time) float64 {
	if b.PaymentStatus != constants.PaymentStatusPaid {
		return 0
	}
	percent := 0
	for _, p := range b.Policies {
		deadline := b.CheckInHour.Add(-time.Duration(p.RefundWindowHour) * time.Hour)
		if now.After(deadline) {
			continue
		}
		if p.RefundPercent > percent {
			percent = p.RefundPercent
		}
	}
	if percent > 100 {
		percent = 100
	}
	return roundVND(b.TotalPrice * float64(percent) / 100)
}
