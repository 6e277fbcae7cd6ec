package builders

import (
	"time"

	"bookinghub/models"
)

// BookingBuilder giúp tạo booking theo từng bước
type BookingBuilder struct {
	booking *models.Booking
}

// NewBookingBuilder tạo instance mới của BookingBuilder
func NewBookingBuilder() *BookingBuilder {
	return &BookingBuilder{
		booking: &models.Booking{},
	}
}

// WithCustomer thêm thông tin khách
func (b *BookingBuilder) WithCustomer(customerID uint) *BookingBuilder {
	b.booking.CustomerID = customerID
	return b
}

// WithUnit gán loại phòng và phòng cụ thể
func (b *BookingBuilder) WithUnit(unit *models.Accommodation) *BookingBuilder {
	b.booking.AccommodationTypeID = unit.AccommodationTypeID
	b.booking.AccommodationID = unit.ID
	return b
}

// WithWindow đặt giờ nhận phòng và số giờ thuê, ReservedUntil được tính luôn
func (b *BookingBuilder) WithWindow(checkIn time.Time, hours int) *BookingBuilder {
	b.booking.CheckInHour = checkIn.UTC()
	b.booking.DurationBookingHour = hours
	b.booking.ReservedUntil = b.booking.End().UTC()
	return b
}

func (b *BookingBuilder) WithGuests(adult, child int) *BookingBuilder {
	b.booking.AdultNumber = adult
	b.booking.ChildNumber = child
	return b
}

// WithPricing sao chép giá từ loại phòng tại thời điểm đặt
func (b *BookingBuilder) WithPricing(basePrice, overtimeHourly, discount, total float64) *BookingBuilder {
	b.booking.BasePrice = basePrice
	b.booking.OvertimeHourlyPrice = overtimeHourly
	b.booking.DiscountAmount = discount
	b.booking.TotalPrice = total
	return b
}

func (b *BookingBuilder) WithCoupon(coupon *models.Coupon) *BookingBuilder {
	if coupon != nil {
		id := coupon.ID
		b.booking.CouponID = &id
	}
	return b
}

// Build tạo booking hoàn chỉnh
func (b *BookingBuilder) Build() *models.Booking {
	return b.booking
}
