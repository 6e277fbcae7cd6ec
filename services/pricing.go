package services

import (
	"math"
	"time"

	"bookinghub/models"
)

// PriceQuote là bảng tính tiền của một đơn
type PriceQuote struct {
	BasePrice           float64 `json:"basePrice"`
	OvertimeHourlyPrice float64 `json:"overtimeHourlyPrice"`
	DurationHour        int     `json:"durationHour"`
	OvertimeHours       int     `json:"overtimeHours"`
	Subtotal            float64 `json:"subtotal"`
	Discount            float64 `json:"discount"`
	Total               float64 `json:"total"`
}

// CalculatePrice: giá cơ bản gồm BaseDurationHour giờ đầu, mỗi giờ sau tính theo giá phụ trội
func CalculatePrice(t *models.AccommodationType, durationHour int, coupon *models.Coupon) PriceQuote {
	included := t.BaseDurationHour
	if included < 1 {
		included = 1
	}
	q := PriceQuote{
		BasePrice:           t.BasePrice,
		OvertimeHourlyPrice: t.OvertimeHourlyPrice,
		DurationHour:        durationHour,
	}
	if durationHour > included {
		q.OvertimeHours = durationHour - included
	}
	q.Subtotal = math.Round(t.BasePrice + float64(q.OvertimeHours)*t.OvertimeHourlyPrice)
	q.Discount = coupon.DiscountFor(q.Subtotal)
	q.Total = q.Subtotal - q.Discount
	if q.Total < 0 {
		q.Total = 0
	}
	return q
}

// OvertimeCharge tính phí trả phòng trễ, phần lẻ giờ làm tròn lên
func OvertimeCharge(reservedUntil, checkOut time.Time, hourly float64) (int, float64) {
	late := checkOut.Sub(reservedUntil)
	if late <= 0 {
		return 0, 0
	}
	hours := int(math.Ceil(late.Hours()))
	return hours, math.Round(float64(hours) * hourly)
}
