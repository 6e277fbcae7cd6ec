package services

import (
	"testing"
	"time"

	"bookinghub/models"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePrice(t *testing.T) {
	typ := &models.AccommodationType{BasePrice: 100000, BaseDurationHour: 2, OvertimeHourlyPrice: 40000}

	tests := []struct {
		name     string
		hours    int
		coupon   *models.Coupon
		overtime int
		total    float64
	}{
		{"trong giờ cơ bản", 2, nil, 0, 100000},
		{"có giờ phụ trội", 5, nil, 3, 220000},
		{"giảm theo phần trăm", 5, &models.Coupon{DiscountPercent: 10}, 3, 198000},
		{"giảm bị chặn trần", 5, &models.Coupon{DiscountPercent: 50, MaxDiscountAmount: 30000}, 3, 190000},
		{"giảm quá 100%", 1, &models.Coupon{DiscountPercent: 150}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := CalculatePrice(typ, tt.hours, tt.coupon)
			assert.Equal(t, tt.overtime, q.OvertimeHours)
			assert.Equal(t, tt.total, q.Total)
			assert.Equal(t, q.Subtotal-q.Discount, q.Total)
		})
	}
}

func TestCalculatePrice_ZeroBaseDuration(t *testing.T) {
	q := CalculatePrice(&models.AccommodationType{BasePrice: 80000, OvertimeHourlyPrice: 20000}, 3, nil)
	assert.Equal(t, 2, q.OvertimeHours)
	assert.Equal(t, 120000.0, q.Total)
}

func TestOvertimeCharge(t *testing.T) {
	end := time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC)

	hours, fee := OvertimeCharge(end, end.Add(-time.Minute), 50000)
	assert.Zero(t, hours)
	assert.Zero(t, fee)

	hours, fee = OvertimeCharge(end, end, 50000)
	assert.Zero(t, hours)
	assert.Zero(t, fee)

	hours, fee = OvertimeCharge(end, end.Add(time.Second), 50000)
	assert.Equal(t, 1, hours)
	assert.Equal(t, 50000.0, fee)

	hours, fee = OvertimeCharge(end, end.Add(2*time.Hour), 50000)
	assert.Equal(t, 2, hours)
	assert.Equal(t, 100000.0, fee)
}
