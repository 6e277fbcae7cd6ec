package models

import (
	"time"

	"gorm.io/plugin/soft_delete"
)

// PolicySystem là chính sách hủy/hoàn tiền áp dụng cho đơn đặt phòng
type PolicySystem struct {
	ID               uint                  `json:"id" gorm:"primaryKey"`
	Code             string                `json:"code" gorm:"uniqueIndex;size:64"`
	Name             string                `json:"name"`
	Description      string                `json:"description"`
	RefundWindowHour int                   `json:"refundWindowHour"` // hủy trước giờ nhận phòng ít nhất N giờ
	RefundPercent    int                   `json:"refundPercent"`
	IsActive         bool                  `json:"isActive"`
	IsDelete         soft_delete.DeletedAt `json:"isDelete" gorm:"softDelete:flag;index"`
	CreatedAt        time.Time             `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time             `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *PolicySystem) Snapshot(bookingID uint) BookingPolicy {
	return BookingPolicy{
		BookingID:        bookingID,
		PolicySystemID:   p.ID,
		Code:             p.Code,
		Name:             p.Name,
		RefundWindowHour: p.RefundWindowHour,
		RefundPercent:    p.RefundPercent,
	}
}
