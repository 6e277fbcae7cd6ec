package models

import (
	"math"
	"strings"
	"time"

	"github.com/fiam/gounidecode/unidecode"
	"gorm.io/gorm"
	"gorm.io/plugin/soft_delete"
)

type Coupon struct {
	ID                uint                  `json:"id" gorm:"primaryKey"`
	Code              string                `json:"code" gorm:"uniqueIndex;size:64;not null"`
	Name              string                `json:"name"`
	Description       string                `json:"description"`
	DiscountPercent   int                   `json:"discountPercent"`   // % giảm, tối đa 100
	MaxDiscountAmount float64               `json:"maxDiscountAmount"` // 0 là không giới hạn
	Quantity          int                   `json:"quantity"`          // số lượt còn lại
	StartDate         time.Time             `json:"startDate"`
	EndDate           time.Time             `json:"endDate" gorm:"index"`
	IsActive          bool                  `json:"isActive" gorm:"index"`
	IsDelete          soft_delete.DeletedAt `json:"isDelete" gorm:"softDelete:flag;index"`
	CreatedAt         time.Time             `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time             `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Coupon) BeforeSave(tx *gorm.DB) error {
	c.StartDate = c.StartDate.UTC()
	c.EndDate = c.EndDate.UTC()
	return nil
}

// NormalizeCouponCode bỏ dấu tiếng Việt và khoảng trắng, viết hoa
func NormalizeCouponCode(code string) string {
	code = unidecode.Unidecode(strings.TrimSpace(code))
	return strings.ToUpper(strings.ReplaceAll(code, " ", ""))
}

// Expired chỉ kiểm tra thời gian, không quan tâm IsActive
func (c *Coupon) Expired(now time.Time) bool {
	return now.After(c.EndDate)
}

func (c *Coupon) Usable(now time.Time) bool {
	return c.IsActive && !now.Before(c.StartDate) && !c.Expired(now) && c.Quantity > 0
}

// DiscountFor tính số tiền giảm cho một tạm tính
func (c *Coupon) DiscountFor(subtotal float64) float64 {
	if c == nil || c.DiscountPercent <= 0 {
		return 0
	}
	percent := c.DiscountPercent
	if percent > 100 {
		percent = 100
	}
	discount := subtotal * float64(percent) / 100
	if c.MaxDiscountAmount > 0 && discount > c.MaxDiscountAmount {
		discount = c.MaxDiscountAmount
	}
	return roundVND(discount)
}

// roundVND làm tròn tới đồng
func roundVND(v float64) float64 {
	return math.Round(v)
}
