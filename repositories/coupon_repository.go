package repositories

import (
	"context"
	"time"

	"bookinghub/models"

	"gorm.io/gorm"
)

type CouponRepository struct {
	db *gorm.DB
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", models.NormalizeCouponCode(code)).First(&c).Error
	if err != nil {
		return nil, notFoundOr(err, "Không tìm thấy mã giảm giá")
	}
	return &c, nil
}

// Deactivate tắt một mã đang hoạt động, trả về false nếu mã đã tắt từ trước
func (r *CouponRepository) Deactivate(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	return res.RowsAffected == 1, res.Error
}

// Consume trừ một lượt dùng nếu mã còn hiệu lực
func (r *CouponRepository) Consume(ctx context.Context, id uint, now time.Time) (bool, error) {
	now = now.UTC()
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND is_active = ? AND quantity > 0 AND start_date <= ? AND end_date >= ?", id, true, now, now).
		Update("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CouponRepository) Release(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + 1")).Error
}

// DeactivateExpired tắt các mã có end_date đã qua
func (r *CouponRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("is_active = ? AND end_date < ?", true, now.UTC()).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *CouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	c.Code = models.NormalizeCouponCode(c.Code)
	return r.db.WithContext(ctx).Create(c).Error
}
