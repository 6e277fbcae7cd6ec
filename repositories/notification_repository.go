package repositories

import (
	"context"

	"bookinghub/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository struct {
	db *gorm.DB
}

func (r *NotificationRepository) ExistsByDedupeKey(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("dedupe_key = ?", key).Count(&count).Error
	return count > 0, err
}

// CreateIfAbsent trả về false khi khóa chống trùng đã tồn tại
func (r *NotificationRepository) CreateIfAbsent(ctx context.Context, n *models.Notification) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedupe_key"}}, DoNothing: true}).
		Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error) {
	var (
		list  []models.Notification
		total int64
	)
	base := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(page, limit)
	err := base.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *NotificationRepository) CountByBooking(ctx context.Context, bookingID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("booking_id = ?", bookingID).Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
