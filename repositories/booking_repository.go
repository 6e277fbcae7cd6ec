package repositories

import (
	"context"
	"time"

	"bookinghub/constants"
	"bookinghub/models"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

// Guard là điều kiện trạng thái hiện tại cho một cập nhật có điều kiện
type Guard struct {
	Statuses        []constants.BookingStatus
	PaymentStatuses []constants.PaymentStatus
}

func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Omit("Customer", "AccommodationType", "Accommodation", "Coupon", "Policies").Create(b).Error
}

func (r *BookingRepository) CreatePolicies(ctx context.Context, policies []models.BookingPolicy) error {
	if len(policies) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&policies).Error
}

func (r *BookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).Preload("Policies").First(&b, id).Error; err != nil {
		return nil, notFoundOr(err, "Không tìm thấy đơn đặt phòng")
	}
	return &b, nil
}

// FindDetail nạp kèm khách hàng, loại phòng, phòng, cơ sở, mã giảm giá và chính sách
func (r *BookingRepository) FindDetail(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	err := r.withDetail(r.db.WithContext(ctx)).First(&b, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Không tìm thấy đơn đặt phòng")
	}
	return &b, nil
}

func (r *BookingRepository) withDetail(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Customer").
		Preload("AccommodationType").
		Preload("Accommodation.RentalLocation").
		Preload("Coupon").
		Preload("Policies")
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID uint, page, limit int) ([]models.Booking, int64, error) {
	var (
		list  []models.Booking
		total int64
	)
	base := r.db.WithContext(ctx).Model(&models.Booking{}).Where("customer_id = ?", customerID).Session(&gorm.Session{})
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(page, limit)
	err := r.withDetail(base).Order("check_in_hour DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

// ConflictingUnitIDs trả về các phòng có đơn còn giữ chỗ giao với [start, end)
func (r *BookingRepository) ConflictingUnitIDs(ctx context.Context, unitIDs []uint, start, end time.Time) ([]uint, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.overlapping(r.db.WithContext(ctx), start, end).
		Where("accommodation_id IN ?", unitIDs).
		Distinct().
		Pluck("accommodation_id", &ids).Error
	return ids, err
}

// Occupied liệt kê các đơn còn giữ chỗ giao với [start, end) của các phòng
func (r *BookingRepository) Occupied(ctx context.Context, unitIDs []uint, start, end time.Time) ([]models.Booking, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	var list []models.Booking
	err := r.overlapping(r.db.WithContext(ctx), start, end).
		Where("accommodation_id IN ?", unitIDs).
		Order("accommodation_id ASC, check_in_hour ASC").
		Find(&list).Error
	return list, err
}

func (r *BookingRepository) overlapping(tx *gorm.DB, start, end time.Time) *gorm.DB {
	return tx.Model(&models.Booking{}).
		Where("status IN ?", constants.BlockingBookingStatuses).
		Where("check_in_hour < ? AND reserved_until > ?", end.UTC(), start.UTC())
}

// ConditionalUpdate chỉ cập nhật khi đơn còn ở trạng thái guard cho phép
func (r *BookingRepository) ConditionalUpdate(ctx context.Context, id uint, guard Guard, updates map[string]interface{}) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id)
	if len(guard.Statuses) > 0 {
		tx = tx.Where("status IN ?", guard.Statuses)
	}
	if len(guard.PaymentStatuses) > 0 {
		tx = tx.Where("payment_status IN ?", guard.PaymentStatuses)
	}
	res := tx.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Transition đổi status theo kiểu compare-and-set
func (r *BookingRepository) Transition(ctx context.Context, id uint, guard Guard, to constants.BookingStatus, updates map[string]interface{}) (bool, error) {
	set := map[string]interface{}{"status": to}
	for k, v := range updates {
		set[k] = v
	}
	return r.ConditionalUpdate(ctx, id, guard, set)
}

// SoftDelete đánh dấu is_delete cho đơn ở một trong các trạng thái cho phép
func (r *BookingRepository) SoftDelete(ctx context.Context, id uint, statuses []constants.BookingStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status IN ?", id, statuses).
		Delete(&models.Booking{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DueFilter mô tả một truy vấn quét của scheduler
type DueFilter struct {
	Statuses        []constants.BookingStatus
	PaymentStatuses []constants.PaymentStatus
	Where           string
	Args            []interface{}
	Limit           int
}

func (r *BookingRepository) FindDue(ctx context.Context, f DueFilter) ([]models.Booking, error) {
	tx := r.db.WithContext(ctx).Model(&models.Booking{})
	if len(f.Statuses) > 0 {
		tx = tx.Where("status IN ?", f.Statuses)
	}
	if len(f.PaymentStatuses) > 0 {
		tx = tx.Where("payment_status IN ?", f.PaymentStatuses)
	}
	if f.Where != "" {
		tx = tx.Where(f.Where, f.Args...)
	}
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}
	var list []models.Booking
	err := tx.Order("id ASC").Find(&list).Error
	return list, err
}

// MissingNotification tìm các đơn ở trạng thái status chưa có thông báo loại kind
func (r *BookingRepository) MissingNotification(ctx context.Context, f DueFilter, kind constants.NotificationKind) ([]models.Booking, error) {
	where := "NOT EXISTS (SELECT 1 FROM notifications n WHERE n.booking_id = bookings.id AND n.kind = ?)"
	args := []interface{}{kind}
	if f.Where != "" {
		where = "(" + f.Where + ") AND " + where
		args = append(append([]interface{}{}, f.Args...), kind)
	}
	f.Where, f.Args = where, args
	return r.FindDue(ctx, f)
}
