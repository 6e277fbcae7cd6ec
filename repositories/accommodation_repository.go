package repositories

import (
	"context"

	"bookinghub/constants"
	"bookinghub/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccommodationRepository struct {
	db *gorm.DB
}

func (r *AccommodationRepository) FindType(ctx context.Context, id uint) (*models.AccommodationType, error) {
	var t models.AccommodationType
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFoundOr(err, "Không tìm thấy loại phòng")
	}
	return &t, nil
}

func (r *AccommodationRepository) FindLocation(ctx context.Context, id uint) (*models.RentalLocation, error) {
	var l models.RentalLocation
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, notFoundOr(err, "Không tìm thấy cơ sở cho thuê")
	}
	return &l, nil
}

// ListUnits trả về các phòng đang hoạt động của một loại tại một cơ sở, id tăng dần
func (r *AccommodationRepository) ListUnits(ctx context.Context, typeID, locationID uint) ([]models.Accommodation, error) {
	var units []models.Accommodation
	err := r.db.WithContext(ctx).
		Where("accommodation_type_id = ? AND rental_location_id = ? AND status = ?",
			typeID, locationID, constants.AccommodationStatusActive).
		Order("id ASC").
		Find(&units).Error
	return units, err
}

// LockUnit khóa dòng của phòng để các transaction đặt cùng phòng chạy nối tiếp
func (r *AccommodationRepository) LockUnit(ctx context.Context, id uint) (*models.Accommodation, error) {
	var unit models.Accommodation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&unit, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Không tìm thấy phòng")
	}
	return &unit, nil
}

func (r *AccommodationRepository) CreateType(ctx context.Context, t *models.AccommodationType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *AccommodationRepository) CreateLocation(ctx context.Context, l *models.RentalLocation) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *AccommodationRepository) CreateUnit(ctx context.Context, u *models.Accommodation) error {
	return r.db.WithContext(ctx).Create(u).Error
}
