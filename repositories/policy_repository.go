package repositories

import (
	"context"

	"bookinghub/models"

	"gorm.io/gorm"
)

type PolicyRepository struct {
	db *gorm.DB
}

func (r *PolicyRepository) ListActive(ctx context.Context) ([]models.PolicySystem, error) {
	var list []models.PolicySystem
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *PolicyRepository) FindActiveByIDs(ctx context.Context, ids []uint) ([]models.PolicySystem, error) {
	var list []models.PolicySystem
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *PolicyRepository) Create(ctx context.Context, p *models.PolicySystem) error {
	return r.db.WithContext(ctx).Create(p).Error
}
