package repositories

import (
	"context"

	"bookinghub/constants"
	"bookinghub/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	db *gorm.DB
}

func (r *PaymentRepository) CreateInformation(ctx context.Context, p *models.PaymentInformation) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindInformationByOrderID khóa dòng khi forUpdate để callback trùng chạy nối tiếp
func (r *PaymentRepository) FindInformationByOrderID(ctx context.Context, orderID string, forUpdate bool) (*models.PaymentInformation, error) {
	tx := r.db.WithContext(ctx)
	if forUpdate {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p models.PaymentInformation
	if err := tx.Where("order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, notFoundOr(err, "Không tìm thấy giao dịch thanh toán")
	}
	return &p, nil
}

func (r *PaymentRepository) FindInformationByBooking(ctx context.Context, bookingID uint) (*models.PaymentInformation, error) {
	var p models.PaymentInformation
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&p).Error; err != nil {
		return nil, notFoundOr(err, "Không tìm thấy thông tin thanh toán")
	}
	return &p, nil
}

func (r *PaymentRepository) UpdateInformation(ctx context.Context, id uint, from []constants.PaymentStatus, updates map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentInformation{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CreateTransaction bỏ qua nếu đã có giao dịch cùng (order_id, kind)
func (r *PaymentRepository) CreateTransaction(ctx context.Context, t *models.PaymentTransaction) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "kind"}},
			DoNothing: true,
		}).
		Create(t)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PaymentRepository) ListTransactions(ctx context.Context, bookingID uint) ([]models.PaymentTransaction, error) {
	var list []models.PaymentTransaction
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id ASC").Find(&list).Error
	return list, err
}
