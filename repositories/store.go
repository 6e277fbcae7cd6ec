package repositories

import (
	"context"
	"errors"

	apperrors "bookinghub/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store gom các repository dùng chung một kết nối hoặc một transaction
type Store struct {
	db *gorm.DB

	Users          *UserRepository
	Accommodations *AccommodationRepository
	Bookings       *BookingRepository
	Coupons        *CouponRepository
	Policies       *PolicyRepository
	Payments       *PaymentRepository
	Notifications  *NotificationRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:             db,
		Users:          &UserRepository{db: db},
		Accommodations: &AccommodationRepository{db: db},
		Bookings:       &BookingRepository{db: db},
		Coupons:        &CouponRepository{db: db},
		Policies:       &PolicyRepository{db: db},
		Payments:       &PaymentRepository{db: db},
		Notifications:  &NotificationRepository{db: db},
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction chạy fn trong một transaction; lỗi không phải AppError được bọc thành TransactionError
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Transaction(err)
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(message)
	}
	return apperrors.Internal(message, err)
}

const pgExclusionViolation = "23P01"

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsOverlapViolation nhận diện lỗi từ ràng buộc bookings_no_overlap
func IsOverlapViolation(err error) bool {
	return pgCode(err) == pgExclusionViolation
}

func paginate(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return (page - 1) * limit, limit
}
