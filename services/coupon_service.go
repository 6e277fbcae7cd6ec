package services

import (
	"context"
	"time"

	apperrors "bookinghub/errors"
	"bookinghub/repositories"
	"bookinghub/services/logger"
)

type CouponServiceOptions struct {
	Store  *repositories.Store
	Logger logger.Logger
	Now    func() time.Time
}

type CouponService struct {
	store  *repositories.Store
	logger logger.Logger
	now    func() time.Time
}

func NewCouponService(opts CouponServiceOptions) *CouponService {
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CouponService{store: opts.Store, logger: opts.Logger, now: opts.Now}
}

// DeactivateExpired tắt các mã giảm giá đã quá endDate
func (s *CouponService) DeactivateExpired(ctx context.Context) (SweepReport, error) {
	report := SweepReport{Name: "coupon-expiry"}
	n, err := s.store.Coupons.DeactivateExpired(ctx, s.now())
	if err != nil {
		return report, apperrors.Internal("Không cập nhật được mã giảm giá", err)
	}
	report.Transitioned = int(n)
	if n > 0 {
		s.logger.Info("deactivated %d expired coupons", n)
	}
	return report, nil
}
