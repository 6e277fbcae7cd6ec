package services

import (
	"context"
	"time"

	"bookinghub/constants"
	apperrors "bookinghub/errors"
	"bookinghub/models"
	"bookinghub/repositories"
	"bookinghub/services/notification"
)

// SweepReport tổng kết một lần quét
type SweepReport struct {
	Name         string `json:"name"`
	Scanned      int    `json:"scanned"`
	Transitioned int    `json:"transitioned"`
	Notified     int    `json:"notified"`
	Failed       int    `json:"failed"`
}

type sweepRule struct {
	filter  repositories.DueFilter
	event   models.BookingEvent
	updates func(now time.Time) map[string]interface{}
	after   func(ctx context.Context, tx *repositories.Store, b *models.Booking) error
}

// transition: mỗi đơn đổi trạng thái bằng cập nhật có điều kiện, chỉ một lượt quét thắng; lỗi của một đơn không dừng cả lô
func (s *BookingService) transition(ctx context.Context, report *SweepReport, now time.Time, rule sweepRule) error {
	due, err := s.store.Bookings.FindDue(ctx, rule.filter)
	if err != nil {
		return apperrors.Internal("Không đọc được danh sách đơn cần xử lý", err)
	}
	report.Scanned += len(due)

	for i := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := &due[i]
		to, err := models.NextStatus(b.Status, rule.event)
		if err != nil {
			report.Failed++
			s.logger.Error("%s: booking %d: %v", report.Name, b.ID, err)
			continue
		}
		var updates map[string]interface{}
		if rule.updates != nil {
			updates = rule.updates(now)
		}
		guard := repositories.Guard{Statuses: []constants.BookingStatus{b.Status}, PaymentStatuses: rule.filter.PaymentStatuses}
		var ok bool
		err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
			var err error
			ok, err = tx.Bookings.Transition(ctx, b.ID, guard, to, updates)
			if err != nil || !ok || rule.after == nil {
				return err
			}
			return rule.after(ctx, tx, b)
		})
		if err != nil {
			report.Failed++
			s.logger.Error("%s: booking %d: %v", report.Name, b.ID, err)
			continue
		}
		if !ok {
			continue
		}
		report.Transitioned++
		s.availability.InvalidateSlots(ctx, b.AccommodationTypeID)
	}
	return nil
}

// notifyMissing gửi thông báo cho các đơn đã ở trạng thái đích nhưng chưa có thông báo loại kind
func (s *BookingService) notifyMissing(ctx context.Context, report *SweepReport, filter repositories.DueFilter, kind constants.NotificationKind) error {
	if filter.Limit == 0 {
		filter.Limit = s.batchSize
	}
	list, err := s.store.Bookings.MissingNotification(ctx, filter, kind)
	if err != nil {
		return apperrors.Internal("Không đọc được danh sách đơn chưa thông báo", err)
	}
	for i := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		created, err := s.dispatcher.Dispatch(ctx, notification.NewMessageBuilder(&list[i], kind).Build())
		if err != nil {
			report.Failed++
			s.logger.Warn("%s: notify booking %d: %v", report.Name, list[i].ID, err)
			continue
		}
		if created {
			report.Notified++
		}
	}
	return nil
}

// RequestCheckIns: CONFIRMED, đã thanh toán, tới giờ nhận phòng → NEEDCHECKIN
func (s *BookingService) RequestCheckIns(ctx context.Context) (SweepReport, error) {
	now := s.now().UTC()
	report := SweepReport{Name: "checkin-request"}
	err := s.transition(ctx, &report, now, sweepRule{
		filter: repositories.DueFilter{
			Statuses:        []constants.BookingStatus{constants.BookingStatusConfirmed},
			PaymentStatuses: []constants.PaymentStatus{constants.PaymentStatusPaid},
			Where:           "check_in_hour <= ?",
			Args:            []interface{}{now},
			Limit:           s.batchSize,
		},
		event: models.EventCheckInDue,
	})
	if err != nil {
		return report, err
	}
	err = s.notifyMissing(ctx, &report, repositories.DueFilter{
		Statuses: []constants.BookingStatus{constants.BookingStatusNeedCheckIn},
	}, constants.NotificationCheckInRequested)
	return report, err
}

// RequestCheckOuts: CHECKEDIN đã hết thời gian thuê → NEEDCHECKOUT
func (s *BookingService) RequestCheckOuts(ctx context.Context) (SweepReport, error) {
	now := s.now().UTC()
	report := SweepReport{Name: "checkout-request"}
	err := s.transition(ctx, &report, now, sweepRule{
		filter: repositories.DueFilter{
			Statuses: []constants.BookingStatus{constants.BookingStatusCheckedIn},
			Where:    "reserved_until <= ?",
			Args:     []interface{}{now},
			Limit:    s.batchSize,
		},
		event: models.EventCheckOutDue,
	})
	if err != nil {
		return report, err
	}
	err = s.notifyMissing(ctx, &report, repositories.DueFilter{
		Statuses: []constants.BookingStatus{constants.BookingStatusNeedCheckOut},
	}, constants.NotificationCheckOutRequested)
	return report, err
}

// AutoCompleteNoShows: NEEDCHECKIN đã thanh toán, quá checkIn + duration mà khách không tới → COMPLETED
func (s *BookingService) AutoCompleteNoShows(ctx context.Context) (SweepReport, error) {
	now := s.now().UTC()
	report := SweepReport{Name: "no-show-complete"}
	err := s.transition(ctx, &report, now, sweepRule{
		filter: repositories.DueFilter{
			Statuses:        []constants.BookingStatus{constants.BookingStatusNeedCheckIn},
			PaymentStatuses: []constants.PaymentStatus{constants.PaymentStatusPaid},
			Where:           "reserved_until < ?",
			Args:            []interface{}{now},
			Limit:           s.batchSize,
		},
		event: models.EventNoShow,
		updates: func(now time.Time) map[string]interface{} {
			return map[string]interface{}{"is_no_show": true, "completed_date": now}
		},
	})
	if err != nil {
		return report, err
	}
	err = s.notifyMissing(ctx, &report, repositories.DueFilter{
		Statuses: []constants.BookingStatus{constants.BookingStatusCompleted},
		Where:    "is_no_show = ?",
		Args:     []interface{}{true},
	}, constants.NotificationAutoCompleted)
	return report, err
}

// FinalizeCheckedOut: CHECKEDOUT → COMPLETED
func (s *BookingService) FinalizeCheckedOut(ctx context.Context) (SweepReport, error) {
	now := s.now().UTC()
	report := SweepReport{Name: "finalize"}
	err := s.transition(ctx, &report, now, sweepRule{
		filter: repositories.DueFilter{
			Statuses: []constants.BookingStatus{constants.BookingStatusCheckedOut},
			Limit:    s.batchSize,
		},
		event: models.EventFinalize,
		updates: func(now time.Time) map[string]interface{} {
			return map[string]interface{}{"completed_date": now}
		},
	})
	if err != nil {
		return report, err
	}
	err = s.notifyMissing(ctx, &report, repositories.DueFilter{
		Statuses: []constants.BookingStatus{constants.BookingStatusCompleted},
		Where:    "is_no_show = ?",
		Args:     []interface{}{false},
	}, constants.NotificationCompleted)
	return report, err
}

// ExpireUnpaid hủy đơn MOMO quá hạn thanh toán và đơn tiền mặt chưa trả khi đã hết thời gian thuê
func (s *BookingService) ExpireUnpaid(ctx context.Context) (SweepReport, error) {
	now := s.now().UTC()
	report := SweepReport{Name: "expire-unpaid"}
	updates := func(now time.Time) map[string]interface{} {
		return map[string]interface{}{
			"cancelled_at":  now,
			"cancel_source": constants.CancelSourceSystem,
			"cancel_reason": "Quá hạn thanh toán",
		}
	}
	release := func(ctx context.Context, tx *repositories.Store, b *models.Booking) error {
		if b.CouponID == nil {
			return nil
		}
		return tx.Coupons.Release(ctx, *b.CouponID)
	}

	rules := []sweepRule{
		{
			filter: repositories.DueFilter{
				Statuses:        []constants.BookingStatus{constants.BookingStatusPending},
				PaymentStatuses: constants.UnpaidPaymentStatuses,
				Where:           "payment_deadline IS NOT NULL AND payment_deadline <= ?",
				Args:            []interface{}{now},
				Limit:           s.batchSize,
			},
			event:   models.EventCancel,
			updates: updates,
			after:   release,
		},
		{
			filter: repositories.DueFilter{
				Statuses:        []constants.BookingStatus{constants.BookingStatusConfirmed},
				PaymentStatuses: constants.UnpaidPaymentStatuses,
				Where:           "reserved_until <= ?",
				Args:            []interface{}{now},
				Limit:           s.batchSize,
			},
			event:   models.EventCancel,
			updates: updates,
			after:   release,
		},
	}
	for _, rule := range rules {
		if err := s.transition(ctx, &report, now, rule); err != nil {
			return report, err
		}
	}
	err := s.notifyMissing(ctx, &report, repositories.DueFilter{
		Statuses: []constants.BookingStatus{constants.BookingStatusCancelled},
		Where:    "cancel_source = ?",
		Args:     []interface{}{constants.CancelSourceSystem},
	}, constants.NotificationExpired)
	return report, err
}

// RetryRefunds thử lại các lần hoàn tiền chưa thành công
func (s *BookingService) RetryRefunds(ctx context.Context) (SweepReport, error) {
	report := SweepReport{Name: "refund-retry"}
	due, err := s.store.Bookings.FindDue(ctx, repositories.DueFilter{
		Statuses:        []constants.BookingStatus{constants.BookingStatusCancelled},
		PaymentStatuses: []constants.PaymentStatus{constants.PaymentStatusPaid},
		Where:           "refund_amount > ?",
		Args:            []interface{}{0},
		Limit:           s.batchSize,
	})
	if err != nil {
		return report, apperrors.Internal("Không đọc được danh sách đơn cần hoàn tiền", err)
	}
	report.Scanned = len(due)
	for i := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out, err := s.processRefund(ctx, &due[i])
		if err != nil {
			report.Failed++
			continue
		}
		if out != nil {
			report.Transitioned++
		}
	}
	return report, nil
}

// RetryNotifications gửi lại thông báo hủy, hoàn tiền, thanh toán bị lỗi ở luồng đồng bộ
func (s *BookingService) RetryNotifications(ctx context.Context) (SweepReport, error) {
	report := SweepReport{Name: "notification-retry"}
	rules := []struct {
		filter repositories.DueFilter
		kind   constants.NotificationKind
	}{
		{repositories.DueFilter{
			Statuses: []constants.BookingStatus{constants.BookingStatusCancelled, constants.BookingStatusRefund},
			Where:    "cancel_source <> ?",
			Args:     []interface{}{constants.CancelSourceSystem},
		}, constants.NotificationCancelled},
		{repositories.DueFilter{
			Statuses: []constants.BookingStatus{constants.BookingStatusRefund},
		}, constants.NotificationRefunded},
		{repositories.DueFilter{
			Statuses: []constants.BookingStatus{
				constants.BookingStatusConfirmed,
				constants.BookingStatusNeedCheckIn,
				constants.BookingStatusCheckedIn,
				constants.BookingStatusNeedCheckOut,
				constants.BookingStatusCheckedOut,
				constants.BookingStatusCompleted,
			},
			PaymentStatuses: []constants.PaymentStatus{constants.PaymentStatusPaid},
		}, constants.NotificationPaymentConfirmed},
	}
	for _, r := range rules {
		if err := s.notifyMissing(ctx, &report, r.filter, r.kind); err != nil {
			return report, err
		}
	}
	return report, nil
}
