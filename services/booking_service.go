package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookinghub/builders"
	"bookinghub/constants"
	apperrors "bookinghub/errors"
	"bookinghub/models"
	"bookinghub/repositories"
	"bookinghub/services/logger"
	"bookinghub/services/notification"
	"bookinghub/utils"
	"bookinghub/validator"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Actor là người thực hiện thao tác, lấy từ token
type Actor struct {
	UserID uint
	Role   int
}

func (a Actor) cancelSource() constants.CancelSource {
	if a.Role == constants.RoleCustomer {
		return constants.CancelSourceCustomer
	}
	return constants.CancelSourceOwner
}

// authorize: khách chỉ thao tác đơn của mình, chủ nhà chỉ thao tác đơn tại cơ sở của mình
func authorize(actor Actor, b *models.Booking) error {
	switch actor.Role {
	case constants.RoleSuperAdmin, constants.RoleReceptionist:
		return nil
	case constants.RoleOwner:
		if b.Accommodation != nil && b.Accommodation.RentalLocation != nil && b.Accommodation.RentalLocation.OwnerID == actor.UserID {
			return nil
		}
	default:
		if b.CustomerID == actor.UserID {
			return nil
		}
	}
	return apperrors.Forbidden("Bạn không có quyền thao tác trên đơn này")
}

func hasStatus(status constants.BookingStatus, list []constants.BookingStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func invalidTransition(b *models.Booking, action string) error {
	return apperrors.Validation(apperrors.ErrCodeInvalidTransition,
		fmt.Sprintf("Không thể %s khi đơn đang ở trạng thái %s", action, b.Status))
}

func unitUnavailable() error {
	return apperrors.Validation(apperrors.ErrCodeUnitUnavailable, "Không còn phòng trống trong khoảng thời gian này")
}

func staleTransition() error {
	return apperrors.Conflict("Đơn đã được cập nhật bởi thao tác khác")
}

type CreateBookingInput struct {
	CustomerID          uint                    `json:"customerId" validate:"required"`
	AccommodationTypeID uint                    `json:"accommodationTypeId" validate:"required"`
	RentalLocationID    uint                    `json:"rentalLocationId" validate:"required"`
	CheckIn             time.Time               `json:"checkInHour"`
	DurationHour        int                     `json:"durationBookingHour" validate:"required,min=1,max=720"`
	AdultNumber         int                     `json:"adultNumber" validate:"min=1"`
	ChildNumber         int                     `json:"childNumber" validate:"min=0"`
	PaymentMethod       constants.PaymentMethod `json:"paymentMethod" validate:"required,oneof=CASH MOMO"`
	CouponCode          string                  `json:"couponCode"`
	PolicyIDs           []uint                  `json:"policyIds"`
}

type CreateBookingResult struct {
	Booking *models.Booking
	Payment *models.PaymentInformation
	Quote   PriceQuote
}

type BookingServiceOptions struct {
	Store          *repositories.Store
	Availability   *AvailabilityService
	Dispatcher     notification.Dispatcher
	Gateway        PaymentGateway
	Logger         logger.Logger
	Now            func() time.Time
	PendingTimeout time.Duration
	BatchSize      int
}

type BookingService struct {
	store          *repositories.Store
	availability   *AvailabilityService
	dispatcher     notification.Dispatcher
	gateway        PaymentGateway
	logger         logger.Logger
	now            func() time.Time
	pendingTimeout time.Duration
	batchSize      int
}

func NewBookingService(opts BookingServiceOptions) *BookingService {
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Availability == nil {
		opts.Availability = NewAvailabilityService(AvailabilityServiceOptions{Store: opts.Store, Logger: opts.Logger})
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = notification.NewStoreDispatcher(opts.Store.Notifications, nil, opts.Logger)
	}
	if opts.Gateway == nil {
		opts.Gateway = ManualGateway{}
	}
	if opts.PendingTimeout <= 0 {
		opts.PendingTimeout = 15 * time.Minute
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	return &BookingService{
		store:          opts.Store,
		availability:   opts.Availability,
		dispatcher:     opts.Dispatcher,
		gateway:        opts.Gateway,
		logger:         opts.Logger,
		now:            opts.Now,
		pendingTimeout: opts.PendingTimeout,
		batchSize:      opts.BatchSize,
	}
}

// CreateBooking kiểm tra lại phòng trống, trừ mã giảm giá và ghi booking, chính sách, thanh toán trong một transaction
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*CreateBookingResult, error) {
	if err := validator.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.CheckIn.IsZero() {
		return nil, apperrors.Validation(apperrors.ErrCodeRequiredField, "checkInHour không được để trống")
	}
	now := s.now().UTC()
	checkIn := in.CheckIn.UTC()
	if checkIn.Before(now) {
		return nil, apperrors.Validation(apperrors.ErrCodeInvalidWindow, "Thời gian nhận phòng không được ở quá khứ")
	}
	end := checkIn.Add(time.Duration(in.DurationHour) * time.Hour)

	process, err := NewBookingProcess(in.PaymentMethod, s.pendingTimeout)
	if err != nil {
		return nil, err
	}
	if err := s.expireCoupon(ctx, in.CouponCode, now); err != nil {
		return nil, err
	}

	var result *CreateBookingResult
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.FindByID(ctx, in.CustomerID); err != nil {
			return err
		}
		typ, err := tx.Accommodations.FindType(ctx, in.AccommodationTypeID)
		if err != nil {
			return err
		}
		if _, err := tx.Accommodations.FindLocation(ctx, in.RentalLocationID); err != nil {
			return err
		}
		if typ.MaxPeopleNumber > 0 && in.AdultNumber+in.ChildNumber > typ.MaxPeopleNumber {
			return apperrors.Validation(apperrors.ErrCodeCapacityExceeded,
				fmt.Sprintf("Loại phòng chỉ nhận tối đa %d người", typ.MaxPeopleNumber))
		}

		coupon, err := s.consumeCoupon(ctx, tx, in.CouponCode, now)
		if err != nil {
			return err
		}
		policies, err := s.resolvePolicies(ctx, tx, in.PolicyIDs)
		if err != nil {
			return err
		}
		quote := CalculatePrice(typ, in.DurationHour, coupon)

		unit, err := s.reserveUnit(ctx, tx, typ.ID, in.RentalLocationID, checkIn, end)
		if err != nil {
			return err
		}

		booking := builders.NewBookingBuilder().
			WithCustomer(in.CustomerID).
			WithUnit(unit).
			WithWindow(checkIn, in.DurationHour).
			WithGuests(in.AdultNumber, in.ChildNumber).
			WithPricing(quote.BasePrice, quote.OvertimeHourlyPrice, quote.Discount, quote.Total).
			WithCoupon(coupon).
			Build()
		process.ApplyInitialState(booking, now)
		if err := process.ValidateBooking(booking); err != nil {
			return err
		}

		if err := tx.Bookings.Create(ctx, booking); err != nil {
			if repositories.IsOverlapViolation(err) {
				return unitUnavailable()
			}
			return apperrors.Internal("Không tạo được đơn đặt phòng", err)
		}

		snapshots := make([]models.BookingPolicy, 0, len(policies))
		for i := range policies {
			snapshots = append(snapshots, policies[i].Snapshot(booking.ID))
		}
		if err := tx.Bookings.CreatePolicies(ctx, snapshots); err != nil {
			return apperrors.Internal("Không lưu được chính sách của đơn", err)
		}
		booking.Policies = snapshots

		payment := &models.PaymentInformation{
			BookingID: booking.ID,
			Method:    process.Method(),
			Amount:    booking.TotalPrice,
			Status:    booking.PaymentStatus,
		}
		if err := tx.Payments.CreateInformation(ctx, payment); err != nil {
			return apperrors.Internal("Không tạo được thông tin thanh toán", err)
		}

		result = &CreateBookingResult{Booking: booking, Payment: payment, Quote: quote}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.availability.InvalidateSlots(ctx, result.Booking.AccommodationTypeID)
	s.logger.Info("booking %d created on unit %d from %s (%dh)", result.Booking.ID, result.Booking.AccommodationID,
		utils.FormatLocal(result.Booking.CheckInHour), result.Booking.DurationBookingHour)
	s.notify(ctx, result.Booking, constants.NotificationBookingCreated)
	return result, nil
}

// reserveUnit thử từng phòng trống theo id tăng dần: khóa dòng, kiểm tra lại, phòng đầu tiên còn trống được chọn
func (s *BookingService) reserveUnit(ctx context.Context, tx *repositories.Store, typeID, locationID uint, start, end time.Time) (*models.Accommodation, error) {
	avail, err := s.availability.candidates(ctx, tx, typeID, locationID, start, end)
	if err != nil {
		return nil, err
	}
	for _, id := range avail.CandidateUnits {
		unit, err := tx.Accommodations.LockUnit(ctx, id)
		if err != nil {
			return nil, err
		}
		if unit.Status != constants.AccommodationStatusActive {
			continue
		}
		busy, err := tx.Bookings.ConflictingUnitIDs(ctx, []uint{id}, start, end)
		if err != nil {
			return nil, apperrors.Internal("Không kiểm tra được lịch phòng", err)
		}
		if len(busy) == 0 {
			return unit, nil
		}
	}
	return nil, unitUnavailable()
}

// expireCoupon tắt mã đã quá hạn ngay khi đọc, chạy ngoài transaction tạo đơn
func (s *BookingService) expireCoupon(ctx context.Context, code string, now time.Time) error {
	if code == "" {
		return nil
	}
	coupon, err := s.store.Coupons.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if !coupon.IsActive || !coupon.Expired(now) {
		return nil
	}
	if _, err := s.store.Coupons.Deactivate(ctx, coupon.ID); err != nil {
		return apperrors.Internal("Không cập nhật được mã giảm giá", err)
	}
	return apperrors.Validation(apperrors.ErrCodeCouponUnusable, "Mã giảm giá đã hết hạn")
}

func (s *BookingService) consumeCoupon(ctx context.Context, tx *repositories.Store, code string, now time.Time) (*models.Coupon, error) {
	if code == "" {
		return nil, nil
	}
	coupon, err := tx.Coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !coupon.Usable(now) {
		return nil, apperrors.Validation(apperrors.ErrCodeCouponUnusable, "Mã giảm giá đã hết hạn hoặc hết lượt sử dụng")
	}
	ok, err := tx.Coupons.Consume(ctx, coupon.ID, now)
	if err != nil {
		return nil, apperrors.Internal("Không cập nhật được mã giảm giá", err)
	}
	if !ok {
		return nil, apperrors.Validation(apperrors.ErrCodeCouponUnusable, "Mã giảm giá đã hết lượt sử dụng")
	}
	coupon.Quantity--
	return coupon, nil
}

// resolvePolicies: không chọn chính sách nào thì áp dụng mọi chính sách đang hoạt động
func (s *BookingService) resolvePolicies(ctx context.Context, tx *repositories.Store, ids []uint) ([]models.PolicySystem, error) {
	if len(ids) == 0 {
		list, err := tx.Policies.ListActive(ctx)
		if err != nil {
			return nil, apperrors.Internal("Không đọc được chính sách", err)
		}
		return list, nil
	}
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	list, err := tx.Policies.FindActiveByIDs(ctx, unique)
	if err != nil {
		return nil, apperrors.Internal("Không đọc được chính sách", err)
	}
	if len(list) != len(unique) {
		return nil, apperrors.NotFound("Không tìm thấy chính sách")
	}
	return list, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uint, actor Actor) (*models.Booking, error) {
	b, err := s.store.Bookings.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) ListCustomerBookings(ctx context.Context, customerID uint, page, limit int) ([]models.Booking, int64, error) {
	list, total, err := s.store.Bookings.ListByCustomer(ctx, customerID, page, limit)
	if err != nil {
		return nil, 0, apperrors.Internal("Không đọc được danh sách đơn", err)
	}
	return list, total, nil
}

// GenerateRoomPassword tạo mới hoặc đặt lại mật khẩu phòng, trả về mật khẩu dạng rõ một lần duy nhất
func (s *BookingService) GenerateRoomPassword(ctx context.Context, id uint, actor Actor, password string) (string, error) {
	b, err := s.GetBooking(ctx, id, actor)
	if err != nil {
		return "", err
	}
	if !hasStatus(b.Status, constants.RoomPasswordStatuses) {
		return "", invalidTransition(b, "tạo mật khẩu phòng")
	}

	if password == "" {
		if password, err = utils.GenerateRoomPassword(6); err != nil {
			return "", apperrors.Internal("Không sinh được mật khẩu phòng", err)
		}
	} else if len(password) < 4 || len(password) > 12 {
		return "", apperrors.Validation(apperrors.ErrCodeValidation, "Mật khẩu phòng phải có từ 4 tới 12 ký tự")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Internal("Không mã hóa được mật khẩu phòng", err)
	}

	ok, err := s.store.Bookings.ConditionalUpdate(ctx, b.ID, repositories.Guard{Statuses: constants.RoomPasswordStatuses}, map[string]interface{}{
		"password_room_hash": string(hash),
		"e_key_no":           fmt.Sprintf("EK%06d", b.ID),
	})
	if err != nil {
		return "", apperrors.Internal("Không lưu được mật khẩu phòng", err)
	}
	if !ok {
		return "", staleTransition()
	}
	return password, nil
}

// CheckIn chuyển NEEDCHECKIN sang CHECKEDIN; nếu đơn đã có mật khẩu phòng thì phải khớp
func (s *BookingService) CheckIn(ctx context.Context, id uint, actor Actor, password string) (*models.Booking, error) {
	b, err := s.GetBooking(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	from := models.SourcesFor(models.EventCheckIn)
	if !hasStatus(b.Status, from) {
		return nil, invalidTransition(b, "nhận phòng")
	}
	if b.PasswordRoomHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(b.PasswordRoomHash), []byte(password)); err != nil {
			return nil, apperrors.Validation(apperrors.ErrCodeInvalidPassword, "Mật khẩu phòng không đúng")
		}
	}
	to, err := models.NextStatus(b.Status, models.EventCheckIn)
	if err != nil {
		return nil, invalidTransition(b, "nhận phòng")
	}

	now := s.now().UTC()
	ok, err := s.store.Bookings.Transition(ctx, b.ID, repositories.Guard{Statuses: from}, to, map[string]interface{}{
		"checked_in_at": now,
	})
	if err != nil {
		return nil, apperrors.Internal("Không cập nhật được đơn", err)
	}
	if !ok {
		return nil, staleTransition()
	}
	return s.store.Bookings.FindDetail(ctx, b.ID)
}

// CheckOut ghi giờ trả phòng thực tế, số giờ trễ làm tròn lên và cộng phí phụ trội vào tổng tiền
func (s *BookingService) CheckOut(ctx context.Context, id uint, actor Actor) (*models.Booking, error) {
	b, err := s.GetBooking(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	from := models.SourcesFor(models.EventCheckOut)
	if !hasStatus(b.Status, from) {
		return nil, invalidTransition(b, "trả phòng")
	}
	to, err := models.NextStatus(b.Status, models.EventCheckOut)
	if err != nil {
		return nil, invalidTransition(b, "trả phòng")
	}

	now := s.now().UTC()
	hours, fee := OvertimeCharge(b.ReservedUntil, now, b.OvertimeHourlyPrice)
	ok, err := s.store.Bookings.Transition(ctx, b.ID, repositories.Guard{Statuses: from}, to, map[string]interface{}{
		"check_out_hour": now,
		"overtime_fee":   fee,
		"total_price":    gorm.Expr("total_price + ?", fee),
	})
	if err != nil {
		return nil, apperrors.Internal("Không cập nhật được đơn", err)
	}
	if !ok {
		return nil, staleTransition()
	}
	if hours > 0 {
		s.logger.Info("booking %d checked out %dh late, overtime fee %.0f", b.ID, hours, fee)
	}
	return s.store.Bookings.FindDetail(ctx, b.ID)
}

// Cancel hủy đơn trước khi nhận phòng; đơn đã thanh toán trong hạn chính sách được hoàn tiền sau khi hủy thành công
func (s *BookingService) Cancel(ctx context.Context, id uint, actor Actor, reason string) (*models.Booking, error) {
	var (
		b   *models.Booking
		err error
	)
	// Callback thanh toán có thể chen vào giữa lúc đọc và lúc ghi: đọc lại một lần rồi tính lại tiền hoàn
	for attempt := 0; attempt < 2; attempt++ {
		if b, err = s.GetBooking(ctx, id, actor); err != nil {
			return nil, err
		}
		err = s.cancelOnce(ctx, b, actor, reason)
		if !errors.Is(err, apperrors.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.availability.InvalidateSlots(ctx, b.AccommodationTypeID)
	cancelled, err := s.store.Bookings.FindDetail(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, cancelled, constants.NotificationCancelled)

	if cancelled.RefundAmount > 0 {
		refunded, err := s.processRefund(ctx, cancelled)
		if err != nil {
			return cancelled, err
		}
		if refunded != nil {
			return refunded, nil
		}
	}
	return cancelled, nil
}

// cancelOnce ghi hủy đơn với guard đúng trạng thái và trạng thái thanh toán đã đọc
func (s *BookingService) cancelOnce(ctx context.Context, b *models.Booking, actor Actor, reason string) error {
	from := models.SourcesFor(models.EventCancel)
	if !hasStatus(b.Status, from) {
		return invalidTransition(b, "hủy đơn")
	}
	to, err := models.NextStatus(b.Status, models.EventCancel)
	if err != nil {
		return invalidTransition(b, "hủy đơn")
	}

	now := s.now().UTC()
	guard := repositories.Guard{
		Statuses:        []constants.BookingStatus{b.Status},
		PaymentStatuses: []constants.PaymentStatus{b.PaymentStatus},
	}
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		ok, err := tx.Bookings.Transition(ctx, b.ID, guard, to, map[string]interface{}{
			"cancelled_at":  now,
			"cancel_source": actor.cancelSource(),
			"cancel_reason": reason,
			"refund_amount": b.RefundFor(now),
		})
		if err != nil {
			return err
		}
		if !ok {
			return staleTransition()
		}
		if b.CouponID != nil {
			return tx.Coupons.Release(ctx, *b.CouponID)
		}
		return nil
	})
}

// processRefund gọi cổng thanh toán rồi chuyển CANCELLED sang REFUND; lỗi cổng được sweep thử lại
func (s *BookingService) processRefund(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	info, err := s.store.Payments.FindInformationByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	ref, done, err := s.recordedRefund(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if !done {
		res, err := s.gateway.Refund(ctx, RefundRequest{
			OrderID: info.OrderID,
			TransID: info.TransID,
			Amount:  b.RefundAmount,
			Reason:  fmt.Sprintf("Hoàn tiền đơn #%d", b.ID),
		})
		if err != nil {
			s.logger.Warn("refund booking %d: %v", b.ID, err)
			return nil, apperrors.External("Hoàn tiền thất bại, hệ thống sẽ thử lại", err)
		}
		ref = res.ExternalRef
	}

	var refunded bool
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Payments.CreateTransaction(ctx, &models.PaymentTransaction{
			BookingID:            b.ID,
			PaymentInformationID: info.ID,
			OrderID:              info.OrderID,
			Kind:                 constants.PaymentTransactionRefund,
			Amount:               b.RefundAmount,
			ExternalRef:          ref,
		}); err != nil {
			return err
		}
		to, err := models.NextStatus(constants.BookingStatusCancelled, models.EventRefund)
		if err != nil {
			return err
		}
		ok, err := tx.Bookings.Transition(ctx, b.ID, repositories.Guard{
			Statuses:        models.SourcesFor(models.EventRefund),
			PaymentStatuses: []constants.PaymentStatus{constants.PaymentStatusPaid},
		}, to, map[string]interface{}{"payment_status": constants.PaymentStatusRefund})
		if err != nil {
			return err
		}
		refunded = ok
		if ok {
			_, err = tx.Payments.UpdateInformation(ctx, info.ID, []constants.PaymentStatus{constants.PaymentStatusPaid},
				map[string]interface{}{"status": constants.PaymentStatusRefund})
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !refunded {
		return nil, nil
	}

	out, err := s.store.Bookings.FindDetail(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking %d refunded %.0f (%s)", b.ID, b.RefundAmount, ref)
	s.notify(ctx, out, constants.NotificationRefunded)
	return out, nil
}

// recordedRefund cho biết cổng đã hoàn tiền trước đó chưa, tránh gọi hoàn hai lần
func (s *BookingService) recordedRefund(ctx context.Context, bookingID uint) (string, bool, error) {
	txs, err := s.store.Payments.ListTransactions(ctx, bookingID)
	if err != nil {
		return "", false, apperrors.Internal("Không đọc được giao dịch", err)
	}
	for _, t := range txs {
		if t.Kind == constants.PaymentTransactionRefund {
			return t.ExternalRef, true, nil
		}
	}
	return "", false, nil
}

// SoftDelete ẩn đơn đã hủy hoặc đã hoàn tiền, dữ liệu vẫn được giữ lại
func (s *BookingService) SoftDelete(ctx context.Context, id uint, actor Actor) error {
	b, err := s.GetBooking(ctx, id, actor)
	if err != nil {
		return err
	}
	deletable := []constants.BookingStatus{constants.BookingStatusCancelled, constants.BookingStatusRefund}
	if !hasStatus(b.Status, deletable) {
		return invalidTransition(b, "xóa đơn")
	}
	ok, err := s.store.Bookings.SoftDelete(ctx, b.ID, deletable)
	if err != nil {
		return apperrors.Internal("Không xóa được đơn", err)
	}
	if !ok {
		return staleTransition()
	}
	return nil
}

// notify không làm hỏng thao tác chính; thông báo thiếu sẽ được sweep gửi lại
func (s *BookingService) notify(ctx context.Context, b *models.Booking, kind constants.NotificationKind) bool {
	n := notification.NewMessageBuilder(b, kind).Build()
	created, err := s.dispatcher.Dispatch(ctx, n)
	if err != nil {
		s.logger.Warn("dispatch %s: %v", n.DedupeKey, err)
		return false
	}
	return created
}
