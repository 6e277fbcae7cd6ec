package notification

import (
	"context"
	"fmt"

	"bookinghub/constants"
	apperrors "bookinghub/errors"
	"bookinghub/models"
	"bookinghub/repositories"
	"bookinghub/services/logger"
	"bookinghub/utils"

	"github.com/goccy/go-json"
	"github.com/olahol/melody"
)

// SessionUserKey là key lưu userID trong melody session
const SessionUserKey = "userID"

// Pusher đẩy một payload tới các kết nối realtime của một user
type Pusher interface {
	PushToUser(userID uint, payload []byte) error
}

type MelodyService struct {
	m *melody.Melody
}

func NewMelodyService(m *melody.Melody) *MelodyService {
	return &MelodyService{m: m}
}

// PushToUser chỉ gửi tới các session có userID trùng khớp
func (s *MelodyService) PushToUser(userID uint, payload []byte) error {
	if s.m == nil {
		return fmt.Errorf("melody instance is nil")
	}
	return s.m.BroadcastFilter(payload, func(q *melody.Session) bool {
		v, ok := q.Get(SessionUserKey)
		if !ok {
			return false
		}
		id, ok := v.(uint)
		return ok && id == userID
	})
}

// Dispatcher lưu thông báo rồi đẩy realtime; trả về false nếu thông báo đã tồn tại
type Dispatcher interface {
	Dispatch(ctx context.Context, n *models.Notification) (bool, error)
}

type StoreDispatcher struct {
	repo   *repositories.NotificationRepository
	pusher Pusher
	logger logger.Logger
}

func NewStoreDispatcher(repo *repositories.NotificationRepository, pusher Pusher, log logger.Logger) *StoreDispatcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &StoreDispatcher{repo: repo, pusher: pusher, logger: log}
}

func (d *StoreDispatcher) Dispatch(ctx context.Context, n *models.Notification) (bool, error) {
	if n.DedupeKey == "" {
		n.DedupeKey = models.BookingDedupeKey(n.BookingID, n.Kind)
	}
	exists, err := d.repo.ExistsByDedupeKey(ctx, n.DedupeKey)
	if err != nil {
		return false, apperrors.NewAppError(apperrors.KindExternal, apperrors.ErrCodeDBError, "Không kiểm tra được thông báo", err)
	}
	if exists {
		return false, nil
	}
	created, err := d.repo.CreateIfAbsent(ctx, n)
	if err != nil {
		return false, apperrors.NewAppError(apperrors.KindExternal, apperrors.ErrCodeDBError, "Không lưu được thông báo", err)
	}
	if !created {
		return false, nil
	}

	// bản ghi đã lưu là nguồn chính, push lỗi chỉ ghi log
	if d.pusher != nil {
		payload, err := json.Marshal(NewPayload(n))
		if err == nil {
			err = d.pusher.PushToUser(n.UserID, payload)
		}
		if err != nil {
			d.logger.Warn("push notification %s to user %d: %v", n.DedupeKey, n.UserID, err)
		}
	}
	return true, nil
}

// Payload là dữ liệu gửi qua websocket
type Payload struct {
	ID        uint                       `json:"id"`
	BookingID uint                       `json:"bookingId"`
	Kind      constants.NotificationKind `json:"kind"`
	Title     string                     `json:"title"`
	Message   string                     `json:"message"`
	CreatedAt string                     `json:"createdAt"`
}

func NewPayload(n *models.Notification) Payload {
	return Payload{
		ID:        n.ID,
		BookingID: n.BookingID,
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: utils.FormatLocal(n.CreatedAt),
	}
}

// MessageBuilder dựng nội dung thông báo cho một lần chuyển trạng thái của đơn
type MessageBuilder struct {
	booking *models.Booking
	kind    constants.NotificationKind
}

func NewMessageBuilder(booking *models.Booking, kind constants.NotificationKind) *MessageBuilder {
	return &MessageBuilder{
		booking: booking,
		kind:    kind,
	}
}

func (b *MessageBuilder) Build() *models.Notification {
	bk := b.booking
	checkIn := utils.FormatLocal(bk.CheckInHour)
	var title, msg string
	switch b.kind {
	case constants.NotificationBookingCreated:
		title = "Đặt phòng thành công"
		msg = fmt.Sprintf("🔔 Đơn #%d nhận phòng lúc %s, tổng tiền %.0f VND.", bk.ID, checkIn, bk.TotalPrice)
	case constants.NotificationPaymentConfirmed:
		title = "Thanh toán thành công"
		msg = fmt.Sprintf("🔔 Đơn #%d đã được thanh toán %.0f VND.", bk.ID, bk.TotalPrice)
	case constants.NotificationPaymentFailed:
		title = "Thanh toán thất bại"
		msg = fmt.Sprintf("🔔 Thanh toán cho đơn #%d không thành công, vui lòng thử lại.", bk.ID)
	case constants.NotificationCheckInRequested:
		title = "Đến giờ nhận phòng"
		msg = fmt.Sprintf("🔔 Đơn #%d đã đến giờ nhận phòng (%s).", bk.ID, checkIn)
	case constants.NotificationCheckOutRequested:
		title = "Đến giờ trả phòng"
		msg = fmt.Sprintf("🔔 Đơn #%d đã hết thời gian thuê lúc %s, vui lòng trả phòng.", bk.ID, utils.FormatLocal(bk.ReservedUntil))
	case constants.NotificationAutoCompleted:
		title = "Đơn đã tự động hoàn thành"
		msg = fmt.Sprintf("🔔 Đơn #%d đã kết thúc do không nhận phòng.", bk.ID)
	case constants.NotificationCompleted:
		title = "Đơn đã hoàn thành"
		msg = fmt.Sprintf("🔔 Cảm ơn bạn đã sử dụng dịch vụ, đơn #%d đã hoàn thành.", bk.ID)
	case constants.NotificationCancelled:
		title = "Đơn đã bị hủy"
		msg = fmt.Sprintf("🔔 Đơn #%d nhận phòng lúc %s đã bị hủy.", bk.ID, checkIn)
	case constants.NotificationExpired:
		title = "Đơn đã hết hạn"
		msg = fmt.Sprintf("🔔 Đơn #%d đã bị hủy do quá hạn thanh toán.", bk.ID)
	case constants.NotificationRefunded:
		title = "Đã hoàn tiền"
		msg = fmt.Sprintf("🔔 Đơn #%d đã được hoàn %.0f VND.", bk.ID, bk.RefundAmount)
	default:
		title = "Cập nhật đơn đặt phòng"
		msg = fmt.Sprintf("🔔 Đơn #%d có cập nhật mới: %s.", bk.ID, b.kind)
	}
	return &models.Notification{
		UserID:    bk.CustomerID,
		BookingID: bk.ID,
		Kind:      b.kind,
		Title:     title,
		Message:   msg,
		DedupeKey: models.BookingDedupeKey(bk.ID, b.kind),
	}
}
