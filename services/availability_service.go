package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bookinghub/constants"
	apperrors "bookinghub/errors"
	"bookinghub/repositories"
	"bookinghub/services/logger"
	"bookinghub/validator"
)

// AvailabilityResult: Available khi còn ít nhất một phòng trống, CandidateUnits tăng dần theo id
type AvailabilityResult struct {
	Available      bool   `json:"available"`
	CandidateUnits []uint `json:"candidateUnits"`
}

type OccupiedSlot struct {
	BookingID uint                    `json:"bookingId"`
	Start     time.Time               `json:"start"`
	End       time.Time               `json:"end"`
	Status    constants.BookingStatus `json:"status"`
}

type UnitSlots struct {
	AccommodationID uint           `json:"accommodationId"`
	RoomNo          string         `json:"roomNo"`
	Slots           []OccupiedSlot `json:"slots"`
}

type AvailabilityServiceOptions struct {
	Store   *repositories.Store
	Cache   SlotCache
	Logger  logger.Logger
	SlotTTL time.Duration
}

// AvailabilityService chỉ đọc, mỗi lần gọi đều đọc lại từ DB
type AvailabilityService struct {
	store  *repositories.Store
	cache  SlotCache
	logger logger.Logger
	ttl    time.Duration
}

func NewAvailabilityService(opts AvailabilityServiceOptions) *AvailabilityService {
	if opts.Cache == nil {
		opts.Cache = NopCache{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.SlotTTL <= 0 {
		opts.SlotTTL = 5 * time.Minute
	}
	return &AvailabilityService{
		store:  opts.Store,
		cache:  opts.Cache,
		logger: opts.Logger,
		ttl:    opts.SlotTTL,
	}
}

// IsAvailable kiểm tra loại phòng tại một cơ sở trong khoảng [checkIn, checkOut)
func (s *AvailabilityService) IsAvailable(ctx context.Context, typeID, locationID uint, checkIn, checkOut time.Time) (*AvailabilityResult, error) {
	if err := s.resolve(ctx, typeID, locationID); err != nil {
		return nil, err
	}
	if err := validator.ValidateWindow(checkIn, checkOut); err != nil {
		return nil, err
	}
	return s.candidates(ctx, s.store, typeID, locationID, checkIn, checkOut)
}

// resolve: id sai hoặc không tồn tại là lỗi validation, không phải câu trả lời "hết phòng"
func (s *AvailabilityService) resolve(ctx context.Context, typeID, locationID uint) error {
	if typeID == 0 || locationID == 0 {
		return apperrors.Validation(apperrors.ErrCodeInvalidFormat, "Mã loại phòng và cơ sở không hợp lệ")
	}
	if _, err := s.store.Accommodations.FindType(ctx, typeID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Validation(apperrors.ErrCodeInvalidFormat, "Loại phòng không tồn tại")
		}
		return err
	}
	if _, err := s.store.Accommodations.FindLocation(ctx, locationID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Validation(apperrors.ErrCodeInvalidFormat, "Cơ sở cho thuê không tồn tại")
		}
		return err
	}
	return nil
}

// candidates chạy trên store truyền vào để tạo đơn có thể kiểm tra lại trong cùng transaction
func (s *AvailabilityService) candidates(ctx context.Context, store *repositories.Store, typeID, locationID uint, start, end time.Time) (*AvailabilityResult, error) {
	units, err := store.Accommodations.ListUnits(ctx, typeID, locationID)
	if err != nil {
		return nil, apperrors.Internal("Không đọc được danh sách phòng", err)
	}
	if len(units) == 0 {
		return nil, apperrors.Validation(apperrors.ErrCodeNoUnitsAtLocation, "Cơ sở không có phòng thuộc loại này")
	}

	ids := make([]uint, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID)
	}
	busy, err := store.Bookings.ConflictingUnitIDs(ctx, ids, start, end)
	if err != nil {
		return nil, apperrors.Internal("Không kiểm tra được lịch phòng", err)
	}
	taken := make(map[uint]struct{}, len(busy))
	for _, id := range busy {
		taken[id] = struct{}{}
	}

	free := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := taken[id]; !ok {
			free = append(free, id)
		}
	}
	sort.Slice(free, func(i, j int) bool { return free[i] < free[j] })
	return &AvailabilityResult{Available: len(free) > 0, CandidateUnits: free}, nil
}

// OccupiedSlots trả về các khoảng bận của từng phòng để vẽ lịch, có cache
func (s *AvailabilityService) OccupiedSlots(ctx context.Context, typeID, locationID uint, from, to time.Time) ([]UnitSlots, error) {
	if err := s.resolve(ctx, typeID, locationID); err != nil {
		return nil, err
	}
	if err := validator.ValidateWindow(from, to); err != nil {
		return nil, err
	}

	key := slotKey(typeID, locationID, from, to)
	var cached []UnitSlots
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn("read slot cache %s: %v", key, err)
	} else if ok {
		return cached, nil
	}

	units, err := s.store.Accommodations.ListUnits(ctx, typeID, locationID)
	if err != nil {
		return nil, apperrors.Internal("Không đọc được danh sách phòng", err)
	}
	ids := make([]uint, 0, len(units))
	index := make(map[uint]int, len(units))
	out := make([]UnitSlots, 0, len(units))
	for i, u := range units {
		ids = append(ids, u.ID)
		index[u.ID] = i
		out = append(out, UnitSlots{AccommodationID: u.ID, RoomNo: u.RoomNo, Slots: []OccupiedSlot{}})
	}

	bookings, err := s.store.Bookings.Occupied(ctx, ids, from, to)
	if err != nil {
		return nil, apperrors.Internal("Không đọc được lịch phòng", err)
	}
	for _, b := range bookings {
		i := index[b.AccommodationID]
		out[i].Slots = append(out[i].Slots, OccupiedSlot{
			BookingID: b.ID,
			Start:     b.CheckInHour.UTC(),
			End:       b.ReservedUntil.UTC(),
			Status:    b.Status,
		})
	}

	if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
		s.logger.Warn("write slot cache %s: %v", key, err)
	}
	return out, nil
}

// InvalidateSlots xóa cache lịch của một loại phòng sau mỗi lần ghi booking
func (s *AvailabilityService) InvalidateSlots(ctx context.Context, typeID uint) {
	pattern := fmt.Sprintf("slots:%d:*", typeID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.logger.Warn("invalidate slot cache %s: %v", pattern, err)
	}
}

func slotKey(typeID, locationID uint, from, to time.Time) string {
	return fmt.Sprintf("slots:%d:%d:%d:%d", typeID, locationID, from.Unix(), to.Unix())
}
