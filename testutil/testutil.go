// Package testutil cung cấp database sqlite trong bộ nhớ và dữ liệu mẫu cho test
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"bookinghub/config"
	"bookinghub/constants"
	"bookinghub/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB mở một sqlite in-memory riêng cho từng test, chỉ một kết nối để các transaction chạy nối tiếp
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	cfg := config.GormConfig()
	cfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Clock là đồng hồ cố định, an toàn khi dùng từ nhiều goroutine
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now.UTC()
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Fixture là bộ dữ liệu tối thiểu để đặt phòng: một khách, một chủ, một cơ sở với hai phòng cùng loại
type Fixture struct {
	Customer *models.User
	Owner    *models.User
	Location *models.RentalLocation
	Type     *models.AccommodationType
	Units    []models.Accommodation
	Policy   *models.PolicySystem
	Coupon   *models.Coupon
}

// Seed tạo dữ liệu mẫu; mã giảm giá có hiệu lực từ now-1 ngày tới now+30 ngày
func Seed(t testing.TB, db *gorm.DB, now time.Time) *Fixture {
	t.Helper()

	f := &Fixture{
		Customer: &models.User{Name: "Nguyễn Văn A", Email: "khach@example.com", PhoneNumber: "0900000001", Role: constants.RoleCustomer},
		Owner:    &models.User{Name: "Trần Thị B", Email: "chu@example.com", PhoneNumber: "0900000002", Role: constants.RoleOwner},
	}
	require.NoError(t, db.Create(f.Customer).Error)
	require.NoError(t, db.Create(f.Owner).Error)

	f.Location = &models.RentalLocation{OwnerID: f.Owner.ID, Name: "Cơ sở Quận 1", Address: "12 Lê Lợi", District: "Quận 1", Province: "Hồ Chí Minh"}
	require.NoError(t, db.Create(f.Location).Error)

	f.Type = &models.AccommodationType{
		OwnerID:             f.Owner.ID,
		Name:                "Phòng đôi",
		BasePrice:           100000,
		BaseDurationHour:    1,
		OvertimeHourlyPrice: 50000,
		MaxPeopleNumber:     4,
	}
	require.NoError(t, db.Create(f.Type).Error)

	for _, no := range []string{"101", "102"} {
		unit := models.Accommodation{AccommodationTypeID: f.Type.ID, RentalLocationID: f.Location.ID, RoomNo: no, Status: constants.AccommodationStatusActive}
		require.NoError(t, db.Create(&unit).Error)
		f.Units = append(f.Units, unit)
	}

	f.Policy = &models.PolicySystem{Code: "FLEX24", Name: "Hoàn 100% trước 24h", RefundWindowHour: 24, RefundPercent: 100, IsActive: true}
	require.NoError(t, db.Create(f.Policy).Error)

	f.Coupon = &models.Coupon{
		Code:              "GIAM10",
		Name:              "Giảm 10%",
		DiscountPercent:   10,
		MaxDiscountAmount: 50000,
		Quantity:          1,
		StartDate:         now.Add(-24 * time.Hour),
		EndDate:           now.Add(30 * 24 * time.Hour),
		IsActive:          true,
	}
	require.NoError(t, db.Create(f.Coupon).Error)
	return f
}

// BookingAt ghi thẳng một booking vào DB, bỏ qua service, dùng cho các test sweep
func BookingAt(t testing.TB, db *gorm.DB, f *Fixture, unit models.Accommodation, checkIn time.Time, hours int,
	status constants.BookingStatus, paymentStatus constants.PaymentStatus) *models.Booking {
	t.Helper()

	b := &models.Booking{
		CustomerID:          f.Customer.ID,
		AccommodationTypeID: f.Type.ID,
		AccommodationID:     unit.ID,
		CheckInHour:         checkIn,
		ReservedUntil:       checkIn.Add(time.Duration(hours) * time.Hour),
		DurationBookingHour: hours,
		BasePrice:           f.Type.BasePrice,
		OvertimeHourlyPrice: f.Type.OvertimeHourlyPrice,
		AdultNumber:         1,
		TotalPrice:          f.Type.BasePrice,
		PaymentMethod:       constants.PaymentMethodMomo,
		PaymentStatus:       paymentStatus,
		Status:              status,
	}
	require.NoError(t, db.Omit("Customer", "AccommodationType", "Accommodation", "Coupon", "Policies").Create(b).Error)
	return b
}

// SignToken ký token HMAC có claim userinfo giống token đăng nhập
func SignToken(t testing.TB, secret string, userID uint, role int) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userinfo": map[string]interface{}{"userid": userID, "role": role},
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}
