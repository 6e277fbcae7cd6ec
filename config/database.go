package config

import (
	"fmt"
	"time"

	"bookinghub/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig dùng chung cho postgres và sqlite trong test, mọi timestamp ghi theo UTC
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func ConnectDB(c DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.DSN()), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("fail to connect to db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// AllModels liệt kê các bảng cần migrate
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RentalLocation{},
		&models.AccommodationType{},
		&models.Accommodation{},
		&models.PolicySystem{},
		&models.Coupon{},
		&models.Booking{},
		&models.BookingPolicy{},
		&models.PaymentInformation{},
		&models.PaymentTransaction{},
		&models.Notification{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
			return fmt.Errorf("create btree_gist: %w", err)
		}
		if err := db.Exec(overlapConstraintSQL).Error; err != nil {
			return fmt.Errorf("create overlap constraint: %w", err)
		}
	}
	return nil
}

// overlapConstraintSQL chặn hai đơn còn giữ phòng có khoảng [check_in_hour, reserved_until) giao nhau
const overlapConstraintSQL = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
			accommodation_id WITH =,
			tstzrange(check_in_hour, reserved_until, '[)') WITH &&
		) WHERE (is_delete = 0 AND status IN ('PENDING','CONFIRMED','NEEDCHECKIN','CHECKEDIN','NEEDCHECKOUT','CHECKEDOUT'));
	END IF;
END $$;`
