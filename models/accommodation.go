package models

import (
	"time"

	"bookinghub/constants"

	"gorm.io/plugin/soft_delete"
)

// RentalLocation là cơ sở cho thuê của một chủ nhà
type RentalLocation struct {
	ID        uint                  `gorm:"primaryKey" json:"id"`
	OwnerID   uint                  `gorm:"index" json:"ownerId"`
	Owner     *User                 `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Name      string                `gorm:"not null" json:"name"`
	Address   string                `json:"address"`
	Ward      string                `json:"ward"`
	District  string                `json:"district"`
	Province  string                `json:"province"`
	IsDelete  soft_delete.DeletedAt `gorm:"softDelete:flag;index" json:"isDelete"`
	CreatedAt time.Time             `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time             `gorm:"autoUpdateTime" json:"updatedAt"`
}

// AccommodationType là mẫu giá và sức chứa dùng chung cho nhiều phòng
type AccommodationType struct {
	ID                  uint                  `gorm:"primaryKey" json:"id"`
	OwnerID             uint                  `gorm:"index" json:"ownerId"`
	Name                string                `gorm:"not null" json:"name"`
	Description         string                `json:"description"`
	BasePrice           float64               `json:"basePrice"`
	BaseDurationHour    int                   `gorm:"default:1" json:"baseDurationHour"` // số giờ đã gồm trong giá cơ bản
	OvertimeHourlyPrice float64               `json:"overtimeHourlyPrice"`
	MaxPeopleNumber     int                   `json:"maxPeopleNumber"`
	IsDelete            soft_delete.DeletedAt `gorm:"softDelete:flag;index" json:"isDelete"`
	CreatedAt           time.Time             `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time             `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Accommodation là một phòng cụ thể, đơn vị độc quyền khi đặt
type Accommodation struct {
	ID                  uint                          `gorm:"primaryKey" json:"id"`
	AccommodationTypeID uint                          `gorm:"index;not null" json:"accommodationTypeId"`
	AccommodationType   *AccommodationType            `gorm:"foreignKey:AccommodationTypeID" json:"accommodationType,omitempty"`
	RentalLocationID    uint                          `gorm:"index;not null" json:"rentalLocationId"`
	RentalLocation      *RentalLocation               `gorm:"foreignKey:RentalLocationID" json:"rentalLocation,omitempty"`
	RoomNo              string                        `json:"roomNo"`
	Status              constants.AccommodationStatus `gorm:"size:20;default:ACTIVE" json:"status"`
	IsDelete            soft_delete.DeletedAt         `gorm:"softDelete:flag;index" json:"isDelete"`
	CreatedAt           time.Time                     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time                     `gorm:"autoUpdateTime" json:"updatedAt"`
}
