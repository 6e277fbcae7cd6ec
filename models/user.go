package models

import (
	"time"

	"gorm.io/plugin/soft_delete"
)

type User struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time             `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time             `gorm:"autoUpdateTime" json:"updatedAt"`
	Name        string                `gorm:"default:New User" json:"name"`
	Email       string                `gorm:"uniqueIndex;size:191" json:"email"`
	PhoneNumber string                `gorm:"type:varchar(11)" json:"phoneNumber"`
	Role        int                   `gorm:"default:0" json:"role"`
	IsDelete    soft_delete.DeletedAt `gorm:"softDelete:flag;index" json:"isDelete"`
}
