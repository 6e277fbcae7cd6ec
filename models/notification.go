package models

import (
	"fmt"
	"time"

	"bookinghub/constants"
)

type Notification struct {
	ID        uint                       `json:"id" gorm:"primaryKey"`
	UserID    uint                       `json:"userId" gorm:"index;not null"`
	BookingID uint                       `json:"bookingId" gorm:"index"`
	Kind      constants.NotificationKind `json:"kind" gorm:"size:40;index"`
	Title     string                     `json:"title"`
	Message   string                     `gorm:"type:text;not null" json:"message"`
	DedupeKey string                     `json:"-" gorm:"uniqueIndex;size:191;not null"`
	IsRead    bool                       `json:"isRead" gorm:"default:false"`
	CreatedAt time.Time                  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time                  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BookingDedupeKey là khóa chống trùng cho một lần chuyển trạng thái
func BookingDedupeKey(bookingID uint, kind constants.NotificationKind) string {
	return fmt.Sprintf("booking:%d:%s", bookingID, kind)
}
