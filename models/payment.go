package models

import (
	"time"

	"bookinghub/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/plugin/soft_delete"
)

// PaymentInformation gắn một booking với mã đơn bên cổng thanh toán
type PaymentInformation struct {
	ID         uint                    `json:"id" gorm:"primaryKey"`
	BookingID  uint                    `json:"bookingId" gorm:"uniqueIndex;not null"`
	OrderID    string                  `json:"orderId" gorm:"uniqueIndex;size:64;not null"`
	Method     constants.PaymentMethod `json:"method" gorm:"size:20"`
	Amount     float64                 `json:"amount"`
	Status     constants.PaymentStatus `json:"status" gorm:"size:20"`
	ResultCode *int                    `json:"resultCode,omitempty"`
	TransID    string                  `json:"transId,omitempty"`
	Message    string                  `json:"message,omitempty"`
	PaidAt     *time.Time              `json:"paidAt,omitempty"`
	IsDelete   soft_delete.DeletedAt   `json:"isDelete" gorm:"softDelete:flag;index"`
	CreatedAt  time.Time               `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time               `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *PaymentInformation) BeforeCreate(tx *gorm.DB) (err error) {
	if p.OrderID == "" {
		p.OrderID = uuid.NewString()
	}
	return nil
}

// PaymentTransaction ghi nhận tiền vào/ra, mỗi (OrderID, Kind) tối đa một bản ghi
type PaymentTransaction struct {
	ID                   uint                             `json:"id" gorm:"primaryKey"`
	BookingID            uint                             `json:"bookingId" gorm:"index;not null"`
	PaymentInformationID uint                             `json:"paymentInformationId"`
	OrderID              string                           `json:"orderId" gorm:"size:64;not null;uniqueIndex:idx_payment_tx_order_kind"`
	Kind                 constants.PaymentTransactionKind `json:"kind" gorm:"size:20;not null;uniqueIndex:idx_payment_tx_order_kind"`
	Amount               float64                          `json:"amount"`
	ExternalRef          string                           `json:"externalRef"`
	CreatedAt            time.Time                        `gorm:"autoCreateTime" json:"createdAt"`
}
