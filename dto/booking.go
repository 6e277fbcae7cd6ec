package dto

import (
	"bookinghub/constants"
	"bookinghub/models"
	"bookinghub/services"
	"bookinghub/utils"
)

// AvailabilityQuery: thời gian theo định dạng DD-MM-YYYY HH:mm:ss
type AvailabilityQuery struct {
	AccommodationTypeID uint   `form:"accommodationTypeId" validate:"required"`
	RentalLocationID    uint   `form:"rentalLocationId" validate:"required"`
	CheckIn             string `form:"checkIn" validate:"required,localtime"`
	CheckOut            string `form:"checkOut" validate:"required,localtime"`
}

type CreateBookingRequest struct {
	AccommodationTypeID uint                    `json:"accommodationTypeId" validate:"required"`
	RentalLocationID    uint                    `json:"rentalLocationId" validate:"required"`
	CheckInHour         string                  `json:"checkInHour" validate:"required,localtime"`
	DurationBookingHour int                     `json:"durationBookingHour" validate:"required,min=1,max=720"`
	AdultNumber         int                     `json:"adultNumber" validate:"required,min=1"`
	ChildNumber         int                     `json:"childNumber" validate:"min=0"`
	PaymentMethod       constants.PaymentMethod `json:"paymentMethod" validate:"required,oneof=CASH MOMO"`
	CouponCode          string                  `json:"couponCode" validate:"max=64"`
	PolicyIDs           []uint                  `json:"policyIds"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type CheckInRequest struct {
	PasswordRoom string `json:"passwordRoom"`
}

type RoomPasswordRequest struct {
	PasswordRoom string `json:"passwordRoom" validate:"omitempty,numeric,min=4,max=12"`
}

type RoomPasswordResponse struct {
	BookingID    uint   `json:"bookingId"`
	PasswordRoom string `json:"passwordRoom"`
}

type CustomerResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

type UnitResponse struct {
	ID                 uint   `json:"id"`
	RoomNo             string `json:"roomNo"`
	RentalLocationID   uint   `json:"rentalLocationId"`
	RentalLocationName string `json:"rentalLocationName,omitempty"`
	Address            string `json:"address,omitempty"`
}

type BookingPolicyResponse struct {
	PolicySystemID   uint   `json:"policySystemId"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	RefundWindowHour int    `json:"refundWindowHour"`
	RefundPercent    int    `json:"refundPercent"`
}

// BookingResponse hiển thị thời gian theo DD/MM/YYYY HH:mm:ss ở múi giờ hệ thống
type BookingResponse struct {
	ID                    uint                    `json:"id"`
	Status                constants.BookingStatus `json:"status"`
	PaymentStatus         constants.PaymentStatus `json:"paymentStatus"`
	PaymentMethod         constants.PaymentMethod `json:"paymentMethod"`
	CheckInHour           string                  `json:"checkInHour"`
	CheckOutHour          string                  `json:"checkOutHour,omitempty"`
	ReservedUntil         string                  `json:"reservedUntil"`
	ConfirmDate           string                  `json:"confirmDate,omitempty"`
	CompletedDate         string                  `json:"completedDate,omitempty"`
	CancelledAt           string                  `json:"cancelledAt,omitempty"`
	PaymentDeadline       string                  `json:"paymentDeadline,omitempty"`
	DurationBookingHour   int                     `json:"durationBookingHour"`
	AdultNumber           int                     `json:"adultNumber"`
	ChildNumber           int                     `json:"childNumber"`
	BasePrice             float64                 `json:"basePrice"`
	OvertimeHourlyPrice   float64                 `json:"overtimeHourlyPrice"`
	DiscountAmount        float64                 `json:"discountAmount"`
	OvertimeFee           float64                 `json:"overtimeFee"`
	TotalPrice            float64                 `json:"totalPrice"`
	RefundAmount          float64                 `json:"refundAmount"`
	CancelSource          constants.CancelSource  `json:"cancelSource,omitempty"`
	CancelReason          string                  `json:"cancelReason,omitempty"`
	IsNoShow              bool                    `json:"isNoShow"`
	HasRoomPassword       bool                    `json:"hasRoomPassword"`
	EKeyNo                string                  `json:"eKeyNo,omitempty"`
	AccommodationTypeID   uint                    `json:"accommodationTypeId"`
	AccommodationTypeName string                  `json:"accommodationTypeName,omitempty"`
	CouponCode            string                  `json:"couponCode,omitempty"`
	Customer              *CustomerResponse       `json:"customer,omitempty"`
	Accommodation         *UnitResponse           `json:"accommodation,omitempty"`
	Policies              []BookingPolicyResponse `json:"policies"`
	CreatedAt             string                  `json:"createdAt"`
	UpdatedAt             string                  `json:"updatedAt"`
}

func NewBookingResponse(b *models.Booking) BookingResponse {
	res := BookingResponse{
		ID:                  b.ID,
		Status:              b.Status,
		PaymentStatus:       b.PaymentStatus,
		PaymentMethod:       b.PaymentMethod,
		CheckInHour:         utils.FormatLocal(b.CheckInHour),
		CheckOutHour:        utils.FormatLocalPtr(b.CheckOutHour),
		ReservedUntil:       utils.FormatLocal(b.ReservedUntil),
		ConfirmDate:         utils.FormatLocalPtr(b.ConfirmDate),
		CompletedDate:       utils.FormatLocalPtr(b.CompletedDate),
		CancelledAt:         utils.FormatLocalPtr(b.CancelledAt),
		PaymentDeadline:     utils.FormatLocalPtr(b.PaymentDeadline),
		DurationBookingHour: b.DurationBookingHour,
		AdultNumber:         b.AdultNumber,
		ChildNumber:         b.ChildNumber,
		BasePrice:           b.BasePrice,
		OvertimeHourlyPrice: b.OvertimeHourlyPrice,
		DiscountAmount:      b.DiscountAmount,
		OvertimeFee:         b.OvertimeFee,
		TotalPrice:          b.TotalPrice,
		RefundAmount:        b.RefundAmount,
		CancelSource:        b.CancelSource,
		CancelReason:        b.CancelReason,
		IsNoShow:            b.IsNoShow,
		HasRoomPassword:     b.PasswordRoomHash != "",
		EKeyNo:              b.EKeyNo,
		AccommodationTypeID: b.AccommodationTypeID,
		Policies:            make([]BookingPolicyResponse, 0, len(b.Policies)),
		CreatedAt:           utils.FormatLocal(b.CreatedAt),
		UpdatedAt:           utils.FormatLocal(b.UpdatedAt),
	}
	if b.AccommodationType != nil {
		res.AccommodationTypeName = b.AccommodationType.Name
	}
	if b.Coupon != nil {
		res.CouponCode = b.Coupon.Code
	}
	if b.Customer != nil {
		res.Customer = &CustomerResponse{
			ID:          b.Customer.ID,
			Name:        b.Customer.Name,
			Email:       b.Customer.Email,
			PhoneNumber: b.Customer.PhoneNumber,
		}
	}
	if b.Accommodation != nil {
		unit := &UnitResponse{
			ID:               b.Accommodation.ID,
			RoomNo:           b.Accommodation.RoomNo,
			RentalLocationID: b.Accommodation.RentalLocationID,
		}
		if loc := b.Accommodation.RentalLocation; loc != nil {
			unit.RentalLocationName = loc.Name
			unit.Address = loc.Address
		}
		res.Accommodation = unit
	}
	for _, p := range b.Policies {
		res.Policies = append(res.Policies, BookingPolicyResponse{
			PolicySystemID:   p.PolicySystemID,
			Code:             p.Code,
			Name:             p.Name,
			RefundWindowHour: p.RefundWindowHour,
			RefundPercent:    p.RefundPercent,
		})
	}
	return res
}

func NewBookingResponses(list []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(list))
	for i := range list {
		out = append(out, NewBookingResponse(&list[i]))
	}
	return out
}

// CreateBookingResponse trả kèm orderId để client chuyển sang cổng thanh toán
type CreateBookingResponse struct {
	Booking BookingResponse     `json:"booking"`
	OrderID string              `json:"orderId"`
	Amount  float64             `json:"amount"`
	Quote   services.PriceQuote `json:"quote"`
}

func NewCreateBookingResponse(r *services.CreateBookingResult) CreateBookingResponse {
	return CreateBookingResponse{
		Booking: NewBookingResponse(r.Booking),
		OrderID: r.Payment.OrderID,
		Amount:  r.Payment.Amount,
		Quote:   r.Quote,
	}
}

type SlotResponse struct {
	BookingID uint                    `json:"bookingId"`
	Start     string                  `json:"start"`
	End       string                  `json:"end"`
	Status    constants.BookingStatus `json:"status"`
}

type UnitSlotsResponse struct {
	AccommodationID uint           `json:"accommodationId"`
	RoomNo          string         `json:"roomNo"`
	Slots           []SlotResponse `json:"slots"`
}

func NewUnitSlotsResponses(units []services.UnitSlots) []UnitSlotsResponse {
	out := make([]UnitSlotsResponse, 0, len(units))
	for _, u := range units {
		r := UnitSlotsResponse{AccommodationID: u.AccommodationID, RoomNo: u.RoomNo, Slots: make([]SlotResponse, 0, len(u.Slots))}
		for _, s := range u.Slots {
			r.Slots = append(r.Slots, SlotResponse{
				BookingID: s.BookingID,
				Start:     utils.FormatLocal(s.Start),
				End:       utils.FormatLocal(s.End),
				Status:    s.Status,
			})
		}
		out = append(out, r)
	}
	return out
}
