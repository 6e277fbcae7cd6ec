package dto

import (
	"strconv"

	"bookinghub/services"
)

// MomoNotifyRequest là body IPN của MoMo, chỉ giữ các trường core cần; chữ ký do tầng ngoài kiểm tra
type MomoNotifyRequest struct {
	PartnerCode  string  `json:"partnerCode"`
	OrderID      string  `json:"orderId" validate:"required"`
	RequestID    string  `json:"requestId"`
	Amount       float64 `json:"amount" validate:"min=0"`
	OrderInfo    string  `json:"orderInfo"`
	OrderType    string  `json:"orderType"`
	TransID      int64   `json:"transId"`
	ResultCode   *int    `json:"resultCode" validate:"required"`
	Message      string  `json:"message"`
	PayType      string  `json:"payType"`
	ResponseTime int64   `json:"responseTime"`
	ExtraData    string  `json:"extraData"`
	Signature    string  `json:"signature"`
}

func (r MomoNotifyRequest) ToResult() services.PaymentResult {
	res := services.PaymentResult{
		OrderID: r.OrderID,
		Amount:  r.Amount,
		Message: r.Message,
	}
	if r.ResultCode != nil {
		res.ResultCode = *r.ResultCode
	}
	if r.TransID != 0 {
		res.TransID = strconv.FormatInt(r.TransID, 10)
	}
	return res
}
