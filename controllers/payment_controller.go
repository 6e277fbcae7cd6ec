package controllers

import (
	"net/http"

	"bookinghub/dto"
	"bookinghub/response"
	"bookinghub/services"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// MomoNotify POST /payment/momo/notify. MoMo chỉ cần 204, lỗi trả về để cổng gửi lại
func (ctrl *PaymentController) MomoNotify(c *gin.Context) {
	var req dto.MomoNotifyRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := ctrl.payments.ConfirmPayment(c.Request.Context(), req.ToResult()); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
