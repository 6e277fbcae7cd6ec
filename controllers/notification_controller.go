package controllers

import (
	"bookinghub/dto"
	apperrors "bookinghub/errors"
	"bookinghub/repositories"
	"bookinghub/response"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	notifications *repositories.NotificationRepository
}

func NewNotificationController(notifications *repositories.NotificationRepository) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// GetAllNotifications trả thông báo của user hiện tại, mới nhất trước
func (ctrl *NotificationController) GetAllNotifications(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, limit := q.Normalize()

	list, total, err := ctrl.notifications.ListByUser(c.Request.Context(), actor.UserID, page, limit)
	if err != nil {
		response.FromError(c, apperrors.Internal("Lỗi truy vấn thông báo", err))
		return
	}
	response.SuccessWithPagination(c, dto.NewNotificationResponses(list), page, limit, int(total))
}

func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	updated, err := ctrl.notifications.MarkRead(c.Request.Context(), id, actor.UserID)
	if err != nil {
		response.FromError(c, apperrors.Internal("Lỗi truy vấn thông báo", err))
		return
	}
	if !updated {
		response.FromError(c, apperrors.NotFound("Không tìm thấy thông báo"))
		return
	}
	response.Success(c, gin.H{"id": id})
}
