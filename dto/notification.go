package dto

import (
	"bookinghub/constants"
	"bookinghub/models"
	"bookinghub/utils"
)

type NotificationResponse struct {
	ID        uint                       `json:"id"`
	BookingID uint                       `json:"bookingId"`
	Kind      constants.NotificationKind `json:"kind"`
	Title     string                     `json:"title"`
	Message   string                     `json:"message"`
	IsRead    bool                       `json:"isRead"`
	CreatedAt string                     `json:"createdAt"`
}

func NewNotificationResponses(list []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			BookingID: n.BookingID,
			Kind:      n.Kind,
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: utils.FormatLocal(n.CreatedAt),
		})
	}
	return out
}
