package routes

import (
	"net/http"

	"bookinghub/constants"
	"bookinghub/controllers"
	middlewares "bookinghub/middleware"
	"bookinghub/repositories"
	"bookinghub/response"
	"bookinghub/services"
	"bookinghub/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

type Dependencies struct {
	Store        *repositories.Store
	Availability *services.AvailabilityService
	Bookings     *services.BookingService
	Payments     *services.PaymentService
	Tokens       *services.TokenParser
	Melody       *melody.Melody
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	bookingController := controllers.NewBookingController(deps.Availability, deps.Bookings, deps.Payments)
	paymentController := controllers.NewPaymentController(deps.Payments)
	notificationController := controllers.NewNotificationController(deps.Store.Notifications)

	staff := []int{constants.RoleSuperAdmin, constants.RoleOwner, constants.RoleReceptionist}
	auth := middlewares.AuthMiddleware(deps.Tokens)
	staffOnly := middlewares.AuthMiddleware(deps.Tokens, staff...)

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	v1 := router.Group("/api/v1")

	v1.GET("/bookings/availability", bookingController.CheckAvailability)
	v1.GET("/bookings/occupied-slots", bookingController.OccupiedSlots)

	v1.POST("/bookings", auth, bookingController.CreateBooking)
	v1.GET("/bookings", auth, bookingController.ListBookings)
	v1.GET("/bookings/:id", auth, bookingController.GetBooking)
	v1.DELETE("/bookings/:id", auth, bookingController.DeleteBooking)
	v1.PUT("/bookings/:id/cancel", auth, bookingController.CancelBooking)
	v1.POST("/bookings/:id/room-password", auth, bookingController.RoomPassword)
	v1.PUT("/bookings/:id/check-in", auth, bookingController.CheckIn)
	v1.PUT("/bookings/:id/check-out", auth, bookingController.CheckOut)
	v1.PUT("/bookings/:id/payment", staffOnly, bookingController.MarkPaid)

	v1.POST("/payment/momo/notify", paymentController.MomoNotify)

	v1.GET("/notifications", auth, notificationController.GetAllNotifications)
	v1.PUT("/notifications/:id/read", auth, notificationController.MarkRead)

	if deps.Melody != nil {
		setupWebSocket(router, deps.Melody, deps.Tokens)
	}
}

// setupWebSocket: client kết nối /ws?token=..., session được gắn userID để đẩy thông báo theo user
func setupWebSocket(router *gin.Engine, m *melody.Melody, tokens *services.TokenParser) {
	router.GET("/ws", func(c *gin.Context) {
		userID, _, err := tokens.GetUserIDFromToken(c.Query("token"))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		if err := m.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
			notification.SessionUserKey: userID,
		}); err != nil {
			_ = c.Error(err)
		}
	})
}
