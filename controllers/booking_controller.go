package controllers

import (
	"strconv"

	"bookinghub/dto"
	apperrors "bookinghub/errors"
	"bookinghub/middleware"
	"bookinghub/response"
	"bookinghub/services"
	"bookinghub/utils"
	"bookinghub/validator"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	availability *services.AvailabilityService
	bookings     *services.BookingService
	payments     *services.PaymentService
}

func NewBookingController(availability *services.AvailabilityService, bookings *services.BookingService, payments *services.PaymentService) *BookingController {
	return &BookingController{
		availability: availability,
		bookings:     bookings,
		payments:     payments,
	}
}

// actorFrom lấy người thực hiện từ context do AuthMiddleware gán
func actorFrom(c *gin.Context) (services.Actor, bool) {
	userID, role, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, Role: role}, true
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.FromError(c, apperrors.Validation(apperrors.ErrCodeInvalidFormat, "ID không hợp lệ"))
		return 0, false
	}
	return uint(id), true
}

// bindJSON đọc body rồi chạy validate; body rỗng được coi là struct rỗng
func bindJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			response.FromError(c, apperrors.NewAppError(apperrors.KindValidation, apperrors.ErrCodeInvalidFormat, "Dữ liệu không hợp lệ", err))
			return false
		}
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.FromError(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.FromError(c, apperrors.NewAppError(apperrors.KindValidation, apperrors.ErrCodeInvalidFormat, "Tham số không hợp lệ", err))
		return false
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.FromError(c, err)
		return false
	}
	return true
}

// CheckAvailability GET /bookings/availability
func (ctrl *BookingController) CheckAvailability(c *gin.Context) {
	var q dto.AvailabilityQuery
	if !bindQuery(c, &q) {
		return
	}
	checkIn, checkOut, err := validator.ParseWindow(q.CheckIn, q.CheckOut)
	if err != nil {
		response.FromError(c, err)
		return
	}

	result, err := ctrl.availability.IsAvailable(c.Request.Context(), q.AccommodationTypeID, q.RentalLocationID, checkIn, checkOut)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// OccupiedSlots GET /bookings/occupied-slots
func (ctrl *BookingController) OccupiedSlots(c *gin.Context) {
	var q dto.AvailabilityQuery
	if !bindQuery(c, &q) {
		return
	}
	from, to, err := validator.ParseWindow(q.CheckIn, q.CheckOut)
	if err != nil {
		response.FromError(c, err)
		return
	}

	units, err := ctrl.availability.OccupiedSlots(c.Request.Context(), q.AccommodationTypeID, q.RentalLocationID, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.NewUnitSlotsResponses(units))
}

// CreateBooking POST /bookings
func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	checkIn, err := utils.ParseLocal(req.CheckInHour)
	if err != nil {
		response.FromError(c, apperrors.Validation(apperrors.ErrCodeInvalidFormat, "checkInHour phải có định dạng DD-MM-YYYY HH:mm:ss"))
		return
	}

	result, err := ctrl.bookings.CreateBooking(c.Request.Context(), services.CreateBookingInput{
		CustomerID:          actor.UserID,
		AccommodationTypeID: req.AccommodationTypeID,
		RentalLocationID:    req.RentalLocationID,
		CheckIn:             checkIn,
		DurationHour:        req.DurationBookingHour,
		AdultNumber:         req.AdultNumber,
		ChildNumber:         req.ChildNumber,
		PaymentMethod:       req.PaymentMethod,
		CouponCode:          req.CouponCode,
		PolicyIDs:           req.PolicyIDs,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.NewCreateBookingResponse(result))
}

// ListBookings GET /bookings, chỉ trả booking của user hiện tại
func (ctrl *BookingController) ListBookings(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, limit := q.Normalize()

	list, total, err := ctrl.bookings.ListCustomerBookings(c.Request.Context(), actor.UserID, page, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewBookingResponses(list), page, limit, int(total))
}

// GetBooking GET /bookings/:id
func (ctrl *BookingController) GetBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := ctrl.bookings.GetBooking(c.Request.Context(), id, actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.NewBookingResponse(b))
}

// DeleteBooking DELETE /bookings/:id
func (ctrl *BookingController) DeleteBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ctrl.bookings.SoftDelete(c.Request.Context(), id, actor); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// CancelBooking PUT /bookings/:id/cancel
func (ctrl *BookingController) CancelBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.CancelBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := ctrl.bookings.Cancel(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		// Hủy đã ghi nhận nhưng hoàn tiền lỗi: vẫn trả booking kèm mã lỗi, sweep sẽ hoàn lại
		if b != nil {
			if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Kind == apperrors.KindExternal {
				c.JSON(response.StatusFor(appErr.Kind), response.Response{
					Code:      0,
					Mess:      appErr.Message,
					ErrorCode: string(appErr.Code),
					Data:      dto.NewBookingResponse(b),
				})
				return
			}
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.NewBookingResponse(b))
}

// RoomPassword POST /bookings/:id/room-password
func (ctrl *BookingController) RoomPassword(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.RoomPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	password, err := ctrl.bookings.GenerateRoomPassword(c.Request.Context(), id, actor, req.PasswordRoom)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.RoomPasswordResponse{BookingID: id, PasswordRoom: password})
}

// CheckIn PUT /bookings/:id/check-in
func (ctrl *BookingController) CheckIn(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.CheckInRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := ctrl.bookings.CheckIn(c.Request.Context(), id, actor, req.PasswordRoom)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.NewBookingResponse(b))
}

// CheckOut PUT /bookings/:id/check-out
func (ctrl *BookingController) CheckOut(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := ctrl.bookings.CheckOut(c.Request.Context(), id, actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.NewBookingResponse(b))
}

// MarkPaid PUT /bookings/:id/payment, lễ tân xác nhận đã thu tiền mặt
func (ctrl *BookingController) MarkPaid(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := ctrl.payments.MarkPaid(c.Request.Context(), id, actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.NewBookingResponse(b))
}
