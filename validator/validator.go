package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	apperrors "bookinghub/errors"
	"bookinghub/utils"

	playground "github.com/go-playground/validator/v10"
)

var (
	instance *playground.Validate
	once     sync.Once
)

func get() *playground.Validate {
	once.Do(func() {
		instance = playground.New()
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
		// localtime: chuỗi DD-MM-YYYY HH:mm:ss theo múi giờ hệ thống
		_ = instance.RegisterValidation("localtime", func(fl playground.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return true
			}
			_, err := utils.ParseLocal(s)
			return err == nil
		})
	})
	return instance
}

// ValidateStruct chạy các tag validate và trả về lỗi đầu tiên dưới dạng AppError
func ValidateStruct(s interface{}) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewAppError(apperrors.KindValidation, apperrors.ErrCodeValidation, "Dữ liệu không hợp lệ", err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperrors.Validation(apperrors.ErrCodeRequiredField, fmt.Sprintf("%s không được để trống", fe.Field()))
	case "localtime":
		return apperrors.Validation(apperrors.ErrCodeInvalidFormat, fmt.Sprintf("%s phải có định dạng DD-MM-YYYY HH:mm:ss", fe.Field()))
	case "oneof":
		return apperrors.Validation(apperrors.ErrCodeInvalidFormat, fmt.Sprintf("%s phải là một trong: %s", fe.Field(), fe.Param()))
	case "min", "gte", "gt":
		return apperrors.Validation(apperrors.ErrCodeValidation, fmt.Sprintf("%s phải lớn hơn hoặc bằng %s", fe.Field(), fe.Param()))
	case "max", "lte", "lt":
		return apperrors.Validation(apperrors.ErrCodeValidation, fmt.Sprintf("%s phải nhỏ hơn hoặc bằng %s", fe.Field(), fe.Param()))
	}
	return apperrors.Validation(apperrors.ErrCodeValidation, fmt.Sprintf("%s không hợp lệ", fe.Field()))
}

// ValidateWindow yêu cầu checkOut sau checkIn
func ValidateWindow(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return apperrors.Validation(apperrors.ErrCodeRequiredField, "Thời gian nhận và trả phòng không được để trống")
	}
	if !checkOut.After(checkIn) {
		return apperrors.Validation(apperrors.ErrCodeInvalidWindow, "Thời gian trả phòng phải sau thời gian nhận phòng")
	}
	return nil
}

// ParseWindow đọc cặp thời gian định dạng địa phương và kiểm tra thứ tự
func ParseWindow(checkIn, checkOut string) (time.Time, time.Time, error) {
	start, err := utils.ParseLocal(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Validation(apperrors.ErrCodeInvalidFormat, "Thời gian nhận phòng phải có định dạng DD-MM-YYYY HH:mm:ss")
	}
	end, err := utils.ParseLocal(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Validation(apperrors.ErrCodeInvalidFormat, "Thời gian trả phòng phải có định dạng DD-MM-YYYY HH:mm:ss")
	}
	if err := ValidateWindow(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
