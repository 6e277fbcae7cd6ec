package middleware

import (
	"strings"

	apperrors "bookinghub/errors"
	"bookinghub/response"
	"bookinghub/services/logger"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// TokenParser lấy userID và role từ bearer token
type TokenParser interface {
	GetUserIDFromToken(tokenString string) (uint, int, error)
}

// AuthMiddleware xử lý authentication
func AuthMiddleware(parser TokenParser, roles ...int) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, userRole, err := parser.GetUserIDFromToken(tokenString)
		if err != nil {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		// Kiểm tra role nếu có yêu cầu
		if len(roles) > 0 && !hasRole(userRole, roles) {
			response.Forbidden(c)
			c.Abort()
			return
		}

		// Lưu thông tin user vào context
		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, userRole)
		c.Next()
	}
}

func hasRole(role int, roles []int) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CurrentUser đọc thông tin user do AuthMiddleware gán
func CurrentUser(c *gin.Context) (uint, int, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return 0, 0, false
	}
	role, ok := c.Get(ContextUserRole)
	if !ok {
		return 0, 0, false
	}
	userID, okID := id.(uint)
	userRole, okRole := role.(int)
	return userID, userRole, okID && okRole
}

// ErrorHandler ghi log các lỗi handler đã gắn vào context, kèm stack cho lỗi không mong đợi
func ErrorHandler(log *logger.DefaultLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			if appErr := apperrors.GetAppError(e.Err); appErr != nil && appErr.Err == nil {
				log.Warn("%s %s: %v", c.Request.Method, c.FullPath(), appErr)
				continue
			}
			log.ErrorWithStack(e.Err)
		}
		if len(c.Errors) > 0 && !c.Writer.Written() {
			response.ServerError(c)
		}
	}
}
