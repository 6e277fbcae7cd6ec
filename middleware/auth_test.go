package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookinghub/constants"
	apperrors "bookinghub/errors"
	"bookinghub/services/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubParser struct {
	userID uint
	role   int
	err    error
	got    string
}

func (p *stubParser) GetUserIDFromToken(tokenString string) (uint, int, error) {
	p.got = tokenString
	return p.userID, p.role, p.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	parser := &stubParser{userID: 7, role: constants.RoleCustomer}
	r := gin.New()
	r.GET("/me", AuthMiddleware(parser), func(c *gin.Context) {
		userID, role, ok := CurrentUser(c)
		assert.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": userID, "role": role})
	})

	w := serve(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, "Bearer abc.def")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc.def", parser.got)
	assert.JSONEq(t, `{"id":7,"role":0}`, w.Body.String())

	parser.err = errors.New("token hết hạn")
	w = serve(r, "Bearer abc.def")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_Roles(t *testing.T) {
	parser := &stubParser{userID: 3, role: constants.RoleCustomer}
	called := false
	r := gin.New()
	r.GET("/me", AuthMiddleware(parser, constants.RoleOwner, constants.RoleReceptionist), func(c *gin.Context) {
		called = true
		c.Status(http.StatusNoContent)
	})

	w := serve(r, "Bearer x")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)

	parser.role = constants.RoleReceptionist
	w = serve(r, "Bearer x")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, called)
}

func TestCurrentUser_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, _, ok := CurrentUser(c)
	assert.False(t, ok)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	w := serve(r, "")
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
}

func TestErrorHandler(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger.NewLogger(&buf, logger.DebugLevel)), ErrorHandler(logger.NewLogger(&buf, logger.DebugLevel)))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("kết nối db bị đóng"))
	})
	r.GET("/warn", func(c *gin.Context) {
		_ = c.Error(apperrors.Conflict("đơn đã thay đổi"))
		c.JSON(http.StatusConflict, gin.H{"mess": "đơn đã thay đổi"})
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "kết nối db bị đóng")
	assert.Contains(t, buf.String(), `"stack"`)
	assert.Contains(t, buf.String(), `"path":"/boom"`)

	buf.Reset()
	req = httptest.NewRequest(http.MethodGet, "/warn", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.NotContains(t, buf.String(), `"stack"`)
}
