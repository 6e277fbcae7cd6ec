package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"bookinghub/constants"
	"bookinghub/middleware"
	"bookinghub/repositories"
	"bookinghub/services"
	"bookinghub/testutil"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type envelope struct {
	Code       int             `json:"code"`
	Mess       string          `json:"mess"`
	ErrorCode  string          `json:"errorCode"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

type apiEnv struct {
	router   *gin.Engine
	f        *testutil.Fixture
	customer string
	owner    string
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	db := testutil.NewTestDB(t)
	f := testutil.Seed(t, db, now)
	clock := testutil.NewClock(now)

	store := repositories.NewStore(db)
	availability := services.NewAvailabilityService(services.AvailabilityServiceOptions{Store: store})
	router := gin.New()
	router.Use(middleware.RequestID())
	SetupRoutes(router, Dependencies{
		Store:        store,
		Availability: availability,
		Bookings:     services.NewBookingService(services.BookingServiceOptions{Store: store, Availability: availability, Now: clock.Now}),
		Payments:     services.NewPaymentService(services.PaymentServiceOptions{Store: store, Now: clock.Now}),
		Tokens:       services.NewTokenParser(testSecret),
	})
	return &apiEnv{
		router:   router,
		f:        f,
		customer: testutil.SignToken(t, testSecret, f.Customer.ID, constants.RoleCustomer),
		owner:    testutil.SignToken(t, testSecret, f.Owner.ID, constants.RoleOwner),
	}
}

func (a *apiEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *apiEnv) bookingBody() map[string]interface{} {
	return map[string]interface{}{
		"accommodationTypeId": a.f.Type.ID,
		"rentalLocationId":    a.f.Location.ID,
		"checkInHour":         "10-03-2025 10:00:00",
		"durationBookingHour": 2,
		"adultNumber":         2,
		"paymentMethod":       "MOMO",
	}
}

func TestPing(t *testing.T) {
	a := newAPI(t)
	w, _ := a.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestAvailabilityEndpoint(t *testing.T) {
	a := newAPI(t)
	q := url.Values{}
	q.Set("accommodationTypeId", strconv.Itoa(int(a.f.Type.ID)))
	q.Set("rentalLocationId", strconv.Itoa(int(a.f.Location.ID)))
	q.Set("checkIn", "10-03-2025 10:00:00")
	q.Set("checkOut", "10-03-2025 12:00:00")

	w, env := a.do(t, http.MethodGet, "/api/v1/bookings/availability?"+q.Encode(), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res services.AvailabilityResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Available)
	assert.Len(t, res.CandidateUnits, 2)

	q.Set("checkOut", "10-03-2025 10:00:00")
	w, env = a.do(t, http.MethodGet, "/api/v1/bookings/availability?"+q.Encode(), "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_WINDOW", env.ErrorCode)

	q.Set("checkOut", "2025-03-10 12:00")
	w, env = a.do(t, http.MethodGet, "/api/v1/bookings/availability?"+q.Encode(), "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FORMAT", env.ErrorCode)

	q.Del("checkOut")
	w, env = a.do(t, http.MethodGet, "/api/v1/bookings/availability?"+q.Encode(), "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REQUIRED_FIELD", env.ErrorCode)
}

func TestBookingPaymentFlow(t *testing.T) {
	a := newAPI(t)

	w, _ := a.do(t, http.MethodPost, "/api/v1/bookings", "", a.bookingBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := a.do(t, http.MethodPost, "/api/v1/bookings", a.customer, a.bookingBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		Booking struct {
			ID            uint    `json:"id"`
			Status        string  `json:"status"`
			CheckInHour   string  `json:"checkInHour"`
			ReservedUntil string  `json:"reservedUntil"`
			TotalPrice    float64 `json:"totalPrice"`
		} `json:"booking"`
		OrderID string  `json:"orderId"`
		Amount  float64 `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "PENDING", created.Booking.Status)
	assert.Equal(t, "10/03/2025 10:00:00", created.Booking.CheckInHour)
	assert.Equal(t, "10/03/2025 12:00:00", created.Booking.ReservedUntil)
	require.NotEmpty(t, created.OrderID)

	notify := map[string]interface{}{
		"partnerCode": "MOMO",
		"orderId":     created.OrderID,
		"amount":      created.Amount,
		"resultCode":  0,
		"transId":     4088878653,
		"message":     "Successful.",
	}
	for i := 0; i < 2; i++ {
		w, _ = a.do(t, http.MethodPost, "/api/v1/payment/momo/notify", "", notify)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	path := "/api/v1/bookings/" + strconv.Itoa(int(created.Booking.ID))
	w, env = a.do(t, http.MethodGet, path, a.customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"paymentStatus"`
		ConfirmDate   string `json:"confirmDate"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "CONFIRMED", detail.Status)
	assert.Equal(t, "PAID", detail.PaymentStatus)
	assert.Equal(t, "10/03/2025 08:00:00", detail.ConfirmDate)

	w, _ = a.do(t, http.MethodPut, path+"/payment", a.customer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = a.do(t, http.MethodPost, path+"/room-password", a.customer, map[string]string{"passwordRoom": "2468"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"passwordRoom":"2468"`)

	w, env = a.do(t, http.MethodGet, "/api/v1/notifications", a.customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Total)

	w, env = a.do(t, http.MethodGet, "/api/v1/bookings", a.customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Pagination.Total)
}

func TestCreateBookingErrors(t *testing.T) {
	a := newAPI(t)

	body := a.bookingBody()
	body["checkInHour"] = "2025-03-10 10:00"
	w, env := a.do(t, http.MethodPost, "/api/v1/bookings", a.customer, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FORMAT", env.ErrorCode)

	body = a.bookingBody()
	body["paymentMethod"] = "BANK"
	w, env = a.do(t, http.MethodPost, "/api/v1/bookings", a.customer, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FORMAT", env.ErrorCode)

	body = a.bookingBody()
	body["accommodationTypeId"] = 9999
	w, _ = a.do(t, http.MethodPost, "/api/v1/bookings", a.customer, body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = a.do(t, http.MethodGet, "/api/v1/bookings/abc", a.customer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelAndDelete(t *testing.T) {
	a := newAPI(t)
	body := a.bookingBody()
	body["paymentMethod"] = "CASH"
	w, env := a.do(t, http.MethodPost, "/api/v1/bookings", a.customer, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		Booking struct {
			ID uint `json:"id"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	path := "/api/v1/bookings/" + strconv.Itoa(int(created.Booking.ID))

	w, env = a.do(t, http.MethodPut, path+"/check-out", a.customer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", env.ErrorCode)

	w, env = a.do(t, http.MethodPut, path+"/payment", a.owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"paymentStatus":"PAID"`)

	w, env = a.do(t, http.MethodPut, path+"/cancel", a.customer, map[string]string{"reason": "đổi kế hoạch"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"cancelSource":"CUSTOMER"`)

	w, env = a.do(t, http.MethodPut, path+"/cancel", a.customer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", env.ErrorCode)

	w, _ = a.do(t, http.MethodDelete, path, a.customer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(t, http.MethodGet, path, a.customer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
