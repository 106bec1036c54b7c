package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/turf-booking-backend/internal/auth"
	"github.com/nekogravitycat/turf-booking-backend/internal/booking"
	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/request"
)

const (
	turfID    = "5b1f5c8e-4c7a-4c39-9a53-0d0c3d1f6a11"
	bookingID = "7d4c1a2b-3e5f-4a6b-8c9d-0e1f2a3b4c5d"
)

var (
	player = auth.Actor{UserID: "2c3e4f5a-6b7c-4d8e-9f0a-1b2c3d4e5f60", Role: auth.RoleUser}
	owner  = auth.Actor{UserID: "0f8d7a36-6d1e-4a55-8d0b-0d76a7b0b0c1", Role: auth.RoleOwner}
	admin  = auth.Actor{UserID: "9e8d7c6b-5a49-4382-9170-6f5e4d3c2b1a", Role: auth.RoleAdmin}
)

type mockService struct {
	booking.Service
	mock.Mock
}

func (m *mockService) Reserve(_ context.Context, req booking.ReserveRequest) (*booking.Booking, error) {
	args := m.Called(req)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) Cancel(_ context.Context, id string, actor auth.Actor) (*booking.Booking, error) {
	args := m.Called(id, actor)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) ListMine(_ context.Context, actor auth.Actor, f booking.Filter) ([]*booking.Booking, int, error) {
	args := m.Called(actor, f)
	bs, _ := args.Get(0).([]*booking.Booking)
	return bs, args.Int(1), args.Error(2)
}

func (m *mockService) List(_ context.Context, actor auth.Actor, f booking.Filter) ([]*booking.Booking, int, error) {
	args := m.Called(actor, f)
	bs, _ := args.Get(0).([]*booking.Booking)
	return bs, args.Int(1), args.Error(2)
}

type mockSweeper struct {
	mock.Mock
}

func (m *mockSweeper) RunOnce(context.Context) (booking.SweepResult, error) {
	args := m.Called()
	return args.Get(0).(booking.SweepResult), args.Error(1)
}

type testEnv struct {
	engine  *gin.Engine
	svc     *mockService
	sweeper *mockSweeper
	jwt     *auth.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	request.RegisterValidators()

	env := &testEnv{
		svc:     &mockService{},
		sweeper: &mockSweeper{},
		jwt:     auth.NewJWTManager("test-secret", time.Hour),
	}
	r := gin.New()
	RegisterRoutes(r.Group("/api"), NewHandler(env.svc, env.sweeper), auth.AuthRequired(env.jwt))
	env.engine = r

	t.Cleanup(func() {
		env.svc.AssertExpectations(t)
		env.sweeper.AssertExpectations(t)
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, actor *auth.Actor) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		token, err := e.jwt.GenerateAccessToken(actor.UserID, actor.Role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func sampleBooking() *booking.Booking {
	return &booking.Booking{
		ID: bookingID, UserID: player.UserID, UserName: "Asha",
		TurfID: turfID, TurfName: "Green Field",
		Day: "monday", TimeRange: "09:00-10:00", PricePaid: 500,
		Status: booking.StatusBooked, PaymentStatus: booking.PaymentPending,
	}
}

func TestCreate(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusUnauthorized,
		env.do(t, http.MethodPost, "/api/bookings/"+turfID, `{"day":"monday","time":"09:00-10:00"}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		env.do(t, http.MethodPost, "/api/bookings/"+turfID, `{"day":"caturday","time":"09:00-10:00"}`, &player).Code)
	assert.Equal(t, http.StatusBadRequest,
		env.do(t, http.MethodPost, "/api/bookings/"+turfID, `{"day":"monday"}`, &player).Code)

	env.svc.On("Reserve", booking.ReserveRequest{
		UserID: player.UserID, TurfID: turfID, Day: "monday", TimeRange: "09:00-10:00",
	}).Return(sampleBooking(), nil).Once()

	w := env.do(t, http.MethodPost, "/api/bookings/"+turfID, `{"day":"monday","time":"09:00-10:00"}`, &player)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Green Field", resp.Turf.Name)
	assert.Equal(t, "Asha", resp.User.Name)
	assert.Equal(t, "09:00-10:00", resp.Time)
	assert.Equal(t, booking.PaymentPending, resp.PaymentStatus)
}

func TestCreate_DomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{booking.ErrTurfNotFound, http.StatusNotFound},
		{booking.ErrSlotUnavailable, http.StatusBadRequest},
		{booking.ErrPastSlot, http.StatusBadRequest},
		{booking.ErrSlotAlreadyBooked, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			env := newTestEnv(t)
			env.svc.On("Reserve", mock.Anything).Return(nil, tt.err).Once()
			w := env.do(t, http.MethodPost, "/api/bookings/"+turfID, `{"day":"monday","time":"09:00-10:00"}`, &player)
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), tt.err.Error())
		})
	}
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)

	env.svc.On("Cancel", bookingID, owner).Return(nil, booking.ErrPermissionDenied).Once()
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPatch, "/api/bookings/"+bookingID+"/cancel", "", &owner).Code)

	cancelled := sampleBooking()
	cancelled.Status = booking.StatusCancelled
	env.svc.On("Cancel", bookingID, player).Return(cancelled, nil).Once()
	w := env.do(t, http.MethodPatch, "/api/bookings/"+bookingID+"/cancel", "", &player)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
}

func TestListMine(t *testing.T) {
	env := newTestEnv(t)

	env.svc.On("ListMine", player, booking.Filter{Status: booking.StatusBooked, Page: 1, PageSize: 10}).
		Return([]*booking.Booking{sampleBooking()}, 1, nil).Once()

	w := env.do(t, http.MethodGet, "/api/bookings/my?status=booked", "", &player)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total":1`)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/bookings/my?status=archived", "", &player).Code)
}

func TestList(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/bookings", "", &player).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/bookings?day=someday", "", &owner).Code)

	env.svc.On("List", owner, booking.Filter{TurfID: turfID, Day: "Monday", Page: 2, PageSize: 5}).
		Return([]*booking.Booking{}, 0, nil).Once()
	w := env.do(t, http.MethodGet, "/api/bookings?turf="+turfID+"&day=Monday&page=2&limit=5", "", &owner)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdatePayment_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	body := `{"payment_status":"paid"}`

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPatch, "/api/bookings/"+bookingID+"/payment", body, &owner).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPatch, "/api/bookings/"+bookingID+"/payment", `{"payment_status":"gifted"}`, &admin).Code)
}

func TestSweep(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/bookings/sweep", "", &player).Code)

	env.sweeper.On("RunOnce").Return(booking.SweepResult{Scanned: 3, Expired: 2}, nil).Once()
	w := env.do(t, http.MethodPost, "/api/bookings/sweep", "", &admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"scanned":3,"expired":2,"failed":0}`, w.Body.String())
}
