package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/turf-booking-backend/internal/booking"
)

type mockExpirer struct {
	mock.Mock
}

func (m *mockExpirer) ExpireElapsed(ctx context.Context) (booking.SweepResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(booking.SweepResult), args.Error(1)
}

func TestRunOnce(t *testing.T) {
	exp := &mockExpirer{}
	exp.On("ExpireElapsed", mock.Anything).Return(booking.SweepResult{Scanned: 4, Expired: 2}, nil).Once()

	s := New(exp, time.Minute, zerolog.Nop())
	res, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, booking.SweepResult{Scanned: 4, Expired: 2}, res)
	exp.AssertExpectations(t)
}

func TestRunOnce_Error(t *testing.T) {
	exp := &mockExpirer{}
	exp.On("ExpireElapsed", mock.Anything).Return(booking.SweepResult{}, errors.New("db down")).Once()

	_, err := New(exp, time.Minute, zerolog.Nop()).RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestStart_RunsImmediatelyAndStops(t *testing.T) {
	exp := &mockExpirer{}
	ran := make(chan struct{}, 10)
	exp.On("ExpireElapsed", mock.Anything).
		Run(func(mock.Arguments) { ran <- struct{}{} }).
		Return(booking.SweepResult{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		New(exp, 10*time.Millisecond, zerolog.Nop()).Start(ctx)
		close(done)
	}()

	for range 2 {
		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not run")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestStart_SurvivesFailedSweep(t *testing.T) {
	exp := &mockExpirer{}
	ran := make(chan struct{}, 10)
	exp.On("ExpireElapsed", mock.Anything).Return(booking.SweepResult{}, errors.New("boom")).Once()
	exp.On("ExpireElapsed", mock.Anything).
		Run(func(mock.Arguments) { ran <- struct{}{} }).
		Return(booking.SweepResult{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go New(exp, 10*time.Millisecond, zerolog.Nop()).Start(ctx)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("sweeper stopped after a failed sweep")
	}
}
