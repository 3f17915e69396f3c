package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"meetmydesigners/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExpirer struct {
	calls []time.Time
	err   error
}

func (s *stubExpirer) ExpireStaleBookings(ctx context.Context, now time.Time) (int, error) {
	s.calls = append(s.calls, now)
	return len(s.calls), s.err
}

func (s *stubExpirer) ExpireSessions(ctx context.Context, now time.Time) (int, error) {
	s.calls = append(s.calls, now)
	return len(s.calls), s.err
}

func TestServeMuxRoutesExpiryTasks(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	bookings, sessions := &stubExpirer{}, &stubExpirer{}
	mux := NewServeMux(Jobs{Bookings: bookings, Sessions: sessions, Now: func() time.Time { return now }})

	bookingTask, _ := tasks.NewExpireBookingsTask()
	require.NoError(t, mux.ProcessTask(context.Background(), bookingTask))
	assert.Equal(t, []time.Time{now}, bookings.calls)
	assert.Empty(t, sessions.calls)

	sessionTask, _ := tasks.NewExpireSessionsTask()
	require.NoError(t, mux.ProcessTask(context.Background(), sessionTask))
	assert.Equal(t, []time.Time{now}, sessions.calls)
}

func TestServeMuxReturnsJobErrors(t *testing.T) {
	boom := errors.New("mongo down")
	mux := NewServeMux(Jobs{Bookings: &stubExpirer{err: boom}, Sessions: &stubExpirer{}})

	task, _ := tasks.NewExpireBookingsTask()
	assert.ErrorIs(t, mux.ProcessTask(context.Background(), task), boom)

	// Unknown types are rejected by the mux.
	assert.Error(t, mux.ProcessTask(context.Background(), asynq.NewTask("reminder:send", nil)))
}
