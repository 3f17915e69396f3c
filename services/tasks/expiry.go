package tasks

import (
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeExpireBookings = "bookings:expire"
	TypeExpireSessions = "sessions:expire"
)

// Expiry jobs are idempotent sweeps, so a missed run is caught by the next one.
var expiryOptions = []asynq.Option{
	asynq.MaxRetry(1),
	asynq.Timeout(2 * time.Minute),
}

func NewExpireBookingsTask() (*asynq.Task, []asynq.Option) {
	return asynq.NewTask(TypeExpireBookings, nil), expiryOptions
}

func NewExpireSessionsTask() (*asynq.Task, []asynq.Option) {
	return asynq.NewTask(TypeExpireSessions, nil), expiryOptions
}
