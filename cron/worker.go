package cron

import (
	"context"
	"fmt"
	"time"

	"meetmydesigners/config"
	"meetmydesigners/services/tasks"
	"meetmydesigners/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type BookingExpirer interface {
	ExpireStaleBookings(ctx context.Context, now time.Time) (int, error)
}

type SessionExpirer interface {
	ExpireSessions(ctx context.Context, now time.Time) (int, error)
}

// Jobs holds the services the periodic tasks drive.
type Jobs struct {
	Bookings BookingExpirer
	Sessions SessionExpirer
	Now      func() time.Time
}

func (j Jobs) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

// NewServeMux routes each periodic task type to its handler.
func NewServeMux(jobs Jobs) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeExpireBookings, handleExpireBookings(jobs))
	mux.HandleFunc(tasks.TypeExpireSessions, handleExpireSessions(jobs))
	return mux
}

func handleExpireBookings(jobs Jobs) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := jobs.Bookings.ExpireStaleBookings(ctx, jobs.now())
		if err != nil {
			utils.GetLogger().Error("cron: booking expiry failed", zap.Error(err))
			return err
		}
		utils.GetLogger().Debug("cron: booking expiry done", zap.Int("expired", n))
		return nil
	}
}

func handleExpireSessions(jobs Jobs) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := jobs.Sessions.ExpireSessions(ctx, jobs.now())
		if err != nil {
			utils.GetLogger().Error("cron: session expiry failed", zap.Error(err))
			return err
		}
		utils.GetLogger().Debug("cron: session expiry done", zap.Int("closed", n))
		return nil
	}
}

// Schedule is the cronspec for each periodic task.
type Schedule struct {
	BookingExpiry string
	SessionExpiry string
}

// RegisterPeriodicTasks adds both expiry sweeps to the scheduler.
func RegisterPeriodicTasks(s *asynq.Scheduler, sched Schedule) error {
	task, opts := tasks.NewExpireBookingsTask()
	if _, err := s.Register(sched.BookingExpiry, task, opts...); err != nil {
		return fmt.Errorf("cron: failed to register %s: %w", tasks.TypeExpireBookings, err)
	}
	task, opts = tasks.NewExpireSessionsTask()
	if _, err := s.Register(sched.SessionExpiry, task, opts...); err != nil {
		return fmt.Errorf("cron: failed to register %s: %w", tasks.TypeExpireSessions, err)
	}
	return nil
}

func redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// Worker owns the asynq scheduler that enqueues the sweeps and the server
// that runs them.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

// NewWorker builds the scheduler and server against the queue Redis database.
func NewWorker(jobs Jobs, loc *time.Location) (*Worker, error) {
	logger := utils.GetLogger().Sugar()
	opt := redisOpt()

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: loc,
		Logger:   logger,
	})
	if err := RegisterPeriodicTasks(scheduler, Schedule{
		BookingExpiry: config.AppConfig.BookingExpiryCron,
		SessionExpiry: config.AppConfig.SessionExpiryCron,
	}); err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{"default": 1},
		Logger:      logger,
	})
	return &Worker{server: server, scheduler: scheduler, mux: NewServeMux(jobs)}, nil
}

// Start runs both halves in the background. The server start is retried with
// a growing delay.
func (w *Worker) Start() {
	logger := utils.GetLogger()
	go func() {
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := w.server.Start(w.mux)
			if err == nil {
				logger.Info("cron: worker started")
				return
			}
			logger.Warn("cron: failed to start worker", zap.Int("attempt", attempt), zap.Error(err))
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
		logger.Error("cron: worker gave up after retries")
	}()
	if err := w.scheduler.Start(); err != nil {
		logger.Error("cron: failed to start scheduler", zap.Error(err))
	}
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}
