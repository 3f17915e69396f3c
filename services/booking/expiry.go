package booking

import (
	"context"
	"fmt"
	"time"

	"meetmydesigners/metrics"
	"meetmydesigners/models"
	"meetmydesigners/utils"

	"go.uber.org/zap"
)

// ExpireStaleBookings marks every pending or accepted booking scheduled
// before today as expired and returns how many were changed.
func (s *DefaultBookingService) ExpireStaleBookings(ctx context.Context, now time.Time) (int, error) {
	logger := utils.GetLogger()
	loc := s.DefaultLocation
	if loc == nil {
		loc = time.UTC
	}
	today := now.In(loc).Format(utils.DateLayout)

	stale, err := s.Repo.FindStale(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to find stale bookings: %w", err)
	}

	expired := 0
	for i := range stale {
		b := &stale[i]
		if !b.Open() {
			continue
		}
		if err := s.Repo.UpdateStatus(ctx, b.ID, models.BookingExpired); err != nil {
			logger.Error("booking: failed to expire booking", zap.String("bookingID", b.ID), zap.Error(err))
			continue
		}
		b.Status = models.BookingExpired
		s.publish(ctx, b, "booking_expired")
		expired++
	}

	metrics.ExpiredBookings.Add(float64(expired))
	if expired > 0 {
		logger.Info("booking: expired stale bookings", zap.Int("count", expired), zap.String("before", today))
	}
	return expired, nil
}
