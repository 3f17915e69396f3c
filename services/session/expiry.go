package session

import (
	"context"
	"fmt"
	"time"

	"meetmydesigners/metrics"
	"meetmydesigners/models"
	"meetmydesigners/utils"

	"go.uber.org/zap"
)

// ExpireSessions closes sessions that outlived their limits. Active sessions
// past MaxSessionMinutes are billed for the capped duration; waiting sessions
// past WaitingTimeout expire unbilled.
func (s *DefaultSessionService) ExpireSessions(ctx context.Context, now time.Time) (int, error) {
	logger := utils.GetLogger()
	closed := 0

	if s.MaxSessionMinutes > 0 {
		limit := time.Duration(s.MaxSessionMinutes) * time.Minute
		active, err := s.Sessions.ListStale(ctx, models.SessionActive, now.Add(-limit))
		if err != nil {
			return 0, fmt.Errorf("failed to list overdue sessions: %w", err)
		}
		for i := range active {
			sess := &active[i]
			designer, err := s.Designers.GetByID(ctx, sess.DesignerID)
			if err != nil {
				logger.Error("session: expiry could not load designer", zap.String("sessionID", sess.ID), zap.Error(err))
				continue
			}
			started := sess.CreatedAt
			if sess.StartedAt != nil {
				started = *sess.StartedAt
			}
			ended, err := s.settle(ctx, sess, designer, started.Add(limit))
			if err != nil {
				logger.Error("session: expiry settlement failed", zap.String("sessionID", sess.ID), zap.Error(err))
			}
			if ended == nil {
				continue
			}
			closed++
		}
	}

	waiting, err := s.Sessions.ListStale(ctx, models.SessionWaiting, now.Add(-WaitingTimeout))
	if err != nil {
		return closed, fmt.Errorf("failed to list waiting sessions: %w", err)
	}
	for i := range waiting {
		sess := &waiting[i]
		sess.Status = models.SessionExpired
		sess.EndedAt = &now
		if err := s.Sessions.Update(ctx, sess); err != nil {
			logger.Error("session: failed to expire", zap.String("sessionID", sess.ID), zap.Error(err))
			continue
		}
		s.publish(ctx, sess, "session_expired")
		closed++
	}

	if closed > 0 {
		metrics.ExpiredSessions.Add(float64(closed))
		logger.Info("session: expired stale sessions", zap.Int("count", closed))
	}
	return closed, nil
}
