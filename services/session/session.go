package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
	"meetmydesigners/services/booking"
	"meetmydesigners/services/realtime"
	"meetmydesigners/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StartSession opens a session from an accepted booking, or instantly when no
// booking is given. Instant sessions wait until the designer joins.
func (s *DefaultSessionService) StartSession(ctx context.Context, clientID string, req models.StartSessionRequest) (*models.ActiveSession, error) {
	designerID := req.DesignerID
	status := models.SessionWaiting

	if req.BookingID != "" {
		b, err := s.Bookings.GetByID(ctx, req.BookingID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking not found", ErrInvalidSession)
		}
		if err != nil {
			return nil, err
		}
		if b.ClientID != clientID {
			return nil, ErrForbidden
		}
		if b.Status != models.BookingAccepted {
			return nil, fmt.Errorf("%w: booking is %s", ErrInvalidState, b.Status)
		}
		open, err := s.Sessions.GetOpenByBooking(ctx, b.ID)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: booking already has session %s", ErrInvalidState, open.ID)
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
		designerID = b.DesignerID
		status = models.SessionActive
	}
	if designerID == "" {
		return nil, fmt.Errorf("%w: designer_id or booking_id is required", ErrInvalidSession)
	}

	designer, err := s.Designers.GetByID(ctx, designerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: designer not found", ErrInvalidSession)
	}
	if err != nil {
		return nil, err
	}
	if designer.UserID == clientID {
		return nil, fmt.Errorf("%w: designers cannot consult themselves", ErrInvalidSession)
	}

	if res := s.Availability.CheckDesignerBookingAvailability(ctx, designer.ID); !res.Available {
		return nil, &booking.UnavailableError{Reason: res.Reason}
	}
	if _, err := s.Wallet.CheckSufficientBalance(ctx, clientID, designer.RatePerMinute); err != nil {
		return nil, err
	}

	now := s.now()
	sess := &models.ActiveSession{
		ID:            uuid.New().String(),
		BookingID:     req.BookingID,
		ClientID:      clientID,
		DesignerID:    designer.ID,
		Status:        status,
		RatePerMinute: designer.RatePerMinute,
		CreatedAt:     now,
	}
	if status == models.SessionActive {
		sess.StartedAt = &now
	}
	if err := s.Sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	utils.GetLogger().Info("session: started",
		zap.String("sessionID", sess.ID), zap.String("designerID", designer.ID), zap.String("status", string(status)))
	s.publish(ctx, sess, "session_started")
	if sess.BookingID != "" {
		realtime.PublishSafe(ctx, s.Publisher, realtime.BookingChannel(sess.BookingID), "session_started",
			map[string]any{"session_id": sess.ID, "booking_id": sess.BookingID})
	} else {
		realtime.PublishSafe(ctx, s.Publisher, realtime.UserChannel(designer.UserID), "session_requested",
			map[string]any{"session_id": sess.ID, "client_id": clientID})
	}
	return sess, nil
}

// JoinSession lets the designer pick up a waiting instant session; billing starts now.
func (s *DefaultSessionService) JoinSession(ctx context.Context, userID, sessionID string) (*models.ActiveSession, error) {
	sess, designer, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if designer.UserID != userID {
		return nil, ErrForbidden
	}
	if sess.Status != models.SessionWaiting {
		return nil, fmt.Errorf("%w: session is %s", ErrInvalidState, sess.Status)
	}
	now := s.now()
	sess.Status = models.SessionActive
	sess.StartedAt = &now
	if err := s.Sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to update session %s: %w", sess.ID, err)
	}
	s.publish(ctx, sess, "session_joined")
	return sess, nil
}

// EndSession closes the session on behalf of either participant and bills
// the client. A waiting session ends without a charge.
func (s *DefaultSessionService) EndSession(ctx context.Context, userID, sessionID string) (*models.ActiveSession, error) {
	sess, designer, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.ClientID != userID && designer.UserID != userID {
		return nil, ErrForbidden
	}
	switch sess.Status {
	case models.SessionWaiting:
		now := s.now()
		sess.Status = models.SessionEnded
		sess.EndedAt = &now
		if err := s.Sessions.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to update session %s: %w", sess.ID, err)
		}
		s.publish(ctx, sess, "session_ended")
		return sess, nil
	case models.SessionActive:
		return s.settle(ctx, sess, designer, s.now())
	default:
		return nil, fmt.Errorf("%w: session is %s", ErrInvalidState, sess.Status)
	}
}

// BilledMinutes rounds the elapsed time up to whole minutes, never below one.
func BilledMinutes(elapsedSeconds float64, limit int) int {
	minutes := int(math.Ceil(elapsedSeconds / 60))
	if minutes < 1 {
		minutes = 1
	}
	if limit > 0 && minutes > limit {
		minutes = limit
	}
	return minutes
}

// settle ends an active session at endedAt and charges for it. The session is
// closed even when the payment fails; ErrPaymentIncomplete is returned with it.
func (s *DefaultSessionService) settle(ctx context.Context, sess *models.ActiveSession, designer *models.Designer, endedAt time.Time) (*models.ActiveSession, error) {
	started := sess.CreatedAt
	if sess.StartedAt != nil {
		started = *sess.StartedAt
	}
	minutes := BilledMinutes(endedAt.Sub(started).Seconds(), s.MaxSessionMinutes)
	amount := utils.RoundMoney(sess.RatePerMinute * float64(minutes))

	sess.Status = models.SessionEnded
	sess.EndedAt = &endedAt
	sess.DurationMinutes = minutes

	var payErr error
	if amount > 0 {
		res, err := s.Payments.ProcessSessionPayment(ctx, models.SessionPaymentRequest{
			ClientID:    sess.ClientID,
			DesignerID:  designer.UserID,
			Amount:      amount,
			SessionID:   sess.ID,
			Description: fmt.Sprintf("%d minute session with %s", minutes, designer.DisplayName),
		})
		if err != nil {
			utils.GetLogger().Error("session: payment failed",
				zap.String("sessionID", sess.ID), zap.Float64("amount", amount), zap.Error(err))
			payErr = fmt.Errorf("%w: %v", ErrPaymentIncomplete, err)
		} else {
			sess.AmountCharged = amount
			sess.PaymentTransactionID = res.DebitTransactionID
		}
	}

	if err := s.Sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to update session %s: %w", sess.ID, err)
	}
	if sess.BookingID != "" {
		if err := s.Bookings.UpdateStatus(ctx, sess.BookingID, models.BookingCompleted); err != nil {
			utils.GetLogger().Warn("session: failed to complete booking",
				zap.String("bookingID", sess.BookingID), zap.Error(err))
		}
	}

	utils.GetLogger().Info("session: ended",
		zap.String("sessionID", sess.ID), zap.Int("minutes", minutes), zap.Float64("charged", sess.AmountCharged))
	s.publish(ctx, sess, "session_ended")
	return sess, payErr
}

func (s *DefaultSessionService) GetSession(ctx context.Context, userID, sessionID string) (*models.ActiveSession, error) {
	sess, designer, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.ClientID != userID && designer.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// ListSessions returns sessions the user took part in, as client or designer.
func (s *DefaultSessionService) ListSessions(ctx context.Context, userID string) ([]models.ActiveSession, error) {
	ids := []string{userID}
	if designer, err := s.Designers.GetByUserID(ctx, userID); err == nil {
		ids = append(ids, designer.ID)
	}
	var out []models.ActiveSession
	seen := map[string]bool{}
	for _, id := range ids {
		rows, err := s.Sessions.ListByUser(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if !seen[row.ID] {
				seen[row.ID] = true
				out = append(out, row)
			}
		}
	}
	return out, nil
}

func (s *DefaultSessionService) load(ctx context.Context, sessionID string) (*models.ActiveSession, *models.Designer, error) {
	sess, err := s.Sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	designer, err := s.Designers.GetByID(ctx, sess.DesignerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load designer for session %s: %w", sessionID, err)
	}
	return sess, designer, nil
}

func (s *DefaultSessionService) participant(ctx context.Context, userID, sessionID string) (*models.ActiveSession, error) {
	sess, designer, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.ClientID != userID && designer.UserID != userID {
		return nil, ErrForbidden
	}
	return sess, nil
}

func (s *DefaultSessionService) publish(ctx context.Context, sess *models.ActiveSession, event string) {
	realtime.PublishSafe(ctx, s.Publisher, realtime.SessionChannel(sess.ID), event, map[string]any{
		"session_id":       sess.ID,
		"status":           sess.Status,
		"duration_minutes": sess.DurationMinutes,
		"amount_charged":   sess.AmountCharged,
	})
}
