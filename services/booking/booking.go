package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
	"meetmydesigners/services/notification"
	"meetmydesigners/services/realtime"
	"meetmydesigners/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// scheduledAt parses the booking's date and time in the designer's timezone.
func scheduledAt(date, clock string, loc *time.Location) (time.Time, error) {
	layout := utils.DateLayout + " 15:04"
	if strings.Count(clock, ":") == 2 {
		layout = utils.DateLayout + " 15:04:05"
	}
	return time.ParseInLocation(layout, date+" "+clock, loc)
}

func formatBookingDateTime(t time.Time) string {
	return t.Format("2 January, 3:04 PM")
}

// CreateBooking books a designer at a future slot they are available for,
// provided the client can afford the full duration.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, clientID string, req models.CreateBookingRequest) (*models.Booking, error) {
	if req.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidBooking)
	}
	designer, err := s.Designers.GetByID(ctx, req.DesignerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: designer not found", ErrInvalidBooking)
	}
	if err != nil {
		return nil, err
	}
	if designer.UserID == clientID {
		return nil, fmt.Errorf("%w: designers cannot book themselves", ErrInvalidBooking)
	}

	at, err := scheduledAt(req.ScheduledDate, req.ScheduledTime, s.Availability.Location(designer))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid scheduled date or time", ErrInvalidBooking)
	}
	if !at.After(s.now()) {
		return nil, fmt.Errorf("%w: scheduled time is in the past", ErrInvalidBooking)
	}

	if res := s.Availability.CheckDesignerAvailabilityForDateTime(ctx, designer.ID, at); !res.Available {
		return nil, &UnavailableError{Reason: res.Reason}
	}

	cost := utils.RoundMoney(designer.RatePerMinute * float64(req.DurationMinutes))
	if _, err := s.Wallet.CheckSufficientBalance(ctx, clientID, cost); err != nil {
		return nil, err
	}

	now := s.now()
	b := &models.Booking{
		ID:              uuid.New().String(),
		ClientID:        clientID,
		DesignerID:      designer.ID,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		Status:          models.BookingPending,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	utils.GetLogger().Info("booking: created",
		zap.String("bookingID", b.ID), zap.String("designerID", designer.ID), zap.String("clientID", clientID))
	notification.Send(ctx, s.Notifier, designer.UserID, notification.TypeBookingRequest,
		"New booking request",
		fmt.Sprintf("You have a %d minute consultation request for %s.", b.DurationMinutes, formatBookingDateTime(at)),
		map[string]string{"booking_id": b.ID})
	return b, nil
}

func (s *DefaultBookingService) load(ctx context.Context, bookingID string) (*models.Booking, *models.Designer, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	designer, err := s.Designers.GetByID(ctx, b.DesignerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load designer for booking %s: %w", bookingID, err)
	}
	return b, designer, nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	b, designer, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ClientID != userID && designer.UserID != userID {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (s *DefaultBookingService) AcceptBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	b, err := s.designerDecision(ctx, userID, bookingID, models.BookingAccepted)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, b, "session_accepted")
	notification.Send(ctx, s.Notifier, b.ClientID, notification.TypeBookingAccepted,
		"Booking accepted", fmt.Sprintf("Your booking on %s at %s was accepted.", b.ScheduledDate, b.ScheduledTime),
		map[string]string{"booking_id": b.ID})
	return b, nil
}

func (s *DefaultBookingService) RejectBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	b, err := s.designerDecision(ctx, userID, bookingID, models.BookingRejected)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, b, "session_rejected")
	notification.Send(ctx, s.Notifier, b.ClientID, notification.TypeBookingRejected,
		"Booking declined", fmt.Sprintf("Your booking on %s at %s was declined.", b.ScheduledDate, b.ScheduledTime),
		map[string]string{"booking_id": b.ID})
	return b, nil
}

// designerDecision moves a pending booking on behalf of its designer.
func (s *DefaultBookingService) designerDecision(ctx context.Context, userID, bookingID string, status models.BookingStatus) (*models.Booking, error) {
	b, designer, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if designer.UserID != userID {
		return nil, ErrForbidden
	}
	if b.Status != models.BookingPending {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, b.Status)
	}
	return s.setStatus(ctx, b, status)
}

func (s *DefaultBookingService) CancelBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	b, designer, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	var counterpart string
	switch userID {
	case b.ClientID:
		counterpart = designer.UserID
	case designer.UserID:
		counterpart = b.ClientID
	default:
		return nil, ErrForbidden
	}
	if !b.Open() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, b.Status)
	}
	if b, err = s.setStatus(ctx, b, models.BookingCancelled); err != nil {
		return nil, err
	}
	s.publish(ctx, b, "booking_cancelled")
	notification.Send(ctx, s.Notifier, counterpart, notification.TypeBookingCancelled,
		"Booking cancelled", fmt.Sprintf("The booking on %s at %s was cancelled.", b.ScheduledDate, b.ScheduledTime),
		map[string]string{"booking_id": b.ID})
	return b, nil
}

func (s *DefaultBookingService) setStatus(ctx context.Context, b *models.Booking, status models.BookingStatus) (*models.Booking, error) {
	if err := s.Repo.UpdateStatus(ctx, b.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update booking %s: %w", b.ID, err)
	}
	b.Status = status
	b.UpdatedAt = s.now()
	return b, nil
}

func (s *DefaultBookingService) publish(ctx context.Context, b *models.Booking, event string) {
	realtime.PublishSafe(ctx, s.Publisher, realtime.BookingChannel(b.ID), event, map[string]any{
		"booking_id":  b.ID,
		"status":      b.Status,
		"client_id":   b.ClientID,
		"designer_id": b.DesignerID,
	})
}

func (s *DefaultBookingService) ListBookings(ctx context.Context, userID string, role models.Role) ([]models.Booking, error) {
	if role == models.RoleDesigner {
		designer, err := s.Designers.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return s.Repo.ListByDesigner(ctx, designer.ID)
	}
	return s.Repo.ListByClient(ctx, userID)
}
