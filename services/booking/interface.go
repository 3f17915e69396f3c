package booking

import (
	"context"
	"errors"
	"time"

	bookingRepo "meetmydesigners/database/repository/booking"
	designerRepo "meetmydesigners/database/repository/designer"
	"meetmydesigners/models"
	"meetmydesigners/services/notification"
	"meetmydesigners/services/realtime"
)

var (
	ErrInvalidBooking      = errors.New("invalid booking")
	ErrDesignerUnavailable = errors.New("designer is unavailable")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrForbidden           = errors.New("not allowed to change this booking")
	ErrInvalidTransition   = errors.New("booking cannot move to the requested status")
)

// UnavailableError carries the availability reason shown to the client.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string { return e.Reason }

func (e *UnavailableError) Is(target error) bool { return target == ErrDesignerUnavailable }

// AvailabilityChecker is the slice of the availability service bookings need.
type AvailabilityChecker interface {
	CheckDesignerAvailabilityForDateTime(ctx context.Context, designerID string, at time.Time) models.AvailabilityResult
	Location(d *models.Designer) *time.Location
}

// BalanceChecker is the slice of the wallet service bookings need.
type BalanceChecker interface {
	CheckSufficientBalance(ctx context.Context, userID string, amount float64) (float64, error)
}

// BookingService manages scheduled consultations.
type BookingService interface {
	CreateBooking(ctx context.Context, clientID string, req models.CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error)
	AcceptBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error)
	RejectBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, userID string, role models.Role) ([]models.Booking, error)
	ExpireStaleBookings(ctx context.Context, now time.Time) (int, error)
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	Designers    designerRepo.DesignerRepository
	Availability AvailabilityChecker
	Wallet       BalanceChecker
	Notifier     notification.Notifier
	Publisher    realtime.Publisher
	// DefaultLocation decides what "today" means for expiry.
	DefaultLocation *time.Location
	Now             func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
