package bookingRepo

import (
	"context"

	"meetmydesigners/models"
)

// BookingRepository persists consultation bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
	ListByClient(ctx context.Context, clientID string) ([]models.Booking, error)
	ListByDesigner(ctx context.Context, designerID string) ([]models.Booking, error)
	// FindStale returns open bookings scheduled strictly before the given date.
	FindStale(ctx context.Context, beforeDate string) ([]models.Booking, error)
}
