package sessionRepo

import (
	"context"
	"time"

	"meetmydesigners/models"
)

// SessionRepository persists live sessions (active_sessions).
type SessionRepository interface {
	Create(ctx context.Context, s *models.ActiveSession) error
	GetByID(ctx context.Context, id string) (*models.ActiveSession, error)
	Update(ctx context.Context, s *models.ActiveSession) error
	ListByUser(ctx context.Context, userID string) ([]models.ActiveSession, error)
	// GetOpenByBooking returns the waiting or active session for a booking.
	GetOpenByBooking(ctx context.Context, bookingID string) (*models.ActiveSession, error)
	// ListStale returns sessions in the given status created before the cutoff.
	ListStale(ctx context.Context, status models.SessionStatus, before time.Time) ([]models.ActiveSession, error)
}

// ReviewRepository persists session reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *models.SessionReview) error
	GetBySession(ctx context.Context, sessionID string) (*models.SessionReview, error)
	ListByDesigner(ctx context.Context, designerID string) ([]models.SessionReview, error)
}

// FileRepository persists files shared inside sessions.
type FileRepository interface {
	Create(ctx context.Context, f *models.SessionFile) error
	GetByID(ctx context.Context, id string) (*models.SessionFile, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionFile, error)
	Delete(ctx context.Context, id string) error
}
