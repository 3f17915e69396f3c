package session

import (
	"context"
	"errors"
	"io"
	"time"

	bookingRepo "meetmydesigners/database/repository/booking"
	designerRepo "meetmydesigners/database/repository/designer"
	sessionRepo "meetmydesigners/database/repository/session"
	"meetmydesigners/models"
	"meetmydesigners/services/realtime"
	"meetmydesigners/services/storage"
)

// WaitingTimeout is how long an instant session may wait for its designer.
const WaitingTimeout = 15 * time.Minute

var (
	ErrInvalidSession    = errors.New("invalid session request")
	ErrSessionNotFound   = errors.New("session not found")
	ErrForbidden         = errors.New("not a participant of this session")
	ErrInvalidState      = errors.New("session is not in a valid state for this action")
	ErrAlreadyReviewed   = errors.New("session already reviewed")
	ErrFileNotFound      = errors.New("file not found")
	ErrStorageDisabled   = errors.New("file storage is not configured")
	ErrPaymentIncomplete = errors.New("session ended but payment could not be completed")
)

// AvailabilityChecker is the slice of the availability service sessions need.
type AvailabilityChecker interface {
	CheckDesignerBookingAvailability(ctx context.Context, designerID string) models.AvailabilityResult
}

type BalanceChecker interface {
	CheckSufficientBalance(ctx context.Context, userID string, amount float64) (float64, error)
}

// SessionPayer charges a client for a finished session.
type SessionPayer interface {
	ProcessSessionPayment(ctx context.Context, req models.SessionPaymentRequest) (*models.SessionPaymentResult, error)
}

// SessionService runs live, per-minute billed consultations.
type SessionService interface {
	StartSession(ctx context.Context, clientID string, req models.StartSessionRequest) (*models.ActiveSession, error)
	JoinSession(ctx context.Context, userID, sessionID string) (*models.ActiveSession, error)
	EndSession(ctx context.Context, userID, sessionID string) (*models.ActiveSession, error)
	GetSession(ctx context.Context, userID, sessionID string) (*models.ActiveSession, error)
	ListSessions(ctx context.Context, userID string) ([]models.ActiveSession, error)
	ExpireSessions(ctx context.Context, now time.Time) (int, error)

	SubmitReview(ctx context.Context, clientID, sessionID string, req models.ReviewRequest) (*models.SessionReview, error)

	UploadSessionFile(ctx context.Context, userID, sessionID, fileName string, r io.Reader) (*models.SessionFile, error)
	ListSessionFiles(ctx context.Context, userID, sessionID string) ([]models.SessionFile, error)
	DeleteSessionFile(ctx context.Context, userID, sessionID, fileID string) error
}

// DefaultSessionService is the production implementation. Storage may be
// nil, in which case file sharing is disabled.
type DefaultSessionService struct {
	Sessions     sessionRepo.SessionRepository
	Reviews      sessionRepo.ReviewRepository
	Files        sessionRepo.FileRepository
	Bookings     bookingRepo.BookingRepository
	Designers    designerRepo.DesignerRepository
	Availability AvailabilityChecker
	Wallet       BalanceChecker
	Payments     SessionPayer
	Publisher    realtime.Publisher
	Storage      storage.StorageService

	// MaxSessionMinutes caps billing; zero means no cap.
	MaxSessionMinutes int
	Now               func() time.Time
}

func (s *DefaultSessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
