package profile

import (
	"context"
	"errors"
	"time"

	designerRepo "meetmydesigners/database/repository/designer"
	profileRepo "meetmydesigners/database/repository/profile"
	"meetmydesigners/models"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrDesignerNotFound   = errors.New("designer not found")
	ErrInvalidProfile     = errors.New("invalid profile data")
)

// Claims identifies the caller behind a verified token.
type Claims struct {
	UserID string
	Role   models.Role
}

// ProfileService covers accounts and their sign-in tokens.
type ProfileService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*models.AuthResponse, error)
	SignOut(ctx context.Context, userID string) error
	Authenticate(ctx context.Context, token string) (*Claims, error)

	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, error)
	UpdateFCMToken(ctx context.Context, userID, token string) error
}

// DesignerService covers the public designer directory and self-service.
type DesignerService interface {
	ListDesigners(ctx context.Context, onlineOnly bool) ([]models.Designer, error)
	GetDesigner(ctx context.Context, id string) (*models.Designer, error)
	GetDesignerByUser(ctx context.Context, userID string) (*models.Designer, error)
	UpdateDesigner(ctx context.Context, userID string, req models.UpdateDesignerRequest) (*models.Designer, error)
	SetOnline(ctx context.Context, userID string, online bool) (*models.Designer, error)
}

// DefaultProfileService implements both ProfileService and DesignerService.
type DefaultProfileService struct {
	Profiles  profileRepo.ProfileRepository
	Designers designerRepo.DesignerRepository
	Tokens    TokenCache
	TokenTTL  time.Duration
	Now       func() time.Time
}

func (s *DefaultProfileService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
