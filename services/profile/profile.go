package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
)

func (s *DefaultProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.Profiles.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func (s *DefaultProfileService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty", ErrInvalidProfile)
		}
		p.FullName = name
	}
	if req.Phone != nil {
		p.Phone = strings.TrimSpace(*req.Phone)
	}
	p.UpdatedAt = s.now()
	if err := s.Profiles.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

// UpdateFCMToken registers the device that receives push notifications. An
// empty token disables pushes.
func (s *DefaultProfileService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	err := s.Profiles.SetFCMToken(ctx, userID, strings.TrimSpace(token))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProfileNotFound
	}
	return err
}
