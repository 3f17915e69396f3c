package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
	"meetmydesigners/utils"

	"go.uber.org/zap"
)

func (s *DefaultProfileService) ListDesigners(ctx context.Context, onlineOnly bool) ([]models.Designer, error) {
	return s.Designers.List(ctx, onlineOnly)
}

func (s *DefaultProfileService) GetDesigner(ctx context.Context, id string) (*models.Designer, error) {
	d, err := s.Designers.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrDesignerNotFound
	}
	return d, err
}

func (s *DefaultProfileService) GetDesignerByUser(ctx context.Context, userID string) (*models.Designer, error) {
	d, err := s.Designers.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrDesignerNotFound
	}
	return d, err
}

func (s *DefaultProfileService) UpdateDesigner(ctx context.Context, userID string, req models.UpdateDesignerRequest) (*models.Designer, error) {
	d, err := s.GetDesignerByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("%w: display name cannot be empty", ErrInvalidProfile)
		}
		d.DisplayName = name
	}
	if req.Specialty != nil {
		d.Specialty = strings.TrimSpace(*req.Specialty)
	}
	if req.Bio != nil {
		d.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.RatePerMinute != nil {
		if *req.RatePerMinute < 0 {
			return nil, fmt.Errorf("%w: rate cannot be negative", ErrInvalidProfile)
		}
		d.RatePerMinute = utils.RoundMoney(*req.RatePerMinute)
	}
	if req.Timezone != nil {
		tz := strings.TrimSpace(*req.Timezone)
		if tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidProfile, tz)
			}
		}
		d.Timezone = tz
	}
	d.UpdatedAt = s.now()
	if err := s.Designers.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update designer: %w", err)
	}
	return d, nil
}

// SetOnline toggles whether the designer accepts sessions right now.
func (s *DefaultProfileService) SetOnline(ctx context.Context, userID string, online bool) (*models.Designer, error) {
	d, err := s.GetDesignerByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Designers.SetOnline(ctx, d.ID, online); err != nil {
		return nil, fmt.Errorf("failed to update designer status: %w", err)
	}
	d.IsOnline = online
	utils.GetLogger().Info("profile: designer presence changed", zap.String("designerID", d.ID), zap.Bool("online", online))
	return d, nil
}
