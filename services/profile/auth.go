package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
	"meetmydesigners/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates the account and, for designers, their bookable designer record.
func (s *DefaultProfileService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: email and a password of at least 8 characters are required", ErrInvalidProfile)
	}
	if req.Role != models.RoleClient && req.Role != models.RoleDesigner {
		return nil, fmt.Errorf("%w: role must be client or designer", ErrInvalidProfile)
	}
	if req.RatePerMinute < 0 {
		return nil, fmt.Errorf("%w: rate cannot be negative", ErrInvalidProfile)
	}

	_, err := s.Profiles.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	p := &models.Profile{
		ID:           uuid.New().String(),
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         req.Role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Profiles.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if p.Role == models.RoleDesigner {
		d := &models.Designer{
			ID:            uuid.New().String(),
			UserID:        p.ID,
			DisplayName:   p.FullName,
			Specialty:     strings.TrimSpace(req.Specialty),
			RatePerMinute: utils.RoundMoney(req.RatePerMinute),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.Designers.Create(ctx, d); err != nil {
			return nil, fmt.Errorf("failed to create designer: %w", err)
		}
	}

	utils.GetLogger().Info("profile: signed up", zap.String("userID", p.ID), zap.String("role", string(p.Role)))
	return s.issueToken(ctx, p)
}

func (s *DefaultProfileService) SignIn(ctx context.Context, req models.SignInRequest) (*models.AuthResponse, error) {
	p, err := s.Profiles.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		utils.GetLogger().Error("profile: failed to fetch profile", zap.Error(err))
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(ctx, p)
}

// issueToken replaces the profile's token. Earlier tokens stop working.
func (s *DefaultProfileService) issueToken(ctx context.Context, p *models.Profile) (*models.AuthResponse, error) {
	ttl := s.TokenTTL
	if ttl == 0 {
		ttl = utils.SessionTokenTTL
	}
	token, err := utils.GenerateToken(p.ID, string(p.Role), ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	hash := utils.HashToken(token)
	if err := s.Profiles.SetTokenHash(ctx, p.ID, hash); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	p.TokenHash = hash
	if err := s.Tokens.Set(ctx, p.ID, hash, utils.AuthCacheTTL); err != nil {
		utils.GetLogger().Warn("profile: failed to cache token", zap.String("userID", p.ID), zap.Error(err))
	}
	return &models.AuthResponse{Token: token, Profile: p}, nil
}

func (s *DefaultProfileService) SignOut(ctx context.Context, userID string) error {
	if err := s.Profiles.SetTokenHash(ctx, userID, ""); err != nil {
		return err
	}
	if err := s.Tokens.Delete(ctx, userID); err != nil {
		utils.GetLogger().Warn("profile: failed to clear token cache", zap.String("userID", userID), zap.Error(err))
	}
	return nil
}

// Authenticate checks the signature and that token is the profile's current
// one. The cache is consulted first and refilled from the database on a miss.
func (s *DefaultProfileService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	userID, role, err := utils.ExtractClaims(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	hash := utils.HashToken(token)

	cached, err := s.Tokens.Get(ctx, userID)
	if err != nil {
		utils.GetLogger().Warn("profile: token cache unavailable", zap.Error(err))
	}
	if cached == hash {
		return &Claims{UserID: userID, Role: models.Role(role)}, nil
	}

	p, err := s.Profiles.GetByID(ctx, userID)
	if err != nil || p.TokenHash == "" || p.TokenHash != hash {
		return nil, ErrUnauthorized
	}
	if err := s.Tokens.Set(ctx, userID, hash, utils.AuthCacheTTL); err != nil {
		utils.GetLogger().Warn("profile: failed to cache token", zap.String("userID", userID), zap.Error(err))
	}
	return &Claims{UserID: p.ID, Role: p.Role}, nil
}
