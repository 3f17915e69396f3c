package profile

import (
	"context"
	"testing"
	"time"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryProfiles struct{ rows map[string]*models.Profile }

func (m *memoryProfiles) Create(ctx context.Context, p *models.Profile) error {
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}
func (m *memoryProfiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
func (m *memoryProfiles) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	for _, p := range m.rows {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}
func (m *memoryProfiles) Update(ctx context.Context, p *models.Profile) error {
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}
func (m *memoryProfiles) SetTokenHash(ctx context.Context, id, tokenHash string) error {
	p, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.TokenHash = tokenHash
	return nil
}
func (m *memoryProfiles) SetFCMToken(ctx context.Context, id, token string) error {
	p, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.FCMToken = token
	return nil
}

type memoryDesigners struct{ rows map[string]*models.Designer }

func (m *memoryDesigners) Create(ctx context.Context, d *models.Designer) error {
	cp := *d
	m.rows[d.ID] = &cp
	return nil
}
func (m *memoryDesigners) GetByID(ctx context.Context, id string) (*models.Designer, error) {
	d, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}
func (m *memoryDesigners) GetByUserID(ctx context.Context, userID string) (*models.Designer, error) {
	for _, d := range m.rows {
		if d.UserID == userID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}
func (m *memoryDesigners) List(ctx context.Context, onlineOnly bool) ([]models.Designer, error) {
	var out []models.Designer
	for _, d := range m.rows {
		if !onlineOnly || d.IsOnline {
			out = append(out, *d)
		}
	}
	return out, nil
}
func (m *memoryDesigners) Update(ctx context.Context, d *models.Designer) error {
	cp := *d
	m.rows[d.ID] = &cp
	return nil
}
func (m *memoryDesigners) SetOnline(ctx context.Context, id string, online bool) error {
	m.rows[id].IsOnline = online
	return nil
}
func (m *memoryDesigners) UpdateRating(ctx context.Context, id string, rating float64, count int) error {
	return nil
}

type memoryTokens struct{ hashes map[string]string }

func (m *memoryTokens) Set(ctx context.Context, userID, tokenHash string, ttl time.Duration) error {
	m.hashes[userID] = tokenHash
	return nil
}
func (m *memoryTokens) Get(ctx context.Context, userID string) (string, error) {
	return m.hashes[userID], nil
}
func (m *memoryTokens) Delete(ctx context.Context, userID string) error {
	delete(m.hashes, userID)
	return nil
}

func newService() (*DefaultProfileService, *memoryProfiles, *memoryDesigners, *memoryTokens) {
	profiles := &memoryProfiles{rows: map[string]*models.Profile{}}
	designers := &memoryDesigners{rows: map[string]*models.Designer{}}
	tokens := &memoryTokens{hashes: map[string]string{}}
	return &DefaultProfileService{Profiles: profiles, Designers: designers, Tokens: tokens}, profiles, designers, tokens
}

func TestSignUpDesignerCreatesDesignerRecord(t *testing.T) {
	svc, profiles, designers, tokens := newService()
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, models.SignUpRequest{
		Email: " Asha@Example.com ", Password: "correct-horse", FullName: "Asha Rao",
		Role: models.RoleDesigner, Specialty: "Interiors", RatePerMinute: 12.5,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "asha@example.com", resp.Profile.Email)

	stored := profiles.rows[resp.Profile.ID]
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))
	assert.Equal(t, stored.TokenHash, tokens.hashes[stored.ID])

	d, err := designers.GetByUserID(ctx, resp.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", d.DisplayName)
	assert.Equal(t, 12.5, d.RatePerMinute)
	assert.False(t, d.IsOnline)

	_, err = svc.SignUp(ctx, models.SignUpRequest{Email: "asha@example.com", Password: "another-pass", FullName: "x", Role: models.RoleClient})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignUpClientHasNoDesignerRecord(t *testing.T) {
	svc, _, designers, _ := newService()
	_, err := svc.SignUp(context.Background(), models.SignUpRequest{Email: "c@example.com", Password: "password1", FullName: "C", Role: models.RoleClient})
	require.NoError(t, err)
	assert.Empty(t, designers.rows)

	_, err = svc.SignUp(context.Background(), models.SignUpRequest{Email: "a@example.com", Password: "password1", FullName: "A", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestSignInAndAuthenticate(t *testing.T) {
	svc, profiles, _, tokens := newService()
	ctx := context.Background()
	_, err := svc.SignUp(ctx, models.SignUpRequest{Email: "c@example.com", Password: "password1", FullName: "C", Role: models.RoleClient})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, models.SignInRequest{Email: "c@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, models.SignInRequest{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.SignIn(ctx, models.SignInRequest{Email: "C@example.com", Password: "password1"})
	require.NoError(t, err)

	claims, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Profile.ID, claims.UserID)
	assert.Equal(t, models.RoleClient, claims.Role)

	// A cache miss falls back to the stored hash and refills the cache.
	delete(tokens.hashes, resp.Profile.ID)
	_, err = svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, profiles.rows[resp.Profile.ID].TokenHash, tokens.hashes[resp.Profile.ID])

	require.NoError(t, svc.SignOut(ctx, resp.Profile.ID))
	_, err = svc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateProfileAndFCM(t *testing.T) {
	svc, profiles, _, _ := newService()
	ctx := context.Background()
	resp, err := svc.SignUp(ctx, models.SignUpRequest{Email: "c@example.com", Password: "password1", FullName: "C", Role: models.RoleClient})
	require.NoError(t, err)
	id := resp.Profile.ID

	name, empty := "Chitra", " "
	p, err := svc.UpdateProfile(ctx, id, models.UpdateProfileRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Chitra", p.FullName)

	_, err = svc.UpdateProfile(ctx, id, models.UpdateProfileRequest{FullName: &empty})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	require.NoError(t, svc.UpdateFCMToken(ctx, id, "fcm-token"))
	assert.Equal(t, "fcm-token", profiles.rows[id].FCMToken)

	assert.ErrorIs(t, svc.UpdateFCMToken(ctx, "missing", "x"), ErrProfileNotFound)
	_, err = svc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDesignerSelfService(t *testing.T) {
	svc, _, designers, _ := newService()
	ctx := context.Background()
	resp, err := svc.SignUp(ctx, models.SignUpRequest{Email: "d@example.com", Password: "password1", FullName: "D", Role: models.RoleDesigner})
	require.NoError(t, err)
	userID := resp.Profile.ID

	rate, badRate := 20.0, -1.0
	tz, badTZ := "Asia/Kolkata", "Mars/Olympus"
	d, err := svc.UpdateDesigner(ctx, userID, models.UpdateDesignerRequest{RatePerMinute: &rate, Timezone: &tz})
	require.NoError(t, err)
	assert.Equal(t, 20.0, d.RatePerMinute)
	assert.Equal(t, "Asia/Kolkata", d.Timezone)

	_, err = svc.UpdateDesigner(ctx, userID, models.UpdateDesignerRequest{RatePerMinute: &badRate})
	assert.ErrorIs(t, err, ErrInvalidProfile)
	_, err = svc.UpdateDesigner(ctx, userID, models.UpdateDesignerRequest{Timezone: &badTZ})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	online, err := svc.ListDesigners(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, online)

	d, err = svc.SetOnline(ctx, userID, true)
	require.NoError(t, err)
	assert.True(t, d.IsOnline)
	assert.True(t, designers.rows[d.ID].IsOnline)

	online, err = svc.ListDesigners(ctx, true)
	require.NoError(t, err)
	assert.Len(t, online, 1)

	_, err = svc.SetOnline(ctx, "client-only", true)
	assert.ErrorIs(t, err, ErrDesignerNotFound)
	_, err = svc.GetDesigner(ctx, "missing")
	assert.ErrorIs(t, err, ErrDesignerNotFound)
}
