package bank

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
	"meetmydesigners/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memoryAccounts struct{ rows map[string]*models.BankAccount }

func (m *memoryAccounts) Create(ctx context.Context, a *models.BankAccount) error {
	cp := *a
	m.rows[a.ID] = &cp
	return nil
}
func (m *memoryAccounts) GetByID(ctx context.Context, id string) (*models.BankAccount, error) {
	a, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}
func (m *memoryAccounts) ListByUser(ctx context.Context, userID string) ([]models.BankAccount, error) {
	var out []models.BankAccount
	for _, a := range m.rows {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}
func (m *memoryAccounts) MarkVerified(ctx context.Context, id string, at time.Time) error {
	m.rows[id].IsVerified = true
	m.rows[id].VerifiedAt = &at
	return nil
}
func (m *memoryAccounts) SetPrimary(ctx context.Context, userID, id string) error {
	for _, a := range m.rows {
		if a.UserID == userID {
			a.IsPrimary = a.ID == id
		}
	}
	return nil
}
func (m *memoryAccounts) Delete(ctx context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

type entry struct {
	code    string
	expires time.Time
}

type memoryOTPs struct {
	now       func() time.Time
	codes     map[string]entry
	failures  map[string]int64
	deleteErr error
}

func (m *memoryOTPs) Save(ctx context.Context, key, code string, ttl time.Duration) error {
	m.codes[key] = entry{code, m.now().Add(ttl)}
	delete(m.failures, key)
	return nil
}
func (m *memoryOTPs) RecordFailure(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.failures[key]++
	return m.failures[key], nil
}
func (m *memoryOTPs) Get(ctx context.Context, key string) (string, error) {
	e, ok := m.codes[key]
	if !ok || !m.now().Before(e.expires) {
		return "", nil
	}
	return e.code, nil
}
func (m *memoryOTPs) Delete(ctx context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.codes, key)
	delete(m.failures, key)
	return nil
}

type capturingNotifier struct{ messages []string }

func (c *capturingNotifier) Dispatch(ctx context.Context, userID, kind, title, message string, data map[string]string) error {
	c.messages = append(c.messages, message)
	return nil
}

var codePattern = regexp.MustCompile(`is (\d{6})\.`)

type fixture struct {
	svc      *DefaultBankService
	repo     *memoryAccounts
	otps     *memoryOTPs
	notifier *capturingNotifier
	clock    time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:     &memoryAccounts{rows: map[string]*models.BankAccount{}},
		notifier: &capturingNotifier{},
		clock:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.clock }
	f.otps = &memoryOTPs{now: now, codes: map[string]entry{}, failures: map[string]int64{}}
	f.svc = &DefaultBankService{Repo: f.repo, OTPs: f.otps, Notifier: f.notifier, Now: now}
	return f
}

func (f *fixture) lastCode(t *testing.T) string {
	require.NotEmpty(t, f.notifier.messages)
	m := codePattern.FindStringSubmatch(f.notifier.messages[len(f.notifier.messages)-1])
	require.Len(t, m, 2)
	return m[1]
}

var validRequest = models.BankAccountRequest{AccountHolder: "Ada Lovelace", AccountNumber: "123456789012", IFSC: "hdfc0001234"}

func TestAddBankAccountValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := validRequest
	req.IFSC = "HDFC1001234"
	_, err := f.svc.AddBankAccount(ctx, "u1", req)
	assert.ErrorIs(t, err, ErrInvalidIFSC)

	req = validRequest
	req.AccountNumber = "12345678"
	_, err = f.svc.AddBankAccount(ctx, "u1", req)
	assert.ErrorIs(t, err, ErrInvalidAccountNumber)

	req.AccountNumber = "1234567890123456789"
	_, err = f.svc.AddBankAccount(ctx, "u1", req)
	assert.ErrorIs(t, err, ErrInvalidAccountNumber)

	account, err := f.svc.AddBankAccount(ctx, "u1", validRequest)
	require.NoError(t, err)
	assert.Equal(t, "HDFC0001234", account.IFSC)
	assert.Equal(t, "XXXXXXXX9012", account.MaskedNumber)
	assert.False(t, account.IsVerified)
	assert.Contains(t, f.otps.codes, "bank_otp:u1:"+account.ID)
}

func TestVerifyBankAccount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	account, err := f.svc.AddBankAccount(ctx, "u1", validRequest)
	require.NoError(t, err)
	code := f.lastCode(t)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = f.svc.VerifyBankAccount(ctx, "u1", account.ID, wrong)
	assert.ErrorIs(t, err, ErrOTPMismatch)

	_, err = f.svc.VerifyBankAccount(ctx, "u2", account.ID, code)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	verified, err := f.svc.VerifyBankAccount(ctx, "u1", account.ID, code)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.True(t, verified.IsPrimary)
	assert.Empty(t, f.otps.codes)

	_, err = f.svc.VerifyBankAccount(ctx, "u1", account.ID, code)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyExpiredCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	account, err := f.svc.AddBankAccount(ctx, "u1", validRequest)
	require.NoError(t, err)
	code := f.lastCode(t)

	f.clock = f.clock.Add(11 * time.Minute)
	_, err = f.svc.VerifyBankAccount(ctx, "u1", account.ID, code)
	assert.ErrorIs(t, err, ErrOTPExpired)

	require.NoError(t, f.svc.ResendOTP(ctx, "u1", account.ID))
	_, err = f.svc.VerifyBankAccount(ctx, "u1", account.ID, f.lastCode(t))
	require.NoError(t, err)
}

func TestSecondVerifiedAccountIsNotPrimary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.AddBankAccount(ctx, "u1", validRequest)
	require.NoError(t, err)
	_, err = f.svc.VerifyBankAccount(ctx, "u1", first.ID, f.lastCode(t))
	require.NoError(t, err)

	req := validRequest
	req.AccountNumber = "998877665544"
	second, err := f.svc.AddBankAccount(ctx, "u1", req)
	require.NoError(t, err)
	verified, err := f.svc.VerifyBankAccount(ctx, "u1", second.ID, f.lastCode(t))
	require.NoError(t, err)
	assert.False(t, verified.IsPrimary)

	require.NoError(t, f.svc.SetPrimary(ctx, "u1", second.ID))
	assert.True(t, f.repo.rows[second.ID].IsPrimary)
	assert.False(t, f.repo.rows[first.ID].IsPrimary)
}

func TestSetPrimaryRequiresVerification(t *testing.T) {
	f := newFixture()
	account, err := f.svc.AddBankAccount(context.Background(), "u1", validRequest)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.SetPrimary(context.Background(), "u1", account.ID), ErrNotVerified)
	require.NoError(t, f.svc.DeleteBankAccount(context.Background(), "u1", account.ID))
	assert.Empty(t, f.repo.rows)
}

func TestWrongCodesBurnTheCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	account, err := f.svc.AddBankAccount(ctx, "u1", validRequest)
	require.NoError(t, err)
	code := f.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 1; i < maxOTPAttempts; i++ {
		_, err = f.svc.VerifyBankAccount(ctx, "u1", account.ID, wrong)
		require.ErrorIs(t, err, ErrOTPMismatch, "attempt %d", i)
	}
	_, err = f.svc.VerifyBankAccount(ctx, "u1", account.ID, wrong)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// The right code no longer works once burned.
	_, err = f.svc.VerifyBankAccount(ctx, "u1", account.ID, code)
	assert.ErrorIs(t, err, ErrOTPExpired)

	// A fresh code starts a fresh count.
	require.NoError(t, f.svc.ResendOTP(ctx, "u1", account.ID))
	_, err = f.svc.VerifyBankAccount(ctx, "u1", account.ID, wrong)
	assert.ErrorIs(t, err, ErrOTPMismatch)
	verified, err := f.svc.VerifyBankAccount(ctx, "u1", account.ID, f.lastCode(t))
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
}

func TestDeleteBankAccountToleratesCodeCleanupFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	account, err := f.svc.AddBankAccount(ctx, "u1", validRequest)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.WarnLevel)
	prev := utils.Logger
	utils.Logger = zap.New(core)
	t.Cleanup(func() { utils.Logger = prev })

	f.otps.deleteErr = errors.New("redis: connection refused")
	require.NoError(t, f.svc.DeleteBankAccount(ctx, "u1", account.ID))
	assert.Empty(t, f.repo.rows)

	entries := logs.FilterMessage("bank: failed to delete pending code").All()
	require.Len(t, entries, 1)
	assert.Equal(t, account.ID, entries[0].ContextMap()["accountID"])
}
