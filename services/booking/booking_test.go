package booking

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
	"meetmydesigners/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBookings struct{ rows map[string]*models.Booking }

func (m *memoryBookings) Create(ctx context.Context, b *models.Booking) error {
	cp := *b
	m.rows[b.ID] = &cp
	return nil
}
func (m *memoryBookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}
func (m *memoryBookings) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	b, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	return nil
}
func (m *memoryBookings) ListByClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	return m.list(func(b *models.Booking) bool { return b.ClientID == clientID }), nil
}
func (m *memoryBookings) ListByDesigner(ctx context.Context, designerID string) ([]models.Booking, error) {
	return m.list(func(b *models.Booking) bool { return b.DesignerID == designerID }), nil
}
func (m *memoryBookings) FindStale(ctx context.Context, beforeDate string) ([]models.Booking, error) {
	return m.list(func(b *models.Booking) bool { return b.Open() && b.ScheduledDate < beforeDate }), nil
}
func (m *memoryBookings) list(keep func(*models.Booking) bool) []models.Booking {
	var out []models.Booking
	for _, b := range m.rows {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type stubDesigners struct{ byID map[string]*models.Designer }

func (s *stubDesigners) Create(ctx context.Context, d *models.Designer) error { return nil }
func (s *stubDesigners) GetByID(ctx context.Context, id string) (*models.Designer, error) {
	if d, ok := s.byID[id]; ok {
		return d, nil
	}
	return nil, repository.ErrNotFound
}
func (s *stubDesigners) GetByUserID(ctx context.Context, userID string) (*models.Designer, error) {
	for _, d := range s.byID {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}
func (s *stubDesigners) List(ctx context.Context, onlineOnly bool) ([]models.Designer, error) {
	return nil, nil
}
func (s *stubDesigners) Update(ctx context.Context, d *models.Designer) error         { return nil }
func (s *stubDesigners) SetOnline(ctx context.Context, id string, online bool) error { return nil }
func (s *stubDesigners) UpdateRating(ctx context.Context, id string, rating float64, count int) error {
	return nil
}

type stubAvailability struct {
	result models.AvailabilityResult
	asked  []time.Time
}

func (s *stubAvailability) CheckDesignerAvailabilityForDateTime(ctx context.Context, designerID string, at time.Time) models.AvailabilityResult {
	s.asked = append(s.asked, at)
	return s.result
}
func (s *stubAvailability) Location(d *models.Designer) *time.Location { return time.UTC }

type stubBalance struct{ balance float64 }

func (s *stubBalance) CheckSufficientBalance(ctx context.Context, userID string, amount float64) (float64, error) {
	if s.balance < amount {
		return s.balance, wallet.ErrInsufficientBalance
	}
	return s.balance, nil
}

type recorder struct {
	notified  []string
	published []string
}

func (r *recorder) Dispatch(ctx context.Context, userID, kind, title, message string, data map[string]string) error {
	r.notified = append(r.notified, userID+":"+kind)
	return nil
}
func (r *recorder) Publish(ctx context.Context, channel, event string, payload any) error {
	r.published = append(r.published, channel+":"+event)
	return nil
}

var now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *DefaultBookingService
	repo     *memoryBookings
	avail    *stubAvailability
	balance  *stubBalance
	recorder *recorder
}

func newFixture() *fixture {
	f := &fixture{
		repo:     &memoryBookings{rows: map[string]*models.Booking{}},
		avail:    &stubAvailability{result: models.AvailabilityResult{Available: true}},
		balance:  &stubBalance{balance: 1000},
		recorder: &recorder{},
	}
	f.svc = &DefaultBookingService{
		Repo: f.repo,
		Designers: &stubDesigners{byID: map[string]*models.Designer{
			"d1": {ID: "d1", UserID: "designer-user", RatePerMinute: 10},
		}},
		Availability:    f.avail,
		Wallet:          f.balance,
		Notifier:        f.recorder,
		Publisher:       f.recorder,
		DefaultLocation: time.UTC,
		Now:             func() time.Time { return now },
	}
	return f
}

func request() models.CreateBookingRequest {
	return models.CreateBookingRequest{DesignerID: "d1", ScheduledDate: "2024-05-11", ScheduledTime: "14:30", DurationMinutes: 30}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture()

	b, err := f.svc.CreateBooking(context.Background(), "client", request())
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
	require.Len(t, f.avail.asked, 1)
	assert.Equal(t, time.Date(2024, 5, 11, 14, 30, 0, 0, time.UTC), f.avail.asked[0])
	assert.Equal(t, []string{"designer-user:booking_request"}, f.recorder.notified)
}

func TestCreateBookingRejectsUnavailableDesigner(t *testing.T) {
	f := newFixture()
	f.avail.result = models.AvailabilityResult{Reason: "Designer is not available on Saturday"}

	_, err := f.svc.CreateBooking(context.Background(), "client", request())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDesignerUnavailable))
	assert.Equal(t, "Designer is not available on Saturday", err.Error())
	assert.Empty(t, f.repo.rows)
}

func TestCreateBookingRequiresFunds(t *testing.T) {
	f := newFixture()
	f.balance.balance = 299

	_, err := f.svc.CreateBooking(context.Background(), "client", request())
	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)
	assert.Empty(t, f.repo.rows)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := request()
	req.ScheduledDate = "2024-05-09"
	_, err := f.svc.CreateBooking(ctx, "client", req)
	assert.ErrorIs(t, err, ErrInvalidBooking)

	req = request()
	req.ScheduledTime = "2pm"
	_, err = f.svc.CreateBooking(ctx, "client", req)
	assert.ErrorIs(t, err, ErrInvalidBooking)

	_, err = f.svc.CreateBooking(ctx, "designer-user", request())
	assert.ErrorIs(t, err, ErrInvalidBooking)

	req = request()
	req.DesignerID = "missing"
	_, err = f.svc.CreateBooking(ctx, "client", req)
	assert.ErrorIs(t, err, ErrInvalidBooking)
}

func TestAcceptAndRejectRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, "client", request())
	require.NoError(t, err)

	_, err = f.svc.AcceptBooking(ctx, "client", b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	accepted, err := f.svc.AcceptBooking(ctx, "designer-user", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingAccepted, accepted.Status)
	assert.Contains(t, f.recorder.published, "booking:"+b.ID+":session_accepted")

	_, err = f.svc.RejectBooking(ctx, "designer-user", b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.AcceptBooking(ctx, "designer-user", "nope")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, "client", request())
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(ctx, "stranger", b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := f.svc.CancelBooking(ctx, "client", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.Contains(t, f.recorder.notified, "designer-user:booking_cancelled")

	_, err = f.svc.CancelBooking(ctx, "designer-user", b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestListBookingsByRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.CreateBooking(ctx, "client", request())
	require.NoError(t, err)

	mine, err := f.svc.ListBookings(ctx, "client", models.RoleClient)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.svc.ListBookings(ctx, "designer-user", models.RoleDesigner)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestExpireStaleBookings(t *testing.T) {
	f := newFixture()
	for id, seed := range map[string]models.Booking{
		"past-pending":   {ScheduledDate: "2024-05-09", Status: models.BookingPending},
		"past-accepted":  {ScheduledDate: "2024-05-01", Status: models.BookingAccepted},
		"past-completed": {ScheduledDate: "2024-05-01", Status: models.BookingCompleted},
		"today":          {ScheduledDate: "2024-05-10", Status: models.BookingPending},
		"future":         {ScheduledDate: "2024-06-01", Status: models.BookingAccepted},
	} {
		seed.ID = id
		seed.DesignerID = "d1"
		f.repo.rows[id] = &seed
	}

	n, err := f.svc.ExpireStaleBookings(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, models.BookingExpired, f.repo.rows["past-pending"].Status)
	assert.Equal(t, models.BookingExpired, f.repo.rows["past-accepted"].Status)
	assert.Equal(t, models.BookingCompleted, f.repo.rows["past-completed"].Status)
	assert.Equal(t, models.BookingPending, f.repo.rows["today"].Status)
	assert.Equal(t, models.BookingAccepted, f.repo.rows["future"].Status)

	n, err = f.svc.ExpireStaleBookings(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExpiryUsesDefaultTimezone(t *testing.T) {
	f := newFixture()
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	f.svc.DefaultLocation = kolkata
	f.repo.rows["b"] = &models.Booking{ID: "b", ScheduledDate: "2024-05-10", Status: models.BookingPending}

	// 20:00 UTC on the 10th is already the 11th in Kolkata.
	n, err := f.svc.ExpireStaleBookings(context.Background(), time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
