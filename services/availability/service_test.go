package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"meetmydesigners/database/repository"
	"meetmydesigners/metrics"
	"meetmydesigners/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDesigners struct {
	designers map[string]*models.Designer
	err       error
}

func (f *fakeDesigners) Create(ctx context.Context, d *models.Designer) error { return nil }
func (f *fakeDesigners) GetByID(ctx context.Context, id string) (*models.Designer, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.designers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}
func (f *fakeDesigners) GetByUserID(ctx context.Context, userID string) (*models.Designer, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeDesigners) List(ctx context.Context, onlineOnly bool) ([]models.Designer, error) {
	return nil, nil
}
func (f *fakeDesigners) Update(ctx context.Context, d *models.Designer) error         { return nil }
func (f *fakeDesigners) SetOnline(ctx context.Context, id string, online bool) error { return nil }
func (f *fakeDesigners) UpdateRating(ctx context.Context, id string, rating float64, count int) error {
	return nil
}

type fakeSchedule struct {
	slots      []models.DesignerSlot
	special    map[string]*models.DesignerSpecialDay
	slotErr    error
	specialErr error
}

func (f *fakeSchedule) ListSlots(ctx context.Context, designerID string) ([]models.DesignerSlot, error) {
	return f.slots, f.slotErr
}
func (f *fakeSchedule) ListActiveSlotsForDay(ctx context.Context, designerID string, dayOfWeek int) ([]models.DesignerSlot, error) {
	if f.slotErr != nil {
		return nil, f.slotErr
	}
	var out []models.DesignerSlot
	for _, s := range f.slots {
		if s.DesignerID == designerID && s.DayOfWeek == dayOfWeek && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeSchedule) ReplaceSlots(ctx context.Context, designerID string, slots []models.DesignerSlot) error {
	f.slots = slots
	return nil
}
func (f *fakeSchedule) GetSpecialDay(ctx context.Context, designerID, date string) (*models.DesignerSpecialDay, error) {
	if f.specialErr != nil {
		return nil, f.specialErr
	}
	return f.special[designerID+"/"+date], nil
}
func (f *fakeSchedule) ListSpecialDays(ctx context.Context, designerID, fromDate string) ([]models.DesignerSpecialDay, error) {
	return nil, nil
}
func (f *fakeSchedule) UpsertSpecialDay(ctx context.Context, day *models.DesignerSpecialDay) error {
	if f.special == nil {
		f.special = map[string]*models.DesignerSpecialDay{}
	}
	f.special[day.DesignerID+"/"+day.Date] = day
	return nil
}
func (f *fakeSchedule) DeleteSpecialDay(ctx context.Context, designerID, id string) error { return nil }

// Monday 2024-01-01.
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func newService(online bool, sched *fakeSchedule, now time.Time) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{
		Designers: &fakeDesigners{designers: map[string]*models.Designer{
			"d1": {ID: "d1", DisplayName: "Ada", IsOnline: online},
		}},
		Repo:            sched,
		DefaultLocation: time.UTC,
		Now:             func() time.Time { return now },
	}
}

func weekday(start, end string) models.DesignerSlot {
	return models.DesignerSlot{ID: start, DesignerID: "d1", DayOfWeek: int(time.Monday), StartTime: start, EndTime: end, IsActive: true}
}

func TestOnlineWithinWeeklySlot(t *testing.T) {
	svc := newService(true, &fakeSchedule{slots: []models.DesignerSlot{weekday("09:00", "17:00")}}, at(10, 30))

	res := svc.CheckDesignerBookingAvailability(context.Background(), "d1")
	assert.True(t, res.Available)
	assert.Empty(t, res.Reason)
}

func TestOnlineOutsideWeeklySlot(t *testing.T) {
	svc := newService(true, &fakeSchedule{slots: []models.DesignerSlot{
		weekday("09:00:00", "12:00:00"),
		weekday("14:00", "17:00"),
	}}, at(13, 0))

	res := svc.CheckDesignerBookingAvailability(context.Background(), "d1")
	assert.False(t, res.Available)
	assert.Equal(t, "Designer is only available between 09:00-12:00, 14:00-17:00 on Monday", res.Reason)
}

func TestSlotEndIsExclusive(t *testing.T) {
	sched := &fakeSchedule{slots: []models.DesignerSlot{weekday("09:00", "17:00")}}
	svc := newService(true, sched, monday)

	assert.True(t, svc.CheckDesignerAvailabilityForDateTime(context.Background(), "d1", at(9, 0)).Available)
	assert.False(t, svc.CheckDesignerAvailabilityForDateTime(context.Background(), "d1", at(17, 0)).Available)
}

func TestOverlappingSlotsAreOred(t *testing.T) {
	sched := &fakeSchedule{slots: []models.DesignerSlot{
		weekday("09:00", "12:00"),
		weekday("11:00", "15:00"),
	}}
	svc := newService(true, sched, monday)

	assert.True(t, svc.CheckDesignerAvailabilityForDateTime(context.Background(), "d1", at(11, 30)).Available)
	assert.True(t, svc.CheckDesignerAvailabilityForDateTime(context.Background(), "d1", at(14, 59)).Available)
}

func TestNoSlotsForWeekday(t *testing.T) {
	svc := newService(true, &fakeSchedule{}, at(10, 0))

	res := svc.CheckDesignerBookingAvailability(context.Background(), "d1")
	assert.False(t, res.Available)
	assert.Equal(t, "Designer is not available on Monday", res.Reason)
}

func TestOfflineDesigner(t *testing.T) {
	svc := newService(false, &fakeSchedule{slots: []models.DesignerSlot{weekday("09:00", "17:00")}}, at(10, 0))

	res := svc.CheckDesignerBookingAvailability(context.Background(), "d1")
	assert.False(t, res.Available)
	assert.Equal(t, ReasonOffline, res.Reason)

	// The schedule check itself ignores the online flag.
	assert.True(t, svc.CheckDesignerAvailabilityForDateTime(context.Background(), "d1", at(10, 0)).Available)
}

func TestSpecialDayOverridesWeeklySchedule(t *testing.T) {
	t.Run("blocks a normally available day", func(t *testing.T) {
		sched := &fakeSchedule{
			slots: []models.DesignerSlot{weekday("09:00", "17:00")},
			special: map[string]*models.DesignerSpecialDay{
				"d1/2024-01-01": {ID: "s1", DesignerID: "d1", Date: "2024-01-01", IsAvailable: false, Reason: "Public holiday"},
			},
		}
		res := newService(true, sched, at(10, 0)).CheckDesignerBookingAvailability(context.Background(), "d1")
		assert.False(t, res.Available)
		assert.Equal(t, "Public holiday", res.Reason)
	})

	t.Run("opens a normally closed day", func(t *testing.T) {
		sched := &fakeSchedule{
			special: map[string]*models.DesignerSpecialDay{
				"d1/2024-01-01": {ID: "s1", DesignerID: "d1", Date: "2024-01-01", IsAvailable: true},
			},
		}
		res := newService(true, sched, at(22, 0)).CheckDesignerBookingAvailability(context.Background(), "d1")
		assert.True(t, res.Available)
	})

	t.Run("respects the override window", func(t *testing.T) {
		sched := &fakeSchedule{
			slots: []models.DesignerSlot{weekday("09:00", "17:00")},
			special: map[string]*models.DesignerSpecialDay{
				"d1/2024-01-01": {ID: "s1", DesignerID: "d1", Date: "2024-01-01", IsAvailable: true, StartTime: "18:00", EndTime: "20:00"},
			},
		}
		svc := newService(true, sched, monday)
		assert.False(t, svc.CheckDesignerAvailabilityForDateTime(context.Background(), "d1", at(10, 0)).Available)
		assert.True(t, svc.CheckDesignerAvailabilityForDateTime(context.Background(), "d1", at(19, 0)).Available)
	})

	t.Run("falls back to weekly schedule on other dates", func(t *testing.T) {
		sched := &fakeSchedule{
			slots: []models.DesignerSlot{weekday("09:00", "17:00")},
			special: map[string]*models.DesignerSpecialDay{
				"d1/2024-01-08": {ID: "s1", DesignerID: "d1", Date: "2024-01-08", IsAvailable: false},
			},
		}
		res := newService(true, sched, at(10, 0)).CheckDesignerBookingAvailability(context.Background(), "d1")
		assert.True(t, res.Available)
	})
}

func TestRepositoryErrorCountsAsError(t *testing.T) {
	boom := errors.New("connection reset")

	for name, sched := range map[string]*fakeSchedule{
		"special day lookup": {specialErr: boom},
		"slot lookup":        {slotErr: boom},
	} {
		t.Run(name, func(t *testing.T) {
			errors0 := testutil.ToFloat64(metrics.AvailabilityChecks.WithLabelValues("error"))
			unavailable0 := testutil.ToFloat64(metrics.AvailabilityChecks.WithLabelValues("unavailable"))

			res := newService(true, sched, at(10, 0)).CheckDesignerBookingAvailability(context.Background(), "d1")
			assert.False(t, res.Available)
			assert.Equal(t, ReasonUnverified, res.Reason)
			assert.Equal(t, errors0+1, testutil.ToFloat64(metrics.AvailabilityChecks.WithLabelValues("error")))
			assert.Equal(t, unavailable0, testutil.ToFloat64(metrics.AvailabilityChecks.WithLabelValues("unavailable")))
		})
	}

	t.Run("designer lookup", func(t *testing.T) {
		svc := newService(true, &fakeSchedule{}, at(10, 0))
		svc.Designers = &fakeDesigners{err: boom}
		res := svc.CheckDesignerBookingAvailability(context.Background(), "d1")
		assert.False(t, res.Available)
		assert.Equal(t, ReasonUnverified, res.Reason)
	})
}

func TestDesignerTimezoneIsApplied(t *testing.T) {
	sched := &fakeSchedule{slots: []models.DesignerSlot{weekday("09:00", "17:00")}}
	svc := newService(true, sched, monday)
	svc.Designers.(*fakeDesigners).designers["d1"].Timezone = "Asia/Kolkata"

	// 04:00 UTC is 09:30 in Kolkata.
	assert.True(t, svc.CheckDesignerAvailabilityForDateTime(context.Background(), "d1", at(4, 0)).Available)
	// 12:00 UTC is 17:30 in Kolkata.
	assert.False(t, svc.CheckDesignerAvailabilityForDateTime(context.Background(), "d1", at(12, 0)).Available)
}

func TestGetDesignerSlotsForDate(t *testing.T) {
	sched := &fakeSchedule{
		slots: []models.DesignerSlot{weekday("09:00", "12:00"), weekday("14:00", "17:00")},
		special: map[string]*models.DesignerSpecialDay{
			"d1/2024-01-08": {ID: "s1", DesignerID: "d1", Date: "2024-01-08", IsAvailable: false, Reason: "Travel"},
		},
	}
	svc := newService(true, sched, monday)

	day, err := svc.GetDesignerSlotsForDate(context.Background(), "d1", "2024-01-01")
	require.NoError(t, err)
	assert.False(t, day.IsOverride)
	assert.True(t, day.Available)
	assert.Len(t, day.Windows, 2)

	day, err = svc.GetDesignerSlotsForDate(context.Background(), "d1", "2024-01-08")
	require.NoError(t, err)
	assert.True(t, day.IsOverride)
	assert.False(t, day.Available)
	assert.Empty(t, day.Windows)
	assert.Equal(t, "Travel", day.Reason)

	_, err = svc.GetDesignerSlotsForDate(context.Background(), "d1", "01/08/2024")
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestReplaceWeeklyScheduleValidates(t *testing.T) {
	sched := &fakeSchedule{}
	svc := newService(true, sched, monday)

	_, err := svc.ReplaceWeeklySchedule(context.Background(), "d1", models.WeeklyScheduleRequest{Slots: []models.SlotInput{
		{DayOfWeek: 1, StartTime: "17:00", EndTime: "09:00"},
	}})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = svc.ReplaceWeeklySchedule(context.Background(), "d1", models.WeeklyScheduleRequest{Slots: []models.SlotInput{
		{DayOfWeek: 7, StartTime: "09:00", EndTime: "17:00"},
	}})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	inactive := false
	slots, err := svc.ReplaceWeeklySchedule(context.Background(), "d1", models.WeeklyScheduleRequest{Slots: []models.SlotInput{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "17:00", IsActive: &inactive},
	}})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].IsActive)
	assert.False(t, slots[1].IsActive)
	assert.Len(t, sched.slots, 2)
}

func TestSetSpecialDayValidates(t *testing.T) {
	svc := newService(true, &fakeSchedule{}, monday)

	_, err := svc.SetSpecialDay(context.Background(), "d1", models.SpecialDayRequest{Date: "2024-13-01"})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = svc.SetSpecialDay(context.Background(), "d1", models.SpecialDayRequest{Date: "2024-01-02", IsAvailable: true, StartTime: "10:00"})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	day, err := svc.SetSpecialDay(context.Background(), "d1", models.SpecialDayRequest{Date: "2024-01-02", IsAvailable: true, StartTime: "10:00", EndTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, "d1", day.DesignerID)
	assert.True(t, day.HasWindow())
}

func TestParseClock(t *testing.T) {
	sec, err := parseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*3600+30*60, sec)

	sec, err = parseClock("09:30:15")
	require.NoError(t, err)
	assert.Equal(t, 9*3600+30*60+15, sec)

	_, err = parseClock("25:00")
	assert.Error(t, err)
	_, err = parseClock("nine")
	assert.Error(t, err)

	sec, err = parseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, 24*3600, sec)

	for _, bad := range []string{"09:00abc", "9:5", "+9:00", "09:00:00xyz", "9:00", "09:60", "09:00:60"} {
		_, err = parseClock(bad)
		assert.Error(t, err, bad)
	}
}
