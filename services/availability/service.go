package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetmydesigners/database/repository"
	availabilityRepo "meetmydesigners/database/repository/availability"
	designerRepo "meetmydesigners/database/repository/designer"
	"meetmydesigners/metrics"
	"meetmydesigners/models"
	"meetmydesigners/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ReasonOffline    = "Designer is currently offline"
	ReasonUnverified = "Unable to verify designer availability"
	ReasonNotFound   = "Designer not found"
	ReasonNoSchedule = "Designer has not set a schedule for this day"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

// AvailabilityService decides whether a designer can be booked at a given moment
// and manages the weekly schedule and per-date overrides behind that decision.
type AvailabilityService interface {
	CheckDesignerBookingAvailability(ctx context.Context, designerID string) models.AvailabilityResult
	CheckDesignerAvailabilityForDateTime(ctx context.Context, designerID string, at time.Time) models.AvailabilityResult
	GetDesignerSlotsForDate(ctx context.Context, designerID, date string) (*models.DaySlots, error)

	ReplaceWeeklySchedule(ctx context.Context, designerID string, req models.WeeklyScheduleRequest) ([]models.DesignerSlot, error)
	ListWeeklySchedule(ctx context.Context, designerID string) ([]models.DesignerSlot, error)
	SetSpecialDay(ctx context.Context, designerID string, req models.SpecialDayRequest) (*models.DesignerSpecialDay, error)
	ListSpecialDays(ctx context.Context, designerID, fromDate string) ([]models.DesignerSpecialDay, error)
	DeleteSpecialDay(ctx context.Context, designerID, id string) error

	// Location returns the timezone a designer's schedule is expressed in.
	Location(d *models.Designer) *time.Location
}

// DefaultAvailabilityService implements AvailabilityService.
type DefaultAvailabilityService struct {
	Designers       designerRepo.DesignerRepository
	Repo            availabilityRepo.AvailabilityRepository
	DefaultLocation *time.Location
	Now             func() time.Time
}

func (s *DefaultAvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultAvailabilityService) Location(d *models.Designer) *time.Location {
	if d != nil && d.Timezone != "" {
		if loc, err := time.LoadLocation(d.Timezone); err == nil {
			return loc
		}
	}
	if s.DefaultLocation != nil {
		return s.DefaultLocation
	}
	return time.UTC
}

// CheckDesignerBookingAvailability checks whether the designer can take a session right now.
func (s *DefaultAvailabilityService) CheckDesignerBookingAvailability(ctx context.Context, designerID string) models.AvailabilityResult {
	designer, res, ok := s.loadDesigner(ctx, designerID)
	if !ok {
		return res
	}
	if !designer.IsOnline {
		return record(models.AvailabilityResult{Available: false, Reason: ReasonOffline})
	}
	return s.check(ctx, designer, s.now())
}

// CheckDesignerAvailabilityForDateTime checks the designer's schedule at an arbitrary instant.
func (s *DefaultAvailabilityService) CheckDesignerAvailabilityForDateTime(ctx context.Context, designerID string, at time.Time) models.AvailabilityResult {
	designer, res, ok := s.loadDesigner(ctx, designerID)
	if !ok {
		return res
	}
	return s.check(ctx, designer, at)
}

// check evaluates and counts the verdict; lookup failures count as errors.
func (s *DefaultAvailabilityService) check(ctx context.Context, designer *models.Designer, at time.Time) models.AvailabilityResult {
	res, err := s.evaluate(ctx, designer, at)
	if err != nil {
		utils.GetLogger().Error("availability: could not evaluate schedule",
			zap.String("designerID", designer.ID), zap.Time("at", at), zap.Error(err))
		return recordError()
	}
	return record(res)
}

func (s *DefaultAvailabilityService) loadDesigner(ctx context.Context, designerID string) (*models.Designer, models.AvailabilityResult, bool) {
	designer, err := s.Designers.GetByID(ctx, designerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, record(models.AvailabilityResult{Available: false, Reason: ReasonNotFound}), false
		}
		utils.GetLogger().Error("availability: failed to load designer",
			zap.String("designerID", designerID), zap.Error(err))
		return nil, recordError(), false
	}
	return designer, models.AvailabilityResult{}, true
}

// evaluate applies the override-then-weekly rule.
func (s *DefaultAvailabilityService) evaluate(ctx context.Context, designer *models.Designer, at time.Time) (models.AvailabilityResult, error) {
	logger := utils.GetLogger()
	local := at.In(s.Location(designer))
	date := local.Format(utils.DateLayout)
	tod := secondOfDay(local)

	special, err := s.Repo.GetSpecialDay(ctx, designer.ID, date)
	if err != nil {
		return models.AvailabilityResult{}, fmt.Errorf("special day lookup for %s: %w", date, err)
	}
	if special != nil {
		return evaluateSpecialDay(*special, tod)
	}

	slots, err := s.Repo.ListActiveSlotsForDay(ctx, designer.ID, int(local.Weekday()))
	if err != nil {
		return models.AvailabilityResult{}, fmt.Errorf("weekly slot lookup for %s: %w", local.Weekday(), err)
	}

	weekday := local.Weekday().String()
	var active []models.DesignerSlot
	for _, slot := range slots {
		if slot.IsActive {
			active = append(active, slot)
		}
	}
	if len(active) == 0 {
		return models.AvailabilityResult{Available: false, Reason: fmt.Sprintf("Designer is not available on %s", weekday)}, nil
	}

	ranges := make([]string, 0, len(active))
	for _, slot := range active {
		ok, err := within(tod, slot.StartTime, slot.EndTime)
		if err != nil {
			logger.Warn("availability: skipping malformed slot",
				zap.String("slotID", slot.ID), zap.Error(err))
			continue
		}
		if ok {
			return models.AvailabilityResult{Available: true}, nil
		}
		ranges = append(ranges, shortClock(slot.StartTime)+"-"+shortClock(slot.EndTime))
	}
	return models.AvailabilityResult{
		Available: false,
		Reason:    fmt.Sprintf("Designer is only available between %s on %s", strings.Join(ranges, ", "), weekday),
	}, nil
}

func evaluateSpecialDay(day models.DesignerSpecialDay, tod int) (models.AvailabilityResult, error) {
	if !day.IsAvailable {
		reason := day.Reason
		if reason == "" {
			reason = fmt.Sprintf("Designer is unavailable on %s", day.Date)
		}
		return models.AvailabilityResult{Available: false, Reason: reason}, nil
	}
	if !day.HasWindow() {
		return models.AvailabilityResult{Available: true}, nil
	}
	ok, err := within(tod, day.StartTime, day.EndTime)
	if err != nil {
		return models.AvailabilityResult{}, fmt.Errorf("malformed special day %s: %w", day.ID, err)
	}
	if ok {
		return models.AvailabilityResult{Available: true}, nil
	}
	return models.AvailabilityResult{
		Available: false,
		Reason: fmt.Sprintf("Designer is only available between %s-%s on %s",
			shortClock(day.StartTime), shortClock(day.EndTime), day.Date),
	}, nil
}

func unverified() models.AvailabilityResult {
	return models.AvailabilityResult{Available: false, Reason: ReasonUnverified}
}

func recordError() models.AvailabilityResult {
	metrics.AvailabilityChecks.WithLabelValues("error").Inc()
	return unverified()
}

func record(res models.AvailabilityResult) models.AvailabilityResult {
	label := "unavailable"
	if res.Available {
		label = "available"
	}
	metrics.AvailabilityChecks.WithLabelValues(label).Inc()
	return res
}

// GetDesignerSlotsForDate returns the effective bookable windows on a date.
func (s *DefaultAvailabilityService) GetDesignerSlotsForDate(ctx context.Context, designerID, date string) (*models.DaySlots, error) {
	day, err := time.Parse(utils.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidSchedule, date)
	}

	special, err := s.Repo.GetSpecialDay(ctx, designerID, date)
	if err != nil {
		return nil, err
	}
	out := &models.DaySlots{Date: date, Windows: []models.TimeWindow{}}
	if special != nil {
		out.IsOverride = true
		out.Available = special.IsAvailable
		out.Reason = special.Reason
		switch {
		case !special.IsAvailable:
		case special.HasWindow():
			out.Windows = append(out.Windows, models.TimeWindow{StartTime: special.StartTime, EndTime: special.EndTime})
		default:
			out.Windows = append(out.Windows, models.TimeWindow{StartTime: "00:00", EndTime: "24:00"})
		}
		return out, nil
	}

	slots, err := s.Repo.ListActiveSlotsForDay(ctx, designerID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		if slot.IsActive {
			out.Windows = append(out.Windows, models.TimeWindow{StartTime: slot.StartTime, EndTime: slot.EndTime})
		}
	}
	out.Available = len(out.Windows) > 0
	if !out.Available {
		out.Reason = ReasonNoSchedule
	}
	return out, nil
}

func (s *DefaultAvailabilityService) ReplaceWeeklySchedule(ctx context.Context, designerID string, req models.WeeklyScheduleRequest) ([]models.DesignerSlot, error) {
	slots := make([]models.DesignerSlot, 0, len(req.Slots))
	for i, in := range req.Slots {
		if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
			return nil, fmt.Errorf("%w: slot %d has day_of_week %d", ErrInvalidSchedule, i, in.DayOfWeek)
		}
		if err := validateWindow(in.StartTime, in.EndTime); err != nil {
			return nil, fmt.Errorf("%w: slot %d: %v", ErrInvalidSchedule, i, err)
		}
		active := true
		if in.IsActive != nil {
			active = *in.IsActive
		}
		slots = append(slots, models.DesignerSlot{
			ID:         uuid.New().String(),
			DesignerID: designerID,
			DayOfWeek:  in.DayOfWeek,
			StartTime:  in.StartTime,
			EndTime:    in.EndTime,
			IsActive:   active,
		})
	}
	if err := s.Repo.ReplaceSlots(ctx, designerID, slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *DefaultAvailabilityService) ListWeeklySchedule(ctx context.Context, designerID string) ([]models.DesignerSlot, error) {
	return s.Repo.ListSlots(ctx, designerID)
}

func (s *DefaultAvailabilityService) SetSpecialDay(ctx context.Context, designerID string, req models.SpecialDayRequest) (*models.DesignerSpecialDay, error) {
	if _, err := time.Parse(utils.DateLayout, req.Date); err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidSchedule, req.Date)
	}
	if (req.StartTime == "") != (req.EndTime == "") {
		return nil, fmt.Errorf("%w: start_time and end_time must be set together", ErrInvalidSchedule)
	}
	if req.StartTime != "" {
		if err := validateWindow(req.StartTime, req.EndTime); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
	}

	day := &models.DesignerSpecialDay{
		ID:          uuid.New().String(),
		DesignerID:  designerID,
		Date:        req.Date,
		IsAvailable: req.IsAvailable,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Reason:      req.Reason,
	}
	if err := s.Repo.UpsertSpecialDay(ctx, day); err != nil {
		return nil, err
	}
	// The upsert keeps the original id when the date already had an override.
	if stored, err := s.Repo.GetSpecialDay(ctx, designerID, req.Date); err == nil && stored != nil {
		return stored, nil
	}
	return day, nil
}

func (s *DefaultAvailabilityService) ListSpecialDays(ctx context.Context, designerID, fromDate string) ([]models.DesignerSpecialDay, error) {
	return s.Repo.ListSpecialDays(ctx, designerID, fromDate)
}

func (s *DefaultAvailabilityService) DeleteSpecialDay(ctx context.Context, designerID, id string) error {
	return s.Repo.DeleteSpecialDay(ctx, designerID, id)
}
