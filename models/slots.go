package models

// DesignerSlot is one recurring weekly window. DayOfWeek follows time.Weekday (Sunday=0).
type DesignerSlot struct {
	ID         string `bson:"id" json:"id"`
	DesignerID string `bson:"designer_id" json:"designer_id"`
	DayOfWeek  int    `bson:"day_of_week" json:"day_of_week"`
	StartTime  string `bson:"start_time" json:"start_time"` // HH:MM or HH:MM:SS
	EndTime    string `bson:"end_time" json:"end_time"`
	IsActive   bool   `bson:"is_active" json:"is_active"`
}

// DesignerSpecialDay overrides the weekly schedule for one date.
type DesignerSpecialDay struct {
	ID          string `bson:"id" json:"id"`
	DesignerID  string `bson:"designer_id" json:"designer_id"`
	Date        string `bson:"date" json:"date"` // YYYY-MM-DD
	IsAvailable bool   `bson:"is_available" json:"is_available"`
	StartTime   string `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime     string `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Reason      string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// HasWindow reports whether the override restricts the day to a time range.
func (d DesignerSpecialDay) HasWindow() bool {
	return d.StartTime != "" && d.EndTime != ""
}

// SlotInput is one weekly window in a schedule update. IsActive defaults to true.
type SlotInput struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	IsActive  *bool  `json:"is_active"`
}

// WeeklyScheduleRequest replaces a designer's recurring schedule.
type WeeklyScheduleRequest struct {
	Slots []SlotInput `json:"slots"`
}

// SpecialDayRequest creates or replaces the override for one date.
type SpecialDayRequest struct {
	Date        string `json:"date" binding:"required"`
	IsAvailable bool   `json:"is_available"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Reason      string `json:"reason"`
}

// AvailabilityResult is the verdict of an availability check.
type AvailabilityResult struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// TimeWindow is an effective bookable range on a specific date.
type TimeWindow struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// DaySlots is the effective schedule for one date.
type DaySlots struct {
	Date       string       `json:"date"`
	IsOverride bool         `json:"is_override"`
	Available  bool         `json:"available"`
	Reason     string       `json:"reason,omitempty"`
	Windows    []TimeWindow `json:"windows"`
}
