package availability

import (
	"fmt"
	"strings"
	"time"
)

// parseClock converts "HH:MM" or "HH:MM:SS" into seconds since midnight.
// "24:00" is accepted as the end of the day.
func parseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" || s == "24:00:00" {
		return 24 * 3600, nil
	}
	layout := "15:04"
	if len(s) == len("15:04:05") {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil || len(s) != len(layout) {
		return 0, fmt.Errorf("invalid time %q, want HH:MM or HH:MM:SS", s)
	}
	return secondOfDay(t), nil
}

// secondOfDay returns the time-of-day of t in its own location.
func secondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// shortClock renders a stored time as HH:MM for reason strings.
func shortClock(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

// within reports whether tod falls in [start, end).
func within(tod int, start, end string) (bool, error) {
	from, err := parseClock(start)
	if err != nil {
		return false, err
	}
	to, err := parseClock(end)
	if err != nil {
		return false, err
	}
	return tod >= from && tod < to, nil
}

func validateWindow(start, end string) error {
	from, err := parseClock(start)
	if err != nil {
		return err
	}
	to, err := parseClock(end)
	if err != nil {
		return err
	}
	if from >= to {
		return fmt.Errorf("start time %s must be before end time %s", start, end)
	}
	return nil
}
