package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday names accepted in schedule configs, stored lowercase.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func ParseWeekday(s string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: invalid weekday %q", ErrValidation, s)
	}
	return day, nil
}

// ScheduleConfig is the per-operator recurring-reminder configuration.
// LastFiredOn (a calendar date in the reference timezone, "2006-01-02") is the
// claim token preventing the same day's reminder from firing twice.
type ScheduleConfig struct {
	OperatorID  string
	Enabled     bool
	Days        []string
	TimeOfDay   string
	Message     string
	ListIDs     []string
	LastFiredOn string
	UpdatedAt   time.Time
}

func (c *ScheduleConfig) Validate() error {
	if strings.TrimSpace(c.OperatorID) == "" {
		return fmt.Errorf("%w: operator id is required", ErrValidation)
	}
	seen := make(map[string]struct{}, len(c.Days))
	for _, day := range c.Days {
		if _, err := ParseWeekday(day); err != nil {
			return err
		}
		normalized := strings.ToLower(strings.TrimSpace(day))
		if _, ok := seen[normalized]; ok {
			return fmt.Errorf("%w: weekday %q appears twice", ErrValidation, day)
		}
		seen[normalized] = struct{}{}
	}
	if c.TimeOfDay != "" {
		if _, _, err := ParseTimeOfDay(c.TimeOfDay); err != nil {
			return err
		}
	}
	if !c.Enabled {
		return nil
	}
	if len(c.Days) == 0 {
		return fmt.Errorf("%w: enabled schedule requires at least one day", ErrValidation)
	}
	if c.TimeOfDay == "" {
		return fmt.Errorf("%w: enabled schedule requires a time of day", ErrValidation)
	}
	if strings.TrimSpace(c.Message) == "" {
		return fmt.Errorf("%w: enabled schedule requires a message", ErrValidation)
	}
	if len(c.ListIDs) == 0 {
		return fmt.Errorf("%w: enabled schedule requires at least one distribution list", ErrValidation)
	}
	return nil
}

// FiresOn reports whether the config is due at now in loc: enabled, today is
// a configured day, the configured time has passed, and today's reminder has
// not fired yet.
func (c *ScheduleConfig) FiresOn(now time.Time, loc *time.Location) bool {
	if !c.Enabled {
		return false
	}
	local := now.In(loc)
	today := local.Format(DateLayout)
	if c.LastFiredOn == today {
		return false
	}

	dayMatched := false
	for _, day := range c.Days {
		if parsed, err := ParseWeekday(day); err == nil && parsed == local.Weekday() {
			dayMatched = true
			break
		}
	}
	if !dayMatched {
		return false
	}

	hour, minute, err := ParseTimeOfDay(c.TimeOfDay)
	if err != nil {
		return false
	}
	return local.Hour()*60+local.Minute() >= hour*60+minute
}

// DateLayout is the calendar-date form used for reminder fire tracking.
const DateLayout = "2006-01-02"

// ParseTimeOfDay parses "HH:MM" (24h).
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: time of day must be HH:MM, got %q", ErrValidation, s)
	}
	hour, hourErr := strconv.Atoi(parts[0])
	minute, minuteErr := strconv.Atoi(parts[1])
	if hourErr != nil || minuteErr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: time of day must be HH:MM, got %q", ErrValidation, s)
	}
	return hour, minute, nil
}
