// Package timeutil handles the date/time arithmetic the engine is built on:
// "HH:MM" parsing, slot keys, and cross-midnight range resolution.
package timeutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
)

const (
	// MinutesPerDay is the length of one calendar day in minutes
	MinutesPerDay = 24 * 60

	// DateKeyLayout is the calendar date format used throughout the engine
	DateKeyLayout = "2006-01-02"

	// FallbackClosingTime is used when neither a weekday override nor a
	// week-level closing time is configured
	FallbackClosingTime = "22:00"
)

// ParseTimeToMinutes parses "HH:MM" into minutes since midnight.
// Only 00:00 through 23:59 are valid; all four positions must be digits.
func ParseTimeToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
		}
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	if hh > 23 || mm > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return hh*60 + mm, nil
}

// FormatMinutes renders minutes-since-midnight as "HH:MM", wrapping values
// past midnight back into a time of day.
func FormatMinutes(min int) string {
	min = ((min % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// ParseDateKey parses a "2006-01-02" date key
func ParseDateKey(dateKey string) (time.Time, error) {
	t, err := time.Parse(DateKeyLayout, dateKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", dateKey, err)
	}
	return t, nil
}

// AddDays shifts a date key by n calendar days
func AddDays(dateKey string, n int) (string, error) {
	t, err := ParseDateKey(dateKey)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateKeyLayout), nil
}

// WeekdayName returns the lowercase English weekday name of a date key
func WeekdayName(dateKey string) (string, error) {
	t, err := ParseDateKey(dateKey)
	if err != nil {
		return "", err
	}
	return strings.ToLower(t.Weekday().String()), nil
}

// SlotKey builds the capacity slot identifier for a bucket boundary. Minute
// offsets at or past midnight roll into the following date.
func SlotKey(dateKey string, min int) string {
	for min >= MinutesPerDay {
		next, err := AddDays(dateKey, 1)
		if err != nil {
			break
		}
		dateKey = next
		min -= MinutesPerDay
	}
	return dateKey + "T" + FormatMinutes(min)
}

// ClosingMinutes resolves the effective closing instant for a date: the
// weekday override if present, else the week-level closing time, else
// FallbackClosingTime, plus the configured closing offset (cleanup time).
func ClosingMinutes(dateKey string, settings model.ScheduleSettings) (int, error) {
	closing := settings.ClosingTime
	if weekday, err := WeekdayName(dateKey); err == nil {
		if override, ok := settings.WeekdayOverrides[weekday]; ok && override.ClosingTime != "" {
			closing = override.ClosingTime
		}
	}
	if closing == "" {
		closing = FallbackClosingTime
	}
	min, err := ParseTimeToMinutes(closing)
	if err != nil {
		return 0, err
	}
	return min + settings.ClosingOffsetMinutes, nil
}

// ResolveShiftRange resolves a shift to an absolute minute range on its date.
// The second return is false when the shift has no parseable start or no
// resolvable end; such shifts contribute nothing rather than erroring.
// Whenever a computed end is at or before its start it is rolled to the next
// calendar day, which handles venues that close after midnight.
func ResolveShiftRange(shift model.Shift, settings model.ScheduleSettings) (model.ShiftRange, bool) {
	start, err := ParseTimeToMinutes(shift.StartTime)
	if err != nil {
		return model.ShiftRange{}, false
	}

	var end int
	if shift.EndTime != "" {
		end, err = ParseTimeToMinutes(shift.EndTime)
		if err != nil {
			return model.ShiftRange{}, false
		}
	} else {
		end, err = ClosingMinutes(shift.DateKey, settings)
		if err != nil {
			return model.ShiftRange{}, false
		}
	}
	if end <= start {
		end += MinutesPerDay
	}

	position := shift.PositionID
	if position == "" {
		position = model.PositionUnknown
	}

	return model.ShiftRange{
		ShiftID:  shift.ID,
		UserID:   shift.UserID,
		DateKey:  shift.DateKey,
		Position: position,
		StartMin: start,
		EndMin:   end,
	}, true
}

// NormalizeBucketMinutes floors fractional bucket sizes and falls back to the
// default for non-positive input.
func NormalizeBucketMinutes(raw float64) int {
	const defaultBucket = 60
	bucket := int(raw)
	if bucket <= 0 {
		return defaultBucket
	}
	return bucket
}
