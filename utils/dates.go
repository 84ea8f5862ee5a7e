// utils/dates.go
package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidClock = errors.New("time must be HH:MM")

var wallClockLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// TruncateToHour zeroes minutes and below of t's UTC reading. Stored
// wall-clock values are UTC, so the hour survives whatever zone t arrived in.
func TruncateToHour(t time.Time) time.Time {
	t = t.UTC()
	year, month, day := t.Date()
	return time.Date(year, month, day, t.Hour(), 0, 0, 0, time.UTC)
}

// DayRange returns the half-open [start, end) bounds of t's calendar day.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := BeginningOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// MonthRange returns the half-open [start, end) bounds of a calendar month in UTC.
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// AsWallClock re-labels t's clock reading as UTC without converting it.
func AsWallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ParseWallClock reads a date-time and keeps the written clock reading; any
// offset in the input is discarded.
func ParseWallClock(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range wallClockLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return AsWallClock(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q", value)
}

func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// ParseClock converts "HH:MM" to minutes since midnight. "24:00" is accepted as end of day.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, ErrInvalidClock
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, ErrInvalidClock
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, ErrInvalidClock
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
