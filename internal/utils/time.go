package utils

import (
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date in UTC. An empty string
// yields the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, value)
}

// SameOrAfterDay compares t and day by calendar date only.
func SameOrAfterDay(t, day time.Time) bool {
	return !DateOnly(t).Before(DateOnly(day))
}

func SameOrBeforeDay(t, day time.Time) bool {
	return !DateOnly(t).After(DateOnly(day))
}

func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
