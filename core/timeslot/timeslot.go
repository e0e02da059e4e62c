// Package timeslot converts "HH:MM" wall clock times to comparable minute
// offsets and tests half-open interval overlap.
package timeslot

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidTime = errors.New("time must be in HH:MM format")

	timeRegex = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

	dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
)

// Minutes converts an "HH:MM" time to its offset in minutes from midnight.
func Minutes(t string) (int, error) {
	if !timeRegex.MatchString(t) {
		return 0, ErrInvalidTime
	}
	var h, m int
	if _, err := fmt.Sscanf(t, "%d:%d", &h, &m); err != nil {
		return 0, ErrInvalidTime
	}
	return h*60 + m, nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// DayName returns the English name of a 0-indexed day of week (0 = Sunday).
func DayName(day int) string {
	if day < 0 || day > 6 {
		return fmt.Sprintf("day %d", day)
	}
	return dayNames[day]
}

// Range formats a start/end pair for display in conflict messages.
func Range(start, end string) string {
	return start + " - " + end
}
