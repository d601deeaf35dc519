package models

import (
	"fmt"
	"time"
)

// TimeOfDayLayout is the wire and storage format for a reservation's
// time-of-day.
const TimeOfDayLayout = "15:04"

// Interval is a half-open time range [Start, End). End equals Start for a
// zero-duration interval, which can never overlap anything.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval combines a calendar date, a time-of-day ("15:04") and a duration
// in hours into a concrete interval. All instants are UTC.
func NewInterval(date time.Time, timeOfDay string, durationHours float64) (Interval, error) {
	tod, err := time.Parse(TimeOfDayLayout, timeOfDay)
	if err != nil {
		return Interval{}, fmt.Errorf("parse time of day %q: %w", timeOfDay, err)
	}
	if durationHours < 0 {
		return Interval{}, fmt.Errorf("negative duration: %v", durationHours)
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC)
	end := start.Add(time.Duration(durationHours * float64(time.Hour)))
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two intervals share at least one instant.
// The comparison is strict on both sides, so an interval ending exactly when
// another begins does not overlap it. An empty interval contains no instants
// and overlaps nothing, even when it sits inside the other interval.
func (iv Interval) Overlaps(other Interval) bool {
	if !iv.Start.Before(iv.End) || !other.Start.Before(other.End) {
		return false
	}
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}
