package models

import "time"

// ListFilter selects a dashboard view over a venue's reservations.
type ListFilter string

const (
	FilterAll       ListFilter = "all"
	FilterToday     ListFilter = "today"
	FilterUpcoming  ListFilter = "upcoming"
	FilterPast      ListFilter = "past"
	FilterCancelled ListFilter = "cancelled"
)

func (f ListFilter) Valid() bool {
	switch f {
	case FilterAll, FilterToday, FilterUpcoming, FilterPast, FilterCancelled:
		return true
	}
	return false
}

// DateOnly truncates an instant to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TimeOfDay renders an instant's UTC time-of-day at the same minute precision
// as stored booking times, so lexicographic comparison of the two strings
// matches instant comparison of the truncated instants.
func TimeOfDay(t time.Time) string {
	return t.UTC().Format(TimeOfDayLayout)
}

// StartedBefore is the row-level "past" predicate: the reservation's date is
// before now's date, or it is today with a start time already gone by. It is
// the same condition the repository expresses in SQL and is equivalent to
// comparing the start instant against now truncated to the minute.
func (r *Reservation) StartedBefore(now time.Time) bool {
	date := DateOnly(r.BookingDate)
	today := DateOnly(now)
	if date.Before(today) {
		return true
	}
	return date.Equal(today) && r.BookingTime < TimeOfDay(now)
}
