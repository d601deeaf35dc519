package models

import "time"

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
	StatusNoShow    ReservationStatus = "no_show"
)

// statusTransitions is the closed transition table of the reservation state
// machine. cancelled, completed and no_show are terminal; nothing ever
// re-enters pending.
var statusTransitions = map[ReservationStatus]map[ReservationStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
		StatusCompleted: true,
		StatusNoShow:    true,
	},
	StatusConfirmed: {
		StatusCancelled: true,
		StatusCompleted: true,
		StatusNoShow:    true,
	},
}

// CanTransitionTo reports whether the state machine defines a transition from
// s to target. Time-based guards (cancel only before the slot has elapsed)
// live on Reservation, not here.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	return statusTransitions[s][target]
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

type Reservation struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	VenueID uint `gorm:"not null;index:idx_reservations_venue_date,priority:1" json:"venue_id"`
	TableID uint `gorm:"not null" json:"table_id"`

	CustomerName  string `gorm:"size:200;not null" json:"customer_name"`
	CustomerEmail string `gorm:"size:254;not null" json:"customer_email"`
	CustomerPhone string `gorm:"size:20;not null" json:"customer_phone"`

	PartySize       int       `gorm:"not null" json:"party_size"`
	BookingDate     time.Time `gorm:"type:date;not null;index:idx_reservations_venue_date,priority:2" json:"booking_date"`
	BookingTime     string    `gorm:"type:varchar(5);not null" json:"booking_time"`
	DurationHours   float64   `gorm:"type:decimal(3,1);not null;default:2.0" json:"duration_hours"`
	SpecialRequests string    `gorm:"size:500" json:"special_requests,omitempty"`

	Status ReservationStatus `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Table *Table `gorm:"foreignKey:TableID" json:"table,omitempty"`
}

// Slot returns the reserved interval derived from date, time-of-day and
// duration.
func (r *Reservation) Slot() (Interval, error) {
	return NewInterval(r.BookingDate, r.BookingTime, r.DurationHours)
}

func (r *Reservation) StartAt() time.Time {
	iv, err := r.Slot()
	if err != nil {
		return time.Time{}
	}
	return iv.Start
}

func (r *Reservation) EndAt() time.Time {
	iv, err := r.Slot()
	if err != nil {
		return time.Time{}
	}
	return iv.End
}

// IsPast reports whether the reservation's service window has fully elapsed.
func (r *Reservation) IsPast(now time.Time) bool {
	return r.EndAt().Before(now)
}

func (r *Reservation) IsToday(now time.Time) bool {
	y1, m1, d1 := r.BookingDate.Date()
	y2, m2, d2 := now.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (r *Reservation) IsUpcoming(now time.Time) bool {
	return r.StartAt().After(now)
}

// CanCancel reports whether a cancellation is still allowed: only pending or
// confirmed reservations whose end instant has not yet elapsed.
func (r *Reservation) CanCancel(now time.Time) bool {
	return r.Status.CanTransitionTo(StatusCancelled) && !r.IsPast(now)
}

// Cancel moves the reservation to cancelled if allowed. It mutates the status
// and returns true, or leaves the reservation untouched and returns false.
func (r *Reservation) Cancel(now time.Time) bool {
	if !r.CanCancel(now) {
		return false
	}
	r.Status = StatusCancelled
	return true
}

// Confirm moves a pending reservation to confirmed.
func (r *Reservation) Confirm() bool {
	if !r.Status.CanTransitionTo(StatusConfirmed) {
		return false
	}
	r.Status = StatusConfirmed
	return true
}

// MarkCompleted is the administrative override applied after the fact; it is
// not time-gated.
func (r *Reservation) MarkCompleted() bool {
	if !r.Status.CanTransitionTo(StatusCompleted) {
		return false
	}
	r.Status = StatusCompleted
	return true
}

// MarkNoShow records that the party never arrived.
func (r *Reservation) MarkNoShow() bool {
	if !r.Status.CanTransitionTo(StatusNoShow) {
		return false
	}
	r.Status = StatusNoShow
	return true
}
