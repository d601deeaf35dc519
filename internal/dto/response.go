package dto

import (
	"time"

	"github.com/tablebook/reservation-service/internal/models"
)

type ReservationResponse struct {
	ID              uint                     `json:"id"`
	VenueID         uint                     `json:"venue_id"`
	TableID         uint                     `json:"table_id"`
	CustomerName    string                   `json:"customer_name"`
	CustomerEmail   string                   `json:"customer_email"`
	CustomerPhone   string                   `json:"customer_phone"`
	PartySize       int                      `json:"party_size"`
	BookingDate     string                   `json:"booking_date"`
	BookingTime     string                   `json:"booking_time"`
	DurationHours   float64                  `json:"duration_hours"`
	StartAt         time.Time                `json:"start_at"`
	EndAt           time.Time                `json:"end_at"`
	SpecialRequests string                   `json:"special_requests,omitempty"`
	Status          models.ReservationStatus `json:"status"`
	CreatedAt       time.Time                `json:"created_at"`
}

// TableSummary is the public view of a table: enough to pick one, nothing
// about the venue's internals.
type TableSummary struct {
	ID          uint   `json:"id"`
	TableNumber string `json:"table_number"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description,omitempty"`
}

type AvailabilityResponse struct {
	Available       bool           `json:"available"`
	AvailableTables []TableSummary `json:"available_tables"`
	Message         string         `json:"message"`
}

type StatusUpdateResponse struct {
	Updated int64  `json:"updated"`
	Status  string `json:"status"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		VenueID:         r.VenueID,
		TableID:         r.TableID,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		PartySize:       r.PartySize,
		BookingDate:     r.BookingDate.Format("2006-01-02"),
		BookingTime:     r.BookingTime,
		DurationHours:   r.DurationHours,
		StartAt:         r.StartAt(),
		EndAt:           r.EndAt(),
		SpecialRequests: r.SpecialRequests,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
	}
}

func ToTableSummary(t *models.Table) TableSummary {
	return TableSummary{
		ID:          t.ID,
		TableNumber: t.TableNumber,
		Capacity:    t.Capacity,
		Description: t.Description,
	}
}
