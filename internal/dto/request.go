package dto

// AvailabilityRequest is the public availability preview payload. Dates are
// "2006-01-02", times "15:04"; a zero duration falls back to the default.
type AvailabilityRequest struct {
	BookingDate   string  `json:"booking_date"`
	BookingTime   string  `json:"booking_time"`
	PartySize     int     `json:"party_size"`
	DurationHours float64 `json:"duration_hours"`
}

type CreateReservationRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	TableID         uint    `json:"table_id"`
	PartySize       int     `json:"party_size"`
	BookingDate     string  `json:"booking_date"`
	BookingTime     string  `json:"booking_time"`
	DurationHours   float64 `json:"duration_hours"`
	SpecialRequests string  `json:"special_requests"`
}

// UpdateStatusRequest is the bulk administrative override payload.
type UpdateStatusRequest struct {
	ReservationIDs []uint `json:"reservation_ids"`
	Status         string `json:"status"`
}
