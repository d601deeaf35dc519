package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/tablebook/reservation-service/internal/dto"
	"github.com/tablebook/reservation-service/internal/models"
	"github.com/tablebook/reservation-service/internal/service"
	"gorm.io/gorm"
)

// --- Mock ReservationService ---

type mockReservationService struct {
	checkFn      func(ctx context.Context, venueID uint, details service.BookingDetails) (*service.AvailabilityResult, error)
	createFn     func(ctx context.Context, venueID, tableID uint, customer service.CustomerInfo, details service.BookingDetails) (*models.Reservation, error)
	cancelFn     func(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error)
	getFn        func(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error)
	listFn       func(ctx context.Context, venueID uint, filter models.ListFilter) ([]models.Reservation, error)
	bulkUpdateFn func(ctx context.Context, venueID uint, ids []uint, status models.ReservationStatus) (int64, error)
	venueStatsFn func(ctx context.Context, venueID uint) (*service.VenueStats, error)
}

func (m *mockReservationService) CheckAvailability(ctx context.Context, venueID uint, details service.BookingDetails) (*service.AvailabilityResult, error) {
	return m.checkFn(ctx, venueID, details)
}
func (m *mockReservationService) CreateReservation(ctx context.Context, venueID, tableID uint, customer service.CustomerInfo, details service.BookingDetails) (*models.Reservation, error) {
	return m.createFn(ctx, venueID, tableID, customer, details)
}
func (m *mockReservationService) CancelReservation(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error) {
	return m.cancelFn(ctx, reservationID, venueID)
}
func (m *mockReservationService) GetReservation(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error) {
	return m.getFn(ctx, reservationID, venueID)
}
func (m *mockReservationService) ListReservations(ctx context.Context, venueID uint, filter models.ListFilter) ([]models.Reservation, error) {
	return m.listFn(ctx, venueID, filter)
}
func (m *mockReservationService) UpdateReservationStatuses(ctx context.Context, venueID uint, ids []uint, status models.ReservationStatus) (int64, error) {
	return m.bulkUpdateFn(ctx, venueID, ids, status)
}
func (m *mockReservationService) GetVenueStats(ctx context.Context, venueID uint) (*service.VenueStats, error) {
	return m.venueStatsFn(ctx, venueID)
}

// --- Mock VenueRepository ---

type mockVenueRepo struct {
	findActiveFn func(ctx context.Context, qrCodeID uuid.UUID) (*models.Venue, error)
}

func (m *mockVenueRepo) FindByID(ctx context.Context, id uint) (*models.Venue, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockVenueRepo) FindActiveByQRCode(ctx context.Context, qrCodeID uuid.UUID) (*models.Venue, error) {
	return m.findActiveFn(ctx, qrCodeID)
}

// --- Fixtures ---

var testQRCode = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func knownVenueRepo() *mockVenueRepo {
	return &mockVenueRepo{
		findActiveFn: func(ctx context.Context, qrCodeID uuid.UUID) (*models.Venue, error) {
			if qrCodeID == testQRCode {
				return &models.Venue{ID: 7, Name: "La Tavola", QRCodeID: testQRCode, IsActive: true}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
}

func sampleReservation() *models.Reservation {
	return &models.Reservation{
		ID:            42,
		VenueID:       7,
		TableID:       3,
		CustomerName:  "John Doe",
		CustomerEmail: "john@example.com",
		CustomerPhone: "+1234567890",
		PartySize:     2,
		BookingDate:   time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC),
		BookingTime:   "19:00",
		DurationHours: 2.0,
		Status:        models.StatusConfirmed,
		CreatedAt:     time.Now(),
	}
}

func publicContext(e *echo.Echo, method, path, body, qrCode string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("qr_code_id")
	c.SetParamValues(qrCode)
	return c, rec
}

// --- Public surface ---

func TestCheckAvailability_Handler_Success(t *testing.T) {
	svc := &mockReservationService{
		checkFn: func(ctx context.Context, venueID uint, details service.BookingDetails) (*service.AvailabilityResult, error) {
			assert.Equal(t, uint(7), venueID)
			assert.Equal(t, "19:00", details.Time)
			return &service.AvailabilityResult{
				Available: true,
				Tables:    []models.Table{{ID: 3, TableNumber: "T3", Capacity: 4}},
				Message:   "1 tables available",
			}, nil
		},
	}

	e := echo.New()
	body := `{"booking_date":"2026-12-25","booking_time":"19:00","party_size":2}`
	c, rec := publicContext(e, http.MethodPost, "/api/v1/public/"+testQRCode.String()+"/availability", body, testQRCode.String())

	h := NewReservationHandler(svc, knownVenueRepo())
	err := h.CheckAvailability(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.AvailabilityResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Available)
	assert.Len(t, resp.AvailableTables, 1)
	assert.Equal(t, "T3", resp.AvailableTables[0].TableNumber)
}

func TestCheckAvailability_Handler_InvalidQRCode(t *testing.T) {
	e := echo.New()
	body := `{"booking_date":"2026-12-25","booking_time":"19:00","party_size":2}`
	c, _ := publicContext(e, http.MethodPost, "/api/v1/public/not-a-uuid/availability", body, "not-a-uuid")

	h := NewReservationHandler(nil, knownVenueRepo())
	err := h.CheckAvailability(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestCheckAvailability_Handler_UnknownVenue(t *testing.T) {
	other := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	e := echo.New()
	body := `{"booking_date":"2026-12-25","booking_time":"19:00","party_size":2}`
	c, _ := publicContext(e, http.MethodPost, "/api/v1/public/"+other.String()+"/availability", body, other.String())

	h := NewReservationHandler(nil, knownVenueRepo())
	err := h.CheckAvailability(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestCheckAvailability_Handler_BadDate(t *testing.T) {
	e := echo.New()
	body := `{"booking_date":"25/12/2026","booking_time":"19:00","party_size":2}`
	c, _ := publicContext(e, http.MethodPost, "/api/v1/public/"+testQRCode.String()+"/availability", body, testQRCode.String())

	h := NewReservationHandler(nil, knownVenueRepo())
	err := h.CheckAvailability(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestCreateReservation_Handler_Success(t *testing.T) {
	svc := &mockReservationService{
		createFn: func(ctx context.Context, venueID, tableID uint, customer service.CustomerInfo, details service.BookingDetails) (*models.Reservation, error) {
			assert.Equal(t, uint(7), venueID)
			assert.Equal(t, uint(3), tableID)
			assert.Equal(t, "John Doe", customer.Name)
			return sampleReservation(), nil
		},
	}

	e := echo.New()
	body := `{"customer_name":"John Doe","customer_email":"john@example.com","customer_phone":"+1234567890","table_id":3,"party_size":2,"booking_date":"2026-12-25","booking_time":"19:00","duration_hours":2.0}`
	c, rec := publicContext(e, http.MethodPost, "/api/v1/public/"+testQRCode.String()+"/reservations", body, testQRCode.String())

	h := NewReservationHandler(svc, knownVenueRepo())
	err := h.CreateReservation(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.ReservationResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(42), resp.ID)
	assert.Equal(t, models.StatusConfirmed, resp.Status)
	assert.Equal(t, "2026-12-25", resp.BookingDate)
	assert.Equal(t, "19:00", resp.BookingTime)
}

func TestCreateReservation_Handler_MissingTableID(t *testing.T) {
	e := echo.New()
	body := `{"customer_name":"John Doe","customer_email":"john@example.com","customer_phone":"+1234567890","party_size":2,"booking_date":"2026-12-25","booking_time":"19:00"}`
	c, _ := publicContext(e, http.MethodPost, "/api/v1/public/"+testQRCode.String()+"/reservations", body, testQRCode.String())

	h := NewReservationHandler(nil, knownVenueRepo())
	err := h.CreateReservation(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestCreateReservation_Handler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		svcErr   error
		wantCode int
	}{
		{"table not found", service.ErrTableNotFound, http.StatusNotFound},
		{"validation", service.ErrValidation, http.StatusBadRequest},
		{"capacity exceeded", service.ErrCapacityExceeded, http.StatusBadRequest},
		{"past booking", service.ErrPastBooking, http.StatusBadRequest},
		{"slot conflict", service.ErrSlotConflict, http.StatusConflict},
		{"unexpected", gorm.ErrInvalidDB, http.StatusInternalServerError},
	}

	body := `{"customer_name":"John Doe","customer_email":"john@example.com","customer_phone":"+1234567890","table_id":3,"party_size":2,"booking_date":"2026-12-25","booking_time":"19:00"}`

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReservationService{
				createFn: func(ctx context.Context, venueID, tableID uint, customer service.CustomerInfo, details service.BookingDetails) (*models.Reservation, error) {
					return nil, tt.svcErr
				},
			}

			e := echo.New()
			c, _ := publicContext(e, http.MethodPost, "/api/v1/public/"+testQRCode.String()+"/reservations", body, testQRCode.String())

			h := NewReservationHandler(svc, knownVenueRepo())
			err := h.CreateReservation(c)

			he, ok := err.(*echo.HTTPError)
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, he.Code)
		})
	}
}

// --- Venue dashboard ---

func venueContext(e *echo.Echo, method, path string, body string, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func TestListReservations_Handler_Success(t *testing.T) {
	svc := &mockReservationService{
		listFn: func(ctx context.Context, venueID uint, filter models.ListFilter) ([]models.Reservation, error) {
			assert.Equal(t, uint(7), venueID)
			assert.Equal(t, models.FilterUpcoming, filter)
			return []models.Reservation{*sampleReservation()}, nil
		},
	}

	e := echo.New()
	c, rec := venueContext(e, http.MethodGet, "/api/v1/venues/7/reservations?filter=upcoming", "",
		map[string]string{"venue_id": "7"})

	h := NewReservationHandler(svc, nil)
	err := h.ListReservations(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.ReservationResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, uint(42), resp[0].ID)
}

func TestListReservations_Handler_UnknownFilter(t *testing.T) {
	svc := &mockReservationService{
		listFn: func(ctx context.Context, venueID uint, filter models.ListFilter) ([]models.Reservation, error) {
			return nil, service.ErrValidation
		},
	}

	e := echo.New()
	c, _ := venueContext(e, http.MethodGet, "/api/v1/venues/7/reservations?filter=tomorrow", "",
		map[string]string{"venue_id": "7"})

	h := NewReservationHandler(svc, nil)
	err := h.ListReservations(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestListReservations_Handler_InvalidVenueID(t *testing.T) {
	e := echo.New()
	c, _ := venueContext(e, http.MethodGet, "/api/v1/venues/abc/reservations", "",
		map[string]string{"venue_id": "abc"})

	h := NewReservationHandler(nil, nil)
	err := h.ListReservations(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetReservation_Handler_NotFound(t *testing.T) {
	svc := &mockReservationService{
		getFn: func(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error) {
			return nil, service.ErrReservationNotFound
		},
	}

	e := echo.New()
	c, _ := venueContext(e, http.MethodGet, "/api/v1/venues/7/reservations/999", "",
		map[string]string{"venue_id": "7", "id": "999"})

	h := NewReservationHandler(svc, nil)
	err := h.GetReservation(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestCancelReservation_Handler_Success(t *testing.T) {
	svc := &mockReservationService{
		cancelFn: func(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error) {
			assert.Equal(t, uint(42), reservationID)
			assert.Equal(t, uint(7), venueID)
			r := sampleReservation()
			r.Status = models.StatusCancelled
			return r, nil
		},
	}

	e := echo.New()
	c, rec := venueContext(e, http.MethodDelete, "/api/v1/venues/7/reservations/42", "",
		map[string]string{"venue_id": "7", "id": "42"})

	h := NewReservationHandler(svc, nil)
	err := h.CancelReservation(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ReservationResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusCancelled, resp.Status)
}

func TestCancelReservation_Handler_WindowElapsed(t *testing.T) {
	svc := &mockReservationService{
		cancelFn: func(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error) {
			return nil, service.ErrCannotCancel
		},
	}

	e := echo.New()
	c, _ := venueContext(e, http.MethodDelete, "/api/v1/venues/7/reservations/42", "",
		map[string]string{"venue_id": "7", "id": "42"})

	h := NewReservationHandler(svc, nil)
	err := h.CancelReservation(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestCancelReservation_Handler_NotFound(t *testing.T) {
	svc := &mockReservationService{
		cancelFn: func(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error) {
			return nil, service.ErrReservationNotFound
		},
	}

	e := echo.New()
	c, _ := venueContext(e, http.MethodDelete, "/api/v1/venues/7/reservations/999", "",
		map[string]string{"venue_id": "7", "id": "999"})

	h := NewReservationHandler(svc, nil)
	err := h.CancelReservation(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestUpdateStatuses_Handler_Success(t *testing.T) {
	svc := &mockReservationService{
		bulkUpdateFn: func(ctx context.Context, venueID uint, ids []uint, status models.ReservationStatus) (int64, error) {
			assert.Equal(t, []uint{1, 2, 3}, ids)
			assert.Equal(t, models.StatusCompleted, status)
			return 3, nil
		},
	}

	e := echo.New()
	body := `{"reservation_ids":[1,2,3],"status":"completed"}`
	c, rec := venueContext(e, http.MethodPatch, "/api/v1/venues/7/reservations/status", body,
		map[string]string{"venue_id": "7"})

	h := NewReservationHandler(svc, nil)
	err := h.UpdateStatuses(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.StatusUpdateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Updated)
	assert.Equal(t, "completed", resp.Status)
}

func TestUpdateStatuses_Handler_BadStatus(t *testing.T) {
	svc := &mockReservationService{
		bulkUpdateFn: func(ctx context.Context, venueID uint, ids []uint, status models.ReservationStatus) (int64, error) {
			return 0, service.ErrValidation
		},
	}

	e := echo.New()
	body := `{"reservation_ids":[1],"status":"seated"}`
	c, _ := venueContext(e, http.MethodPatch, "/api/v1/venues/7/reservations/status", body,
		map[string]string{"venue_id": "7"})

	h := NewReservationHandler(svc, nil)
	err := h.UpdateStatuses(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetStats_Handler_Success(t *testing.T) {
	svc := &mockReservationService{
		venueStatsFn: func(ctx context.Context, venueID uint) (*service.VenueStats, error) {
			return &service.VenueStats{
				TotalReservations:     10,
				TodayReservations:     3,
				UpcomingReservations:  5,
				CancelledReservations: 2,
			}, nil
		},
	}

	e := echo.New()
	c, rec := venueContext(e, http.MethodGet, "/api/v1/venues/7/reservations/stats", "",
		map[string]string{"venue_id": "7"})

	h := NewReservationHandler(svc, nil)
	err := h.GetStats(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp service.VenueStats
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp.TotalReservations)
	assert.Equal(t, int64(5), resp.UpcomingReservations)
}
