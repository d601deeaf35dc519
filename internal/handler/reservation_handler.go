package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/tablebook/reservation-service/internal/dto"
	"github.com/tablebook/reservation-service/internal/models"
	"github.com/tablebook/reservation-service/internal/repository"
	"github.com/tablebook/reservation-service/internal/service"
	"gorm.io/gorm"
)

type ReservationHandler struct {
	svc       service.ReservationService
	venueRepo repository.VenueRepository
}

func NewReservationHandler(svc service.ReservationService, venueRepo repository.VenueRepository) *ReservationHandler {
	return &ReservationHandler{svc: svc, venueRepo: venueRepo}
}

// RegisterRoutes wires both surfaces: the public QR-scoped booking endpoints
// and the venue dashboard. public may carry rate-limiting middleware.
func (h *ReservationHandler) RegisterRoutes(e *echo.Echo, public ...echo.MiddlewareFunc) {
	pub := e.Group("/api/v1/public/:qr_code_id", public...)
	pub.POST("/availability", h.CheckAvailability)
	pub.POST("/reservations", h.CreateReservation)

	venues := e.Group("/api/v1/venues/:venue_id")
	venues.GET("/reservations", h.ListReservations)
	venues.GET("/reservations/stats", h.GetStats)
	venues.GET("/reservations/:id", h.GetReservation)
	venues.DELETE("/reservations/:id", h.CancelReservation)
	venues.PATCH("/reservations/status", h.UpdateStatuses)
}

func (h *ReservationHandler) resolveVenue(c echo.Context) (*models.Venue, error) {
	qrCodeID, err := uuid.Parse(c.Param("qr_code_id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid booking code")
	}
	venue, err := h.venueRepo.FindActiveByQRCode(c.Request().Context(), qrCodeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "venue not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return venue, nil
}

func parseBookingDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.UTC)
}

func (h *ReservationHandler) CheckAvailability(c echo.Context) error {
	venue, err := h.resolveVenue(c)
	if err != nil {
		return err
	}

	var req dto.AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	date, err := parseBookingDate(req.BookingDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "booking_date must be YYYY-MM-DD")
	}

	result, err := h.svc.CheckAvailability(c.Request().Context(), venue.ID, service.BookingDetails{
		Date:          date,
		Time:          req.BookingTime,
		PartySize:     req.PartySize,
		DurationHours: req.DurationHours,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	tables := make([]dto.TableSummary, len(result.Tables))
	for i := range result.Tables {
		tables[i] = dto.ToTableSummary(&result.Tables[i])
	}

	return c.JSON(http.StatusOK, dto.AvailabilityResponse{
		Available:       result.Available,
		AvailableTables: tables,
		Message:         result.Message,
	})
}

func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	venue, err := h.resolveVenue(c)
	if err != nil {
		return err
	}

	var req dto.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.TableID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "table_id is required")
	}

	date, err := parseBookingDate(req.BookingDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "booking_date must be YYYY-MM-DD")
	}

	reservation, err := h.svc.CreateReservation(c.Request().Context(), venue.ID, req.TableID,
		service.CustomerInfo{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
		service.BookingDetails{
			Date:            date,
			Time:            req.BookingTime,
			PartySize:       req.PartySize,
			DurationHours:   req.DurationHours,
			SpecialRequests: req.SpecialRequests,
		})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTableNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrValidation),
			errors.Is(err, service.ErrCapacityExceeded),
			errors.Is(err, service.ErrPastBooking):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSlotConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) venueID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("venue_id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid venue id")
	}
	return uint(id), nil
}

func (h *ReservationHandler) ListReservations(c echo.Context) error {
	venueID, err := h.venueID(c)
	if err != nil {
		return err
	}

	filter := models.ListFilter(c.QueryParam("filter"))
	reservations, err := h.svc.ListReservations(c.Request().Context(), venueID, filter)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.ReservationResponse, len(reservations))
	for i := range reservations {
		resp[i] = dto.ToReservationResponse(&reservations[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) GetStats(c echo.Context) error {
	venueID, err := h.venueID(c)
	if err != nil {
		return err
	}

	stats, err := h.svc.GetVenueStats(c.Request().Context(), venueID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	venueID, err := h.venueID(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reservation id")
	}

	reservation, err := h.svc.GetReservation(c.Request().Context(), uint(id), venueID)
	if err != nil {
		if errors.Is(err, service.ErrReservationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	venueID, err := h.venueID(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reservation id")
	}

	reservation, err := h.svc.CancelReservation(c.Request().Context(), uint(id), venueID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCannotCancel):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) UpdateStatuses(c echo.Context) error {
	venueID, err := h.venueID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	updated, err := h.svc.UpdateReservationStatuses(c.Request().Context(), venueID,
		req.ReservationIDs, models.ReservationStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.StatusUpdateResponse{Updated: updated, Status: req.Status})
}
