package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tablebook/reservation-service/internal/models"
	"github.com/tablebook/reservation-service/internal/repository"
	"github.com/tablebook/reservation-service/pkg/rabbitmq"
	"gorm.io/gorm"
)

var (
	ErrTableNotFound       = errors.New("table not found or not available")
	ErrCapacityExceeded    = errors.New("table capacity exceeded")
	ErrSlotConflict        = errors.New("time slot unavailable")
	ErrPastBooking         = errors.New("cannot book in the past")
	ErrValidation          = errors.New("invalid booking request")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrCannotCancel        = errors.New("reservation cannot be cancelled")
)

const (
	MinDurationHours     = 0.5
	MaxDurationHours     = 8.0
	DefaultDurationHours = 2.0
	MaxPartySize         = 50
)

// CustomerInfo is the guest contact block; the engine treats it as opaque.
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

// BookingDetails carries the requested slot. Time is a "15:04" time-of-day,
// duration is in hours.
type BookingDetails struct {
	Date            time.Time
	Time            string
	PartySize       int
	DurationHours   float64
	SpecialRequests string
}

// AvailabilityResult is the advisory preview: the tables that were free when
// the scan ran. It is not a reservation of intent and may be stale by the
// time the caller commits.
type AvailabilityResult struct {
	Available bool
	Tables    []models.Table
	Message   string
}

type VenueStats struct {
	TotalReservations     int64 `json:"total_reservations"`
	TodayReservations     int64 `json:"today_reservations"`
	UpcomingReservations  int64 `json:"upcoming_reservations"`
	CancelledReservations int64 `json:"cancelled_reservations"`
}

type ReservationService interface {
	CheckAvailability(ctx context.Context, venueID uint, details BookingDetails) (*AvailabilityResult, error)
	CreateReservation(ctx context.Context, venueID, tableID uint, customer CustomerInfo, details BookingDetails) (*models.Reservation, error)
	CancelReservation(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error)
	GetReservation(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error)
	ListReservations(ctx context.Context, venueID uint, filter models.ListFilter) ([]models.Reservation, error)
	UpdateReservationStatuses(ctx context.Context, venueID uint, ids []uint, status models.ReservationStatus) (int64, error)
	GetVenueStats(ctx context.Context, venueID uint) (*VenueStats, error)
}

type reservationService struct {
	reservationRepo repository.ReservationRepository
	tableRepo       repository.TableRepository
	publisher       *rabbitmq.Publisher
	now             func() time.Time
}

func NewReservationService(reservationRepo repository.ReservationRepository, tableRepo repository.TableRepository, publisher *rabbitmq.Publisher) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		tableRepo:       tableRepo,
		publisher:       publisher,
		now:             time.Now,
	}
}

func validateDetails(details *BookingDetails) error {
	if details.PartySize < 1 {
		return fmt.Errorf("%w: party size must be at least 1", ErrValidation)
	}
	if details.PartySize > MaxPartySize {
		return fmt.Errorf("%w: party size too large", ErrValidation)
	}
	if details.DurationHours == 0 {
		details.DurationHours = DefaultDurationHours
	}
	if details.DurationHours < MinDurationHours || details.DurationHours > MaxDurationHours {
		return fmt.Errorf("%w: duration must be between %.1f and %.1f hours", ErrValidation, MinDurationHours, MaxDurationHours)
	}
	if _, err := models.NewInterval(details.Date, details.Time, details.DurationHours); err != nil {
		return fmt.Errorf("%w: booking time must be in HH:MM format", ErrValidation)
	}
	return nil
}

func validateCustomer(customer CustomerInfo) error {
	if customer.Name == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if customer.Email == "" {
		return fmt.Errorf("%w: customer email is required", ErrValidation)
	}
	if customer.Phone == "" {
		return fmt.Errorf("%w: customer phone is required", ErrValidation)
	}
	return nil
}

// checkTableAvailability scans the table's confirmed reservations for the
// requested date and tests each against the requested interval. tx must be
// the committer's transaction when called under the table lock; the preview
// path passes the plain DB.
func (s *reservationService) checkTableAvailability(ctx context.Context, tx *gorm.DB, tableID uint, details BookingDetails) (bool, string, error) {
	requested, err := models.NewInterval(details.Date, details.Time, details.DurationHours)
	if err != nil {
		return false, "", err
	}

	existing, err := s.reservationRepo.FindConfirmedByTableAndDate(ctx, tx, tableID, details.Date)
	if err != nil {
		return false, "", err
	}

	for i := range existing {
		slot, err := existing[i].Slot()
		if err != nil {
			return false, "", err
		}
		if slot.Overlaps(requested) {
			msg := fmt.Sprintf("table is already booked from %s to %s",
				slot.Start.Format("03:04 PM"), slot.End.Format("03:04 PM"))
			return false, msg, nil
		}
	}

	return true, "table is available", nil
}

// CheckAvailability is the read-only preview: active tables seating the party,
// narrowed to those with no conflicting confirmed reservation. It takes no
// lock and is explicitly racy; CreateReservation re-validates.
func (s *reservationService) CheckAvailability(ctx context.Context, venueID uint, details BookingDetails) (*AvailabilityResult, error) {
	if err := validateDetails(&details); err != nil {
		return nil, err
	}

	candidates, err := s.tableRepo.FindEligible(ctx, venueID, details.PartySize)
	if err != nil {
		return nil, fmt.Errorf("find eligible tables: %w", err)
	}

	available := make([]models.Table, 0, len(candidates))
	for _, table := range candidates {
		free, _, err := s.checkTableAvailability(ctx, s.reservationRepo.GetDB(), table.ID, details)
		if err != nil {
			return nil, fmt.Errorf("check table %d: %w", table.ID, err)
		}
		if free {
			available = append(available, table)
		}
	}

	result := &AvailabilityResult{
		Available: len(available) > 0,
		Tables:    available,
	}
	if result.Available {
		result.Message = fmt.Sprintf("%d tables available", len(available))
	} else {
		result.Message = "no tables available for this time slot"
	}
	return result, nil
}

// CreateReservation is the sole write path for new reservations. It locks the
// target table row, re-validates capacity, availability and the non-past rule
// under that lock, and inserts the reservation as confirmed — all in one
// transaction, so a failed attempt leaves nothing behind. Two concurrent
// attempts on the same table serialize on the row lock; the loser re-scans
// and sees the winner's row.
func (s *reservationService) CreateReservation(ctx context.Context, venueID, tableID uint, customer CustomerInfo, details BookingDetails) (*models.Reservation, error) {
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}
	if err := validateDetails(&details); err != nil {
		return nil, err
	}

	var result *models.Reservation

	err := s.reservationRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the table row — serializes concurrent attempts on this table
		table, err := s.tableRepo.FindActiveByIDForUpdate(ctx, tx, venueID, tableID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}

		// 2. Capacity
		if details.PartySize > table.Capacity {
			return fmt.Errorf("%w: table capacity is %d, but party size is %d",
				ErrCapacityExceeded, table.Capacity, details.PartySize)
		}

		// 3. Availability, re-checked while holding the lock
		free, reason, err := s.checkTableAvailability(ctx, tx, table.ID, details)
		if err != nil {
			return err
		}
		if !free {
			return fmt.Errorf("%w: %s", ErrSlotConflict, reason)
		}

		// 4. No booking the past
		requested, err := models.NewInterval(details.Date, details.Time, details.DurationHours)
		if err != nil {
			return err
		}
		if requested.Start.Before(s.now().UTC()) {
			return ErrPastBooking
		}

		// 5. Persist as confirmed
		reservation := &models.Reservation{
			VenueID:         venueID,
			TableID:         table.ID,
			CustomerName:    customer.Name,
			CustomerEmail:   customer.Email,
			CustomerPhone:   customer.Phone,
			PartySize:       details.PartySize,
			BookingDate:     models.DateOnly(details.Date),
			BookingTime:     details.Time,
			DurationHours:   details.DurationHours,
			SpecialRequests: details.SpecialRequests,
			Status:          models.StatusConfirmed,
		}
		if err := s.reservationRepo.Create(ctx, tx, reservation); err != nil {
			return err
		}

		result = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("reservation.confirmed", result)
	return result, nil
}

// CancelReservation moves a pending or confirmed reservation to cancelled,
// provided its service window has not already elapsed. The cancel runs under
// the same table row lock as the committer so it never interleaves with a
// commit's availability scan.
func (s *reservationService) CancelReservation(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error) {
	var result *models.Reservation

	err := s.reservationRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := s.reservationRepo.FindByVenue(ctx, reservationID, venueID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		if _, err := s.tableRepo.FindByIDForUpdate(ctx, tx, reservation.TableID); err != nil {
			return err
		}

		if !reservation.CanCancel(s.now().UTC()) {
			return ErrCannotCancel
		}

		// The read above was not under the lock; the conditional update is
		// what decides, so a racing override or second cancel loses here.
		cancelled, err := s.reservationRepo.CancelIfActive(ctx, tx, reservation.ID)
		if err != nil {
			return err
		}
		if !cancelled {
			return ErrCannotCancel
		}

		reservation.Status = models.StatusCancelled
		result = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("reservation.cancelled", result)
	return result, nil
}

func (s *reservationService) GetReservation(ctx context.Context, reservationID, venueID uint) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.FindByVenue(ctx, reservationID, venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return reservation, nil
}

func (s *reservationService) ListReservations(ctx context.Context, venueID uint, filter models.ListFilter) ([]models.Reservation, error) {
	if filter == "" {
		filter = models.FilterAll
	}
	if !filter.Valid() {
		return nil, fmt.Errorf("%w: unknown filter %q", ErrValidation, filter)
	}
	return s.reservationRepo.ListByVenue(ctx, venueID, filter, s.now().UTC())
}

// UpdateReservationStatuses is the bulk administrative override. It bypasses
// the per-row lifecycle guards, matching how staff sweep past reservations
// into completed or no_show after service.
func (s *reservationService) UpdateReservationStatuses(ctx context.Context, venueID uint, ids []uint, status models.ReservationStatus) (int64, error) {
	switch status {
	case models.StatusCancelled, models.StatusCompleted, models.StatusNoShow:
	default:
		return 0, fmt.Errorf("%w: status must be cancelled, completed or no_show", ErrValidation)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no reservation ids given", ErrValidation)
	}
	return s.reservationRepo.BulkUpdateStatus(ctx, venueID, ids, status)
}

func (s *reservationService) GetVenueStats(ctx context.Context, venueID uint) (*VenueStats, error) {
	now := s.now().UTC()
	stats := &VenueStats{}

	counts := []struct {
		filter models.ListFilter
		dest   *int64
	}{
		{models.FilterAll, &stats.TotalReservations},
		{models.FilterToday, &stats.TodayReservations},
		{models.FilterUpcoming, &stats.UpcomingReservations},
		{models.FilterCancelled, &stats.CancelledReservations},
	}
	for _, c := range counts {
		n, err := s.reservationRepo.CountByVenue(ctx, venueID, c.filter, now)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}
	return stats, nil
}

func (s *reservationService) publish(routingKey string, reservation *models.Reservation) {
	if s.publisher == nil || reservation == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, reservation); err != nil {
		log.Printf("[ReservationService] publish %s for reservation %d: %v", routingKey, reservation.ID, err)
	}
}
