package repository

import (
	"context"
	"time"

	"github.com/tablebook/reservation-service/internal/models"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindByVenue(ctx context.Context, id, venueID uint) (*models.Reservation, error)
	FindConfirmedByTableAndDate(ctx context.Context, tx *gorm.DB, tableID uint, date time.Time) ([]models.Reservation, error)
	ListByVenue(ctx context.Context, venueID uint, filter models.ListFilter, now time.Time) ([]models.Reservation, error)
	CountByVenue(ctx context.Context, venueID uint, filter models.ListFilter, now time.Time) (int64, error)
	CancelIfActive(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	BulkUpdateStatus(ctx context.Context, venueID uint, ids []uint, status models.ReservationStatus) (int64, error)
	GetDB() *gorm.DB
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	return tx.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FindByVenue scopes the lookup to the calling venue so a dashboard can never
// read or cancel another venue's reservation.
func (r *reservationRepository) FindByVenue(ctx context.Context, id, venueID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("id = ? AND venue_id = ?", id, venueID).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FindConfirmedByTableAndDate is the availability checker's scan. It runs on
// tx so the committer sees fresh rows while holding the table lock; preview
// callers pass the plain DB.
func (r *reservationRepository) FindConfirmedByTableAndDate(ctx context.Context, tx *gorm.DB, tableID uint, date time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := tx.WithContext(ctx).
		Where("table_id = ? AND booking_date = ? AND status = ?",
			tableID, models.DateOnly(date), models.StatusConfirmed).
		Order("booking_time ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// filterScope translates a dashboard filter into SQL. now is threaded in
// explicitly; its time-of-day is rendered at the stored "15:04" precision so
// string comparison in SQL matches instant comparison to the minute.
func filterScope(q *gorm.DB, filter models.ListFilter, now time.Time) *gorm.DB {
	today := models.DateOnly(now)
	nowTime := models.TimeOfDay(now)

	switch filter {
	case models.FilterToday:
		return q.Where("booking_date = ? AND status = ?", today, models.StatusConfirmed)
	case models.FilterUpcoming:
		return q.Where("booking_date >= ? AND status = ?", today, models.StatusConfirmed).
			Where("NOT (booking_date = ? AND booking_time < ?)", today, nowTime)
	case models.FilterPast:
		return q.Where("booking_date < ? OR (booking_date = ? AND booking_time < ?)", today, today, nowTime)
	case models.FilterCancelled:
		return q.Where("status = ?", models.StatusCancelled)
	default: // FilterAll
		return q
	}
}

func (r *reservationRepository) ListByVenue(ctx context.Context, venueID uint, filter models.ListFilter, now time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	q := r.db.WithContext(ctx).Where("venue_id = ?", venueID)
	q = filterScope(q, filter, now)
	err := q.Order("booking_date DESC, booking_time DESC, id DESC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) CountByVenue(ctx context.Context, venueID uint, filter models.ListFilter, now time.Time) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Reservation{}).Where("venue_id = ?", venueID)
	err := filterScope(q, filter, now).Count(&count).Error
	return count, err
}

// CancelIfActive flips the row to cancelled only while it is still pending or
// confirmed. The status check lives in the UPDATE itself, so a concurrent
// override that already moved the row to a terminal state cannot be undone by
// a cancel racing it; the condition is re-evaluated under the row lock.
func (r *reservationRepository) CancelIfActive(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status IN ?", id,
			[]models.ReservationStatus{models.StatusPending, models.StatusConfirmed}).
		Update("status", models.StatusCancelled)
	return result.RowsAffected > 0, result.Error
}

// BulkUpdateStatus is the unconditional administrative override used by staff
// to sweep reservations into completed/no_show/cancelled after the fact.
func (r *reservationRepository) BulkUpdateStatus(ctx context.Context, venueID uint, ids []uint, status models.ReservationStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("venue_id = ? AND id IN ?", venueID, ids).
		Update("status", status)
	return result.RowsAffected, result.Error
}
