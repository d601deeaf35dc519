package repository

import (
	"context"

	"github.com/tablebook/reservation-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TableRepository interface {
	FindEligible(ctx context.Context, venueID uint, minCapacity int) ([]models.Table, error)
	FindActiveByIDForUpdate(ctx context.Context, tx *gorm.DB, venueID, tableID uint) (*models.Table, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, tableID uint) (*models.Table, error)
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

// FindEligible returns the venue's active tables seating at least minCapacity,
// ordered by id so availability results are deterministic.
func (r *tableRepository) FindEligible(ctx context.Context, venueID uint, minCapacity int) ([]models.Table, error) {
	var tables []models.Table
	err := r.db.WithContext(ctx).
		Where("venue_id = ? AND is_active = ? AND capacity >= ?", venueID, true, minCapacity).
		Order("id ASC").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// FindActiveByIDForUpdate acquires a row-level lock on the table within the
// given transaction, serializing concurrent commit attempts on the same
// table. Missing, inactive and foreign-venue tables all miss the filter.
func (r *tableRepository) FindActiveByIDForUpdate(ctx context.Context, tx *gorm.DB, venueID, tableID uint) (*models.Table, error) {
	var table models.Table
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND venue_id = ? AND is_active = ?", tableID, venueID, true).
		First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// FindByIDForUpdate locks the table row regardless of its active flag. Used
// by cancellation so it cannot interleave with a commit's availability scan.
func (r *tableRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, tableID uint) (*models.Table, error) {
	var table models.Table
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&table, tableID).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}
