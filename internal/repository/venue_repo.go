package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tablebook/reservation-service/internal/models"
	"gorm.io/gorm"
)

type VenueRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Venue, error)
	FindActiveByQRCode(ctx context.Context, qrCodeID uuid.UUID) (*models.Venue, error)
}

type venueRepository struct {
	db *gorm.DB
}

func NewVenueRepository(db *gorm.DB) VenueRepository {
	return &venueRepository{db: db}
}

func (r *venueRepository) FindByID(ctx context.Context, id uint) (*models.Venue, error) {
	var venue models.Venue
	if err := r.db.WithContext(ctx).First(&venue, id).Error; err != nil {
		return nil, err
	}
	return &venue, nil
}

// FindActiveByQRCode resolves the public booking-page identifier. Inactive
// venues are indistinguishable from missing ones.
func (r *venueRepository) FindActiveByQRCode(ctx context.Context, qrCodeID uuid.UUID) (*models.Venue, error) {
	var venue models.Venue
	err := r.db.WithContext(ctx).
		Where("qr_code_id = ? AND is_active = ?", qrCodeID, true).
		First(&venue).Error
	if err != nil {
		return nil, err
	}
	return &venue, nil
}
