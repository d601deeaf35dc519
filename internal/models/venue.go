package models

import (
	"time"

	"github.com/google/uuid"
)

// Venue is the tenant that owns tables and reservations. Venue management
// lives in a separate service; rows here are synced copies kept fresh by the
// RabbitMQ consumer.
type Venue struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	QRCodeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"qr_code_id"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tables []Table `gorm:"foreignKey:VenueID" json:"tables,omitempty"`
}

// Table is a bookable physical resource with a fixed seating capacity.
// Inactive tables never appear in availability results and cannot be booked.
type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VenueID     uint      `gorm:"not null;uniqueIndex:idx_tables_venue_number,priority:1" json:"venue_id"`
	TableNumber string    `gorm:"size:50;not null;uniqueIndex:idx_tables_venue_number,priority:2" json:"table_number"`
	Capacity    int       `gorm:"not null" json:"capacity"`
	Description string    `gorm:"size:200" json:"description,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
