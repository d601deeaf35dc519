package database

import (
	"log"

	"github.com/tablebook/reservation-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Venue{}, &models.Table{}, &models.Reservation{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Covers the availability checker's per-table per-date scan of confirmed rows
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservations_table_date_status
		ON reservations (table_id, booking_date, status)
	`)

	return db
}
