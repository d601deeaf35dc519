package consumer

import (
	"encoding/json"
	"log"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tablebook/reservation-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VenueConsumer struct {
	db *gorm.DB
}

func NewVenueConsumer(db *gorm.DB) *VenueConsumer {
	return &VenueConsumer{db: db}
}

// Start listens for venue service messages and upserts venues and tables into
// the local read copies.
func (vc *VenueConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			vc.handleMessage(msg)
		}
		log.Println("[VenueConsumer] channel closed, stopping consumer")
	}()
}

func (vc *VenueConsumer) handleMessage(msg amqp.Delivery) {
	switch {
	case strings.HasPrefix(msg.RoutingKey, "venue.table."):
		vc.upsertTable(msg)
	case strings.HasPrefix(msg.RoutingKey, "venue."):
		vc.upsertVenue(msg)
	default:
		log.Printf("[VenueConsumer] ignoring routing key %s", msg.RoutingKey)
		msg.Ack(false)
	}
}

func (vc *VenueConsumer) upsertVenue(msg amqp.Delivery) {
	var venue models.Venue
	if err := json.Unmarshal(msg.Body, &venue); err != nil {
		log.Printf("[VenueConsumer] failed to unmarshal venue: %v", err)
		msg.Nack(false, false)
		return
	}

	// Upsert: insert or update on conflict (same ID from the venue service)
	result := vc.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "qr_code_id", "is_active", "updated_at"}),
	}).Create(&venue)

	if result.Error != nil {
		log.Printf("[VenueConsumer] failed to upsert venue %d: %v", venue.ID, result.Error)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[VenueConsumer] synced venue %d: %s", venue.ID, venue.Name)
	msg.Ack(false)
}

func (vc *VenueConsumer) upsertTable(msg amqp.Delivery) {
	var table models.Table
	if err := json.Unmarshal(msg.Body, &table); err != nil {
		log.Printf("[VenueConsumer] failed to unmarshal table: %v", err)
		msg.Nack(false, false)
		return
	}

	// Capacity edits never touch existing reservations; they only gate new ones
	result := vc.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"venue_id", "table_number", "capacity", "description", "is_active", "updated_at"}),
	}).Create(&table)

	if result.Error != nil {
		log.Printf("[VenueConsumer] failed to upsert table %d: %v", table.ID, result.Error)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[VenueConsumer] synced table %d (venue %d)", table.ID, table.VenueID)
	msg.Ack(false)
}
