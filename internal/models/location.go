package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationPoint is the append-only tracking stream of an active session.
// Rows are never mutated after insert.
type LocationPoint struct {
	ID                 string `gorm:"primaryKey;size:36"`
	EmergencySessionID string `gorm:"index;size:36"`
	Latitude           float64
	Longitude          float64
	Accuracy           *float64
	Speed              *float64
	Heading            *float64
	Timestamp          time.Time `gorm:"index"`
}

func (LocationPoint) TableName() string { return "location_tracking" }

func (p *LocationPoint) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	return nil
}
