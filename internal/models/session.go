package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SessionActive    = "active"
	SessionResolved  = "resolved"
	SessionCancelled = "cancelled"
)

// EmergencySession is created at SOS activation and closed by an explicit
// resolve/cancel or the stale sweep. Never deleted by the application.
type EmergencySession struct {
	ID                string `gorm:"primaryKey;size:36"`
	UserID            uint   `gorm:"index"`
	Status            string `gorm:"default:active;index"`
	StartedAt         time.Time
	EndedAt           *time.Time
	LocationLat       *float64
	LocationLng       *float64
	Accuracy          *float64
	EmergencyContacts ContactList `gorm:"type:json"`
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (EmergencySession) TableName() string { return "emergency_sessions" }

func (s *EmergencySession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	if s.Status == "" {
		s.Status = SessionActive
	}
	return nil
}
