package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RecordingAudio = "audio"
	RecordingVideo = "video"
	RecordingImage = "image"
)

// EmergencyRecording is the metadata row for one captured artifact; the
// bytes live in the blob store under FilePath. Immutable after insert.
type EmergencyRecording struct {
	ID                 string `gorm:"primaryKey;size:36"`
	EmergencySessionID string `gorm:"index;size:36"`
	UserID             uint   `gorm:"index"`
	FileName           string
	FilePath           string
	RecordingType      string
	FileSize           int64
	DurationSeconds    *int
	MimeType           string
	CreatedAt          time.Time
}

func (EmergencyRecording) TableName() string { return "emergency_recordings" }

func (r *EmergencyRecording) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
