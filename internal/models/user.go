package models

import "time"

// Signal names emitted through util.Sig().
const (
	SigUserCreate    = "user.create"
	SigSessionCreate = "emergency.session.create"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash []byte `json:"-"`
	DisplayName  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
