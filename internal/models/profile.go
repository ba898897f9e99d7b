package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EmergencyContact lives embedded in the profile (and in the session
// snapshot), not as a relational entity. The list is replaced wholesale on
// every edit.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
}

// Validate rejects incomplete contacts before any write is issued.
func (c EmergencyContact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("contact name required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("contact phone required")
	}
	return nil
}

// ContactList serializes as a JSON column.
type ContactList []EmergencyContact

func (l ContactList) Value() (driver.Value, error) {
	if l == nil {
		l = ContactList{}
	}
	raw, err := json.Marshal(l)
	return string(raw), err
}

func (l *ContactList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported contact list source %T", src)
	}
}

// Clone returns an independent copy for the activation snapshot, so later
// profile edits never show through into a stored session.
func (l ContactList) Clone() ContactList {
	out := make(ContactList, len(l))
	copy(out, l)
	return out
}

type Profile struct {
	ID                uint   `gorm:"primaryKey"`
	UserID            uint   `gorm:"uniqueIndex"`
	Name              string
	Phone             string
	BloodGroup        string
	Language          string      `gorm:"default:en"`
	EmergencyContacts ContactList `gorm:"type:json"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Profile) TableName() string { return "profiles" }
