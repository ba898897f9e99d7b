package store

import (
	"context"
	"io"
	"time"

	"suraksha/internal/models"
	"suraksha/pkg/errors"
	stores "suraksha/pkg/storage"

	"gorm.io/gorm"
)

// Store is the persistence boundary: four tables plus the recordings bucket.
// Write failures come back as WriteRejected / UploadFailed coded errors so
// callers can apply the degrade-or-surface policy.
type Store struct {
	db    *gorm.DB
	blobs stores.Store
}

func New(db *gorm.DB, blobs stores.Store) *Store {
	return &Store{db: db, blobs: blobs}
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.EmergencySession{},
		&models.LocationPoint{},
		&models.EmergencyRecording{},
	)
}

func (s *Store) DB() *gorm.DB { return s.db }

// --- sessions ---

func (s *Store) CreateSession(ctx context.Context, draft *models.EmergencySession) (*models.EmergencySession, error) {
	if err := s.db.WithContext(ctx).Create(draft).Error; err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeWriteRejected, "session create rejected"), err.Error())
	}
	return draft, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.EmergencySession, error) {
	var sess models.EmergencySession
	if err := s.db.WithContext(ctx).First(&sess, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) UpdateSessionStatus(ctx context.Context, id, status string, endedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if endedAt != nil {
		updates["ended_at"] = endedAt
	}
	res := s.db.WithContext(ctx).Model(&models.EmergencySession{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return errors.WithCodef(errors.CodeWriteRejected, "status update rejected: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.WithCodef(errors.CodeWriteRejected, "session %s not found", id)
	}
	return nil
}

// ListSessions returns the user's sessions newest first, optionally filtered
// by status.
func (s *Store) ListSessions(ctx context.Context, userID uint, status string) ([]models.EmergencySession, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.EmergencySession
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// StaleActiveSessions finds sessions still active past the cutoff; the
// nightly sweep resolves them.
func (s *Store) StaleActiveSessions(ctx context.Context, olderThan time.Duration) ([]models.EmergencySession, error) {
	cutoff := time.Now().Add(-olderThan)
	var out []models.EmergencySession
	err := s.db.WithContext(ctx).
		Where("status = ? AND started_at < ?", models.SessionActive, cutoff).
		Find(&out).Error
	return out, err
}

// --- location stream ---

func (s *Store) AppendLocationPoint(ctx context.Context, p *models.LocationPoint) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return errors.WithCodef(errors.CodeWriteRejected, "location append rejected: %v", err)
	}
	return nil
}

// LocationWithSession joins a point with its parent session summary for the
// map view.
type LocationWithSession struct {
	models.LocationPoint
	SessionStatus    string    `json:"session_status"`
	SessionCreatedAt time.Time `json:"session_created_at"`
}

func (s *Store) ListRecentLocations(ctx context.Context, userID uint, limit int) ([]LocationWithSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []LocationWithSession
	err := s.db.WithContext(ctx).
		Table("location_tracking").
		Select("location_tracking.*, emergency_sessions.status AS session_status, emergency_sessions.created_at AS session_created_at").
		Joins("JOIN emergency_sessions ON emergency_sessions.id = location_tracking.emergency_session_id").
		Where("emergency_sessions.user_id = ?", userID).
		Order("location_tracking.timestamp DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// --- recordings ---

// UploadBlob writes the artifact bytes and returns the public URL.
func (s *Store) UploadBlob(path string, r io.Reader, size int64, contentType string) (string, error) {
	if err := s.blobs.Write(path, r, size, contentType); err != nil {
		return "", errors.WithCodef(errors.CodeUploadFailed, "blob upload failed: %v", err)
	}
	return s.blobs.PublicURL(path), nil
}

func (s *Store) OpenBlob(path string) (io.ReadCloser, int64, error) {
	return s.blobs.Read(path)
}

func (s *Store) RecordMedia(ctx context.Context, rec *models.EmergencyRecording) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return errors.WithCodef(errors.CodeWriteRejected, "recording metadata rejected: %v", err)
	}
	return nil
}

func (s *Store) GetRecording(ctx context.Context, id string) (*models.EmergencyRecording, error) {
	var rec models.EmergencyRecording
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) ListRecordings(ctx context.Context, sessionID string) ([]models.EmergencyRecording, error) {
	var out []models.EmergencyRecording
	err := s.db.WithContext(ctx).
		Where("emergency_session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// --- users and profiles ---

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProfile upserts by user id; the embedded contact list is replaced
// wholesale, there is no partial update.
func (s *Store) SaveProfile(ctx context.Context, p *models.Profile) error {
	var existing models.Profile
	err := s.db.WithContext(ctx).First(&existing, "user_id = ?", p.UserID).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.WithContext(ctx).Create(p).Error
	}
	if err != nil {
		return err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	return s.db.WithContext(ctx).Save(p).Error
}
