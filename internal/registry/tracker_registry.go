package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"geo_tracker/internal/models"
)

// TrackerRegistry resolves and creates trackers by code. Codes are
// normalized to lowercase before every lookup and insert.
type TrackerRegistry struct {
	db *gorm.DB
}

func NewTrackerRegistry(db *gorm.DB) *TrackerRegistry {
	return &TrackerRegistry{db: db}
}

// NormalizeCode lowercases and trims a tracker code.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// ResolveByCode looks a tracker up by its normalized code. A miss returns
// (nil, nil).
func (r *TrackerRegistry) ResolveByCode(ctx context.Context, code string) (*models.Tracker, error) {
	var tracker models.Tracker
	err := r.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&tracker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tracker, nil
}

// ResolveOrCreate returns the tracker for code, creating it on first
// sighting. Name defaults to the normalized code.
func (r *TrackerRegistry) ResolveOrCreate(ctx context.Context, code, name string) (*models.Tracker, error) {
	normalized := NormalizeCode(code)
	if name == "" {
		name = normalized
	}

	for attempt := 0; attempt < resolveAttempts; attempt++ {
		existing, err := r.ResolveByCode(ctx, normalized)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}

		tracker := models.Tracker{Code: normalized, Name: name}
		// Insert under a savepoint: Postgres aborts the whole transaction on
		// a unique violation, which would poison the surrounding event
		// transaction for the retry lookup.
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&tracker).Error
		})
		if err == nil {
			return &tracker, nil
		}
		if !isDuplicateKey(err) {
			return nil, err
		}
		// Lost the insert race; retry the full lookup once.
	}
	return nil, ErrConflictRetry
}

// Create registers a tracker explicitly and fails with ErrTrackerExists
// when the code is already taken.
func (r *TrackerRegistry) Create(ctx context.Context, code, name, sharedSecret, password string) (*models.Tracker, error) {
	tracker := models.Tracker{
		Code:         NormalizeCode(code),
		Name:         name,
		SharedSecret: sharedSecret,
		Password:     password,
	}
	if err := r.db.WithContext(ctx).Create(&tracker).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrTrackerExists
		}
		return nil, err
	}
	return &tracker, nil
}

// TouchActivity stamps the tracker's latest_activity with the current
// server time. Best-effort within the surrounding transaction.
func (r *TrackerRegistry) TouchActivity(ctx context.Context, trackerID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Tracker{}).
		Where("id = ?", trackerID).
		Update("latest_activity", &now).Error
}
