package registry

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"geo_tracker/internal/models"
)

// SessionRegistry resolves and creates event sessions scoped to a tracker.
type SessionRegistry struct {
	db *gorm.DB
}

func NewSessionRegistry(db *gorm.DB) *SessionRegistry {
	return &SessionRegistry{db: db}
}

// ResolveOrCreateForCode returns the session for (trackerID, sessionCode),
// creating it on first sighting with first_event_time = latest_event_time =
// eventTime. An existing session is returned unchanged: latest_event_time
// is NOT refreshed on repeat sightings.
func (r *SessionRegistry) ResolveOrCreateForCode(ctx context.Context, trackerID uint, sessionCode string, eventTime time.Time) (*models.EventSession, error) {
	for attempt := 0; attempt < resolveAttempts; attempt++ {
		var session models.EventSession
		err := r.db.WithContext(ctx).
			Where("tracker_id = ? AND session_code = ?", trackerID, sessionCode).
			First(&session).Error
		if err == nil {
			return &session, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		session = models.EventSession{
			TrackerID:       trackerID,
			SessionCode:     sessionCode,
			FirstEventTime:  eventTime,
			LatestEventTime: eventTime,
		}
		// Savepoint keeps the surrounding transaction usable when the
		// insert loses the race.
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&session).Error
		})
		if err == nil {
			return &session, nil
		}
		if !isDuplicateKey(err) {
			return nil, err
		}
	}
	return nil, ErrConflictRetry
}
