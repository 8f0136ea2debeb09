// internal/models/event_session.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// EventSession is one contiguous reporting period of a tracker. A tracker
// has at most one session per session code.
type EventSession struct {
	gorm.Model
	TrackerID       uint      `json:"tracker_id" gorm:"uniqueIndex:idx_tracker_session,priority:1;not null"`
	Tracker         Tracker   `gorm:"foreignKey:TrackerID" json:"-"`
	SessionCode     string    `json:"session_code" gorm:"uniqueIndex:idx_tracker_session,priority:2;not null"`
	FirstEventTime  time.Time `json:"first_event_time"`
	LatestEventTime time.Time `json:"latest_event_time"`
}
