// internal/models/event.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is one telemetry reading. CreatedAt is the server-assigned store
// time; EventTime is the client-reported time and defaults to the store
// time when the tracker sent none. Rows are never updated after creation.
type Event struct {
	gorm.Model
	TrackerID      uint         `json:"tracker_id" gorm:"index;not null"`
	Tracker        Tracker      `gorm:"foreignKey:TrackerID" json:"-"`
	EventSessionID uint         `json:"event_session_id" gorm:"index;not null"`
	EventSession   EventSession `gorm:"foreignKey:EventSessionID" json:"-"`
	EventTime      time.Time    `json:"event_time" gorm:"index"`

	Location   *EventLocation        `gorm:"foreignKey:EventID" json:"location,omitempty"`
	Annotation *EventAnnotation      `gorm:"foreignKey:EventID" json:"annotation,omitempty"`
	Extensions []EventExtensionValue `gorm:"foreignKey:EventID" json:"extensions,omitempty"`
}
