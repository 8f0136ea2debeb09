// internal/models/event_annotation.go
package models

import (
	"gorm.io/gorm"
)

// EventAnnotation is the free-text note attached to an event, at most one.
type EventAnnotation struct {
	gorm.Model
	EventID    uint   `json:"event_id" gorm:"uniqueIndex;not null"`
	Annotation string `json:"annotation" gorm:"type:text"`
}
