// internal/models/event_extension_type.go
package models

import (
	"gorm.io/gorm"
)

// EventExtensionType names one kind of extension attribute (for example
// "X-temperature"). Types are registered lazily on first sighting.
type EventExtensionType struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}
