// internal/models/event_extension_value.go
package models

import (
	"gorm.io/gorm"
)

// EventExtensionValue is one typed key/value attribute of an event, zero or
// many per event, one per distinct extension key supplied.
type EventExtensionValue struct {
	gorm.Model
	EventID              uint               `json:"event_id" gorm:"index;not null"`
	EventExtensionTypeID uint               `json:"event_extension_type_id" gorm:"index;not null"`
	ExtensionType        EventExtensionType `gorm:"foreignKey:EventExtensionTypeID" json:"extension_type"`
	Value                string             `json:"value"`
}
