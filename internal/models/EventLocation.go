// internal/models/event_location.go
package models

import (
	"gorm.io/gorm"
)

// EventLocation holds the position fix of an event. Written only when both
// latitude and longitude were reported; every other field is nullable.
type EventLocation struct {
	gorm.Model
	EventID            uint     `json:"event_id" gorm:"uniqueIndex;not null"`
	Latitude           float64  `json:"latitude"`
	Longitude          float64  `json:"longitude"`
	HorizontalAccuracy *float64 `json:"horizontal_accuracy,omitempty"` // meters
	VerticalAccuracy   *float64 `json:"vertical_accuracy,omitempty"`   // meters
	Speed              *float64 `json:"speed,omitempty"`               // m/s
	Heading            *float64 `json:"heading,omitempty"`             // degrees
	SatelliteCount     *int     `json:"satellite_count,omitempty"`
	Altitude           *float64 `json:"altitude,omitempty"` // meters
}
