// internal/models/tracker.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Tracker is a remote reporting device identified by a unique code and
// authenticated with its shared secret. The code is stored lowercase.
type Tracker struct {
	gorm.Model
	Code           string     `json:"code" gorm:"uniqueIndex;not null"`
	Name           string     `json:"name"`
	SharedSecret   string     `json:"-"`
	Password       string     `json:"-"`
	LatestActivity *time.Time `json:"latest_activity"`
}
