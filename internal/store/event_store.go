// Package store implements the transactional event write path and the
// criteria-driven event search.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"geo_tracker/internal/models"
	"geo_tracker/internal/registry"
)

// DefaultSessionCode is used when a tracker reports no session code.
const DefaultSessionCode = "default"

// EventData is the normalized form of one inbound event. Extension keys
// keep their reserved prefix ("X-temperature").
type EventData struct {
	TrackerCode string
	TrackerName string
	SessionCode string
	EventTime   *time.Time

	Latitude           *float64
	Longitude          *float64
	HorizontalAccuracy *float64
	VerticalAccuracy   *float64
	Speed              *float64
	Heading            *float64
	SatelliteCount     *int
	Altitude           *float64

	Annotation *string
	Extensions map[string]string
}

// HasCoordinates reports whether both latitude and longitude were supplied.
// A location row is written only in that case.
func (d *EventData) HasCoordinates() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// EventStore persists events with their child rows in one transaction.
type EventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

// Create resolves the tracker, session, and any extension types for data
// and inserts the event plus its optional child rows as one atomic unit.
// Any failure rolls the whole event back.
func (s *EventStore) Create(ctx context.Context, data EventData) (*models.Event, error) {
	var created models.Event

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eventTime := time.Now()
		if data.EventTime != nil {
			eventTime = *data.EventTime
		}

		trackers := registry.NewTrackerRegistry(tx)
		sessions := registry.NewSessionRegistry(tx)
		extTypes := registry.NewExtensionTypeRegistry(tx)

		tracker, err := trackers.ResolveOrCreate(ctx, data.TrackerCode, data.TrackerName)
		if err != nil {
			return err
		}

		sessionCode := data.SessionCode
		if sessionCode == "" {
			sessionCode = DefaultSessionCode
		}
		session, err := sessions.ResolveOrCreateForCode(ctx, tracker.ID, sessionCode, eventTime)
		if err != nil {
			return err
		}

		if err := trackers.TouchActivity(ctx, tracker.ID); err != nil {
			return err
		}

		event := models.Event{
			TrackerID:      tracker.ID,
			EventSessionID: session.ID,
			EventTime:      eventTime,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		if data.HasCoordinates() {
			location := models.EventLocation{
				EventID:            event.ID,
				Latitude:           *data.Latitude,
				Longitude:          *data.Longitude,
				HorizontalAccuracy: data.HorizontalAccuracy,
				VerticalAccuracy:   data.VerticalAccuracy,
				Speed:              data.Speed,
				Heading:            data.Heading,
				SatelliteCount:     data.SatelliteCount,
				Altitude:           data.Altitude,
			}
			if err := tx.Create(&location).Error; err != nil {
				return err
			}
			event.Location = &location
		}

		if data.Annotation != nil {
			annotation := models.EventAnnotation{
				EventID:    event.ID,
				Annotation: *data.Annotation,
			}
			if err := tx.Create(&annotation).Error; err != nil {
				return err
			}
			event.Annotation = &annotation
		}

		for key, raw := range data.Extensions {
			extType, err := extTypes.ResolveOrCreate(ctx, key)
			if err != nil {
				return err
			}
			value := models.EventExtensionValue{
				EventID:              event.ID,
				EventExtensionTypeID: extType.ID,
				ExtensionType:        *extType,
				Value:                raw,
			}
			if err := tx.Create(&value).Error; err != nil {
				return err
			}
			event.Extensions = append(event.Extensions, value)
		}

		created = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}
