// Package geo converts event locations into GeoJSON for query responses
// and the realtime stream.
package geo

import (
	"encoding/json"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"geo_tracker/internal/models"
)

// LocationPoint builds the WGS84 point for a location row, lon/lat order.
func LocationPoint(loc *models.EventLocation) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{loc.Longitude, loc.Latitude}).SetSRID(4326)
}

// LocationGeoJSON renders a location as a GeoJSON Point geometry. Returns
// nil for events without a location.
func LocationGeoJSON(loc *models.EventLocation) (json.RawMessage, error) {
	if loc == nil {
		return nil, nil
	}
	raw, err := geojson.Marshal(LocationPoint(loc))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// EventMessage serializes a persisted event for watchers: identifiers,
// times, the GeoJSON geometry, the annotation text, and flattened extension
// values keyed by type name.
func EventMessage(event *models.Event) ([]byte, error) {
	geometry, err := LocationGeoJSON(event.Location)
	if err != nil {
		return nil, err
	}

	msg := map[string]interface{}{
		"event_id":   event.ID,
		"tracker_id": event.TrackerID,
		"session_id": event.EventSessionID,
		"event_time": event.EventTime,
		"created_on": event.CreatedAt,
	}
	if geometry != nil {
		msg["geometry"] = geometry
	}
	if event.Annotation != nil {
		msg["annotation"] = event.Annotation.Annotation
	}
	if len(event.Extensions) > 0 {
		extensions := make(map[string]string, len(event.Extensions))
		for _, ext := range event.Extensions {
			extensions[ext.ExtensionType.Name] = ext.Value
		}
		msg["extensions"] = extensions
	}

	return json.Marshal(msg)
}
