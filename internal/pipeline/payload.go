package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"geo_tracker/internal/store"
)

// ExtensionKeyPrefix marks pass-through extension attributes in the inbound
// payload ("X-temperature=21.5").
const ExtensionKeyPrefix = "X-"

// Recognized typed payload keys. Anything else that is not an extension key
// is ignored.
const (
	KeyTrackerCode    = "tracker_code"
	KeySessionCode    = "session_code"
	KeyTime           = "time"
	KeyLatitude       = "latitude"
	KeyLongitude      = "longitude"
	KeyAccuracy       = "accuracy"
	KeyVertAccuracy   = "vertical-accuracy"
	KeySpeed          = "speed"
	KeyHeading        = "heading"
	KeySatelliteCount = "satellite-count"
	KeyAltitude       = "altitude"
	KeyAnnotation     = "annotation"
)

// IsExtensionKey is the predicate separating pass-through extension fields
// from typed fields.
func IsExtensionKey(key string) bool {
	return strings.HasPrefix(key, ExtensionKeyPrefix)
}

// ParsePayload converts the flat key/value payload of one inbound event
// into typed EventData. A malformed timestamp or number is a validation
// failure; the upstream transport is expected to have rejected those, so no
// recovery is attempted here.
func ParsePayload(params map[string]string) (store.EventData, error) {
	data := store.EventData{
		TrackerCode: params[KeyTrackerCode],
		SessionCode: params[KeySessionCode],
	}
	if data.TrackerCode == "" {
		return store.EventData{}, fmt.Errorf("missing %s", KeyTrackerCode)
	}

	if raw, ok := params[KeyTime]; ok && raw != "" {
		t, err := parseTimestamp(raw)
		if err != nil {
			return store.EventData{}, err
		}
		data.EventTime = &t
	}

	var err error
	if data.Latitude, err = parseFloat(params, KeyLatitude); err != nil {
		return store.EventData{}, err
	}
	if data.Longitude, err = parseFloat(params, KeyLongitude); err != nil {
		return store.EventData{}, err
	}
	if data.HorizontalAccuracy, err = parseFloat(params, KeyAccuracy); err != nil {
		return store.EventData{}, err
	}
	if data.VerticalAccuracy, err = parseFloat(params, KeyVertAccuracy); err != nil {
		return store.EventData{}, err
	}
	if data.Speed, err = parseFloat(params, KeySpeed); err != nil {
		return store.EventData{}, err
	}
	if data.Heading, err = parseFloat(params, KeyHeading); err != nil {
		return store.EventData{}, err
	}
	if data.Altitude, err = parseFloat(params, KeyAltitude); err != nil {
		return store.EventData{}, err
	}
	if data.SatelliteCount, err = parseInt(params, KeySatelliteCount); err != nil {
		return store.EventData{}, err
	}

	if raw, ok := params[KeyAnnotation]; ok && raw != "" {
		data.Annotation = &raw
	}

	for key, value := range params {
		if !IsExtensionKey(key) {
			continue
		}
		if data.Extensions == nil {
			data.Extensions = make(map[string]string)
		}
		data.Extensions[key] = value
	}

	return data, nil
}

// parseTimestamp accepts RFC3339(Nano); a missing zone suffix is treated as
// UTC so bare "2024-05-01T10:00:00" values from constrained trackers parse.
func parseTimestamp(raw string) (time.Time, error) {
	ts := raw
	if !(strings.HasSuffix(ts, "Z") || (len(ts) >= 6 && strings.ContainsAny(ts[len(ts)-6:], "+-"))) {
		ts += "Z"
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	return t, nil
}

func parseFloat(params map[string]string, key string) (*float64, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return &value, nil
}

func parseInt(params map[string]string, key string) (*int, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return &value, nil
}
