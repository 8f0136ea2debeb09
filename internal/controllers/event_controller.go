package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"geo_tracker/internal/geo"
	"geo_tracker/internal/models"
	"geo_tracker/internal/pipeline"
	"geo_tracker/internal/store"
)

// EventController serves the ingestion endpoint and the query API.
type EventController struct {
	pipeline *pipeline.Pipeline
	query    *store.EventQuery
}

func NewEventController(p *pipeline.Pipeline, q *store.EventQuery) *EventController {
	return &EventController{pipeline: p, query: q}
}

// Ingest accepts one event pushed by a tracker as flat query/form
// parameters and replies in plain text: 200 on acceptance, 401 on
// authorization denial, 500 on internal failure.
func (ec *EventController) Ingest(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusInternalServerError, "Error: %v", err)
		return
	}
	params := make(map[string]string, len(c.Request.Form))
	for key, values := range c.Request.Form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	result, err := ec.pipeline.Ingest(c.Request.Context(), params)
	if err != nil {
		logrus.WithError(err).WithField("tracker_code", params[pipeline.KeyTrackerCode]).Error("Event ingestion failed.")
		c.String(http.StatusInternalServerError, "Error: %v", err)
		return
	}
	if result.Denied {
		c.String(http.StatusUnauthorized, "Denied: %s", result.State)
		return
	}
	c.String(http.StatusOK, "OK: event %d accepted", result.Event.ID)
}

// Search runs a filtered event query. Criteria arrive as query parameters;
// a request without any filter returns an empty list.
func (ec *EventController) Search(c *gin.Context) {
	criteria, err := parseSearchCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search criteria: " + err.Error()})
		return
	}

	events, err := ec.query.Search(c.Request.Context(), criteria)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching events: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": serializeEvents(events)})
}

// GetByIDs fetches events by a comma-separated id list, unlimited.
func (ec *EventController) GetByIDs(c *gin.Context) {
	ids, err := parseIDList(c.Param("ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id list: " + err.Error()})
		return
	}

	events, err := ec.query.Get(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching events: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": serializeEvents(events)})
}

// ListEvents fetches every event. This method is typically for
// administrative use.
func (ec *EventController) ListEvents(c *gin.Context) {
	events, err := ec.query.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing events: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": serializeEvents(events)})
}

func parseSearchCriteria(c *gin.Context) (store.SearchCriteria, error) {
	var criteria store.SearchCriteria
	var err error

	if criteria.EventTimeStart, err = parseTimeParam(c, "event_time_start"); err != nil {
		return criteria, err
	}
	if criteria.EventTimeEnd, err = parseTimeParam(c, "event_time_end"); err != nil {
		return criteria, err
	}
	if criteria.StoreTimeStart, err = parseTimeParam(c, "store_time_start"); err != nil {
		return criteria, err
	}
	if criteria.StoreTimeEnd, err = parseTimeParam(c, "store_time_end"); err != nil {
		return criteria, err
	}
	if raw := c.Query("tracker_ids"); raw != "" {
		if criteria.TrackerIDs, err = parseIDList(raw); err != nil {
			return criteria, err
		}
	}
	if raw := c.Query("session_ids"); raw != "" {
		if criteria.SessionIDs, err = parseIDList(raw); err != nil {
			return criteria, err
		}
	}
	if raw := c.Query("max_results"); raw != "" {
		if criteria.MaxResults, err = strconv.Atoi(raw); err != nil {
			return criteria, err
		}
	}
	criteria.OrderBy = c.Query("order_by")

	return criteria, nil
}

func parseTimeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseIDList(raw string) ([]uint, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// serializeEvents renders events with their GeoJSON geometry for API
// responses, mirroring the realtime stream format.
func serializeEvents(events []models.Event) []gin.H {
	out := make([]gin.H, 0, len(events))
	for i := range events {
		event := &events[i]

		item := gin.H{
			"id":               event.ID,
			"tracker_id":       event.TrackerID,
			"event_session_id": event.EventSessionID,
			"event_time":       event.EventTime,
			"created_on":       event.CreatedAt,
		}
		if geometry, err := geo.LocationGeoJSON(event.Location); err != nil {
			logrus.WithError(err).WithField("event_id", event.ID).Warn("Failed to serialize event location.")
		} else if geometry != nil {
			item["geometry"] = geometry
			item["location"] = event.Location
		}
		if event.Annotation != nil {
			item["annotation"] = event.Annotation.Annotation
		}
		if len(event.Extensions) > 0 {
			extensions := make(map[string]string, len(event.Extensions))
			for _, ext := range event.Extensions {
				extensions[ext.ExtensionType.Name] = ext.Value
			}
			item["extensions"] = extensions
		}
		out = append(out, item)
	}
	return out
}
