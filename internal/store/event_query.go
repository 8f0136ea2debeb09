package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"geo_tracker/internal/models"
)

// Sort orders recognized by Search.
const (
	OrderLatestStoreTime = "latest-store-time"
	OrderLatestEventTime = "latest-event-time"
)

// SearchCriteria are the recognized event filters, all optional and
// combined with AND. Time bounds are literal inclusive comparisons at the
// precision the database column stores; a bound given at second granularity
// excludes events carrying sub-second components beyond it.
type SearchCriteria struct {
	EventTimeStart *time.Time
	EventTimeEnd   *time.Time
	StoreTimeStart *time.Time
	StoreTimeEnd   *time.Time
	TrackerIDs     []uint
	SessionIDs     []uint
	MaxResults     int
	OrderBy        string
}

// HasFilter reports whether any filter criterion is set. MaxResults and
// OrderBy alone do not count: a filterless search is refused outright as a
// guard against unbounded scans.
func (c SearchCriteria) HasFilter() bool {
	return c.EventTimeStart != nil || c.EventTimeEnd != nil ||
		c.StoreTimeStart != nil || c.StoreTimeEnd != nil ||
		len(c.TrackerIDs) > 0 || len(c.SessionIDs) > 0
}

// EventQuery runs bounded, filtered reads over persisted events.
type EventQuery struct {
	db         *gorm.DB
	defaultMax int
	allowedMax int
}

func NewEventQuery(db *gorm.DB, defaultMax, allowedMax int) *EventQuery {
	return &EventQuery{db: db, defaultMax: defaultMax, allowedMax: allowedMax}
}

func (q *EventQuery) withChildren(ctx context.Context) *gorm.DB {
	return q.db.WithContext(ctx).
		Preload("Location").
		Preload("Annotation").
		Preload("Extensions.ExtensionType")
}

// Search returns events matching criteria, eagerly joined with their
// location, annotation, and extension values. An empty filter set returns
// an empty slice regardless of table contents.
func (q *EventQuery) Search(ctx context.Context, criteria SearchCriteria) ([]models.Event, error) {
	if !criteria.HasFilter() {
		return []models.Event{}, nil
	}

	tx := q.withChildren(ctx)

	if criteria.EventTimeStart != nil {
		tx = tx.Where("event_time >= ?", *criteria.EventTimeStart)
	}
	if criteria.EventTimeEnd != nil {
		tx = tx.Where("event_time <= ?", *criteria.EventTimeEnd)
	}
	if criteria.StoreTimeStart != nil {
		tx = tx.Where("created_at >= ?", *criteria.StoreTimeStart)
	}
	if criteria.StoreTimeEnd != nil {
		tx = tx.Where("created_at <= ?", *criteria.StoreTimeEnd)
	}
	if len(criteria.TrackerIDs) > 0 {
		tx = tx.Where("tracker_id IN ?", criteria.TrackerIDs)
	}
	if len(criteria.SessionIDs) > 0 {
		tx = tx.Where("event_session_id IN ?", criteria.SessionIDs)
	}

	switch criteria.OrderBy {
	case OrderLatestStoreTime:
		tx = tx.Order("created_at DESC")
	case OrderLatestEventTime:
		tx = tx.Order("event_time DESC")
	default:
		tx = tx.Order("event_time ASC")
	}

	var events []models.Event
	if err := tx.Limit(q.clampLimit(criteria.MaxResults)).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// clampLimit substitutes the configured default when no limit was requested
// and caps the result at the configured allowed maximum.
func (q *EventQuery) clampLimit(requested int) int {
	if requested <= 0 {
		requested = q.defaultMax
	}
	if requested > q.allowedMax {
		return q.allowedMax
	}
	return requested
}

// Get fetches events by id set with all child data, unlimited.
func (q *EventQuery) Get(ctx context.Context, ids []uint) ([]models.Event, error) {
	var events []models.Event
	if err := q.withChildren(ctx).Where("id IN ?", ids).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// GetAll fetches every event, unlimited. Administrative/debug use only.
func (q *EventQuery) GetAll(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := q.withChildren(ctx).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
