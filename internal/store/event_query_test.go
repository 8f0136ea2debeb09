package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"geo_tracker/internal/models"
)

// seedEvent inserts an event row directly with controlled times so both
// event-time and store-time filters can be exercised.
func seedEvent(t *testing.T, db *gorm.DB, trackerID, sessionID uint, eventTime, storeTime time.Time) models.Event {
	t.Helper()
	event := models.Event{
		Model:          gorm.Model{CreatedAt: storeTime},
		TrackerID:      trackerID,
		EventSessionID: sessionID,
		EventTime:      eventTime,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func TestEventQuery_EmptyFilterReturnsNothing(t *testing.T) {
	db := newTestDB(t)
	query := NewEventQuery(db, 100, 1000)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	seedEvent(t, db, 1, 1, base, base)
	seedEvent(t, db, 1, 1, base.Add(time.Minute), base.Add(time.Minute))

	// MaxResults alone is not a filter.
	events, err := query.Search(context.Background(), SearchCriteria{MaxResults: 50})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventQuery_MaxResultsClamped(t *testing.T) {
	db := newTestDB(t)
	query := NewEventQuery(db, 2, 5)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		seedEvent(t, db, 1, 1, base.Add(time.Duration(i)*time.Minute), base)
	}

	// Requested limit above the allowed maximum clamps to it.
	events, err := query.Search(context.Background(), SearchCriteria{
		TrackerIDs: []uint{1},
		MaxResults: 10000,
	})
	require.NoError(t, err)
	assert.Len(t, events, 5)

	// Omitted limit substitutes the configured default before clamping.
	events, err = query.Search(context.Background(), SearchCriteria{TrackerIDs: []uint{1}})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestEventQuery_Ordering(t *testing.T) {
	db := newTestDB(t)
	query := NewEventQuery(db, 100, 1000)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	early := seedEvent(t, db, 1, 1, base, base.Add(2*time.Hour))
	late := seedEvent(t, db, 1, 1, base.Add(time.Hour), base)

	// Default: event_time ascending.
	events, err := query.Search(ctx, SearchCriteria{TrackerIDs: []uint{1}})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, early.ID, events[0].ID)
	assert.Equal(t, late.ID, events[1].ID)

	// latest-event-time: event_time descending.
	events, err = query.Search(ctx, SearchCriteria{TrackerIDs: []uint{1}, OrderBy: OrderLatestEventTime})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, late.ID, events[0].ID)

	// latest-store-time: created_at descending; early was stored last.
	events, err = query.Search(ctx, SearchCriteria{TrackerIDs: []uint{1}, OrderBy: OrderLatestStoreTime})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, early.ID, events[0].ID)
}

func TestEventQuery_TimeBoundsInclusive(t *testing.T) {
	db := newTestDB(t)
	query := NewEventQuery(db, 100, 1000)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	before := seedEvent(t, db, 1, 1, base.Add(-time.Hour), base)
	onStart := seedEvent(t, db, 1, 1, base, base)
	onEnd := seedEvent(t, db, 1, 1, base.Add(time.Hour), base)
	after := seedEvent(t, db, 1, 1, base.Add(2*time.Hour), base)

	events, err := query.Search(ctx, SearchCriteria{
		EventTimeStart: ptrTime(base),
		EventTimeEnd:   ptrTime(base.Add(time.Hour)),
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, onStart.ID, events[0].ID)
	assert.Equal(t, onEnd.ID, events[1].ID)

	_ = before
	_ = after
}

func TestEventQuery_StoreTimeBounds(t *testing.T) {
	db := newTestDB(t)
	query := NewEventQuery(db, 100, 1000)

	eventTime := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	oldStore := seedEvent(t, db, 1, 1, eventTime, eventTime.Add(-24*time.Hour))
	newStore := seedEvent(t, db, 1, 1, eventTime, eventTime)

	events, err := query.Search(context.Background(), SearchCriteria{
		StoreTimeStart: ptrTime(eventTime.Add(-time.Hour)),
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, newStore.ID, events[0].ID)
	_ = oldStore
}

func TestEventQuery_IDSetFilters(t *testing.T) {
	db := newTestDB(t)
	query := NewEventQuery(db, 100, 1000)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	t1s1 := seedEvent(t, db, 1, 1, base, base)
	t2s2 := seedEvent(t, db, 2, 2, base.Add(time.Minute), base)
	t3s3 := seedEvent(t, db, 3, 3, base.Add(2*time.Minute), base)

	events, err := query.Search(ctx, SearchCriteria{TrackerIDs: []uint{1, 3}})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, t1s1.ID, events[0].ID)
	assert.Equal(t, t3s3.ID, events[1].ID)

	// Criteria combine with AND.
	events, err = query.Search(ctx, SearchCriteria{TrackerIDs: []uint{1, 2}, SessionIDs: []uint{2}})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, t2s2.ID, events[0].ID)
}

func TestEventQuery_SearchEagerLoadsChildren(t *testing.T) {
	db := newTestDB(t)
	eventStore := NewEventStore(db)
	query := NewEventQuery(db, 100, 1000)
	ctx := context.Background()

	created, err := eventStore.Create(ctx, EventData{
		TrackerCode: "t1",
		Latitude:    ptrFloat(1.5),
		Longitude:   ptrFloat(2.5),
		Annotation:  ptrString("note"),
		Extensions:  map[string]string{"X-battery": "87"},
	})
	require.NoError(t, err)

	events, err := query.Search(ctx, SearchCriteria{TrackerIDs: []uint{created.TrackerID}})
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	require.NotNil(t, event.Location)
	assert.Equal(t, 1.5, event.Location.Latitude)
	require.NotNil(t, event.Annotation)
	assert.Equal(t, "note", event.Annotation.Annotation)
	require.Len(t, event.Extensions, 1)
	assert.Equal(t, "X-battery", event.Extensions[0].ExtensionType.Name)
	assert.Equal(t, "87", event.Extensions[0].Value)
}

func TestEventQuery_GetAndGetAll(t *testing.T) {
	db := newTestDB(t)
	query := NewEventQuery(db, 1, 2)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	var ids []uint
	for i := 0; i < 4; i++ {
		event := seedEvent(t, db, 1, 1, base.Add(time.Duration(i)*time.Minute), base)
		ids = append(ids, event.ID)
	}

	// Get by id set ignores the configured limits.
	events, err := query.Get(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, events, 4)

	subset, err := query.Get(ctx, ids[:2])
	require.NoError(t, err)
	assert.Len(t, subset, 2)

	all, err := query.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
