package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"geo_tracker/internal/auth"
	"geo_tracker/internal/middleware"
	"geo_tracker/internal/models"
	"geo_tracker/internal/pipeline"
	"geo_tracker/internal/registry"
	"geo_tracker/internal/store"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	jwt    *middleware.JWTAuth
}

func newTestServer(t *testing.T, policy auth.Policy) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Tracker{},
		&models.EventSession{},
		&models.Event{},
		&models.EventLocation{},
		&models.EventAnnotation{},
		&models.EventExtensionType{},
		&models.EventExtensionValue{},
	))

	trackers := registry.NewTrackerRegistry(db)
	classifier := auth.NewClassifier(trackers)
	eventStore := store.NewEventStore(db)
	eventQuery := store.NewEventQuery(db, 100, 1000)
	jwtAuth := middleware.NewJWTAuth("test-secret", time.Hour)

	ingest := pipeline.New(eventStore, classifier, policy, nil, false)
	events := NewEventController(ingest, eventQuery)

	router := gin.New()
	router.POST("/api/events", events.Ingest)
	query := router.Group("/api/events")
	query.Use(jwtAuth.RequireAuth())
	{
		query.GET("/search", events.Search)
		query.GET("/all", events.ListEvents)
		query.GET("/get/:ids", events.GetByIDs)
	}

	return &testServer{router: router, db: db, jwt: jwtAuth}
}

func (s *testServer) ingest(t *testing.T, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestIngestEndpoint_UnknownTrackerAccepted(t *testing.T) {
	srv := newTestServer(t, auth.Policy{AllowTrackerCreation: true})

	w := srv.ingest(t, url.Values{"tracker_code": {"t1"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OK")

	var tracker models.Tracker
	require.NoError(t, srv.db.Where("code = ?", "t1").First(&tracker).Error)

	var session models.EventSession
	require.NoError(t, srv.db.Where("tracker_id = ?", tracker.ID).First(&session).Error)
	assert.Equal(t, store.DefaultSessionCode, session.SessionCode)

	var events, locations int64
	require.NoError(t, srv.db.Model(&models.Event{}).Count(&events).Error)
	require.NoError(t, srv.db.Model(&models.EventLocation{}).Count(&locations).Error)
	assert.Equal(t, int64(1), events)
	assert.Zero(t, locations)
}

func TestIngestEndpoint_DeniedIsPlainText401(t *testing.T) {
	srv := newTestServer(t, auth.Policy{RequireAuthentication: true})

	w := srv.ingest(t, url.Values{"tracker_code": {"ghost"}})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Denied")

	var events int64
	require.NoError(t, srv.db.Model(&models.Event{}).Count(&events).Error)
	assert.Zero(t, events)
}

func TestIngestEndpoint_WithMACAndExtensions(t *testing.T) {
	srv := newTestServer(t, auth.Policy{RequireAuthentication: true})

	trackers := registry.NewTrackerRegistry(srv.db)
	_, err := trackers.Create(context.Background(), "t1", "Tracker One", "topsecret", "")
	require.NoError(t, err)

	params := map[string]string{
		"tracker_code":  "t1",
		"latitude":      "-1.2921",
		"longitude":     "36.8219",
		"X-temperature": "21.5",
	}
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("mac", auth.ComputeMAC("topsecret", params))

	w := srv.ingest(t, form)
	require.Equal(t, http.StatusOK, w.Code)

	var value models.EventExtensionValue
	require.NoError(t, srv.db.Preload("ExtensionType").First(&value).Error)
	assert.Equal(t, "X-temperature", value.ExtensionType.Name)
	assert.Equal(t, "21.5", value.Value)
}

func TestSearchEndpoint_RequiresToken(t *testing.T) {
	srv := newTestServer(t, auth.Policy{AllowTrackerCreation: true})

	req := httptest.NewRequest(http.MethodGet, "/api/events/search?tracker_ids=1", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSearchEndpoint_ReturnsGeoJSON(t *testing.T) {
	srv := newTestServer(t, auth.Policy{AllowTrackerCreation: true})

	w := srv.ingest(t, url.Values{
		"tracker_code": {"t1"},
		"latitude":     {"-1.2921"},
		"longitude":    {"36.8219"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var tracker models.Tracker
	require.NoError(t, srv.db.Where("code = ?", "t1").First(&tracker).Error)

	token, err := srv.jwt.GenerateToken(tracker.ID, tracker.Code)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/events/search?tracker_ids=1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)

	var geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	}
	require.NoError(t, json.Unmarshal(body.Data[0]["geometry"], &geometry))
	assert.Equal(t, "Point", geometry.Type)
	require.Len(t, geometry.Coordinates, 2)
	assert.InDelta(t, 36.8219, geometry.Coordinates[0], 1e-9) // lon first
	assert.InDelta(t, -1.2921, geometry.Coordinates[1], 1e-9)
}
