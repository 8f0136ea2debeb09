package auth

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"geo_tracker/internal/models"
	"geo_tracker/internal/registry"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Tracker{}))

	trackers := registry.NewTrackerRegistry(db)
	_, err = trackers.Create(context.Background(), "t1", "Tracker One", "topsecret", "")
	require.NoError(t, err)

	return NewClassifier(trackers)
}

func TestClassifier_States(t *testing.T) {
	classifier := newTestClassifier(t)
	ctx := context.Background()

	params := map[string]string{
		"tracker_code": "t1",
		"latitude":     "-1.2921",
		"longitude":    "36.8219",
	}

	t.Run("unknown tracker", func(t *testing.T) {
		state, err := classifier.Classify(ctx, "nobody", params, "whatever")
		require.NoError(t, err)
		assert.Equal(t, StateUnknownTracker, state)
	})

	t.Run("no mac supplied", func(t *testing.T) {
		state, err := classifier.Classify(ctx, "t1", params, "")
		require.NoError(t, err)
		assert.Equal(t, StateNotAuthenticated, state)
	})

	t.Run("valid mac", func(t *testing.T) {
		mac := ComputeMAC("topsecret", params)
		state, err := classifier.Classify(ctx, "t1", params, mac)
		require.NoError(t, err)
		assert.Equal(t, StateAuthenticated, state)
	})

	t.Run("wrong secret", func(t *testing.T) {
		mac := ComputeMAC("othersecret", params)
		state, err := classifier.Classify(ctx, "t1", params, mac)
		require.NoError(t, err)
		assert.Equal(t, StateFailed, state)
	})

	t.Run("tampered parameter", func(t *testing.T) {
		mac := ComputeMAC("topsecret", params)
		tampered := map[string]string{
			"tracker_code": "t1",
			"latitude":     "0.0",
			"longitude":    "36.8219",
		}
		state, err := classifier.Classify(ctx, "t1", tampered, mac)
		require.NoError(t, err)
		assert.Equal(t, StateFailed, state)
	})
}

func TestComputeMAC_ExcludesMACParamAndSortsKeys(t *testing.T) {
	withMAC := map[string]string{"b": "2", "a": "1", MACParam: "ignored"}
	withoutMAC := map[string]string{"a": "1", "b": "2"}

	assert.Equal(t, ComputeMAC("s", withoutMAC), ComputeMAC("s", withMAC))
	assert.NotEqual(t, ComputeMAC("s", withoutMAC), ComputeMAC("other", withoutMAC))
}
