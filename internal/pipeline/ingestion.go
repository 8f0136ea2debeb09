// Package pipeline orchestrates one inbound event: parse, authenticate,
// authorize, persist, publish.
package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"geo_tracker/internal/auth"
	"geo_tracker/internal/geo"
	"geo_tracker/internal/models"
	"geo_tracker/internal/store"
)

// Verifier produces the authentication state for one request. The MAC
// mechanics live behind this interface.
type Verifier interface {
	Classify(ctx context.Context, trackerCode string, params map[string]string, mac string) (auth.State, error)
}

// Publisher receives accepted events for best-effort realtime distribution.
type Publisher interface {
	Publish(trackerID uint, message []byte)
}

// Result reports the outcome of one ingestion attempt. Denied is a normal
// control-flow outcome, not an error.
type Result struct {
	Denied bool
	State  auth.State
	Event  *models.Event
}

// Pipeline wires the ingestion sequence together. Policy and the realtime
// toggle are fixed at construction.
type Pipeline struct {
	store     *store.EventStore
	verifier  Verifier
	policy    auth.Policy
	publisher Publisher
	realtime  bool
}

func New(eventStore *store.EventStore, verifier Verifier, policy auth.Policy, publisher Publisher, realtime bool) *Pipeline {
	return &Pipeline{
		store:     eventStore,
		verifier:  verifier,
		policy:    policy,
		publisher: publisher,
		realtime:  realtime,
	}
}

// Ingest processes one inbound event payload. Authorization denial
// short-circuits before any persistence attempt. Persistence failures
// propagate; nothing of a failed event survives.
func (p *Pipeline) Ingest(ctx context.Context, params map[string]string) (Result, error) {
	data, err := ParsePayload(params)
	if err != nil {
		return Result{}, err
	}

	state, err := p.verifier.Classify(ctx, data.TrackerCode, params, params[auth.MACParam])
	if err != nil {
		return Result{}, fmt.Errorf("authentication check failed: %w", err)
	}

	if !p.policy.Allow(state) {
		logrus.WithFields(logrus.Fields{
			"tracker_code": data.TrackerCode,
			"auth_state":   state,
		}).Info("Event ingestion denied.")
		return Result{Denied: true, State: state}, nil
	}

	event, err := p.store.Create(ctx, data)
	if err != nil {
		return Result{}, fmt.Errorf("event persistence failed: %w", err)
	}

	if p.realtime && p.publisher != nil {
		if message, err := geo.EventMessage(event); err != nil {
			logrus.WithError(err).WithField("event_id", event.ID).Warn("Failed to serialize event for realtime publish.")
		} else {
			p.publisher.Publish(event.TrackerID, message)
		}
	}

	logrus.WithFields(logrus.Fields{
		"tracker_id": event.TrackerID,
		"session_id": event.EventSessionID,
		"event_id":   event.ID,
	}).Debug("Event ingested.")

	return Result{State: state, Event: event}, nil
}
