package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"geo_tracker/internal/registry"
)

// MACParam is the payload key carrying the request MAC.
const MACParam = "mac"

// Classifier verifies the HMAC-SHA256 a tracker computes over its request
// parameters with its shared secret, and maps the result to a State.
type Classifier struct {
	trackers *registry.TrackerRegistry
}

func NewClassifier(trackers *registry.TrackerRegistry) *Classifier {
	return &Classifier{trackers: trackers}
}

// Classify determines the authentication state for one request. The tracker
// lookup happens first: an unseen code is StateUnknownTracker no matter
// what MAC was sent, since there is no secret to verify against.
func (c *Classifier) Classify(ctx context.Context, trackerCode string, params map[string]string, mac string) (State, error) {
	tracker, err := c.trackers.ResolveByCode(ctx, trackerCode)
	if err != nil {
		return StateFailed, err
	}
	if tracker == nil {
		return StateUnknownTracker, nil
	}
	if mac == "" {
		return StateNotAuthenticated, nil
	}
	if tracker.SharedSecret == "" {
		return StateFailed, nil
	}

	expected := ComputeMAC(tracker.SharedSecret, params)
	if hmac.Equal([]byte(expected), []byte(strings.ToLower(mac))) {
		return StateAuthenticated, nil
	}
	return StateFailed, nil
}

// ComputeMAC builds the canonical parameter string (keys sorted, the MAC
// parameter itself excluded, joined as key=value with '&') and returns the
// hex HMAC-SHA256 under secret.
func ComputeMAC(secret string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == MACParam {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var canonical strings.Builder
	for i, k := range keys {
		if i > 0 {
			canonical.WriteByte('&')
		}
		canonical.WriteString(k)
		canonical.WriteByte('=')
		canonical.WriteString(params[k])
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonical.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
