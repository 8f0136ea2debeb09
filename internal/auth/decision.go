// Package auth classifies inbound requests into authentication states and
// decides whether a state may write events.
package auth

// State is the authentication verdict for one request. Every request is
// classified into exactly one state.
type State string

const (
	// StateAuthenticated means the MAC matched the tracker's shared secret.
	StateAuthenticated State = "authenticated-tracker"
	// StateNotAuthenticated means the request carried no MAC at all.
	StateNotAuthenticated State = "not-authenticated"
	// StateUnknownTracker means the tracker code has never been seen.
	StateUnknownTracker State = "unknown-tracker"
	// StateFailed means a MAC was supplied but did not verify.
	StateFailed State = "authentication-failed"
)

// Policy holds the ingestion authorization flags, fixed at construction time.
type Policy struct {
	RequireAuthentication bool
	AllowTrackerCreation  bool
}

// Allow maps an authentication state to an allow/deny verdict. Unrecognized
// states deny (fail closed).
func (p Policy) Allow(state State) bool {
	switch state {
	case StateAuthenticated:
		return true
	case StateNotAuthenticated:
		return !p.RequireAuthentication
	case StateUnknownTracker:
		return p.AllowTrackerCreation
	case StateFailed:
		return false
	default:
		return false
	}
}
