package session

import "github.com/connectedautocare/console-gateway/pkg/platform"

// Status names the authentication state of a session slot.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusVerifying       Status = "verifying"
	StatusAuthenticated   Status = "authenticated"
)

// State is a point-in-time snapshot of a session slot. Authenticated holds
// iff User is present and the last verification of the persisted token
// succeeded.
type State struct {
	Status  Status
	User    *platform.User
	Loading bool
}

// Authenticated reports whether the snapshot represents a live session.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// Result is the outcome of a login, register, or change-password call.
// Operations resolve to a Result instead of propagating errors.
type Result struct {
	OK      bool
	User    *platform.User
	Message string
}
