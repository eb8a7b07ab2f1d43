// README: Per-client session state: placeholder user, active itinerary and the in-flight guard.
package session

import (
	"errors"
	"strings"
	"time"

	"myitinerary/internal/modules/itinerary"
	"myitinerary/internal/types"
)

var (
	ErrBusy     = errors.New("a request is already in progress for this session")
	ErrClosed   = errors.New("session closed")
	ErrStale    = errors.New("result belongs to an abandoned request")
	ErrNotFound = errors.New("session not found")
	ErrGateHeld = errors.New("user already has a request in flight")
)

// User is the placeholder identity attached to a session.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func DefaultUser() User {
	return User{Username: "JohnDoe", Email: "john@example.com"}
}

// Key identifies the user for quota and gating. The placeholder user has no key:
// it stands for every anonymous client.
func (u User) Key() string {
	if u.IsPlaceholder() {
		return ""
	}
	if e := strings.ToLower(strings.TrimSpace(u.Email)); e != "" {
		return e
	}
	return strings.TrimSpace(u.Username)
}

func (u User) IsPlaceholder() bool {
	d := DefaultUser()
	return strings.EqualFold(strings.TrimSpace(u.Email), d.Email) &&
		strings.TrimSpace(u.Username) == d.Username
}

// Ticket identifies one Begin call. It is only valid for the session that issued it.
type Ticket struct {
	seq   uint64
	epoch uint64
	op    string
}

func (t Ticket) Operation() string {
	return t.op
}

// Snapshot is a point-in-time copy of a session for presentation.
type Snapshot struct {
	ID         types.ID               `json:"session_id"`
	User       User                   `json:"user"`
	Itinerary  *itinerary.Itinerary   `json:"itinerary"`
	Summary    *itinerary.Summary     `json:"summary"`
	Drift      []itinerary.DriftIssue `json:"drift"`
	Busy       bool                   `json:"busy"`
	Closed     bool                   `json:"closed"`
	CreatedAt  time.Time              `json:"created_at"`
	LastActive time.Time              `json:"last_active"`
}
