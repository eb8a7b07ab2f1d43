package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var errEmptyChoices = errors.New("api returned empty choices")

// TransportError reports that a completion call did not produce a usable reply.
// StatusCode is 0 when the request never completed (connectivity, timeout, cancellation)
// and holds the HTTP status when the remote side answered with a failure.
type TransportError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: transport failure: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: status=%d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether the call failed before any response arrived.
func (e *TransportError) IsNetwork() bool {
	return e.StatusCode == 0
}

// IsAuth reports whether the remote side rejected the credential.
func (e *TransportError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
