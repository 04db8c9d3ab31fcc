package meter

import (
	"errors"
	"fmt"

	"github.com/j-veylop/manx-utilities-tui/internal/models"
)

// AuthenticationError is returned when the auth endpoint rejects the credentials.
type AuthenticationError struct {
	Err        error
	Body       string
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Body)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ReadingFetchError is returned when the readings endpoint answers with a
// non-success status, or still fails after one re-authentication.
type ReadingFetchError struct {
	Err         error
	Body        string
	StatusCode  int
	ReadingType models.ReadingType
	Retried     bool
}

func (e *ReadingFetchError) Error() string {
	prefix := "failed to get " + e.ReadingType.String() + " readings"
	if e.Retried {
		prefix += " after token refresh"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (status %d): %v", prefix, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s (status %d): %s", prefix, e.StatusCode, e.Body)
}

func (e *ReadingFetchError) Unwrap() error {
	return e.Err
}

// NetworkError wraps a transport-level failure such as a refused
// connection or a timeout.
type NetworkError struct {
	Err error
	Op  string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Error kinds reported by Classify.
const (
	KindAuthentication = "authentication"
	KindFetch          = "fetch"
	KindNetwork        = "network"
	KindOther          = "other"
)

// Classify returns the kind of a client error and the HTTP status code
// it carries, if any.
func Classify(err error) (kind string, status int) {
	var authErr *AuthenticationError
	var fetchErr *ReadingFetchError
	var netErr *NetworkError

	switch {
	case errors.As(err, &authErr):
		return KindAuthentication, authErr.StatusCode
	case errors.As(err, &fetchErr):
		return KindFetch, fetchErr.StatusCode
	case errors.As(err, &netErr):
		return KindNetwork, 0
	default:
		return KindOther, 0
	}
}
