package gateway

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the API rejects the bearer token (HTTP 401)
// or when an authenticated call is attempted without one.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError carries a message meant for the user verbatim: either a
// local validation failure or a server-supplied detail.
type ValidationError struct {
	Message string
	Local   bool
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NetworkError covers transport failures, unexpected statuses and undecodable bodies.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err means the session must be torn down.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsValidation reports whether err is a local or server validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports whether err is a generic, retryable failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
