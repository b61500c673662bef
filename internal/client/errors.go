// Package client is the dashboard-side consumer of the orders API: a typed
// transport wrapper, a query cache keyed by filter, and the optimistic
// payment-mutation coordinator.
package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed request.
type ErrorKind int

const (
	// KindValidation is malformed or out-of-range input (400-equivalent).
	KindValidation ErrorKind = iota + 1
	// KindNotFound is a reference to an order that does not exist. Terminal;
	// retrying cannot succeed.
	KindNotFound
	// KindNetwork is a transport failure before any response arrived.
	KindNetwork
	// KindServer is an unexpected server-side failure (500-equivalent).
	KindServer
)

// RequestError carries the taxonomy kind, the HTTP status when one was
// received, the technical message, and a user-facing message safe to surface
// in a notification.
type RequestError struct {
	Kind        ErrorKind
	Status      int
	Message     string
	UserMessage string
	Details     interface{}
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

// User returns the user-facing message, falling back to the technical one.
func (e *RequestError) User() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.Message
}

// IsKind reports whether err is a RequestError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == kind
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return IsKind(err, KindNetwork) }
