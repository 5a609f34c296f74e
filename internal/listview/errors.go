package listview

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse marks a collaborator response that does not match the
	// paginated envelope.
	ErrMalformedResponse = errors.New("listview: malformed response")
	// ErrTransport marks a failed request to the collaborator.
	ErrTransport = errors.New("listview: transport failure")
	// ErrStateNotFound is returned by a Persister when no state is stored for a key.
	ErrStateNotFound = errors.New("listview: persisted state not found")
)

// MalformedResponseError names the field that failed validation.
type MalformedResponseError struct {
	Field  string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("listview: malformed response: %s: %s", e.Field, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return ErrMalformedResponse }

// TransportError reports a network failure or a non-success status from the
// collaborator. The pipeline does not retry.
type TransportError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("listview: transport: %v", e.Err)
	case e.Detail != "":
		return fmt.Sprintf("listview: transport: status %d: %s", e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("listview: transport: status %d", e.StatusCode)
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransport, e.Err}
	}
	return []error{ErrTransport}
}

func malformed(field, reason string) error {
	return &MalformedResponseError{Field: field, Reason: reason}
}
