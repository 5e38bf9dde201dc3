package client

import (
	"fmt"
	"net/url"
)

// TransportError is a network-level failure of a hub call: connection
// refused, DNS failure, or a timeout-triggered abort. It carries the reply
// tag and call parameters so the caller can decide whether to retry the
// specific page or query.
type TransportError struct {
	Tag    string
	Params url.Values
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %s", e.Tag, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error { return e.Err }

// Cause returns the underlying transport error (pkg/errors compatibility).
func (e *TransportError) Cause() error { return e.Err }

// RemoteError is a hub-side rejection: the request completed but the hub
// answered with a non-success status.
type RemoteError struct {
	Tag        string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s request: %s (%s)", e.Tag, e.Status, string(e.Body))
}
