package hub

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Connection describes a remote space: the hub base URL, the space
// identifier, the bearer credential, and any custom headers which must
// accompany every request. A Connection is immutable once constructed and is
// passed by value into every client call. It round-trips through JSON with
// credentials included, as it is persisted verbatim into a store's
// provenance record.
type Connection struct {
	// Server is the hub base URL, eg "https://xyz.api.here.com/hub".
	Server string `json:"server"`
	// SpaceID of the space this Connection addresses. May be empty for
	// endpoints which do not name a space (eg, listing spaces).
	SpaceID string `json:"space_id,omitempty"`
	// Token is the bearer credential presented on every request.
	Token string `json:"token,omitempty"`
	// Headers are additional headers applied to every request.
	Headers map[string]string `json:"headers,omitempty"`
}

// Validate returns an error if the Connection is malformed.
func (c Connection) Validate() error {
	if c.Server == "" {
		return errors.New("expected Server")
	}
	return nil
}

// MarshalString returns the JSON serialization of the Connection.
func (c Connection) MarshalString() (string, error) {
	var b, err = json.Marshal(c)
	if err != nil {
		return "", errors.WithMessage(err, "marshalling Connection")
	}
	return string(b), nil
}

// ParseConnection decodes a Connection from its JSON serialization.
func ParseConnection(s string) (Connection, error) {
	var c Connection
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return Connection{}, errors.WithMessage(err, "parsing Connection")
	}
	return c, nil
}
