package hub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Endpoint templates of the hub API. Templates hold placeholders which
// NewRequest resolves from the Connection and RequestSpec.
const (
	EndpointSpaces     = "/spaces"
	EndpointSpace      = "/spaces/{space_id}"
	EndpointStatistics = "/spaces/{space_id}/statistics"
	EndpointCount      = "/spaces/{space_id}/count"
	EndpointBbox       = "/spaces/{space_id}/bbox"
	EndpointTile       = "/spaces/{space_id}/tile/{tile_schema}/{tile_id}"
	EndpointIterate    = "/spaces/{space_id}/iterate"
	EndpointSearch     = "/spaces/{space_id}/search"
	EndpointFeatures   = "/spaces/{space_id}/features"
)

// ErrInvalidEndpoint is returned by NewRequest when an endpoint template
// cannot be resolved, eg because the Connection lacks a space ID which the
// template requires. It is a caller error and is never retried.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// BodyMode selects the serialization of a request body.
type BodyMode int

const (
	// BodyNone indicates the request carries no body.
	BodyNone BodyMode = iota
	// BodyJSON serializes the body as a generic JSON object
	// (eg, a space metadata document).
	BodyJSON
	// BodyGeoJSON serializes the body as a GeoJSON feature payload.
	BodyGeoJSON
)

// RequestSpec bundles the per-call inputs of NewRequest.
type RequestSpec struct {
	// Method is the HTTP verb of the request.
	Method string
	// Endpoint is the endpoint template, eg EndpointIterate.
	Endpoint string
	// Params are query parameters merged into the request URL. A key having
	// multiple values is serialized as a single comma-joined string (used
	// for batch feature-id deletion).
	Params url.Values
	// TileSchema and TileID resolve the tile placeholders of EndpointTile.
	TileSchema, TileID string
	// Body is serialized per BodyMode. Ignored under BodyNone.
	Body     interface{}
	BodyMode BodyMode
}

// NewRequest builds a fully-resolved *http.Request from the Connection and
// RequestSpec. Neither input is mutated. NewRequest performs no network I/O.
func NewRequest(conn Connection, spec RequestSpec) (*http.Request, error) {
	if err := conn.Validate(); err != nil {
		return nil, errors.WithMessage(ErrInvalidEndpoint, err.Error())
	}

	var path = spec.Endpoint
	if strings.Contains(path, "{space_id}") {
		if conn.SpaceID == "" {
			return nil, errors.WithMessagef(ErrInvalidEndpoint,
				"template %q requires a space ID", spec.Endpoint)
		}
		path = strings.ReplaceAll(path, "{space_id}", url.PathEscape(conn.SpaceID))
	}
	if strings.Contains(path, "{tile_schema}") || strings.Contains(path, "{tile_id}") {
		if spec.TileSchema == "" || spec.TileID == "" {
			return nil, errors.WithMessagef(ErrInvalidEndpoint,
				"template %q requires a tile schema and ID", spec.Endpoint)
		}
		path = strings.ReplaceAll(path, "{tile_schema}", url.PathEscape(spec.TileSchema))
		path = strings.ReplaceAll(path, "{tile_id}", url.PathEscape(spec.TileID))
	}
	if strings.Contains(path, "{") {
		return nil, errors.WithMessagef(ErrInvalidEndpoint,
			"template %q has unresolved placeholders", spec.Endpoint)
	}

	var u, err = url.Parse(strings.TrimSuffix(conn.Server, "/") + path)
	if err != nil {
		return nil, errors.WithMessagef(ErrInvalidEndpoint, "parsing URL: %s", err)
	}

	if len(spec.Params) != 0 {
		var query = u.Query()
		for key, vals := range spec.Params {
			query.Set(key, strings.Join(vals, ","))
		}
		u.RawQuery = query.Encode()
	}

	var body *bytes.Reader
	if spec.BodyMode != BodyNone {
		var b []byte
		if b, err = json.Marshal(spec.Body); err != nil {
			return nil, errors.WithMessage(err, "marshalling request body")
		}
		body = bytes.NewReader(b)
	}

	var req *http.Request
	if body != nil {
		req, err = http.NewRequest(spec.Method, u.String(), body)
	} else {
		req, err = http.NewRequest(spec.Method, u.String(), nil)
	}
	if err != nil {
		return nil, errors.WithMessage(err, "building request")
	}

	switch spec.BodyMode {
	case BodyJSON:
		req.Header.Set("Content-Type", "application/json")
	case BodyGeoJSON:
		req.Header.Set("Content-Type", "application/geo+json")
	}
	if conn.Token != "" {
		req.Header.Set("Authorization", "Bearer "+conn.Token)
	}
	for key, val := range conn.Headers {
		req.Header.Set(key, val)
	}
	return req, nil
}
