// Package geojson models hub feature payloads: features with opaque
// geometries and properties, feature collections carrying pagination
// cursors, and classification of geometries into the coarse kinds used to
// partition a local store.
package geojson

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Geometry is a GeoJSON geometry. Coordinates are carried opaquely: the
// store persists them verbatim and never interprets them.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	// Geometries is set for GeometryCollection.
	Geometries json.RawMessage `json:"geometries,omitempty"`
}

// Feature is one GeoJSON feature. ID is the hub's stable feature identifier
// and is the deduplication key of the local store.
type Feature struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id,omitempty"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// FeatureCollection is one page of features as returned by the hub. Handle,
// when present, is the opaque cursor of the next page.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Handle   string    `json:"handle,omitempty"`
}

// NewFeatureCollection returns a FeatureCollection of the given features.
func NewFeatureCollection(features []Feature) *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}

// ParseFeatureCollection decodes a FeatureCollection from a reply body.
func ParseFeatureCollection(b []byte) (*FeatureCollection, error) {
	var fc = new(FeatureCollection)
	if err := json.Unmarshal(b, fc); err != nil {
		return nil, errors.WithMessage(err, "parsing feature collection")
	}
	return fc, nil
}

// UnmarshalJSON decodes the FeatureCollection, tolerating numeric cursors
// (some hub deployments return "handle" as a JSON number).
func (fc *FeatureCollection) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type     string          `json:"type"`
		Features []Feature       `json:"features"`
		Handle   json.RawMessage `json:"handle"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	fc.Type, fc.Features = raw.Type, raw.Features

	if len(raw.Handle) == 0 || string(raw.Handle) == "null" {
		fc.Handle = ""
	} else if raw.Handle[0] == '"' {
		if err := json.Unmarshal(raw.Handle, &fc.Handle); err != nil {
			return errors.WithMessage(err, "decoding handle")
		}
	} else {
		fc.Handle = string(raw.Handle)
	}
	return nil
}
