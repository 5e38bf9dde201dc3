package geojson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindClassification(t *testing.T) {
	var cases = []struct {
		geom *Geometry
		kind string
	}{
		{nil, KindNoGeom},
		{&Geometry{Type: "Point"}, KindPoint},
		{&Geometry{Type: "MultiPoint"}, KindPoint},
		{&Geometry{Type: "LineString"}, KindLine},
		{&Geometry{Type: "MultiLineString"}, KindLine},
		{&Geometry{Type: "Polygon"}, KindPolygon},
		{&Geometry{Type: "MultiPolygon"}, KindPolygon},
		{&Geometry{Type: "GeometryCollection"}, KindUnknown},
		{&Geometry{Type: "frob"}, KindUnknown},
	}
	for _, tc := range cases {
		require.Equal(t, tc.kind, Kind(tc.geom))
	}
}

func TestKindOrdering(t *testing.T) {
	var prev = -1
	for _, kind := range []string{KindPoint, KindLine, KindPolygon, KindUnknown, KindNoGeom} {
		var order, ok = KindOrder(kind)
		require.True(t, ok)
		require.Greater(t, order, prev)
		prev = order
	}
	var _, ok = KindOrder("bogus")
	require.False(t, ok)
}

func TestGroupByKindOrdersBatches(t *testing.T) {
	var features = []Feature{
		{ID: "f1", Geometry: &Geometry{Type: "Polygon"}},
		{ID: "f2", Geometry: &Geometry{Type: "Point"}},
		{ID: "f3"},
		{ID: "f4", Geometry: &Geometry{Type: "Point"}},
	}
	var batches = GroupByKind(features)
	require.Len(t, batches, 3)

	require.Equal(t, KindPoint, batches[0].Kind)
	require.Equal(t, KindPolygon, batches[1].Kind)
	require.Equal(t, KindNoGeom, batches[2].Kind)

	// Input order is preserved within a batch.
	require.Equal(t, "f2", batches[0].Features[0].ID)
	require.Equal(t, "f4", batches[0].Features[1].ID)
}

func TestFeatureCollectionHandleVariants(t *testing.T) {
	var cases = []struct {
		doc    string
		handle string
	}{
		{`{"type": "FeatureCollection", "features": [], "handle": "abc"}`, "abc"},
		{`{"type": "FeatureCollection", "features": [], "handle": 42}`, "42"},
		{`{"type": "FeatureCollection", "features": [], "handle": null}`, ""},
		{`{"type": "FeatureCollection", "features": []}`, ""},
	}
	for _, tc := range cases {
		var fc, err = ParseFeatureCollection([]byte(tc.doc))
		require.NoError(t, err)
		require.Equal(t, tc.handle, fc.Handle)
	}
}

func TestFeatureCoordinatesPassThrough(t *testing.T) {
	var doc = `{"type": "Feature", "id": "f1",
		"geometry": {"type": "Point", "coordinates": [1.5, 2.5]},
		"properties": {"name": "a"}}`

	var f Feature
	require.NoError(t, json.Unmarshal([]byte(doc), &f))
	require.Equal(t, "f1", f.ID)
	require.JSONEq(t, `[1.5, 2.5]`, string(f.Geometry.Coordinates))

	var b, err = json.Marshal(f)
	require.NoError(t, err)
	require.JSONEq(t, doc, string(b))
}
