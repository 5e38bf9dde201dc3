package geojson

import "sort"

// Geometry kinds used to partition a local store. Multiple GeoJSON geometry
// types collapse into one kind; a kind maps one-to-one onto a family of
// backing tables.
const (
	KindPoint   = "Point"
	KindLine    = "Line"
	KindPolygon = "Polygon"
	KindUnknown = "Unknown geometry"
	KindNoGeom  = "No geometry"
)

// kindOrder is the display ordering of geometry kinds:
// Point < Line < Polygon < Unknown < No-geometry.
var kindOrder = map[string]int{
	KindPoint:   0,
	KindLine:    1,
	KindPolygon: 2,
	KindUnknown: 3,
	KindNoGeom:  4,
}

// Kind classifies a Geometry into its partitioning kind.
func Kind(g *Geometry) string {
	if g == nil {
		return KindNoGeom
	}
	switch g.Type {
	case "Point", "MultiPoint":
		return KindPoint
	case "LineString", "MultiLineString":
		return KindLine
	case "Polygon", "MultiPolygon":
		return KindPolygon
	default:
		return KindUnknown
	}
}

// KindOrder returns the display ordering of |kind|, and whether the kind is
// known.
func KindOrder(kind string) (int, bool) {
	var order, ok = kindOrder[kind]
	return order, ok
}

// Batch is an ordered run of features sharing one geometry kind.
type Batch struct {
	Kind     string
	Features []Feature
}

// GroupByKind partitions |features| into per-kind batches, ordered by kind
// display order. Feature order within a batch follows input order.
func GroupByKind(features []Feature) []Batch {
	var byKind = make(map[string][]Feature)
	for _, f := range features {
		var kind = Kind(f.Geometry)
		byKind[kind] = append(byKind[kind], f)
	}

	var out = make([]Batch, 0, len(byKind))
	for kind, feats := range byKind {
		out = append(out, Batch{Kind: kind, Features: feats})
	}
	sort.Slice(out, func(i, j int) bool {
		return kindOrder[out[i].Kind] < kindOrder[out[j].Kind]
	})
	return out
}
