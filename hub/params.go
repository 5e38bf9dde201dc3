package hub

import (
	"net/url"
	"reflect"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/pkg/errors"
)

var paramEncoder = newParamEncoder()

func newParamEncoder() *schema.Encoder {
	var enc = schema.NewEncoder()
	// Floats encode with the fewest digits which round-trip, matching the
	// minimal coordinate values the hub expects (eg "-1.5", not "-1.500000").
	enc.RegisterEncoder(float64(0), func(v reflect.Value) string {
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	})
	return enc
}

// Bbox is a WGS84 bounding box, encoded into the query parameters of a
// bbox feature fetch.
type Bbox struct {
	West  float64 `schema:"west"`
	South float64 `schema:"south"`
	East  float64 `schema:"east"`
	North float64 `schema:"north"`
}

// Query encodes the Bbox as query parameters.
func (b Bbox) Query() (url.Values, error) {
	var v = make(url.Values)
	if err := paramEncoder.Encode(&b, v); err != nil {
		return nil, errors.WithMessage(err, "encoding bbox")
	}
	return v, nil
}

// Page carries paging parameters of the iterate / search / tile family of
// feature fetches. The Handle cursor is an opaque continuation token: it is
// passed through to the hub unmodified, exactly as returned by the prior
// page's reply.
type Page struct {
	// Limit is the maximum feature count of one page.
	Limit int `schema:"limit,omitempty"`
	// Handle is the cursor returned by the previous page, or empty for the
	// first page.
	Handle string `schema:"handle,omitempty"`
	// Tags filters features to those carrying one of the given tags.
	Tags string `schema:"tags,omitempty"`
	// Selection restricts returned feature properties.
	Selection string `schema:"selection,omitempty"`
}

// Query encodes the Page as query parameters.
func (p Page) Query() (url.Values, error) {
	var v = make(url.Values)
	if err := paramEncoder.Encode(&p, v); err != nil {
		return nil, errors.WithMessage(err, "encoding page")
	}
	return v, nil
}

// MergeQuery folds |extra| values into |v|, overwriting on key collision,
// and returns |v|. Either may be nil.
func MergeQuery(v, extra url.Values) url.Values {
	if v == nil {
		v = make(url.Values)
	}
	for key, vals := range extra {
		v[key] = append([]string(nil), vals...)
	}
	return v
}
