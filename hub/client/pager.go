package client

import (
	"github.com/pkg/errors"
	"go.hubsync.dev/core/geojson"
	"go.hubsync.dev/core/hub"
	"go.hubsync.dev/core/metrics"
)

// Pager drives a cursor sequence over the iterate or search endpoint. Each
// Next issues one page fetch carrying the cursor returned by the previous
// page, passed through unmodified. The sequence is complete once a page
// returns no features or no next cursor; under the hub's iteration contract,
// no feature appears in more than one page of the sequence.
type Pager struct {
	client *Client
	conn   hub.Connection
	tag    string
	page   hub.Page
	extra  map[string][]string
	done   bool
}

// NewPager returns a Pager over |tag| (TagIterate or TagSearch), starting
// from |page| (typically with only Limit set).
func NewPager(c *Client, conn hub.Connection, tag string, page hub.Page, extra map[string][]string) (*Pager, error) {
	switch tag {
	case TagIterate, TagSearch:
		// Pass.
	default:
		return nil, errors.Errorf("tag %q is not pageable", tag)
	}
	return &Pager{client: c, conn: conn, tag: tag, page: page, extra: extra}, nil
}

// Done is true once the sequence is exhausted.
func (p *Pager) Done() bool { return p.done }

// Next fetches and returns the next page, blocking until it completes.
// It returns (nil, nil) once the sequence is exhausted.
func (p *Pager) Next() (*geojson.FeatureCollection, error) {
	if p.done {
		return nil, nil
	}

	var r *Reply
	if p.tag == TagIterate {
		r = p.client.LoadFeaturesIterate(p.conn, p.page, p.extra)
	} else {
		r = p.client.LoadFeaturesSearch(p.conn, p.page, p.extra)
	}

	var fc, err = r.FeatureCollection()
	if err != nil {
		return nil, err
	}
	metrics.HubPagesTotal.Inc()
	metrics.HubFeaturesTotal.Add(float64(len(fc.Features)))

	if len(fc.Features) == 0 || fc.Handle == "" {
		p.done = true
	}
	p.page.Handle = fc.Handle

	if len(fc.Features) == 0 {
		return nil, nil
	}
	return fc, nil
}
