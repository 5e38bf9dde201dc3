package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"go.hubsync.dev/core/async"
	"go.hubsync.dev/core/geojson"
	"go.hubsync.dev/core/hub"
)

// Reply is the in-flight handle of one hub call. It implements
// async.OpFuture: Done selects when the call completes, and Err reports its
// final error. The correlation Context is populated before the call is
// issued and never mutated afterward.
type Reply struct {
	// Context correlates this Reply with the call which produced it.
	Context Context
	// StatusCode of the hub response. Zero if the call never completed.
	StatusCode int
	// Body of the hub response, decompressed.
	Body []byte
	// Cached is set if the Reply was served from the client's metadata
	// cache rather than the network.
	Cached bool

	op        *async.AsyncOperation
	cancel    context.CancelFunc
	abortOnce sync.Once
}

// Done selects when the call has completed.
func (r *Reply) Done() <-chan struct{} { return r.op.Done() }

// Err blocks until Done and returns the call's final error.
func (r *Reply) Err() error { return r.op.Err() }

// Abort cancels the in-flight call. Abort is idempotent and may be invoked
// multiple times; aborting an already-completed Reply is a no-op.
func (r *Reply) Abort() {
	r.abortOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
	})
}

// FeatureCollection decodes the reply body as a feature collection page.
func (r *Reply) FeatureCollection() (*geojson.FeatureCollection, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	return geojson.ParseFeatureCollection(r.Body)
}

// SpaceMeta decodes the reply body as a space metadata document.
func (r *Reply) SpaceMeta() (hub.SpaceMeta, error) {
	var meta hub.SpaceMeta
	if err := r.Err(); err != nil {
		return meta, err
	}
	if err := json.Unmarshal(r.Body, &meta); err != nil {
		return meta, errors.WithMessage(err, "parsing space meta")
	}
	return meta, nil
}

// Spaces decodes the reply body as a space listing.
func (r *Reply) Spaces() ([]hub.SpaceMeta, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	var spaces []hub.SpaceMeta
	if err := json.Unmarshal(r.Body, &spaces); err != nil {
		return nil, errors.WithMessage(err, "parsing space listing")
	}
	return spaces, nil
}

// newReply returns a Reply of the given Context, not yet resolved.
func newReply(rctx Context, cancel context.CancelFunc) *Reply {
	return &Reply{Context: rctx, op: async.NewAsyncOperation(), cancel: cancel}
}
