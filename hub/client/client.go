package client

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.hubsync.dev/core/hub"
	"go.hubsync.dev/core/keepalive"
	"go.hubsync.dev/core/metrics"
)

const (
	// StatisticsTimeout bounds a FetchStatistics call. The reply is
	// unconditionally aborted when it elapses; no other call installs a
	// client-side timeout.
	StatisticsTimeout = 1000 * time.Millisecond

	// metaCacheSize bounds the count of cached space-metadata replies.
	metaCacheSize = 256
)

// Client issues asynchronous operations against the hub's space and feature
// endpoints. Completed replies are dispatched, one at a time, to the handler
// registered at construction (if any): the handler never runs concurrently
// with itself.
type Client struct {
	hc      *http.Client
	handler func(*Reply)

	// metaCache caches space-metadata reply bodies, keyed by
	// server + space ID. Entries are dropped on space edit or delete.
	metaCache *lru.Cache

	dispatchCh chan *Reply
	stopCh     chan struct{}
}

// defaultHTTPClient dials with TCP keep-alives so dead hub connections
// eventually go away.
var defaultHTTPClient = &http.Client{
	Transport: &http.Transport{DialContext: keepalive.DialerFunc},
}

// NewClient returns a Client using |hc| (or a keep-alive transport if nil).
// |handler|, if non-nil, is invoked with each completed Reply from a single
// dispatch goroutine. The caller must Close the Client when done with it.
func NewClient(hc *http.Client, handler func(*Reply)) (*Client, error) {
	if hc == nil {
		hc = defaultHTTPClient
	}
	var cache, err = lru.New(metaCacheSize)
	if err != nil {
		return nil, err
	}
	var c = &Client{
		hc:         hc,
		handler:    handler,
		metaCache:  cache,
		dispatchCh: make(chan *Reply, 64),
		stopCh:     make(chan struct{}),
	}
	go c.serveDispatch()
	return c, nil
}

// Close stops the completion dispatcher. In-flight calls continue to resolve
// their Replies, but no further handler invocations occur.
func (c *Client) Close() { close(c.stopCh) }

func (c *Client) serveDispatch() {
	for {
		select {
		case r := <-c.dispatchCh:
			if c.handler != nil {
				c.handler(r)
			}
		case <-c.stopCh:
			return
		}
	}
}

// issue starts |req| in the background and returns its Reply immediately.
func (c *Client) issue(req *http.Request, rctx Context) *Reply {
	var ctx, cancel = context.WithCancel(context.Background())
	var r = newReply(rctx, cancel)

	req = req.WithContext(ctx)
	req.Header.Set("Accept-Encoding", "gzip")

	go c.do(r, req)
	return r
}

func (c *Client) do(r *Reply, req *http.Request) {
	var started = time.Now()
	var resp, err = c.hc.Do(req)

	if err != nil {
		metrics.HubRequestTotal.WithLabelValues(r.Context.Tag, metrics.Fail).Inc()
		c.finish(r, &TransportError{Tag: r.Context.Tag, Params: r.Context.Params, Err: err})
		return
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		metrics.HubRequestTotal.WithLabelValues(r.Context.Tag, metrics.Fail).Inc()
		c.finish(r, &TransportError{Tag: r.Context.Tag, Params: r.Context.Params, Err: err})
		return
	}
	r.StatusCode, r.Body = resp.StatusCode, body
	metrics.HubReadBytesTotal.Add(float64(len(body)))

	log.WithFields(log.Fields{
		"tag":       r.Context.Tag,
		"requestID": r.Context.RequestID,
		"status":    resp.StatusCode,
		"bytes":     len(body),
		"took":      time.Since(started),
	}).Debug("hub reply")

	if resp.StatusCode >= 300 {
		metrics.HubRequestTotal.WithLabelValues(r.Context.Tag, metrics.Fail).Inc()
		c.finish(r, &RemoteError{
			Tag:        r.Context.Tag,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		})
		return
	}
	metrics.HubRequestTotal.WithLabelValues(r.Context.Tag, metrics.Ok).Inc()
	c.finish(r, nil)
}

func (c *Client) finish(r *Reply, err error) {
	r.op.Resolve(err)

	select {
	case c.dispatchCh <- r:
	case <-c.stopCh:
	}
}

// readBody drains the response body, decompressing it if the hub served a
// gzip content coding.
func readBody(resp *http.Response) ([]byte, error) {
	var rd io.Reader = resp.Body

	if resp.Header.Get("Content-Encoding") == "gzip" {
		var gz, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.WithMessage(err, "opening gzip reader")
		}
		defer gz.Close()
		rd = gz
	}
	return io.ReadAll(rd)
}

// newContext builds the correlation Context of a call.
func newContext(conn hub.Connection, tag string) Context {
	return Context{Conn: conn, Tag: tag, RequestID: uuid.NewString()}
}
