package client

import (
	"net/url"
	"time"

	"go.hubsync.dev/core/hub"
)

// FetchStatistics GETs the space's statistics document. The reply is
// unconditionally aborted if it does not complete within StatisticsTimeout.
func (c *Client) FetchStatistics(conn hub.Connection) *Reply {
	var r = c.getSpace(conn, TagStatistics, hub.EndpointStatistics)
	time.AfterFunc(StatisticsTimeout, r.Abort)
	return r
}

// FetchCount GETs the space's feature count document.
func (c *Client) FetchCount(conn hub.Connection) *Reply {
	return c.getSpace(conn, TagCount, hub.EndpointCount)
}

// FetchMeta GETs the space's metadata document. Recently fetched documents
// are served from an in-process cache; cached Replies have Cached set.
func (c *Client) FetchMeta(conn hub.Connection) *Reply {
	var key = metaCacheKey(conn)

	if body, ok := c.metaCache.Get(key); ok {
		var r = newReply(newContext(conn, TagSpaceMeta), nil)
		r.StatusCode, r.Body, r.Cached = 200, body.([]byte), true
		c.finish(r, nil)
		return r
	}
	var r = c.getSpace(conn, TagSpaceMeta, hub.EndpointSpace)
	go func() {
		if r.Err() == nil {
			c.metaCache.Add(key, r.Body)
		}
	}()
	return r
}

// ListSpaces GETs the listing of spaces visible to the credential, with
// rights included.
func (c *Client) ListSpaces(conn hub.Connection) *Reply {
	var rctx = newContext(conn, TagSpaces)
	var req, err = hub.NewRequest(conn, hub.RequestSpec{
		Method:   "GET",
		Endpoint: hub.EndpointSpaces,
		Params:   url.Values{"includeRights": {"true"}},
	})
	if err != nil {
		return c.failed(rctx, err)
	}
	return c.issue(req, rctx)
}

// AddSpace POSTs a new space. Server-owned fields of |meta| are scrubbed
// from the payload.
func (c *Client) AddSpace(conn hub.Connection, meta hub.SpaceMeta) *Reply {
	var rctx = newContext(conn, TagAddSpace)
	var req, err = hub.NewRequest(conn, hub.RequestSpec{
		Method:   "POST",
		Endpoint: hub.EndpointSpaces,
		Body:     hub.ScrubForCreate(meta),
		BodyMode: hub.BodyJSON,
	})
	if err != nil {
		return c.failed(rctx, err)
	}
	return c.issue(req, rctx)
}

// EditSpace PATCHes the space's metadata document.
func (c *Client) EditSpace(conn hub.Connection, meta hub.SpaceMeta) *Reply {
	c.metaCache.Remove(metaCacheKey(conn))

	var rctx = newContext(conn, TagEditSpace)
	var req, err = hub.NewRequest(conn, hub.RequestSpec{
		Method:   "PATCH",
		Endpoint: hub.EndpointSpace,
		Body:     meta,
		BodyMode: hub.BodyJSON,
	})
	if err != nil {
		return c.failed(rctx, err)
	}
	return c.issue(req, rctx)
}

// DeleteSpace DELETEs the space.
func (c *Client) DeleteSpace(conn hub.Connection) *Reply {
	c.metaCache.Remove(metaCacheKey(conn))

	var rctx = newContext(conn, TagDelSpace)
	var req, err = hub.NewRequest(conn, hub.RequestSpec{
		Method:   "DELETE",
		Endpoint: hub.EndpointSpace,
	})
	if err != nil {
		return c.failed(rctx, err)
	}
	return c.issue(req, rctx)
}

func (c *Client) getSpace(conn hub.Connection, tag, endpoint string) *Reply {
	var rctx = newContext(conn, tag)
	var req, err = hub.NewRequest(conn, hub.RequestSpec{
		Method:   "GET",
		Endpoint: endpoint,
	})
	if err != nil {
		return c.failed(rctx, err)
	}
	return c.issue(req, rctx)
}

// failed resolves and dispatches a Reply which never left the client.
func (c *Client) failed(rctx Context, err error) *Reply {
	var r = newReply(rctx, nil)
	c.finish(r, err)
	return r
}

func metaCacheKey(conn hub.Connection) string {
	return conn.Server + "|" + conn.SpaceID
}
