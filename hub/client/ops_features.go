package client

import (
	"net/url"

	"github.com/pkg/errors"
	"go.hubsync.dev/core/geojson"
	"go.hubsync.dev/core/hub"
)

// LoadFeaturesByBbox GETs one page of features intersecting |bbox|. |extra|
// carries paging and filter parameters, merged verbatim into the query
// string and echoed into the reply Context.
func (c *Client) LoadFeaturesByBbox(conn hub.Connection, bbox hub.Bbox, extra url.Values) *Reply {
	var rctx = newContext(conn, TagBbox)
	rctx.Bbox, rctx.Params = &bbox, extra

	var params, err = bbox.Query()
	if err != nil {
		return c.failed(rctx, err)
	}
	return c.load(rctx, &hub.RequestSpec{
		Method:   "GET",
		Endpoint: hub.EndpointBbox,
		Params:   hub.MergeQuery(params, extra),
	})
}

// LoadFeaturesByTile GETs one page of features of the tile named by
// |tileSchema| and |tileID|.
func (c *Client) LoadFeaturesByTile(conn hub.Connection, tileID, tileSchema string, page hub.Page, extra url.Values) *Reply {
	if tileSchema == "" {
		tileSchema = "quadkey"
	}
	var rctx = newContext(conn, TagTile)
	rctx.TileID, rctx.TileSchema = tileID, tileSchema
	rctx.Cursor, rctx.Params = page.Handle, extra

	var params, err = page.Query()
	if err != nil {
		return c.failed(rctx, err)
	}
	return c.load(rctx, &hub.RequestSpec{
		Method:     "GET",
		Endpoint:   hub.EndpointTile,
		TileID:     tileID,
		TileSchema: tileSchema,
		Params:     hub.MergeQuery(params, extra),
	})
}

// LoadFeaturesIterate GETs one page of the space's ordered feature
// iteration. Driven with the cursor of each prior page, a sequence of
// iterate calls yields every feature exactly once.
func (c *Client) LoadFeaturesIterate(conn hub.Connection, page hub.Page, extra url.Values) *Reply {
	return c.loadPaged(conn, TagIterate, hub.EndpointIterate, page, extra)
}

// LoadFeaturesSearch GETs one page of a property-filtered feature search.
func (c *Client) LoadFeaturesSearch(conn hub.Connection, page hub.Page, extra url.Values) *Reply {
	return c.loadPaged(conn, TagSearch, hub.EndpointSearch, page, extra)
}

func (c *Client) loadPaged(conn hub.Connection, tag, endpoint string, page hub.Page, extra url.Values) *Reply {
	var rctx = newContext(conn, tag)
	rctx.Cursor, rctx.Params = page.Handle, extra

	var params, err = page.Query()
	if err != nil {
		return c.failed(rctx, err)
	}
	return c.load(rctx, &hub.RequestSpec{
		Method:   "GET",
		Endpoint: endpoint,
		Params:   hub.MergeQuery(params, extra),
	})
}

func (c *Client) load(rctx Context, spec *hub.RequestSpec) *Reply {
	var req, err = hub.NewRequest(rctx.Conn, *spec)
	if err != nil {
		return c.failed(rctx, err)
	}
	return c.issue(req, rctx)
}

// AddFeatures POSTs features with merge semantics: an existing feature is
// augmented with the payload, and attributes not named by the payload are
// preserved.
func (c *Client) AddFeatures(conn hub.Connection, fc *geojson.FeatureCollection, extra url.Values) *Reply {
	return c.writeFeatures(conn, "POST", fc, extra)
}

// ModifyFeatures is an alias of AddFeatures.
func (c *Client) ModifyFeatures(conn hub.Connection, fc *geojson.FeatureCollection, extra url.Values) *Reply {
	return c.AddFeatures(conn, fc, extra)
}

// ReplaceFeatures PUTs features with replace semantics: an existing
// feature's attribute set is wholly replaced by the payload.
func (c *Client) ReplaceFeatures(conn hub.Connection, fc *geojson.FeatureCollection, extra url.Values) *Reply {
	return c.writeFeatures(conn, "PUT", fc, extra)
}

func (c *Client) writeFeatures(conn hub.Connection, method string, fc *geojson.FeatureCollection, extra url.Values) *Reply {
	var rctx = newContext(conn, TagAddFeat)
	rctx.Params = extra

	// A "tags" parameter is applied with tag-union semantics on the hub
	// side, via its "addTags" spelling.
	var params = hub.MergeQuery(nil, extra)
	if tags, ok := params["tags"]; ok {
		delete(params, "tags")
		params["addTags"] = tags
	}
	return c.load(rctx, &hub.RequestSpec{
		Method:   method,
		Endpoint: hub.EndpointFeatures,
		Params:   params,
		Body:     fc,
		BodyMode: hub.BodyGeoJSON,
	})
}

// DeleteFeatures DELETEs the features named by |ids|. The id list must be
// non-empty: deletion of "everything" must never arise from an empty input.
func (c *Client) DeleteFeatures(conn hub.Connection, ids []string, extra url.Values) *Reply {
	var rctx = newContext(conn, TagDelFeat)
	rctx.Params = extra

	if len(ids) == 0 {
		return c.failed(rctx, errors.New("DeleteFeatures requires a non-empty id list"))
	}
	var params = hub.MergeQuery(nil, extra)
	params["id"] = ids // Serialized comma-joined.

	return c.load(rctx, &hub.RequestSpec{
		Method:   "DELETE",
		Endpoint: hub.EndpointFeatures,
		Params:   params,
	})
}
