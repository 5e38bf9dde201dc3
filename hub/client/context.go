package client

import (
	"net/url"

	"go.hubsync.dev/core/hub"
)

// Reply tags identify which endpoint family produced a Reply. The tag, with
// the other Context fields, is the reply's correlation record: a completion
// handler recovers from it what the reply is for without consulting any
// shared lookup table.
const (
	TagStatistics = "statistics"
	TagCount      = "count"
	TagSpaceMeta  = "space_meta"
	TagSpaces     = "spaces"
	TagAddSpace   = "add_space"
	TagEditSpace  = "edit_space"
	TagDelSpace   = "del_space"
	TagBbox       = "bbox"
	TagTile       = "tile"
	TagIterate    = "iterate"
	TagSearch     = "search"
	TagAddFeat    = "add_feat"
	TagDelFeat    = "del_feat"
)

// Context is the correlation record of one in-flight request. It travels on
// the Reply value itself and lives exactly as long as the request / reply
// cycle.
type Context struct {
	// Conn is the originating connection descriptor.
	Conn hub.Connection
	// Tag names the endpoint family which produced the reply.
	Tag string
	// RequestID uniquely identifies the request, for log correlation.
	RequestID string
	// Bbox of a bbox fetch, or nil.
	Bbox *hub.Bbox
	// TileID and TileSchema of a tile fetch.
	TileID, TileSchema string
	// Cursor is the paging cursor this call was issued with. The cursor of
	// the *next* page arrives in the reply body; a sequencing controller
	// compares the two to detect completion.
	Cursor string
	// Params are the extra call parameters, echoed verbatim.
	Params url.Values
}
