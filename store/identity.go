package store

import (
	"fmt"
	"strings"
	"time"
)

// Identity deterministically derives a store's backing file name. Two stores
// of the same space and tags but different uniqueness tokens never collide.
type Identity struct {
	// SpaceID of the synchronized space.
	SpaceID string `json:"space_id"`
	// Tags is the free-form tag string the store was filtered with.
	Tags string `json:"tags"`
	// Unique is the store's uniqueness token.
	Unique int64 `json:"unique"`
}

// Filename returns the backing file name of the Identity, with extension
// |ext| (eg "gpkg").
func (id Identity) Filename(ext string) string {
	var tags = strings.ReplaceAll(id.Tags, ",", "_")
	return fmt.Sprintf("%s_%s_%d.%s", id.SpaceID, tags, id.Unique, ext)
}

// NewUnique returns a fresh uniqueness token, derived from the wall clock at
// tenth-of-a-second resolution.
func NewUnique() int64 { return time.Now().UnixNano() / int64(100*time.Millisecond) }
