package hub

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Copyright is one copyright statement attached to a space.
type Copyright struct {
	Label string `json:"label,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// SpaceMeta is the hub-side descriptive record of a space. Fields not
// modelled here are preserved across an unmarshal / marshal round-trip in
// Extra, as a store's provenance record must reproduce the hub's document
// exactly.
type SpaceMeta struct {
	ID        string
	Title     string
	Tags      []string
	License   string
	Copyright []Copyright
	// Extra holds additional key/value metadata of the space document.
	Extra map[string]json.RawMessage
}

// knownSpaceMetaKeys are fields extracted from the space document. All other
// keys pass through Extra.
var knownSpaceMetaKeys = [...]string{"id", "title", "tags", "license", "copyright"}

// UnmarshalJSON decodes a SpaceMeta, retaining unknown keys in Extra.
func (m *SpaceMeta) UnmarshalJSON(b []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}

	var fields = map[string]interface{}{
		"id":        &m.ID,
		"title":     &m.Title,
		"tags":      &m.Tags,
		"license":   &m.License,
		"copyright": &m.Copyright,
	}
	for key, into := range fields {
		if raw, ok := doc[key]; ok {
			if err := json.Unmarshal(raw, into); err != nil {
				return errors.WithMessagef(err, "decoding space %q", key)
			}
			delete(doc, key)
		}
	}
	if len(doc) != 0 {
		m.Extra = doc
	}
	return nil
}

// MarshalJSON encodes a SpaceMeta, merging Extra back into the document.
func (m SpaceMeta) MarshalJSON() ([]byte, error) {
	var doc = make(map[string]interface{}, len(m.Extra)+len(knownSpaceMetaKeys))
	for key, raw := range m.Extra {
		doc[key] = raw
	}
	if m.ID != "" {
		doc["id"] = m.ID
	}
	if m.Title != "" {
		doc["title"] = m.Title
	}
	if len(m.Tags) != 0 {
		doc["tags"] = m.Tags
	}
	if m.License != "" {
		doc["license"] = m.License
	}
	if len(m.Copyright) != 0 {
		doc["copyright"] = m.Copyright
	}
	return json.Marshal(doc)
}

// ParseCopyright flattens copyright statements into ordered display strings.
func ParseCopyright(lst []Copyright) []string {
	var out = make([]string, 0, len(lst))
	for _, c := range lst {
		if c.Label != "" {
			out = append(out, c.Label)
		} else if c.Alt != "" {
			out = append(out, c.Alt)
		}
	}
	return out
}

// ScrubForCreate returns a copy of |m| suitable as the payload of a
// space-creation call: server-owned fields are removed, as the hub rejects
// documents which claim them.
func ScrubForCreate(m SpaceMeta) SpaceMeta {
	m.ID = ""

	var extra map[string]json.RawMessage
	for key, raw := range m.Extra {
		switch key {
		case "owner", "createdAt", "updatedAt":
			// Server-owned.
		default:
			if extra == nil {
				extra = make(map[string]json.RawMessage)
			}
			extra[key] = raw
		}
	}
	m.Extra = extra
	return m
}
