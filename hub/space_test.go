package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpaceMetaRoundTrip(t *testing.T) {
	var doc = `{
		"id": "abc",
		"title": "My Space",
		"tags": ["a", "b"],
		"license": "MIT",
		"copyright": [{"label": "© Example"}, {"alt": "alt text"}],
		"owner": "someone",
		"custom": {"nested": 1}
	}`

	var meta SpaceMeta
	require.NoError(t, json.Unmarshal([]byte(doc), &meta))

	require.Equal(t, "abc", meta.ID)
	require.Equal(t, "My Space", meta.Title)
	require.Equal(t, []string{"a", "b"}, meta.Tags)
	require.Equal(t, "MIT", meta.License)
	require.Len(t, meta.Copyright, 2)
	require.Contains(t, meta.Extra, "owner")
	require.Contains(t, meta.Extra, "custom")

	var b, err = json.Marshal(meta)
	require.NoError(t, err)
	require.JSONEq(t, doc, string(b))
}

func TestParseCopyright(t *testing.T) {
	var out = ParseCopyright([]Copyright{
		{Label: "© One"},
		{Alt: "two"},
		{},
	})
	require.Equal(t, []string{"© One", "two"}, out)
}

func TestScrubForCreate(t *testing.T) {
	var meta SpaceMeta
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "abc",
		"title": "t",
		"owner": "o",
		"createdAt": 1,
		"updatedAt": 2,
		"keep": true
	}`), &meta))

	var scrubbed = ScrubForCreate(meta)
	require.Empty(t, scrubbed.ID)
	require.NotContains(t, scrubbed.Extra, "owner")
	require.NotContains(t, scrubbed.Extra, "createdAt")
	require.NotContains(t, scrubbed.Extra, "updatedAt")
	require.Contains(t, scrubbed.Extra, "keep")

	// The input is not mutated.
	require.Equal(t, "abc", meta.ID)
	require.Contains(t, meta.Extra, "owner")
}

func TestConnectionRoundTrip(t *testing.T) {
	var conn = Connection{
		Server:  "https://hub.example.com",
		SpaceID: "abc",
		Token:   "secret",
		Headers: map[string]string{"X-App": "hubsync"},
	}
	var s, err = conn.MarshalString()
	require.NoError(t, err)

	out, err := ParseConnection(s)
	require.NoError(t, err)
	require.Equal(t, conn, out)
}
