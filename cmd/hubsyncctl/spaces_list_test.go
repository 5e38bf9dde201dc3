package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.hubsync.dev/core/hub"
)

func TestRenderSpacesTable(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, renderSpacesTable(&buf, []hub.SpaceMeta{
		{ID: "abc", Title: "A Space", Tags: []string{"roads", "rivers"}, License: "ODbL"},
		{ID: "def", Title: "Another"},
	}))

	var out = buf.String()
	for _, want := range []string{"abc", "A Space", "roads,rivers", "ODbL", "def"} {
		require.Contains(t, out, want)
	}
	// Header cells render regardless of the writer's case formatting.
	require.Contains(t, strings.ToLower(out), "license")
}
