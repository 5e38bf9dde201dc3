package main

import (
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"go.hubsync.dev/core/hub"
	"go.hubsync.dev/core/hub/client"
	mbp "go.hubsync.dev/core/mainboilerplate"
)

type cmdSpacesList struct{}

func (cmd *cmdSpacesList) Execute([]string) error {
	startup()

	var c, err = client.NewClient(nil, nil)
	mbp.Must(err, "failed to build hub client")
	defer c.Close()

	spaces, err := c.ListSpaces(connection()).Spaces()
	mbp.Must(err, "failed to list spaces")

	mbp.Must(renderSpacesTable(os.Stdout, spaces), "failed to render table")
	return nil
}

func renderSpacesTable(w io.Writer, spaces []hub.SpaceMeta) error {
	var table = tablewriter.NewWriter(w)
	table.Header("ID", "Title", "Tags", "License")

	for _, s := range spaces {
		if err := table.Append([]string{s.ID, s.Title, strings.Join(s.Tags, ","), s.License}); err != nil {
			return errors.WithMessagef(err, "appending row of space %s", s.ID)
		}
	}
	return table.Render()
}
