package main

import (
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"go.hubsync.dev/core/hub"
	"go.hubsync.dev/core/hub/client"
	mbp "go.hubsync.dev/core/mainboilerplate"
	"go.hubsync.dev/core/store"
)

type cmdSpacesSync struct {
	Dir     string `long:"dir" default:"." description:"Directory of the local store"`
	Limit   int    `long:"limit" default:"100" description:"Features per page"`
	Tags    string `long:"tags" description:"Tag filter of fetched features"`
	MaxRows int    `long:"max-rows" description:"Capacity ceiling of one partition (0 = unlimited)"`
}

func (cmd *cmdSpacesSync) Execute([]string) error {
	startup()

	var conn = connection()
	var c, err = client.NewClient(nil, nil)
	mbp.Must(err, "failed to build hub client")
	defer c.Close()

	meta, err := c.FetchMeta(conn).SpaceMeta()
	mbp.Must(err, "failed to fetch space meta", "space", conn.SpaceID)

	var st = store.NewStore(afero.NewOsFs(), store.Config{
		Dir:              cmd.Dir,
		MaxPartitionRows: cmd.MaxRows,
	}, conn, meta, cmd.Tags, 0)
	defer st.Close()

	pager, err := client.NewPager(c, conn, client.TagIterate,
		hub.Page{Limit: cmd.Limit, Tags: cmd.Tags}, nil)
	mbp.Must(err, "failed to build pager")

	var pages, total int
	for !pager.Done() {
		fc, err := pager.Next()
		mbp.Must(err, "failed to fetch feature page", "page", pages)

		if fc == nil {
			break
		}
		mbp.Must(st.WriteFeatureBatch(fc.Features), "failed to write feature batch")

		pages, total = pages+1, total+len(fc.Features)
	}
	mbp.Must(st.SaveProvenance(), "failed to save store provenance")

	log.WithFields(log.Fields{
		"space":    conn.SpaceID,
		"pages":    pages,
		"features": humanize.Comma(int64(total)),
		"path":     st.Path(),
	}).Info("synchronized space")

	return nil
}
