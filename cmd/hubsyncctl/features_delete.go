package main

import (
	log "github.com/sirupsen/logrus"

	"go.hubsync.dev/core/hub/client"
	mbp "go.hubsync.dev/core/mainboilerplate"
)

type cmdFeaturesDelete struct {
	Args struct {
		IDs []string `positional-arg-name:"id" required:"1" description:"Feature ID(s) to delete"`
	} `positional-args:"yes"`
}

func (cmd *cmdFeaturesDelete) Execute([]string) error {
	startup()

	var c, err = client.NewClient(nil, nil)
	mbp.Must(err, "failed to build hub client")
	defer c.Close()

	var r = c.DeleteFeatures(connection(), cmd.Args.IDs, nil)
	mbp.Must(r.Err(), "failed to delete features")

	log.WithFields(log.Fields{
		"space": connection().SpaceID,
		"count": len(cmd.Args.IDs),
	}).Info("deleted features")

	return nil
}
