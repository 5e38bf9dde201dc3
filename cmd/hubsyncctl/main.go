package main

import (
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"

	"go.hubsync.dev/core/hub"
	mbp "go.hubsync.dev/core/mainboilerplate"
	"go.hubsync.dev/core/metrics"
)

const iniFilename = "hubsyncctl.ini"

// baseConfig is the top-level configuration of hubsyncctl.
type baseConfig struct {
	Hub struct {
		Server  string            `long:"server" env:"SERVER" description:"Hub base URL"`
		Space   string            `long:"space" env:"SPACE" description:"Space ID"`
		Token   string            `long:"token" env:"TOKEN" description:"Bearer credential"`
		Headers map[string]string `long:"header" env:"HEADERS" env-delim:"," description:"Additional request header(s), as key:value"`
	} `group:"Hub" namespace:"hub" env-namespace:"HUB"`

	Log mbp.LogConfig `group:"Logging" namespace:"log" env-namespace:"LOG"`
}

var cfg = new(baseConfig)

// startup initializes logging and metrics ahead of command execution.
func startup() {
	mbp.InitLog(cfg.Log)
	prometheus.MustRegister(metrics.HubsyncCollectors()...)
}

func connection() hub.Connection {
	return hub.Connection{
		Server:  cfg.Hub.Server,
		SpaceID: cfg.Hub.Space,
		Token:   cfg.Hub.Token,
		Headers: cfg.Hub.Headers,
	}
}

func main() {
	var parser = flags.NewParser(cfg, flags.Default)

	parser.LongDescription = `hubsyncctl is a tool for synchronizing feature-hub spaces with local stores.

See --help pages of each sub-command for documentation and usage examples.
Optionally configure hubsyncctl with a '` + iniFilename + `' file in the current working directory,
or with '~/.config/hubsync/` + iniFilename + `'. Use the 'print-config' sub-command to inspect
the tool's current configuration.
`

	mbp.AddPrintConfigCmd(parser, iniFilename)

	var spaces = mustAddCmd(parser.Command, "spaces", "Interact with hub spaces", "", &struct{}{})
	_ = mustAddCmd(spaces, "list", "List spaces", `
List spaces visible to the configured credential.
`, &cmdSpacesList{})
	_ = mustAddCmd(spaces, "sync", "Synchronize a space into a local store", `
Iterate all features of the configured space, page by page, and materialize
them into a local partitioned store. Re-ingested features overwrite prior
versions.
`, &cmdSpacesSync{})

	var features = mustAddCmd(parser.Command, "features", "Interact with space features", "", &struct{}{})
	_ = mustAddCmd(features, "delete", "Delete features by ID", `
Delete the named features from the configured space.
`, &cmdFeaturesDelete{})

	mbp.MustParseConfig(parser, iniFilename)
}

func mustAddCmd(cmd *flags.Command, name, short, long string, cfg interface{}) *flags.Command {
	cmd, err := cmd.AddCommand(name, short, long, cfg)
	mbp.Must(err, "failed to add command")
	return cmd
}
