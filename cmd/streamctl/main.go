// Command streamctl is a small operational CLI over a streamtable Store:
// provisioning streams, appending ad-hoc events, reading slices back, and
// replacing stream properties, against either a real Azure Data Tables
// account or an Azurite emulator.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/streamtable/streamtable"
	"github.com/streamtable/streamtable/config"
	"github.com/streamtable/streamtable/internal/azdata"
	"github.com/streamtable/streamtable/internal/obslog"
)

// CLI is the top-level command tree kong parses os.Args into.
var CLI struct {
	Provision     ProvisionCmd     `cmd:"" help:"Create a new stream at a partition key."`
	Write         WriteCmd         `cmd:"" help:"Append one event to a stream."`
	Read          ReadCmd          `cmd:"" help:"Read a slice of events from a stream."`
	SetProperties SetPropertiesCmd `cmd:"" name:"set-properties" help:"Replace a stream's header properties."`
}

// context carried into every command's Run method.
type runContext struct {
	ctx   context.Context
	store *streamtable.Store
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("streamctl"),
		kong.Description("Operational CLI for a streamtable-backed event store."),
		kong.UsageOnError(),
	)

	rc, err := buildRunContext()
	if err != nil {
		fmt.Fprintln(os.Stderr, "streamctl:", err)
		os.Exit(1)
	}

	if err := kctx.Run(rc); err != nil {
		fmt.Fprintln(os.Stderr, "streamctl:", err)
		os.Exit(1)
	}
}

func buildRunContext() (*runContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var client streamtable.PartitionClient
	if cfg.UseDefaultAuth {
		client, err = azdata.NewWithDefaultCredential(cfg.ServiceURL, cfg.TableName)
	} else {
		client, err = azdata.NewWithSharedKey(cfg.ServiceURL, cfg.TableName, cfg.AccountName, cfg.AccountKey)
	}
	if err != nil {
		return nil, fmt.Errorf("build backend client: %w", err)
	}

	store := streamtable.NewStore(client, streamtable.WithLogger(obslog.NewDefault()))
	return &runContext{ctx: context.Background(), store: store}, nil
}
