package main

import (
	"encoding/json"
	"fmt"

	"github.com/streamtable/streamtable"
)

// ProvisionCmd creates a new stream.
type ProvisionCmd struct {
	PartitionKey string `arg:"" help:"Partition key identifying the stream."`
	Properties   string `help:"JSON object of initial header properties." default:"{}"`
}

func (c *ProvisionCmd) Run(rc *runContext) error {
	properties, err := parseProperties(c.Properties)
	if err != nil {
		return err
	}
	header, err := rc.store.Provision(rc.ctx, c.PartitionKey, properties)
	if err != nil {
		return err
	}
	return printJSON(header)
}

// WriteCmd appends a single event to a stream, provisioning it first if it
// does not yet exist.
type WriteCmd struct {
	PartitionKey string `arg:"" help:"Partition key identifying the stream."`
	EventID      string `help:"Optional caller-supplied event id for duplicate detection."`
	Data         string `arg:"" help:"JSON object of event properties."`
}

func (c *WriteCmd) Run(rc *runContext) error {
	properties, err := parseProperties(c.Data)
	if err != nil {
		return err
	}

	header, ok, err := rc.store.TryOpen(rc.ctx, c.PartitionKey)
	if err != nil {
		return err
	}
	if !ok {
		header, err = rc.store.Provision(rc.ctx, c.PartitionKey, streamtable.PropertyMap{})
		if err != nil {
			return err
		}
	}

	var event streamtable.EventData
	if c.EventID != "" {
		event = streamtable.NewEventDataWithId(c.EventID, properties)
	} else {
		event = streamtable.NewEventData(properties)
	}

	newHeader, recorded, err := rc.store.Write(rc.ctx, header, []streamtable.EventData{event})
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"header": newHeader, "events": recorded})
}

// ReadCmd reads a bounded slice of events back from a stream.
type ReadCmd struct {
	PartitionKey string `arg:"" help:"Partition key identifying the stream."`
	StartVersion int64  `help:"First version to read (1-based)." default:"1"`
	SliceSize    int    `help:"Maximum number of events to return." default:"100"`
}

func (c *ReadCmd) Run(rc *runContext) error {
	slice, err := streamtable.Read(rc.ctx, rc.store, c.PartitionKey, c.StartVersion, c.SliceSize, streamtable.PropertyMapTransform)
	if err != nil {
		return err
	}
	return printJSON(slice)
}

// SetPropertiesCmd replaces a stream's header properties.
type SetPropertiesCmd struct {
	PartitionKey string `arg:"" help:"Partition key identifying the stream."`
	Properties   string `arg:"" help:"JSON object of the new header properties."`
}

func (c *SetPropertiesCmd) Run(rc *runContext) error {
	properties, err := parseProperties(c.Properties)
	if err != nil {
		return err
	}
	header, err := rc.store.Open(rc.ctx, c.PartitionKey)
	if err != nil {
		return err
	}
	updated, err := rc.store.SetProperties(rc.ctx, header, properties)
	if err != nil {
		return err
	}
	return printJSON(updated)
}

func parseProperties(raw string) (streamtable.PropertyMap, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}
	return streamtable.NewPropertyMap(m), nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
