// Package fakeclient implements streamtable.PartitionClient entirely in
// memory, for the root package's own unit tests. It reproduces the
// backend's atomicity and optimistic-concurrency rules closely enough to
// exercise the write/read paths without a network call, but none of its
// wire format, pagination, or performance characteristics.
package fakeclient

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/streamtable/streamtable"
)

type row struct {
	etag       int64
	properties streamtable.PropertyMap
}

// Client is a partition-scoped in-memory store: a map of partition key to a
// map of row key to row, guarded by one mutex. Real partition isolation
// (one partition per append transaction) makes a single coarse lock
// sufficient for tests.
type Client struct {
	mu         sync.Mutex
	partitions map[string]map[string]*row
}

// New returns an empty Client.
func New() *Client {
	return &Client{partitions: make(map[string]map[string]*row)}
}

func (c *Client) partition(partitionKey string) map[string]*row {
	p, ok := c.partitions[partitionKey]
	if !ok {
		p = make(map[string]*row)
		c.partitions[partitionKey] = p
	}
	return p
}

func etagString(gen int64) streamtable.ETag {
	return streamtable.ETag("W/\"gen" + strconv.FormatInt(gen, 10) + "\"")
}

func (c *Client) SubmitTransaction(ctx context.Context, partitionKey string, actions []streamtable.TransactionAction) (streamtable.TransactionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partition(partitionKey)

	// Precondition pass: the whole transaction commits or none of it does, so
	// every action is checked against the current state before any row is
	// mutated.
	for i, a := range actions {
		existing, exists := p[a.Row.RowKey]
		switch a.Kind {
		case streamtable.ActionAdd:
			if exists {
				return streamtable.TransactionResult{}, &streamtable.TransactionError{
					Code: "EntityAlreadyExists", FailedIndex: i,
					Err: fmt.Errorf("entity already exists at row key %q", a.Row.RowKey),
				}
			}
		case streamtable.ActionUpdateReplace, streamtable.ActionUpdateMerge, streamtable.ActionDelete:
			if !exists {
				return streamtable.TransactionResult{}, &streamtable.TransactionError{
					Code: "ResourceNotFound", FailedIndex: i,
					Err: fmt.Errorf("no entity at row key %q", a.Row.RowKey),
				}
			}
			if a.Row.ETag != "" && a.Row.ETag != streamtable.ETag(streamtable.ETagAny) && a.Row.ETag != existing.currentETag() {
				return streamtable.TransactionResult{}, &streamtable.TransactionError{
					Code: "UpdateConditionNotSatisfied", FailedIndex: i,
					Err: fmt.Errorf("e-tag mismatch at row key %q", a.Row.RowKey),
				}
			}
		case streamtable.ActionUpsertReplace, streamtable.ActionUpsertMerge:
			// unconditional; nothing to check
		}
	}

	results := make([]streamtable.TransactionActionResult, len(actions))
	for i, a := range actions {
		existing, exists := p[a.Row.RowKey]
		switch a.Kind {
		case streamtable.ActionAdd, streamtable.ActionUpsertReplace:
			p[a.Row.RowKey] = &row{etag: 1, properties: a.Row.Properties.Clone()}
		case streamtable.ActionUpdateReplace:
			existing.properties = a.Row.Properties.Clone()
			existing.etag++
		case streamtable.ActionUpdateMerge, streamtable.ActionUpsertMerge:
			if !exists {
				existing = &row{properties: streamtable.PropertyMap{}}
				p[a.Row.RowKey] = existing
			}
			merged := existing.properties.Clone()
			for k, v := range a.Row.Properties {
				merged[k] = v
			}
			existing.properties = merged
			existing.etag++
		case streamtable.ActionDelete:
			delete(p, a.Row.RowKey)
		}
		gen := int64(1)
		if r, ok := p[a.Row.RowKey]; ok {
			gen = r.etag
		}
		results[i] = streamtable.TransactionActionResult{ETag: etagString(gen)}
	}

	return streamtable.TransactionResult{Actions: results}, nil
}

func (c *Client) GetEntity(ctx context.Context, partitionKey, rowKey string) (streamtable.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.partitions[partitionKey]
	if !ok {
		return streamtable.Row{}, streamtable.ErrRowNotFound
	}
	r, ok := p[rowKey]
	if !ok {
		return streamtable.Row{}, streamtable.ErrRowNotFound
	}
	return streamtable.Row{
		PartitionKey: partitionKey,
		RowKey:       rowKey,
		ETag:         etagString(r.etag),
		Properties:   r.properties.Clone(),
	}, nil
}

func (c *Client) AddEntity(ctx context.Context, in streamtable.Row) (streamtable.ETag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partition(in.PartitionKey)
	if _, exists := p[in.RowKey]; exists {
		return "", &streamtable.RequestError{Code: "EntityAlreadyExists", Err: fmt.Errorf("entity already exists at row key %q", in.RowKey)}
	}
	p[in.RowKey] = &row{etag: 1, properties: in.Properties.Clone()}
	return etagString(1), nil
}

func (c *Client) UpdateEntity(ctx context.Context, in streamtable.Row, mode streamtable.UpdateMode) (streamtable.ETag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partition(in.PartitionKey)
	existing, exists := p[in.RowKey]
	if !exists {
		return "", &streamtable.RequestError{Code: "ResourceNotFound", Err: fmt.Errorf("no entity at row key %q", in.RowKey)}
	}
	if in.ETag != "" && in.ETag != streamtable.ETag(streamtable.ETagAny) && in.ETag != etagString(existing.etag) {
		return "", &streamtable.RequestError{Code: "UpdateConditionNotSatisfied", Err: fmt.Errorf("e-tag mismatch at row key %q", in.RowKey)}
	}

	if mode == streamtable.UpdateModeMerge {
		merged := existing.properties.Clone()
		for k, v := range in.Properties {
			merged[k] = v
		}
		existing.properties = merged
	} else {
		existing.properties = in.Properties.Clone()
	}
	existing.etag++
	return etagString(existing.etag), nil
}

func (c *Client) Query(ctx context.Context, partitionKey, rowKeyLow, rowKeyHigh string) ([]streamtable.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.partitions[partitionKey]
	if !ok {
		return nil, nil
	}

	keys := make([]string, 0, len(p))
	for k := range p {
		if k >= rowKeyLow && k <= rowKeyHigh {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	rows := make([]streamtable.Row, 0, len(keys))
	for _, k := range keys {
		r := p[k]
		rows = append(rows, streamtable.Row{
			PartitionKey: partitionKey,
			RowKey:       k,
			ETag:         etagString(r.etag),
			Properties:   r.properties.Clone(),
		})
	}
	return rows, nil
}

func (r *row) currentETag() streamtable.ETag {
	return etagString(r.etag)
}
