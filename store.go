// Package streamtable implements an event-sourcing log over a wide-column
// partition store. Every stream lives entirely within one partition — its
// header, its event rows, its event-id uniqueness rows, and any caller
// entities co-committed alongside an append — so that a single partition
// transaction is all the atomicity a write ever needs.
package streamtable

import (
	"context"
	"errors"
)

// Store is the public façade: a PartitionClient bound to a logger and
// default write options, exposing the stream lifecycle as a small set of
// methods keyed by partition key.
type Store struct {
	client    PartitionClient
	logger    Logger
	writeOpts WriteOptions
}

func (s *Store) partition(partitionKey string) Partition {
	return NewPartition(s.client, partitionKey)
}

// Provision creates a new stream at partitionKey with the given initial
// properties, at version 0. It fails with a ConcurrencyConflictError if a
// header already exists there.
func (s *Store) Provision(ctx context.Context, partitionKey string, properties PropertyMap) (StreamHeader, error) {
	if err := validatePartitionKey("Provision", partitionKey); err != nil {
		return StreamHeader{}, err
	}
	return provision(ctx, s.partition(partitionKey), properties, s.logger)
}

// Open returns the current header at partitionKey, or a StreamNotFoundError
// if no stream has been provisioned or written there yet.
func (s *Store) Open(ctx context.Context, partitionKey string) (StreamHeader, error) {
	if err := validatePartitionKey("Open", partitionKey); err != nil {
		return StreamHeader{}, err
	}
	return s.openHeader(ctx, s.partition(partitionKey), "Open")
}

// TryOpen is Open without the StreamNotFoundError: ok is false when no
// stream exists at partitionKey, and err is nil in that case.
func (s *Store) TryOpen(ctx context.Context, partitionKey string) (header StreamHeader, ok bool, err error) {
	header, err = s.Open(ctx, partitionKey)
	if IsStreamNotFound(err) {
		return StreamHeader{}, false, nil
	}
	if err != nil {
		return StreamHeader{}, false, err
	}
	return header, true, nil
}

// Exists reports whether a stream has been provisioned or written at
// partitionKey.
func (s *Store) Exists(ctx context.Context, partitionKey string) (bool, error) {
	_, ok, err := s.TryOpen(ctx, partitionKey)
	return ok, err
}

// SetProperties replaces header's stored properties under optimistic
// concurrency. header must come from Open, TryOpen, or Provision, since its
// e-tag is the concurrency token.
func (s *Store) SetProperties(ctx context.Context, header StreamHeader, properties PropertyMap) (StreamHeader, error) {
	if err := validateHeader("SetProperties", header); err != nil {
		return StreamHeader{}, err
	}
	return setProperties(ctx, header, properties, s.logger)
}

// Write appends events to the stream identified by header, which must come
// from Open, TryOpen, or Provision: its Version and ETag are the optimistic
// concurrency token for the whole write. An empty opts uses the Store's
// configured WriteOptions.
func (s *Store) Write(ctx context.Context, header StreamHeader, events []EventData, opts ...WriteOptions) (StreamHeader, []RecordedEvent, error) {
	if err := validateHeader("Write", header); err != nil {
		return StreamHeader{}, nil, err
	}
	if err := validateEvents("Write", events); err != nil {
		return StreamHeader{}, nil, err
	}
	writeOpts := s.writeOpts
	if len(opts) > 0 {
		writeOpts = opts[0]
	}
	return writeEvents(ctx, s.client, header, writeOpts, events, s.logger)
}

// WriteExpectedVersion appends events to partitionKey, first confirming the
// stream is currently at expectedVersion. It is the Partition+expectedVersion
// overload of Write for callers that track a stream's version themselves
// instead of holding on to a StreamHeader between calls. A mismatch is
// reported the same way a stale e-tag would be: ConcurrencyConflictError with
// Kind StreamChanged.
func (s *Store) WriteExpectedVersion(ctx context.Context, partitionKey string, expectedVersion int64, events []EventData) (StreamHeader, []RecordedEvent, error) {
	if err := validatePartitionKey("Write", partitionKey); err != nil {
		return StreamHeader{}, nil, err
	}
	if err := validateEvents("Write", events); err != nil {
		return StreamHeader{}, nil, err
	}

	header, err := s.openHeader(ctx, s.partition(partitionKey), "Write")
	if err != nil {
		return StreamHeader{}, nil, err
	}
	if header.Version != expectedVersion {
		return StreamHeader{}, nil, &ConcurrencyConflictError{
			libError:  libError{Op: "Write"},
			Partition: header.Partition,
			Kind:      StreamChanged,
			Version:   header.Version,
		}
	}
	return s.Write(ctx, header, events)
}

// Read returns a bounded, contiguous slice of events from partitionKey
// starting at startVersion (1-based), each mapped through transform.
func Read[T any](ctx context.Context, s *Store, partitionKey string, startVersion int64, sliceSize int, transform Transform[T]) (StreamSlice[T], error) {
	if err := validatePartitionKey("Read", partitionKey); err != nil {
		return StreamSlice[T]{}, err
	}
	return readSlice[T](ctx, s.partition(partitionKey), startVersion, sliceSize, transform, s.logger)
}

func (s *Store) openHeader(ctx context.Context, partition Partition, op string) (StreamHeader, error) {
	row, err := partition.Client.GetEntity(ctx, partition.PartitionKey, partition.StreamRowKey())
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return StreamHeader{}, &StreamNotFoundError{
				libError:  libError{Op: op, Err: err},
				Partition: partition,
			}
		}
		return StreamHeader{}, err
	}
	return StreamHeader{
		Partition:  partition,
		Version:    versionOf(row),
		ETag:       row.ETag,
		Properties: withoutVersion(row.Properties),
	}, nil
}
