package streamtable

import (
	"errors"
	"fmt"
)

type (
	// libError is the base embedded in every streamtable-specific error. It
	// is never returned on its own; callers match on the concrete types
	// below via errors.As or the Is*/As* helpers.
	libError struct {
		Op  string // operation that failed, e.g. "Write", "Open"
		Err error  // underlying cause, if any
	}

	// StreamNotFoundError is returned when Open or Read targets a partition
	// with no stream header.
	StreamNotFoundError struct {
		libError
		Partition Partition
	}

	// ConcurrencyConflictError is returned when a header e-tag is stale, a
	// header already exists where a transient one was expected, or a
	// specific event version row was already present.
	ConcurrencyConflictError struct {
		libError
		Partition Partition
		Kind      ConcurrencyConflictKind
		Version   int64 // the conflicting event version when Kind == EventVersionExists; WriteExpectedVersion sets it to the stream's actual version
	}

	// DuplicateEventError is returned when an event-id row already exists in
	// the partition.
	DuplicateEventError struct {
		libError
		Partition Partition
		EventId   string
	}

	// IncludedOperationConflictError is returned when an included operation
	// (not the header, not an event row) fails with an already-exists code.
	IncludedOperationConflictError struct {
		libError
		Partition Partition
		RowKey    string
		Operation OperationKind
	}

	// InvalidOperationError covers illegal merge sequences, distinct entity
	// handles sharing a row key, a missing e-tag on Replace, an oversized
	// single event, or properties set on a transient stream. A header whose
	// version goes backwards is not detected and raises no error of this
	// type.
	InvalidOperationError struct {
		libError
	}

	// ArgumentError covers façade-level input validation: out-of-range
	// numeric arguments and nil required arguments.
	ArgumentError struct {
		libError
		Parameter string
	}
)

// ConcurrencyConflictKind discriminates the ways a header transaction can be
// rejected as a conflict.
type ConcurrencyConflictKind int

const (
	// StreamChanged means the header's e-tag no longer matches what the
	// caller held: someone else committed a transaction first.
	StreamChanged ConcurrencyConflictKind = iota
	// StreamChangedOrExists means a transient-stream Insert of the header
	// failed with already-exists: either another writer provisioned the
	// stream first, or it was already provisioned and the caller never
	// opened it.
	StreamChangedOrExists
	// EventVersionExists means a specific event version row already
	// existed, which can only happen if two writers raced past the header
	// check in the same chunk.
	EventVersionExists
)

func (k ConcurrencyConflictKind) String() string {
	switch k {
	case StreamChanged:
		return "StreamChanged"
	case StreamChangedOrExists:
		return "StreamChangedOrExists"
	case EventVersionExists:
		return "EventVersionExists"
	default:
		return "Unknown"
	}
}

// Error implements the error interface for the shared base.
func (e libError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

// Unwrap lets errors.Is/As reach through to a wrapped transport error, e.g.
// an *azcore.ResponseError surfaced by the partition client.
func (e libError) Unwrap() error {
	return e.Err
}

func (e *StreamNotFoundError) Error() string {
	return fmt.Sprintf("%s: stream not found at partition %s", e.Op, e.Partition)
}

func (e *ConcurrencyConflictError) Error() string {
	if e.Kind == EventVersionExists {
		return fmt.Sprintf("%s: concurrency conflict (%s) at partition %s, version %d", e.Op, e.Kind, e.Partition, e.Version)
	}
	return fmt.Sprintf("%s: concurrency conflict (%s) at partition %s", e.Op, e.Kind, e.Partition)
}

func (e *DuplicateEventError) Error() string {
	return fmt.Sprintf("%s: duplicate event id %q at partition %s", e.Op, e.EventId, e.Partition)
}

func (e *IncludedOperationConflictError) Error() string {
	return fmt.Sprintf("%s: included operation %s on row %q conflicted at partition %s", e.Op, e.Operation, e.RowKey, e.Partition)
}

func (e *ArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid argument %q: %v", e.Op, e.Parameter, e.Err)
	}
	return fmt.Sprintf("%s: invalid argument %q", e.Op, e.Parameter)
}

// =============================================================================
// Error Detection Helpers
// =============================================================================

// IsStreamNotFound reports whether err is a StreamNotFoundError.
func IsStreamNotFound(err error) bool {
	var e *StreamNotFoundError
	return errors.As(err, &e)
}

// IsConcurrencyConflict reports whether err is a ConcurrencyConflictError.
func IsConcurrencyConflict(err error) bool {
	var e *ConcurrencyConflictError
	return errors.As(err, &e)
}

// IsDuplicateEvent reports whether err is a DuplicateEventError.
func IsDuplicateEvent(err error) bool {
	var e *DuplicateEventError
	return errors.As(err, &e)
}

// IsIncludedOperationConflict reports whether err is an
// IncludedOperationConflictError.
func IsIncludedOperationConflict(err error) bool {
	var e *IncludedOperationConflictError
	return errors.As(err, &e)
}

// IsInvalidOperation reports whether err is an InvalidOperationError.
func IsInvalidOperation(err error) bool {
	var e *InvalidOperationError
	return errors.As(err, &e)
}

// IsArgumentError reports whether err is an ArgumentError.
func IsArgumentError(err error) bool {
	var e *ArgumentError
	return errors.As(err, &e)
}

// =============================================================================
// Error Extraction Helpers
// =============================================================================

// AsConcurrencyConflict extracts a ConcurrencyConflictError from err's chain.
func AsConcurrencyConflict(err error) (*ConcurrencyConflictError, bool) {
	var e *ConcurrencyConflictError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// AsDuplicateEvent extracts a DuplicateEventError from err's chain.
func AsDuplicateEvent(err error) (*DuplicateEventError, bool) {
	var e *DuplicateEventError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// AsIncludedOperationConflict extracts an IncludedOperationConflictError
// from err's chain.
func AsIncludedOperationConflict(err error) (*IncludedOperationConflictError, bool) {
	var e *IncludedOperationConflictError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newInvalidOperation(op, msg string) error {
	return &InvalidOperationError{libError{Op: op, Err: errors.New(msg)}}
}

func newArgumentError(op, param, msg string) error {
	return &ArgumentError{libError: libError{Op: op, Err: errors.New(msg)}, Parameter: param}
}
