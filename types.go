package streamtable

// StreamHeader is the single row per partition recording the stream's
// current version and caller metadata. A zero-value ETag marks the
// stream as transient: not yet provisioned or written.
type StreamHeader struct {
	Partition  Partition
	Version    int64
	ETag       ETag
	Properties PropertyMap
}

// IsTransient reports whether this header has never been persisted.
func (h StreamHeader) IsTransient() bool {
	return h.ETag == ""
}

// EventData is the caller's input to a Write: an optional id reserving
// cross-event uniqueness, user-defined properties, and includes — entity
// operations against unrelated rows to co-commit with the event.
type EventData struct {
	Id         string
	Properties PropertyMap
	Includes   []EntityOperation
}

// NewEventData builds an EventData with no id.
func NewEventData(properties PropertyMap, includes ...EntityOperation) EventData {
	return EventData{Properties: properties, Includes: includes}
}

// NewEventDataWithId builds an EventData that reserves id for cross-event
// uniqueness; writing a second event with the same id anywhere in the
// partition fails with DuplicateEventError.
func NewEventDataWithId(id string, properties PropertyMap, includes ...EntityOperation) EventData {
	return EventData{Id: id, Properties: properties, Includes: includes}
}

// RecordedEvent is assigned by the library, one per successfully written
// EventData. EventOperations holds the event row Insert and, iff Id is
// set, the event-id row Insert; Operations is the total action count used
// for chunk budgeting.
type RecordedEvent struct {
	Version            int64
	Id                 string
	CorrelationId      string
	Properties         PropertyMap
	EventOperations    []EntityOperation
	IncludedOperations []EntityOperation
	Operations         int
}

// StreamSlice is a bounded, contiguous read window over a stream's events,
// as returned by Read.
type StreamSlice[T any] struct {
	Stream        StreamHeader
	Events        []T
	IsEndOfStream bool
	StartVersion  int64
	SliceSize     int
}
