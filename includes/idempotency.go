// Package includes collects convenience EntityOperation builders for two
// common co-commit patterns: idempotency markers and projection rows.
// Neither needs backend access of its own — both build plain
// streamtable.EntityOperation values that the caller passes to
// EventData.Includes and the library folds and submits alongside the event
// rows in the same partition transaction.
package includes

import "github.com/streamtable/streamtable"

// IdempotencyMarker builds an Insert operation reserving key as a one-time
// marker in the same partition as the event it accompanies. A second write
// attempting to reserve the same key fails the whole transaction, giving the
// caller exactly-once semantics for an operation keyed by something other
// than the library's own event id (e.g. an upstream message id).
func IdempotencyMarker(partitionKey, key string) streamtable.EntityOperation {
	return streamtable.Insert(&streamtable.Entity{
		PartitionKey: partitionKey,
		RowKey:       "SS-IDEM-" + key,
		Properties:   streamtable.PropertyMap{},
	})
}

// IdempotencyMarkerWithData is IdempotencyMarker with caller-supplied
// properties stored alongside the marker (e.g. the correlation id that
// claimed it, for diagnostics).
func IdempotencyMarkerWithData(partitionKey, key string, properties streamtable.PropertyMap) streamtable.EntityOperation {
	return streamtable.Insert(&streamtable.Entity{
		PartitionKey: partitionKey,
		RowKey:       "SS-IDEM-" + key,
		Properties:   properties,
	})
}
