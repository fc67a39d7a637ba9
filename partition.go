package streamtable

import "fmt"

// Row-key prefixes reserved by the library. Caller-owned includes
// must use row keys outside these three prefixes.
const (
	headerRowKey       = "SS-HEAD"
	eventRowKeyPrefix  = "SS-SE-"
	eventIdRowKeyPrefix = "SS-UID-"

	// versionWidth is wide enough that lexicographic and numeric order agree
	// for versions up to 10 billion.
	versionWidth = 10
)

// Partition pairs a backend table handle with a partition key. All of a
// stream's rows — header, events, event-ids, and any included entities —
// live in one Partition, which is the atomicity and range-query unit of the
// underlying store.
type Partition struct {
	Client       PartitionClient
	PartitionKey string
}

// NewPartition builds a Partition over client at the given partition key.
func NewPartition(client PartitionClient, partitionKey string) Partition {
	return Partition{Client: client, PartitionKey: partitionKey}
}

func (p Partition) String() string {
	return fmt.Sprintf("{partitionKey:%s}", p.PartitionKey)
}

// StreamRowKey returns the fixed sentinel row key for the stream header.
func (p Partition) StreamRowKey() string {
	return headerRowKey
}

// EventVersionRowKey returns the row key for the event at version v, zero
// padded so that lexicographic order agrees with numeric order.
func (p Partition) EventVersionRowKey(v int64) string {
	return eventRowKeyPrefix + formatVersion(v)
}

// EventIdRowKey returns the row key reserving the given caller-supplied
// event id for uniqueness.
func (p Partition) EventIdRowKey(id string) string {
	return eventIdRowKeyPrefix + id
}

func formatVersion(v int64) string {
	return fmt.Sprintf("%0*d", versionWidth, v)
}

// isEventRowKey reports whether rowKey names an event row. Used only for
// error classification where the
// backend reports a failed action by index rather than by row key.
func isEventRowKey(rowKey string) bool {
	return len(rowKey) > len(eventRowKeyPrefix) && rowKey[:len(eventRowKeyPrefix)] == eventRowKeyPrefix
}

func isEventIdRowKey(rowKey string) bool {
	return len(rowKey) > len(eventIdRowKeyPrefix) && rowKey[:len(eventIdRowKeyPrefix)] == eventIdRowKeyPrefix
}
