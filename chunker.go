package streamtable

import "fmt"

// MaxOperationsPerChunk bounds how many actions a single transaction may
// carry. It is one less than the backend's hard limit of 100, leaving room
// for the header operation that precedes every chunk.
const MaxOperationsPerChunk = 99

// chunkEvents splits recorded events into ordered, non-empty batches that
// each fit within MaxOperationsPerChunk actions. A single event whose
// own Operations exceeds the cap fails immediately — no chunk boundary can
// rescue it.
func chunkEvents(events []RecordedEvent) ([][]RecordedEvent, error) {
	var chunks [][]RecordedEvent
	var current []RecordedEvent
	currentOps := 0

	for _, e := range events {
		if e.Operations > MaxOperationsPerChunk {
			return nil, newInvalidOperation("chunk", fmt.Sprintf(
				"event at version %d has %d operations, exceeding the maximum of %d per chunk",
				e.Version, e.Operations, MaxOperationsPerChunk))
		}
		if len(current) > 0 && currentOps+e.Operations > MaxOperationsPerChunk {
			chunks = append(chunks, current)
			current = nil
			currentOps = 0
		}
		current = append(current, e)
		currentOps += e.Operations
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks, nil
}
