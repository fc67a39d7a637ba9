package streamtable

// recordEvents assigns versions v+1..v+n to events and builds the per-event
// operation set. header.Version is the stream's version before this
// write; it is not mutated here.
func recordEvents(header StreamHeader, partitionKey string, events []EventData) []RecordedEvent {
	recorded := make([]RecordedEvent, 0, len(events))
	for i, e := range events {
		version := header.Version + int64(i) + 1

		eventRow := &Entity{
			PartitionKey: partitionKey,
			RowKey:       eventRowKeyFor(version),
			Properties:   withVersion(e.Properties.clone(), version),
		}
		eventOps := []EntityOperation{Insert(eventRow)}

		if e.Id != "" {
			idRow := &Entity{
				PartitionKey: partitionKey,
				RowKey:       eventIdRowKeyFor(e.Id),
				Properties:   withVersion(PropertyMap{}, version),
			}
			eventOps = append(eventOps, Insert(idRow))
		}

		includes := make([]EntityOperation, len(e.Includes))
		for j, inc := range e.Includes {
			// Mutate in place, not copy: the change tracker folds operations
			// against the same row by pointer identity, so stamping
			// must preserve whatever *Entity the caller shared across events.
			inc.Entity.PartitionKey = partitionKey
			includes[j] = inc
		}

		recorded = append(recorded, RecordedEvent{
			Version:            version,
			Id:                 e.Id,
			CorrelationId:       newCorrelationId(),
			Properties:         e.Properties.clone(),
			EventOperations:    eventOps,
			IncludedOperations: includes,
			Operations:         len(eventOps) + len(includes),
		})
	}
	return recorded
}

func eventRowKeyFor(version int64) string {
	return eventRowKeyPrefix + formatVersion(version)
}

func eventIdRowKeyFor(id string) string {
	return eventIdRowKeyPrefix + id
}

func withVersion(props PropertyMap, version int64) PropertyMap {
	props["Version"] = version
	return props
}
