package streamtable

import (
	"context"
	"fmt"
	"strconv"
)

// WriteOptions configures a Write call. TrackChanges defaults to true: the
// change tracker folds multiple includes against the same row into one
// legal operation. Setting it false passes includes straight through in
// the order given.
type WriteOptions struct {
	TrackChanges bool
}

// DefaultWriteOptions returns the library default: TrackChanges enabled.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{TrackChanges: true}
}

// writeEvents chunks events, builds and submits one transaction per chunk,
// and classifies any failure. Each chunk's includes are collected and
// folded independently — the write as a whole may span several
// transactions, and each is its own atomicity boundary, so change-tracking
// folds within a chunk rather than across the whole write (see DESIGN.md).
func writeEvents(ctx context.Context, client PartitionClient, header StreamHeader, opts WriteOptions, events []EventData, logger Logger) (StreamHeader, []RecordedEvent, error) {
	if len(events) == 0 {
		return StreamHeader{}, nil, newArgumentError("Write", "events", "must be non-empty")
	}

	partitionKey := header.Partition.PartitionKey
	recorded := recordEvents(header, partitionKey, events)

	chunks, err := chunkEvents(recorded)
	if err != nil {
		return StreamHeader{}, nil, err
	}

	current := header
	all := make([]RecordedEvent, 0, len(recorded))

	for i, chunk := range chunks {
		newVersion := current.Version + int64(len(chunk))

		var rawIncludes []EntityOperation
		for _, e := range chunk {
			rawIncludes = append(rawIncludes, e.IncludedOperations...)
		}
		includes, err := trackChanges(rawIncludes, opts.TrackChanges)
		if err != nil {
			return StreamHeader{}, nil, err
		}

		actions := []TransactionAction{headerAction(current, newVersion, nil)}
		for _, e := range chunk {
			for _, op := range e.EventOperations {
				actions = append(actions, toTransactionAction(op))
			}
		}
		for _, op := range includes {
			if err := op.validateForSubmission(); err != nil {
				return StreamHeader{}, nil, err
			}
			actions = append(actions, toTransactionAction(op))
		}

		correlationIds := make([]string, len(chunk))
		for j, e := range chunk {
			correlationIds[j] = e.CorrelationId
		}
		logger.Debug("streamtable: submitting write chunk",
			"partitionKey", partitionKey, "chunk", i, "chunks", len(chunks),
			"fromVersion", current.Version, "toVersion", newVersion, "actions", len(actions),
			"correlationIds", correlationIds)

		result, err := client.SubmitTransaction(ctx, partitionKey, actions)
		if err != nil {
			logger.Warn("streamtable: write chunk failed",
				"partitionKey", partitionKey, "chunk", i, "error", err.Error())
			return StreamHeader{}, nil, classifyWriteError(err, header.Partition, actions)
		}

		current = StreamHeader{
			Partition:  header.Partition,
			Version:    newVersion,
			ETag:       result.Actions[0].ETag,
			Properties: current.Properties,
		}
		all = append(all, chunk...)
	}

	logger.Info("streamtable: write complete",
		"partitionKey", partitionKey, "version", current.Version, "events", len(all))
	return current, all, nil
}

// headerAction builds the stream header's transaction action. When
// properties is nil the header update merges (preserving whatever is
// already stored) rather than replacing — the only legitimate use of merge
// on the header. Write never changes header properties, so it always passes
// nil; SetProperties always passes a non-nil pointer.
func headerAction(header StreamHeader, newVersion int64, properties *PropertyMap) TransactionAction {
	row := Row{
		PartitionKey: header.Partition.PartitionKey,
		RowKey:       header.Partition.StreamRowKey(),
	}

	if header.IsTransient() {
		props := header.Properties
		if properties != nil {
			props = *properties
		}
		row.Properties = withVersion(props.clone(), newVersion)
		return TransactionAction{Kind: ActionAdd, Row: row}
	}

	row.ETag = header.ETag
	if properties == nil {
		row.Properties = PropertyMap{"Version": newVersion}
		return TransactionAction{Kind: ActionUpdateMerge, Row: row}
	}
	row.Properties = withVersion(properties.clone(), newVersion)
	return TransactionAction{Kind: ActionUpdateReplace, Row: row}
}

func toTransactionAction(op EntityOperation) TransactionAction {
	return TransactionAction{
		Kind: op.Kind.toAction(),
		Row: Row{
			PartitionKey: op.Entity.PartitionKey,
			RowKey:       op.Entity.RowKey,
			ETag:         ETag(op.Entity.ETag),
			Properties:   op.Entity.Properties,
		},
	}
}

// classifyWriteError maps a backend failure onto the library's error
// taxonomy. Any error code other than the two it recognizes propagates
// unmapped, as do non-transactional request errors.
func classifyWriteError(err error, partition Partition, actions []TransactionAction) error {
	txErr, ok := err.(*TransactionError)
	if !ok {
		return err
	}

	switch txErr.Code {
	case "UpdateConditionNotSatisfied":
		return &ConcurrencyConflictError{
			libError:  libError{Op: "Write", Err: txErr},
			Partition: partition,
			Kind:      StreamChanged,
		}
	case "EntityAlreadyExists":
		if txErr.FailedIndex <= 0 || txErr.FailedIndex >= len(actions) {
			// Index 0 is always the header action; an unreported or
			// out-of-range index is treated the same way since the header
			// is the only action that can fail this way without a row-key
			// to classify by.
			return &ConcurrencyConflictError{
				libError:  libError{Op: "Write", Err: txErr},
				Partition: partition,
				Kind:      StreamChangedOrExists,
			}
		}
		failed := actions[txErr.FailedIndex]
		switch {
		case isEventIdRowKey(failed.Row.RowKey):
			return &DuplicateEventError{
				libError:  libError{Op: "Write", Err: txErr},
				Partition: partition,
				EventId:   failed.Row.RowKey[len(eventIdRowKeyPrefix):],
			}
		case isEventRowKey(failed.Row.RowKey):
			version, _ := strconv.ParseInt(failed.Row.RowKey[len(eventRowKeyPrefix):], 10, 64)
			return &ConcurrencyConflictError{
				libError:  libError{Op: "Write", Err: txErr},
				Partition: partition,
				Kind:      EventVersionExists,
				Version:   version,
			}
		default:
			return &IncludedOperationConflictError{
				libError:  libError{Op: "Write", Err: txErr},
				Partition: partition,
				RowKey:    failed.Row.RowKey,
				Operation: actionToOperationKind(failed.Kind),
			}
		}
	default:
		return fmt.Errorf("streamtable: write transaction failed: %w", err)
	}
}

func actionToOperationKind(k TransactionActionKind) OperationKind {
	switch k {
	case ActionAdd:
		return OpInsert
	case ActionUpdateReplace:
		return OpReplace
	case ActionDelete:
		return OpDelete
	case ActionUpsertMerge:
		return OpInsertOrMerge
	case ActionUpsertReplace:
		return OpInsertOrReplace
	default:
		return OpInsert
	}
}
