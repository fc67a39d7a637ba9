package streamtable

import "context"

// provision implements C8's Provision: a single-action transaction
// inserting the header at Version 0 with the given properties.
func provision(ctx context.Context, partition Partition, properties PropertyMap, logger Logger) (StreamHeader, error) {
	header := StreamHeader{Partition: partition, Version: 0, Properties: properties}
	action := headerAction(header, 0, &properties)

	result, err := partition.Client.SubmitTransaction(ctx, partition.PartitionKey, []TransactionAction{action})
	if err != nil {
		if txErr, ok := err.(*TransactionError); ok && txErr.Code == "EntityAlreadyExists" {
			return StreamHeader{}, &ConcurrencyConflictError{
				libError:  libError{Op: "Provision", Err: txErr},
				Partition: partition,
				Kind:      StreamChangedOrExists,
			}
		}
		return StreamHeader{}, err
	}

	logger.Info("streamtable: stream provisioned", "partitionKey", partition.PartitionKey)
	return StreamHeader{
		Partition:  partition,
		Version:    0,
		ETag:       result.Actions[0].ETag,
		Properties: properties,
	}, nil
}

// setProperties implements C8's SetProperties: replaces the header row
// (never merges) under the caller's e-tag. Rejects transient streams, since
// there is nothing persisted yet to replace.
func setProperties(ctx context.Context, header StreamHeader, properties PropertyMap, logger Logger) (StreamHeader, error) {
	if header.IsTransient() {
		return StreamHeader{}, newInvalidOperation("SetProperties", "cannot set properties on a transient stream")
	}

	action := headerAction(header, header.Version, &properties)
	result, err := header.Partition.Client.SubmitTransaction(ctx, header.Partition.PartitionKey, []TransactionAction{action})
	if err != nil {
		if txErr, ok := err.(*TransactionError); ok && txErr.Code == "UpdateConditionNotSatisfied" {
			return StreamHeader{}, &ConcurrencyConflictError{
				libError:  libError{Op: "SetProperties", Err: txErr},
				Partition: header.Partition,
				Kind:      StreamChanged,
			}
		}
		return StreamHeader{}, err
	}

	logger.Info("streamtable: stream properties replaced", "partitionKey", header.Partition.PartitionKey)
	return StreamHeader{
		Partition:  header.Partition,
		Version:    header.Version,
		ETag:       result.Actions[0].ETag,
		Properties: properties,
	}, nil
}
