package streamtable

// validatePartitionKey rejects an empty partition key at the façade boundary.
func validatePartitionKey(op, partitionKey string) error {
	if partitionKey == "" {
		return newArgumentError(op, "partitionKey", "must be non-empty")
	}
	return nil
}

// validateEvents rejects a nil or empty event slice.
func validateEvents(op string, events []EventData) error {
	if len(events) == 0 {
		return newArgumentError(op, "events", "must be non-empty")
	}
	return nil
}

// validateHeader rejects a stream header whose Partition has no client,
// which can only happen if the caller built a StreamHeader by hand instead
// of through Open/Provision.
func validateHeader(op string, header StreamHeader) error {
	if header.Partition.Client == nil {
		return newArgumentError(op, "header", "must come from Open, TryOpen, or Provision")
	}
	return nil
}
