package includes

import "github.com/streamtable/streamtable"

// ProjectionRow builds an include that upserts a denormalized read-model row
// in the same partition transaction as the event that changed it,
// co-committing the projection with its source event so a reader observing
// the event row can never see a stale projection.
//
// etag should be ETagAny for a brand-new projection row, or the row's
// current e-tag when updating one the caller already holds.
func ProjectionRow(partitionKey, rowKey string, etag streamtable.ETag, properties streamtable.PropertyMap) streamtable.EntityOperation {
	return streamtable.InsertOrReplace(&streamtable.Entity{
		PartitionKey: partitionKey,
		RowKey:       rowKey,
		ETag:         string(etag),
		Properties:   properties,
	})
}

// ProjectionRowMerge is ProjectionRow but merges properties into the
// existing row instead of replacing it wholesale, for projections that
// accumulate fields written by different event types.
func ProjectionRowMerge(partitionKey, rowKey string, properties streamtable.PropertyMap) streamtable.EntityOperation {
	return streamtable.InsertOrMerge(&streamtable.Entity{
		PartitionKey: partitionKey,
		RowKey:       rowKey,
		Properties:   properties,
	})
}
