package streamtable

import (
	"context"
	"errors"
	"reflect"
	"sync"
)

// Transform converts a raw event row into the caller's preferred shape T.
// RowTransform, PropertyMapTransform, and StructTransform cover the common
// cases; a caller can also supply its own.
type Transform[T any] func(Row) (T, error)

// RowTransform returns the row unchanged — the "raw row" canonical
// transform.
func RowTransform(row Row) (Row, error) {
	return row, nil
}

// PropertyMapTransform returns the row's properties as a PropertyMap,
// including the "Version" attribute the library stores on every event row —
// the "property-bag" canonical transform.
func PropertyMapTransform(row Row) (PropertyMap, error) {
	return row.Properties.clone(), nil
}

// StructTransform reflects a row's properties onto a new T, matching
// exported field names case-sensitively — the "reflective copy into a user
// type" canonical transform. T must be a struct type; fields with no
// matching property, or whose stored value isn't assignable to the field's
// type, are left at their zero value.
func StructTransform[T any](row Row) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if rv.Kind() != reflect.Struct {
		return out, newArgumentError("StructTransform", "T", "must be a struct type")
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" { // unexported
			continue
		}
		value, ok := row.Properties[field.Name]
		if !ok {
			continue
		}
		fv := reflect.ValueOf(value)
		if !fv.Type().AssignableTo(field.Type) {
			continue
		}
		rv.Field(i).Set(fv)
	}
	return out, nil
}

// readSlice implements C9: it issues the event-range query and the header
// point query in parallel, awaits both, and assembles a StreamSlice.
func readSlice[T any](ctx context.Context, partition Partition, startVersion int64, sliceSize int, transform Transform[T], logger Logger) (StreamSlice[T], error) {
	if startVersion < 1 {
		return StreamSlice[T]{}, newArgumentError("Read", "startVersion", "must be >= 1")
	}
	if sliceSize < 1 {
		return StreamSlice[T]{}, newArgumentError("Read", "sliceSize", "must be >= 1")
	}

	low := partition.EventVersionRowKey(startVersion)
	high := partition.EventVersionRowKey(startVersion + int64(sliceSize) - 1)

	var (
		wg        sync.WaitGroup
		rows      []Row
		queryErr  error
		headerRow Row
		headerErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		rows, queryErr = partition.Client.Query(ctx, partition.PartitionKey, low, high)
	}()
	go func() {
		defer wg.Done()
		headerRow, headerErr = partition.Client.GetEntity(ctx, partition.PartitionKey, partition.StreamRowKey())
	}()
	wg.Wait()

	if headerErr != nil {
		if errors.Is(headerErr, ErrRowNotFound) {
			return StreamSlice[T]{}, &StreamNotFoundError{
				libError:  libError{Op: "Read", Err: headerErr},
				Partition: partition,
			}
		}
		return StreamSlice[T]{}, headerErr
	}
	if queryErr != nil {
		return StreamSlice[T]{}, queryErr
	}

	header := StreamHeader{
		Partition:  partition,
		Version:    versionOf(headerRow),
		ETag:       headerRow.ETag,
		Properties: withoutVersion(headerRow.Properties),
	}

	events := make([]T, 0, len(rows))
	for _, row := range rows {
		t, err := transform(row)
		if err != nil {
			return StreamSlice[T]{}, err
		}
		events = append(events, t)
	}

	isEnd := int64(len(events)) < int64(sliceSize) ||
		startVersion+int64(len(events))-1 >= header.Version

	logger.Debug("streamtable: read slice",
		"partitionKey", partition.PartitionKey, "startVersion", startVersion,
		"sliceSize", sliceSize, "returned", len(events), "endOfStream", isEnd)

	return StreamSlice[T]{
		Stream:        header,
		Events:        events,
		IsEndOfStream: isEnd,
		StartVersion:  startVersion,
		SliceSize:     sliceSize,
	}, nil
}

func versionOf(row Row) int64 {
	switch v := row.Properties["Version"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

func withoutVersion(props PropertyMap) PropertyMap {
	out := props.clone()
	delete(out, "Version")
	return out
}
