package streamtable_test

import (
	"context"
	"testing"

	"github.com/streamtable/streamtable"
	"github.com/streamtable/streamtable/internal/fakeclient"
)

func newTestStore() *streamtable.Store {
	return streamtable.NewStore(fakeclient.New())
}

func TestSequentialWrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	header, err := store.Provision(ctx, "order-1", streamtable.PropertyMap{"kind": "order"})
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if header.Version != 0 {
		t.Fatalf("header.Version = %d, want 0", header.Version)
	}

	header, recorded, err := store.Write(ctx, header, []streamtable.EventData{
		streamtable.NewEventData(streamtable.PropertyMap{"n": int64(1)}),
		streamtable.NewEventData(streamtable.PropertyMap{"n": int64(2)}),
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if header.Version != 2 || len(recorded) != 2 {
		t.Fatalf("header = %+v, recorded = %+v", header, recorded)
	}
	for _, r := range recorded {
		if r.CorrelationId == "" {
			t.Fatalf("recorded event %+v has no CorrelationId", r)
		}
	}

	header, recorded, err = store.Write(ctx, header, []streamtable.EventData{
		streamtable.NewEventData(streamtable.PropertyMap{"n": int64(3)}),
		streamtable.NewEventData(streamtable.PropertyMap{"n": int64(4)}),
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if header.Version != 4 {
		t.Fatalf("header.Version = %d, want 4", header.Version)
	}

	slice, err := streamtable.Read(ctx, store, "order-1", 1, 10, streamtable.PropertyMapTransform)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(slice.Events) != 4 {
		t.Fatalf("len(slice.Events) = %d, want 4", len(slice.Events))
	}
	if !slice.IsEndOfStream {
		t.Fatalf("IsEndOfStream = false, want true")
	}
}

func TestWriteWithIdsDetectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	header, err := store.Provision(ctx, "order-2", nil)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	header, recorded, err := store.Write(ctx, header, []streamtable.EventData{
		streamtable.NewEventDataWithId("a", streamtable.PropertyMap{}),
		streamtable.NewEventDataWithId("b", streamtable.PropertyMap{}),
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(recorded) != 2 {
		t.Fatalf("len(recorded) = %d, want 2", len(recorded))
	}

	_, _, err = store.Write(ctx, header, []streamtable.EventData{
		streamtable.NewEventDataWithId("b", streamtable.PropertyMap{}),
	})
	if !streamtable.IsDuplicateEvent(err) {
		t.Fatalf("err = %v, want DuplicateEventError", err)
	}
}

func TestConcurrentWritersConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if _, err := store.Provision(ctx, "order-3", nil); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	h1, err := store.Open(ctx, "order-3")
	if err != nil {
		t.Fatalf("Open (h1): %v", err)
	}
	h2, err := store.Open(ctx, "order-3")
	if err != nil {
		t.Fatalf("Open (h2): %v", err)
	}

	if _, _, err := store.Write(ctx, h1, []streamtable.EventData{streamtable.NewEventData(streamtable.PropertyMap{"who": "h1"})}); err != nil {
		t.Fatalf("Write via h1: %v", err)
	}

	_, _, err = store.Write(ctx, h2, []streamtable.EventData{streamtable.NewEventData(streamtable.PropertyMap{"who": "h2"})})
	if !streamtable.IsConcurrencyConflict(err) {
		t.Fatalf("err = %v, want ConcurrencyConflictError", err)
	}

	header, err := store.Open(ctx, "order-3")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if header.Version != 1 {
		t.Fatalf("header.Version = %d, want 1 (h2's write must not have landed)", header.Version)
	}
}

func TestWriteExpectedVersion(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if _, err := store.Provision(ctx, "order-4", nil); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if _, _, err := store.WriteExpectedVersion(ctx, "order-4", 0, []streamtable.EventData{
		streamtable.NewEventData(streamtable.PropertyMap{"x": int64(1)}),
	}); err != nil {
		t.Fatalf("first WriteExpectedVersion: %v", err)
	}

	_, _, err := store.WriteExpectedVersion(ctx, "order-4", 0, []streamtable.EventData{
		streamtable.NewEventData(streamtable.PropertyMap{"y": int64(1)}),
	})
	if !streamtable.IsConcurrencyConflict(err) {
		t.Fatalf("err = %v, want ConcurrencyConflictError", err)
	}
}

func TestOpenMissingStreamIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	_, err := store.Open(ctx, "nowhere")
	if !streamtable.IsStreamNotFound(err) {
		t.Fatalf("err = %v, want StreamNotFoundError", err)
	}

	_, ok, err := store.TryOpen(ctx, "nowhere")
	if err != nil {
		t.Fatalf("TryOpen: unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("ok = true, want false")
	}
}

func TestProvisionTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if _, err := store.Provision(ctx, "order-5", nil); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	_, err := store.Provision(ctx, "order-5", nil)
	if !streamtable.IsConcurrencyConflict(err) {
		t.Fatalf("err = %v, want ConcurrencyConflictError", err)
	}
}

func TestSetPropertiesRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	header, err := store.Provision(ctx, "order-6", streamtable.PropertyMap{"a": int64(1)})
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	header, err = store.SetProperties(ctx, header, streamtable.PropertyMap{"a": int64(2), "b": "new"})
	if err != nil {
		t.Fatalf("SetProperties: %v", err)
	}

	reopened, err := store.Open(ctx, "order-6")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.Properties["a"] != int64(2) || reopened.Properties["b"] != "new" {
		t.Fatalf("properties = %+v, want a=2, b=new", reopened.Properties)
	}
}

func TestWriteWithIncludes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	header, err := store.Provision(ctx, "order-7", nil)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	counter := &streamtable.Entity{
		PartitionKey: "order-7",
		RowKey:       "counter",
		Properties:   streamtable.PropertyMap{"count": int64(0)},
	}

	_, _, err = store.Write(ctx, header, []streamtable.EventData{
		streamtable.NewEventData(streamtable.PropertyMap{"n": int64(1)}, streamtable.Insert(counter)),
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
}
