package streamtable

import (
	"strings"
	"testing"
)

func TestTrackChanges(t *testing.T) {
	t.Run("folds multiple ops against the same handle in order", func(t *testing.T) {
		e := &Entity{RowKey: "r1", Properties: PropertyMap{"a": int64(1)}}
		ops := []EntityOperation{Insert(e), Replace(e)}

		result, err := trackChanges(ops, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 1 || result[0].Kind != OpInsert {
			t.Fatalf("result = %+v, want a single folded Insert", result)
		}
	})

	t.Run("delete then insert on an existing row reclassifies to replace", func(t *testing.T) {
		e := &Entity{RowKey: "r1", ETag: "some-etag"}
		ops := []EntityOperation{Delete(e), Insert(e)}

		result, err := trackChanges(ops, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 1 || result[0].Kind != OpReplace {
			t.Fatalf("result = %+v, want a single folded Replace", result)
		}
	})

	t.Run("distinct handles sharing a row key are rejected", func(t *testing.T) {
		e1 := &Entity{RowKey: "r1"}
		e2 := &Entity{RowKey: "r1"}
		ops := []EntityOperation{Insert(e1), Replace(e2)}

		_, err := trackChanges(ops, true)
		if !IsInvalidOperation(err) || !strings.Contains(err.Error(), "different entity instances") {
			t.Fatalf("err = %v, want InvalidOperationError containing 'different entity instances'", err)
		}
	})

	t.Run("ops against separate rows pass through independently", func(t *testing.T) {
		a := &Entity{RowKey: "a"}
		b := &Entity{RowKey: "b"}
		ops := []EntityOperation{Insert(a), Insert(b)}

		result, err := trackChanges(ops, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 2 {
			t.Fatalf("result len = %d, want 2", len(result))
		}
	})

	t.Run("an op collapsed to opNull is dropped from the result", func(t *testing.T) {
		e := &Entity{RowKey: "r1"}
		ops := []EntityOperation{Insert(e), Delete(e)}

		result, err := trackChanges(ops, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 0 {
			t.Fatalf("result = %+v, want empty", result)
		}
	})

	t.Run("track=false passes includes straight through unfolded", func(t *testing.T) {
		e := &Entity{RowKey: "r1"}
		ops := []EntityOperation{Insert(e), Insert(e)} // illegal if folded, fine untouched

		result, err := trackChanges(ops, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 2 {
			t.Fatalf("result len = %d, want 2 (unfolded)", len(result))
		}
	})
}
