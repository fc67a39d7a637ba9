package streamtable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeKindTable(t *testing.T) {
	cases := []struct {
		name    string
		first   OperationKind
		second  OperationKind
		want    OperationKind
		wantErr string
	}{
		{"insert then replace", OpInsert, OpReplace, OpInsert, ""},
		{"insert then delete cancels", OpInsert, OpDelete, opNull, ""},
		{"replace then replace", OpReplace, OpReplace, OpReplace, ""},
		{"replace then delete", OpReplace, OpDelete, OpDelete, ""},
		{"delete then insert reclassifies to replace", OpDelete, OpInsert, OpReplace, ""},
		{"insert then insert is illegal", OpInsert, OpInsert, 0, "cannot be followed by"},
		{"null then insert revives", opNull, OpInsert, OpInsert, ""},
		{"null then replace is illegal", opNull, OpReplace, 0, "cannot be applied to NULL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := mergeKind(tc.first, tc.second)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("mergeKind(%s, %s) error = %v, want containing %q", tc.first, tc.second, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("mergeKind(%s, %s) unexpected error: %v", tc.first, tc.second, err)
			}
			if got != tc.want {
				t.Fatalf("mergeKind(%s, %s) = %s, want %s", tc.first, tc.second, got, tc.want)
			}
		})
	}
}

func TestMergeScenarios(t *testing.T) {
	// A chain of operations against one entity, folded in order via
	// repeated merge calls.
	t.Run("insert, replace: row exists with latest attributes", func(t *testing.T) {
		e := &Entity{RowKey: "r1", Properties: PropertyMap{"a": int64(1)}}
		op, err := merge(Insert(e), Replace(e))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if op.Kind != OpInsert {
			t.Fatalf("kind = %s, want Insert", op.Kind)
		}
	})

	t.Run("insert, delete: row absent", func(t *testing.T) {
		e := &Entity{RowKey: "r1"}
		op, err := merge(Insert(e), Delete(e))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if op.Kind != opNull {
			t.Fatalf("kind = %s, want opNull", op.Kind)
		}
	})

	t.Run("insert, replace, delete: row absent", func(t *testing.T) {
		e := &Entity{RowKey: "r1"}
		op, err := merge(Insert(e), Replace(e))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		op, err = merge(op, Delete(e))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if op.Kind != opNull {
			t.Fatalf("kind = %s, want opNull", op.Kind)
		}
	})

	t.Run("insert, insert: InvalidOperation cannot be followed by", func(t *testing.T) {
		e := &Entity{RowKey: "r1"}
		_, err := merge(Insert(e), Insert(e))
		if !IsInvalidOperation(err) || !strings.Contains(err.Error(), "cannot be followed by") {
			t.Fatalf("err = %v, want InvalidOperationError containing 'cannot be followed by'", err)
		}
	})

	t.Run("insert, delete, replace: InvalidOperation cannot be applied to NULL", func(t *testing.T) {
		e := &Entity{RowKey: "r1"}
		op, err := merge(Insert(e), Delete(e))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = merge(op, Replace(e))
		if !IsInvalidOperation(err) || !strings.Contains(err.Error(), "cannot be applied to NULL") {
			t.Fatalf("err = %v, want InvalidOperationError containing 'cannot be applied to NULL'", err)
		}
	})
}

func TestValidateForSubmission(t *testing.T) {
	t.Run("replace without e-tag is rejected", func(t *testing.T) {
		op := Replace(&Entity{RowKey: "r1"})
		err := op.validateForSubmission()
		assert.True(t, IsInvalidOperation(err), "err = %v, want InvalidOperationError", err)
	})

	t.Run("replace with ETagAny is accepted", func(t *testing.T) {
		op := Replace(&Entity{RowKey: "r1", ETag: ETagAny})
		assert.NoError(t, op.validateForSubmission())
	})
}
