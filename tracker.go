package streamtable

import "fmt"

// trackChanges groups ops by row key preserving insertion order of first
// appearance, folds each group with merge, and emits the final operation
// per group in that order, skipping groups collapsed to opNull.
//
// Entities within a group are compared by pointer identity, not by value:
// the contract is that a caller reusing the same *Entity handle across
// events gets that handle's updated e-tag carried forward by the previous
// fold step, while two distinct handles sharing a row key are a mistake the
// library must catch rather than silently resolve.
//
// When track is false the includes pass straight through in the order
// given — no grouping, no folding, no deduplication. Conflicting operations
// against the same row are then the caller's responsibility.
func trackChanges(ops []EntityOperation, track bool) ([]EntityOperation, error) {
	if !track {
		return ops, nil
	}

	type group struct {
		entity  *Entity
		current EntityOperation
	}

	order := make([]string, 0, len(ops))
	groups := make(map[string]*group, len(ops))

	for _, op := range ops {
		key := op.Entity.RowKey
		g, exists := groups[key]
		if !exists {
			groups[key] = &group{entity: op.Entity, current: op}
			order = append(order, key)
			continue
		}
		if g.entity != op.Entity {
			return nil, newInvalidOperation("trackChanges", fmt.Sprintf("different entity instances for the same row key %q", key))
		}
		merged, err := merge(g.current, op)
		if err != nil {
			return nil, err
		}
		g.current = merged
	}

	result := make([]EntityOperation, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.current.Kind == opNull {
			continue
		}
		result = append(result, g.current)
	}
	return result, nil
}
