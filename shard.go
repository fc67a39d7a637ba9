package streamtable

import "hash/fnv"

// Shard resolves a stream id to one of a fixed number of backend accounts,
// letting a deployment spread partitions across more than one storage
// account without changing how callers name streams. The hash is
// deterministic and non-cryptographic: the same streamId always resolves to
// the same index for a given accountCount, and nothing about the mapping
// needs to be hidden from callers.
type Shard struct{}

// Resolve returns an index in [0, accountCount) for streamId. accountCount
// must be >= 1.
func (Shard) Resolve(streamId string, accountCount int) int {
	if accountCount <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(streamId))
	return int(h.Sum32() % uint32(accountCount))
}
