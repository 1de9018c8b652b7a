package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"

	"mini-rpc/model"
)

// virtualNodeCount is the number of virtual nodes placed per candidate on
// the ring, matching the reference design.
const virtualNodeCount = 100

// ConsistentHashBalancer maps a request's hash to the first virtual node
// whose hash is greater than or equal to it, wrapping to the smallest node
// if none qualifies. The same requestContext always maps to the same
// candidate as long as the candidate set is unchanged, giving stateful
// services cache affinity.
//
// The ring is rebuilt fresh on every Select call from the current
// candidate list, matching the reference design; there is no ring state on
// the struct to go stale between calls.
type ConsistentHashBalancer struct{}

func (b *ConsistentHashBalancer) Select(requestContext RequestContext, candidates []model.ServiceMetaInfo) (*model.ServiceMetaInfo, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ring := make([]uint32, 0, len(candidates)*virtualNodeCount)
	nodes := make(map[uint32]*model.ServiceMetaInfo, len(candidates)*virtualNodeCount)
	for i := range candidates {
		addr := candidates[i].Address()
		for v := 0; v < virtualNodeCount; v++ {
			hash := crc32.ChecksumIEEE([]byte(fmt.Sprintf("%s#%d", addr, v)))
			ring = append(ring, hash)
			nodes[hash] = &candidates[i]
		}
	}
	sort.Slice(ring, func(i, j int) bool { return ring[i] < ring[j] })

	reqHash := crc32.ChecksumIEEE([]byte(canonicalize(requestContext)))
	idx := sort.Search(len(ring), func(i int) bool { return ring[i] >= reqHash })
	if idx == len(ring) {
		idx = 0
	}
	return nodes[ring[idx]], nil
}

func (b *ConsistentHashBalancer) Name() string { return "consistentHash" }

// canonicalize builds a deterministic string from an open property bag so
// the same requestContext always hashes to the same value regardless of Go
// map iteration order.
func canonicalize(ctx RequestContext) string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := ""
	for _, k := range keys {
		s += k + "=" + ctx[k] + "&"
	}
	return s
}
