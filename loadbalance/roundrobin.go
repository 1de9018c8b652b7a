package loadbalance

import (
	"sync/atomic"

	"mini-rpc/model"
)

// RoundRobinBalancer distributes requests evenly across all candidates in
// order. Uses an atomic counter for lock-free, goroutine-safe operation;
// the counter is shared across every Select call on this instance.
type RoundRobinBalancer struct {
	counter int64
}

func (b *RoundRobinBalancer) Select(_ RequestContext, candidates []model.ServiceMetaInfo) (*model.ServiceMetaInfo, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	index := atomic.AddInt64(&b.counter, 1) % int64(len(candidates))
	return &candidates[index], nil
}

func (b *RoundRobinBalancer) Name() string { return "roundRobin" }
