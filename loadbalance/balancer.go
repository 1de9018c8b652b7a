// Package loadbalance selects one candidate instance from the set returned
// by discovery, once per call, on the client's hot path.
//
// Four strategies are implemented:
//   - RoundRobin:      stateless services, equal-capacity instances
//   - Random:          uniform selection, no shared state
//   - WeightedRandom:  heterogeneous instances (teacher's own addition)
//   - ConsistentHash:  stateful services requiring cache affinity
package loadbalance

import "mini-rpc/model"

// RequestContext is the open property bag a balancer may read to make its
// decision; only ConsistentHash reads it (methodName is the conventional
// key most callers set).
type RequestContext map[string]string

// Balancer is the interface every load balancing strategy implements.
type Balancer interface {
	// Select picks one instance from candidates given requestContext.
	// Returns nil, nil if candidates is empty — callers translate a nil
	// result into a NoEndpoints failure.
	Select(requestContext RequestContext, candidates []model.ServiceMetaInfo) (*model.ServiceMetaInfo, error)

	// Name returns the plugin key this strategy is registered under.
	Name() string
}
