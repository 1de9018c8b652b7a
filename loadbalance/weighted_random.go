package loadbalance

import (
	"math/rand"

	"mini-rpc/model"
)

// WeightedRandomBalancer picks with probability proportional to
// ServiceMetaInfo.Weight. Not one of the required strategies; kept as an
// additional plugin key for heterogeneous-capacity instances.
type WeightedRandomBalancer struct{}

func (b *WeightedRandomBalancer) Select(_ RequestContext, candidates []model.ServiceMetaInfo) (*model.ServiceMetaInfo, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	totalWeight := 0
	for _, c := range candidates {
		w := c.Weight
		if w <= 0 {
			w = 1
		}
		totalWeight += w
	}

	r := rand.Intn(totalWeight)
	for i := range candidates {
		w := candidates[i].Weight
		if w <= 0 {
			w = 1
		}
		r -= w
		if r < 0 {
			return &candidates[i], nil
		}
	}
	// Unreachable given totalWeight accounts for every candidate's weight.
	return &candidates[len(candidates)-1], nil
}

func (b *WeightedRandomBalancer) Name() string { return "weightedRandom" }
