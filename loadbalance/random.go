package loadbalance

import (
	"math/rand"

	"mini-rpc/model"
)

// RandomBalancer picks uniformly among the candidates.
type RandomBalancer struct{}

func (b *RandomBalancer) Select(_ RequestContext, candidates []model.ServiceMetaInfo) (*model.ServiceMetaInfo, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[rand.Intn(len(candidates))], nil
}

func (b *RandomBalancer) Name() string { return "random" }
