package loadbalance

import "mini-rpc/plugin"

// Iface is the plugin-loader interface name balancers register under.
const Iface = "loadbalance.Balancer"

func init() {
	plugin.RegisterDefault(func(l *plugin.Loader) {
		l.Register(Iface, "roundRobin", func() (any, error) { return &RoundRobinBalancer{}, nil })
		l.Register(Iface, "random", func() (any, error) { return &RandomBalancer{}, nil })
		l.Register(Iface, "weightedRandom", func() (any, error) { return &WeightedRandomBalancer{}, nil })
		l.Register(Iface, "consistentHash", func() (any, error) { return &ConsistentHashBalancer{}, nil })
	})
}
