package retry

import "mini-rpc/plugin"

// Iface is the plugin-loader interface name retry strategies register
// under.
const Iface = "retry.Strategy"

func init() {
	plugin.RegisterDefault(func(l *plugin.Loader) {
		l.Register(Iface, "no", func() (any, error) { return &NoRetryStrategy{}, nil })
		l.Register(Iface, "fixedInterval", func() (any, error) { return NewFixedIntervalRetryStrategy(), nil })
	})
}
