package tolerant

import "mini-rpc/plugin"

// Iface is the plugin-loader interface name tolerance strategies register
// under.
const Iface = "tolerant.Strategy"

func init() {
	plugin.RegisterDefault(func(l *plugin.Loader) {
		l.Register(Iface, "failFast", func() (any, error) { return &FailFastTolerantStrategy{}, nil })
		l.Register(Iface, "failSafe", func() (any, error) { return &FailSafeTolerantStrategy{}, nil })
		l.Register(Iface, "failOver", func() (any, error) { return &FailOverTolerantStrategy{}, nil })
		l.Register(Iface, "failBack", func() (any, error) { return NewFailBackTolerantStrategy(128), nil })
	})
}
