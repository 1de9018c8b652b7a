package codec

import "mini-rpc/plugin"

// Iface is the plugin-loader interface name codecs register under.
const Iface = "codec.Codec"

func init() {
	plugin.RegisterDefault(func(l *plugin.Loader) {
		l.Register(Iface, string(NameJDK), func() (any, error) { return &JDKCodec{}, nil })
		l.Register(Iface, string(NameJSON), func() (any, error) { return &JSONCodec{}, nil })
		l.Register(Iface, string(NameKryo), func() (any, error) { return &KryoCodec{}, nil })
		l.Register(Iface, string(NameHessian), func() (any, error) { return &HessianCodec{}, nil })
	})
}
