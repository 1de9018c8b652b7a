package plugin

// defaultRegistrars accumulates every package's self-registration callback,
// added via RegisterDefault from that package's init(). This stands in for
// the original SpiLoader's RPC_SYSTEM_SPI_DIR scan: instead of reading a
// resource file at startup, each built-in implementation registers itself
// into this slice at import time, and RegisterDefaults replays all of them
// into a Loader.
var defaultRegistrars []func(*Loader)

// RegisterDefault is called from a package's init() to contribute one or
// more framework-provided plugin registrations. Order among registrars is
// import order, which Go itself does not guarantee across packages — call
// RegisterCustom afterward for anything that must win a conflict.
func RegisterDefault(f func(*Loader)) {
	defaultRegistrars = append(defaultRegistrars, f)
}

// RegisterDefaults installs every framework-provided plugin into l. Call
// this once during bootstrap, before RegisterCustom.
func RegisterDefaults(l *Loader) {
	for _, f := range defaultRegistrars {
		f(l)
	}
}

// RegisterCustom installs a caller-supplied override, replacing any default
// registered under the same (iface, key). This is the "custom SPI
// directory" half of the original two-pass load: it must run after
// RegisterDefaults to win.
func RegisterCustom(l *Loader, iface, key string, factory Factory) {
	l.Register(iface, key, factory)
}
