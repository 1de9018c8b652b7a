// Package plugin is the named-implementation registry that lets the
// pluggable strategies in mini-rpc (serializer, load balancer, retry,
// tolerance) be selected by a short string key from configuration instead
// of a compile-time import. Remote registries are not registered with the
// loader; callers construct one directly (registry.NewEtcdRegistry).
//
// It replaces the original SpiLoader's two on-disk scan directories with two
// registration passes over the same in-memory map: RegisterDefaults installs
// the framework's built-in implementations, and RegisterCustom lets a caller
// install or override entries afterward. A later registration for the same
// (interface, key) pair wins, mirroring the original's system-then-custom
// scan order.
package plugin

import (
	"fmt"
	"sync"

	"mini-rpc/errs"
)

// Factory constructs one instance of a named implementation. Factories are
// called at most once per (interface, key) pair; the result is cached.
type Factory func() (any, error)

type entry struct {
	iface string
	key   string
}

// Loader is a goroutine-safe registry of named implementations, keyed by an
// interface name and a short string identifier ("roundRobin",
// "fixedInterval", "jdk", ...). It is the sole indirection point between configuration
// strings and concrete Go types.
type Loader struct {
	mu        sync.RWMutex
	factories map[entry]Factory
	instances map[entry]any
}

// NewLoader returns an empty loader. Most callers use the package-level
// Default loader instead of constructing their own.
func NewLoader() *Loader {
	return &Loader{
		factories: make(map[entry]Factory),
		instances: make(map[entry]any),
	}
}

// Register installs factory under (iface, key), overwriting any existing
// registration and evicting its cached instance. iface is conventionally the
// Go interface name, e.g. "codec.Codec" or "loadbalance.Balancer".
func (l *Loader) Register(iface, key string, factory Factory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := entry{iface: iface, key: key}
	l.factories[e] = factory
	delete(l.instances, e)
}

// GetInstance returns the cached instance for (iface, key), building it via
// the registered factory on first use. Returns errs.PluginNotFound if no
// factory was registered.
func (l *Loader) GetInstance(iface, key string) (any, error) {
	e := entry{iface: iface, key: key}

	l.mu.RLock()
	if inst, ok := l.instances[e]; ok {
		l.mu.RUnlock()
		return inst, nil
	}
	factory, ok := l.factories[e]
	l.mu.RUnlock()
	if !ok {
		return nil, errs.NewPluginNotFound(iface, key)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if inst, ok := l.instances[e]; ok {
		return inst, nil
	}
	inst, err := factory()
	if err != nil {
		return nil, fmt.Errorf("plugin: build %s/%s: %w", iface, key, err)
	}
	l.instances[e] = inst
	return inst, nil
}

// Has reports whether a factory is registered for (iface, key), without
// building it.
func (l *Loader) Has(iface, key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.factories[entry{iface: iface, key: key}]
	return ok
}

// Keys returns the registered keys for iface, in no particular order.
func (l *Loader) Keys(iface string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var keys []string
	for e := range l.factories {
		if e.iface == iface {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Default is the process-wide loader used by client and server bootstrap.
// RegisterDefaults populates it before any config is read; RegisterCustom
// runs afterward so caller-supplied plugins can override the built-ins.
var Default = NewLoader()
