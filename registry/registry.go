// Package registry is the remote service registry: registration with a
// leased (TTL) node, discovery with a local cache, change-watch driven
// invalidation, and heartbeat renewal.
//
// This is distinct from the server's local registry (serviceName →
// dispatch handle), which never leaves the process; see the server
// package for that one.
package registry

import (
	"time"

	"mini-rpc/model"
)

// RootPrefix is the default key-space root. Every node lives under
// "{Root}/{serviceNodeKey}".
const RootPrefix = "/rpc/"

// LeaseTTL is the lease duration attached to every registered node. If a
// provider dies without unregistering, the node disappears from the store
// within this window.
const LeaseTTL = 30 * time.Second

// HeartbeatInterval is how often Heartbeat should be invoked to keep
// locally tracked nodes alive and re-announce any that fell out of the
// store between ticks.
const HeartbeatInterval = 10 * time.Second

// Config configures a Registry's backing store connection.
type Config struct {
	// Endpoints lists the backing store's addresses, e.g. etcd's
	// "host:port" client URLs.
	Endpoints []string
	// Root overrides RootPrefix when non-empty.
	Root string
	// DialTimeout bounds the initial connection attempt in Init.
	DialTimeout time.Duration
}

// Registry is the remote service registry contract. Implementations MUST
// honor: ephemeral-on-process-death nodes, atomic writes, prefix query,
// and per-key change notification — the concrete mechanism (etcd leases,
// ZooKeeper ephemeral nodes, ...) is an implementation detail.
type Registry interface {
	// Init establishes a session against the backing store. Must be
	// called once before any other method.
	Init(cfg Config) error

	// Register creates an ephemeral node for meta under a lease and
	// remembers its node key for later heartbeat/unregister.
	Register(meta model.ServiceMetaInfo) error

	// Unregister deletes meta's node and forgets it locally.
	Unregister(meta model.ServiceMetaInfo) error

	// Discover returns the live instances for serviceKey, consulting the
	// local cache before querying the store.
	Discover(serviceKey string) ([]model.ServiceMetaInfo, error)

	// DiscoverInGroup is Discover filtered to instances advertising the
	// given ServiceGroup.
	DiscoverInGroup(serviceKey, group string) ([]model.ServiceMetaInfo, error)

	// Heartbeat re-announces every locally tracked node that has fallen
	// out of the store. Intended to be called on HeartbeatInterval by the
	// caller (the registry does not start its own ticker).
	Heartbeat()

	// Destroy deletes all locally tracked nodes and closes the session.
	Destroy() error
}
