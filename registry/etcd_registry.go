package registry

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"mini-rpc/errs"
	"mini-rpc/model"
)

// localNode is what EtcdRegistry remembers about a node it registered, so
// Heartbeat and Destroy can act on it without re-deriving the key or
// re-serializing the payload.
type localNode struct {
	meta    model.ServiceMetaInfo
	leaseID clientv3.LeaseID
}

// EtcdRegistry implements Registry against etcd v3. Each registered node
// is an ephemeral key bound to a lease; discovery results are cached
// locally and invalidated wholesale whenever a watched node changes.
type EtcdRegistry struct {
	client *clientv3.Client
	root   string

	mu         sync.Mutex
	localNodes map[string]*localNode // serviceNodeKey -> node

	cacheMu sync.RWMutex
	cache   map[string][]model.ServiceMetaInfo // serviceKey -> instances

	watchMu sync.Mutex
	watched map[string]bool // node key -> being watched
}

// NewEtcdRegistry is a convenience constructor that calls Init.
func NewEtcdRegistry(cfg Config) (*EtcdRegistry, error) {
	r := &EtcdRegistry{}
	if err := r.Init(cfg); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *EtcdRegistry) Init(cfg Config) error {
	root := cfg.Root
	if root == "" {
		root = RootPrefix
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 5 * time.Second
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return errs.NewRegistryError(root, err)
	}

	// clientv3.New does not wait for a connection, so probe the store once
	// to fail here when it is unreachable.
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if _, err := client.Get(ctx, root, clientv3.WithCountOnly()); err != nil {
		client.Close()
		return errs.NewRegistryError(root, err)
	}

	r.client = client
	r.root = root
	r.localNodes = make(map[string]*localNode)
	r.cache = make(map[string][]model.ServiceMetaInfo)
	r.watched = make(map[string]bool)
	return nil
}

func (r *EtcdRegistry) nodeKey(meta model.ServiceMetaInfo) string {
	return r.root + meta.ServiceNodeKey()
}

func (r *EtcdRegistry) prefix(serviceKey string) string {
	return r.root + serviceKey + "/"
}

// Register creates an ephemeral node bound to a LeaseTTL lease and starts
// etcd's own KeepAlive loop on it. The node key is remembered locally so
// Heartbeat can detect and repair a lost lease, and Unregister/Destroy can
// clean it up.
func (r *EtcdRegistry) Register(meta model.ServiceMetaInfo) error {
	ctx := context.Background()
	key := r.nodeKey(meta)

	lease, err := r.client.Grant(ctx, int64(LeaseTTL.Seconds()))
	if err != nil {
		return errs.NewRegistryError(key, err)
	}

	val, err := json.Marshal(meta)
	if err != nil {
		return errs.NewRegistryError(key, err)
	}

	if _, err := r.client.Put(ctx, key, string(val), clientv3.WithLease(lease.ID)); err != nil {
		return errs.NewRegistryError(key, err)
	}

	keepAlive, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return errs.NewRegistryError(key, err)
	}
	go func() {
		for range keepAlive {
		}
	}()

	r.mu.Lock()
	r.localNodes[key] = &localNode{meta: meta, leaseID: lease.ID}
	r.mu.Unlock()
	return nil
}

// Unregister deletes the node and forgets it locally.
func (r *EtcdRegistry) Unregister(meta model.ServiceMetaInfo) error {
	key := r.nodeKey(meta)
	if _, err := r.client.Delete(context.Background(), key); err != nil {
		return errs.NewRegistryError(key, err)
	}
	r.mu.Lock()
	delete(r.localNodes, key)
	r.mu.Unlock()
	return nil
}

// Discover returns the live instances for serviceKey, consulting the
// cache first.
func (r *EtcdRegistry) Discover(serviceKey string) ([]model.ServiceMetaInfo, error) {
	if instances, ok := r.cachedInstances(serviceKey); ok {
		return instances, nil
	}

	prefix := r.prefix(serviceKey)
	resp, err := r.client.Get(context.Background(), prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, errs.NewRegistryError(serviceKey, err)
	}

	instances := make([]model.ServiceMetaInfo, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var meta model.ServiceMetaInfo
		if err := json.Unmarshal(kv.Value, &meta); err != nil {
			continue
		}
		instances = append(instances, meta)
		r.watchNode(string(kv.Key))
	}

	r.cacheMu.Lock()
	r.cache[serviceKey] = instances
	r.cacheMu.Unlock()

	return instances, nil
}

// DiscoverInGroup is Discover filtered to ServiceGroup == group.
func (r *EtcdRegistry) DiscoverInGroup(serviceKey, group string) ([]model.ServiceMetaInfo, error) {
	all, err := r.Discover(serviceKey)
	if err != nil {
		return nil, err
	}
	filtered := make([]model.ServiceMetaInfo, 0, len(all))
	for _, meta := range all {
		if meta.ServiceGroup == group {
			filtered = append(filtered, meta)
		}
	}
	return filtered, nil
}

func (r *EtcdRegistry) cachedInstances(serviceKey string) ([]model.ServiceMetaInfo, bool) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	instances, ok := r.cache[serviceKey]
	return instances, ok
}

// watchNode installs a watch on a single observed node key, once. Any
// DELETE or PUT on that key clears the entire discovery cache — a cache
// entry is a snapshot that is at most one change-event stale, never
// partially updated.
func (r *EtcdRegistry) watchNode(key string) {
	r.watchMu.Lock()
	if r.watched[key] {
		r.watchMu.Unlock()
		return
	}
	r.watched[key] = true
	r.watchMu.Unlock()

	go func() {
		watchChan := r.client.Watch(context.Background(), key)
		for range watchChan {
			r.cacheMu.Lock()
			r.cache = make(map[string][]model.ServiceMetaInfo)
			r.cacheMu.Unlock()

			r.watchMu.Lock()
			delete(r.watched, key)
			r.watchMu.Unlock()
			return
		}
	}()
}

// Heartbeat re-announces any locally tracked node missing from the store.
// etcd's own KeepAlive already renews the lease on a healthy connection;
// this loop covers the case where the node disappeared anyway (lease
// expired while KeepAlive was starved, store restarted, ...).
func (r *EtcdRegistry) Heartbeat() {
	r.mu.Lock()
	nodes := make([]*localNode, 0, len(r.localNodes))
	for _, n := range r.localNodes {
		nodes = append(nodes, n)
	}
	r.mu.Unlock()

	for _, n := range nodes {
		key := r.nodeKey(n.meta)
		resp, err := r.client.Get(context.Background(), key)
		if err != nil || len(resp.Kvs) > 0 {
			continue
		}
		// Missing from the store: treat as expired, re-register from scratch.
		_ = r.Register(n.meta)
	}
}

// Destroy deletes every locally tracked node and closes the etcd session.
func (r *EtcdRegistry) Destroy() error {
	r.mu.Lock()
	nodes := make([]*localNode, 0, len(r.localNodes))
	for _, n := range r.localNodes {
		nodes = append(nodes, n)
	}
	r.mu.Unlock()

	for _, n := range nodes {
		_ = r.Unregister(n.meta)
	}
	return r.client.Close()
}
