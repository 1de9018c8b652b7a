// Package test exercises the assembled pipeline end to end: client proxy
// through registry discovery, load balancing, transport, and server-side
// dispatch, mirroring the teacher's own test/integration_test.go coverage
// against the new component shapes.
package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-rpc/client"
	"mini-rpc/loadbalance"
	"mini-rpc/middleware"
	"mini-rpc/model"
	"mini-rpc/registry"
	"mini-rpc/server"
)

// Arith is the demo service exercised by both tests here.
type Arith struct{}

func (Arith) Add(a, b int) (int, error)      { return a + b, nil }
func (Arith) Multiply(a, b int) (int, error) { return a * b, nil }

// fakeRegistry is an in-memory Registry, standing in for etcd so these
// tests don't require a running backing store.
type fakeRegistry struct {
	instances map[string][]model.ServiceMetaInfo
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{instances: make(map[string][]model.ServiceMetaInfo)}
}

func (r *fakeRegistry) Init(registry.Config) error { return nil }

func (r *fakeRegistry) Register(meta model.ServiceMetaInfo) error {
	r.instances[meta.ServiceKey()] = append(r.instances[meta.ServiceKey()], meta)
	return nil
}

func (r *fakeRegistry) Unregister(meta model.ServiceMetaInfo) error {
	key := meta.ServiceKey()
	insts := r.instances[key]
	for i, inst := range insts {
		if inst.ServiceNodeKey() == meta.ServiceNodeKey() {
			r.instances[key] = append(insts[:i], insts[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRegistry) Discover(serviceKey string) ([]model.ServiceMetaInfo, error) {
	return r.instances[serviceKey], nil
}

func (r *fakeRegistry) DiscoverInGroup(serviceKey, group string) ([]model.ServiceMetaInfo, error) {
	var filtered []model.ServiceMetaInfo
	for _, inst := range r.instances[serviceKey] {
		if inst.ServiceGroup == group {
			filtered = append(filtered, inst)
		}
	}
	return filtered, nil
}

func (r *fakeRegistry) Heartbeat()     {}
func (r *fakeRegistry) Destroy() error { return nil }

// TestFullPipelineSingleServer covers Client → Registry → LoadBalancer →
// Transport → Codec → Middleware → Server → reflective dispatch.
func TestFullPipelineSingleServer(t *testing.T) {
	reg := newFakeRegistry()

	svr := server.NewServer()
	svr.Use(middleware.LoggingMiddleware())
	require.NoError(t, svr.Register(&Arith{}))

	addr := "127.0.0.1:19090"
	go svr.Serve("tcp", ":19090", addr, reg)
	time.Sleep(100 * time.Millisecond)
	t.Cleanup(func() { svr.Shutdown(3 * time.Second) })

	bal := &loadbalance.RoundRobinBalancer{}
	proxy := client.NewProxy(reg, bal)

	ctx := context.Background()
	sum, err := client.Invoke[int](ctx, proxy, "Arith", "Add", 3, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, sum)

	product, err := client.Invoke[int](ctx, proxy, "Arith", "Multiply", 4, 6)
	require.NoError(t, err)
	assert.Equal(t, 24, product)
}

// TestFullPipelineMultiServer covers load balancing across instances: two
// servers registered under the same service key, ten requests spread
// across both via round robin, every result verified.
func TestFullPipelineMultiServer(t *testing.T) {
	reg := newFakeRegistry()

	svr1 := server.NewServer()
	require.NoError(t, svr1.Register(&Arith{}))
	go svr1.Serve("tcp", ":19091", "127.0.0.1:19091", reg)

	svr2 := server.NewServer()
	require.NoError(t, svr2.Register(&Arith{}))
	go svr2.Serve("tcp", ":19092", "127.0.0.1:19092", reg)

	time.Sleep(100 * time.Millisecond)
	t.Cleanup(func() {
		svr1.Shutdown(3 * time.Second)
		svr2.Shutdown(3 * time.Second)
	})

	bal := &loadbalance.RoundRobinBalancer{}
	proxy := client.NewProxy(reg, bal)

	ctx := context.Background()
	for i := 1; i <= 10; i++ {
		sum, err := client.Invoke[int](ctx, proxy, "Arith", "Add", i, i*10)
		require.NoError(t, err)
		assert.Equal(t, i+i*10, sum)
	}
}
