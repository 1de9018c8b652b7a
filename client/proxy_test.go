package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-rpc/fault/retry"
	"mini-rpc/fault/tolerant"
	"mini-rpc/loadbalance"
	"mini-rpc/model"
	"mini-rpc/registry"
	"mini-rpc/server"
)

type staticRegistry struct {
	instances map[string][]model.ServiceMetaInfo
}

func newStaticRegistry(serviceKey string, instances ...model.ServiceMetaInfo) *staticRegistry {
	return &staticRegistry{instances: map[string][]model.ServiceMetaInfo{serviceKey: instances}}
}

func (r *staticRegistry) Init(registry.Config) error { return nil }
func (r *staticRegistry) Register(model.ServiceMetaInfo) error   { return nil }
func (r *staticRegistry) Unregister(model.ServiceMetaInfo) error { return nil }
func (r *staticRegistry) Discover(serviceKey string) ([]model.ServiceMetaInfo, error) {
	return r.instances[serviceKey], nil
}
func (r *staticRegistry) DiscoverInGroup(serviceKey, group string) ([]model.ServiceMetaInfo, error) {
	var filtered []model.ServiceMetaInfo
	for _, inst := range r.instances[serviceKey] {
		if inst.ServiceGroup == group {
			filtered = append(filtered, inst)
		}
	}
	return filtered, nil
}
func (r *staticRegistry) Heartbeat()      {}
func (r *staticRegistry) Destroy() error  { return nil }

type arith struct{}

func (arith) Add(x int, y int) (int, error) { return x + y, nil }

func startArithServer(t *testing.T, addr string) {
	t.Helper()
	svr := server.NewServer()
	require.NoError(t, svr.Register(&arith{}))
	go svr.Serve("tcp", addr, "", nil)
	time.Sleep(50 * time.Millisecond)
	t.Cleanup(func() { svr.Shutdown(time.Second) })
}

func TestInvokeRoundTrip(t *testing.T) {
	startArithServer(t, ":19101")

	reg := newStaticRegistry("arith:1.0", model.NewServiceMetaInfo("arith", "127.0.0.1", 19101))
	p := NewProxy(reg, &loadbalance.RoundRobinBalancer{})

	sum, err := Invoke[int](context.Background(), p, "arith", "Add", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, sum)
}

func TestInvokeNoEndpointsReturnsError(t *testing.T) {
	reg := newStaticRegistry("arith:1.0")
	p := NewProxy(reg, &loadbalance.RoundRobinBalancer{})

	_, err := Invoke[int](context.Background(), p, "arith", "Add", 2, 3)
	require.Error(t, err)
}

func TestInvokeUnreachableEndpointUsesTolerantStrategy(t *testing.T) {
	reg := newStaticRegistry("arith:1.0", model.NewServiceMetaInfo("arith", "127.0.0.1", 1))
	p := NewProxy(reg, &loadbalance.RoundRobinBalancer{},
		WithRetry(&retry.FixedIntervalRetryStrategy{MaxAttempts: 1}),
		WithTolerant(tolerant.FailSafeTolerantStrategy{}))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	sum, err := Invoke[int](ctx, p, "arith", "Add", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)
}
