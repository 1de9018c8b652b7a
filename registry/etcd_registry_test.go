package registry

import (
	"context"
	"testing"
	"time"

	"mini-rpc/model"
)

// These tests dial a real etcd instance on localhost:2379, matching how
// the rest of this package is exercised in CI; they are skipped instead
// of failing when no etcd is reachable.

func newTestRegistry(t *testing.T) *EtcdRegistry {
	t.Helper()
	r, err := NewEtcdRegistry(Config{Endpoints: []string{"localhost:2379"}, DialTimeout: time.Second})
	if err != nil {
		t.Skipf("etcd not reachable: %v", err)
	}
	return r
}

func TestRegisterAndDiscover(t *testing.T) {
	r := newTestRegistry(t)
	defer r.Destroy()

	inst1 := model.NewServiceMetaInfo("Arith", "127.0.0.1", 8001)
	inst2 := model.NewServiceMetaInfo("Arith", "127.0.0.1", 8002)

	if err := r.Register(inst1); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(inst2); err != nil {
		t.Fatal(err)
	}

	instances, err := r.Discover(inst1.ServiceKey())
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 2 {
		t.Fatalf("expect 2 instances, got %d", len(instances))
	}

	if err := r.Unregister(inst1); err != nil {
		t.Fatal(err)
	}

	// The cache was populated by the first Discover and is only
	// invalidated by a watch event; force a fresh lookup the same way a
	// second registry instance would see it.
	r.cacheMu.Lock()
	delete(r.cache, inst1.ServiceKey())
	r.cacheMu.Unlock()

	instances, err = r.Discover(inst1.ServiceKey())
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 {
		t.Fatalf("expect 1 instance after unregister, got %d", len(instances))
	}
	if instances[0].Address() != inst2.Address() {
		t.Fatalf("expect %s, got %s", inst2.Address(), instances[0].Address())
	}

	r.Unregister(inst2)
}

func TestDiscoverInGroup(t *testing.T) {
	r := newTestRegistry(t)
	defer r.Destroy()

	a := model.NewServiceMetaInfo("Arith", "127.0.0.1", 8011)
	a.ServiceGroup = "canary"
	b := model.NewServiceMetaInfo("Arith", "127.0.0.1", 8012)
	b.ServiceGroup = "default"

	if err := r.Register(a); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(b); err != nil {
		t.Fatal(err)
	}
	defer r.Unregister(a)
	defer r.Unregister(b)

	canary, err := r.DiscoverInGroup(a.ServiceKey(), "canary")
	if err != nil {
		t.Fatal(err)
	}
	if len(canary) != 1 || canary[0].ServicePort != 8011 {
		t.Fatalf("expect only the canary instance, got %+v", canary)
	}
}

func TestHeartbeatReRegistersMissingNode(t *testing.T) {
	r := newTestRegistry(t)
	defer r.Destroy()

	inst := model.NewServiceMetaInfo("Arith", "127.0.0.1", 8021)
	if err := r.Register(inst); err != nil {
		t.Fatal(err)
	}

	key := r.nodeKey(inst)
	if _, err := r.client.Delete(context.Background(), key); err != nil {
		t.Fatal(err)
	}

	r.Heartbeat()

	r.cacheMu.Lock()
	r.cache = make(map[string][]model.ServiceMetaInfo)
	r.cacheMu.Unlock()

	instances, err := r.Discover(inst.ServiceKey())
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 {
		t.Fatalf("expect node to be re-registered, got %d instances", len(instances))
	}
	r.Unregister(inst)
}
