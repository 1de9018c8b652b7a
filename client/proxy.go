// Package client implements the RPC caller side: a Proxy that resolves a
// service name against the registry, picks one instance with a load
// balancer, sends the call with a retry strategy wrapping the transport,
// and falls back to a tolerance strategy once retries are exhausted.
//
// This replaces the teacher's untyped Client.Call with a generic Invoke
// that returns the caller's own result type instead of requiring a
// pre-allocated reply pointer.
package client

import (
	"context"
	"fmt"

	"mini-rpc/codec"
	"mini-rpc/errs"
	"mini-rpc/fault/retry"
	"mini-rpc/fault/tolerant"
	"mini-rpc/loadbalance"
	"mini-rpc/model"
	"mini-rpc/registry"
	"mini-rpc/transport"
)

// Proxy holds everything Invoke needs to turn a (serviceName, methodName,
// args) triple into a call against some discovered instance.
type Proxy struct {
	reg      registry.Registry
	balancer loadbalance.Balancer
	retry    retry.Strategy
	tolerant tolerant.Strategy
	codec    codec.Codec
	pool     *transport.Pool // nil selects the per-call DialCall mode
	group    string
	version  string
}

// Option configures a Proxy at construction time.
type Option func(*Proxy)

// WithPool switches the proxy to the pooled/multiplexed transport mode.
func WithPool(p *transport.Pool) Option {
	return func(pr *Proxy) { pr.pool = p }
}

// WithRetry overrides the default NoRetryStrategy.
func WithRetry(s retry.Strategy) Option {
	return func(pr *Proxy) { pr.retry = s }
}

// WithTolerant overrides the default FailFastTolerantStrategy.
func WithTolerant(s tolerant.Strategy) Option {
	return func(pr *Proxy) { pr.tolerant = s }
}

// WithCodec overrides the default JSON codec.
func WithCodec(c codec.Codec) Option {
	return func(pr *Proxy) { pr.codec = c }
}

// WithGroup restricts discovery to one ServiceGroup.
func WithGroup(group string) Option {
	return func(pr *Proxy) { pr.group = group }
}

// WithVersion overrides the default ServiceVersion used to build the
// discovery key.
func WithVersion(version string) Option {
	return func(pr *Proxy) { pr.version = version }
}

// NewProxy builds a Proxy over reg and balancer with fail-fast, no-retry,
// JSON, per-call-socket defaults; apply Option values to change any of
// them.
func NewProxy(reg registry.Registry, balancer loadbalance.Balancer, opts ...Option) *Proxy {
	p := &Proxy{
		reg:      reg,
		balancer: balancer,
		retry:    retry.NoRetryStrategy{},
		tolerant: tolerant.FailFastTolerantStrategy{},
		codec:    &codec.JSONCodec{},
		version:  model.DefaultServiceVersion,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Invoke resolves serviceName.methodName against p's registry, selects one
// instance, and runs the call through p's retry and tolerance strategies,
// decoding the result into T. args are encoded positionally with p's codec;
// their count and order must match the target method's parameters exactly,
// the same contract server.service enforces on the receiving end.
func Invoke[T any](ctx context.Context, p *Proxy, serviceName, methodName string, args ...any) (T, error) {
	var zero T

	serviceKey := fmt.Sprintf("%s:%s", serviceName, p.version)
	candidates, err := p.discover(serviceKey)
	if err != nil {
		return zero, err
	}
	if len(candidates) == 0 {
		resp, err := p.tolerant.DoTolerant(tolerant.Context{ServiceKey: serviceKey}, errs.NewNoEndpoints(serviceKey))
		if err != nil {
			return zero, err
		}
		if resp != nil && resp.Exception != nil {
			return zero, resp.Exception
		}
		return zero, nil
	}

	reqCtx := loadbalance.RequestContext{"methodName": methodName}
	selected, err := p.balancer.Select(reqCtx, candidates)
	if err != nil {
		return zero, err
	}
	if selected == nil {
		return zero, errs.NewNoEndpoints(serviceKey)
	}

	encodedArgs, paramTypes, err := p.encodeArgs(args)
	if err != nil {
		return zero, err
	}

	req := &model.RpcRequest{
		ServiceName:    serviceName,
		MethodName:     methodName,
		ParameterTypes: paramTypes,
		Args:           encodedArgs,
		ServiceVersion: p.version,
	}

	resp, err := p.retry.DoRetry(func() (*model.RpcResponse, error) {
		return p.callEndpoint(ctx, *selected, req)
	})
	if err != nil {
		resp, err = p.tolerant.DoTolerant(tolerant.Context{
			ServiceKey: serviceKey,
			Candidates: candidates,
			Attempt: func(endpoint model.ServiceMetaInfo) (*model.RpcResponse, error) {
				return p.callEndpoint(ctx, endpoint, req)
			},
		}, err)
		if err != nil {
			return zero, err
		}
	}

	if resp.Exception != nil {
		return zero, resp.Exception
	}
	if len(resp.Data) == 0 {
		return zero, nil
	}

	var out T
	if err := p.codec.Unmarshal(resp.Data, &out); err != nil {
		return zero, errs.NewSerializationError(string(p.codec.Name()), err)
	}
	return out, nil
}

func (p *Proxy) discover(serviceKey string) ([]model.ServiceMetaInfo, error) {
	if p.group != "" {
		return p.reg.DiscoverInGroup(serviceKey, p.group)
	}
	return p.reg.Discover(serviceKey)
}

func (p *Proxy) encodeArgs(args []any) ([][]byte, []string, error) {
	encoded := make([][]byte, len(args))
	paramTypes := make([]string, len(args))
	for i, arg := range args {
		body, err := p.codec.Marshal(arg)
		if err != nil {
			return nil, nil, errs.NewSerializationError(string(p.codec.Name()), err)
		}
		encoded[i] = body
		paramTypes[i] = fmt.Sprintf("%T", arg)
	}
	return encoded, paramTypes, nil
}

// callEndpoint dispatches through the pooled transport when one is
// configured, otherwise opens a fresh per-call connection.
func (p *Proxy) callEndpoint(ctx context.Context, endpoint model.ServiceMetaInfo, req *model.RpcRequest) (*model.RpcResponse, error) {
	addr := endpoint.Address()
	if p.pool != nil {
		return p.pool.Call(ctx, addr, p.codec, req)
	}
	return transport.Call(ctx, addr, p.codec, req)
}
