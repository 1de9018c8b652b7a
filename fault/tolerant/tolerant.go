// Package tolerant provides the strategies invoked once a retry policy has
// exhausted its attempts: give up, degrade, fail over to another endpoint,
// or queue for later.
package tolerant

import (
	"mini-rpc/model"
)

// Call re-attempts the transport call against a specific endpoint, the same
// shape retry.Call wraps.
type Call func(endpoint model.ServiceMetaInfo) (*model.RpcResponse, error)

// Context carries what a tolerance strategy needs beyond the triggering
// cause: the remaining candidate set (for fail-over) and a way to retry
// against one of them.
type Context struct {
	ServiceKey string
	Candidates []model.ServiceMetaInfo
	Attempt    Call
}

// Strategy is invoked once retry has exhausted its attempts.
type Strategy interface {
	DoTolerant(ctx Context, cause error) (*model.RpcResponse, error)

	Name() string
}

// FailFastTolerantStrategy propagates cause to the caller unchanged. This
// is the reference default.
type FailFastTolerantStrategy struct{}

func (FailFastTolerantStrategy) DoTolerant(_ Context, cause error) (*model.RpcResponse, error) {
	return nil, cause
}

func (FailFastTolerantStrategy) Name() string { return "failFast" }

// FailSafeTolerantStrategy swallows cause and returns a response with no
// data, indicating degraded success to the caller instead of an error.
type FailSafeTolerantStrategy struct{}

func (FailSafeTolerantStrategy) DoTolerant(_ Context, cause error) (*model.RpcResponse, error) {
	return &model.RpcResponse{
		Message: "degraded: " + cause.Error(),
	}, nil
}

func (FailSafeTolerantStrategy) Name() string { return "failSafe" }

// FailOverTolerantStrategy reattempts against each of ctx.Candidates in
// order, returning the first successful response, or cause if every one
// fails. The candidate that already failed is not excluded, since the
// context does not record which one it was.
type FailOverTolerantStrategy struct{}

func (FailOverTolerantStrategy) DoTolerant(ctx Context, cause error) (*model.RpcResponse, error) {
	if len(ctx.Candidates) == 0 || ctx.Attempt == nil {
		return nil, cause
	}
	for _, candidate := range ctx.Candidates {
		resp, err := ctx.Attempt(candidate)
		if err == nil {
			return resp, nil
		}
	}
	return nil, cause
}

func (FailOverTolerantStrategy) Name() string { return "failOver" }
