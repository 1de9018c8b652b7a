// Package middleware provides server-side request interceptors that run
// ahead of dispatch: structured logging and rate limiting. Retries and
// timeouts are handled elsewhere — retries belong to the client pipeline
// (mini-rpc/fault/retry) and per-call deadlines ride context.Context
// directly through the transport and dispatch path, so neither needs a
// middleware stage here.
package middleware

import (
	"context"

	"mini-rpc/model"
)

// HandlerFunc is one step of server-side request handling: given a decoded
// request, produce a response.
type HandlerFunc func(ctx context.Context, req *model.RpcRequest) *model.RpcResponse

// Middleware wraps a HandlerFunc with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares into one, applied outermost-first: the first
// middleware in the list sees the request before any other.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
