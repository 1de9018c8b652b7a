package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"mini-rpc/model"
)

// RateLimitMiddleware gates dispatch with a token-bucket limiter, ahead of
// the local registry lookup and reflective invoke.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *model.RpcRequest) *model.RpcResponse {
			if !limiter.Allow() {
				return &model.RpcResponse{
					Message:   "rate limit exceeded",
					Exception: &model.ExceptionInfo{Kind: "RateLimitExceeded", Message: "rate limit exceeded"},
				}
			}
			return next(ctx, req)
		}
	}
}
