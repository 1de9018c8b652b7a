package middleware

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"mini-rpc/model"
)

// LoggingMiddleware logs every request's service/method, duration, and
// outcome at the level the result warrants.
func LoggingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *model.RpcRequest) *model.RpcResponse {
			start := time.Now()
			resp := next(ctx, req)
			fields := logrus.Fields{
				"service":  req.ServiceName,
				"method":   req.MethodName,
				"duration": time.Since(start),
			}
			if resp.Exception != nil {
				logrus.WithFields(fields).WithField("exception", resp.Exception.Error()).Warn("rpc call failed")
			} else {
				logrus.WithFields(fields).Debug("rpc call handled")
			}
			return resp
		}
	}
}
