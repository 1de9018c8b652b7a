// Package retry wraps a single unit of work — the transport call, after
// discovery and load-balancer selection have already picked an endpoint —
// with a re-attempt policy. It sits in the client pipeline, not in server
// middleware; retrying does not re-run discovery or selection between
// attempts.
package retry

import (
	"time"

	"mini-rpc/errs"
	"mini-rpc/model"
)

// Call is one attempt at the transport call. It must be safe to invoke
// more than once — each retry re-enters it fresh, it does not resume a
// partial attempt.
type Call func() (*model.RpcResponse, error)

// Strategy is a re-attempt policy around Call.
type Strategy interface {
	// DoRetry runs call according to the strategy. FixedIntervalRetryStrategy
	// returns errs.RetryExhausted if every attempt failed; NoRetryStrategy
	// returns its single attempt's error unchanged.
	DoRetry(call Call) (*model.RpcResponse, error)

	Name() string
}

// NoRetryStrategy makes exactly one attempt and passes through whatever it
// returns, success or failure.
type NoRetryStrategy struct{}

func (NoRetryStrategy) DoRetry(call Call) (*model.RpcResponse, error) {
	return call()
}

func (NoRetryStrategy) Name() string { return "no" }

// FixedIntervalRetryStrategy makes up to MaxAttempts attempts, waiting
// Interval between each, retrying on any error.
type FixedIntervalRetryStrategy struct {
	MaxAttempts int
	Interval    time.Duration
}

// NewFixedIntervalRetryStrategy returns the reference policy: 3 attempts,
// 3 seconds apart.
func NewFixedIntervalRetryStrategy() *FixedIntervalRetryStrategy {
	return &FixedIntervalRetryStrategy{MaxAttempts: 3, Interval: 3 * time.Second}
}

func (s *FixedIntervalRetryStrategy) DoRetry(call Call) (*model.RpcResponse, error) {
	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := call()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt < maxAttempts {
			time.Sleep(s.Interval)
		}
	}
	return nil, errs.NewRetryExhausted(maxAttempts, lastErr)
}

func (s *FixedIntervalRetryStrategy) Name() string { return "fixedInterval" }
