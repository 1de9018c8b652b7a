package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-rpc/model"
)

func TestNoRetrySingleAttempt(t *testing.T) {
	calls := 0
	s := NoRetryStrategy{}
	_, err := s.DoRetry(func() (*model.RpcResponse, error) {
		calls++
		return nil, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNoRetryPassesThroughSuccess(t *testing.T) {
	s := NoRetryStrategy{}
	want := &model.RpcResponse{Data: []byte("ok")}
	got, err := s.DoRetry(func() (*model.RpcResponse, error) { return want, nil })
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestFixedIntervalSucceedsBeforeExhausting(t *testing.T) {
	s := &FixedIntervalRetryStrategy{MaxAttempts: 3, Interval: time.Millisecond}
	calls := 0
	resp, err := s.DoRetry(func() (*model.RpcResponse, error) {
		calls++
		if calls < 2 {
			return nil, errors.New("transient")
		}
		return &model.RpcResponse{Data: []byte("ok")}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []byte("ok"), resp.Data)
}

func TestFixedIntervalExhausted(t *testing.T) {
	s := &FixedIntervalRetryStrategy{MaxAttempts: 3, Interval: time.Millisecond}
	calls := 0
	_, err := s.DoRetry(func() (*model.RpcResponse, error) {
		calls++
		return nil, errors.New("permanent")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestNewFixedIntervalRetryStrategyDefaults(t *testing.T) {
	s := NewFixedIntervalRetryStrategy()
	assert.Equal(t, 3, s.MaxAttempts)
	assert.Equal(t, 3*time.Second, s.Interval)
}
