package tolerant

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-rpc/model"
)

var errBoom = errors.New("boom")

func TestFailFastPropagatesCause(t *testing.T) {
	s := FailFastTolerantStrategy{}
	_, err := s.DoTolerant(Context{}, errBoom)
	require.ErrorIs(t, err, errBoom)
}

func TestFailSafeReturnsDegradedResponse(t *testing.T) {
	s := FailSafeTolerantStrategy{}
	resp, err := s.DoTolerant(Context{}, errBoom)
	require.NoError(t, err)
	assert.Nil(t, resp.Data)
	assert.Contains(t, resp.Message, "boom")
}

func TestFailOverTriesRemainingCandidates(t *testing.T) {
	s := FailOverTolerantStrategy{}
	candidates := []model.ServiceMetaInfo{
		{ServiceHost: "127.0.0.1", ServicePort: 1},
		{ServiceHost: "127.0.0.1", ServicePort: 2},
	}
	attempts := 0
	ctx := Context{
		Candidates: candidates,
		Attempt: func(endpoint model.ServiceMetaInfo) (*model.RpcResponse, error) {
			attempts++
			if endpoint.ServicePort == 2 {
				return &model.RpcResponse{Data: []byte("ok")}, nil
			}
			return nil, errBoom
		},
	}

	resp, err := s.DoTolerant(ctx, errBoom)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), resp.Data)
	assert.Equal(t, 2, attempts)
}

func TestFailOverExhaustsToCause(t *testing.T) {
	s := FailOverTolerantStrategy{}
	ctx := Context{
		Candidates: []model.ServiceMetaInfo{{ServicePort: 1}},
		Attempt: func(model.ServiceMetaInfo) (*model.RpcResponse, error) {
			return nil, errBoom
		},
	}
	_, err := s.DoTolerant(ctx, errBoom)
	require.ErrorIs(t, err, errBoom)
}

func TestFailBackReturnsImmediatelyAndDrainsLater(t *testing.T) {
	s := NewFailBackTolerantStrategy(4)
	defer s.Close()

	done := make(chan struct{})
	ctx := Context{
		Candidates: []model.ServiceMetaInfo{{ServicePort: 1}},
		Attempt: func(model.ServiceMetaInfo) (*model.RpcResponse, error) {
			close(done)
			return &model.RpcResponse{Data: []byte("ok")}, nil
		},
	}

	resp, err := s.DoTolerant(ctx, errBoom)
	require.NoError(t, err)
	assert.Nil(t, resp.Data)
	assert.Contains(t, resp.Message, "queued")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected queued call to drain")
	}
}
