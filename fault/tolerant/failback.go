package tolerant

import (
	"sync"

	"github.com/sirupsen/logrus"

	"mini-rpc/model"
)

// pendingCall is one request queued for later asynchronous retry.
type pendingCall struct {
	ctx Context
}

// FailBackTolerantStrategy enqueues the request and returns immediately
// with an absent-data response; a background goroutine drains the queue
// and reattempts each entry against its candidate set.
type FailBackTolerantStrategy struct {
	queue chan pendingCall

	closeOnce sync.Once
	done      chan struct{}
}

// NewFailBackTolerantStrategy starts the background drain loop. capacity
// bounds how many pending calls may be queued before DoTolerant starts
// dropping the oldest one (queued calls are best-effort, not durable).
func NewFailBackTolerantStrategy(capacity int) *FailBackTolerantStrategy {
	if capacity <= 0 {
		capacity = 128
	}
	s := &FailBackTolerantStrategy{
		queue: make(chan pendingCall, capacity),
		done:  make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *FailBackTolerantStrategy) DoTolerant(ctx Context, cause error) (*model.RpcResponse, error) {
	select {
	case s.queue <- pendingCall{ctx: ctx}:
	default:
		// Queue full: drop the oldest pending retry to make room, the
		// same trade every bounded best-effort retry queue makes.
		select {
		case <-s.queue:
		default:
		}
		select {
		case s.queue <- pendingCall{ctx: ctx}:
		default:
		}
	}
	return &model.RpcResponse{
		Message: "queued for retry: " + cause.Error(),
	}, nil
}

func (s *FailBackTolerantStrategy) Name() string { return "failBack" }

func (s *FailBackTolerantStrategy) drain() {
	for {
		select {
		case p := <-s.queue:
			s.attempt(p)
		case <-s.done:
			return
		}
	}
}

func (s *FailBackTolerantStrategy) attempt(p pendingCall) {
	if p.ctx.Attempt == nil {
		return
	}
	for _, candidate := range p.ctx.Candidates {
		if _, err := p.ctx.Attempt(candidate); err == nil {
			return
		}
	}
	logrus.WithField("serviceKey", p.ctx.ServiceKey).Warn("fail-back retry exhausted all candidates")
}

// Close stops the drain loop. Queued-but-undrained calls are discarded.
func (s *FailBackTolerantStrategy) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
