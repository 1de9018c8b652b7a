package transport

import (
	"context"
	"net"
	"sync"
	"time"

	poollib "github.com/silenceper/pool"

	"mini-rpc/codec"
	"mini-rpc/errs"
	"mini-rpc/model"
	"mini-rpc/protocol"
)

// muxConn multiplexes many concurrent calls over one physical TCP
// connection: recvLoop reads reply frames as they arrive and routes each to
// its caller by RequestID, and heartbeatLoop keeps the connection alive
// between calls. This is the teacher's ClientTransport, carried over from
// message.RPCMessage framing to protocol.Header + RpcRequest/RpcResponse.
type muxConn struct {
	conn    net.Conn
	sending sync.Mutex
	pending sync.Map // map[uint64]chan pendingReply
	closed  chan struct{}
	once    sync.Once
}

type pendingReply struct {
	header *protocol.Header
	body   []byte
	err    error
}

func newMuxConn(conn net.Conn) *muxConn {
	m := &muxConn{conn: conn, closed: make(chan struct{})}
	go m.recvLoop()
	go m.heartbeatLoop(30 * time.Second)
	return m
}

func (m *muxConn) send(header *protocol.Header, body []byte) (chan pendingReply, error) {
	ch := make(chan pendingReply, 1)
	m.pending.Store(header.RequestID, ch)

	m.sending.Lock()
	err := protocol.Encode(m.conn, header, body)
	m.sending.Unlock()
	if err != nil {
		m.pending.Delete(header.RequestID)
		return nil, err
	}
	return ch, nil
}

// recvLoop is the connection's sole reader; TCP is a byte stream, so
// concurrent reads would tear frames apart.
func (m *muxConn) recvLoop() {
	defer m.markClosed()
	for {
		header, body, err := protocol.Decode(m.conn)
		if err != nil {
			m.failAllPending(err)
			return
		}
		if header.Type == protocol.MsgTypeHeartbeat {
			continue
		}
		if chAny, ok := m.pending.LoadAndDelete(header.RequestID); ok {
			chAny.(chan pendingReply) <- pendingReply{header: header, body: body}
		}
	}
}

func (m *muxConn) failAllPending(err error) {
	m.pending.Range(func(key, value any) bool {
		value.(chan pendingReply) <- pendingReply{err: err}
		m.pending.Delete(key)
		return true
	})
}

func (m *muxConn) heartbeatLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.closed:
			return
		case <-ticker.C:
			m.sending.Lock()
			err := protocol.Encode(m.conn, &protocol.Header{Type: protocol.MsgTypeHeartbeat}, nil)
			m.sending.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (m *muxConn) markClosed() {
	m.once.Do(func() { close(m.closed) })
}

func (m *muxConn) Close() error {
	m.markClosed()
	return m.conn.Close()
}

// Pool is the opt-in connection-pooled transport mode: one
// silenceper/pool.Pool of muxConns per endpoint address. Call borrows a
// muxConn exclusively until its reply arrives, so each connection carries
// one in-flight call at a time; once MaxCap connections are borrowed,
// further calls wait for one to be returned. It replaces the teacher's
// hand-rolled ConnPool (transport/pool.go's buffered-channel borrow/return)
// with the same factory/close-callback shape the pack's other RPC client
// already uses for its own connection pool.
type Pool struct {
	mu    sync.Mutex
	pools map[string]poollib.Pool

	InitialCap  int
	MaxCap      int
	MaxIdle     int
	IdleTimeout time.Duration
}

// NewPool returns a Pool with the reference sizing: at most 16 connections
// per endpoint, up to 4 kept idle, recycled after 60s of inactivity.
func NewPool() *Pool {
	return &Pool{
		pools:       make(map[string]poollib.Pool),
		InitialCap:  1,
		MaxCap:      16,
		MaxIdle:     4,
		IdleTimeout: 60 * time.Second,
	}
}

func (p *Pool) poolFor(addr string) (poollib.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.pools[addr]; ok {
		return existing, nil
	}

	created, err := poollib.NewChannelPool(&poollib.Config{
		InitialCap: p.InitialCap,
		MaxCap:     p.MaxCap,
		MaxIdle:    p.MaxIdle,
		Factory: func() (interface{}, error) {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				return nil, err
			}
			return newMuxConn(conn), nil
		},
		Close: func(obj interface{}) error {
			return obj.(*muxConn).Close()
		},
		IdleTimeout: p.IdleTimeout,
	})
	if err != nil {
		return nil, err
	}
	p.pools[addr] = created
	return created, nil
}

// Call borrows a multiplexed connection to addr, sends one framed request,
// waits for its correlated reply or ctx's deadline, and returns the
// connection to the pool (or closes it, on any transport-level failure so a
// broken socket is never recycled).
func (p *Pool) Call(ctx context.Context, addr string, c codec.Codec, req *model.RpcRequest) (*model.RpcResponse, error) {
	pl, err := p.poolFor(addr)
	if err != nil {
		return nil, errs.NewTransportIO(addr, err)
	}

	v, err := pl.Get()
	if err != nil {
		return nil, errs.NewTransportIO(addr, err)
	}
	mc := v.(*muxConn)

	body, err := c.Marshal(req)
	if err != nil {
		pl.Put(mc)
		return nil, errs.NewSerializationError(string(c.Name()), err)
	}

	header := &protocol.Header{
		Serializer: c.ID(),
		Type:       protocol.MsgTypeRequest,
		RequestID:  nextRequestID(),
	}

	replyCh, err := mc.send(header, body)
	if err != nil {
		pl.Close(mc)
		return nil, errs.NewTransportIO(addr, err)
	}

	select {
	case reply := <-replyCh:
		if reply.err != nil {
			pl.Close(mc)
			return nil, errs.NewTransportIO(addr, reply.err)
		}
		pl.Put(mc)
		if reply.header.Status != protocol.StatusOK {
			return nil, errs.NewProtocolError("server returned non-OK status")
		}
		var resp model.RpcResponse
		if err := c.Unmarshal(reply.body, &resp); err != nil {
			return nil, errs.NewSerializationError(string(c.Name()), err)
		}
		return &resp, nil
	case <-ctx.Done():
		pl.Close(mc)
		return nil, errs.NewTransportTimeout(addr)
	}
}

// Close releases every pooled connection for every address.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pl := range p.pools {
		pl.Release()
	}
	p.pools = make(map[string]poollib.Pool)
}
