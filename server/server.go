// Package server implements the RPC server: service registration against a
// process-local registry, an accept loop that dispatches one goroutine per
// connection and one goroutine per frame, and the reflective invoke that
// turns a decoded RpcRequest into an RpcResponse.
//
// Request processing pipeline:
//
//	Accept conn → handleConn (single goroutine reads frames in order)
//	  → for each frame: go handleRequest (parallel processing)
//	    → Codec.Unmarshal → Middleware chain → businessHandler (reflect.Call)
//	    → Codec.Marshal → write response
package server

import (
	"context"
	"fmt"
	"net"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"mini-rpc/codec"
	"mini-rpc/errs"
	"mini-rpc/middleware"
	"mini-rpc/model"
	"mini-rpc/protocol"
	"mini-rpc/registry"
)

// Server is the RPC server: it registers implementation handles and serves
// requests for them over TCP.
type Server struct {
	local       *localRegistry
	listener    net.Listener
	wg          sync.WaitGroup
	shutdown    atomic.Bool
	middlewares []middleware.Middleware
	handler     middleware.HandlerFunc

	reg           registry.Registry
	advertiseAddr string
	group         string
}

// NewServer creates a server with an empty local registry.
func NewServer() *Server {
	return &Server{local: newLocalRegistry()}
}

// Register binds rcvr's RPC-eligible methods under its type name.
func (svr *Server) Register(rcvr any) error {
	svc, err := newService(rcvr)
	if err != nil {
		return err
	}
	svr.local.register(svc)
	return nil
}

// Use appends a middleware, applied in the order added.
func (svr *Server) Use(mw middleware.Middleware) {
	svr.middlewares = append(svr.middlewares, mw)
}

// Serve listens on address, optionally registers every bound service with
// reg under advertiseAddr, and runs the accept loop until Shutdown.
func (svr *Server) Serve(network, address, advertiseAddr string, reg registry.Registry) error {
	listener, err := net.Listen(network, address)
	if err != nil {
		return err
	}
	svr.listener = listener
	svr.handler = middleware.Chain(svr.middlewares...)(svr.businessHandler)

	svr.advertiseAddr = advertiseAddr
	if reg != nil {
		svr.reg = reg
		host, portStr, splitErr := net.SplitHostPort(advertiseAddr)
		var port int
		if splitErr == nil {
			fmt.Sscanf(portStr, "%d", &port)
		}
		for _, name := range svr.local.names() {
			meta := model.NewServiceMetaInfo(name, host, port)
			if svr.group != "" {
				meta.ServiceGroup = svr.group
			}
			if err := svr.reg.Register(meta); err != nil {
				logrus.WithError(err).WithField("service", name).Error("failed to register service")
			}
		}
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if svr.shutdown.Load() {
				return nil
			}
			return err
		}
		go svr.handleConn(conn)
	}
}

// handleConn reads frames sequentially off conn (frame order must be
// preserved) but dispatches each one to its own goroutine so a slow handler
// never blocks the next request on the same connection.
func (svr *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	writeMu := &sync.Mutex{}

	for {
		header, body, err := protocol.Decode(conn)
		if err != nil {
			return
		}
		if header.Type == protocol.MsgTypeHeartbeat {
			continue
		}
		go svr.handleRequest(header, body, conn, writeMu)
	}
}

// handleRequest decodes one frame's body, runs it through the middleware
// chain and business handler, and writes the framed response back.
func (svr *Server) handleRequest(header *protocol.Header, body []byte, conn net.Conn, writeMu *sync.Mutex) {
	svr.wg.Add(1)
	defer svr.wg.Done()

	c, err := codec.ByID(header.Serializer)
	if err != nil {
		logrus.WithError(err).Error("unresolvable serializer in request frame")
		return
	}

	var req model.RpcRequest
	if err := c.Unmarshal(body, &req); err != nil {
		logrus.WithError(err).Error("failed to decode request body")
		return
	}

	resp := svr.handler(withCodec(context.Background(), c), &req)

	respBody, err := c.Marshal(resp)
	if err != nil {
		logrus.WithError(err).Error("failed to encode response body")
		return
	}

	writeMu.Lock()
	defer writeMu.Unlock()
	replyHeader := protocol.Header{
		Serializer: header.Serializer,
		Type:       protocol.MsgTypeResponse,
		Status:     protocol.StatusOK,
		RequestID:  header.RequestID,
	}
	if err := protocol.Encode(conn, &replyHeader, respBody); err != nil {
		logrus.WithError(err).Error("failed to write response frame")
	}
}

// businessHandler resolves serviceName.methodName against the local
// registry, decodes each positional argument into the method's declared
// parameter type, invokes it, and encodes the result.
func (svr *Server) businessHandler(ctx context.Context, req *model.RpcRequest) *model.RpcResponse {
	svc, ok := svr.local.get(req.ServiceName)
	if !ok {
		return exceptionResponse(errs.NewDispatchError(req.ServiceName, req.MethodName, fmt.Errorf("unknown service")))
	}
	mt, ok := svc.method[req.MethodName]
	if !ok {
		return exceptionResponse(errs.NewDispatchError(req.ServiceName, req.MethodName, fmt.Errorf("unknown method")))
	}
	if len(req.Args) != len(mt.ArgTypes) {
		return exceptionResponse(errs.NewDispatchError(req.ServiceName, req.MethodName,
			fmt.Errorf("expected %d arguments, got %d", len(mt.ArgTypes), len(req.Args))))
	}

	c, ok := codecFromContext(ctx)
	if !ok {
		return exceptionResponse(errs.NewDispatchError(req.ServiceName, req.MethodName, fmt.Errorf("no codec in context")))
	}

	argv := make([]reflect.Value, len(mt.ArgTypes))
	for i, t := range mt.ArgTypes {
		ptr := reflect.New(t)
		if err := c.Unmarshal(req.Args[i], ptr.Interface()); err != nil {
			return exceptionResponse(errs.NewDispatchError(req.ServiceName, req.MethodName, err))
		}
		argv[i] = ptr.Elem()
	}

	result, callErr := svc.call(mt, argv)
	if callErr != nil {
		return exceptionResponse(callErr)
	}

	data, err := c.Marshal(result.Interface())
	if err != nil {
		return exceptionResponse(errs.NewDispatchError(req.ServiceName, req.MethodName, err))
	}

	return &model.RpcResponse{
		Data:     data,
		DataType: result.Type().String(),
		Message:  "ok",
	}
}

func exceptionResponse(err error) *model.RpcResponse {
	return &model.RpcResponse{
		Message:   err.Error(),
		Exception: &model.ExceptionInfo{Kind: fmt.Sprintf("%T", err), Message: err.Error()},
	}
}

// Shutdown deregisters every service, stops accepting connections, and
// waits up to timeout for in-flight requests to finish.
func (svr *Server) Shutdown(timeout time.Duration) error {
	if svr.reg != nil {
		host, portStr, _ := net.SplitHostPort(svr.advertiseAddr)
		var port int
		fmt.Sscanf(portStr, "%d", &port)
		for _, name := range svr.local.names() {
			meta := model.NewServiceMetaInfo(name, host, port)
			if svr.group != "" {
				meta.ServiceGroup = svr.group
			}
			svr.reg.Unregister(meta)
		}
	}

	svr.shutdown.Store(true)
	svr.listener.Close()

	done := make(chan struct{})
	go func() {
		svr.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for in-flight requests to finish")
	}
}
