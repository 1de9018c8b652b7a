// Package model defines the RPC envelope types exchanged between client and
// server: the request, the response, and the service metadata record used by
// the registry.
package model

import "fmt"

// DefaultServiceVersion is advertised when a provider does not specify one.
const DefaultServiceVersion = "1.0"

// DefaultServiceGroup is advertised when a provider does not specify one.
const DefaultServiceGroup = "default"

// JavaClassName satisfies dubbo-go-hessian2's POJO interface so the hessian
// codec can round-trip RpcRequest through a registered type name instead of
// a bare map.
func (RpcRequest) JavaClassName() string { return "mini_rpc.RpcRequest" }

// RpcRequest is the immutable request envelope built by the client proxy and
// consumed by the server dispatcher.
//
// Args holds one pre-encoded value per entry in ParameterTypes, aligned by
// position; the codec that produced the frame is responsible for encoding
// and decoding each one.
type RpcRequest struct {
	ServiceName    string
	MethodName     string
	ParameterTypes []string
	Args           [][]byte
	ServiceVersion string
}

// ExceptionInfo is a structured failure description carried in a response
// whose handler invocation failed on the server.
type ExceptionInfo struct {
	Kind    string
	Message string
}

func (e *ExceptionInfo) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// JavaClassName satisfies dubbo-go-hessian2's POJO interface, see RpcRequest.
func (RpcResponse) JavaClassName() string { return "mini_rpc.RpcResponse" }

// RpcResponse is the reply envelope returned by the server dispatcher.
//
// DataType is required whenever Data is present so typed deserializers can
// reconstruct the value; it is empty on a failed call.
type RpcResponse struct {
	Data      []byte
	DataType  string
	Message   string
	Exception *ExceptionInfo
}

// ServiceMetaInfo is the endpoint record registered and discovered through
// the remote registry.
//
// Weight has no equivalent in the original model; it is carried solely so
// the weighted-random balancer has something to read, defaulting to 1 (even
// weighting) for any provider that doesn't set it.
type ServiceMetaInfo struct {
	ServiceName    string
	ServiceVersion string
	ServiceHost    string
	ServicePort    int
	ServiceGroup   string
	Weight         int
}

// NewServiceMetaInfo fills in the documented defaults for version, group,
// and weight.
func NewServiceMetaInfo(name, host string, port int) ServiceMetaInfo {
	return ServiceMetaInfo{
		ServiceName:    name,
		ServiceVersion: DefaultServiceVersion,
		ServiceHost:    host,
		ServicePort:    port,
		ServiceGroup:   DefaultServiceGroup,
		Weight:         1,
	}
}

// ServiceKey is the discovery lookup key: "{name}:{version}".
func (s ServiceMetaInfo) ServiceKey() string {
	version := s.ServiceVersion
	if version == "" {
		version = DefaultServiceVersion
	}
	return fmt.Sprintf("%s:%s", s.ServiceName, version)
}

// ServiceNodeKey uniquely identifies one running instance:
// "{serviceKey}/{host}:{port}".
func (s ServiceMetaInfo) ServiceNodeKey() string {
	return fmt.Sprintf("%s/%s", s.ServiceKey(), s.Address())
}

// Address is the "host:port" this instance listens on. TCP-only, so unlike
// the original Java model's getServiceAddress no URL scheme is prefixed.
func (s ServiceMetaInfo) Address() string {
	return fmt.Sprintf("%s:%d", s.ServiceHost, s.ServicePort)
}
