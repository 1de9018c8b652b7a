// Package errs defines the distinguishable error kinds that cross component
// boundaries in the RPC pipeline. Each kind is a concrete type so callers can
// branch on it with errors.As; every constructor wraps the underlying cause
// with github.com/pkg/errors so a stack trace survives up to the caller.
package errs

import "github.com/pkg/errors"

// ProtocolError marks a frame that failed header validation: bad magic,
// unknown serializer/type id, or a truncated frame. The server closes the
// connection on a frame it cannot decode; on the client side the retry
// strategies treat it like any other error.
type ProtocolError struct {
	Reason string
	cause  error
}

func (e *ProtocolError) Error() string { return "protocol: " + e.Reason }
func (e *ProtocolError) Unwrap() error { return e.cause }

func NewProtocolError(reason string) error {
	return errors.WithStack(&ProtocolError{Reason: reason})
}

// SerializationError marks a serializer-internal failure. Not retried by the
// transport layer; surfaces to the caller.
type SerializationError struct {
	Kind  string
	cause error
}

func (e *SerializationError) Error() string { return "serialization(" + e.Kind + "): " + e.cause.Error() }
func (e *SerializationError) Unwrap() error { return e.cause }

func NewSerializationError(kind string, cause error) error {
	return errors.WithStack(&SerializationError{Kind: kind, cause: cause})
}

// RegistryError marks a discovery, registration, or watch failure against
// the backing store. Fatal for the current call; retry policies MAY
// re-invoke.
type RegistryError struct {
	Key   string
	cause error
}

func (e *RegistryError) Error() string {
	if e.cause == nil {
		return "registry: " + e.Key
	}
	return "registry(" + e.Key + "): " + e.cause.Error()
}
func (e *RegistryError) Unwrap() error { return e.cause }

func NewRegistryError(key string, cause error) error {
	return errors.WithStack(&RegistryError{Key: key, cause: cause})
}

// NoEndpoints marks that discovery returned an empty list for a service key.
// Not retried — retry would not help; handed straight to tolerance.
type NoEndpoints struct {
	ServiceKey string
}

func (e *NoEndpoints) Error() string { return "no endpoints for service: " + e.ServiceKey }

func NewNoEndpoints(serviceKey string) error {
	return errors.WithStack(&NoEndpoints{ServiceKey: serviceKey})
}

// TransportTimeout marks a per-call timeout expiry. Retried under any
// non-"no" retry strategy.
type TransportTimeout struct {
	Addr string
}

func (e *TransportTimeout) Error() string { return "transport timeout: " + e.Addr }

func NewTransportTimeout(addr string) error {
	return errors.WithStack(&TransportTimeout{Addr: addr})
}

// TransportIO marks a transient transport failure (dial/read/write). Retried
// under any non-"no" retry strategy.
type TransportIO struct {
	Addr  string
	cause error
}

func (e *TransportIO) Error() string { return "transport io(" + e.Addr + "): " + e.cause.Error() }
func (e *TransportIO) Unwrap() error { return e.cause }

func NewTransportIO(addr string, cause error) error {
	return errors.WithStack(&TransportIO{Addr: addr, cause: cause})
}

// DispatchError marks a server-side method lookup or invocation failure.
// This is encoded into the response's Exception field, never raised as a
// protocol-level failure — the server builds one with NewDispatchError and
// converts it into the response's ExceptionInfo.
type DispatchError struct {
	ServiceName string
	MethodName  string
	cause       error
}

func (e *DispatchError) Error() string {
	return "dispatch(" + e.ServiceName + "." + e.MethodName + "): " + e.cause.Error()
}
func (e *DispatchError) Unwrap() error { return e.cause }

func NewDispatchError(serviceName, methodName string, cause error) error {
	return errors.WithStack(&DispatchError{ServiceName: serviceName, MethodName: methodName, cause: cause})
}

// PluginNotFound marks a configuration-time failure to resolve a named
// plugin implementation. Fatal.
type PluginNotFound struct {
	Interface string
	Key       string
}

func (e *PluginNotFound) Error() string {
	return "plugin not found: " + e.Interface + " key=" + e.Key
}

func NewPluginNotFound(iface, key string) error {
	return errors.WithStack(&PluginNotFound{Interface: iface, Key: key})
}

// RetryExhausted marks that a retry strategy ran out of attempts. The
// terminal cause from the last attempt is preserved.
type RetryExhausted struct {
	Attempts int
	cause    error
}

func (e *RetryExhausted) Error() string {
	return errors.Wrapf(e.cause, "retry exhausted after %d attempts", e.Attempts).Error()
}
func (e *RetryExhausted) Unwrap() error { return e.cause }

func NewRetryExhausted(attempts int, cause error) error {
	return errors.WithStack(&RetryExhausted{Attempts: attempts, cause: cause})
}
