// Package codec implements the pluggable serializers that convert
// RpcRequest/RpcResponse envelopes, and their individual argument/return
// values, to and from bytes.
//
// Four kinds are supported, with wire ids fixed independently of Go's
// declaration order (spec §6): jdk=0, json=1, kryo=2, hessian=3.
package codec

import (
	"mini-rpc/errs"
	"mini-rpc/protocol"
)

// Name is the plugin-loader key used in configuration (§6's "serializer"
// config value).
type Name string

const (
	NameJDK     Name = "jdk"
	NameJSON    Name = "json"
	NameKryo    Name = "kryo"
	NameHessian Name = "hessian"
)

// Codec converts values to and from bytes. Marshal/Unmarshal operate on
// whole envelopes (RpcRequest/RpcResponse) as well as on individual argument
// or return values — callers always pass the concrete target type via v,
// exactly as encoding/json's Unmarshal does, so unlike the reference Java
// design there is no separate "typeDescriptor" parameter: Go's static typing
// already carries it.
type Codec interface {
	Name() Name
	ID() protocol.SerializerID
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var byName = map[Name]Codec{
	NameJDK:     &JDKCodec{},
	NameJSON:    &JSONCodec{},
	NameKryo:    &KryoCodec{},
	NameHessian: &HessianCodec{},
}

var byID = map[protocol.SerializerID]Codec{
	protocol.SerializerJDK:     byName[NameJDK],
	protocol.SerializerJSON:    byName[NameJSON],
	protocol.SerializerKryo:    byName[NameKryo],
	protocol.SerializerHessian: byName[NameHessian],
}

// ByID resolves the serializer for a wire id, failing per spec §4.1 when the
// id is not one of the four known kinds.
func ByID(id protocol.SerializerID) (Codec, error) {
	c, ok := byID[id]
	if !ok {
		return nil, errs.NewProtocolError("unknown serializer")
	}
	return c, nil
}

// ByName resolves the serializer for a configuration string (§6), failing
// with PluginNotFound when the name is not recognized.
func ByName(name Name) (Codec, error) {
	c, ok := byName[name]
	if !ok {
		return nil, errs.NewPluginNotFound("codec.Codec", string(name))
	}
	return c, nil
}
