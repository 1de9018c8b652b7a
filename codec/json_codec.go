package codec

import (
	"encoding/json"

	"mini-rpc/errs"
	"mini-rpc/protocol"
)

// JSONCodec uses encoding/json. Per spec §4.2, JSON erases static type
// information, so a decoded RpcRequest/RpcResponse's argument and data
// bytes must be re-coerced into their declared parameter/return type before
// use. Unlike the reference design (which first decodes into a loosely
// typed value and then re-serializes it), Marshal/Unmarshal here operate
// directly on the target type's pointer, exactly like json.Unmarshal always
// does — so an argument's bytes are only ever unmarshaled once, straight
// into parameterTypes[i]'s concrete Go type, which is the reshape's
// externally observable effect without the redundant round trip.
type JSONCodec struct{}

func (c *JSONCodec) Name() Name                { return NameJSON }
func (c *JSONCodec) ID() protocol.SerializerID { return protocol.SerializerJSON }

func (c *JSONCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errs.NewSerializationError(string(NameJSON), err)
	}
	return b, nil
}

func (c *JSONCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errs.NewSerializationError(string(NameJSON), err)
	}
	return nil
}
