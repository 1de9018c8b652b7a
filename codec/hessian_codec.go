package codec

import (
	hessian "github.com/apache/dubbo-go-hessian2"

	"mini-rpc/errs"
	"mini-rpc/model"
	"mini-rpc/protocol"
)

func init() {
	hessian.RegisterPOJO(&model.RpcRequest{})
	hessian.RegisterPOJO(&model.RpcResponse{})
}

// HessianCodec is the older compact binary serializer (wire id 3, plugin key
// "hessian"), grounded on the same library Dubbo's own Go client uses for
// its equivalent service/method/args wire payload.
type HessianCodec struct{}

func (c *HessianCodec) Name() Name                { return NameHessian }
func (c *HessianCodec) ID() protocol.SerializerID { return protocol.SerializerHessian }

func (c *HessianCodec) Marshal(v any) ([]byte, error) {
	encoder := hessian.NewEncoder()
	if err := encoder.Encode(v); err != nil {
		return nil, errs.NewSerializationError(string(NameHessian), err)
	}
	return encoder.Buffer(), nil
}

func (c *HessianCodec) Unmarshal(data []byte, v any) error {
	decoder := hessian.NewDecoder(data)
	decoded, err := decoder.Decode()
	if err != nil {
		return errs.NewSerializationError(string(NameHessian), err)
	}
	return assignDecoded(decoded, v)
}

// assignDecoded copies a hessian-decoded value into the caller's target
// pointer. Strings and byte slices are type-asserted directly; every other
// target, including the envelope types registered via hessian.RegisterPOJO,
// goes through hessianCopy's reflective assign-or-convert.
func assignDecoded(decoded any, v any) error {
	switch target := v.(type) {
	case *string:
		s, _ := decoded.(string)
		*target = s
		return nil
	case *[]byte:
		b, _ := decoded.([]byte)
		*target = b
		return nil
	default:
		return hessianCopy(decoded, v)
	}
}
