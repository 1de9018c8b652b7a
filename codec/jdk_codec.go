package codec

import (
	"bytes"
	"encoding/gob"

	"mini-rpc/errs"
	"mini-rpc/protocol"
)

// JDKCodec is the reflective native-graph serializer (wire id 0, plugin key
// "jdk"). Go has no direct equivalent of Java's built-in object
// serialization, so this wraps encoding/gob — the standard library's own
// reflective binary format for Go values, the closest available analogue.
type JDKCodec struct{}

func (c *JDKCodec) Name() Name                { return NameJDK }
func (c *JDKCodec) ID() protocol.SerializerID { return protocol.SerializerJDK }

func (c *JDKCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, errs.NewSerializationError(string(NameJDK), err)
	}
	return buf.Bytes(), nil
}

func (c *JDKCodec) Unmarshal(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return errs.NewSerializationError(string(NameJDK), err)
	}
	return nil
}
