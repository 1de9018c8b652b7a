package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	header := &Header{
		Serializer: SerializerJSON,
		Type:       MsgTypeRequest,
		Status:     StatusOK,
		RequestID:  12345,
	}
	body := []byte("hello world")

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, header, body))

	decoded, decodedBody, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, header.Serializer, decoded.Serializer)
	assert.Equal(t, header.Type, decoded.Type)
	assert.Equal(t, header.RequestID, decoded.RequestID)
	assert.Equal(t, uint32(len(body)), decoded.BodyLen)
	assert.Equal(t, body, decodedBody)
}

func TestEncodeSetsHeaderBytes(t *testing.T) {
	var buf bytes.Buffer
	body := []byte("abc")
	require.NoError(t, Encode(&buf, &Header{Serializer: SerializerKryo, Type: MsgTypeResponse}, body))

	raw := buf.Bytes()
	require.Len(t, raw, HeaderSize+len(body))
	assert.Equal(t, byte(0x01), raw[0])
	assert.Equal(t, byte(0x01), raw[1])
	assert.Equal(t, uint32(len(body)), beUint32(raw[13:17]))
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func TestDecodeInvalidMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Header{Serializer: SerializerJSON, Type: MsgTypeRequest}, nil))
	raw := buf.Bytes()
	raw[0] = 0x02

	_, _, err := Decode(bytes.NewReader(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad magic")
}

func TestDecodeUnknownSerializer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Header{Serializer: SerializerJSON, Type: MsgTypeRequest}, nil))
	raw := buf.Bytes()
	raw[2] = 0x7F

	_, _, err := Decode(bytes.NewReader(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown serializer")
}

func TestDecodeEmptyBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Header{Serializer: SerializerJDK, Type: MsgTypeHeartbeat}, nil))

	header, body, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, MsgTypeHeartbeat, header.Type)
	assert.Empty(t, body)
}

func TestDecodeLargeBody(t *testing.T) {
	large := make([]byte, 1<<20)
	for i := range large {
		large[i] = byte(i % 256)
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Header{Serializer: SerializerJDK, Type: MsgTypeRequest}, large))

	_, body, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, large, body)
}
