package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-rpc/model"
	"mini-rpc/protocol"
)

type testArgs struct {
	A int
	B string
}

func TestByIDAndByName(t *testing.T) {
	for _, tc := range []struct {
		name Name
		id   protocol.SerializerID
	}{
		{NameJDK, protocol.SerializerJDK},
		{NameJSON, protocol.SerializerJSON},
		{NameKryo, protocol.SerializerKryo},
		{NameHessian, protocol.SerializerHessian},
	} {
		byName, err := ByName(tc.name)
		require.NoError(t, err)
		assert.Equal(t, tc.id, byName.ID())

		byID, err := ByID(tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.name, byID.Name())
	}
}

func TestByIDUnknown(t *testing.T) {
	_, err := ByID(protocol.SerializerID(99))
	require.Error(t, err)
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName(Name("bogus"))
	require.Error(t, err)
}

func roundTrip(t *testing.T, c Codec, in *testArgs) *testArgs {
	t.Helper()
	data, err := c.Marshal(in)
	require.NoError(t, err)

	out := &testArgs{}
	require.NoError(t, c.Unmarshal(data, out))
	return out
}

func TestJDKCodecRoundTrip(t *testing.T) {
	out := roundTrip(t, &JDKCodec{}, &testArgs{A: 42, B: "hello"})
	assert.Equal(t, 42, out.A)
	assert.Equal(t, "hello", out.B)
}

func TestJSONCodecRoundTrip(t *testing.T) {
	out := roundTrip(t, &JSONCodec{}, &testArgs{A: 7, B: "world"})
	assert.Equal(t, 7, out.A)
	assert.Equal(t, "world", out.B)
}

func TestKryoCodecRoundTrip(t *testing.T) {
	out := roundTrip(t, &KryoCodec{}, &testArgs{A: -5, B: "kryo"})
	assert.Equal(t, -5, out.A)
	assert.Equal(t, "kryo", out.B)
}

func TestKryoCodecNestedAndSlice(t *testing.T) {
	type inner struct {
		Name string
		Tags []string
	}
	in := &inner{Name: "svc", Tags: []string{"a", "b", "c"}}
	data, err := (&KryoCodec{}).Marshal(in)
	require.NoError(t, err)

	out := &inner{}
	require.NoError(t, (&KryoCodec{}).Unmarshal(data, out))
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Tags, out.Tags)
}

func TestHessianCodecStringRoundTrip(t *testing.T) {
	c := &HessianCodec{}
	data, err := c.Marshal("mini-rpc")
	require.NoError(t, err)

	var out string
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, "mini-rpc", out)
}

func TestModelEnvelopeRoundTripAcrossCodecs(t *testing.T) {
	req := &model.RpcRequest{
		ServiceName:    "UserService",
		MethodName:     "getUser",
		ParameterTypes: []string{"model.User"},
		Args:           [][]byte{[]byte("payload")},
		ServiceVersion: "1.0",
	}

	for _, c := range []Codec{&JDKCodec{}, &JSONCodec{}, &KryoCodec{}} {
		data, err := c.Marshal(req)
		require.NoError(t, err, c.Name())

		out := &model.RpcRequest{}
		require.NoError(t, c.Unmarshal(data, out), c.Name())
		assert.Equal(t, req.ServiceName, out.ServiceName, c.Name())
		assert.Equal(t, req.MethodName, out.MethodName, c.Name())
		assert.Equal(t, req.ParameterTypes, out.ParameterTypes, c.Name())
		assert.Equal(t, req.Args, out.Args, c.Name())
	}
}
