package server

import (
	"context"

	"mini-rpc/codec"
)

type codecCtxKey struct{}

// withCodec attaches the codec that decoded the current request's envelope
// so businessHandler can use the same one to decode each positional
// argument and encode the result, without threading it through the
// middleware.HandlerFunc signature.
func withCodec(ctx context.Context, c codec.Codec) context.Context {
	return context.WithValue(ctx, codecCtxKey{}, c)
}

func codecFromContext(ctx context.Context) (codec.Codec, bool) {
	c, ok := ctx.Value(codecCtxKey{}).(codec.Codec)
	return c, ok
}
