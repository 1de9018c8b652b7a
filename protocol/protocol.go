// Package protocol implements mini-rpc's binary frame protocol: a fixed
// 17-byte header followed by a variable-length body, plus the stream
// reassembler that turns a raw TCP byte stream back into frames.
//
// Frame format:
//
//	0    1    2    3    4    5                  13             17
//	┌────┬────┬────┬────┬────┬──────────────────┬──────────────┬───────────────┐
//	│mgc │ver │ser │typ │sta │    requestId      │   bodyLen    │    body ...   │
//	│0x01│0x01│    │    │    │  uint64, BE (8)   │ uint32, BE(4)│  bodyLen bytes│
//	└────┴────┴────┴────┴────┴──────────────────┴──────────────┴───────────────┘
package protocol

import (
	"encoding/binary"
	"io"

	"mini-rpc/errs"
)

// HeaderSize is the fixed header length: 1+1+1+1+1+8+4.
const HeaderSize = 17

const (
	Magic   byte = 0x01
	Version byte = 0x01
)

// MsgType distinguishes request, response, heartbeat, and reserved frames.
type MsgType byte

const (
	MsgTypeRequest   MsgType = 0
	MsgTypeResponse  MsgType = 1
	MsgTypeHeartbeat MsgType = 2
	MsgTypeOther     MsgType = 3
)

// Status is the protocol-level outcome of a frame, distinct from the
// application-level result carried in an RpcResponse.
type Status byte

const (
	StatusOK          Status = 0
	StatusBadRequest  Status = 20
	StatusBadResponse Status = 50
)

// SerializerID is the small-integer wire id for a serializer kind. The
// mapping to names is fixed and lives in the codec package; it must never be
// derived from declaration order.
type SerializerID byte

const (
	SerializerJDK     SerializerID = 0
	SerializerJSON    SerializerID = 1
	SerializerKryo    SerializerID = 2
	SerializerHessian SerializerID = 3
)

// Header is the fixed 17-byte frame header.
type Header struct {
	Serializer SerializerID
	Type       MsgType
	Status     Status
	RequestID  uint64
	BodyLen    uint32
}

// Encode writes a complete frame (header + body) to w. Callers must
// serialize writes themselves if multiple goroutines share one writer, or
// frames from different requests will interleave and corrupt the stream.
func Encode(w io.Writer, h *Header, body []byte) error {
	h.BodyLen = uint32(len(body))

	buf := make([]byte, HeaderSize)
	buf[0] = Magic
	buf[1] = Version
	buf[2] = byte(h.Serializer)
	buf[3] = byte(h.Type)
	buf[4] = byte(h.Status)
	binary.BigEndian.PutUint64(buf[5:13], h.RequestID)
	binary.BigEndian.PutUint32(buf[13:17], h.BodyLen)

	if _, err := w.Write(buf); err != nil {
		return errs.NewTransportIO("", err)
	}
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return errs.NewTransportIO("", err)
		}
	}
	return nil
}

// Decode reads exactly one complete frame (header + body) from r, using
// io.ReadFull so partial reads never produce a short header or body.
func Decode(r io.Reader) (*Header, []byte, error) {
	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return nil, nil, err
	}

	if headerBuf[0] != Magic {
		return nil, nil, errs.NewProtocolError("bad magic")
	}
	if headerBuf[1] != Version {
		return nil, nil, errs.NewProtocolError("unsupported version")
	}

	serializer := SerializerID(headerBuf[2])
	switch serializer {
	case SerializerJDK, SerializerJSON, SerializerKryo, SerializerHessian:
	default:
		return nil, nil, errs.NewProtocolError("unknown serializer")
	}

	msgType := MsgType(headerBuf[3])
	switch msgType {
	case MsgTypeRequest, MsgTypeResponse, MsgTypeHeartbeat, MsgTypeOther:
	default:
		return nil, nil, errs.NewProtocolError("unknown type")
	}

	requestID := binary.BigEndian.Uint64(headerBuf[5:13])
	bodyLen := binary.BigEndian.Uint32(headerBuf[13:17])

	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, err
		}
	}

	return &Header{
		Serializer: serializer,
		Type:       msgType,
		Status:     Status(headerBuf[4]),
		RequestID:  requestID,
		BodyLen:    bodyLen,
	}, body, nil
}
