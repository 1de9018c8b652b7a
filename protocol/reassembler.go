package protocol

import (
	"encoding/binary"

	"mini-rpc/errs"
)

// Reassembler turns an arbitrary partition of reads on a byte stream back
// into a sequence of frames. It is the two-state machine spec.md §4.1
// describes: READ_HEADER (target HeaderSize) then READ_BODY (target the
// previously parsed bodyLength), looping back to READ_HEADER once a frame is
// emitted. It handles both a single write carrying many frames and a single
// frame split across many reads.
type Reassembler struct {
	buf    []byte
	header *Header
}

// NewReassembler returns an empty reassembler ready to accept Feed calls.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Frame is one fully reassembled header+body pair.
type Frame struct {
	Header *Header
	Body   []byte
}

// Feed appends newly read bytes and returns every frame that is now
// complete, in arrival order. It never returns a partial frame; leftover
// bytes are retained internally for the next call.
func (r *Reassembler) Feed(data []byte) ([]Frame, error) {
	r.buf = append(r.buf, data...)

	var frames []Frame
	for {
		if r.header == nil {
			if len(r.buf) < HeaderSize {
				return frames, nil
			}
			h, err := decodeHeader(r.buf[:HeaderSize])
			if err != nil {
				return frames, err
			}
			r.header = h
			r.buf = r.buf[HeaderSize:]
		}

		need := int(r.header.BodyLen)
		if len(r.buf) < need {
			return frames, nil
		}

		body := make([]byte, need)
		copy(body, r.buf[:need])
		r.buf = r.buf[need:]

		frames = append(frames, Frame{Header: r.header, Body: body})
		r.header = nil
	}
}

// decodeHeader validates and parses a HeaderSize-length buffer. It mirrors
// Decode's header validation exactly, since the reassembler and Decode must
// agree on what a valid frame looks like.
func decodeHeader(buf []byte) (*Header, error) {
	if buf[0] != Magic {
		return nil, errs.NewProtocolError("bad magic")
	}
	if buf[1] != Version {
		return nil, errs.NewProtocolError("unsupported version")
	}
	serializer := SerializerID(buf[2])
	switch serializer {
	case SerializerJDK, SerializerJSON, SerializerKryo, SerializerHessian:
	default:
		return nil, errs.NewProtocolError("unknown serializer")
	}
	msgType := MsgType(buf[3])
	switch msgType {
	case MsgTypeRequest, MsgTypeResponse, MsgTypeHeartbeat, MsgTypeOther:
	default:
		return nil, errs.NewProtocolError("unknown type")
	}
	return &Header{
		Serializer: serializer,
		Type:       msgType,
		Status:     Status(buf[4]),
		RequestID:  binary.BigEndian.Uint64(buf[5:13]),
		BodyLen:    binary.BigEndian.Uint32(buf[13:17]),
	}, nil
}
