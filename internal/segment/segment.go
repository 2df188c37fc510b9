// Package segment implements the per-message envelope carried inside a
// frame's payload: a fixed header (size, source/target actor, segment
// type) followed by either a raw control body or an IPC-encoded body.
// It generalizes the teacher's single-opcode packet split
// (internal/net/packet/registry.go's SessionState-gated dispatch) to the
// richer segment-type space this protocol uses.
package segment

import (
	"encoding/binary"
	"fmt"
)

// Type identifies what a segment's body contains.
type Type uint16

const (
	TypeSetup             Type = 1
	TypeInitialize        Type = 2
	TypeIPC               Type = 3
	TypeKeepAliveRequest  Type = 7
	TypeKeepAliveResponse Type = 8
	TypeCustomIpc         Type = 9
)

func (t Type) String() string {
	switch t {
	case TypeSetup:
		return "Setup"
	case TypeInitialize:
		return "Initialize"
	case TypeIPC:
		return "IPC"
	case TypeKeepAliveRequest:
		return "KeepAliveRequest"
	case TypeKeepAliveResponse:
		return "KeepAliveResponse"
	case TypeCustomIpc:
		return "CustomIpc"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(t))
	}
}

// HeaderSize is the fixed on-wire size of a segment header.
const HeaderSize = 4 + 4 + 4 + 2 + 2

// Header precedes every segment body.
type Header struct {
	Size        uint32
	SourceActor uint32
	TargetActor uint32
	SegmentType Type
	Pad         uint16
}

// Segment is one decoded unit of a frame's payload.
type Segment struct {
	Header Header
	Body   []byte
}

func (h *Header) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Size)
	binary.LittleEndian.PutUint32(buf[4:8], h.SourceActor)
	binary.LittleEndian.PutUint32(buf[8:12], h.TargetActor)
	binary.LittleEndian.PutUint16(buf[12:14], uint16(h.SegmentType))
	binary.LittleEndian.PutUint16(buf[14:16], h.Pad)
}

func decodeHeader(buf []byte) Header {
	return Header{
		Size:        binary.LittleEndian.Uint32(buf[0:4]),
		SourceActor: binary.LittleEndian.Uint32(buf[4:8]),
		TargetActor: binary.LittleEndian.Uint32(buf[8:12]),
		SegmentType: Type(binary.LittleEndian.Uint16(buf[12:14])),
		Pad:         binary.LittleEndian.Uint16(buf[14:16]),
	}
}

// Encode appends the wire bytes for one segment (header+body) to dst.
func Encode(dst []byte, sourceActor, targetActor uint32, typ Type, body []byte) []byte {
	h := Header{
		Size:        uint32(HeaderSize + len(body)),
		SourceActor: sourceActor,
		TargetActor: targetActor,
		SegmentType: typ,
	}
	start := len(dst)
	dst = append(dst, make([]byte, HeaderSize)...)
	h.encode(dst[start:])
	dst = append(dst, body...)
	return dst
}

// DecodeAll splits a frame payload into its constituent segments.
func DecodeAll(payload []byte) ([]Segment, error) {
	var segs []Segment
	off := 0
	for off < len(payload) {
		if off+HeaderSize > len(payload) {
			return nil, fmt.Errorf("truncated segment header at offset %d", off)
		}
		h := decodeHeader(payload[off : off+HeaderSize])
		if int(h.Size) < HeaderSize || off+int(h.Size) > len(payload) {
			return nil, fmt.Errorf("invalid segment size %d at offset %d", h.Size, off)
		}
		body := payload[off+HeaderSize : off+int(h.Size)]
		segs = append(segs, Segment{Header: h, Body: body})
		off += int(h.Size)
	}
	return segs, nil
}
