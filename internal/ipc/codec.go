// Package ipc implements the per-opcode message bodies carried inside an
// IPC segment (internal/segment). It generalizes the teacher's
// internal/net/packet Reader/Writer pair (ReadC/ReadH/ReadD/ReadS,
// WriteC/WriteH/WriteD/WriteS) from single-byte L1J opcodes to uint16 IPC
// opcodes, and drops the MS950/Big5 string transcoding the teacher used
// (golang.org/x/text/encoding/traditionalchinese) since this wire format
// carries plain UTF-8 strings — see DESIGN.md.
package ipc

import (
	"encoding/binary"
	"math"
)

// Writer accumulates little-endian fields for one IPC variant body.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{buf: make([]byte, 0, 64)} }

func (w *Writer) WriteU8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteI32(v int32) { w.WriteU32(uint32(v)) }

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

// WriteFixedString writes s truncated/zero-padded to exactly n bytes,
// matching the frame-level invariant that every IPC variant has a fixed
// CalcSize() regardless of string content.
func (w *Writer) WriteFixedString(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	w.buf = append(w.buf, b...)
}

func (w *Writer) WritePad(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *Writer) Bytes() []byte { return w.buf }
func (w *Writer) Len() int      { return len(w.buf) }

// Reader reads little-endian fields back out of an IPC variant body.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader { return &Reader{data: data} }

func (r *Reader) ReadU8() uint8 {
	if r.off >= len(r.data) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *Reader) ReadBool() bool { return r.ReadU8() != 0 }

func (r *Reader) ReadU16() uint16 {
	if r.off+2 > len(r.data) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *Reader) ReadU32() uint32 {
	if r.off+4 > len(r.data) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *Reader) ReadI32() int32 { return int32(r.ReadU32()) }

func (r *Reader) ReadU64() uint64 {
	if r.off+8 > len(r.data) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

func (r *Reader) ReadF32() float32 { return math.Float32frombits(r.ReadU32()) }

func (r *Reader) ReadFixedString(n int) string {
	if r.off+n > len(r.data) {
		n = len(r.data) - r.off
		if n < 0 {
			n = 0
		}
	}
	raw := r.data[r.off : r.off+n]
	r.off += n
	end := len(raw)
	for i, b := range raw {
		if b == 0 {
			end = i
			break
		}
	}
	return string(raw[:end])
}

func (r *Reader) Skip(n int) {
	r.off += n
	if r.off > len(r.data) {
		r.off = len(r.data)
	}
}

func (r *Reader) ReadBytes(n int) []byte {
	if r.off+n > len(r.data) {
		n = len(r.data) - r.off
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b
}

func (r *Reader) Remaining() int { return len(r.data) - r.off }
