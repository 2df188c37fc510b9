// Package frame implements the outermost wire envelope: a length-prefixed
// frame carrying one or more segments, optionally compressed and
// optionally scrambled. It is the Go analog of the teacher's
// internal/net codec.go/cipher.go pair, generalized from a 2-byte L1J
// length header to the full fixed-size frame header used here.
package frame

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic identifies the start of a frame. Sixteen bytes.
var Magic = [16]byte{0x52, 0x52, 0x5a, 0x45, 0x6e, 0x63, 0x72, 0x79, 0x70, 0x74, 0x43, 0x61, 0x70, 0x73, 0x75, 0x6c}

// CompressionType selects how the segment bytes are packed.
type CompressionType uint8

const (
	CompressionNone    CompressionType = 0
	CompressionZlib    CompressionType = 1
	CompressionOodle   CompressionType = 2 // upstream-compatible tag; decodes as unsupported here
)

// HeaderSize is the fixed on-wire size of Header.
const HeaderSize = 16 + 8 + 4 + 2 + 2 + 1 + 1 + 4 + 4

// Header is the frame envelope preceding the segment bytes.
type Header struct {
	Magic            [16]byte
	Timestamp        uint64
	Size             uint32 // total frame size including header
	ConnectionType   uint16
	SegmentCount     uint16
	Version          uint8
	CompressionType  CompressionType
	UncompressedSize uint32
	CompressedSize   uint32
}

func (h *Header) encode(buf []byte) {
	copy(buf[0:16], h.Magic[:])
	binary.LittleEndian.PutUint64(buf[16:24], h.Timestamp)
	binary.LittleEndian.PutUint32(buf[24:28], h.Size)
	binary.LittleEndian.PutUint16(buf[28:30], h.ConnectionType)
	binary.LittleEndian.PutUint16(buf[30:32], h.SegmentCount)
	buf[32] = h.Version
	buf[33] = byte(h.CompressionType)
	binary.LittleEndian.PutUint32(buf[34:38], h.UncompressedSize)
	binary.LittleEndian.PutUint32(buf[38:42], h.CompressedSize)
}

func decodeHeader(buf []byte) Header {
	var h Header
	copy(h.Magic[:], buf[0:16])
	h.Timestamp = binary.LittleEndian.Uint64(buf[16:24])
	h.Size = binary.LittleEndian.Uint32(buf[24:28])
	h.ConnectionType = binary.LittleEndian.Uint16(buf[28:30])
	h.SegmentCount = binary.LittleEndian.Uint16(buf[30:32])
	h.Version = buf[32]
	h.CompressionType = CompressionType(buf[33])
	h.UncompressedSize = binary.LittleEndian.Uint32(buf[34:38])
	h.CompressedSize = binary.LittleEndian.Uint32(buf[38:42])
	return h
}

// Frame is one wire message: a header plus the concatenated, still
// segment-framed payload (each segment carries its own size prefix, see
// internal/segment).
type Frame struct {
	Header  Header
	Payload []byte // concatenated segment bytes, pre-compression/scramble
}

// Encode compresses and optionally scrambles f.Payload, fills in the
// size fields, and writes the full frame to w.
func Encode(w io.Writer, f Frame, comp Compressor, scr *Scrambler) error {
	packed, err := comp.Compress(f.Payload)
	if err != nil {
		return fmt.Errorf("compress frame payload: %w", err)
	}
	if scr != nil {
		packed = scr.Encrypt(packed)
	}

	h := f.Header
	h.Magic = Magic
	h.CompressionType = comp.Type()
	h.UncompressedSize = uint32(len(f.Payload))
	h.CompressedSize = uint32(len(packed))
	h.Size = uint32(HeaderSize + len(packed))

	buf := make([]byte, HeaderSize+len(packed))
	h.encode(buf[:HeaderSize])
	copy(buf[HeaderSize:], packed)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Decode reads one full frame from r, unscrambles, and decompresses it
// back into a Frame with Payload holding the raw concatenated segments.
func Decode(r io.Reader, decomp Decompressor, scr *Scrambler) (Frame, error) {
	hbuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hbuf); err != nil {
		return Frame{}, fmt.Errorf("read frame header: %w", err)
	}
	h := decodeHeader(hbuf)
	if h.Size < HeaderSize {
		return Frame{}, fmt.Errorf("invalid frame size %d", h.Size)
	}

	packed := make([]byte, h.CompressedSize)
	if _, err := io.ReadFull(r, packed); err != nil {
		return Frame{}, fmt.Errorf("read frame body (%d bytes): %w", h.CompressedSize, err)
	}

	if scr != nil {
		packed = scr.Decrypt(packed)
	}

	payload, err := decomp.Decompress(packed, h.CompressionType, int(h.UncompressedSize))
	if err != nil {
		return Frame{}, fmt.Errorf("decompress frame payload: %w", err)
	}

	return Frame{Header: h, Payload: payload}, nil
}
