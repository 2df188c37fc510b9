package frame

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Compressor packs a frame's concatenated segment bytes for the wire.
// No ecosystem compressor appears anywhere in the retrieval pack (no repo
// imports klauspost/compress or similar), so this falls back to the
// standard library's zlib; see DESIGN.md.
type Compressor interface {
	Type() CompressionType
	Compress(payload []byte) ([]byte, error)
}

// Decompressor reverses a Compressor for a given wire CompressionType.
type Decompressor interface {
	Decompress(packed []byte, ct CompressionType, uncompressedSize int) ([]byte, error)
}

// NoneCompressor passes bytes through unchanged. Used when the client
// negotiates no compression, or for small control frames.
type NoneCompressor struct{}

func (NoneCompressor) Type() CompressionType { return CompressionNone }
func (NoneCompressor) Compress(p []byte) ([]byte, error) {
	out := make([]byte, len(p))
	copy(out, p)
	return out, nil
}

// ZlibCompressor implements CompressionZlib.
type ZlibCompressor struct{}

func (ZlibCompressor) Type() CompressionType { return CompressionZlib }

func (ZlibCompressor) Compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(p); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StandardDecompressor dispatches on the wire CompressionType.
type StandardDecompressor struct{}

func (StandardDecompressor) Decompress(packed []byte, ct CompressionType, uncompressedSize int) ([]byte, error) {
	switch ct {
	case CompressionNone:
		out := make([]byte, len(packed))
		copy(out, packed)
		return out, nil
	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(packed))
		if err != nil {
			return nil, fmt.Errorf("open zlib reader: %w", err)
		}
		defer zr.Close()
		out := make([]byte, 0, uncompressedSize)
		buf := bytes.NewBuffer(out)
		if _, err := io.Copy(buf, zr); err != nil {
			return nil, fmt.Errorf("zlib decompress: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported compression type %d", ct)
	}
}
