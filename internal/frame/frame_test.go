package frame

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Run("no compression, no scrambler", func(t *testing.T) {
		payload := []byte("hello segment bytes")
		f := Frame{Header: Header{ConnectionType: 1, SegmentCount: 1}, Payload: payload}

		var buf bytes.Buffer
		if err := Encode(&buf, f, NoneCompressor{}, nil); err != nil {
			t.Fatalf("Encode: %v", err)
		}

		got, err := Decode(&buf, StandardDecompressor{}, nil)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !bytes.Equal(got.Payload, payload) {
			t.Errorf("payload mismatch: got %q want %q", got.Payload, payload)
		}
		if got.Header.ConnectionType != 1 || got.Header.SegmentCount != 1 {
			t.Errorf("header fields not preserved: %+v", got.Header)
		}
	})

	t.Run("zlib compression", func(t *testing.T) {
		payload := bytes.Repeat([]byte("abcdefgh"), 64)
		f := Frame{Payload: payload}

		var buf bytes.Buffer
		if err := Encode(&buf, f, ZlibCompressor{}, nil); err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(&buf, StandardDecompressor{}, nil)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !bytes.Equal(got.Payload, payload) {
			t.Errorf("payload mismatch after zlib round trip")
		}
		if got.Header.CompressedSize >= got.Header.UncompressedSize {
			t.Errorf("expected compression to shrink repetitive payload: compressed=%d uncompressed=%d",
				got.Header.CompressedSize, got.Header.UncompressedSize)
		}
	})

	t.Run("scrambled payload", func(t *testing.T) {
		payload := []byte("the quick brown fox jumps over the lazy dog")
		f := Frame{Payload: payload}

		scr := NewScrambler(1, 2, 3)
		var buf bytes.Buffer
		if err := Encode(&buf, f, NoneCompressor{}, scr); err != nil {
			t.Fatalf("Encode: %v", err)
		}

		decScr := NewScrambler(1, 2, 3)
		got, err := Decode(&buf, StandardDecompressor{}, decScr)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !bytes.Equal(got.Payload, payload) {
			t.Errorf("payload mismatch after scrambler round trip: got %q want %q", got.Payload, payload)
		}
	})
}

func TestHeaderSize(t *testing.T) {
	if HeaderSize != 42 {
		t.Errorf("HeaderSize = %d, want 42 (16+8+4+2+2+1+1+4+4)", HeaderSize)
	}
}
