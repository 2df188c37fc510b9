package segment

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeAll(t *testing.T) {
	var payload []byte
	payload = Encode(payload, 1, 0xE0000000, TypeIPC, []byte("ipc-body"))
	payload = Encode(payload, 1, 0xE0000000, TypeKeepAliveRequest, nil)

	segs, err := DecodeAll(payload)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if !bytes.Equal(segs[0].Body, []byte("ipc-body")) {
		t.Errorf("segment 0 body = %q", segs[0].Body)
	}
	if segs[0].Header.SegmentType != TypeIPC {
		t.Errorf("segment 0 type = %v, want IPC", segs[0].Header.SegmentType)
	}
	if segs[1].Header.SegmentType != TypeKeepAliveRequest {
		t.Errorf("segment 1 type = %v, want KeepAliveRequest", segs[1].Header.SegmentType)
	}
	if len(segs[1].Body) != 0 {
		t.Errorf("segment 1 body should be empty, got %d bytes", len(segs[1].Body))
	}
}

func TestDecodeAllTruncated(t *testing.T) {
	if _, err := DecodeAll([]byte{1, 2, 3}); err == nil {
		t.Error("expected error decoding truncated segment header")
	}
}
