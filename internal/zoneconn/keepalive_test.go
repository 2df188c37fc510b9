package zoneconn

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/config"
	"github.com/kvatch/worldserver/internal/connstate"
	"github.com/kvatch/worldserver/internal/frame"
	"github.com/kvatch/worldserver/internal/ipc"
	"github.com/kvatch/worldserver/internal/segment"
)

// TestKeepAliveRequestEchoesIDAndTimestamp covers spec.md §8 property 6:
// "Every KeepAliveRequest{id, ts} received produces a
// KeepAliveResponse{id, ts} within one loop iteration."
func TestKeepAliveRequestEchoesIDAndTimestamp(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	netCfg := config.NetworkConfig{InQueueSize: 8, OutQueueSize: 8}
	c := New(server, 1, connstate.KindZone, nil, nil, nil, netCfg, 0, "", zap.NewNop())

	go c.writeLoop()

	const reqID, reqTS = uint32(12345), uint32(67890)
	reqW := ipc.NewWriter()
	reqW.WriteU32(reqID)
	reqW.WriteU32(reqTS)
	reqBody := reqW.Bytes()

	go c.handleSegmentKeepAliveRequest(reqBody)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	f, err := frame.Decode(client, frame.StandardDecompressor{}, nil)
	if err != nil {
		t.Fatalf("decode reply frame: %v", err)
	}

	segs, err := segment.DecodeAll(f.Payload)
	if err != nil {
		t.Fatalf("decode segments: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Header.SegmentType != segment.TypeKeepAliveResponse {
		t.Fatalf("expected KeepAliveResponse segment, got %v", segs[0].Header.SegmentType)
	}

	r := ipc.NewReader(segs[0].Body)
	gotID := r.ReadU32()
	gotTS := r.ReadU32()
	if gotID != reqID || gotTS != reqTS {
		t.Fatalf("echoed (id=%d, ts=%d), want (id=%d, ts=%d)", gotID, gotTS, reqID, reqTS)
	}
}
