package zoneconn

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/actor"
	"github.com/kvatch/worldserver/internal/asset"
	"github.com/kvatch/worldserver/internal/config"
	"github.com/kvatch/worldserver/internal/connstate"
	"github.com/kvatch/worldserver/internal/frame"
	"github.com/kvatch/worldserver/internal/ipc"
	"github.com/kvatch/worldserver/internal/persist"
	"github.com/kvatch/worldserver/internal/scripting"
	"github.com/kvatch/worldserver/internal/segment"
	"github.com/kvatch/worldserver/internal/world"
)

type fakeWorldDB struct{}

func (fakeWorldDB) FindPlayerData(ctx context.Context, contentID actor.ContentId) (*persist.PlayerData, error) {
	return &persist.PlayerData{
		ContentID:   contentID,
		Name:        "Testchar",
		ZoneID:      132,
		ClassLevels: map[string]uint8{},
		ClassExp:    map[string]uint32{},
	}, nil
}

func (fakeWorldDB) CommitPlayerData(context.Context, *persist.PlayerData) error { return nil }
func (fakeWorldDB) FindServiceAccount(context.Context, actor.ContentId) (actor.ServiceAccountId, error) {
	return 0, nil
}
func (fakeWorldDB) FindCharaMake(context.Context, actor.ContentId) ([]byte, error) { return nil, nil }
func (fakeWorldDB) GetCharaMake(context.Context, actor.ContentId) ([]byte, error)  { return nil, nil }
func (fakeWorldDB) GetCityState(context.Context, actor.ContentId) (uint16, error)  { return 0, nil }

// TestLoginHelloSendsInitZoneOnce drives the §8 "Login hello" scenario end
// to end: Setup, then InitRequest, then the ChangeZone the world answers
// ReadySpawnPlayer with. The InitRequest reply itself must not carry
// InitZone or the item-level resend — both belong to the ChangeZone
// sequence, and the client must see each exactly once per login.
func TestLoginHelloSendsInitZoneOnce(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wcfg := config.WorldConfig{TickRate: time.Hour, AOICellSize: 50, AggroRange: 15, LeashRange: 10}
	w := world.NewWorld(wcfg, config.FilesystemConfig{}, zap.NewNop(), 16)
	out := make(chan world.FromServer, 16)
	w.Register(1, out)
	go w.Run(ctx)

	scripts, err := scripting.NewEngine(t.TempDir(), asset.NewDirResource(t.TempDir()), zap.NewNop())
	if err != nil {
		t.Fatalf("init script host: %v", err)
	}
	defer scripts.Close()

	netCfg := config.NetworkConfig{InQueueSize: 8, OutQueueSize: 64}
	c := New(server, 1, connstate.KindZone, w, fakeWorldDB{}, scripts, netCfg, 0, "", zap.NewNop())
	go c.writeLoop()

	msgs := make(chan ipc.Message, 256)
	go collectIPC(client, msgs)

	c.handleSetup()
	c.handleInbound(inboundEnvelope{segType: segment.TypeIPC, ipcMsg: ipc.InitRequest{ContentID: 111}})

	// ReadySpawnPlayer travels through the world task and comes back as
	// the ChangeZone carrying InitZone; render it the way Run's select
	// loop would.
	deadline := time.After(2 * time.Second)
waitChangeZone:
	for {
		select {
		case msg := <-out:
			if _, ok := msg.(world.ChangeZone); ok {
				c.handleOutbound(msg)
				break waitChangeZone
			}
		case <-deadline:
			t.Fatal("world never answered ReadySpawnPlayer with ChangeZone")
		}
	}

	initResponses, initZones, itemLevels := 0, 0, 0
drain:
	for {
		select {
		case m := <-msgs:
			switch mm := m.(type) {
			case ipc.InitResponse:
				initResponses++
			case ipc.InitZone:
				initZones++
			case ipc.ActorControlSelf:
				if mm.Category == actorControlSetItemLevel {
					itemLevels++
				}
			}
		case <-time.After(500 * time.Millisecond):
			break drain
		}
	}

	if initResponses != 1 {
		t.Errorf("InitResponse sent %d times, want exactly 1", initResponses)
	}
	if initZones != 1 {
		t.Errorf("InitZone sent %d times, want exactly 1", initZones)
	}
	if itemLevels != 1 {
		t.Errorf("SetItemLevel sent %d times, want exactly 1", itemLevels)
	}
}

// collectIPC decodes every IPC segment arriving on conn into msgs,
// returning when the socket goes quiet past its deadline.
func collectIPC(conn net.Conn, msgs chan<- ipc.Message) {
	reg := ipc.DefaultRegistry()
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		f, err := frame.Decode(conn, frame.StandardDecompressor{}, nil)
		if err != nil {
			return
		}
		segs, err := segment.DecodeAll(f.Payload)
		if err != nil {
			return
		}
		for _, seg := range segs {
			if seg.Header.SegmentType != segment.TypeIPC || len(seg.Body) < ipc.HeaderSize {
				continue
			}
			h := ipc.DecodeHeader(seg.Body[:ipc.HeaderSize])
			m, err := reg.Decode(h, seg.Body[ipc.HeaderSize:])
			if err != nil {
				continue
			}
			msgs <- m
		}
	}
}
