// Package zoneconn implements the Zone Connection Actor (§4.3): one
// goroutine per accepted TCP connection, translating inbound IPC into
// world.ToServer sends and rendering world.FromServer fan-out back into
// IPC frames. It generalizes the teacher's internal/net Session
// (readLoop/writeLoop goroutines over InQueue/OutQueue channels, atomic
// close-once, blocking inbound send so a slow consumer never silently
// drops a position update) from the L1J packet stack to this protocol's
// frame/segment/ipc envelope.
package zoneconn

import (
	"bytes"
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/actor"
	"github.com/kvatch/worldserver/internal/config"
	"github.com/kvatch/worldserver/internal/connstate"
	"github.com/kvatch/worldserver/internal/frame"
	"github.com/kvatch/worldserver/internal/ipc"
	"github.com/kvatch/worldserver/internal/persist"
	"github.com/kvatch/worldserver/internal/scripting"
	"github.com/kvatch/worldserver/internal/segment"
	"github.com/kvatch/worldserver/internal/world"
)

// playerActorIDBase separates player actor ids from the small,
// instance-local NPC/Object ids Instance.nextActorID hands out (§3:
// "a player's ActorId always equals its ClientHandle's actor id", distinct
// from the per-instance NPC/object allocator).
const playerActorIDBase = 1 << 20

var actorIDCounter atomic.Uint32

func init() {
	actorIDCounter.Store(playerActorIDBase)
}

// allocateActorID hands out a fresh, world-unique player actor id.
func allocateActorID() actor.ActorId {
	for {
		id := actor.ActorId(actorIDCounter.Add(1))
		if id.IsValid() {
			return id
		}
	}
}

type inboundEnvelope struct {
	segType segment.Type
	ipcMsg  ipc.Message
	raw     []byte
}

// Conn is one connected client's zone-connection task. It owns its own
// socket exclusively; all shared state is reached only via world.World's
// Inbox/Register/Unregister and the per-client FromServer channel.
type Conn struct {
	id       actor.ClientId
	serverID uint16

	conn      net.Conn
	log       *zap.Logger
	registry  *ipc.Registry
	comp      frame.Compressor
	decomp    frame.Decompressor
	scrambler *frame.Scrambler

	writeTimeout time.Duration
	readTimeout  time.Duration

	state *connstate.State

	w         *world.World
	fromWorld chan world.FromServer

	db persist.WorldDatabase
	pd *persist.PlayerData

	inv *world.Inventory

	spawns  *actor.SpawnAllocator
	objects *actor.SpawnAllocator

	scripts    *scripting.Engine
	eventStack []actor.HandlerId

	zoneID     uint16
	lastPos    world.Vec3
	lastRot    float32
	conditions uint32
	lastHP     uint32
	lastMaxHP  uint32
	lastMP     uint32
	lastMaxMP  uint32

	itemSeq         uint32
	obfuscationMode int
	banner          string

	// pendingInviteFrom remembers the sender of the last party invite
	// forwarded to this client, since InviteReply doesn't carry it on the
	// wire.
	pendingInviteFrom actor.ContentId

	// rejoiningParty is set when the world re-links this connection to a
	// party it was in before a disconnect; the next FinishLoading reports
	// PartyMemberReturned instead of PartyMemberChangedAreas.
	rejoiningParty bool

	// Return point captured when the player joins instanced content, so
	// LeaveContent can restore them to where they left the public zone.
	inContent    bool
	returnZoneID uint16
	returnPos    world.Vec3
	returnRot    float32

	inQueue  chan inboundEnvelope
	outQueue chan []byte

	closeCh   chan struct{}
	closeOnce sync.Once
}

// New wires a freshly accepted socket into the zone connection actor,
// registering its outbound route with w before returning so world-side
// fan-out can never race ahead of Register (§4.3).
func New(conn net.Conn, id actor.ClientId, kind connstate.Kind, w *world.World, db persist.WorldDatabase, scripts *scripting.Engine, netCfg config.NetworkConfig, serverID uint16, banner string, log *zap.Logger) *Conn {
	var comp frame.Compressor = frame.NoneCompressor{}
	if netCfg.CompressionLevel > 0 {
		comp = frame.ZlibCompressor{}
	}

	c := &Conn{
		id:              id,
		serverID:        serverID,
		conn:            conn,
		log:             log.With(zap.Uint64("client_id", uint64(id))),
		registry:        ipc.DefaultRegistry(),
		comp:            comp,
		decomp:          frame.StandardDecompressor{},
		writeTimeout:    netCfg.WriteTimeout,
		readTimeout:     netCfg.ReadTimeout,
		state:           connstate.New(kind, time.Now()),
		w:               w,
		fromWorld:       make(chan world.FromServer, netCfg.OutQueueSize),
		db:              db,
		scripts:         scripts,
		inv:             world.NewInventory(),
		spawns:          actor.NewSpawnAllocator(),
		objects:         actor.NewSpawnAllocator(),
		inQueue:         make(chan inboundEnvelope, netCfg.InQueueSize),
		outQueue:        make(chan []byte, netCfg.OutQueueSize),
		closeCh:         make(chan struct{}),
		obfuscationMode: netCfg.ObfuscationMode,
		banner:          banner,
	}
	if netCfg.ObfuscationMode != 0 {
		c.scrambler = frame.NewScrambler(uint32(id), uint32(serverID), uint32(netCfg.ObfuscationMode))
	}
	return c
}

// nextItemSequence hands out the next per-connection inventory-operation
// sequence number (§8 "every InventoryActionAck/InventoryTransaction/
// InventoryTransactionFinish carries an incrementing sequence, not a
// constant"). Sequence 0 is never issued so a zero-value Conn can't be
// mistaken for one that has sent a real transaction.
func (c *Conn) nextItemSequence() uint32 {
	c.itemSeq++
	return c.itemSeq
}

// Run drives the connection until ctx is cancelled or the socket dies.
// The select is biased toward inbound client data, then one FromServer
// message per iteration, matching §4.3's loop shape.
func (c *Conn) Run(ctx context.Context) {
	c.w.Register(c.id, c.fromWorld)
	defer c.w.Unregister(c.id)
	defer c.conn.Close()

	go c.readLoop()
	go c.writeLoop()

	keepAlive := time.NewTicker(connstate.DefaultKeepAliveTimeout / 3)
	defer keepAlive.Stop()

	for {
		// Waiting client data is taken first; the full select below only
		// runs when inQueue is empty.
		select {
		case <-c.closeCh:
			return
		case env, ok := <-c.inQueue:
			if !ok {
				c.disconnect(c.state.GracefullyLoggedOut)
				return
			}
			c.handleInbound(env)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			c.disconnect(false)
			return
		case <-c.closeCh:
			return
		case env, ok := <-c.inQueue:
			if !ok {
				c.disconnect(c.state.GracefullyLoggedOut)
				return
			}
			c.handleInbound(env)
		case msg := <-c.fromWorld:
			c.handleOutbound(msg)
		case now := <-keepAlive.C:
			if c.state.TimedOut(now, connstate.DefaultKeepAliveTimeout) {
				c.log.Warn("keep-alive timeout, dropping connection")
				c.disconnect(false)
				return
			}
		}
	}
}

// readLoop decodes frames off the socket and pushes decoded segments onto
// inQueue. It blocks on a full inQueue rather than dropping, the same
// tradeoff the teacher's Session.readLoop makes for C_MOVE: losing a
// position update here would desync the client permanently.
func (c *Conn) readLoop() {
	defer close(c.inQueue)
	for {
		if c.readTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}
		f, err := frame.Decode(c.conn, c.decomp, c.scrambler)
		if err != nil {
			c.log.Debug("read loop exiting", zap.Error(err))
			return
		}
		segs, err := segment.DecodeAll(f.Payload)
		if err != nil {
			c.log.Warn("malformed frame payload", zap.Error(err))
			continue
		}
		for _, seg := range segs {
			c.decodeSegment(seg)
		}
	}
}

func (c *Conn) decodeSegment(seg segment.Segment) {
	env := inboundEnvelope{segType: seg.Header.SegmentType, raw: seg.Body}

	switch seg.Header.SegmentType {
	case segment.TypeIPC, segment.TypeCustomIpc:
		if len(seg.Body) < ipc.HeaderSize {
			c.log.Warn("ipc segment shorter than header")
			return
		}
		h := ipc.DecodeHeader(seg.Body[:ipc.HeaderSize])
		msg, err := c.registry.Decode(h, seg.Body[ipc.HeaderSize:])
		if err != nil {
			c.log.Warn("decode ipc body", zap.Error(err))
			return
		}
		env.ipcMsg = msg
	case segment.TypeSetup, segment.TypeKeepAliveRequest, segment.TypeKeepAliveResponse:
		// handled below from the raw body; no registry involved.
	default:
		c.log.Debug("unhandled segment type", zap.Stringer("type", seg.Header.SegmentType))
		return
	}

	select {
	case c.inQueue <- env:
	case <-c.closeCh:
	}
}

// writeLoop drains outQueue and writes already-framed bytes to the socket.
func (c *Conn) writeLoop() {
	for {
		select {
		case data, ok := <-c.outQueue:
			if !ok {
				return
			}
			if c.writeTimeout > 0 {
				c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			}
			if _, err := c.conn.Write(data); err != nil {
				c.log.Debug("write loop exiting", zap.Error(err))
				c.disconnect(false)
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

// sendFrame wraps payload (one or more already-encoded segments) into a
// frame and hands it to writeLoop, disconnecting a client whose outQueue
// can't keep up rather than blocking the whole connection goroutine.
func (c *Conn) sendFrame(payload []byte) {
	var buf bytes.Buffer
	if err := frame.Encode(&buf, frame.Frame{Payload: payload}, c.comp, c.scrambler); err != nil {
		c.log.Warn("encode frame", zap.Error(err))
		return
	}
	select {
	case c.outQueue <- buf.Bytes():
	case <-c.closeCh:
	default:
		c.log.Warn("outQueue full, dropping slow client")
		c.disconnect(false)
	}
}

// sendIPC wraps msg as a TypeIPC segment addressed to target (0 for the
// connection's own actor) and sends it.
func (c *Conn) sendIPC(target uint32, msg ipc.Message) {
	h := ipc.Header{Opcode: msg.Opcode(), ServerID: c.serverID, Timestamp: uint32(time.Now().Unix())}
	body := append(h.Encode(), msg.Encode()...)
	c.sendFrame(segment.Encode(nil, uint32(c.state.ActorID), target, segment.TypeIPC, body))
}

// sendKeepAliveRequest issues a connection-level keep-alive, distinct from
// the IPC-level KeepAliveRequest/Response pair also defined in package ipc
// (§4.2's handshake uses the raw segment form so it works before the
// client's InitRequest has established an IPC-ready state).
func (c *Conn) sendKeepAliveRequest() {
	w := ipc.NewWriter()
	w.WriteU32(uint32(time.Now().UnixNano()))
	w.WriteU32(uint32(time.Now().Unix()))
	c.sendFrame(segment.Encode(nil, 0, 0, segment.TypeKeepAliveRequest, w.Bytes()))
}

func (c *Conn) sendInitialize(id actor.ActorId) {
	w := ipc.NewWriter()
	w.WriteU32(uint32(id))
	w.WriteU32(uint32(time.Now().Unix()))
	c.sendFrame(segment.Encode(nil, uint32(id), 0, segment.TypeInitialize, w.Bytes()))
}

// disconnect tears down the connection exactly once: it optionally emits
// the graceful-logout IPC sequence, commits player data, tells the world
// task the client is gone, and closes the socket (§4.2 "graceful vs.
// forced logout").
func (c *Conn) disconnect(graceful bool) {
	c.closeOnce.Do(func() {
		close(c.closeCh)

		if graceful {
			c.state.BeginGracefulLogout()
			c.conditions |= 1 << uint(world.ConditionLoggingOut)
			c.sendIPC(0, ipc.Condition{Flags: c.conditions})
			c.sendIPC(0, ipc.LogOutComplete{})
		}

		if c.pd != nil {
			c.pd.ZoneID = c.zoneID
			c.pd.PosX, c.pd.PosY, c.pd.PosZ = c.lastPos.X, c.lastPos.Y, c.lastPos.Z
			c.pd.Rotation = c.lastRot
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := c.db.CommitPlayerData(ctx, c.pd); err != nil {
				c.log.Warn("commit player data on disconnect", zap.Error(err))
			}
			cancel()
		}

		if c.state.ActorID.IsValid() {
			select {
			case c.w.Inbox() <- world.Disconnected{FromClient: c.id, ActorID: c.state.ActorID, Graceful: graceful}:
			default:
				c.log.Warn("world inbox full, disconnect notice dropped")
			}
		}
	})
}
