package world

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/actor"
	"github.com/kvatch/worldserver/internal/config"
	"github.com/kvatch/worldserver/internal/data"
)

// ClientHandle is the world task's record of one connected zone client
// (§3 "Cross-task references are never pointers; they are ClientId or
// ActorId plus a message send").
type ClientHandle struct {
	ClientID   actor.ClientId
	ChatID     actor.ClientId // sibling chat connection, 0 if none
	ActorID    actor.ActorId
	InstanceID InstanceID
	ContentID  actor.ContentId

	// PendingTeleport holds the aetheryte id of an unresolved TeleportQuery
	// until the teleport script consumes it.
	PendingTeleport uint32
}

// World is the single task that owns every Instance and therefore every
// Actor (§3 "Ownership", §4.4, §5 "World task"). It is driven exclusively
// by Run; no other goroutine may touch its fields.
type World struct {
	cfg config.WorldConfig
	log *zap.Logger

	navBinary string
	navDir    string

	inbox chan ToServer

	instances      map[InstanceID]*Instance
	publicInstance map[uint16]InstanceID // zoneID -> its public instance
	nextInstanceID InstanceID

	aoi map[InstanceID]*AOIGrid

	clients map[actor.ClientId]*ClientHandle
	outbox  map[actor.ClientId]chan<- FromServer

	parties *PartyManager

	strategyBoards map[actor.ContentId][]byte

	tables *data.Tables

	directorSink chan<- DirectorEvent

	dutyRegistrations map[actor.ClientId]QueueDuties
}

// NewWorld creates an empty world task. inboxSize bounds the ToServer mpsc
// queue (§5 "bounded mpsc queue").
func NewWorld(cfg config.WorldConfig, fsCfg config.FilesystemConfig, log *zap.Logger, inboxSize int) *World {
	return &World{
		cfg:            cfg,
		log:            log,
		navBinary:      fsCfg.NavmeshBinary,
		navDir:         fsCfg.NavmeshDir,
		inbox:          make(chan ToServer, inboxSize),
		instances:      make(map[InstanceID]*Instance),
		publicInstance: make(map[uint16]InstanceID),
		aoi:            make(map[InstanceID]*AOIGrid),
		clients:        make(map[actor.ClientId]*ClientHandle),
		outbox:         make(map[actor.ClientId]chan<- FromServer),
		parties:        NewPartyManager(),
		strategyBoards: make(map[actor.ContentId][]byte),

		dutyRegistrations: make(map[actor.ClientId]QueueDuties),
	}
}

// SetTables hands the world the static zone/content tables. Called once
// before Run; a nil table set leaves every zone without weather, ranges, or
// content entrance data.
func (w *World) SetTables(t *data.Tables) { w.tables = t }

// SetDirectorSink installs the channel the world posts DirectorEvents onto.
// A dedicated dispatcher goroutine drains it and performs the actual script
// calls, keeping Lua out of the world task. Sends never block: a full sink
// drops the event (the next tick produces another Update).
func (w *World) SetDirectorSink(sink chan<- DirectorEvent) { w.directorSink = sink }

func (w *World) postDirectorEvent(ev DirectorEvent) {
	if w.directorSink == nil {
		return
	}
	select {
	case w.directorSink <- ev:
	default:
	}
}

// Inbox returns the send side of the ToServer mpsc queue, handed to every
// zone connection task at accept time.
func (w *World) Inbox() chan<- ToServer { return w.inbox }

// Register binds a per-client FromServer sender before the connection
// sends its first NewClient message, so early fan-out never blocks on a
// missing route.
func (w *World) Register(clientID actor.ClientId, out chan<- FromServer) {
	w.outbox[clientID] = out
}

// Unregister removes a client's outbound route once its connection task
// has fully exited.
func (w *World) Unregister(clientID actor.ClientId) {
	delete(w.outbox, clientID)
}

func (w *World) send(clientID actor.ClientId, msg FromServer) {
	out, ok := w.outbox[clientID]
	if !ok {
		return
	}
	select {
	case out <- msg:
	default:
		w.log.Warn("dropping FromServer message, client outbox full", zap.Uint64("client_id", uint64(clientID)))
	}
}

func (w *World) broadcast(instanceID InstanceID, msg FromServer) {
	for _, c := range w.clients {
		if c.InstanceID == instanceID {
			w.send(c.ClientID, msg)
		}
	}
}

// Run drives the ToServer inbox and the tick interval until ctx is
// cancelled (§4.4 "Two inputs: a multi-producer queue... and a 500ms
// interval tick").
func (w *World) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-w.inbox:
			if err := w.handleToServer(msg); err != nil {
				return err
			}
		case now := <-ticker.C:
			w.tick(now)
		}
	}
}

// handleToServer dispatches one inbox message. Only FatalError produces a
// non-nil error, which unwinds Run — every other failure is absorbed and
// logged (§7).
func (w *World) handleToServer(msg ToServer) error {
	switch m := msg.(type) {
	case FatalError:
		w.log.Error("fatal error delivered to world task", zap.Error(m.Err))
		return m.Err
	case NewClient:
		w.onNewClient(m)
	case ReadySpawnPlayer:
		w.onReadySpawnPlayer(m)
	case ZoneLoaded:
		w.onZoneLoaded(m)
	case ActorMoved:
		w.onActorMoved(m)
	case ClientTrigger:
		w.onClientTrigger(m)
	case Message:
		// Chat relay is out of this core's scope; forwarded messages that
		// reach the world are simply dropped after logging (§1 non-goal:
		// "persisting chat history").
		w.log.Debug("chat message", zap.Uint32("actor_id", uint32(m.ActorID)), zap.String("text", m.Text))
	case JoinContent:
		w.onJoinContent(m)
	case LeaveContent:
		w.onLeaveContent(m)
	case Disconnected:
		w.onDisconnected(m)
	case InvitePlayerToParty:
		w.onInvitePlayerToParty(m)
	case InvitationResponse:
		w.onInvitationResponse(m)
	case AddPartyMember:
		w.onAddPartyMember(m)
	case PartyMemberChangedAreas:
		w.onPartyMemberChangedAreas(m)
	case PartyChangeLeader:
		w.onPartyChangeLeader(m)
	case PartyMemberLeft:
		w.onPartyMemberLeft(m)
	case PartyDisband:
		w.onPartyDisband(m)
	case PartyMemberKick:
		w.onPartyMemberKick(m)
	case PartyMemberOffline:
		w.onPartyMemberOffline(m)
	case PartyMemberReturned:
		w.onPartyMemberReturned(m)
	case ShareStrategyBoard:
		w.onShareStrategyBoard(m)
	case StrategyBoardUpdate:
		w.onStrategyBoardUpdate(m)
	case RealtimeStrategyBoardFinished:
		w.onRealtimeStrategyBoardFinished(m)
	case EnterZoneJump:
		w.onEnterZoneJump(m)
	case QueueDuties:
		w.onQueueDuties(m)
	default:
		w.log.Warn("unhandled ToServer message", zap.String("type", "unknown"))
	}
	return nil
}

// publicInstanceFor returns (creating if necessary) the non-instanced
// public copy of zoneID.
func (w *World) publicInstanceFor(zoneID uint16) *Instance {
	if id, ok := w.publicInstance[zoneID]; ok {
		return w.instances[id]
	}
	w.nextInstanceID++
	id := w.nextInstanceID
	in := NewInstance(id, zoneID, 0)
	w.applyZoneTable(in)
	w.instances[id] = in
	w.publicInstance[zoneID] = id
	w.aoi[id] = NewAOIGrid(float32(w.cfg.AOICellSize))
	return in
}

// applyZoneTable copies the zone row's map ranges onto a fresh instance.
func (w *World) applyZoneTable(in *Instance) {
	if w.tables == nil {
		return
	}
	z, ok := w.tables.Zone(in.ZoneID)
	if !ok {
		return
	}
	in.MapRanges = make([]MapRange, 0, len(z.Ranges))
	for _, def := range z.Ranges {
		r := MapRange{
			Min:                Vec3{X: def.Min.X, Y: def.Min.Y, Z: def.Min.Z},
			Max:                Vec3{X: def.Max.X, Y: def.Max.Y, Z: def.Max.Z},
			Sanctuary:          def.Sanctuary,
			Duel:               def.Duel,
			Entrance:           def.Entrance,
			EntranceInstanceID: InstanceID(def.EntranceInstanceID),
		}
		if def.Jump != nil {
			r.Gimmick = &Gimmick{
				Kind: GimmickJump,
				To:   Vec3{X: def.Jump.To.X, Y: def.Jump.To.Y, Z: def.Jump.To.Z},
				SGB:  def.Jump.SGB,
				EObj: actor.ActorId(def.Jump.EObj),
			}
		}
		in.MapRanges = append(in.MapRanges, r)
	}
}

// zoneWeather reads the zone table's ambient weather for zoneID, 0 if the
// zone has no row.
func (w *World) zoneWeather(zoneID uint16) uint16 {
	if w.tables == nil {
		return 0
	}
	if z, ok := w.tables.Zone(zoneID); ok {
		return z.Weather
	}
	return 0
}

// zoneLuaName reads the zone table's lua_zone name for zoneID.
func (w *World) zoneLuaName(zoneID uint16) string {
	if w.tables == nil {
		return ""
	}
	if z, ok := w.tables.Zone(zoneID); ok {
		if z.LuaZone != "" {
			return z.LuaZone
		}
		return z.Name
	}
	return ""
}

func (w *World) instanceOf(actorID actor.ActorId) (*Instance, bool) {
	for _, in := range w.instances {
		if _, ok := in.Actors[actorID]; ok {
			return in, true
		}
	}
	return nil, false
}

// SpawnNpc inserts a fresh NPC into in and indexes it in the instance's
// AOI grid, which the visibility and aggro passes read; spawning through
// Instance.SpawnNpc alone would leave the actor invisible.
func (w *World) SpawnNpc(in *Instance, objType actor.ObjectTypeId, common CommonSpawn) *Actor {
	a := in.SpawnNpc(objType, common)
	if g := w.aoi[in.ID]; g != nil {
		g.Add(a.ID, a.Common.Position)
	}
	return a
}

// SpawnObject is SpawnNpc's scenery-object counterpart.
func (w *World) SpawnObject(in *Instance, objType actor.ObjectTypeId, common CommonSpawn) *Actor {
	a := in.SpawnObject(objType, common)
	if g := w.aoi[in.ID]; g != nil {
		g.Add(a.ID, a.Common.Position)
	}
	return a
}

// lookupActor implements the lookup callback VisibleEntries needs.
func (w *World) lookupActor(actorID actor.ActorId) (*Actor, InstanceID, bool) {
	in, ok := w.instanceOf(actorID)
	if !ok {
		return nil, 0, false
	}
	return in.Actors[actorID], in.ID, true
}
