package world

import (
	"math"

	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/actor"
)

// onNewClient registers a freshly accepted zone connection. If a party
// already has a member whose ActorId matches, that member is re-linked and
// told to rejoin (§4.4 "NewClient(handle)").
func (w *World) onNewClient(m NewClient) {
	w.clients[m.ClientID] = &ClientHandle{ClientID: m.ClientID, ActorID: m.ActorID}

	for _, p := range w.parties.parties {
		for i, mem := range p.Members {
			if mem.ActorID == m.ActorID && !mem.isEmpty() {
				p.Members[i].ZoneClientID = m.ClientID
				p.Members[i].Online = true
				w.clients[m.ClientID].ContentID = mem.ContentID
				w.send(m.ClientID, RejoinPartyAfterDisconnect{})
				return
			}
		}
	}
}

// onReadySpawnPlayer ensures the public instance exists, inserts an empty
// player actor, and kicks off the ChangeZone sequence with
// initial_login=true (§4.4).
func (w *World) onReadySpawnPlayer(m ReadySpawnPlayer) {
	in := w.publicInstanceFor(m.ZoneID)

	a := &Actor{
		ID:   m.ActorID,
		Kind: KindPlayer,
		Common: CommonSpawn{
			Position:  m.Position,
			Rotation:  m.Rotation,
			Name:      m.Name,
			ContentID: m.ContentID,
			Online:    true,
		},
		ClientID: m.ClientID,
	}
	in.Insert(a)
	w.aoi[in.ID].Add(a.ID, a.Common.Position)

	if c, ok := w.clients[m.ClientID]; ok {
		c.InstanceID = in.ID
		c.ContentID = m.ContentID
	}

	w.send(m.ClientID, ChangeZone{
		ZoneID:                   m.ZoneID,
		ContentFinderConditionID: 0,
		Weather:                  w.zoneWeather(m.ZoneID),
		Position:                 m.Position,
		Rotation:                 m.Rotation,
		LuaZone:                  w.zoneLuaName(m.ZoneID),
		InitialLogin:             true,
	})
}

func (w *World) onZoneLoaded(m ZoneLoaded) {
	c, ok := w.clients[m.ClientID]
	if !ok {
		return
	}
	p, found := w.parties.Of(c.ContentID)
	if !found {
		return
	}
	entries := p.VisibleEntries(c.InstanceID, w.lookupActor)
	w.broadcastToParty(p, PartyUpdate{Status: PartyStatusChangedAreas, Entries: entries})
}

// onActorMoved updates the authoritative common spawn, broadcasts
// ActorMove to every other viewer in the instance, and cancels any
// interruptible cast the actor had queued (§4.4, §8 property 7).
func (w *World) onActorMoved(m ActorMoved) {
	in, ok := w.instanceOf(m.ActorID)
	if !ok {
		return
	}
	a := in.Actors[m.ActorID]
	moved := a.Common.Position != m.Position || a.Common.Rotation != m.Rotation
	a.Common.Position = m.Position
	a.Common.Rotation = m.Rotation
	if w.aoi[in.ID] != nil {
		w.aoi[in.ID].Move(m.ActorID, m.Position)
	}

	if moved {
		in.CancelInterruptibleCasts(m.ActorID)
	}

	// Movement is not echoed to other viewers while the player rides a
	// gimmick jump; broadcasting resumes on GimmickJumpLanded (§8
	// "Gimmick jump" scenario).
	if a.ExecutingGimmickJump {
		return
	}

	for _, c := range w.clients {
		if c.InstanceID == in.ID && c.ActorID != m.ActorID {
			w.send(c.ClientID, ActorMove{Source: m.ActorID, Position: m.Position, Rotation: m.Rotation, AnimSpeed: m.AnimType})
		}
	}
}

// onClientTrigger dispatches ClientTrigger variants that required a world
// message rather than a purely local reply (§4.4).
func (w *World) onClientTrigger(m ClientTrigger) {
	in, ok := w.instanceOf(m.ActorID)
	if !ok {
		return
	}
	a := in.Actors[m.ActorID]

	switch m.Kind {
	case TriggerTeleportQuery:
		// TeleportStart goes only to the querying player; the aetheryte id
		// is held until the script-driven teleport resolves it.
		w.send(m.FromClient, ActorControlEvent{
			Source:   m.ActorID,
			Kind:     ControlTeleportStart,
			Params:   [4]uint32{m.AetheryteID},
			SelfOnly: true,
		})
		if c, ok := w.clients[m.FromClient]; ok {
			c.PendingTeleport = m.AetheryteID
		}

	case TriggerSummonMinion:
		w.broadcast(in.ID, ActorControlEvent{Source: m.ActorID, Kind: ControlSummonMinion, Params: [4]uint32{m.MinionID}})

	case TriggerDespawnMinion:
		w.broadcast(in.ID, ActorControlEvent{Source: m.ActorID, Kind: ControlDespawnMinion, Params: [4]uint32{m.MinionID}})

	case TriggerManuallyRemoveEffect:
		in.CancelScheduledRemoval(m.ActorID, m.EffectID, m.EffectSource)
		removeStatusEffect(a, m.EffectID, m.EffectSource)

	case TriggerSetTarget:
		w.broadcast(in.ID, ActorControlEvent{Source: m.ActorID, Kind: ControlSetTarget, Params: [4]uint32{uint32(m.TargetID)}})

	case TriggerChangePose:
		w.broadcast(in.ID, ActorControlEvent{Source: m.ActorID, Kind: ControlChangePose, Params: [4]uint32{uint32(m.PoseID)}})

	case TriggerEmote:
		w.broadcast(in.ID, ActorControlEvent{Source: m.ActorID, Kind: ControlEmote, Params: [4]uint32{m.EmoteID}})

	case TriggerToggleWeapon:
		w.broadcast(in.ID, ActorControlEvent{Source: m.ActorID, Kind: ControlToggleWeapon})

	case TriggerPlaceWaymark, TriggerClearWaymark, TriggerClearAllWaymarks, TriggerApplyWaymarkPreset:
		ev := waymarkControlEvent(m)
		if p, found := w.parties.Of(a.Common.ContentID); found {
			w.broadcastToParty(p, ev)
		} else {
			w.send(m.FromClient, ev)
		}

	case TriggerGimmickJumpLanded:
		a.ExecutingGimmickJump = false
	}
}

// waymarkControlEvent renders a waymark trigger into the broadcast shape
// shared by all four waymark kinds (§4.4 "PlaceWaymark/ClearWaymark/
// ClearAllWaymarks/ApplyWaymarkPreset → broadcast to party or self").
func waymarkControlEvent(m ClientTrigger) ActorControlEvent {
	ev := ActorControlEvent{Source: m.ActorID}
	switch m.Kind {
	case TriggerPlaceWaymark:
		ev.Kind = ControlPlaceWaymark
		ev.Params = [4]uint32{
			uint32(m.WaymarkID),
			math.Float32bits(m.WaymarkPos.X),
			math.Float32bits(m.WaymarkPos.Y),
			math.Float32bits(m.WaymarkPos.Z),
		}
	case TriggerClearWaymark:
		ev.Kind = ControlClearWaymark
		ev.Params = [4]uint32{uint32(m.WaymarkID)}
	case TriggerClearAllWaymarks:
		ev.Kind = ControlClearAllWaymarks
	case TriggerApplyWaymarkPreset:
		ev.Kind = ControlApplyWaymarkPreset
		ev.Params = [4]uint32{uint32(m.PresetID)}
	}
	return ev
}

// removeStatusEffect drops the first matching status effect entry and
// marks the list dirty for resend.
func removeStatusEffect(a *Actor, effectID uint16, source actor.ActorId) {
	for i := 0; i < a.StatusCount; i++ {
		if a.StatusEffects[i].EffectID == effectID && a.StatusEffects[i].Source == source {
			copy(a.StatusEffects[i:a.StatusCount-1], a.StatusEffects[i+1:a.StatusCount])
			a.StatusCount--
			a.StatusDirty = true
			return
		}
	}
}

// onJoinContent maps the content id to its zone, removes the actor from its
// current (public) instance, and creates a fresh instance for cfcID with a
// running director (§4.4, §8 "Zone change via content").
func (w *World) onJoinContent(m JoinContent) {
	var (
		zoneID      uint16
		entrancePos Vec3
		entranceRot float32
		haveContent bool
	)

	old, ok := w.instanceOf(m.ActorID)
	if !ok {
		return
	}
	a := old.Actors[m.ActorID]
	if a == nil {
		return
	}

	if w.tables != nil {
		if c, found := w.tables.Content(m.ContentFinderConditionID); found {
			haveContent = true
			zoneID = c.ZoneID
			entrancePos = Vec3{X: c.Entrance.X, Y: c.Entrance.Y, Z: c.Entrance.Z}
			entranceRot = c.EntranceRotation
		}
	}
	if !haveContent {
		// No table row: run the content in the player's current zone at
		// their current position rather than refusing the join outright.
		zoneID = old.ZoneID
		entrancePos = a.Common.Position
		entranceRot = a.Common.Rotation
	}

	a = old.Remove(m.ActorID)
	if a == nil {
		return
	}
	if g := w.aoi[old.ID]; g != nil {
		g.Remove(m.ActorID)
	}

	w.nextInstanceID++
	id := w.nextInstanceID
	in := NewInstance(id, zoneID, m.ContentFinderConditionID)
	in.Director = NewDirector(actor.HandlerId{Type: actor.HandlerInstanceDirector, ContentID: uint32(m.ContentFinderConditionID)})
	w.applyZoneTable(in)
	w.instances[id] = in
	w.aoi[id] = NewAOIGrid(float32(w.cfg.AOICellSize))

	a.Common.Position = entrancePos
	a.Common.Rotation = entranceRot
	in.Insert(a)
	w.aoi[id].Add(a.ID, a.Common.Position)

	if c, ok := w.clients[m.FromClient]; ok {
		c.InstanceID = id
	}

	w.postDirectorEvent(DirectorEvent{Kind: DirectorSetup, Handler: in.Director.HandlerID, InstanceID: id})

	w.send(m.FromClient, ChangeZone{
		ZoneID:                   zoneID,
		ContentFinderConditionID: m.ContentFinderConditionID,
		Weather:                  w.zoneWeather(zoneID),
		Position:                 entrancePos,
		Rotation:                 entranceRot,
		LuaZone:                  w.zoneLuaName(zoneID),
		InitialLogin:             false,
		DirectorVars:             in.Director.Vars,
	})
}

// onLeaveContent restores the actor to the public instance it came from
// (§4.4, symmetric to JoinContent).
func (w *World) onLeaveContent(m LeaveContent) {
	cur, ok := w.instanceOf(m.ActorID)
	if !ok {
		return
	}
	a := cur.Remove(m.ActorID)
	if a == nil {
		return
	}
	if g := w.aoi[cur.ID]; g != nil {
		g.Remove(m.ActorID)
	}

	pub := w.publicInstanceFor(m.OldZoneID)
	a.Common.Position = m.OldPosition
	a.Common.Rotation = m.OldRotation
	pub.Insert(a)
	w.aoi[pub.ID].Add(a.ID, a.Common.Position)

	if c, ok := w.clients[m.FromClient]; ok {
		c.InstanceID = pub.ID
	}

	w.send(m.FromClient, ChangeZone{
		ZoneID:       m.OldZoneID,
		Weather:      w.zoneWeather(m.OldZoneID),
		Position:     m.OldPosition,
		Rotation:     m.OldRotation,
		LuaZone:      w.zoneLuaName(m.OldZoneID),
		InitialLogin: false,
	})
}

// onDisconnected removes the actor from its instance, broadcasts
// DeleteActor, and marks the party member offline (§4.4, §4.2
// forced-disconnect path). It sends nothing to the client's sibling chat
// connection.
func (w *World) onDisconnected(m Disconnected) {
	c, ok := w.clients[m.FromClient]
	if !ok {
		return
	}
	if in, found := w.instances[c.InstanceID]; found {
		in.Remove(m.ActorID)
		if g := w.aoi[in.ID]; g != nil {
			g.Remove(m.ActorID)
		}
		w.broadcast(in.ID, DeleteActor{ActorID: m.ActorID})
	}

	if p, found := w.parties.Of(c.ContentID); found {
		p.SetOnline(c.ContentID, false, 0, 0)
		entries := p.VisibleEntries(c.InstanceID, w.lookupActor)
		w.broadcastToParty(p, PartyUpdate{Status: PartyStatusOffline, Entries: entries})
	}

	delete(w.dutyRegistrations, m.FromClient)
	delete(w.clients, m.FromClient)
	w.Unregister(m.FromClient)
}

// onEnterZoneJump walks the player through an exit box into the target
// zone's public instance (§4.3 ZoneJump).
func (w *World) onEnterZoneJump(m EnterZoneJump) {
	cur, ok := w.instanceOf(m.ActorID)
	if !ok {
		return
	}
	if cur.ZoneID == m.ZoneID {
		cur.Actors[m.ActorID].Common.Position = m.Position
		return
	}

	a := cur.Remove(m.ActorID)
	if a == nil {
		return
	}
	if g := w.aoi[cur.ID]; g != nil {
		g.Remove(m.ActorID)
	}
	w.broadcast(cur.ID, DeleteActor{ActorID: m.ActorID})

	pub := w.publicInstanceFor(m.ZoneID)
	a.Common.Position = m.Position
	pub.Insert(a)
	w.aoi[pub.ID].Add(a.ID, a.Common.Position)

	if c, ok := w.clients[m.FromClient]; ok {
		c.InstanceID = pub.ID
	}

	w.send(m.FromClient, ChangeZone{
		ZoneID:       m.ZoneID,
		Weather:      w.zoneWeather(m.ZoneID),
		Position:     m.Position,
		LuaZone:      w.zoneLuaName(m.ZoneID),
		InitialLogin: false,
	})
}

// onQueueDuties records the client's duty-finder registration (§4.3
// "store flags, publish registration to world"). No matchmaker runs on
// this core; the registration is held until JoinContent consumes it or
// the client disconnects.
func (w *World) onQueueDuties(m QueueDuties) {
	if len(m.ContentIDs) == 0 {
		delete(w.dutyRegistrations, m.FromClient)
		return
	}
	w.dutyRegistrations[m.FromClient] = m
	w.log.Debug("duty registration stored",
		zap.Uint32("actor_id", uint32(m.ActorID)),
		zap.Int("contents", len(m.ContentIDs)),
		zap.Uint32("flags", m.Flags),
	)
}

// --- Party ops (§4.4) ---

// onInvitePlayerToParty forwards the invite to the target's zone
// connection, naming the sender so the invite dialog can show them (§8
// "Party invite accept" scenario). A target with no live connection just
// drops the invite.
func (w *World) onInvitePlayerToParty(m InvitePlayerToParty) {
	sender, ok := w.clients[m.FromClient]
	if !ok {
		return
	}
	senderName := ""
	if a, _, found := w.lookupActor(m.FromActor); found {
		senderName = a.Common.Name
	}

	for _, c := range w.clients {
		if c.ContentID == m.TargetContentID {
			w.send(c.ClientID, PartyInvite{SenderContentID: sender.ContentID, SenderName: senderName})
			return
		}
	}
	w.log.Debug("party invite target not online", zap.Uint64("content_id", uint64(m.TargetContentID)))
}

func (w *World) onInvitationResponse(m InvitationResponse) {
	if !m.Accepted {
		return
	}
	c, clientOK := w.clients[m.FromClient]
	if !clientOK {
		return
	}
	member := w.memberFor(c)

	p, found := w.parties.Of(m.SenderContentID)
	if !found {
		leader, ok := w.clientByContentID(m.SenderContentID)
		if !ok {
			return
		}
		p = w.parties.Create(w.memberFor(leader))
		p.ChatChannelID = uint32(p.ID)
	}
	w.parties.Join(p.ID, member)
	w.fanoutPartyFull(p, PartyStatusJoinParty)
}

// memberFor snapshots a live client handle into a party Member slot.
func (w *World) memberFor(c *ClientHandle) Member {
	m := Member{
		ActorID:      c.ActorID,
		ZoneClientID: c.ClientID,
		ChatClientID: c.ChatID,
		ContentID:    c.ContentID,
		Online:       true,
	}
	if a, _, ok := w.lookupActor(c.ActorID); ok {
		m.Name = a.Common.Name
	}
	return m
}

func (w *World) clientByContentID(contentID actor.ContentId) (*ClientHandle, bool) {
	for _, c := range w.clients {
		if c.ContentID == contentID {
			return c, true
		}
	}
	return nil, false
}

func (w *World) onAddPartyMember(m AddPartyMember) {
	var p *Party
	if m.PartyID == 0 {
		p = w.parties.Create(m.Leader)
		p.ChatChannelID = uint32(p.ID)
	} else {
		var ok bool
		p, ok = w.parties.Get(m.PartyID)
		if !ok {
			return
		}
	}
	w.parties.Join(p.ID, m.NewMember)
	w.fanoutPartyFull(p, PartyStatusJoinParty)
}

func (w *World) onPartyMemberChangedAreas(m PartyMemberChangedAreas) {
	p, found := w.parties.Of(m.ContentID)
	if !found {
		return
	}
	w.fanoutPartyFull(p, PartyStatusChangedAreas)
}

func (w *World) onPartyChangeLeader(m PartyChangeLeader) {
	p, found := w.parties.Of(m.ContentID)
	if !found {
		return
	}
	if p.SetLeader(m.NewLeaderCID) {
		w.fanoutPartyFull(p, PartyStatusChangeLeader)
	}
}

func (w *World) onPartyMemberLeft(m PartyMemberLeft) {
	p, disbanded := w.parties.Leave(m.ContentID)
	if p == nil {
		return
	}
	if disbanded {
		w.fanoutPartyUpdateOnly(p, PartyStatusDisband)
		return
	}
	w.fanoutPartyFull(p, PartyStatusLeaveParty)
}

func (w *World) onPartyDisband(m PartyDisband) {
	p, found := w.parties.Of(m.ContentID)
	if !found {
		return
	}
	w.parties.Disband(p.ID)
	w.fanoutPartyUpdateOnly(p, PartyStatusDisband)
}

func (w *World) onPartyMemberKick(m PartyMemberKick) {
	p, disbanded := w.parties.Leave(m.TargetCID)
	if p == nil {
		return
	}
	if disbanded {
		w.fanoutPartyUpdateOnly(p, PartyStatusDisband)
		return
	}
	w.fanoutPartyFull(p, PartyStatusKick)
}

func (w *World) onPartyMemberOffline(m PartyMemberOffline) {
	p, found := w.parties.Of(m.ContentID)
	if !found {
		return
	}
	p.SetOnline(m.ContentID, false, 0, 0)
	w.fanoutPartyFull(p, PartyStatusOffline)
}

func (w *World) onPartyMemberReturned(m PartyMemberReturned) {
	p, found := w.parties.Of(m.ContentID)
	if !found {
		return
	}
	p.SetOnline(m.ContentID, true, m.ZoneClientID, m.ChatClientID)
	w.fanoutPartyFull(p, PartyStatusReturned)
}

// fanoutPartyFull sends PartyUpdate + a full PartyList to every online
// member, and pushes the chat channel id to each member's chat connection
// (§4.4, §8 "Party invite accept" scenario).
func (w *World) fanoutPartyFull(p *Party, status PartyUpdateStatus) {
	for _, mem := range p.Members {
		if mem.isEmpty() || !mem.Online {
			continue
		}
		c := w.clients[mem.ZoneClientID]
		var instanceID InstanceID
		if c != nil {
			instanceID = c.InstanceID
		}
		entries := p.VisibleEntries(instanceID, w.lookupActor)
		w.send(mem.ZoneClientID, PartyUpdate{Status: status, Entries: entries})
		w.send(mem.ZoneClientID, PartyList{Entries: entries})
		if mem.ChatClientID != 0 {
			w.send(mem.ChatClientID, SetPartyChatChannel{ChannelID: p.ChatChannelID})
		}
	}
}

func (w *World) fanoutPartyUpdateOnly(p *Party, status PartyUpdateStatus) {
	for _, mem := range p.Members {
		if mem.isEmpty() || !mem.Online {
			continue
		}
		w.send(mem.ZoneClientID, PartyUpdate{Status: status})
	}
}

func (w *World) broadcastToParty(p *Party, msg FromServer) {
	for _, mem := range p.Members {
		if !mem.isEmpty() && mem.Online {
			w.send(mem.ZoneClientID, msg)
		}
	}
}

// --- Strategy board (§4.4 two-phase protocol) ---

func (w *World) onShareStrategyBoard(m ShareStrategyBoard) {
	w.strategyBoards[m.ContentID] = m.Board
	p, found := w.parties.Of(m.ContentID)
	if !found {
		return
	}
	realtime := m.ClientContentID != 0
	if realtime {
		p.StrategyBoardHostContentID = m.ClientContentID
		p.StrategyBoardRealtime = true
	}
	for _, mem := range p.Members {
		if mem.isEmpty() || !mem.Online || mem.ContentID == m.ContentID {
			continue
		}
		w.send(mem.ZoneClientID, StrategyBoardFanout{Board: m.Board, Realtime: realtime})
	}
}

func (w *World) onStrategyBoardUpdate(m StrategyBoardUpdate) {
	p, found := w.parties.Of(m.ContentID)
	if !found || !p.StrategyBoardRealtime {
		return
	}
	host := p.StrategyBoardHostContentID
	for _, mem := range p.Members {
		if mem.isEmpty() || !mem.Online || mem.ContentID == host {
			continue
		}
		w.send(mem.ZoneClientID, StrategyBoardFanout{Board: m.Payload, Realtime: true})
	}
}

func (w *World) onRealtimeStrategyBoardFinished(m RealtimeStrategyBoardFinished) {
	p, found := w.parties.Of(m.ContentID)
	if !found {
		return
	}
	p.StrategyBoardRealtime = false
	p.StrategyBoardHostContentID = 0
}
