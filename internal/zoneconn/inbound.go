package zoneconn

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/actor"
	"github.com/kvatch/worldserver/internal/ipc"
	"github.com/kvatch/worldserver/internal/persist"
	"github.com/kvatch/worldserver/internal/segment"
	"github.com/kvatch/worldserver/internal/world"
)

// handleInbound dispatches one decoded segment: the raw Setup/KeepAlive
// control segments are handled here directly, IPC bodies are translated
// into world.ToServer sends (§4.3).
func (c *Conn) handleInbound(env inboundEnvelope) {
	switch env.segType {
	case segment.TypeSetup:
		c.handleSetup()
		return
	case segment.TypeKeepAliveRequest:
		c.handleSegmentKeepAliveRequest(env.raw)
		return
	case segment.TypeKeepAliveResponse:
		c.state.Touch(time.Now())
		return
	}

	if env.ipcMsg == nil {
		return
	}

	switch m := env.ipcMsg.(type) {
	case ipc.InitRequest:
		c.handleInitRequest(m)

	case ipc.FinishLoading:
		c.sendIPC(0, ipc.ZoneLoaded{ZoneID: c.zoneID})
		if c.state.ActorID.IsValid() {
			c.send(world.ZoneLoaded{ClientID: c.id, ActorID: c.state.ActorID})
		}
		if c.rejoiningParty {
			c.rejoiningParty = false
			c.send(world.PartyMemberReturned{ContentID: c.contentID(), ZoneClientID: c.id})
		}

	case ipc.UpdatePositionHandler:
		c.lastPos = world.Vec3{X: m.X, Y: m.Y, Z: m.Z}
		c.lastRot = m.Rotation
		c.send(world.ActorMoved{ActorID: c.state.ActorID, Position: c.lastPos, Rotation: m.Rotation, AnimType: m.Flags})

	case ipc.ClientTrigger:
		c.handleClientTrigger(m)

	case ipc.SendChatMessage:
		c.handleChatMessage(m)

	case ipc.GMCommand:
		c.handleGMCommand(m)

	case ipc.ItemOperation:
		c.handleItemOperation(m)

	case ipc.StartTalkEvent:
		c.handleStartTalkEvent(m)

	case ipc.EventYieldHandler:
		c.handleEventYield(m)

	case ipc.EventReturnHandler4:
		c.handleEventReturn(m)

	case ipc.EquipGearset:
		c.handleEquipGearset(m)

	case ipc.ZoneJump:
		c.send(world.EnterZoneJump{
			FromClient: c.id,
			ActorID:    c.state.ActorID,
			ZoneID:     m.ZoneID,
			Position:   world.Vec3{X: m.X, Y: m.Y, Z: m.Z},
		})

	case ipc.QueueDuties:
		ids := make([]uint16, 0, len(m.ContentFinderConditionIDs))
		for _, id := range m.ContentFinderConditionIDs {
			if id != 0 {
				ids = append(ids, id)
			}
		}
		c.send(world.QueueDuties{FromClient: c.id, ActorID: c.state.ActorID, ContentIDs: ids, Flags: m.Flags})

	case ipc.PartyInvite:
		c.send(world.InvitePlayerToParty{FromClient: c.id, FromActor: c.state.ActorID, TargetContentID: actor.ContentId(m.TargetContentID)})

	case ipc.InviteReply:
		c.send(world.InvitationResponse{
			FromClient:      c.id,
			ActorID:         c.state.ActorID,
			SenderContentID: c.pendingInviteFrom,
			Accepted:        m.Accepted,
		})
		c.pendingInviteFrom = 0

	case ipc.PartyLeave:
		c.send(world.PartyMemberLeft{ContentID: c.contentID()})

	case ipc.PartyDisband:
		c.send(world.PartyDisband{FromClient: c.id, ContentID: c.contentID()})

	case ipc.PartyMemberKick:
		c.send(world.PartyMemberKick{FromClient: c.id, ContentID: c.contentID(), TargetCID: actor.ContentId(m.TargetContentID)})

	case ipc.PartyChangeLeader:
		c.send(world.PartyChangeLeader{FromClient: c.id, ContentID: c.contentID(), NewLeaderCID: actor.ContentId(m.TargetContentID)})

	case ipc.SetPartyChatChannel:
		// world has no ToServer counterpart for a client-initiated channel
		// pick; the server-authoritative channel is pushed back via
		// world.SetPartyChatChannel whenever party membership changes.

	case ipc.ShareStrategyBoard:
		c.send(world.ShareStrategyBoard{FromClient: c.id, ContentID: c.contentID(), Board: append([]byte(nil), m.Data[:]...)})

	case ipc.StrategyBoardUpdate:
		c.send(world.StrategyBoardUpdate{FromClient: c.id, ContentID: c.contentID(), Payload: append([]byte(nil), m.Data[:]...)})

	case ipc.RealtimeStrategyBoardFinished:
		c.send(world.RealtimeStrategyBoardFinished{FromClient: c.id, ContentID: c.contentID()})

	case ipc.RequestBlacklist:
		c.sendIPC(0, ipc.Blacklist{Sequence: m.Sequence, Count: 0})

	case ipc.LogOut:
		c.disconnect(true)

	case ipc.KeepAliveRequest:
		c.state.Touch(time.Now())
		c.sendIPC(0, ipc.KeepAliveResponse{ID: m.ID, Timestamp: m.Timestamp})

	default:
		c.log.Debug("unhandled ipc message")
	}
}

// send forwards msg to the world task's inbox, blocking rather than
// dropping: every ToServer message is authoritative client input.
func (c *Conn) send(msg world.ToServer) {
	c.w.Inbox() <- msg
}

func (c *Conn) contentID() actor.ContentId {
	if c.pd != nil {
		return c.pd.ContentID
	}
	return 0
}

// handleSetup completes the connection handshake: the client-declared
// actor id in the Setup body is ignored, the server is authoritative
// (§4.2). It replies with a connection-level keep-alive and the
// Initialize segment carrying the real id.
func (c *Conn) handleSetup() {
	id := allocateActorID()
	c.state.CompleteSetup(id)
	c.sendKeepAliveRequest()
	c.sendInitialize(id)
}

func (c *Conn) handleSegmentKeepAliveRequest(raw []byte) {
	c.state.Touch(time.Now())
	if len(raw) < 8 {
		return
	}
	r := ipc.NewReader(raw)
	id := r.ReadU32()
	ts := r.ReadU32()
	w := ipc.NewWriter()
	w.WriteU32(id)
	w.WriteU32(ts)
	c.sendFrame(segment.Encode(nil, 0, 0, segment.TypeKeepAliveResponse, w.Bytes()))
}

// handleInitRequest loads or creates the connecting character's persisted
// row, registers the player actor with the world, and replies with
// InitResponse, the inventory resends and PlayerStatus (§4.3 "InitRequest
// handler"); InitZone follows later, with the world's ChangeZone.
func (c *Conn) handleInitRequest(m ipc.InitRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	contentID := actor.ContentId(m.ContentID)
	pd, err := c.db.FindPlayerData(ctx, contentID)
	if err != nil {
		c.log.Warn("find player data", zap.Error(err))
		c.disconnect(false)
		return
	}
	if pd == nil {
		pd = &persist.PlayerData{
			ContentID:   contentID,
			AccountID:   actor.AccountId(m.AccountID),
			ClassLevels: map[string]uint8{},
			ClassExp:    map[string]uint32{},
		}
	}
	c.pd = pd
	c.zoneID = pd.ZoneID
	c.lastPos = world.Vec3{X: pd.PosX, Y: pd.PosY, Z: pd.PosZ}
	c.lastRot = pd.Rotation

	// InitZone and the item-level resend are deliberately absent here:
	// both belong to the ChangeZone sequence the world sends back once
	// ReadySpawnPlayer lands, and sending them from this handler too
	// would deliver each twice on every login.
	actorID := c.state.ActorID
	c.sendIPC(0, ipc.InitResponse{ActorID: uint32(actorID), ContentID: m.ContentID})

	c.sendFullInventory()
	c.sendEquippedInventory()
	c.sendPlayerStatus()

	if c.banner != "" {
		c.sendIPC(0, ipc.ServerNoticeMessage{Message: c.banner})
	}

	c.send(world.NewClient{ClientID: c.id, ActorID: actorID})
	c.send(world.ReadySpawnPlayer{
		ClientID:  c.id,
		ActorID:   actorID,
		ContentID: pd.ContentID,
		Name:      pd.Name,
		ZoneID:    c.zoneID,
		Position:  c.lastPos,
		Rotation:  c.lastRot,
	})
}

// handleClientTrigger handles purely local triggers here (condition flips
// around the contents-replay window, glamour prep) and forwards the rest
// to the world task (§4.3 "either handle locally ... or forward").
func (c *Conn) handleClientTrigger(m ipc.ClientTrigger) {
	switch m.Kind {
	case ipc.TriggerBeginContentsReplay:
		c.setCondition(world.ConditionExecutingGatheringAction, true)
		return
	case ipc.TriggerEndContentsReplay:
		c.setCondition(world.ConditionExecutingGatheringAction, false)
		return
	case ipc.TriggerPrepareCastGlamour:
		// Acknowledged locally; no glamour plate store is modeled.
		return
	case ipc.TriggerJoinContent:
		c.inContent = true
		c.returnZoneID = c.zoneID
		c.returnPos = c.lastPos
		c.returnRot = c.lastRot
		c.send(world.JoinContent{
			FromClient:               c.id,
			ActorID:                  c.state.ActorID,
			ContentFinderConditionID: uint16(m.Param1),
		})
		return
	case ipc.TriggerLeaveContent:
		if !c.inContent {
			return
		}
		c.inContent = false
		c.send(world.LeaveContent{
			FromClient:  c.id,
			ActorID:     c.state.ActorID,
			OldZoneID:   c.returnZoneID,
			OldPosition: c.returnPos,
			OldRotation: c.returnRot,
		})
		return
	}

	kind, ok := triggerKindToWorld(m.Kind)
	if !ok {
		c.log.Debug("client trigger has no world-side handler", zap.Uint16("kind", uint16(m.Kind)))
		return
	}
	c.send(buildClientTrigger(c.id, c.state.ActorID, kind, m))
}

// setCondition flips one bit of the conditions bitmask and resends the
// full Condition word to the client.
func (c *Conn) setCondition(flag world.ConditionFlag, value bool) {
	bit := uint32(1) << uint(flag)
	if value {
		c.conditions |= bit
	} else {
		c.conditions &^= bit
	}
	c.sendIPC(0, ipc.Condition{Flags: c.conditions})
}

func (c *Conn) handleChatMessage(m ipc.SendChatMessage) {
	text := strings.TrimRight(m.Message, "\x00")
	c.send(world.Message{FromClient: c.id, ActorID: c.state.ActorID, Text: text})
	if strings.HasPrefix(text, "!") {
		c.handleChatCommand(text)
	}
}

// handleItemOperation applies an inventory mutation. The wire message
// carries only flat from/to slot indices with no storage id, so both ends
// are addressed against the general-purpose Inventory0 container; armoury
// chest and equipped-slot addressing will need a wire field this message
// doesn't have yet.
func (c *Conn) handleItemOperation(m ipc.ItemOperation) {
	op := world.ItemOperation{
		Op:                itemOpKindToWorld(m.Kind),
		SrcStorage:        world.StorageInventory0,
		SrcContainerIndex: m.FromSlot,
		SrcStack:          m.Quantity,
		SrcCatalogID:      m.ItemID,
		DstStorage:        world.StorageInventory0,
		DstContainerIndex: m.ToSlot,
	}
	txn, reclassify := c.inv.Apply(op)

	seq := c.nextItemSequence()
	c.sendIPC(0, ipc.InventoryActionAck{Sequence: seq, Type: uint16(m.Kind)})
	c.sendIPC(0, ipc.InventoryTransaction{
		Sequence:   seq,
		Operation:  uint16(itemOpToWireKind(txn.Op)),
		ItemID:     txn.SrcCatalogID,
		Quantity:   txn.DstStack,
		SrcStorage: uint16(txn.SrcStorage),
		SrcSlot:    txn.SrcContainerIndex,
		DstStorage: uint16(txn.DstStorage),
		DstSlot:    txn.DstContainerIndex,
		DstActor:   uint32(txn.DstActor),
	})

	var unk1, unk2 uint16
	if op.Op == world.ItemOpDiscard {
		unk1, unk2 = 0x90, 0x200
	}
	c.sendIPC(0, ipc.InventoryTransactionFinish{Sequence: seq, Unk1: unk1, Unk2: unk2})

	if reclassify {
		c.reclassifyByWeapon()
		c.sendEquippedInventory()
		c.sendInformEquip()
		c.sendPlayerStatus()
	}
}

// handleEquipGearset swaps the 14 equipped-gear slots to the addresses the
// client resolved a gearset to, moving only the slots that actually
// changed (§4.3 "compare-and-swap/move loop"): an item already worn stays
// put and a different item swaps places with the one it displaces. A
// gearset slot with no source address (container 0, index 0) is skipped,
// so its equip slot keeps whatever it holds; nothing is moved out to an
// armoury chest.
func (c *Conn) handleEquipGearset(m ipc.EquipGearset) {
	seq := c.nextItemSequence()

	for slot := uint16(0); slot < ipc.EquipSlotCount; slot++ {
		srcStorage := world.Storage(m.Containers[slot])
		srcIndex := m.Indices[slot]
		if srcStorage == world.StorageInvalid && srcIndex == 0 {
			continue
		}

		incoming := c.inv.Get(srcStorage, srcIndex)
		current := c.inv.Get(world.StorageEquippedItems, slot)
		if incoming.CatalogID == current.CatalogID && incoming.Stack == current.Stack {
			continue
		}

		c.inv.Set(world.StorageEquippedItems, slot, incoming)
		c.inv.Set(srcStorage, srcIndex, current)

		c.sendIPC(0, ipc.InventoryTransaction{
			Sequence:   seq,
			Operation:  uint16(itemOpToWireKind(world.ItemOpMove)),
			ItemID:     incoming.CatalogID,
			Quantity:   incoming.Stack,
			SrcStorage: uint16(srcStorage),
			SrcSlot:    srcIndex,
			DstStorage: uint16(world.StorageEquippedItems),
			DstSlot:    slot,
		})
	}

	c.sendIPC(0, ipc.InventoryTransactionFinish{Sequence: seq, Unk1: 567, Unk2: 3584})
	c.sendIPC(0, ipc.GearSetEquipped{GearsetIndex: m.GearsetIndex})
	c.sendEquippedInventory()
	c.sendInformEquip()
	c.reclassifyByWeapon()
	c.sendPlayerStatus()
}
