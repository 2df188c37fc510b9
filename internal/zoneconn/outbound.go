package zoneconn

import (
	"math"

	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/actor"
	"github.com/kvatch/worldserver/internal/ipc"
	"github.com/kvatch/worldserver/internal/world"
)

// restedExpPlaceholderAmount stands in for world.IncrementRestedExp, which
// carries no Amount yet (§4.4.3 notes the real accrual rate is unmodeled).
// Rendering it here rather than widening the domain type keeps the tick
// loop's already-exercised message shape untouched.
const restedExpPlaceholderAmount = 1

// handleOutbound renders one world.FromServer fan-out message into the IPC
// segment(s) it corresponds to on the wire (§4.3 "Outbound rendering").
func (c *Conn) handleOutbound(msg world.FromServer) {
	switch m := msg.(type) {
	case world.ActorSpawn:
		c.renderActorSpawn(m.Snapshot)

	case world.DeleteActor:
		if idx, ok := c.spawns.Lookup(m.ActorID); ok {
			c.spawns.Release(m.ActorID)
			c.sendIPC(0, ipc.DeleteActor{ActorID: uint32(m.ActorID), SpawnIndex: idx})
		} else if idx, ok := c.objects.Lookup(m.ActorID); ok {
			c.objects.Release(m.ActorID)
			c.sendIPC(0, ipc.DeleteActor{ActorID: uint32(m.ActorID), SpawnIndex: idx})
		}

	case world.ActorMove:
		c.sendIPC(0, ipc.ActorMove{
			ActorID:  uint32(m.Source),
			X:        m.Position.X,
			Y:        m.Position.Y,
			Z:        m.Position.Z,
			Rotation: m.Rotation,
		})

	case world.ChangeZone:
		c.spawns.Reset()
		c.objects.Reset()
		c.zoneID = m.ZoneID
		c.lastPos = m.Position
		c.lastRot = m.Rotation
		c.sendIPC(0, ipc.PrepareZoning{ZoneID: m.ZoneID})
		c.sendIPC(0, c.buildInitZone(m.ZoneID, m.ContentFinderConditionID, m.Weather, m.InitialLogin))
		c.sendInitialize(c.state.ActorID)
		c.sendIPC(0, ipc.ChangeZone{ZoneID: m.ZoneID, X: m.Position.X, Y: m.Position.Y, Z: m.Position.Z})
		c.sendSetItemLevel()
		c.sendIPC(0, ipc.ZoneLoadNotice{})
		c.sendIPC(0, ipc.ZoneLoadNotice{})
		// The destination zone's opening script gets its territory-enter
		// hook once the transition sequence is on the wire.
		c.applyScriptTasks(c.scripts.Events.CallEnterTerritory(
			actor.HandlerId{Type: actor.HandlerOpening, ContentID: uint32(m.ZoneID)},
			c.luaPlayer(),
		))

	case world.HaterList:
		entries, n := hateEntriesToWire(m.List)
		c.sendIPC(0, ipc.HaterList{ActorID: uint32(m.Target), Count: n, Entries: entries})

	case world.EnmityList:
		entries, n := hateEntriesToWire(m.List)
		c.sendIPC(0, ipc.EnmityList{TargetActorID: uint32(m.Target), Count: n, Entries: entries})

	case world.IncrementRestedExp:
		c.sendIPC(0, ipc.IncrementRestedExp{Amount: restedExpPlaceholderAmount})

	case world.ExecuteGimmickJump:
		c.sendIPC(0, ipc.ActorControlSelf{
			Category: actorControlGimmickJump,
			Param1:   math.Float32bits(m.To.X),
			Param2:   math.Float32bits(m.To.Y),
			Param3:   math.Float32bits(m.To.Z),
			Param4:   uint32(m.Kind),
		})

	case world.PlaySharedGroupTimeline:
		c.sendIPC(0, ipc.ActorControl{
			ActorID:  uint32(m.EObj),
			Category: actorControlSharedGroupTimeline,
			Param1:   m.Timeline,
		})

	case world.ActorControlEvent:
		if m.SelfOnly {
			c.sendIPC(0, ipc.ActorControlSelf{
				Category: controlEventCategory(m.Kind),
				Param1:   m.Params[0],
				Param2:   m.Params[1],
				Param3:   m.Params[2],
				Param4:   m.Params[3],
			})
		} else {
			c.sendIPC(0, ipc.ActorControl{
				ActorID:  uint32(m.Source),
				Category: controlEventCategory(m.Kind),
				Param1:   m.Params[0],
				Param2:   m.Params[1],
				Param3:   m.Params[2],
				Param4:   m.Params[3],
			})
		}

	case world.EnteredInstanceEntranceRange:
		c.sendIPC(0, ipc.EnteredInstanceEntranceRange{InstanceID: uint32(m.InstanceID)})

	case world.ConditionChanged:
		c.setCondition(m.Condition, m.Value)

	case world.UpdateHpMpTp:
		c.lastHP, c.lastMaxHP = m.HP, m.MaxHP
		c.lastMP, c.lastMaxMP = m.MP, m.MaxMP
		c.sendIPC(0, ipc.UpdateHpMpTp{HP: m.HP, MP: uint16(m.MP), TP: 0})

	case world.PartyUpdate:
		members, n := visibleEntriesToWire(m.Entries)
		c.sendIPC(0, ipc.PartyUpdate{MemberCount: n, Members: members})

	case world.PartyList:
		members, n := visibleEntriesToWire(m.Entries)
		c.sendIPC(0, ipc.PartyList{MemberCount: n, Members: members})

	case world.SetPartyChatChannel:
		c.sendIPC(0, ipc.SetPartyChatChannel{Channel: uint8(m.ChannelID)})

	case world.PartyInvite:
		c.pendingInviteFrom = m.SenderContentID
		c.sendIPC(0, ipc.ServerNoticeMessage{Message: "Party invite from " + m.SenderName})

	case world.RejoinPartyAfterDisconnect:
		c.rejoiningParty = true
		c.sendIPC(0, ipc.ServerNoticeMessage{Message: "Rejoined your party."})

	case world.StrategyBoardFanout:
		var data [ipc.StrategyBoardDataSize]byte
		copy(data[:], m.Board)
		if m.Realtime {
			c.sendIPC(0, ipc.StrategyBoardUpdate{Data: data})
		} else {
			c.sendIPC(0, ipc.ShareStrategyBoard{Data: data})
		}

	case world.ServerNoticeMessage:
		c.sendIPC(0, ipc.ServerNoticeMessage{Message: m.Text})

	default:
		c.log.Debug("unhandled outbound world message", zap.String("type", "unknown"))
	}
}

func (c *Conn) renderActorSpawn(a world.Actor) {
	switch a.Kind {
	case world.KindPlayer:
		idx, err := c.spawns.Allocate(a.ID)
		if err != nil {
			c.log.Warn("player spawn table full", zap.Error(err))
			return
		}
		c.sendIPC(0, ipc.PlayerSpawn{
			ActorID:    uint32(a.ID),
			SpawnIndex: idx,
			Name:       a.Common.Name,
			X:          a.Common.Position.X,
			Y:          a.Common.Position.Y,
			Z:          a.Common.Position.Z,
			Rotation:   a.Common.Rotation,
		})
	default:
		idx, err := c.objects.Allocate(a.ID)
		if err != nil {
			c.log.Warn("object spawn table full", zap.Error(err))
			return
		}
		c.sendIPC(0, ipc.NpcSpawn{
			ActorID:      uint32(a.ID),
			SpawnIndex:   idx,
			ObjectTypeID: a.ObjectType.ID,
			X:            a.Common.Position.X,
			Y:            a.Common.Position.Y,
			Z:            a.Common.Position.Z,
			Rotation:     a.Common.Rotation,
		})
	}
}

// ActorControl category constants used only by this connection's outbound
// rendering; they occupy a private range distinct from any client-trigger
// opcode so a gimmick-jump ack can never be mistaken for a forwarded
// ClientTrigger (§4.4.3).
const (
	actorControlGimmickJump         uint16 = 0x7001
	actorControlSharedGroupTimeline uint16 = 0x7002

	actorControlTeleportStart      uint16 = 0x7020
	actorControlSummonMinion       uint16 = 0x7021
	actorControlDespawnMinion      uint16 = 0x7022
	actorControlSetTarget          uint16 = 0x7023
	actorControlChangePose         uint16 = 0x7024
	actorControlEmote              uint16 = 0x7025
	actorControlToggleWeapon       uint16 = 0x7026
	actorControlPlaceWaymark       uint16 = 0x7027
	actorControlClearWaymark       uint16 = 0x7028
	actorControlClearAllWaymarks   uint16 = 0x7029
	actorControlApplyWaymarkPreset uint16 = 0x702A
)

// controlEventCategory maps a dispatched trigger's domain kind onto its
// wire ActorControl category.
func controlEventCategory(k world.ControlEventKind) uint16 {
	switch k {
	case world.ControlTeleportStart:
		return actorControlTeleportStart
	case world.ControlSummonMinion:
		return actorControlSummonMinion
	case world.ControlDespawnMinion:
		return actorControlDespawnMinion
	case world.ControlSetTarget:
		return actorControlSetTarget
	case world.ControlChangePose:
		return actorControlChangePose
	case world.ControlEmote:
		return actorControlEmote
	case world.ControlToggleWeapon:
		return actorControlToggleWeapon
	case world.ControlPlaceWaymark:
		return actorControlPlaceWaymark
	case world.ControlClearWaymark:
		return actorControlClearWaymark
	case world.ControlClearAllWaymarks:
		return actorControlClearAllWaymarks
	case world.ControlApplyWaymarkPreset:
		return actorControlApplyWaymarkPreset
	default:
		return 0
	}
}
