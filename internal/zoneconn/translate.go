package zoneconn

import (
	"math"

	"github.com/kvatch/worldserver/internal/actor"
	"github.com/kvatch/worldserver/internal/ipc"
	"github.com/kvatch/worldserver/internal/world"
)

// triggerKindToWorld maps the wire TriggerKind onto its world.ClientTriggerKind
// counterpart. The two enums share values by name for every kind the world
// dispatches on; the remaining wire-only kinds (the server-issued gimmick
// jump ack, glamour plating, contents replay bounds) are either handled
// locally by handleClientTrigger or reported back with ok=false so the
// caller can log and drop them rather than forwarding garbage.
func triggerKindToWorld(k ipc.TriggerKind) (world.ClientTriggerKind, bool) {
	switch k {
	case ipc.TriggerTeleportQuery:
		return world.TriggerTeleportQuery, true
	case ipc.TriggerSummonMinion:
		return world.TriggerSummonMinion, true
	case ipc.TriggerDespawnMinion:
		return world.TriggerDespawnMinion, true
	case ipc.TriggerSetTarget:
		return world.TriggerSetTarget, true
	case ipc.TriggerChangePose:
		return world.TriggerChangePose, true
	case ipc.TriggerEmote:
		return world.TriggerEmote, true
	case ipc.TriggerToggleWeapon:
		return world.TriggerToggleWeapon, true
	case ipc.TriggerManuallyRemoveEffect:
		return world.TriggerManuallyRemoveEffect, true
	case ipc.TriggerPlaceWaymark:
		return world.TriggerPlaceWaymark, true
	case ipc.TriggerClearWaymark:
		return world.TriggerClearWaymark, true
	case ipc.TriggerClearAllWaymarks:
		return world.TriggerClearAllWaymarks, true
	case ipc.TriggerApplyWaymarkPreset:
		return world.TriggerApplyWaymarkPreset, true
	case ipc.TriggerGimmickJumpLanded:
		return world.TriggerGimmickJumpLanded, true
	default:
		return 0, false
	}
}

// buildClientTrigger fills in the world.ClientTrigger sub-fields the kind
// cares about from the wire message's generic Param1-4 slots.
func buildClientTrigger(from actor.ClientId, actorID actor.ActorId, kind world.ClientTriggerKind, m ipc.ClientTrigger) world.ClientTrigger {
	t := world.ClientTrigger{FromClient: from, ActorID: actorID, Kind: kind}
	switch kind {
	case world.TriggerTeleportQuery:
		t.AetheryteID = m.Param1
	case world.TriggerSummonMinion, world.TriggerDespawnMinion:
		t.MinionID = m.Param1
	case world.TriggerSetTarget:
		t.TargetID = actor.ActorId(m.Param1)
	case world.TriggerChangePose:
		t.PoseID = uint8(m.Param1)
	case world.TriggerEmote:
		t.EmoteID = m.Param1
	case world.TriggerManuallyRemoveEffect:
		t.EffectID = uint16(m.Param1)
		t.EffectSource = actor.ActorId(m.Param2)
	case world.TriggerPlaceWaymark:
		t.WaymarkID = uint8(m.Param1)
		t.WaymarkPos = world.Vec3{
			X: math.Float32frombits(m.Param2),
			Y: math.Float32frombits(m.Param3),
			Z: math.Float32frombits(m.Param4),
		}
	case world.TriggerClearWaymark:
		t.WaymarkID = uint8(m.Param1)
	case world.TriggerApplyWaymarkPreset:
		t.PresetID = uint8(m.Param1)
	}
	return t
}

// itemOpKindToWorld translates the wire ItemOpKind to world.ItemOp by name:
// Merge and Split swap numeric positions between the two enums, so a raw
// cast would silently corrupt every merge/split request.
func itemOpKindToWorld(k ipc.ItemOpKind) world.ItemOp {
	switch k {
	case ipc.ItemOpMove:
		return world.ItemOpMove
	case ipc.ItemOpDiscard:
		return world.ItemOpDiscard
	case ipc.ItemOpSplit:
		return world.ItemOpSplit
	case ipc.ItemOpMerge:
		return world.ItemOpMerge
	default:
		return world.ItemOpMove
	}
}

// itemOpToWireKind is the inverse of itemOpKindToWorld, used when rendering
// an applied transaction's Operation back onto the wire.
func itemOpToWireKind(op world.ItemOp) ipc.ItemOpKind {
	switch op {
	case world.ItemOpMove:
		return ipc.ItemOpMove
	case world.ItemOpDiscard:
		return ipc.ItemOpDiscard
	case world.ItemOpSplit:
		return ipc.ItemOpSplit
	case world.ItemOpMerge:
		return ipc.ItemOpMerge
	default:
		return ipc.ItemOpMove
	}
}

// hateEntriesToWire packs a domain hate list into the fixed-size wire array,
// translating world.HateEntry's Hater field onto ipc.HateEntry's ActorID by
// name and truncating to the wire's fixed capacity.
func hateEntriesToWire(list []world.HateEntry) ([ipc.MaxHateEntries]ipc.HateEntry, uint8) {
	var out [ipc.MaxHateEntries]ipc.HateEntry
	n := len(list)
	if n > ipc.MaxHateEntries {
		n = ipc.MaxHateEntries
	}
	for i := 0; i < n; i++ {
		out[i] = ipc.HateEntry{ActorID: uint32(list[i].Hater), Amount: list[i].Amount}
	}
	return out, uint8(n)
}

// visibleEntriesToWire packs a party roster snapshot into the wire's
// fixed-size member array, deriving HPPercent from HP/MaxHP and Online
// from whether the member currently has a live actor id.
func visibleEntriesToWire(entries []world.VisibleEntry) ([ipc.MaxPartyMembers]ipc.PartyMemberEntry, uint8) {
	var out [ipc.MaxPartyMembers]ipc.PartyMemberEntry
	n := len(entries)
	if n > ipc.MaxPartyMembers {
		n = ipc.MaxPartyMembers
	}
	for i := 0; i < n; i++ {
		e := entries[i]
		pct := uint8(0)
		if e.MaxHP > 0 {
			pct = uint8(uint64(e.HP) * 100 / uint64(e.MaxHP))
		}
		out[i] = ipc.PartyMemberEntry{
			ContentID: uint64(e.ContentID),
			Name:      e.Name,
			ClassJob:  e.ClassJob,
			HPPercent: pct,
			Online:    e.ActorID.IsValid(),
		}
	}
	return out, uint8(n)
}
