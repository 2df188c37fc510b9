package zoneconn

import (
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/actor"
	"github.com/kvatch/worldserver/internal/ipc"
	"github.com/kvatch/worldserver/internal/scripting"
)

// ActorControlSelf categories used to render script Tasks that have no
// dedicated wire opcode (§4.5's GiveEffect/Unlock/Warp/AddExp/
// ModifyCurrency), occupying the same private range as the gimmick-jump
// and shared-group-timeline categories in outbound.go.
const (
	actorControlGiveEffect     uint16 = 0x7010
	actorControlUnlock         uint16 = 0x7011
	actorControlWarp           uint16 = 0x7012
	actorControlAddExp         uint16 = 0x7013
	actorControlModifyCurrency uint16 = 0x7014
)

// luaPlayer snapshots this connection's current state into the capability
// passed to every script entry point (§4.5).
func (c *Conn) luaPlayer() *scripting.LuaPlayer {
	gil := int64(0)
	if c.pd != nil {
		gil = c.pd.Gil
	}
	gmRank := uint8(0)
	if c.pd != nil {
		gmRank = c.pd.GMRank
	}
	return &scripting.LuaPlayer{
		ActorID:   c.state.ActorID,
		ContentID: c.contentID(),
		Position:  c.lastPos,
		Rotation:  c.lastRot,
		GMRank:    gmRank,
		Gil:       gil,
	}
}

// applyScriptTasks drains the write-through task queue a script call left
// on player and performs the corresponding mutation/send, exactly the
// hand-off point §4.5 describes: "the zone connection reads Tasks back out
// via Drain after the call returns".
func (c *Conn) applyScriptTasks(tasks []scripting.Task) {
	for _, t := range tasks {
		switch task := t.(type) {
		case scripting.SendMessage:
			c.sendIPC(0, ipc.ServerNoticeMessage{Message: task.Text})

		case scripting.SetPosition:
			c.lastPos = task.Position
			c.lastRot = task.Rotation
			c.sendIPC(0, ipc.ActorMove{
				ActorID:  uint32(c.state.ActorID),
				X:        task.Position.X,
				Y:        task.Position.Y,
				Z:        task.Position.Z,
				Rotation: task.Rotation,
			})

		case scripting.ChangeTerritory:
			pos := c.lastPos
			rot := c.lastRot
			if task.ExitPosition != nil {
				pos = *task.ExitPosition
			}
			if task.ExitRotation != nil {
				rot = *task.ExitRotation
			}
			c.zoneID = task.ZoneID
			c.lastPos = pos
			c.lastRot = rot
			c.spawns.Reset()
			c.objects.Reset()
			c.sendIPC(0, ipc.PrepareZoning{ZoneID: task.ZoneID})
			c.sendIPC(0, c.buildInitZone(task.ZoneID, 0, 0, false))
			c.sendInitialize(c.state.ActorID)
			c.sendIPC(0, ipc.ChangeZone{ZoneID: task.ZoneID, X: pos.X, Y: pos.Y, Z: pos.Z})
			c.sendSetItemLevel()
			c.sendIPC(0, ipc.ZoneLoadNotice{})
			c.sendIPC(0, ipc.ZoneLoadNotice{})

		case scripting.AddItem:
			txn := c.inv.Grant(task.CatalogID, task.Quantity)
			if task.SendClientUpdate {
				seq := c.nextItemSequence()
				c.sendIPC(0, ipc.InventoryTransaction{
					Sequence:   seq,
					Operation:  uint16(itemOpToWireKind(txn.Op)),
					ItemID:     txn.DstCatalogID,
					Quantity:   txn.DstStack,
					DstStorage: uint16(txn.DstStorage),
					DstSlot:    txn.DstContainerIndex,
				})
				c.sendIPC(0, ipc.InventoryTransactionFinish{Sequence: seq})
			}

		case scripting.GiveEffect:
			c.sendIPC(0, ipc.ActorControlSelf{
				Category: actorControlGiveEffect,
				Param1:   uint32(task.EffectID),
				Param2:   uint32(task.Param),
				Param3:   math.Float32bits(task.Duration),
			})

		case scripting.Unlock:
			c.sendIPC(0, ipc.ActorControlSelf{Category: actorControlUnlock, Param1: task.ID})

		case scripting.Warp:
			c.sendIPC(0, ipc.ActorControlSelf{Category: actorControlWarp, Param1: task.WarpID})

		case scripting.AddExp:
			c.sendIPC(0, ipc.ActorControlSelf{Category: actorControlAddExp, Param1: uint32(task.Amount)})

		case scripting.ModifyCurrency:
			if c.pd != nil && task.CurrencyID == 1 {
				c.pd.Gil += int64(task.Amount)
			}
			if task.SendClientUpdate {
				c.sendIPC(0, ipc.ActorControlSelf{
					Category: actorControlModifyCurrency,
					Param1:   task.CurrencyID,
					Param2:   uint32(task.Amount),
				})
			}

		case scripting.BeginLogOut:
			c.disconnect(true)

		case scripting.ReloadScripts:
			c.scripts.Events.Reload()

		case scripting.StartEvent:
			c.eventStack = append(c.eventStack, task.Handler)
			c.runEventEntry(task.Handler, task.Target)

		case scripting.FinishEvent:
			c.popEventFrame(task.Handler)

		case scripting.PlayScene:
			var params [8]int32
			for i, p := range task.Params {
				if i >= len(params) {
					break
				}
				params[i] = int32(p)
			}
			c.sendIPC(0, ipc.EventScene{
				ActorID:    uint32(task.Target),
				HandlerID:  encodeHandlerID(task.Handler),
				SceneIndex: task.Scene,
				SceneFlags: uint16(task.Flags),
				Params:     params,
			})

		default:
			c.log.Debug("unhandled script task")
		}
	}
}

// runEventEntry calls onTalk for a freshly started event, the only entry
// point a StartEvent task triggers directly; onEnterTerritory/
// onEnterTrigger are invoked from their own ClientTrigger handlers.
func (c *Conn) runEventEntry(handler actor.HandlerId, target actor.ActorId) {
	player := c.luaPlayer()
	c.applyScriptTasks(c.scripts.Events.CallTalk(handler, target, player))
}

// popEventFrame removes handler from the top of the event stack if
// present (§4.5 "finish_event pops it").
func (c *Conn) popEventFrame(handler actor.HandlerId) {
	for i := len(c.eventStack) - 1; i >= 0; i-- {
		if c.eventStack[i] == handler {
			c.eventStack = append(c.eventStack[:i], c.eventStack[i+1:]...)
			return
		}
	}
}

func (c *Conn) topEventFrame() (actor.HandlerId, bool) {
	if len(c.eventStack) == 0 {
		return actor.HandlerId{}, false
	}
	return c.eventStack[len(c.eventStack)-1], true
}

// encodeHandlerID packs a HandlerId onto the wire as (type << 24 |
// content id); the type namespace is small (§3's eight HandlerType
// values) so 24 bits is ample room for content ids.
func encodeHandlerID(h actor.HandlerId) uint32 {
	return uint32(h.Type)<<24 | (h.ContentID & 0x00FFFFFF)
}

func decodeHandlerID(wire uint32) actor.HandlerId {
	return actor.HandlerId{Type: actor.HandlerType(wire >> 24), ContentID: wire & 0x00FFFFFF}
}

// handleGMCommand dispatches a client-issued GM command script. The wire
// command name is the command's numeric id in decimal text; a richer
// name-to-id sheet lookup belongs to the external game-data asset this
// core does not implement (§1).
func (c *Conn) handleGMCommand(m ipc.GMCommand) {
	id, err := strconv.ParseUint(m.Command, 10, 32)
	if err != nil {
		c.log.Warn("gm command name is not a numeric id", zap.String("command", m.Command))
		return
	}
	player := c.luaPlayer()
	args := [4]uint32{uint32(m.Arg0), uint32(m.Arg1), uint32(m.Arg2)}
	c.applyScriptTasks(c.scripts.CallCommand(scripting.KindGMCommand, uint32(id), player, args))
}

// handleChatCommand dispatches a "!"-prefixed chat line to the plain
// command namespace (distinct from the GM-command IPC message, which
// carries its own rank check). On a miss it falls through to the Global
// script's onUnknownCommandError (§4.3 "try the Lua command table; on
// miss, try the built-in command handler; on miss, invoke
// onUnknownCommandError"). This core has no built-in command handler of
// its own — the name-to-id resolution table that step would consult is
// part of the external asset sheet library (§1) — so a miss on the
// scripted table goes straight to the Global fallback.
func (c *Conn) handleChatCommand(text string) {
	player := c.luaPlayer()
	fields := splitCommandLine(text[1:])
	if len(fields) == 0 {
		c.applyScriptTasks(c.scripts.CallUnknownCommand(text, player))
		return
	}
	id, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil || !c.scripts.HasCommand(scripting.KindCommand, uint32(id)) {
		c.applyScriptTasks(c.scripts.CallUnknownCommand(text, player))
		return
	}
	var args [4]uint32
	for i := 1; i < len(fields) && i <= 4; i++ {
		if v, err := strconv.ParseUint(fields[i], 10, 32); err == nil {
			args[i-1] = uint32(v)
		}
	}
	c.applyScriptTasks(c.scripts.CallCommand(scripting.KindCommand, uint32(id), player, args))
}

func splitCommandLine(s string) []string {
	var fields []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}

// handleStartTalkEvent begins an event script against an NPC/object
// actor (§4.3, §4.5).
func (c *Conn) handleStartTalkEvent(m ipc.StartTalkEvent) {
	handler := decodeHandlerID(m.HandlerID)
	c.eventStack = append(c.eventStack, handler)
	c.runEventEntry(handler, actor.ActorId(m.ActorID))
}

// handleEventYield resumes the top-of-stack event script at the scene the
// client yielded from.
func (c *Conn) handleEventYield(m ipc.EventYieldHandler) {
	handler, ok := c.topEventFrame()
	if !ok {
		c.log.Debug("event yield with no active event", zap.Uint32("handler_id", m.HandlerID))
		return
	}
	results := make([]int32, len(m.Params))
	copy(results, m.Params[:])
	player := c.luaPlayer()
	c.applyScriptTasks(c.scripts.Events.CallYield(handler, m.Scene, 0, results, player))
}

// handleEventReturn ends the top-of-stack event script with its return
// values; the frame itself is popped only when the script calls
// finish_event, matching the original's explicit close (§4.5).
func (c *Conn) handleEventReturn(m ipc.EventReturnHandler4) {
	handler, ok := c.topEventFrame()
	if !ok {
		c.log.Debug("event return with no active event", zap.Uint32("handler_id", m.HandlerID))
		return
	}
	results := make([]int32, len(m.Params))
	copy(results, m.Params[:])
	player := c.luaPlayer()
	c.applyScriptTasks(c.scripts.Events.CallReturn(handler, m.Scene, results, player))
}
