package scripting

import (
	"github.com/kvatch/worldserver/internal/actor"
	"github.com/kvatch/worldserver/internal/world"
)

// Task is one deferred mutation a script asked for. Scripts never touch
// PlayerData or the world task directly; they enqueue a Task on the
// LuaPlayer passed into the call, and the zone connection drains the
// queue once CallByParam returns (§4.5 "write-through a task queue").
type Task interface{ isScriptTask() }

// SetPosition warps the player without a zone change.
type SetPosition struct {
	Position world.Vec3
	Rotation float32
}

func (SetPosition) isScriptTask() {}

// ChangeTerritory asks the world to move the player into a different
// zone, optionally at an explicit exit position.
type ChangeTerritory struct {
	ZoneID       uint16
	ExitPosition *world.Vec3
	ExitRotation *float32
}

func (ChangeTerritory) isScriptTask() {}

// AddItem grants a quantity of an item, optionally suppressing the
// client inventory-update push (used for GM debug commands that rewrite
// multiple slots in one breath).
type AddItem struct {
	CatalogID        uint32
	Quantity         uint32
	SendClientUpdate bool
}

func (AddItem) isScriptTask() {}

// GiveEffect applies a status effect.
type GiveEffect struct {
	EffectID uint16
	Param    uint16
	Duration float32
}

func (GiveEffect) isScriptTask() {}

// FinishEvent pops the named event frame (§4.5 "finish_event pops it").
type FinishEvent struct {
	Handler actor.HandlerId
}

func (FinishEvent) isScriptTask() {}

// PlayScene asks the connection to render an EventScene IPC.
type PlayScene struct {
	Target  actor.ActorId
	Handler actor.HandlerId
	Scene   uint16
	Flags   uint32
	Params  []uint32
}

func (PlayScene) isScriptTask() {}

// Unlock flips an unlock bitmask bit (action, orchestrion roll, emote...).
type Unlock struct {
	ID uint32
}

func (Unlock) isScriptTask() {}

// Warp teleports via a registered warp id rather than a raw position.
type Warp struct {
	WarpID uint32
}

func (Warp) isScriptTask() {}

// BeginLogOut starts the graceful logout sequence.
type BeginLogOut struct{}

func (BeginLogOut) isScriptTask() {}

// ReloadScripts asks the host to run Registry.Reload, which replays each
// loaded event script's Init function; no Init.lua file is read.
type ReloadScripts struct{}

func (ReloadScripts) isScriptTask() {}

// SendMessage pushes a server notice line to the player's chat log.
type SendMessage struct {
	Text  string
	Param uint8
}

func (SendMessage) isScriptTask() {}

// ModifyCurrency adjusts a currency stack (gil and beyond).
type ModifyCurrency struct {
	CurrencyID       uint32
	Amount           int32
	SendClientUpdate bool
}

func (ModifyCurrency) isScriptTask() {}

// AddExp grants experience points toward the player's current class.
type AddExp struct {
	Amount int32
}

func (AddExp) isScriptTask() {}

// StartEvent pushes a fresh event frame (§4.5 "pushes an event frame when
// start_event fires").
type StartEvent struct {
	Target   actor.ActorId
	Handler  actor.HandlerId
	EventArg uint32
}

func (StartEvent) isScriptTask() {}
