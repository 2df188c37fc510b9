// Package scripting hosts the embedded gopher-lua VM that drives event,
// command, and effect scripts (§4.5). It is grounded on the teacher's
// internal/scripting/engine.go calling convention (CallByParam with
// Protect: true, errors logged and swallowed rather than propagated) and
// on original_source/servers/world/src/events/lua.rs's per-event-script
// VM lifecycle and original_source/src/world/zone_connection.rs's
// run_gm_command required_rank check, both translated into idiomatic Go.
package scripting

import (
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/asset"
)

// CommandKind distinguishes the three id-keyed script namespaces of §4.5
// ("Command/GM-command/effect scripts: one script per command or effect
// id").
type CommandKind uint8

const (
	KindCommand CommandKind = iota
	KindGMCommand
	KindEffect
)

func (k CommandKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindGMCommand:
		return "gm_command"
	case KindEffect:
		return "effect"
	default:
		return "unknown"
	}
}

type commandKey struct {
	kind CommandKind
	id   uint32
}

// Engine owns the command/GM-command/effect VM (single shared LState,
// scripts re-executed fresh on every call so required_rank can never
// leak between invocations — see CallCommand) plus the Registry of
// per-HandlerId event scripts. Connection goroutines and the director
// dispatcher share one Engine; mu serializes calls into the shared VM,
// held only for the duration of one script invocation.
type Engine struct {
	mu       sync.Mutex
	vm       *lua.LState
	log      *zap.Logger
	gameData *GameData

	commandPaths map[commandKey]string

	// global is the always-loaded Global.lua VM exposing the handful of
	// catch-all entry points that belong to no single HandlerId or
	// command id, chiefly onUnknownCommandError (§4.3 "on miss, invoke
	// onUnknownCommandError in the Global script").
	global *lua.LState

	Events *Registry
}

// NewEngine opens the shared command/effect VM and an empty event
// registry. scriptsDir is the root scripts directory; commands live
// under commands/, gm_commands/, and effects/, each file named
// "<id>.lua". Global.lua at the root of scriptsDir is optional.
func NewEngine(scriptsDir string, res asset.Resource, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	registerPlayerType(vm)

	gameData := NewGameData(res)
	registerGameDataType(vm)
	vm.SetGlobal("GAME_DATA", newLuaGameData(vm, gameData))

	e := &Engine{
		vm:           vm,
		log:          log,
		gameData:     gameData,
		commandPaths: make(map[commandKey]string),
		Events:       newRegistry(scriptsDir, gameData, log),
	}

	for _, kind := range []CommandKind{KindCommand, KindGMCommand, KindEffect} {
		if err := e.indexCommandDir(scriptsDir, kind); err != nil {
			vm.Close()
			return nil, fmt.Errorf("index %s scripts: %w", kind, err)
		}
	}

	globalPath := scriptsDir + "/Global.lua"
	if _, err := os.Stat(globalPath); err == nil {
		gvm := lua.NewState(lua.Options{SkipOpenLibs: false})
		registerPlayerType(gvm)
		registerGameDataType(gvm)
		gvm.SetGlobal("GAME_DATA", newLuaGameData(gvm, gameData))
		if err := gvm.DoFile(globalPath); err != nil {
			gvm.Close()
			vm.Close()
			return nil, fmt.Errorf("load Global.lua: %w", err)
		}
		e.global = gvm
	}

	return e, nil
}

// GameData returns the asset accessor backing this engine's GAME_DATA
// global, for callers outside Lua that need the same sheet lookups (e.g.
// re-deriving classjob from an equipped weapon on gearset swap).
func (e *Engine) GameData() *GameData {
	return e.gameData
}

// HasCommand reports whether a script is registered for (kind, id),
// without running it — used to fall through to a built-in handler or the
// Global script's onUnknownCommandError before logging a miss (§4.3).
func (e *Engine) HasCommand(kind CommandKind, id uint32) bool {
	_, ok := e.commandPaths[commandKey{kind: kind, id: id}]
	return ok
}

// CallUnknownCommand invokes Global.lua's onUnknownCommandError(text,
// player), the terminal fallback after both the Lua command table and the
// built-in command handler miss (§4.3). A no-op if Global.lua wasn't
// present at startup.
func (e *Engine) CallUnknownCommand(text string, player *LuaPlayer) []Task {
	if e.global == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn := e.global.GetGlobal("onUnknownCommandError")
	if fn == lua.LNil {
		return nil
	}
	ud := newLuaPlayer(e.global, player)
	if err := e.global.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LString(text), ud); err != nil {
		e.log.Warn("lua runtime error", zap.String("function", "onUnknownCommandError"), zap.Error(err))
	}
	return player.Drain()
}

func (e *Engine) indexCommandDir(scriptsDir string, kind CommandKind) error {
	dir := scriptsDir + "/" + kind.String() + "s"
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := idFromFilename(entry.Name())
		if !ok {
			continue
		}
		e.commandPaths[commandKey{kind: kind, id: id}] = dir + "/" + entry.Name()
	}
	return nil
}

// CallCommand re-executes the script for (kind, id) fresh — grounded on
// run_gm_command's "reset state for future commands" rationale: the
// shared VM's required_rank/onCommand globals must never survive from one
// invocation into the next, so every call starts from a clean load rather
// than a cached function reference (§4.5 "required_rank global read-and-
// clear per call").
func (e *Engine) CallCommand(kind CommandKind, id uint32, player *LuaPlayer, args [4]uint32) []Task {
	path, ok := e.commandPaths[commandKey{kind: kind, id: id}]
	if !ok {
		e.log.Warn("unknown scripted command", zap.Stringer("kind", kind), zap.Uint32("id", id))
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.vm.DoFile(path); err != nil {
		e.log.Warn("lua syntax error loading command script", zap.String("path", path), zap.Error(err))
		return nil
	}
	defer func() {
		e.vm.SetGlobal("required_rank", lua.LNil)
		e.vm.SetGlobal("command_sender", lua.LNil)
	}()

	ud := newLuaPlayer(e.vm, player)

	rank := e.vm.GetGlobal("required_rank")
	if rank == lua.LNil {
		e.callOptional("onCommandRequiredRankMissingError", ud)
		return player.Drain()
	}

	if player.GMRank < uint8(lua.LVAsNumber(rank)) {
		e.callOptional("onCommandRequiredRankInsufficientError", ud)
		return player.Drain()
	}

	argTable := e.vm.NewTable()
	for i, a := range args {
		argTable.RawSetInt(i+1, lua.LNumber(a))
	}
	e.callOptional("onCommand", argTable, ud)
	return player.Drain()
}

func (e *Engine) callOptional(name string, args ...lua.LValue) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		e.log.Warn("lua runtime error", zap.String("function", name), zap.Error(err))
	}
}

// Close releases both VMs owned by this engine (the shared command VM and
// every loaded event script's VM).
func (e *Engine) Close() {
	e.Events.close()
	e.vm.Close()
	if e.global != nil {
		e.global.Close()
	}
}

func idFromFilename(name string) (uint32, bool) {
	base := name
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			base = base[:i]
			break
		}
	}
	var id uint32
	if len(base) == 0 {
		return 0, false
	}
	for _, c := range base {
		if c < '0' || c > '9' {
			return 0, false
		}
		id = id*10 + uint32(c-'0')
	}
	return id, true
}
