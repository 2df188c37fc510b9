package scripting

import (
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/actor"
)

// eventDirs maps a HandlerType to the directory its scripts live under,
// named "<content id>.lua" (e.g. events/quest/100.lua).
var eventDirs = map[actor.HandlerType]string{
	actor.HandlerQuest:            "quest",
	actor.HandlerOpening:          "opening",
	actor.HandlerAetheryte:        "aetheryte",
	actor.HandlerCustomTalk:       "customtalk",
	actor.HandlerInstanceDirector: "instance",
	actor.HandlerGimmickRect:      "gimmick",
	actor.HandlerWarp:             "warp",
	actor.HandlerDefaultTalk:      "defaulttalk",
}

// eventScript is one HandlerId's dedicated VM, loaded once at registry
// construction — grounded on original_source's LuaEventHandler::new,
// which gives every event script its own Lua instance with EVENT_ID and
// GAME_DATA injected at load time rather than per call.
type eventScript struct {
	vm   *lua.LState
	path string
}

// Registry loads and dispatches the event scripts keyed by HandlerId
// (§4.5 "one per HandlerId"): onTalk, onEnterTerritory, onEnterTrigger,
// onYield, onReturn, plus the director entry points. mu serializes
// access across connection goroutines and the director dispatcher; each
// invocation runs to completion under it.
type Registry struct {
	mu         sync.Mutex
	scriptsDir string
	gameData   *GameData
	log        *zap.Logger
	scripts    map[actor.HandlerId]*eventScript
}

func newRegistry(scriptsDir string, gameData *GameData, log *zap.Logger) *Registry {
	return &Registry{
		scriptsDir: scriptsDir,
		gameData:   gameData,
		log:        log,
		scripts:    make(map[actor.HandlerId]*eventScript),
	}
}

// LoadDir walks events/<subdir for handlerType>/*.lua, loading one VM per
// file and keying it by the HandlerId its filename encodes.
func (r *Registry) LoadDir(handlerType actor.HandlerType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := eventDirs[handlerType]
	if !ok {
		return fmt.Errorf("scripting: no script directory mapped for handler type %d", handlerType)
	}
	dir := r.scriptsDir + "/events/" + sub
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
		path := dir + "/" + entry.Name()
		if err := r.load(actor.HandlerId{Type: handlerType, ContentID: id}, path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func (r *Registry) load(id actor.HandlerId, path string) error {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	registerPlayerType(vm)
	registerGameDataType(vm)
	vm.SetGlobal("GAME_DATA", newLuaGameData(vm, r.gameData))
	vm.SetGlobal("EVENT_ID", lua.LNumber(id.ContentID))

	if err := vm.DoFile(path); err != nil {
		vm.Close()
		return err
	}

	if old, ok := r.scripts[id]; ok {
		old.vm.Close()
	}
	r.scripts[id] = &eventScript{vm: vm, path: path}
	return nil
}

// Reload calls the global Init function, where one is defined, in every
// loaded event script VM, passing the handler's content id. It reads no
// Init.lua file and does not re-read any script from disk.
func (r *Registry) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.scripts {
		fn := s.vm.GetGlobal("Init")
		if fn == lua.LNil {
			continue
		}
		if err := s.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LNumber(id.ContentID)); err != nil {
			r.log.Warn("lua error reloading script", zap.String("path", s.path), zap.Error(err))
		}
	}
}

func (r *Registry) call(id actor.HandlerId, fnName string, args ...lua.LValue) {
	s, ok := r.scripts[id]
	if !ok {
		r.log.Debug("no event script for handler", zap.Uint8("type", uint8(id.Type)), zap.Uint32("id", id.ContentID))
		return
	}
	fn := s.vm.GetGlobal(fnName)
	if fn == lua.LNil {
		return
	}
	if err := s.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		r.log.Warn("lua runtime error", zap.String("path", s.path), zap.String("function", fnName), zap.Error(err))
	}
}

// CallTalk runs onTalk(target, player) (§4.5).
func (r *Registry) CallTalk(id actor.HandlerId, target actor.ActorId, player *LuaPlayer) []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scripts[id]
	if !ok {
		return nil
	}
	r.call(id, "onTalk", lua.LNumber(target), newLuaPlayer(s.vm, player))
	return player.Drain()
}

// CallEnterTerritory runs onEnterTerritory(player) (§4.5).
func (r *Registry) CallEnterTerritory(id actor.HandlerId, player *LuaPlayer) []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scripts[id]
	if !ok {
		return nil
	}
	r.call(id, "onEnterTerritory", newLuaPlayer(s.vm, player))
	return player.Drain()
}

// CallEnterTrigger runs onEnterTrigger(player, arg) (§4.5).
func (r *Registry) CallEnterTrigger(id actor.HandlerId, player *LuaPlayer, arg uint32) []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scripts[id]
	if !ok {
		return nil
	}
	r.call(id, "onEnterTrigger", newLuaPlayer(s.vm, player), lua.LNumber(arg))
	return player.Drain()
}

// CallYield runs onYield(scene, yieldId, results, player); yields are
// routed to the top event frame by the caller (§4.5).
func (r *Registry) CallYield(id actor.HandlerId, scene uint16, yieldID uint8, results []int32, player *LuaPlayer) []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scripts[id]
	if !ok {
		return nil
	}
	r.call(id, "onYield", lua.LNumber(scene), lua.LNumber(yieldID), resultsTable(s.vm, results), newLuaPlayer(s.vm, player))
	return player.Drain()
}

// CallReturn runs onReturn(scene, results, player); finish_event pops the
// frame afterward (§4.5).
func (r *Registry) CallReturn(id actor.HandlerId, scene uint16, results []int32, player *LuaPlayer) []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scripts[id]
	if !ok {
		return nil
	}
	r.call(id, "onReturn", lua.LNumber(scene), resultsTable(s.vm, results), newLuaPlayer(s.vm, player))
	return player.Drain()
}

// CallDirectorSetup runs onSetup() for an instance director script, fired
// once when its instance is created. Directors run with no player
// capability: they own instance state, not a connection.
func (r *Registry) CallDirectorSetup(id actor.HandlerId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.call(id, "onSetup")
}

// CallDirectorUpdate runs onUpdate(elapsed) for an instance director
// script, fired once per world tick while the instance lives.
func (r *Registry) CallDirectorUpdate(id actor.HandlerId, elapsed float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.call(id, "onUpdate", lua.LNumber(elapsed))
}

func resultsTable(vm *lua.LState, results []int32) *lua.LTable {
	t := vm.NewTable()
	for i, v := range results {
		t.RawSetInt(i+1, lua.LNumber(v))
	}
	return t
}

func (r *Registry) close() {
	for _, s := range r.scripts {
		s.vm.Close()
	}
}
