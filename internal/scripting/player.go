package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/kvatch/worldserver/internal/actor"
	"github.com/kvatch/worldserver/internal/world"
)

const playerTypeName = "player"

// LuaPlayer is the capability exposed to scripts as the "player" argument
// of every entry point. It carries a read-only snapshot of the calling
// player plus a write-through task queue: every mutating method appends a
// Task instead of touching shared state (§4.5). The zone connection reads
// Tasks back out via Drain after the call returns.
type LuaPlayer struct {
	ActorID   actor.ActorId
	ContentID actor.ContentId
	Position  world.Vec3
	Rotation  float32
	GMRank    uint8
	Gil       int64

	Tasks []Task
}

func (p *LuaPlayer) push(t Task) { p.Tasks = append(p.Tasks, t) }

// Drain removes and returns every queued Task, leaving the player ready
// for its next script call.
func (p *LuaPlayer) Drain() []Task {
	t := p.Tasks
	p.Tasks = nil
	return t
}

var playerMethods = map[string]lua.LGFunction{
	"send_message": func(L *lua.LState) int {
		p := checkPlayer(L)
		text := L.CheckString(2)
		param := uint8(0)
		if L.GetTop() >= 3 {
			param = uint8(L.CheckNumber(3))
		}
		p.push(SendMessage{Text: text, Param: param})
		return 0
	},
	"gain_effect": func(L *lua.LState) int {
		p := checkPlayer(L)
		p.push(GiveEffect{
			EffectID: uint16(L.CheckNumber(2)),
			Param:    uint16(L.CheckNumber(3)),
			Duration: float32(L.CheckNumber(4)),
		})
		return 0
	},
	"set_position": func(L *lua.LState) int {
		p := checkPlayer(L)
		pos := world.Vec3{
			X: float32(L.CheckNumber(2)),
			Y: float32(L.CheckNumber(3)),
			Z: float32(L.CheckNumber(4)),
		}
		rot := float32(L.OptNumber(5, 0))
		p.push(SetPosition{Position: pos, Rotation: rot})
		return 0
	},
	"change_territory": func(L *lua.LState) int {
		p := checkPlayer(L)
		task := ChangeTerritory{ZoneID: uint16(L.CheckNumber(2))}
		if L.GetTop() >= 5 {
			pos := world.Vec3{
				X: float32(L.CheckNumber(3)),
				Y: float32(L.CheckNumber(4)),
				Z: float32(L.CheckNumber(5)),
			}
			task.ExitPosition = &pos
		}
		if L.GetTop() >= 6 {
			rot := float32(L.CheckNumber(6))
			task.ExitRotation = &rot
		}
		p.push(task)
		return 0
	},
	"add_item": func(L *lua.LState) int {
		p := checkPlayer(L)
		send := true
		if L.GetTop() >= 4 {
			send = L.CheckBool(4)
		}
		p.push(AddItem{
			CatalogID:        uint32(L.CheckNumber(2)),
			Quantity:         uint32(L.CheckNumber(3)),
			SendClientUpdate: send,
		})
		return 0
	},
	"add_exp": func(L *lua.LState) int {
		p := checkPlayer(L)
		p.push(AddExp{Amount: int32(L.CheckNumber(2))})
		return 0
	},
	"unlock": func(L *lua.LState) int {
		p := checkPlayer(L)
		p.push(Unlock{ID: uint32(L.CheckNumber(2))})
		return 0
	},
	"warp": func(L *lua.LState) int {
		p := checkPlayer(L)
		p.push(Warp{WarpID: uint32(L.CheckNumber(2))})
		return 0
	},
	"begin_log_out": func(L *lua.LState) int {
		checkPlayer(L).push(BeginLogOut{})
		return 0
	},
	"reload_scripts": func(L *lua.LState) int {
		checkPlayer(L).push(ReloadScripts{})
		return 0
	},
	"finish_event": func(L *lua.LState) int {
		p := checkPlayer(L)
		p.push(FinishEvent{Handler: actor.HandlerId{ContentID: uint32(L.CheckNumber(2))}})
		return 0
	},
	"start_event": func(L *lua.LState) int {
		p := checkPlayer(L)
		p.push(StartEvent{
			Target:   p.ActorID,
			Handler:  actor.HandlerId{ContentID: uint32(L.CheckNumber(2))},
			EventArg: uint32(L.OptNumber(3, 0)),
		})
		return 0
	},
	"play_scene": func(L *lua.LState) int {
		p := checkPlayer(L)
		scene := PlayScene{
			Target:  p.ActorID,
			Handler: actor.HandlerId{ContentID: uint32(L.CheckNumber(2))},
			Scene:   uint16(L.CheckNumber(3)),
			Flags:   uint32(L.OptNumber(4, 0)),
		}
		if params, ok := L.Get(5).(*lua.LTable); ok {
			params.ForEach(func(_, v lua.LValue) {
				scene.Params = append(scene.Params, uint32(lua.LVAsNumber(v)))
			})
		}
		p.push(scene)
		return 0
	},
	"modify_currency": func(L *lua.LState) int {
		p := checkPlayer(L)
		send := true
		if L.GetTop() >= 4 {
			send = L.CheckBool(4)
		}
		p.push(ModifyCurrency{
			CurrencyID:       uint32(L.CheckNumber(2)),
			Amount:           int32(L.CheckNumber(3)),
			SendClientUpdate: send,
		})
		return 0
	},
}

var playerFields = map[string]lua.LGFunction{
	"actor_id": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkPlayer(L).ActorID))
		return 1
	},
	"content_id": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkPlayer(L).ContentID))
		return 1
	},
	"gm_rank": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkPlayer(L).GMRank))
		return 1
	},
	"gil": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkPlayer(L).Gil))
		return 1
	},
	"position": func(L *lua.LState) int {
		p := checkPlayer(L)
		t := L.NewTable()
		t.RawSetString("x", lua.LNumber(p.Position.X))
		t.RawSetString("y", lua.LNumber(p.Position.Y))
		t.RawSetString("z", lua.LNumber(p.Position.Z))
		L.Push(t)
		return 1
	},
}

// registerPlayerType installs the player metatable once per LState. Field
// getters (gil, position, ...) are exposed as zero-arg methods
// (player:gil(), player:position()) alongside the mutating methods, all in
// one __index table.
func registerPlayerType(L *lua.LState) {
	index := L.NewTable()
	for name, fn := range playerMethods {
		L.SetField(index, name, L.NewFunction(fn))
	}
	for name, fn := range playerFields {
		L.SetField(index, name, L.NewFunction(fn))
	}
	mt := L.NewTypeMetatable(playerTypeName)
	L.SetField(mt, "__index", index)
}

func newLuaPlayer(L *lua.LState, p *LuaPlayer) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = p
	L.SetMetatable(ud, L.GetTypeMetatable(playerTypeName))
	return ud
}

func checkPlayer(L *lua.LState) *LuaPlayer {
	ud := L.CheckUserData(1)
	p, ok := ud.Value.(*LuaPlayer)
	if !ok {
		L.ArgError(1, "player expected")
	}
	return p
}
