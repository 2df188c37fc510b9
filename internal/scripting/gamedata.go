package scripting

import (
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/kvatch/worldserver/internal/asset"
)

const gameDataTypeName = "game_data"

// GameData is the asset accessor exposed to scripts as the GAME_DATA
// global (§4.5 "asset accessors to the external sheet library"). It is a
// thin wrapper over an asset.Resource; the actual Excel-style sheet
// format is external (§1), so rows here are read as plain
// "id,value" CSV lines, one sheet per file under sheets/.
type GameData struct {
	res asset.Resource
}

func NewGameData(res asset.Resource) *GameData {
	return &GameData{res: res}
}

// sheetValue looks up the value column of the row whose id column matches
// id in sheets/<sheet>.csv.
func (g *GameData) sheetValue(sheet string, id uint32) (string, bool) {
	b, ok := g.res.Read("sheets/" + sheet + ".csv")
	if !ok {
		return "", false
	}
	target := strconv.FormatUint(uint64(id), 10)
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimRight(line, "\r")
		col, val, found := strings.Cut(line, ",")
		if found && col == target {
			return val, true
		}
	}
	return "", false
}

func (g *GameData) AetheryteName(id uint32) (string, bool)  { return g.sheetValue("aetheryte", id) }
func (g *GameData) OpeningName(id uint32) (string, bool)    { return g.sheetValue("opening", id) }
func (g *GameData) CustomTalkName(id uint32) (string, bool) { return g.sheetValue("customtalk", id) }

// ItemClassJob resolves the classjob a weapon or soul crystal catalog id
// equips the wearer into (§4.3 "re-derive class from the equipped
// weapon/soul crystal"), read from sheets/item_classjob.csv.
func (g *GameData) ItemClassJob(catalogID uint32) (uint8, bool) {
	v, ok := g.sheetValue("item_classjob", catalogID)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(n), true
}

var gameDataMethods = map[string]lua.LGFunction{
	"aetheryte_name": func(L *lua.LState) int {
		g := checkGameData(L)
		name, ok := g.AetheryteName(uint32(L.CheckNumber(2)))
		return pushOptString(L, name, ok)
	},
	"opening_name": func(L *lua.LState) int {
		g := checkGameData(L)
		name, ok := g.OpeningName(uint32(L.CheckNumber(2)))
		return pushOptString(L, name, ok)
	},
	"custom_talk_name": func(L *lua.LState) int {
		g := checkGameData(L)
		name, ok := g.CustomTalkName(uint32(L.CheckNumber(2)))
		return pushOptString(L, name, ok)
	},
}

func pushOptString(L *lua.LState, s string, ok bool) int {
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(s))
	return 1
}

func registerGameDataType(L *lua.LState) {
	index := L.NewTable()
	for name, fn := range gameDataMethods {
		L.SetField(index, name, L.NewFunction(fn))
	}
	mt := L.NewTypeMetatable(gameDataTypeName)
	L.SetField(mt, "__index", index)
}

func newLuaGameData(L *lua.LState, g *GameData) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = g
	L.SetMetatable(ud, L.GetTypeMetatable(gameDataTypeName))
	return ud
}

func checkGameData(L *lua.LState) *GameData {
	ud := L.CheckUserData(1)
	g, ok := ud.Value.(*GameData)
	if !ok {
		L.ArgError(1, "game_data expected")
	}
	return g
}
