package zoneconn

import (
	"strconv"

	"github.com/kvatch/worldserver/internal/frame"
	"github.com/kvatch/worldserver/internal/ipc"
	"github.com/kvatch/worldserver/internal/world"
)

// actorControlSetItemLevel is the ActorControlSelf category the item-level
// display value rides on after InitZone/ChangeZone and after a gearset
// swap (§4.3 "ActorControlSelf(SetItemLevel)"), occupying the same private
// range as the other ActorControl categories in outbound.go/script.go.
const actorControlSetItemLevel uint16 = 0x7003

// itemLevelPlaceholder stands in for a real item-level sheet lookup, which
// this core does not model (§1 external asset sheets); analogous to
// restedExpPlaceholderAmount in outbound.go.
const itemLevelPlaceholder uint32 = 1

// generalPurposeStorages is the fixed container order a FullInventory
// login resend walks (§4.3 "send the full inventory").
var generalPurposeStorages = [...]world.Storage{
	world.StorageInventory0,
	world.StorageInventory1,
	world.StorageInventory2,
	world.StorageInventory3,
}

// classJobKey is the decimal-string key PlayerData.ClassLevels/ClassExp
// are addressed by; nothing else in this tree establishes a different
// convention for these maps.
func classJobKey(id uint8) string {
	return strconv.Itoa(int(id))
}

// zoneInitFlags derives InitZone's flag word for a login or zone change.
// Flying and the server bar are both enabled by default; only the
// initial-login bit varies by call site (§4.1, §4.3).
func zoneInitFlags(initialLogin bool) uint32 {
	flags := ipc.InitZoneEnableFlying | ipc.InitZoneHideServer
	if initialLogin {
		flags |= ipc.InitZoneInitialLogin
	}
	return flags
}

// buildInitZone renders the InitZone body and, when c.obfuscationMode is
// active, reseeds c.scrambler from the same three seed values placed on
// the wire so the client's cipher state tracks the server's across a zone
// change.
func (c *Conn) buildInitZone(zoneID, contentFinderConditionID, weather uint16, initialLogin bool) ipc.InitZone {
	seed1 := uint32(c.id)
	seed2 := uint32(zoneID) ^ uint32(c.serverID)<<16
	seed3 := uint32(c.obfuscationMode)

	if c.obfuscationMode != 0 {
		c.scrambler = frame.NewScrambler(seed1, seed2, seed3)
	}

	return ipc.InitZone{
		ZoneID:                   zoneID,
		WeatherID:                weather,
		ContentFinderConditionID: contentFinderConditionID,
		Flags:                    zoneInitFlags(initialLogin),
		ObfuscationMode:          uint8(c.obfuscationMode),
		Seed1:                    seed1,
		Seed2:                    seed2,
		Seed3:                    seed3,
	}
}

// sendSetItemLevel renders the item-level display ActorControlSelf sent
// after every InitZone/ChangeZone and gearset swap.
func (c *Conn) sendSetItemLevel() {
	c.sendIPC(0, ipc.ActorControlSelf{
		Category: actorControlSetItemLevel,
		Param1:   itemLevelPlaceholder,
	})
}

// sendFullInventory resends every general-purpose container in full, the
// login-hello step between InitResponse and the equipped-inventory resend
// (§4.3).
func (c *Conn) sendFullInventory() {
	for _, storage := range generalPurposeStorages {
		var items [ipc.MaxInventorySlots]ipc.InventoryItem
		for i := range items {
			slot := c.inv.Get(storage, uint16(i))
			items[i] = ipc.InventoryItem{CatalogID: slot.CatalogID, Stack: slot.Stack}
		}
		c.sendIPC(0, ipc.FullInventory{Storage: uint16(storage), Items: items})
	}
}

// sendEquippedInventory resends the 14 equipped-gear slots, sent at login
// and again after a gearset swap (§4.3).
func (c *Conn) sendEquippedInventory() {
	var items [ipc.EquipSlotCount]ipc.InventoryItem
	for i := range items {
		slot := c.inv.Get(world.StorageEquippedItems, uint16(i))
		items[i] = ipc.InventoryItem{CatalogID: slot.CatalogID, Stack: slot.Stack}
	}
	c.sendIPC(0, ipc.EquippedInventory{Items: items})
}

// sendInformEquip broadcasts the connection's own actor's equipment
// models. No item->model sheet is modeled (§1), so the model ids simply
// mirror the equipped catalog ids, the same simplification
// restedExpPlaceholderAmount makes for rested exp accrual.
func (c *Conn) sendInformEquip() {
	var models [10]uint32
	for i := range models {
		models[i] = c.inv.Get(world.StorageEquippedItems, uint16(i)).CatalogID
	}
	c.sendIPC(0, ipc.InformEquip{ActorID: uint32(c.state.ActorID), ModelIDs: models})
}

// sendPlayerStatus resends the connection's class/level/resource snapshot
// (§4.3 "send ... stats, class info").
func (c *Conn) sendPlayerStatus() {
	if c.pd == nil {
		return
	}
	key := classJobKey(c.pd.CurrentClassJob)
	c.sendIPC(0, ipc.PlayerStatus{
		ContentID: uint64(c.pd.ContentID),
		Name:      c.pd.Name,
		ClassJob:  c.pd.CurrentClassJob,
		Level:     c.pd.ClassLevels[key],
		CurHP:     c.lastHP,
		MaxHP:     c.lastMaxHP,
		CurMP:     c.lastMP,
		MaxMP:     c.lastMaxMP,
		CurExp:    c.pd.ClassExp[key],
		GMRank:    c.pd.GMRank,
	})
}

// reclassifyByWeapon re-derives the current class/job from whatever is now
// equipped in the weapon slot, via the item_classjob sheet lookup (§4.3
// "If source or destination slot is an equipped weapon ... re-derive
// class"). A no-op if no game-data engine is wired or the catalog id isn't
// in the sheet.
func (c *Conn) reclassifyByWeapon() {
	if c.scripts == nil || c.pd == nil {
		return
	}
	weapon := c.inv.Get(world.StorageEquippedItems, world.EquippedWeaponSlot)
	if weapon.CatalogID == 0 {
		return
	}
	classJob, ok := c.scripts.GameData().ItemClassJob(weapon.CatalogID)
	if !ok {
		return
	}
	c.pd.CurrentClassJob = classJob
}
