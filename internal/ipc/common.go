package ipc

// NameSize is the fixed width of an embedded display name field.
const NameSize = 32

// PartyMemberEntry is one row of a PartyUpdate/PartyList body.
type PartyMemberEntry struct {
	ContentID uint64
	Name      string
	ClassJob  uint8
	Level     uint8
	HPPercent uint8
	Online    bool
}

// PartyMemberEntrySize is the fixed on-wire size of one PartyMemberEntry.
const PartyMemberEntrySize = 8 + NameSize + 1 + 1 + 1 + 1

func (e PartyMemberEntry) encode(w *Writer) {
	w.WriteU64(e.ContentID)
	w.WriteFixedString(e.Name, NameSize)
	w.WriteU8(e.ClassJob)
	w.WriteU8(e.Level)
	w.WriteU8(e.HPPercent)
	w.WriteBool(e.Online)
}

func decodePartyMemberEntry(r *Reader) PartyMemberEntry {
	e := PartyMemberEntry{}
	e.ContentID = r.ReadU64()
	e.Name = r.ReadFixedString(NameSize)
	e.ClassJob = r.ReadU8()
	e.Level = r.ReadU8()
	e.HPPercent = r.ReadU8()
	e.Online = r.ReadBool()
	return e
}

// MaxPartyMembers mirrors the World Core party array capacity.
const MaxPartyMembers = 8

// HateEntry is one row of a HaterList/EnmityList body.
type HateEntry struct {
	ActorID uint32
	Amount  uint32
}

const HateEntrySize = 4 + 4

// MaxHateEntries bounds the fixed-size hate/enmity table carried per update.
const MaxHateEntries = 16

func (e HateEntry) encode(w *Writer) {
	w.WriteU32(e.ActorID)
	w.WriteU32(e.Amount)
}

func decodeHateEntry(r *Reader) HateEntry {
	return HateEntry{ActorID: r.ReadU32(), Amount: r.ReadU32()}
}

// MaxInventorySlots mirrors world.MaxInventorySize. ipc must not import
// world (see MaxPartyMembers above for the same layering constraint), so
// the capacity is duplicated here rather than shared.
const MaxInventorySlots = 35

// EquipSlotCount mirrors world's 14-slot equipped-items container; it
// bounds both EquipGearset's per-slot addressing and EquippedInventory's
// resend body.
const EquipSlotCount = 14

// InventoryItem is one (catalog id, stack) pair in a FullInventory or
// EquippedInventory body.
type InventoryItem struct {
	CatalogID uint32
	Stack     uint32
}

const InventoryItemSize = 4 + 4

func (e InventoryItem) encode(w *Writer) {
	w.WriteU32(e.CatalogID)
	w.WriteU32(e.Stack)
}

func decodeInventoryItem(r *Reader) InventoryItem {
	return InventoryItem{CatalogID: r.ReadU32(), Stack: r.ReadU32()}
}
