package world

import "github.com/kvatch/worldserver/internal/actor"

// Storage names a container addressed by an ItemOperation (§4.3
// "src_storage"/"dst_storage"): the player's main inventory, one of the
// armoury chest categories, or a currency/special sentinel slot.
type Storage uint16

const (
	StorageInvalid Storage = iota
	StorageInventory0
	StorageInventory1
	StorageInventory2
	StorageInventory3
	StorageEquippedItems
	StorageArmouryMainHand
	StorageArmouryOffHand
	StorageArmouryHead
	StorageArmouryBody
	StorageArmouryHands
	StorageArmouryLegs
	StorageArmouryFeet
	StorageArmouryEarring
	StorageArmouryNecklace
	StorageArmouryBracelet
	StorageArmouryRings
	StorageArmourySoulCrystal
	// DiscardingItemSentinel is the dst_storage/dummy_container value an
	// InventoryTransaction carries on a discard (§4.3 example trace).
	DiscardingItemSentinel Storage = 0x2710
)

// MaxInventorySize bounds a single Inventory0-3 container's slot count.
const MaxInventorySize = 35

// EquippedWeaponSlot and EquippedSoulCrystalSlot are the two
// StorageEquippedItems container indices that trigger a class
// re-derivation and stat resend when touched by an ItemOperation (§4.3:
// "If source or destination slot is an equipped weapon (slot 0) or soul
// crystal (slot 13), re-derive class... and resend equipment/stats").
const (
	EquippedWeaponSlot      uint16 = 0
	EquippedSoulCrystalSlot uint16 = 13
)

// ItemOp names the mutation an ItemOperation requests (§4.3).
type ItemOp uint8

const (
	ItemOpMove ItemOp = iota
	ItemOpDiscard
	ItemOpMerge
	ItemOpSplit
)

// Slot is one addressable item position: (storage, container_index). A
// zero CatalogID means the slot is empty.
type Slot struct {
	CatalogID uint32
	Stack     uint32
}

func (s Slot) isEmpty() bool { return s.CatalogID == 0 }

// Inventory is a player's item storage, organized as a fixed set of
// containers each holding a flat array of slots (§3 PlayerData
// "inventory", §4.3 ItemOperation). Accessed only from the owning
// zone-connection task (or the world task's apply of a deferred result).
type Inventory struct {
	containers map[Storage][]Slot
}

// NewInventory creates the standard container set with MaxInventorySize
// slots per general-purpose Inventory0-3 container.
func NewInventory() *Inventory {
	inv := &Inventory{containers: make(map[Storage][]Slot)}
	for _, s := range []Storage{StorageInventory0, StorageInventory1, StorageInventory2, StorageInventory3} {
		inv.containers[s] = make([]Slot, MaxInventorySize)
	}
	inv.containers[StorageEquippedItems] = make([]Slot, 14)
	return inv
}

// Get reads one slot, returning the zero Slot if the container or index is
// out of range.
func (inv *Inventory) Get(storage Storage, index uint16) Slot {
	c := inv.containers[storage]
	if int(index) >= len(c) {
		return Slot{}
	}
	return c[index]
}

// Set writes one slot.
func (inv *Inventory) Set(storage Storage, index uint16, s Slot) {
	c := inv.containers[storage]
	if int(index) >= len(c) {
		return
	}
	c[index] = s
}

// ItemOperation is the client request to move, merge, split, or discard an
// item (§4.3).
type ItemOperation struct {
	Op ItemOp

	SrcStorage        Storage
	SrcContainerIndex uint16
	SrcStack          uint32
	SrcCatalogID      uint32

	DstStorage        Storage
	DstContainerIndex uint16
}

// TouchesEquippedSlot reports whether op reads or writes the equipped
// weapon or soul crystal slot, the trigger for a class re-derive +
// equipment/stat resend (§4.3).
func (op ItemOperation) TouchesEquippedSlot() bool {
	touches := func(storage Storage, index uint16) bool {
		return storage == StorageEquippedItems && (index == EquippedWeaponSlot || index == EquippedSoulCrystalSlot)
	}
	return touches(op.SrcStorage, op.SrcContainerIndex) || touches(op.DstStorage, op.DstContainerIndex)
}

// ItemTransaction is the synthetic InventoryTransaction the world emits
// after applying an ItemOperation (§4.3 example trace: discard produces a
// dst_storage=DiscardingItemSentinel, dst_container_index=0xFFFF record).
type ItemTransaction struct {
	Op ItemOp

	SrcStorage        Storage
	SrcContainerIndex uint16
	SrcStack          uint32
	SrcCatalogID      uint32

	DstActor          actor.ActorId // actor.Invalid for a discard
	DstStorage        Storage
	DstContainerIndex uint16
	DstStack          uint32
	DstCatalogID      uint32
}

// Apply mutates the inventory for op and returns the transaction record to
// broadcast, along with whether the operation touched an equipped weapon
// or soul crystal slot.
func (inv *Inventory) Apply(op ItemOperation) (ItemTransaction, bool) {
	reclassify := op.TouchesEquippedSlot()

	switch op.Op {
	case ItemOpDiscard:
		inv.Set(op.SrcStorage, op.SrcContainerIndex, Slot{})
		return ItemTransaction{
			Op:                ItemOpDiscard,
			SrcStorage:        op.SrcStorage,
			SrcContainerIndex: op.SrcContainerIndex,
			SrcStack:          op.SrcStack,
			SrcCatalogID:      op.SrcCatalogID,
			DstActor:          actor.Invalid,
			DstStorage:        DiscardingItemSentinel,
			DstContainerIndex: 0xFFFF,
		}, reclassify

	case ItemOpMove:
		src := inv.Get(op.SrcStorage, op.SrcContainerIndex)
		dst := inv.Get(op.DstStorage, op.DstContainerIndex)
		inv.Set(op.DstStorage, op.DstContainerIndex, src)
		inv.Set(op.SrcStorage, op.SrcContainerIndex, dst)
		return ItemTransaction{
			Op:                ItemOpMove,
			SrcStorage:        op.SrcStorage,
			SrcContainerIndex: op.SrcContainerIndex,
			SrcCatalogID:      src.CatalogID,
			SrcStack:          src.Stack,
			DstStorage:        op.DstStorage,
			DstContainerIndex: op.DstContainerIndex,
			DstCatalogID:      dst.CatalogID,
			DstStack:          dst.Stack,
		}, reclassify

	case ItemOpMerge:
		src := inv.Get(op.SrcStorage, op.SrcContainerIndex)
		dst := inv.Get(op.DstStorage, op.DstContainerIndex)
		if dst.CatalogID == src.CatalogID {
			dst.Stack += src.Stack
			inv.Set(op.DstStorage, op.DstContainerIndex, dst)
			inv.Set(op.SrcStorage, op.SrcContainerIndex, Slot{})
		}
		return ItemTransaction{
			Op:                ItemOpMerge,
			SrcStorage:        op.SrcStorage,
			SrcContainerIndex: op.SrcContainerIndex,
			DstStorage:        op.DstStorage,
			DstContainerIndex: op.DstContainerIndex,
			DstCatalogID:      dst.CatalogID,
			DstStack:          dst.Stack,
		}, reclassify

	case ItemOpSplit:
		src := inv.Get(op.SrcStorage, op.SrcContainerIndex)
		if src.Stack > op.SrcStack {
			src.Stack -= op.SrcStack
			inv.Set(op.SrcStorage, op.SrcContainerIndex, src)
			moved := Slot{CatalogID: src.CatalogID, Stack: op.SrcStack}
			inv.Set(op.DstStorage, op.DstContainerIndex, moved)
			return ItemTransaction{
				Op:                ItemOpSplit,
				SrcStorage:        op.SrcStorage,
				SrcContainerIndex: op.SrcContainerIndex,
				SrcCatalogID:      src.CatalogID,
				SrcStack:          src.Stack,
				DstStorage:        op.DstStorage,
				DstContainerIndex: op.DstContainerIndex,
				DstCatalogID:      moved.CatalogID,
				DstStack:          moved.Stack,
			}, reclassify
		}
	}
	return ItemTransaction{}, reclassify
}

// generalPurposeContainers is the search order Grant stacks or places a
// new item into: Inventory0-3, in slot order.
var generalPurposeContainers = [...]Storage{StorageInventory0, StorageInventory1, StorageInventory2, StorageInventory3}

// Grant adds quantity of catalogID to the first matching stack it finds
// across Inventory0-3, or the first empty slot if none match. It is used
// by scripted item grants (§4.5 AddItem), which address an item by
// catalog id rather than a slot the client already knows about.
func (inv *Inventory) Grant(catalogID, quantity uint32) ItemTransaction {
	for _, storage := range generalPurposeContainers {
		for i, s := range inv.containers[storage] {
			if s.CatalogID == catalogID {
				s.Stack += quantity
				inv.containers[storage][i] = s
				return ItemTransaction{Op: ItemOpMerge, DstStorage: storage, DstContainerIndex: uint16(i), DstCatalogID: catalogID, DstStack: s.Stack}
			}
		}
	}
	for _, storage := range generalPurposeContainers {
		for i, s := range inv.containers[storage] {
			if s.isEmpty() {
				slot := Slot{CatalogID: catalogID, Stack: quantity}
				inv.containers[storage][i] = slot
				return ItemTransaction{Op: ItemOpMove, DstStorage: storage, DstContainerIndex: uint16(i), DstCatalogID: catalogID, DstStack: quantity}
			}
		}
	}
	return ItemTransaction{}
}
