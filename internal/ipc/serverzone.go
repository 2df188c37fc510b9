package ipc

// This file implements the Zone -> Client variant bodies the World Core
// and Zone Connection Actor render in response to client requests and
// world-tick output (§4.3, §4.4).

// InitResponse acknowledges InitRequest with the allocated actor id.
type InitResponse struct {
	ActorID   uint32
	ContentID uint64
}

func (InitResponse) Opcode() Opcode  { return OpInitResponse }
func (m InitResponse) CalcSize() int { return 4 + 8 }
func (m InitResponse) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ActorID)
	w.WriteU64(m.ContentID)
	return w.Bytes()
}
func DecodeInitResponse(b []byte) (Message, error) {
	r := NewReader(b)
	return InitResponse{ActorID: r.ReadU32(), ContentID: r.ReadU64()}, nil
}

// ZoneLoaded confirms the zone is ready to receive FinishLoading.
type ZoneLoaded struct {
	ZoneID uint16
	Pad    uint16
}

func (ZoneLoaded) Opcode() Opcode  { return OpZoneLoaded }
func (m ZoneLoaded) CalcSize() int { return 2 + 2 }
func (m ZoneLoaded) Encode() []byte {
	w := NewWriter()
	w.WriteU16(m.ZoneID)
	w.WritePad(2)
	return w.Bytes()
}
func DecodeZoneLoaded(b []byte) (Message, error) {
	r := NewReader(b)
	m := ZoneLoaded{ZoneID: r.ReadU16()}
	r.Skip(2)
	return m, nil
}

// ActorMove broadcasts another actor's authoritative position to nearby
// viewers (§8 movement-broadcast scenario).
type ActorMove struct {
	ActorID  uint32
	X, Y, Z  float32
	Rotation float32
}

func (ActorMove) Opcode() Opcode  { return OpActorMove }
func (m ActorMove) CalcSize() int { return 4 + 4*4 }
func (m ActorMove) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ActorID)
	w.WriteF32(m.X)
	w.WriteF32(m.Y)
	w.WriteF32(m.Z)
	w.WriteF32(m.Rotation)
	return w.Bytes()
}
func DecodeActorMove(b []byte) (Message, error) {
	r := NewReader(b)
	m := ActorMove{ActorID: r.ReadU32()}
	m.X, m.Y, m.Z, m.Rotation = r.ReadF32(), r.ReadF32(), r.ReadF32(), r.ReadF32()
	return m, nil
}

// ActorControl delivers a targeted control event (status effect applied,
// animation, flag toggle) about another actor.
type ActorControl struct {
	ActorID  uint32
	Category uint16
	Pad      uint16
	Param1   uint32
	Param2   uint32
	Param3   uint32
	Param4   uint32
}

func (ActorControl) Opcode() Opcode  { return OpActorControl }
func (m ActorControl) CalcSize() int { return 4 + 2 + 2 + 4*4 }
func (m ActorControl) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ActorID)
	w.WriteU16(m.Category)
	w.WritePad(2)
	w.WriteU32(m.Param1)
	w.WriteU32(m.Param2)
	w.WriteU32(m.Param3)
	w.WriteU32(m.Param4)
	return w.Bytes()
}
func DecodeActorControl(b []byte) (Message, error) {
	r := NewReader(b)
	m := ActorControl{ActorID: r.ReadU32(), Category: r.ReadU16()}
	r.Skip(2)
	m.Param1, m.Param2, m.Param3, m.Param4 = r.ReadU32(), r.ReadU32(), r.ReadU32(), r.ReadU32()
	return m, nil
}

// ActorControlSelf is ActorControl addressed to the receiving client's own actor.
type ActorControlSelf struct {
	Category uint16
	Pad      uint16
	Param1   uint32
	Param2   uint32
	Param3   uint32
	Param4   uint32
}

func (ActorControlSelf) Opcode() Opcode  { return OpActorControlSelf }
func (m ActorControlSelf) CalcSize() int { return 2 + 2 + 4*4 }
func (m ActorControlSelf) Encode() []byte {
	w := NewWriter()
	w.WriteU16(m.Category)
	w.WritePad(2)
	w.WriteU32(m.Param1)
	w.WriteU32(m.Param2)
	w.WriteU32(m.Param3)
	w.WriteU32(m.Param4)
	return w.Bytes()
}
func DecodeActorControlSelf(b []byte) (Message, error) {
	r := NewReader(b)
	m := ActorControlSelf{Category: r.ReadU16()}
	r.Skip(2)
	m.Param1, m.Param2, m.Param3, m.Param4 = r.ReadU32(), r.ReadU32(), r.ReadU32(), r.ReadU32()
	return m, nil
}

// InventoryActionAck acknowledges receipt of an ItemOperation before the
// transaction body follows.
type InventoryActionAck struct {
	Sequence uint32
	Type     uint16
	Pad      uint16
}

func (InventoryActionAck) Opcode() Opcode  { return OpInventoryActionAck }
func (m InventoryActionAck) CalcSize() int { return 4 + 2 + 2 }
func (m InventoryActionAck) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.Sequence)
	w.WriteU16(m.Type)
	w.WritePad(2)
	return w.Bytes()
}
func DecodeInventoryActionAck(b []byte) (Message, error) {
	r := NewReader(b)
	m := InventoryActionAck{Sequence: r.ReadU32(), Type: r.ReadU16()}
	r.Skip(2)
	return m, nil
}

// InventoryTransaction describes one item movement resulting from an
// ItemOperation (§8 discard-item scenario). DstActor carries actor.Invalid
// on a discard, the on-wire counterpart of ItemTransaction.DstActor.
type InventoryTransaction struct {
	Sequence   uint32
	Operation  uint16
	Pad        uint16
	ItemID     uint32
	Quantity   uint32
	SrcStorage uint16
	SrcSlot    uint16
	DstStorage uint16
	DstSlot    uint16
	DstActor   uint32
}

func (InventoryTransaction) Opcode() Opcode  { return OpInventoryTransaction }
func (m InventoryTransaction) CalcSize() int { return 4 + 2 + 2 + 4 + 4 + 2 + 2 + 2 + 2 + 4 }
func (m InventoryTransaction) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.Sequence)
	w.WriteU16(m.Operation)
	w.WritePad(2)
	w.WriteU32(m.ItemID)
	w.WriteU32(m.Quantity)
	w.WriteU16(m.SrcStorage)
	w.WriteU16(m.SrcSlot)
	w.WriteU16(m.DstStorage)
	w.WriteU16(m.DstSlot)
	w.WriteU32(m.DstActor)
	return w.Bytes()
}
func DecodeInventoryTransaction(b []byte) (Message, error) {
	r := NewReader(b)
	m := InventoryTransaction{Sequence: r.ReadU32(), Operation: r.ReadU16()}
	r.Skip(2)
	m.ItemID = r.ReadU32()
	m.Quantity = r.ReadU32()
	m.SrcStorage, m.SrcSlot = r.ReadU16(), r.ReadU16()
	m.DstStorage, m.DstSlot = r.ReadU16(), r.ReadU16()
	m.DstActor = r.ReadU32()
	return m, nil
}

// InventoryTransactionFinish closes a batch of InventoryTransaction bodies.
// Unk1/Unk2 carry the two trailing values the real protocol fills in here
// (§8 discard scenario: 0x90/0x200; the EquipGearset sequence: 567/3584);
// neither is otherwise interpreted by this implementation.
type InventoryTransactionFinish struct {
	Sequence uint32
	Unk1     uint16
	Unk2     uint16
}

func (InventoryTransactionFinish) Opcode() Opcode  { return OpInventoryTransactionFinish }
func (m InventoryTransactionFinish) CalcSize() int { return 4 + 2 + 2 }
func (m InventoryTransactionFinish) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.Sequence)
	w.WriteU16(m.Unk1)
	w.WriteU16(m.Unk2)
	return w.Bytes()
}
func DecodeInventoryTransactionFinish(b []byte) (Message, error) {
	r := NewReader(b)
	return InventoryTransactionFinish{Sequence: r.ReadU32(), Unk1: r.ReadU16(), Unk2: r.ReadU16()}, nil
}

// GearSetEquipped confirms a gearset switch applied.
type GearSetEquipped struct {
	GearsetIndex uint8
	Pad          [3]byte
}

func (GearSetEquipped) Opcode() Opcode  { return OpGearSetEquipped }
func (m GearSetEquipped) CalcSize() int { return 1 + 3 }
func (m GearSetEquipped) Encode() []byte {
	w := NewWriter()
	w.WriteU8(m.GearsetIndex)
	w.WritePad(3)
	return w.Bytes()
}
func DecodeGearSetEquipped(b []byte) (Message, error) {
	r := NewReader(b)
	m := GearSetEquipped{GearsetIndex: r.ReadU8()}
	r.Skip(3)
	return m, nil
}

// PartyUpdate fans the fixed-capacity member table out to every member.
type PartyUpdate struct {
	MemberCount uint8
	Pad         [3]byte
	Members     [MaxPartyMembers]PartyMemberEntry
}

func (PartyUpdate) Opcode() Opcode  { return OpPartyUpdate }
func (m PartyUpdate) CalcSize() int { return 1 + 3 + MaxPartyMembers*PartyMemberEntrySize }
func (m PartyUpdate) Encode() []byte {
	w := NewWriter()
	w.WriteU8(m.MemberCount)
	w.WritePad(3)
	for _, e := range m.Members {
		e.encode(w)
	}
	return w.Bytes()
}
func DecodePartyUpdate(b []byte) (Message, error) {
	r := NewReader(b)
	m := PartyUpdate{MemberCount: r.ReadU8()}
	r.Skip(3)
	for i := range m.Members {
		m.Members[i] = decodePartyMemberEntry(r)
	}
	return m, nil
}

// PartyList is the full roster snapshot sent on join/leader-change.
type PartyList struct {
	MemberCount uint8
	Pad         [3]byte
	Members     [MaxPartyMembers]PartyMemberEntry
}

func (PartyList) Opcode() Opcode  { return OpPartyList }
func (m PartyList) CalcSize() int { return 1 + 3 + MaxPartyMembers*PartyMemberEntrySize }
func (m PartyList) Encode() []byte {
	w := NewWriter()
	w.WriteU8(m.MemberCount)
	w.WritePad(3)
	for _, e := range m.Members {
		e.encode(w)
	}
	return w.Bytes()
}
func DecodePartyList(b []byte) (Message, error) {
	r := NewReader(b)
	m := PartyList{MemberCount: r.ReadU8()}
	r.Skip(3)
	for i := range m.Members {
		m.Members[i] = decodePartyMemberEntry(r)
	}
	return m, nil
}

// Blacklist answers RequestBlacklist, echoing the request's sequence. The
// world server has no persistent blacklist store, so Count is always 0
// (§9 open question).
type Blacklist struct {
	Sequence uint32
	Count    uint8
	Pad      [3]byte
}

func (Blacklist) Opcode() Opcode  { return OpBlacklist }
func (m Blacklist) CalcSize() int { return 4 + 1 + 3 }
func (m Blacklist) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.Sequence)
	w.WriteU8(m.Count)
	w.WritePad(3)
	return w.Bytes()
}
func DecodeBlacklist(b []byte) (Message, error) {
	r := NewReader(b)
	m := Blacklist{Sequence: r.ReadU32(), Count: r.ReadU8()}
	r.Skip(3)
	return m, nil
}

// PlayerSpawn introduces a player actor into a viewer's known set
// (§4.4.4 walked-in accounting).
type PlayerSpawn struct {
	ActorID    uint32
	SpawnIndex uint16
	Pad        uint16
	Name       string
	X, Y, Z    float32
	Rotation   float32
}

func (PlayerSpawn) Opcode() Opcode  { return OpPlayerSpawn }
func (m PlayerSpawn) CalcSize() int { return 4 + 2 + 2 + NameSize + 4*4 }
func (m PlayerSpawn) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ActorID)
	w.WriteU16(m.SpawnIndex)
	w.WritePad(2)
	w.WriteFixedString(m.Name, NameSize)
	w.WriteF32(m.X)
	w.WriteF32(m.Y)
	w.WriteF32(m.Z)
	w.WriteF32(m.Rotation)
	return w.Bytes()
}
func DecodePlayerSpawn(b []byte) (Message, error) {
	r := NewReader(b)
	m := PlayerSpawn{ActorID: r.ReadU32(), SpawnIndex: r.ReadU16()}
	r.Skip(2)
	m.Name = r.ReadFixedString(NameSize)
	m.X, m.Y, m.Z, m.Rotation = r.ReadF32(), r.ReadF32(), r.ReadF32(), r.ReadF32()
	return m, nil
}

// NpcSpawn introduces an NPC/object actor into a viewer's known set.
type NpcSpawn struct {
	ActorID      uint32
	SpawnIndex   uint16
	Pad          uint16
	ObjectTypeID uint32
	X, Y, Z      float32
	Rotation     float32
}

func (NpcSpawn) Opcode() Opcode  { return OpNpcSpawn }
func (m NpcSpawn) CalcSize() int { return 4 + 2 + 2 + 4 + 4*4 }
func (m NpcSpawn) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ActorID)
	w.WriteU16(m.SpawnIndex)
	w.WritePad(2)
	w.WriteU32(m.ObjectTypeID)
	w.WriteF32(m.X)
	w.WriteF32(m.Y)
	w.WriteF32(m.Z)
	w.WriteF32(m.Rotation)
	return w.Bytes()
}
func DecodeNpcSpawn(b []byte) (Message, error) {
	r := NewReader(b)
	m := NpcSpawn{ActorID: r.ReadU32(), SpawnIndex: r.ReadU16()}
	r.Skip(2)
	m.ObjectTypeID = r.ReadU32()
	m.X, m.Y, m.Z, m.Rotation = r.ReadF32(), r.ReadF32(), r.ReadF32(), r.ReadF32()
	return m, nil
}

// DeleteActor removes an actor from a viewer's known set and frees its
// per-viewer spawn index.
type DeleteActor struct {
	ActorID    uint32
	SpawnIndex uint16
	Pad        uint16
}

func (DeleteActor) Opcode() Opcode  { return OpDeleteActor }
func (m DeleteActor) CalcSize() int { return 4 + 2 + 2 }
func (m DeleteActor) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ActorID)
	w.WriteU16(m.SpawnIndex)
	w.WritePad(2)
	return w.Bytes()
}
func DecodeDeleteActor(b []byte) (Message, error) {
	r := NewReader(b)
	m := DeleteActor{ActorID: r.ReadU32(), SpawnIndex: r.ReadU16()}
	r.Skip(2)
	return m, nil
}

// ChangeZone instructs the client to tear down and reconnect into a new zone.
type ChangeZone struct {
	ZoneID  uint16
	Pad     uint16
	X, Y, Z float32
}

func (ChangeZone) Opcode() Opcode  { return OpChangeZone }
func (m ChangeZone) CalcSize() int { return 2 + 2 + 4*3 }
func (m ChangeZone) Encode() []byte {
	w := NewWriter()
	w.WriteU16(m.ZoneID)
	w.WritePad(2)
	w.WriteF32(m.X)
	w.WriteF32(m.Y)
	w.WriteF32(m.Z)
	return w.Bytes()
}
func DecodeChangeZone(b []byte) (Message, error) {
	r := NewReader(b)
	m := ChangeZone{ZoneID: r.ReadU16()}
	r.Skip(2)
	m.X, m.Y, m.Z = r.ReadF32(), r.ReadF32(), r.ReadF32()
	return m, nil
}

// PrepareZoning primes the client for the ChangeZone that follows.
type PrepareZoning struct {
	ZoneID uint16
	Pad    uint16
}

func (PrepareZoning) Opcode() Opcode  { return OpPrepareZoning }
func (m PrepareZoning) CalcSize() int { return 2 + 2 }
func (m PrepareZoning) Encode() []byte {
	w := NewWriter()
	w.WriteU16(m.ZoneID)
	w.WritePad(2)
	return w.Bytes()
}
func DecodePrepareZoning(b []byte) (Message, error) {
	r := NewReader(b)
	m := PrepareZoning{ZoneID: r.ReadU16()}
	r.Skip(2)
	return m, nil
}

// InitZone flag bits (§4.1/§4.3).
const (
	InitZoneEnableFlying uint32 = 1 << 0
	InitZoneHideServer   uint32 = 1 << 1
	InitZoneInitialLogin uint32 = 1 << 2
)

// MaxFestivals bounds the festival id table InitZone carries.
const MaxFestivals = 4

// InitZone hands the freshly connected (or freshly zoned) client its
// zone context: weather, content-finder condition, the ENABLE_FLYING/
// HIDE_SERVER/INITIAL_LOGIN flag bits, the obfuscation reseed (§4.1
// "ChangeZone reseeds the scrambler from a fresh obfuscation_mode/seed1/
// seed2/seed3"), and any active festival ids.
type InitZone struct {
	ZoneID                   uint16
	WeatherID                uint16
	ContentFinderConditionID uint16
	Pad                      uint16
	Flags                    uint32
	ObfuscationMode          uint8
	Pad2                     [3]byte
	Seed1                    uint32
	Seed2                    uint32
	Seed3                    uint32
	Festivals                [MaxFestivals]uint16
}

func (InitZone) Opcode() Opcode { return OpInitZone }
func (m InitZone) CalcSize() int {
	return 2 + 2 + 2 + 2 + 4 + 1 + 3 + 4 + 4 + 4 + 2*MaxFestivals
}
func (m InitZone) Encode() []byte {
	w := NewWriter()
	w.WriteU16(m.ZoneID)
	w.WriteU16(m.WeatherID)
	w.WriteU16(m.ContentFinderConditionID)
	w.WritePad(2)
	w.WriteU32(m.Flags)
	w.WriteU8(m.ObfuscationMode)
	w.WritePad(3)
	w.WriteU32(m.Seed1)
	w.WriteU32(m.Seed2)
	w.WriteU32(m.Seed3)
	for _, f := range m.Festivals {
		w.WriteU16(f)
	}
	return w.Bytes()
}
func DecodeInitZone(b []byte) (Message, error) {
	r := NewReader(b)
	m := InitZone{ZoneID: r.ReadU16(), WeatherID: r.ReadU16(), ContentFinderConditionID: r.ReadU16()}
	r.Skip(2)
	m.Flags = r.ReadU32()
	m.ObfuscationMode = r.ReadU8()
	r.Skip(3)
	m.Seed1, m.Seed2, m.Seed3 = r.ReadU32(), r.ReadU32(), r.ReadU32()
	for i := range m.Festivals {
		m.Festivals[i] = r.ReadU16()
	}
	return m, nil
}

// PlayerStatus carries the connecting player's current class/level and
// resource pools, the stats/class-info half of the login-hello sequence
// (§4.3, §8).
type PlayerStatus struct {
	ContentID uint64
	Name      string
	ClassJob  uint8
	Level     uint8
	Pad       [2]byte
	CurHP     uint32
	MaxHP     uint32
	CurMP     uint32
	MaxMP     uint32
	CurExp    uint32
	GMRank    uint8
	Pad2      [3]byte
}

func (PlayerStatus) Opcode() Opcode { return OpPlayerStatus }
func (m PlayerStatus) CalcSize() int {
	return 8 + NameSize + 1 + 1 + 2 + 4 + 4 + 4 + 4 + 4 + 1 + 3
}
func (m PlayerStatus) Encode() []byte {
	w := NewWriter()
	w.WriteU64(m.ContentID)
	w.WriteFixedString(m.Name, NameSize)
	w.WriteU8(m.ClassJob)
	w.WriteU8(m.Level)
	w.WritePad(2)
	w.WriteU32(m.CurHP)
	w.WriteU32(m.MaxHP)
	w.WriteU32(m.CurMP)
	w.WriteU32(m.MaxMP)
	w.WriteU32(m.CurExp)
	w.WriteU8(m.GMRank)
	w.WritePad(3)
	return w.Bytes()
}
func DecodePlayerStatus(b []byte) (Message, error) {
	r := NewReader(b)
	m := PlayerStatus{ContentID: r.ReadU64()}
	m.Name = r.ReadFixedString(NameSize)
	m.ClassJob = r.ReadU8()
	m.Level = r.ReadU8()
	r.Skip(2)
	m.CurHP = r.ReadU32()
	m.MaxHP = r.ReadU32()
	m.CurMP = r.ReadU32()
	m.MaxMP = r.ReadU32()
	m.CurExp = r.ReadU32()
	m.GMRank = r.ReadU8()
	r.Skip(3)
	return m, nil
}

// FullInventory resends one general-purpose container's full slot table
// (§4.3 login-hello "send the full inventory").
type FullInventory struct {
	Storage uint16
	Pad     uint16
	Items   [MaxInventorySlots]InventoryItem
}

func (FullInventory) Opcode() Opcode  { return OpFullInventory }
func (m FullInventory) CalcSize() int { return 2 + 2 + MaxInventorySlots*InventoryItemSize }
func (m FullInventory) Encode() []byte {
	w := NewWriter()
	w.WriteU16(m.Storage)
	w.WritePad(2)
	for _, e := range m.Items {
		e.encode(w)
	}
	return w.Bytes()
}
func DecodeFullInventory(b []byte) (Message, error) {
	r := NewReader(b)
	m := FullInventory{Storage: r.ReadU16()}
	r.Skip(2)
	for i := range m.Items {
		m.Items[i] = decodeInventoryItem(r)
	}
	return m, nil
}

// EquippedInventory resends the 14 equipped-gear slots, sent at login and
// again after a gearset swap (§4.3 "equipped-inventory resend").
type EquippedInventory struct {
	Items [EquipSlotCount]InventoryItem
}

func (EquippedInventory) Opcode() Opcode  { return OpEquippedInventory }
func (m EquippedInventory) CalcSize() int { return EquipSlotCount * InventoryItemSize }
func (m EquippedInventory) Encode() []byte {
	w := NewWriter()
	for _, e := range m.Items {
		e.encode(w)
	}
	return w.Bytes()
}
func DecodeEquippedInventory(b []byte) (Message, error) {
	r := NewReader(b)
	var m EquippedInventory
	for i := range m.Items {
		m.Items[i] = decodeInventoryItem(r)
	}
	return m, nil
}

// InformEquip broadcasts an actor's updated equipment models, the visual
// counterpart of an equip change (§4.3 "inform_equip").
type InformEquip struct {
	ActorID  uint32
	ModelIDs [10]uint32
}

func (InformEquip) Opcode() Opcode  { return OpInformEquip }
func (m InformEquip) CalcSize() int { return 4 + 4*10 }
func (m InformEquip) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ActorID)
	for _, id := range m.ModelIDs {
		w.WriteU32(id)
	}
	return w.Bytes()
}
func DecodeInformEquip(b []byte) (Message, error) {
	r := NewReader(b)
	m := InformEquip{ActorID: r.ReadU32()}
	for i := range m.ModelIDs {
		m.ModelIDs[i] = r.ReadU32()
	}
	return m, nil
}

// ZoneLoadNotice is an empty-body marker sent twice during the ChangeZone
// sequence (§4.3); real clients expect this pair before treating the zone
// as fully initialized.
type ZoneLoadNotice struct{}

func (ZoneLoadNotice) Opcode() Opcode                { return OpZoneLoadNotice }
func (ZoneLoadNotice) CalcSize() int                 { return 0 }
func (ZoneLoadNotice) Encode() []byte                { return nil }
func DecodeZoneLoadNotice(b []byte) (Message, error) { return ZoneLoadNotice{}, nil }

// LogOut begins the graceful logout sequence.
type LogOut struct{}

func (LogOut) Opcode() Opcode        { return OpLogOut }
func (LogOut) CalcSize() int         { return 0 }
func (LogOut) Encode() []byte        { return nil }
func DecodeLogOut(b []byte) (Message, error) { return LogOut{}, nil }

// LogOutComplete confirms the connection may now be torn down.
type LogOutComplete struct{}

func (LogOutComplete) Opcode() Opcode { return OpLogOutComplete }
func (LogOutComplete) CalcSize() int  { return 0 }
func (LogOutComplete) Encode() []byte { return nil }
func DecodeLogOutComplete(b []byte) (Message, error) { return LogOutComplete{}, nil }

// Condition carries a bitmask of client-visible status conditions
// (casting, bound, jumping, swimming, ...).
type Condition struct{ Flags uint32 }

func (Condition) Opcode() Opcode  { return OpCondition }
func (m Condition) CalcSize() int { return 4 }
func (m Condition) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.Flags)
	return w.Bytes()
}
func DecodeCondition(b []byte) (Message, error) {
	return Condition{Flags: NewReader(b).ReadU32()}, nil
}

// ServerNoticeMessage is a system/GM chat line shown in the client log,
// grounded on Kawari's send_message (truncated to 775 characters there;
// this implementation rounds the fixed field up to ChatMessageSize).
type ServerNoticeMessage struct{ Message string }

func (ServerNoticeMessage) Opcode() Opcode  { return OpServerNoticeMessage }
func (m ServerNoticeMessage) CalcSize() int { return ChatMessageSize }
func (m ServerNoticeMessage) Encode() []byte {
	w := NewWriter()
	w.WriteFixedString(m.Message, ChatMessageSize)
	return w.Bytes()
}
func DecodeServerNoticeMessage(b []byte) (Message, error) {
	return ServerNoticeMessage{Message: NewReader(b).ReadFixedString(ChatMessageSize)}, nil
}

// HaterList broadcasts an NPC's current hate table (§4.4.2).
type HaterList struct {
	ActorID uint32
	Count   uint8
	Pad     [3]byte
	Entries [MaxHateEntries]HateEntry
}

func (HaterList) Opcode() Opcode  { return OpHaterList }
func (m HaterList) CalcSize() int { return 4 + 1 + 3 + MaxHateEntries*HateEntrySize }
func (m HaterList) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ActorID)
	w.WriteU8(m.Count)
	w.WritePad(3)
	for _, e := range m.Entries {
		e.encode(w)
	}
	return w.Bytes()
}
func DecodeHaterList(b []byte) (Message, error) {
	r := NewReader(b)
	m := HaterList{ActorID: r.ReadU32(), Count: r.ReadU8()}
	r.Skip(3)
	for i := range m.Entries {
		m.Entries[i] = decodeHateEntry(r)
	}
	return m, nil
}

// EnmityList is the player-facing view of their own standing against a target.
type EnmityList struct {
	TargetActorID uint32
	Count         uint8
	Pad           [3]byte
	Entries       [MaxHateEntries]HateEntry
}

func (EnmityList) Opcode() Opcode  { return OpEnmityList }
func (m EnmityList) CalcSize() int { return 4 + 1 + 3 + MaxHateEntries*HateEntrySize }
func (m EnmityList) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.TargetActorID)
	w.WriteU8(m.Count)
	w.WritePad(3)
	for _, e := range m.Entries {
		e.encode(w)
	}
	return w.Bytes()
}
func DecodeEnmityList(b []byte) (Message, error) {
	r := NewReader(b)
	m := EnmityList{TargetActorID: r.ReadU32(), Count: r.ReadU8()}
	r.Skip(3)
	for i := range m.Entries {
		m.Entries[i] = decodeHateEntry(r)
	}
	return m, nil
}

// UpdateHpMpTp pushes the owning client's current resource pools.
type UpdateHpMpTp struct {
	HP uint32
	MP uint16
	TP uint16
}

func (UpdateHpMpTp) Opcode() Opcode  { return OpUpdateHpMpTp }
func (m UpdateHpMpTp) CalcSize() int { return 4 + 2 + 2 }
func (m UpdateHpMpTp) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.HP)
	w.WriteU16(m.MP)
	w.WriteU16(m.TP)
	return w.Bytes()
}
func DecodeUpdateHpMpTp(b []byte) (Message, error) {
	r := NewReader(b)
	return UpdateHpMpTp{HP: r.ReadU32(), MP: r.ReadU16(), TP: r.ReadU16()}, nil
}

// IncrementRestedExp grants rested-experience accrual to a connected
// player standing in a sanctuary, once per rested-exp cycle. §9 notes the
// real accrual rate is not modeled authentically; the zone connection
// fills Amount with the fixed restedExpPlaceholderAmount.
type IncrementRestedExp struct{ Amount uint32 }

func (IncrementRestedExp) Opcode() Opcode  { return OpIncrementRestedExp }
func (m IncrementRestedExp) CalcSize() int { return 4 }
func (m IncrementRestedExp) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.Amount)
	return w.Bytes()
}
func DecodeIncrementRestedExp(b []byte) (Message, error) {
	return IncrementRestedExp{Amount: NewReader(b).ReadU32()}, nil
}

// EnteredInstanceEntranceRange is sent the first tick a player steps into
// an entrance-tagged map range, naming the instance it leads into
// (§4.4.3/§8).
type EnteredInstanceEntranceRange struct{ InstanceID uint32 }

func (EnteredInstanceEntranceRange) Opcode() Opcode  { return OpEnteredInstanceEntranceRange }
func (m EnteredInstanceEntranceRange) CalcSize() int { return 4 }
func (m EnteredInstanceEntranceRange) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.InstanceID)
	return w.Bytes()
}
func DecodeEnteredInstanceEntranceRange(b []byte) (Message, error) {
	return EnteredInstanceEntranceRange{InstanceID: NewReader(b).ReadU32()}, nil
}

// KeepAliveResponse answers KeepAliveRequest, echoing its id/timestamp.
type KeepAliveResponse struct {
	ID        uint32
	Timestamp uint32
}

func (KeepAliveResponse) Opcode() Opcode  { return OpKeepAliveResponse }
func (m KeepAliveResponse) CalcSize() int { return 4 + 4 }
func (m KeepAliveResponse) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ID)
	w.WriteU32(m.Timestamp)
	return w.Bytes()
}
func DecodeKeepAliveResponse(b []byte) (Message, error) {
	r := NewReader(b)
	return KeepAliveResponse{ID: r.ReadU32(), Timestamp: r.ReadU32()}, nil
}

// EventScene drives an event script's client-side cutscene/dialogue
// rendering, grounded on Kawari's LuaPlayer::play_scene.
type EventScene struct {
	ActorID     uint32
	HandlerID   uint32
	SceneIndex  uint16
	SceneFlags  uint16
	Params      [8]int32
}

func (EventScene) Opcode() Opcode  { return OpEventScene }
func (m EventScene) CalcSize() int { return 4 + 4 + 2 + 2 + 4*8 }
func (m EventScene) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ActorID)
	w.WriteU32(m.HandlerID)
	w.WriteU16(m.SceneIndex)
	w.WriteU16(m.SceneFlags)
	for _, p := range m.Params {
		w.WriteI32(p)
	}
	return w.Bytes()
}
func DecodeEventScene(b []byte) (Message, error) {
	r := NewReader(b)
	m := EventScene{ActorID: r.ReadU32(), HandlerID: r.ReadU32(), SceneIndex: r.ReadU16(), SceneFlags: r.ReadU16()}
	for i := range m.Params {
		m.Params[i] = r.ReadI32()
	}
	return m, nil
}

func registerServerZone(r *Registry) {
	r.Register(OpInitResponse, DecodeInitResponse)
	r.Register(OpZoneLoaded, DecodeZoneLoaded)
	r.Register(OpActorMove, DecodeActorMove)
	r.Register(OpActorControl, DecodeActorControl)
	r.Register(OpActorControlSelf, DecodeActorControlSelf)
	r.Register(OpInventoryActionAck, DecodeInventoryActionAck)
	r.Register(OpInventoryTransaction, DecodeInventoryTransaction)
	r.Register(OpInventoryTransactionFinish, DecodeInventoryTransactionFinish)
	r.Register(OpGearSetEquipped, DecodeGearSetEquipped)
	r.Register(OpPartyUpdate, DecodePartyUpdate)
	r.Register(OpPartyList, DecodePartyList)
	r.Register(OpBlacklist, DecodeBlacklist)
	r.Register(OpPlayerSpawn, DecodePlayerSpawn)
	r.Register(OpNpcSpawn, DecodeNpcSpawn)
	r.Register(OpDeleteActor, DecodeDeleteActor)
	r.Register(OpChangeZone, DecodeChangeZone)
	r.Register(OpPrepareZoning, DecodePrepareZoning)
	r.Register(OpInitZone, DecodeInitZone)
	r.Register(OpLogOut, DecodeLogOut)
	r.Register(OpLogOutComplete, DecodeLogOutComplete)
	r.Register(OpCondition, DecodeCondition)
	r.Register(OpServerNoticeMessage, DecodeServerNoticeMessage)
	r.Register(OpHaterList, DecodeHaterList)
	r.Register(OpEnmityList, DecodeEnmityList)
	r.Register(OpUpdateHpMpTp, DecodeUpdateHpMpTp)
	r.Register(OpIncrementRestedExp, DecodeIncrementRestedExp)
	r.Register(OpEnteredInstanceEntranceRange, DecodeEnteredInstanceEntranceRange)
	r.Register(OpKeepAliveResponse, DecodeKeepAliveResponse)
	r.Register(OpEventScene, DecodeEventScene)
	r.Register(OpPlayerStatus, DecodePlayerStatus)
	r.Register(OpFullInventory, DecodeFullInventory)
	r.Register(OpEquippedInventory, DecodeEquippedInventory)
	r.Register(OpInformEquip, DecodeInformEquip)
	r.Register(OpZoneLoadNotice, DecodeZoneLoadNotice)
}
