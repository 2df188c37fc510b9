package ipc

// This file implements the Client -> Zone variant bodies named in the
// handler contracts: InitRequest, FinishLoading, UpdatePositionHandler,
// ClientTrigger, SendChatMessage, GMCommand, ItemOperation,
// StartTalkEvent, EventYieldHandler, EventReturnHandler4, EquipGearset,
// ZoneJump, QueueDuties, the party operations, RequestBlacklist, and
// KeepAliveRequest. Each variant's Encode/CalcSize pair is covered by a
// round-trip size test in roundtrip_test.go.

// InitRequest is sent once after Setup, carrying the client's identity.
type InitRequest struct {
	ContentID uint64
	AccountID uint32
	Unk       [8]byte
}

func (InitRequest) Opcode() Opcode { return OpInitRequest }
func (m InitRequest) CalcSize() int { return 8 + 4 + 8 }
func (m InitRequest) Encode() []byte {
	w := NewWriter()
	w.WriteU64(m.ContentID)
	w.WriteU32(m.AccountID)
	w.WriteBytes(m.Unk[:])
	return w.Bytes()
}
func DecodeInitRequest(b []byte) (Message, error) {
	r := NewReader(b)
	m := InitRequest{ContentID: r.ReadU64(), AccountID: r.ReadU32()}
	copy(m.Unk[:], r.ReadBytes(8))
	return m, nil
}

// FinishLoading signals the client finished loading the current zone.
type FinishLoading struct{}

func (FinishLoading) Opcode() Opcode   { return OpFinishLoading }
func (FinishLoading) CalcSize() int    { return 0 }
func (FinishLoading) Encode() []byte   { return nil }
func DecodeFinishLoading(b []byte) (Message, error) { return FinishLoading{}, nil }

// UpdatePositionHandler reports the client's authoritative position.
type UpdatePositionHandler struct {
	X, Y, Z  float32
	Rotation float32
	Flags    uint8
	Pad      [3]byte
}

func (UpdatePositionHandler) Opcode() Opcode { return OpUpdatePositionHandler }
func (m UpdatePositionHandler) CalcSize() int { return 4*4 + 1 + 3 }
func (m UpdatePositionHandler) Encode() []byte {
	w := NewWriter()
	w.WriteF32(m.X)
	w.WriteF32(m.Y)
	w.WriteF32(m.Z)
	w.WriteF32(m.Rotation)
	w.WriteU8(m.Flags)
	w.WritePad(3)
	return w.Bytes()
}
func DecodeUpdatePositionHandler(b []byte) (Message, error) {
	r := NewReader(b)
	m := UpdatePositionHandler{X: r.ReadF32(), Y: r.ReadF32(), Z: r.ReadF32(), Rotation: r.ReadF32()}
	m.Flags = r.ReadU8()
	r.Skip(3)
	return m, nil
}

// TriggerKind enumerates the sub-kinds folded into one ClientTrigger
// opcode (§4.3/§4.4): TeleportQuery, SummonMinion, DespawnMinion,
// SetTarget, ChangePose, Emote, ToggleWeapon, ManuallyRemoveEffect,
// PlaceWaymark, ClearWaymark, ClearAllWaymarks, ApplyWaymarkPreset,
// ExecuteGimmickJump, GimmickJumpLanded, PrepareCastGlamour,
// BeginContentsReplay, EndContentsReplay.
type TriggerKind uint16

const (
	TriggerTeleportQuery TriggerKind = iota
	TriggerSummonMinion
	TriggerDespawnMinion
	TriggerSetTarget
	TriggerChangePose
	TriggerEmote
	TriggerToggleWeapon
	TriggerManuallyRemoveEffect
	TriggerPlaceWaymark
	TriggerClearWaymark
	TriggerClearAllWaymarks
	TriggerApplyWaymarkPreset
	TriggerExecuteGimmickJump
	TriggerGimmickJumpLanded
	TriggerPrepareCastGlamour
	TriggerBeginContentsReplay
	TriggerEndContentsReplay
	TriggerJoinContent
	TriggerLeaveContent
)

// ClientTrigger carries one of the TriggerKind sub-messages with up to
// four generic parameters, mirroring the single-opcode/many-subkind shape
// used throughout §4.3.
type ClientTrigger struct {
	Kind   TriggerKind
	Param1 uint32
	Param2 uint32
	Param3 uint32
	Param4 uint32
}

func (ClientTrigger) Opcode() Opcode  { return OpClientTrigger }
func (m ClientTrigger) CalcSize() int { return 2 + 2 + 4*4 }
func (m ClientTrigger) Encode() []byte {
	w := NewWriter()
	w.WriteU16(uint16(m.Kind))
	w.WritePad(2)
	w.WriteU32(m.Param1)
	w.WriteU32(m.Param2)
	w.WriteU32(m.Param3)
	w.WriteU32(m.Param4)
	return w.Bytes()
}
func DecodeClientTrigger(b []byte) (Message, error) {
	r := NewReader(b)
	m := ClientTrigger{Kind: TriggerKind(r.ReadU16())}
	r.Skip(2)
	m.Param1 = r.ReadU32()
	m.Param2 = r.ReadU32()
	m.Param3 = r.ReadU32()
	m.Param4 = r.ReadU32()
	return m, nil
}

// ChatMessageSize mirrors Kawari's 775-character send_message truncation
// bound rounded up to a fixed on-wire field width.
const ChatMessageSize = 1024

// SendChatMessage carries a say/shout/party/yell chat line from the client.
type SendChatMessage struct {
	ChannelID uint16
	Pad       uint16
	Message   string
}

func (SendChatMessage) Opcode() Opcode  { return OpSendChatMessage }
func (m SendChatMessage) CalcSize() int { return 2 + 2 + ChatMessageSize }
func (m SendChatMessage) Encode() []byte {
	w := NewWriter()
	w.WriteU16(m.ChannelID)
	w.WritePad(2)
	w.WriteFixedString(m.Message, ChatMessageSize)
	return w.Bytes()
}
func DecodeSendChatMessage(b []byte) (Message, error) {
	r := NewReader(b)
	m := SendChatMessage{ChannelID: r.ReadU16()}
	r.Skip(2)
	m.Message = r.ReadFixedString(ChatMessageSize)
	return m, nil
}

// GMCommandNameSize is the fixed width of the command-name field every GM
// command body carries, regardless of how long the invoked name is.
const GMCommandNameSize = 128

// GMCommand is a privileged debug command dispatched by rank-gated name.
type GMCommand struct {
	Command string
	Arg0    int32
	Arg1    int32
	Arg2    int32
}

func (GMCommand) Opcode() Opcode  { return OpGMCommand }
func (m GMCommand) CalcSize() int { return GMCommandNameSize + 4*3 }
func (m GMCommand) Encode() []byte {
	w := NewWriter()
	w.WriteFixedString(m.Command, GMCommandNameSize)
	w.WriteI32(m.Arg0)
	w.WriteI32(m.Arg1)
	w.WriteI32(m.Arg2)
	return w.Bytes()
}
func DecodeGMCommand(b []byte) (Message, error) {
	r := NewReader(b)
	m := GMCommand{Command: r.ReadFixedString(GMCommandNameSize)}
	m.Arg0 = r.ReadI32()
	m.Arg1 = r.ReadI32()
	m.Arg2 = r.ReadI32()
	return m, nil
}

// ItemOpKind enumerates inventory mutation kinds carried by ItemOperation.
type ItemOpKind uint16

const (
	ItemOpMove ItemOpKind = iota
	ItemOpDiscard
	ItemOpSplit
	ItemOpMerge
)

// ItemOperation requests an inventory mutation (§4.3 discard-item scenario).
type ItemOperation struct {
	Kind     ItemOpKind
	Pad      uint16
	ItemID   uint32
	Quantity uint32
	FromSlot uint16
	ToSlot   uint16
}

func (ItemOperation) Opcode() Opcode  { return OpItemOperation }
func (m ItemOperation) CalcSize() int { return 2 + 2 + 4 + 4 + 2 + 2 }
func (m ItemOperation) Encode() []byte {
	w := NewWriter()
	w.WriteU16(uint16(m.Kind))
	w.WritePad(2)
	w.WriteU32(m.ItemID)
	w.WriteU32(m.Quantity)
	w.WriteU16(m.FromSlot)
	w.WriteU16(m.ToSlot)
	return w.Bytes()
}
func DecodeItemOperation(b []byte) (Message, error) {
	r := NewReader(b)
	m := ItemOperation{Kind: ItemOpKind(r.ReadU16())}
	r.Skip(2)
	m.ItemID = r.ReadU32()
	m.Quantity = r.ReadU32()
	m.FromSlot = r.ReadU16()
	m.ToSlot = r.ReadU16()
	return m, nil
}

// StartTalkEvent begins a scripted event against an NPC/object actor.
type StartTalkEvent struct {
	ActorID   uint32
	HandlerID uint32
}

func (StartTalkEvent) Opcode() Opcode  { return OpStartTalkEvent }
func (m StartTalkEvent) CalcSize() int { return 4 + 4 }
func (m StartTalkEvent) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ActorID)
	w.WriteU32(m.HandlerID)
	return w.Bytes()
}
func DecodeStartTalkEvent(b []byte) (Message, error) {
	r := NewReader(b)
	return StartTalkEvent{ActorID: r.ReadU32(), HandlerID: r.ReadU32()}, nil
}

// EventYieldHandler resumes a suspended event script at a chosen scene/branch.
type EventYieldHandler struct {
	HandlerID uint32
	Scene     uint16
	ErrorCode uint16
	Params    [4]int32
}

func (EventYieldHandler) Opcode() Opcode  { return OpEventYieldHandler }
func (m EventYieldHandler) CalcSize() int { return 4 + 2 + 2 + 4*4 }
func (m EventYieldHandler) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.HandlerID)
	w.WriteU16(m.Scene)
	w.WriteU16(m.ErrorCode)
	for _, p := range m.Params {
		w.WriteI32(p)
	}
	return w.Bytes()
}
func DecodeEventYieldHandler(b []byte) (Message, error) {
	r := NewReader(b)
	m := EventYieldHandler{HandlerID: r.ReadU32(), Scene: r.ReadU16(), ErrorCode: r.ReadU16()}
	for i := range m.Params {
		m.Params[i] = r.ReadI32()
	}
	return m, nil
}

// EventReturnHandler4 ends an event script with up to four return values.
type EventReturnHandler4 struct {
	HandlerID uint32
	Scene     uint16
	Pad       uint16
	Params    [4]int32
}

func (EventReturnHandler4) Opcode() Opcode  { return OpEventReturnHandler4 }
func (m EventReturnHandler4) CalcSize() int { return 4 + 2 + 2 + 4*4 }
func (m EventReturnHandler4) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.HandlerID)
	w.WriteU16(m.Scene)
	w.WritePad(2)
	for _, p := range m.Params {
		w.WriteI32(p)
	}
	return w.Bytes()
}
func DecodeEventReturnHandler4(b []byte) (Message, error) {
	r := NewReader(b)
	m := EventReturnHandler4{HandlerID: r.ReadU32(), Scene: r.ReadU16()}
	r.Skip(2)
	for i := range m.Params {
		m.Params[i] = r.ReadI32()
	}
	return m, nil
}

// EquipGearset requests switching the active gearset. Indices/Containers
// give the 14 equip-slot source addresses (an index into the named
// container) the client resolved the gearset to; the zone server still
// has to compare each one against what's currently worn and move only
// what changed (§4.3 "EquipGearset carries 14-slot indices/containers,
// not just a gearset id").
type EquipGearset struct {
	GearsetIndex uint8
	Pad          [3]byte
	Indices      [EquipSlotCount]uint16
	Containers   [EquipSlotCount]uint16
}

func (EquipGearset) Opcode() Opcode  { return OpEquipGearset }
func (m EquipGearset) CalcSize() int { return 1 + 3 + EquipSlotCount*2 + EquipSlotCount*2 }
func (m EquipGearset) Encode() []byte {
	w := NewWriter()
	w.WriteU8(m.GearsetIndex)
	w.WritePad(3)
	for _, v := range m.Indices {
		w.WriteU16(v)
	}
	for _, v := range m.Containers {
		w.WriteU16(v)
	}
	return w.Bytes()
}
func DecodeEquipGearset(b []byte) (Message, error) {
	r := NewReader(b)
	m := EquipGearset{GearsetIndex: r.ReadU8()}
	r.Skip(3)
	for i := range m.Indices {
		m.Indices[i] = r.ReadU16()
	}
	for i := range m.Containers {
		m.Containers[i] = r.ReadU16()
	}
	return m, nil
}

// ZoneJump requests a direct zone change to explicit coordinates.
type ZoneJump struct {
	ZoneID  uint16
	Pad     uint16
	X, Y, Z float32
}

func (ZoneJump) Opcode() Opcode  { return OpZoneJump }
func (m ZoneJump) CalcSize() int { return 2 + 2 + 4*3 }
func (m ZoneJump) Encode() []byte {
	w := NewWriter()
	w.WriteU16(m.ZoneID)
	w.WritePad(2)
	w.WriteF32(m.X)
	w.WriteF32(m.Y)
	w.WriteF32(m.Z)
	return w.Bytes()
}
func DecodeZoneJump(b []byte) (Message, error) {
	r := NewReader(b)
	m := ZoneJump{ZoneID: r.ReadU16()}
	r.Skip(2)
	m.X, m.Y, m.Z = r.ReadF32(), r.ReadF32(), r.ReadF32()
	return m, nil
}

// MaxQueuedDuties bounds the content-finder queue selection list.
const MaxQueuedDuties = 5

// QueueDuties requests matchmaking for up to MaxQueuedDuties content
// finder conditions, with the client's language/loot roulette flags.
type QueueDuties struct {
	ContentFinderConditionIDs [MaxQueuedDuties]uint16
	Pad                       uint16
	Flags                     uint32
}

func (QueueDuties) Opcode() Opcode  { return OpQueueDuties }
func (m QueueDuties) CalcSize() int { return 2*MaxQueuedDuties + 2 + 4 }
func (m QueueDuties) Encode() []byte {
	w := NewWriter()
	for _, id := range m.ContentFinderConditionIDs {
		w.WriteU16(id)
	}
	w.WritePad(2)
	w.WriteU32(m.Flags)
	return w.Bytes()
}
func DecodeQueueDuties(b []byte) (Message, error) {
	r := NewReader(b)
	var m QueueDuties
	for i := range m.ContentFinderConditionIDs {
		m.ContentFinderConditionIDs[i] = r.ReadU16()
	}
	r.Skip(2)
	m.Flags = r.ReadU32()
	return m, nil
}

// PartyInvite proposes party membership to another player by content id.
type PartyInvite struct{ TargetContentID uint64 }

func (PartyInvite) Opcode() Opcode  { return OpPartyInvite }
func (m PartyInvite) CalcSize() int { return 8 }
func (m PartyInvite) Encode() []byte {
	w := NewWriter()
	w.WriteU64(m.TargetContentID)
	return w.Bytes()
}
func DecodePartyInvite(b []byte) (Message, error) {
	return PartyInvite{TargetContentID: NewReader(b).ReadU64()}, nil
}

// InviteReply answers a pending PartyInvite.
type InviteReply struct {
	Accepted bool
	Pad      [3]byte
}

func (InviteReply) Opcode() Opcode  { return OpInviteReply }
func (m InviteReply) CalcSize() int { return 1 + 3 }
func (m InviteReply) Encode() []byte {
	w := NewWriter()
	w.WriteBool(m.Accepted)
	w.WritePad(3)
	return w.Bytes()
}
func DecodeInviteReply(b []byte) (Message, error) {
	r := NewReader(b)
	m := InviteReply{Accepted: r.ReadBool()}
	r.Skip(3)
	return m, nil
}

// PartyLeave removes the sender from their current party.
type PartyLeave struct{}

func (PartyLeave) Opcode() Opcode            { return OpPartyLeave }
func (PartyLeave) CalcSize() int             { return 0 }
func (PartyLeave) Encode() []byte            { return nil }
func DecodePartyLeave(b []byte) (Message, error) { return PartyLeave{}, nil }

// PartyDisband dissolves the sender's party (leader only).
type PartyDisband struct{}

func (PartyDisband) Opcode() Opcode              { return OpPartyDisband }
func (PartyDisband) CalcSize() int               { return 0 }
func (PartyDisband) Encode() []byte              { return nil }
func DecodePartyDisband(b []byte) (Message, error) { return PartyDisband{}, nil }

// PartyMemberKick removes a named member from the party (leader only).
type PartyMemberKick struct{ TargetContentID uint64 }

func (PartyMemberKick) Opcode() Opcode  { return OpPartyMemberKick }
func (m PartyMemberKick) CalcSize() int { return 8 }
func (m PartyMemberKick) Encode() []byte {
	w := NewWriter()
	w.WriteU64(m.TargetContentID)
	return w.Bytes()
}
func DecodePartyMemberKick(b []byte) (Message, error) {
	return PartyMemberKick{TargetContentID: NewReader(b).ReadU64()}, nil
}

// PartyChangeLeader transfers leadership (leader only).
type PartyChangeLeader struct{ TargetContentID uint64 }

func (PartyChangeLeader) Opcode() Opcode  { return OpPartyChangeLeader }
func (m PartyChangeLeader) CalcSize() int { return 8 }
func (m PartyChangeLeader) Encode() []byte {
	w := NewWriter()
	w.WriteU64(m.TargetContentID)
	return w.Bytes()
}
func DecodePartyChangeLeader(b []byte) (Message, error) {
	return PartyChangeLeader{TargetContentID: NewReader(b).ReadU64()}, nil
}

// SetPartyChatChannel selects which chat channel party chat aliases to.
type SetPartyChatChannel struct {
	Channel uint8
	Pad     [3]byte
}

func (SetPartyChatChannel) Opcode() Opcode  { return OpSetPartyChatChannel }
func (m SetPartyChatChannel) CalcSize() int { return 1 + 3 }
func (m SetPartyChatChannel) Encode() []byte {
	w := NewWriter()
	w.WriteU8(m.Channel)
	w.WritePad(3)
	return w.Bytes()
}
func DecodeSetPartyChatChannel(b []byte) (Message, error) {
	r := NewReader(b)
	m := SetPartyChatChannel{Channel: r.ReadU8()}
	r.Skip(3)
	return m, nil
}

// StrategyBoardDataSize is the fixed payload width of a strategy board
// drawing buffer.
const StrategyBoardDataSize = 64

// ShareStrategyBoard begins broadcasting a strategy-board drawing session
// to the party (two-phase protocol, see World Core §4.4).
type ShareStrategyBoard struct {
	Data [StrategyBoardDataSize]byte
}

func (ShareStrategyBoard) Opcode() Opcode  { return OpShareStrategyBoard }
func (m ShareStrategyBoard) CalcSize() int { return StrategyBoardDataSize }
func (m ShareStrategyBoard) Encode() []byte {
	w := NewWriter()
	w.WriteBytes(m.Data[:])
	return w.Bytes()
}
func DecodeShareStrategyBoard(b []byte) (Message, error) {
	var m ShareStrategyBoard
	copy(m.Data[:], NewReader(b).ReadBytes(StrategyBoardDataSize))
	return m, nil
}

// StrategyBoardUpdate streams an incremental drawing delta.
type StrategyBoardUpdate struct {
	Data [StrategyBoardDataSize]byte
}

func (StrategyBoardUpdate) Opcode() Opcode  { return OpStrategyBoardUpdate }
func (m StrategyBoardUpdate) CalcSize() int { return StrategyBoardDataSize }
func (m StrategyBoardUpdate) Encode() []byte {
	w := NewWriter()
	w.WriteBytes(m.Data[:])
	return w.Bytes()
}
func DecodeStrategyBoardUpdate(b []byte) (Message, error) {
	var m StrategyBoardUpdate
	copy(m.Data[:], NewReader(b).ReadBytes(StrategyBoardDataSize))
	return m, nil
}

// RealtimeStrategyBoardFinished ends the sharing session.
type RealtimeStrategyBoardFinished struct{}

func (RealtimeStrategyBoardFinished) Opcode() Opcode  { return OpRealtimeStrategyBoardFinished }
func (RealtimeStrategyBoardFinished) CalcSize() int    { return 0 }
func (RealtimeStrategyBoardFinished) Encode() []byte   { return nil }
func DecodeRealtimeStrategyBoardFinished(b []byte) (Message, error) {
	return RealtimeStrategyBoardFinished{}, nil
}

// RequestBlacklist asks the server to resend the client's blacklist.
// The world server holds no persistent blacklist store (§9 open
// question), so the handler always acknowledges with an empty list.
type RequestBlacklist struct{ Sequence uint32 }

func (RequestBlacklist) Opcode() Opcode  { return OpRequestBlacklist }
func (m RequestBlacklist) CalcSize() int { return 4 }
func (m RequestBlacklist) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.Sequence)
	return w.Bytes()
}
func DecodeRequestBlacklist(b []byte) (Message, error) {
	return RequestBlacklist{Sequence: NewReader(b).ReadU32()}, nil
}

// KeepAliveRequest is echoed back as KeepAliveResponse to hold the
// connection's keep-alive contract.
type KeepAliveRequest struct {
	ID        uint32
	Timestamp uint32
}

func (KeepAliveRequest) Opcode() Opcode  { return OpKeepAliveRequest }
func (m KeepAliveRequest) CalcSize() int { return 4 + 4 }
func (m KeepAliveRequest) Encode() []byte {
	w := NewWriter()
	w.WriteU32(m.ID)
	w.WriteU32(m.Timestamp)
	return w.Bytes()
}
func DecodeKeepAliveRequest(b []byte) (Message, error) {
	r := NewReader(b)
	return KeepAliveRequest{ID: r.ReadU32(), Timestamp: r.ReadU32()}, nil
}

func registerClientZone(r *Registry) {
	r.Register(OpInitRequest, DecodeInitRequest)
	r.Register(OpFinishLoading, DecodeFinishLoading)
	r.Register(OpUpdatePositionHandler, DecodeUpdatePositionHandler)
	r.Register(OpClientTrigger, DecodeClientTrigger)
	r.Register(OpSendChatMessage, DecodeSendChatMessage)
	r.Register(OpGMCommand, DecodeGMCommand)
	r.Register(OpItemOperation, DecodeItemOperation)
	r.Register(OpStartTalkEvent, DecodeStartTalkEvent)
	r.Register(OpEventYieldHandler, DecodeEventYieldHandler)
	r.Register(OpEventReturnHandler4, DecodeEventReturnHandler4)
	r.Register(OpEquipGearset, DecodeEquipGearset)
	r.Register(OpZoneJump, DecodeZoneJump)
	r.Register(OpQueueDuties, DecodeQueueDuties)
	r.Register(OpPartyInvite, DecodePartyInvite)
	r.Register(OpInviteReply, DecodeInviteReply)
	r.Register(OpPartyLeave, DecodePartyLeave)
	r.Register(OpPartyDisband, DecodePartyDisband)
	r.Register(OpPartyMemberKick, DecodePartyMemberKick)
	r.Register(OpPartyChangeLeader, DecodePartyChangeLeader)
	r.Register(OpSetPartyChatChannel, DecodeSetPartyChatChannel)
	r.Register(OpShareStrategyBoard, DecodeShareStrategyBoard)
	r.Register(OpStrategyBoardUpdate, DecodeStrategyBoardUpdate)
	r.Register(OpRealtimeStrategyBoardFinished, DecodeRealtimeStrategyBoardFinished)
	r.Register(OpRequestBlacklist, DecodeRequestBlacklist)
	r.Register(OpKeepAliveRequest, DecodeKeepAliveRequest)
}
