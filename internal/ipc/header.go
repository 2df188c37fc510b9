package ipc

import "encoding/binary"

// HeaderSize is the fixed size of the IPC header preceding every variant body.
const HeaderSize = 2 + 2 + 2 + 2 + 4 + 4

// Header precedes every IPC variant body inside a segment of TypeIPC.
type Header struct {
	Reserved  uint16
	Opcode    Opcode
	Pad       uint16
	ServerID  uint16
	Timestamp uint32
	Pad2      uint32
}

func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:2], h.Reserved)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(h.Opcode))
	binary.LittleEndian.PutUint16(buf[4:6], h.Pad)
	binary.LittleEndian.PutUint16(buf[6:8], h.ServerID)
	binary.LittleEndian.PutUint32(buf[8:12], h.Timestamp)
	binary.LittleEndian.PutUint32(buf[12:16], h.Pad2)
	return buf
}

func DecodeHeader(buf []byte) Header {
	return Header{
		Reserved:  binary.LittleEndian.Uint16(buf[0:2]),
		Opcode:    Opcode(binary.LittleEndian.Uint16(buf[2:4])),
		Pad:       binary.LittleEndian.Uint16(buf[4:6]),
		ServerID:  binary.LittleEndian.Uint16(buf[6:8]),
		Timestamp: binary.LittleEndian.Uint32(buf[8:12]),
		Pad2:      binary.LittleEndian.Uint32(buf[12:16]),
	}
}

// Opcode identifies an IPC variant. Per the open design note in the wire
// format (the real client's opcode numbers shift every patch), the values
// below are a stable internal numbering for this implementation, not a
// claim about any particular client build's actual opcode table.
type Opcode uint16

const (
	OpUnknown Opcode = 0

	// Client -> Zone
	OpInitRequest                    Opcode = 0x0001
	OpFinishLoading                  Opcode = 0x0002
	OpUpdatePositionHandler          Opcode = 0x0003
	OpClientTrigger                  Opcode = 0x0004
	OpSendChatMessage                Opcode = 0x0005
	OpGMCommand                      Opcode = 0x0006
	OpItemOperation                  Opcode = 0x0007
	OpStartTalkEvent                 Opcode = 0x0008
	OpEventYieldHandler              Opcode = 0x0009
	OpEventReturnHandler4            Opcode = 0x000A
	OpEquipGearset                   Opcode = 0x000B
	OpZoneJump                       Opcode = 0x000C
	OpQueueDuties                    Opcode = 0x000D
	OpPartyInvite                    Opcode = 0x000E
	OpInviteReply                    Opcode = 0x000F
	OpPartyLeave                     Opcode = 0x0010
	OpPartyDisband                   Opcode = 0x0011
	OpPartyMemberKick                Opcode = 0x0012
	OpPartyChangeLeader              Opcode = 0x0013
	OpSetPartyChatChannel            Opcode = 0x0014
	OpShareStrategyBoard             Opcode = 0x0015
	OpStrategyBoardUpdate            Opcode = 0x0016
	OpRealtimeStrategyBoardFinished  Opcode = 0x0017
	OpRequestBlacklist               Opcode = 0x0018
	OpKeepAliveRequest               Opcode = 0x0019

	// Zone -> Client
	OpInitResponse                   Opcode = 0x1001
	OpZoneLoaded                     Opcode = 0x1002
	OpActorMove                      Opcode = 0x1003
	OpActorControl                   Opcode = 0x1004
	OpActorControlSelf               Opcode = 0x1005
	OpInventoryActionAck             Opcode = 0x1006
	OpInventoryTransaction           Opcode = 0x1007
	OpInventoryTransactionFinish     Opcode = 0x1008
	OpGearSetEquipped                Opcode = 0x1009
	OpPartyUpdate                    Opcode = 0x100A
	OpPartyList                      Opcode = 0x100B
	OpBlacklist                      Opcode = 0x100C
	OpPlayerSpawn                    Opcode = 0x100D
	OpNpcSpawn                       Opcode = 0x100E
	OpDeleteActor                    Opcode = 0x100F
	OpChangeZone                     Opcode = 0x1010
	OpPrepareZoning                  Opcode = 0x1011
	OpInitZone                       Opcode = 0x1012
	OpLogOut                         Opcode = 0x1013
	OpLogOutComplete                 Opcode = 0x1014
	OpCondition                      Opcode = 0x1015
	OpServerNoticeMessage            Opcode = 0x1016
	OpHaterList                      Opcode = 0x1017
	OpEnmityList                     Opcode = 0x1018
	OpUpdateHpMpTp                   Opcode = 0x1019
	OpIncrementRestedExp             Opcode = 0x101A
	OpEnteredInstanceEntranceRange   Opcode = 0x101B
	OpKeepAliveResponse              Opcode = 0x101C
	OpEventScene                     Opcode = 0x101D
	OpPlayerStatus                   Opcode = 0x101E
	OpFullInventory                  Opcode = 0x101F
	OpEquippedInventory              Opcode = 0x1020
	OpInformEquip                    Opcode = 0x1021
	OpZoneLoadNotice                 Opcode = 0x1022
)
