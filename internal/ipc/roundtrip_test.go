package ipc

import (
	"fmt"
	"testing"
)

// Every registered variant must encode to exactly CalcSize() bytes and
// round-trip through the registry's decoder without size drift — the
// wire-level invariant that a segment's declared size always matches its
// actual body length.
func TestVariantsRoundTripSize(t *testing.T) {
	cases := []Message{
		InitRequest{},
		FinishLoading{},
		UpdatePositionHandler{},
		ClientTrigger{},
		SendChatMessage{},
		GMCommand{},
		ItemOperation{},
		StartTalkEvent{},
		EventYieldHandler{},
		EventReturnHandler4{},
		EquipGearset{},
		ZoneJump{},
		QueueDuties{},
		PartyInvite{},
		InviteReply{},
		PartyLeave{},
		PartyDisband{},
		PartyMemberKick{},
		PartyChangeLeader{},
		SetPartyChatChannel{},
		ShareStrategyBoard{},
		StrategyBoardUpdate{},
		RealtimeStrategyBoardFinished{},
		RequestBlacklist{},
		KeepAliveRequest{},

		InitResponse{},
		ZoneLoaded{},
		ActorMove{},
		ActorControl{},
		ActorControlSelf{},
		InventoryActionAck{},
		InventoryTransaction{},
		InventoryTransactionFinish{},
		GearSetEquipped{},
		PartyUpdate{},
		PartyList{},
		Blacklist{},
		PlayerSpawn{},
		NpcSpawn{},
		DeleteActor{},
		ChangeZone{},
		PrepareZoning{},
		InitZone{},
		LogOut{},
		LogOutComplete{},
		Condition{},
		ServerNoticeMessage{},
		HaterList{},
		EnmityList{},
		UpdateHpMpTp{},
		IncrementRestedExp{},
		EnteredInstanceEntranceRange{},
		KeepAliveResponse{},
		EventScene{},
	}

	reg := DefaultRegistry()

	for _, msg := range cases {
		msg := msg
		t.Run(opcodeName(msg), func(t *testing.T) {
			encoded := msg.Encode()
			if len(encoded) != msg.CalcSize() {
				t.Fatalf("len(Encode())=%d != CalcSize()=%d", len(encoded), msg.CalcSize())
			}

			header := Header{Opcode: msg.Opcode()}
			decoded, err := reg.Decode(header, encoded)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if decoded.CalcSize() != msg.CalcSize() {
				t.Fatalf("decoded CalcSize()=%d != original %d", decoded.CalcSize(), msg.CalcSize())
			}
			reEncoded := decoded.Encode()
			if len(reEncoded) != len(encoded) {
				t.Fatalf("re-encoded length %d != original %d", len(reEncoded), len(encoded))
			}
		})
	}
}

func TestUnknownOpcodeIsPreserved(t *testing.T) {
	reg := DefaultRegistry()
	raw := []byte{1, 2, 3, 4}
	msg, err := reg.Decode(Header{Opcode: 0x7FFF}, raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	u, ok := msg.(Unknown)
	if !ok {
		t.Fatalf("expected Unknown, got %T", msg)
	}
	if string(u.Raw) != string(raw) {
		t.Errorf("Unknown.Raw = %v, want %v", u.Raw, raw)
	}
}

func opcodeName(m Message) string {
	return fmt.Sprintf("0x%04X_%T", uint16(m.Opcode()), m)
}
