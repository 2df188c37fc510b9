package world

import (
	"testing"
)

// TestPartyInviteAcceptCreatesParty walks the invite/accept exchange: the
// invite is forwarded to the target's connection, and acceptance creates a
// two-member party with a chat channel, fanning PartyUpdate + PartyList to
// both members.
func TestPartyInviteAcceptCreatesParty(t *testing.T) {
	w := newTestWorld(t)
	in := newTestInstance(w, 1)

	p1 := &Actor{ID: 10, Kind: KindPlayer, ClientID: 1, Common: CommonSpawn{Name: "P1", ContentID: 111, Online: true}}
	p2 := &Actor{ID: 20, Kind: KindPlayer, ClientID: 2, Common: CommonSpawn{Name: "P2", ContentID: 222, Online: true}}
	in.Insert(p1)
	in.Insert(p2)

	w.clients[1] = &ClientHandle{ClientID: 1, ActorID: 10, InstanceID: 1, ContentID: 111}
	w.clients[2] = &ClientHandle{ClientID: 2, ActorID: 20, InstanceID: 1, ContentID: 222}

	out1 := make(chan FromServer, 64)
	out2 := make(chan FromServer, 64)
	w.Register(1, out1)
	w.Register(2, out2)

	w.onInvitePlayerToParty(InvitePlayerToParty{FromClient: 1, FromActor: 10, TargetContentID: 222})

	var invite PartyInvite
	select {
	case msg := <-out2:
		var ok bool
		invite, ok = msg.(PartyInvite)
		if !ok {
			t.Fatalf("expected PartyInvite, got %T", msg)
		}
	default:
		t.Fatal("no invite forwarded to target")
	}
	if invite.SenderContentID != 111 || invite.SenderName != "P1" {
		t.Fatalf("invite = %+v", invite)
	}

	w.onInvitationResponse(InvitationResponse{FromClient: 2, ActorID: 20, SenderContentID: 111, Accepted: true})

	p, found := w.parties.Of(222)
	if !found {
		t.Fatal("accepting member not in a party")
	}
	if p.MemberCount() != 2 {
		t.Fatalf("member count = %d, want 2", p.MemberCount())
	}
	if p.ChatChannelID == 0 {
		t.Error("party has no chat channel")
	}
	leader, _, ok := p.Leader()
	if !ok || leader.ContentID != 111 {
		t.Fatalf("leader = %+v, want content 111", leader)
	}

	updates, lists := 0, 0
	for _, out := range []chan FromServer{out1, out2} {
		for {
			select {
			case msg := <-out:
				switch msg.(type) {
				case PartyUpdate:
					updates++
				case PartyList:
					lists++
				}
				continue
			default:
			}
			break
		}
	}
	if updates != 2 || lists != 2 {
		t.Fatalf("fanout: %d PartyUpdate, %d PartyList, want 2 each", updates, lists)
	}
}

// TestPartyInviteDeclinedCreatesNothing verifies a declined invite leaves no
// party behind.
func TestPartyInviteDeclinedCreatesNothing(t *testing.T) {
	w := newTestWorld(t)
	newTestInstance(w, 1)
	w.clients[1] = &ClientHandle{ClientID: 1, ActorID: 10, InstanceID: 1, ContentID: 111}
	w.clients[2] = &ClientHandle{ClientID: 2, ActorID: 20, InstanceID: 1, ContentID: 222}

	w.onInvitationResponse(InvitationResponse{FromClient: 2, ActorID: 20, SenderContentID: 111, Accepted: false})

	if _, found := w.parties.Of(111); found {
		t.Fatal("declined invite created a party")
	}
	if _, found := w.parties.Of(222); found {
		t.Fatal("declined invite added the target to a party")
	}
}

// TestGimmickJumpSuppressesMovementBroadcast covers the §8 gimmick-jump
// scenario's tail: position updates from a jumping player are not echoed to
// other viewers until the landed trigger clears the flag.
func TestGimmickJumpSuppressesMovementBroadcast(t *testing.T) {
	w := newTestWorld(t)
	in := newTestInstance(w, 1)

	jumper := &Actor{ID: 10, Kind: KindPlayer, ClientID: 1, ExecutingGimmickJump: true}
	viewer := &Actor{ID: 20, Kind: KindPlayer, ClientID: 2}
	in.Insert(jumper)
	in.Insert(viewer)
	w.clients[1] = &ClientHandle{ClientID: 1, ActorID: 10, InstanceID: 1}
	w.clients[2] = &ClientHandle{ClientID: 2, ActorID: 20, InstanceID: 1}

	out := make(chan FromServer, 16)
	w.Register(2, out)

	w.onActorMoved(ActorMoved{ActorID: 10, Position: Vec3{X: 5}})
	select {
	case msg := <-out:
		t.Fatalf("movement broadcast during gimmick jump: %T", msg)
	default:
	}

	w.onClientTrigger(ClientTrigger{FromClient: 1, ActorID: 10, Kind: TriggerGimmickJumpLanded})
	if jumper.ExecutingGimmickJump {
		t.Fatal("landed trigger did not clear the gimmick-jump flag")
	}

	w.onActorMoved(ActorMoved{ActorID: 10, Position: Vec3{X: 6}})
	select {
	case msg := <-out:
		if _, ok := msg.(ActorMove); !ok {
			t.Fatalf("expected ActorMove after landing, got %T", msg)
		}
	default:
		t.Fatal("no movement broadcast after landing")
	}
}

// TestFatalErrorUnwindsDispatch verifies only FatalError produces an error
// from the dispatch path.
func TestFatalErrorUnwindsDispatch(t *testing.T) {
	w := newTestWorld(t)

	if err := w.handleToServer(ZoneLoaded{ClientID: 1}); err != nil {
		t.Fatalf("ordinary message returned error: %v", err)
	}

	want := errTest
	if err := w.handleToServer(FatalError{Err: want}); err != want {
		t.Fatalf("FatalError returned %v, want %v", err, want)
	}
}

var errTest = errSentinel("boom")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }
