package world

import (
	"testing"

	"github.com/kvatch/worldserver/internal/actor"
)

// TestPartyMemberCountNeverExceedsCapacity covers spec.md §8 property 4:
// "get_member_count <= NUM_ENTRIES".
func TestPartyMemberCountNeverExceedsCapacity(t *testing.T) {
	pm := NewPartyManager()
	p := pm.Create(Member{ContentID: 1, Online: true})

	for i := 2; i <= MaxPartyMembers+2; i++ {
		pm.Join(p.ID, Member{ContentID: actor.ContentId(i), Online: true})
	}

	if p.MemberCount() > MaxPartyMembers {
		t.Fatalf("member count %d exceeds capacity %d", p.MemberCount(), MaxPartyMembers)
	}
	if p.MemberCount() != MaxPartyMembers {
		t.Fatalf("expected party to fill to capacity %d, got %d", MaxPartyMembers, p.MemberCount())
	}
}

// TestPartyRemoveMemberClearsSlotToDefault covers the §3 invariant
// "removing a member clears it to default".
func TestPartyRemoveMemberClearsSlotToDefault(t *testing.T) {
	pm := NewPartyManager()
	p := pm.Create(Member{ContentID: 1, Online: true})
	pm.Join(p.ID, Member{ContentID: 2, Online: true})
	pm.Join(p.ID, Member{ContentID: 3, Online: true})

	slot := p.FindSlot(3)
	p.RemoveMember(3)
	if !p.Members[slot].isEmpty() {
		t.Fatalf("removed member's slot %d is not cleared to default: %+v", slot, p.Members[slot])
	}
}

// TestPartyDisbandsBelowTwoMembers covers §3/§8 property 4: disband fires
// iff member count drops below 2 after a leave, and the manager's index is
// fully cleared when it does.
func TestPartyDisbandsBelowTwoMembers(t *testing.T) {
	pm := NewPartyManager()
	p := pm.Create(Member{ContentID: 1, Online: true})
	pm.Join(p.ID, Member{ContentID: 2, Online: true})
	pm.Join(p.ID, Member{ContentID: 3, Online: true})

	// Three members leaving down to two must not disband.
	if _, disbanded := pm.Leave(3); disbanded {
		t.Fatalf("party should not disband while 2 members remain")
	}

	// The second leave drops the party to 1 member, below the threshold.
	_, disbanded := pm.Leave(2)
	if !disbanded {
		t.Fatalf("expected party to disband once member count drops below 2")
	}
	if _, ok := pm.Get(p.ID); ok {
		t.Fatalf("disbanded party still retrievable from manager")
	}
	if _, ok := pm.Of(1); ok {
		t.Fatalf("remaining member still indexed to a disbanded party")
	}
}

// TestPartyLeaderAutoPromotionPrefersOnlineMember covers the §3/§8 property
// 4 invariant: "leader auto-promotion never selects an offline member while
// an online one exists".
func TestPartyLeaderAutoPromotionPrefersOnlineMember(t *testing.T) {
	pm := NewPartyManager()
	p := pm.Create(Member{ContentID: 1, Online: true})
	pm.Join(p.ID, Member{ContentID: 2, Online: false})
	pm.Join(p.ID, Member{ContentID: 3, Online: true})
	pm.Join(p.ID, Member{ContentID: 4, Online: true})

	pm.Leave(1) // leader leaves; slot 2 (offline) must be skipped

	leader, _, ok := p.Leader()
	if !ok {
		t.Fatalf("party has no leader after auto-promotion")
	}
	if !leader.Online {
		t.Fatalf("auto-promoted leader %+v is offline while an online member exists", leader)
	}
	if leader.ContentID == 2 {
		t.Fatalf("auto-promotion picked the offline member")
	}
}
