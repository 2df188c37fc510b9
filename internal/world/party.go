package world

import "github.com/kvatch/worldserver/internal/actor"

// MaxPartyMembers bounds the fixed-capacity party member array (§3).
const MaxPartyMembers = 8

// PartyID identifies a running party.
type PartyID uint32

// Member is one slot in a Party's fixed-capacity array (§3). A zero-value
// Member is an empty slot.
type Member struct {
	ActorID      actor.ActorId
	ZoneClientID actor.ClientId // 0 while offline
	ChatClientID actor.ClientId // 0 while offline
	ContentID    actor.ContentId
	AccountID    actor.AccountId
	Name         string
	HomeWorld    uint16
	Online       bool
}

func (m Member) isEmpty() bool { return m.ContentID == 0 }

// Party is a fixed-capacity group of players sharing a chat channel and a
// leader (§3, GLOSSARY "Party").
type Party struct {
	ID      PartyID
	Members [MaxPartyMembers]Member

	LeaderSlot int // index into Members

	ChatChannelID uint32

	// StrategyBoardHostContentID is set by the first real-time
	// ShareStrategyBoard update and names the host for the remainder of
	// that real-time session (§4.4 "Strategy-board sharing").
	StrategyBoardHostContentID actor.ContentId
	StrategyBoardRealtime      bool
}

// MemberCount returns the number of occupied slots (§8 property 4:
// "get_member_count ≤ NUM_ENTRIES").
func (p *Party) MemberCount() int {
	n := 0
	for _, m := range p.Members {
		if !m.isEmpty() {
			n++
		}
	}
	return n
}

// Leader returns the current leader member and its slot, or (Member{}, -1,
// false) if the party has no leader (shouldn't happen once non-empty).
func (p *Party) Leader() (Member, int, bool) {
	if p.LeaderSlot < 0 || p.LeaderSlot >= MaxPartyMembers || p.Members[p.LeaderSlot].isEmpty() {
		return Member{}, -1, false
	}
	return p.Members[p.LeaderSlot], p.LeaderSlot, true
}

// FindSlot returns the slot index holding contentID, or -1.
func (p *Party) FindSlot(contentID actor.ContentId) int {
	for i, m := range p.Members {
		if !m.isEmpty() && m.ContentID == contentID {
			return i
		}
	}
	return -1
}

// AddMember inserts m into the first free slot. Returns false if the party
// is full.
func (p *Party) AddMember(m Member) bool {
	for i := range p.Members {
		if p.Members[i].isEmpty() {
			p.Members[i] = m
			return true
		}
	}
	return false
}

// RemoveMember clears contentID's slot to its zero value (§3 invariant:
// "removing a member clears it to default"). If the removed member was
// leader, the next online member is auto-promoted — never an offline one
// while an online one exists (§8 property 4). Returns whether the party
// should now disband (member count < 2).
func (p *Party) RemoveMember(contentID actor.ContentId) (shouldDisband bool) {
	slot := p.FindSlot(contentID)
	if slot < 0 {
		return p.MemberCount() < 2
	}
	wasLeader := slot == p.LeaderSlot
	p.Members[slot] = Member{}

	if wasLeader {
		p.promoteNextOnline()
	}
	return p.MemberCount() < 2
}

// promoteNextOnline sets LeaderSlot to the first online member, falling
// back to the first occupied slot only if nobody is online.
func (p *Party) promoteNextOnline() {
	fallback := -1
	for i, m := range p.Members {
		if m.isEmpty() {
			continue
		}
		if fallback < 0 {
			fallback = i
		}
		if m.Online {
			p.LeaderSlot = i
			return
		}
	}
	if fallback >= 0 {
		p.LeaderSlot = fallback
	}
}

// SetLeader transfers leadership to contentID if it is a current member.
func (p *Party) SetLeader(contentID actor.ContentId) bool {
	slot := p.FindSlot(contentID)
	if slot < 0 {
		return false
	}
	p.LeaderSlot = slot
	return true
}

// SetOnline updates a member's online/offline flag and clears its transient
// client ids on the way offline (§4.4 "PartyMemberOffline").
func (p *Party) SetOnline(contentID actor.ContentId, online bool, zoneClient, chatClient actor.ClientId) {
	slot := p.FindSlot(contentID)
	if slot < 0 {
		return
	}
	p.Members[slot].Online = online
	if online {
		p.Members[slot].ZoneClientID = zoneClient
		p.Members[slot].ChatClientID = chatClient
	} else {
		p.Members[slot].ZoneClientID = 0
		p.Members[slot].ChatClientID = 0
	}
}

// VisibleEntry is a PartyMemberEntry rendered for a particular viewer: an
// offline member or one in a different zone has its gameplay fields zeroed
// (§4.4 "hiding fields of offline members or members in other zones by
// zeroing their actor_id, classjob, HP, MP").
type VisibleEntry struct {
	ContentID actor.ContentId
	Name      string
	HomeWorld uint16
	ActorID   actor.ActorId
	ClassJob  uint8
	HP, MaxHP uint32
	MP, MaxMP uint32
}

// VisibleEntries builds the PartyMemberEntry list a PartyList/PartyUpdate
// broadcast carries, hiding gameplay fields for members not in viewerZone or
// currently offline. lookup resolves a member's live Actor (nil if not
// resident in viewerZone).
func (p *Party) VisibleEntries(viewerZone InstanceID, lookup func(actor.ActorId) (*Actor, InstanceID, bool)) []VisibleEntry {
	entries := make([]VisibleEntry, 0, MaxPartyMembers)
	for _, m := range p.Members {
		if m.isEmpty() {
			continue
		}
		e := VisibleEntry{ContentID: m.ContentID, Name: m.Name, HomeWorld: m.HomeWorld}
		if m.Online {
			if a, zone, ok := lookup(m.ActorID); ok && zone == viewerZone {
				e.ActorID = a.ID
				e.ClassJob = a.Common.ClassJob
				e.HP, e.MaxHP = a.Common.HP, a.Common.MaxHP
				e.MP, e.MaxMP = a.Common.MP, a.Common.MaxMP
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// PartyManager owns every running Party, keyed by PartyID, plus the
// ContentId -> PartyID index used by the world task's party-op handlers.
type PartyManager struct {
	parties map[PartyID]*Party
	byChar  map[actor.ContentId]PartyID
	nextID  PartyID
}

// NewPartyManager creates an empty party registry.
func NewPartyManager() *PartyManager {
	return &PartyManager{
		parties: make(map[PartyID]*Party),
		byChar:  make(map[actor.ContentId]PartyID),
	}
}

// Create starts a new party with leader as its sole, leading member.
func (m *PartyManager) Create(leader Member) *Party {
	m.nextID++
	p := &Party{ID: m.nextID}
	p.Members[0] = leader
	p.LeaderSlot = 0
	m.parties[p.ID] = p
	m.byChar[leader.ContentID] = p.ID
	return p
}

// Get returns a party by id.
func (m *PartyManager) Get(id PartyID) (*Party, bool) {
	p, ok := m.parties[id]
	return p, ok
}

// Of returns the party a character belongs to, if any.
func (m *PartyManager) Of(contentID actor.ContentId) (*Party, bool) {
	id, ok := m.byChar[contentID]
	if !ok {
		return nil, false
	}
	p, ok := m.parties[id]
	return p, ok
}

// Join adds member to party id, indexing it by ContentId.
func (m *PartyManager) Join(id PartyID, member Member) bool {
	p, ok := m.parties[id]
	if !ok || !p.AddMember(member) {
		return false
	}
	m.byChar[member.ContentID] = id
	return true
}

// Leave removes contentID from its party, disbanding the party (and
// clearing the index for every remaining member) if membership drops below
// 2 (§3 invariant, §8 property 4). Returns the party (possibly already
// removed from the manager) and whether it disbanded.
func (m *PartyManager) Leave(contentID actor.ContentId) (*Party, bool) {
	id, ok := m.byChar[contentID]
	if !ok {
		return nil, false
	}
	p := m.parties[id]
	delete(m.byChar, contentID)
	disband := p.RemoveMember(contentID)
	if disband {
		m.Disband(id)
	}
	return p, disband
}

// Disband removes a party entirely, clearing the ContentId index for every
// remaining member.
func (m *PartyManager) Disband(id PartyID) {
	p, ok := m.parties[id]
	if !ok {
		return
	}
	for _, mem := range p.Members {
		if !mem.isEmpty() {
			delete(m.byChar, mem.ContentID)
		}
	}
	delete(m.parties, id)
}
