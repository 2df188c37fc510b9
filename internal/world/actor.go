package world

import "github.com/kvatch/worldserver/internal/actor"

// Kind distinguishes the three Actor variants named in §3 ("Actor. Variant
// {Player | Npc | Object}").
type Kind uint8

const (
	KindPlayer Kind = iota
	KindNpc
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "Player"
	case KindNpc:
		return "Npc"
	case KindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// MaxStatusEffects bounds the per-actor status effect array (§3 "Status
// Effects... ≤30").
const MaxStatusEffects = 30

// StatusEffect is one entry in an actor's status effect list.
type StatusEffect struct {
	EffectID uint16
	Param    uint8
	Duration float32 // seconds remaining
	Source   actor.ActorId
}

// CommonSpawn is the minimal gameplay-visible record every Actor carries
// (§3 "common sub-record"). All inter-actor gameplay reads go through this.
type CommonSpawn struct {
	Position Vec3
	Rotation float32

	HP, MaxHP uint32
	MP, MaxMP uint32

	Level    uint8
	ClassJob uint8

	ModelIDs     [10]uint32
	DisplayFlags uint32

	Name      string
	ContentID actor.ContentId
	Online    bool
}

// HateEntry records one hater's accumulated enmity against a target, used to
// build the per-target HaterList/EnmityList broadcasts (§4.4.2).
type HateEntry struct {
	Hater  actor.ActorId
	Amount uint32
}

// AIState is the coarse behavior state an NPC's pathing pass reads (§4.4.1:
// "transition Wander→Hate if any player within 15.0 units").
type AIState uint8

const (
	AIWander AIState = iota
	AIHate
)

// PathState holds the hostile-NPC pathing scratch data the const/mut passes
// in §4.4.1 operate on.
type PathState struct {
	State     AIState
	Target    actor.ActorId
	Waypoints []Vec3
	Lerp      float32
	pendingMove *Vec3 // set by the const pass, applied by the mut pass
	pendingRot  float32
}

// Actor is any living or scenery entity with a world-unique ActorId within
// its Instance (§3). NPCs/objects are allocated world-unique ids by the
// instance-local allocator; a player's ActorId always equals its
// ClientHandle's actor id.
type Actor struct {
	ID         actor.ActorId
	Kind       Kind
	ObjectType actor.ObjectTypeId
	ClientID   actor.ClientId // 0 for Npc/Object

	Common CommonSpawn

	StatusEffects [MaxStatusEffects]StatusEffect
	StatusCount   int
	StatusDirty   bool

	// Hostile-NPC pathing state; nil for Player/Object actors.
	Path *PathState
	Hate map[actor.ActorId]*HateEntry

	ExecutingGimmickJump bool
	InsideEntranceRange  map[InstanceID]bool
	InDuelingArea        bool
	RestedExpCounter     int

	instanceID InstanceID
}

// IsAlive reports whether the actor's HP is above zero.
func (a *Actor) IsAlive() bool { return a.Common.HP > 0 }

// AddHate accumulates enmity from hater against this actor (must be an NPC).
func (a *Actor) AddHate(hater actor.ActorId, amount uint32) {
	if a.Hate == nil {
		a.Hate = make(map[actor.ActorId]*HateEntry)
	}
	if e, ok := a.Hate[hater]; ok {
		e.Amount += amount
		return
	}
	a.Hate[hater] = &HateEntry{Hater: hater, Amount: amount}
}

// TopHate returns the actor with the highest accumulated hate, or Invalid
// if the hate list is empty.
func (a *Actor) TopHate() actor.ActorId {
	best := actor.Invalid
	var bestAmt uint32
	for id, e := range a.Hate {
		if !best.IsValid() || e.Amount > bestAmt {
			best, bestAmt = id, e.Amount
		}
	}
	return best
}
