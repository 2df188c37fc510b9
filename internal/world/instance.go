package world

import "github.com/kvatch/worldserver/internal/actor"

// InstanceID identifies one running copy of a zone (§3 "Instance").
type InstanceID uint32

// Instance is a runtime container per (zone_id, optional
// content_finder_condition_id). The world task exclusively owns every
// Instance and therefore every Actor inside it (§3, §5).
type Instance struct {
	ID                       InstanceID
	ZoneID                   uint16
	ContentFinderConditionID uint16 // 0 for the public instance of a zone

	Actors map[actor.ActorId]*Actor

	Navmesh *Navmesh

	Director *Director

	QueuedTasks []QueuedTask

	MapRanges []MapRange

	// insideEntrance tracks, per player, whether they were already inside an
	// entrance-tagged map range last tick (§4.4.3 "track per-player
	// inside_instance_exit").
	insideEntrance map[actor.ActorId]bool

	// visibleTo tracks, per viewing player, the set of other actors
	// currently spawned for them, so the visibility pass only emits
	// ActorSpawn/DeleteActor on a walked_in/walked_out transition
	// (§4.4 step 4, §8 properties 2-3).
	visibleTo map[actor.ActorId]map[actor.ActorId]bool

	restedExpTickCounter int // mod 21, §4.4 step 8

	nextLocalID uint32
}

// NewInstance creates an empty instance. cfcID is 0 for a zone's public
// instance.
func NewInstance(id InstanceID, zoneID, cfcID uint16) *Instance {
	return &Instance{
		ID:                       id,
		ZoneID:                   zoneID,
		ContentFinderConditionID: cfcID,
		Actors:                   make(map[actor.ActorId]*Actor, 64),
		insideEntrance:           make(map[actor.ActorId]bool),
		visibleTo:                make(map[actor.ActorId]map[actor.ActorId]bool),
	}
}

// IsPublic reports whether this is the non-instanced public copy of its zone.
func (in *Instance) IsPublic() bool { return in.ContentFinderConditionID == 0 }

// nextActorID allocates a world-unique, instance-local ActorId for an NPC or
// Object (§3: "NPCs and objects have world-unique ActorId drawn from an
// instance-local allocator").
func (in *Instance) nextActorID() actor.ActorId {
	for {
		in.nextLocalID++
		id := actor.ActorId(in.nextLocalID)
		if !id.IsValid() {
			continue
		}
		if _, exists := in.Actors[id]; !exists {
			return id
		}
	}
}

// Insert adds an actor to this instance, enforcing the "at most one instance
// at a time" invariant is the caller's job (the World handlers call Remove
// on the old instance first).
func (in *Instance) Insert(a *Actor) {
	a.instanceID = in.ID
	in.Actors[a.ID] = a
}

// Remove takes an actor out of this instance.
func (in *Instance) Remove(id actor.ActorId) *Actor {
	a, ok := in.Actors[id]
	if !ok {
		return nil
	}
	delete(in.Actors, id)
	delete(in.insideEntrance, id)
	delete(in.visibleTo, id)
	for _, seen := range in.visibleTo {
		delete(seen, id)
	}
	return a
}

// SpawnNpc allocates an ActorId and inserts a new NPC actor.
func (in *Instance) SpawnNpc(objType actor.ObjectTypeId, common CommonSpawn) *Actor {
	a := &Actor{
		ID:         in.nextActorID(),
		Kind:       KindNpc,
		ObjectType: objType,
		Common:     common,
		Path:       &PathState{State: AIWander},
	}
	in.Insert(a)
	return a
}

// SpawnObject allocates an ActorId and inserts a new scenery Object actor.
func (in *Instance) SpawnObject(objType actor.ObjectTypeId, common CommonSpawn) *Actor {
	a := &Actor{
		ID:         in.nextActorID(),
		Kind:       KindObject,
		ObjectType: objType,
		Common:     common,
	}
	in.Insert(a)
	return a
}
