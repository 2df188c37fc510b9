package actor

import "fmt"

// MaxSpawnIndex bounds the number of actors one client can have resident
// in its known set simultaneously (§3: "spawn_index... UNIQUE PER
// VIEWER").
const MaxSpawnIndex = 400

// SpawnAllocator hands out small-integer spawn indices scoped to one
// viewer, reusing freed slots the way the teacher's ecs.EntityPool reuses
// generational indices — narrowed here to a plain free-list since a
// per-viewer spawn index never needs a generation to detect staleness,
// DeleteActor always precedes reuse.
type SpawnAllocator struct {
	assigned map[ActorId]uint16
	byIndex  []ActorId // index -> ActorId, zero ActorId means free
	freeList []uint16
}

func NewSpawnAllocator() *SpawnAllocator {
	return &SpawnAllocator{
		assigned: make(map[ActorId]uint16, 64),
		byIndex:  make([]ActorId, 0, 64),
	}
}

// Allocate assigns a spawn index to id, or returns the existing one.
func (a *SpawnAllocator) Allocate(id ActorId) (uint16, error) {
	if idx, ok := a.assigned[id]; ok {
		return idx, nil
	}

	var idx uint16
	if n := len(a.freeList); n > 0 {
		idx = a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
	} else {
		if len(a.byIndex) >= MaxSpawnIndex {
			return 0, fmt.Errorf("spawn index exhausted (max %d)", MaxSpawnIndex)
		}
		idx = uint16(len(a.byIndex))
		a.byIndex = append(a.byIndex, 0)
	}

	a.byIndex[idx] = id
	a.assigned[id] = idx
	return idx, nil
}

// Release frees id's spawn index for reuse.
func (a *SpawnAllocator) Release(id ActorId) {
	idx, ok := a.assigned[id]
	if !ok {
		return
	}
	delete(a.assigned, id)
	a.byIndex[idx] = 0
	a.freeList = append(a.freeList, idx)
}

// Lookup returns the spawn index currently assigned to id.
func (a *SpawnAllocator) Lookup(id ActorId) (uint16, bool) {
	idx, ok := a.assigned[id]
	return idx, ok
}

// ActorAt returns the actor currently holding spawn index idx.
func (a *SpawnAllocator) ActorAt(idx uint16) (ActorId, bool) {
	if int(idx) >= len(a.byIndex) {
		return 0, false
	}
	id := a.byIndex[idx]
	return id, id != 0
}

// Known reports whether id currently has an assigned spawn index.
func (a *SpawnAllocator) Known(id ActorId) bool {
	_, ok := a.assigned[id]
	return ok
}

// Len returns the number of actors currently resident in this viewer's
// known set.
func (a *SpawnAllocator) Len() int {
	return len(a.assigned)
}

// Reset clears every assignment, used when a ChangeZone invalidates a
// viewer's entire known set at once rather than one DeleteActor at a time.
func (a *SpawnAllocator) Reset() {
	a.assigned = make(map[ActorId]uint16, 64)
	a.byIndex = a.byIndex[:0]
	a.freeList = a.freeList[:0]
}
