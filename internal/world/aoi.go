package world

import "github.com/kvatch/worldserver/internal/actor"

// AOIGrid implements a cell-based area-of-interest index over one instance's
// actors (§4.4.4 "Visibility"). Cell size is chosen so a 3x3 neighbourhood
// fully covers the visibility range configured for the world (AOICellSize in
// internal/config). Accessed only from the world task goroutine — no locks.
type cellKey struct {
	cx, cz int32
}

func toCellCoord(v float32, cellSize float32) int32 {
	if v < 0 {
		return int32(v/cellSize) - 1
	}
	return int32(v / cellSize)
}

// AOIGrid tracks which actors occupy which ground-plane cell of one
// instance, keyed by world-unique ActorId rather than a session/connection
// identifier (§3: actors, not connections, are the unit of visibility).
type AOIGrid struct {
	cellSize float32
	cells    map[cellKey]map[actor.ActorId]struct{}
	posOf    map[actor.ActorId]Vec3
}

// NewAOIGrid creates a grid with the given cell size (config WorldConfig
// AOICellSize).
func NewAOIGrid(cellSize float32) *AOIGrid {
	if cellSize <= 0 {
		cellSize = 50
	}
	return &AOIGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[actor.ActorId]struct{}),
		posOf:    make(map[actor.ActorId]Vec3),
	}
}

func (g *AOIGrid) key(p Vec3) cellKey {
	return cellKey{cx: toCellCoord(p.X, g.cellSize), cz: toCellCoord(p.Z, g.cellSize)}
}

// Add places an actor into the grid at p.
func (g *AOIGrid) Add(id actor.ActorId, p Vec3) {
	k := g.key(p)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[actor.ActorId]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
	g.posOf[id] = p
}

// Remove takes an actor out of the grid.
func (g *AOIGrid) Remove(id actor.ActorId) {
	p, ok := g.posOf[id]
	if !ok {
		return
	}
	k := g.key(p)
	if cell := g.cells[k]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
	delete(g.posOf, id)
}

// Move updates an actor's cell when its position changes. Returns true if
// the actor changed cells (callers use this to gate an expensive full
// nearby-rescan).
func (g *AOIGrid) Move(id actor.ActorId, newPos Vec3) bool {
	old, ok := g.posOf[id]
	if !ok {
		g.Add(id, newPos)
		return true
	}
	if g.key(old) == g.key(newPos) {
		g.posOf[id] = newPos
		return false
	}
	g.Remove(id)
	g.Add(id, newPos)
	return true
}

// Nearby returns every actor id in the 3x3 cell neighbourhood around p,
// including those exactly at a cell boundary. Callers apply fine-grained
// distance filtering on top (§4.4.4).
func (g *AOIGrid) Nearby(p Vec3) []actor.ActorId {
	center := g.key(p)
	var result []actor.ActorId
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			k := cellKey{cx: center.cx + dx, cz: center.cz + dz}
			for id := range g.cells[k] {
				result = append(result, id)
			}
		}
	}
	return result
}
