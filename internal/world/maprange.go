package world

import "github.com/kvatch/worldserver/internal/actor"

// GimmickKind names the passive map feature a range's gimmick triggers
// (§4.4.3, GLOSSARY "Gimmick").
type GimmickKind uint8

const (
	GimmickNone GimmickKind = iota
	GimmickJump
)

// Gimmick is the payload of a Jump gimmick (§4.4.3).
type Gimmick struct {
	Kind GimmickKind
	To   Vec3
	SGB  uint32        // shared-group-timeline id played on the eobj
	EObj actor.ActorId // eobj whose viewers receive PlaySharedGroupTimeline
}

// MapRange is a geometric region tagged with sanctuary/duel/entrance/gimmick
// properties (GLOSSARY "Map Range").
type MapRange struct {
	Min, Max Vec3 // axis-aligned box in instance-local space

	Sanctuary bool
	Duel      bool
	Entrance  bool
	Gimmick   *Gimmick

	// Entrance ranges carry the destination instance they lead into.
	EntranceInstanceID InstanceID
}

// Contains reports whether p falls inside the range's box.
func (r *MapRange) Contains(p Vec3) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y &&
		p.Z >= r.Min.Z && p.Z <= r.Max.Z
}

// RangesAt returns every map range in the instance overlapping p (§4.4.3
// "Compute overlapping map_ranges at actor.position").
func (in *Instance) RangesAt(p Vec3) []*MapRange {
	var out []*MapRange
	for i := range in.MapRanges {
		if in.MapRanges[i].Contains(p) {
			out = append(out, &in.MapRanges[i])
		}
	}
	return out
}
