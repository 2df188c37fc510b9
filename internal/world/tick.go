package world

import (
	"time"

	"github.com/kvatch/worldserver/internal/actor"
)

// restedExpCycle is the tick-count modulus for the sanctuary rested-exp
// cadence (§4.4 step 8: "mod 21, i.e. 10.5s cycle on a 500ms tick"). The
// rate itself is an explicitly non-authentic placeholder (§9).
const restedExpCycle = 21

// tick runs server_logic_tick over every instance, then drains each
// instance's queued tasks whose deadline has passed (§4.4).
func (w *World) tick(now time.Time) {
	for _, in := range w.instances {
		w.tickInstance(in, now)
	}
}

func (w *World) tickInstance(in *Instance, now time.Time) {
	w.tickHostilePathing(in)
	w.tickHateLists(in)
	w.tickMapRangeTriggers(in)
	w.tickVisibility(in)
	w.tickRegen(in)
	in.EnsureNavmesh(w.navBinary, w.navDir, w.log)
	in.PollNavmesh()
	w.tickDirector(in, now)
	w.drainQueuedTasks(in, now)

	in.restedExpTickCounter = (in.restedExpTickCounter + 1) % restedExpCycle
}

// tickHostilePathing runs the const/mut two-pass hostile NPC pathing
// update (§4.4 step 1).
func (w *World) tickHostilePathing(in *Instance) {
	type pendingMove struct {
		actor    actor.ActorId
		position Vec3
		rotation float32
	}
	var moves []pendingMove

	// Const pass: compute next lerped position/rotation for every hating
	// NPC with an active path, without mutating anything yet.
	for id, a := range in.Actors {
		if a.Kind != KindNpc || a.Path == nil || a.Path.State != AIHate || !a.Path.Target.IsValid() {
			continue
		}
		if len(a.Path.Waypoints) == 0 {
			continue
		}
		target, ok := in.Actors[a.Path.Target]
		if !ok {
			continue
		}
		next := Lerp(a.Common.Position, a.Path.Waypoints[0], a.Path.Lerp)
		rot := HeadingTo(a.Common.Position, target.Common.Position)
		moves = append(moves, pendingMove{actor: id, position: next, rotation: rot})
	}

	// Mut pass: advance lerp, pop consumed waypoints, transition
	// Wander->Hate on proximity, recompute path if the target strayed
	// too far, then apply the const pass's computed pose. The aggro scan
	// consults the AOI grid rather than every actor in the instance: the
	// cell size is at least the aggro range, so the 3x3 neighbourhood
	// covers it.
	g := w.aoi[in.ID]
	for _, a := range in.Actors {
		if a.Kind != KindNpc || a.Path == nil {
			continue
		}
		if a.Path.State == AIWander && g != nil {
			for _, nearID := range g.Nearby(a.Common.Position) {
				p, ok := in.Actors[nearID]
				if !ok || p.Kind != KindPlayer {
					continue
				}
				if DistanceXZ(a.Common.Position, p.Common.Position) <= float32(w.cfg.AggroRange) {
					a.Path.State = AIHate
					a.Path.Target = p.ID
					break
				}
			}
		}

		a.Path.Lerp += 0.2
		if a.Path.Lerp >= 1.0 && len(a.Path.Waypoints) > 0 {
			a.Path.Waypoints = a.Path.Waypoints[1:]
			a.Path.Lerp = 0
		}

		if a.Path.State == AIHate && a.Path.Target.IsValid() {
			if target, ok := in.Actors[a.Path.Target]; ok {
				if len(a.Path.Waypoints) == 0 && DistanceXZ(a.Common.Position, target.Common.Position) > float32(w.cfg.LeashRange) {
					a.Path.Waypoints = []Vec3{target.Common.Position}
					a.Path.Lerp = 0
				}
			}
		}
	}

	for _, mv := range moves {
		a := in.Actors[mv.actor]
		a.Common.Position = mv.position
		a.Common.Rotation = mv.rotation
		if g != nil {
			g.Move(mv.actor, mv.position)
		}
	}

	for _, mv := range moves {
		w.broadcast(in.ID, ActorMove{Source: mv.actor, Position: mv.position, Rotation: mv.rotation})
	}
}

// tickHateLists builds a target -> [hater] map and emits HaterList +
// EnmityList for each NPC target with any hate (§4.4 step 2).
func (w *World) tickHateLists(in *Instance) {
	for _, a := range in.Actors {
		if a.Kind != KindNpc || len(a.Hate) == 0 {
			continue
		}
		list := make([]HateEntry, 0, len(a.Hate))
		for _, e := range a.Hate {
			list = append(list, *e)
		}
		w.broadcast(in.ID, HaterList{Target: a.ID, List: list})
		w.broadcast(in.ID, EnmityList{Target: a.ID, List: list})
	}
}

// tickMapRangeTriggers implements §4.4 step 3 for every player actor.
func (w *World) tickMapRangeTriggers(in *Instance) {
	for _, a := range in.Actors {
		if a.Kind != KindPlayer {
			continue
		}
		ranges := in.RangesAt(a.Common.Position)

		inDuel := false
		insideEntranceNow := false

		for _, r := range ranges {
			if r.Sanctuary && in.restedExpTickCounter == 0 {
				w.send(a.ClientID, IncrementRestedExp{})
			}
			if r.Gimmick != nil && r.Gimmick.Kind == GimmickJump && !a.ExecutingGimmickJump {
				w.send(a.ClientID, ExecuteGimmickJump{To: r.Gimmick.To, Kind: r.Gimmick.Kind})
				w.broadcast(in.ID, PlaySharedGroupTimeline{EObj: r.Gimmick.EObj, Timeline: r.Gimmick.SGB})
				a.ExecutingGimmickJump = true
			}
			if r.Entrance {
				insideEntranceNow = true
				if !in.insideEntrance[a.ID] {
					w.send(a.ClientID, EnteredInstanceEntranceRange{InstanceID: r.EntranceInstanceID})
				}
			}
			if r.Duel {
				inDuel = true
			}
		}

		in.insideEntrance[a.ID] = insideEntranceNow

		if inDuel != a.InDuelingArea {
			a.InDuelingArea = inDuel
			w.send(a.ClientID, ConditionChanged{Condition: ConditionInDuelingArea, Value: inDuel})
		}
	}
}

// tickVisibility implements §4.4 step 4's walked-in/walked-out spawn
// accounting for every player in the instance: a spawn or despawn is only
// emitted on the range transition, never every tick (§8 properties 2-3).
// Walk-in candidates come from the AOI grid's 3x3 neighbourhood (the cell
// size is at least the visibility range, so nothing in range can be
// missed); walk-outs only need the viewer's own seen set, which also
// catches actors that left the instance entirely.
func (w *World) tickVisibility(in *Instance) {
	const visibilityRange = 50.0
	g := w.aoi[in.ID]
	if g == nil {
		return
	}
	for _, self := range in.Actors {
		if self.Kind != KindPlayer {
			continue
		}
		seen := in.visibleTo[self.ID]
		if seen == nil {
			seen = make(map[actor.ActorId]bool)
			in.visibleTo[self.ID] = seen
		}

		for _, id := range g.Nearby(self.Common.Position) {
			if id == self.ID || seen[id] {
				continue
			}
			other, ok := in.Actors[id]
			if !ok {
				continue
			}
			if DistanceXZ(self.Common.Position, other.Common.Position) <= visibilityRange {
				w.send(self.ClientID, ActorSpawn{Snapshot: *other})
				seen[id] = true
			}
		}

		for id := range seen {
			other, stillPresent := in.Actors[id]
			if stillPresent && DistanceXZ(self.Common.Position, other.Common.Position) <= visibilityRange {
				continue
			}
			w.send(self.ClientID, DeleteActor{ActorID: id})
			delete(seen, id)
		}
	}
}

// tickRegen grows HP/MP toward max by a flat, explicitly non-authentic
// 10% of max per tick, broadcasting on change (§4.4 step 5, §9).
func (w *World) tickRegen(in *Instance) {
	for _, a := range in.Actors {
		if !a.IsAlive() {
			continue
		}
		changed := false
		if a.Common.HP < a.Common.MaxHP {
			a.Common.HP += a.Common.MaxHP / 10
			if a.Common.HP > a.Common.MaxHP {
				a.Common.HP = a.Common.MaxHP
			}
			changed = true
		}
		if a.Common.MP < a.Common.MaxMP {
			a.Common.MP += a.Common.MaxMP / 10
			if a.Common.MP > a.Common.MaxMP {
				a.Common.MP = a.Common.MaxMP
			}
			changed = true
		}
		if changed {
			w.broadcast(in.ID, UpdateHpMpTp{ActorID: a.ID, HP: a.Common.HP, MaxHP: a.Common.MaxHP, MP: a.Common.MP, MaxMP: a.Common.MaxMP})
		}
	}
}

// tickDirector advances a director's clock and posts an update event to
// the dispatcher goroutine, which performs the actual script call outside
// the world task (§4.4 step 7; script invocations never run inside the
// tick loop).
func (w *World) tickDirector(in *Instance, now time.Time) {
	if in.Director == nil {
		return
	}
	in.Director.ElapsedTicks++
	w.postDirectorEvent(DirectorEvent{
		Kind:       DirectorUpdate,
		Handler:    in.Director.HandlerID,
		InstanceID: in.ID,
		Elapsed:    float32(in.Director.ElapsedTicks) * float32(w.cfg.TickRate.Seconds()),
	})
}

// drainQueuedTasks executes every queued task whose deadline has passed
// (§4.4 "Queued task execution").
func (w *World) drainQueuedTasks(in *Instance, now time.Time) {
	for _, t := range in.DrainDue(now) {
		switch data := t.Data.(type) {
		case DeadFadeOut:
			w.broadcast(in.ID, DeleteActor{ActorID: data.ActorID})
		case DeadDespawn:
			in.Remove(data.ActorID)
			if g := w.aoi[in.ID]; g != nil {
				g.Remove(data.ActorID)
			}
			w.broadcast(in.ID, DeleteActor{ActorID: data.ActorID})
		case LoseStatusEffect:
			if a, ok := in.Actors[t.FromActor]; ok {
				removeStatusEffect(a, data.EffectID, data.Source)
			}
		case CastAction, CastEventAction, FishBite:
			// Resolution of these task kinds is delegated to the Script
			// Host and combat systems layered on top of this core.
		}
	}
}
