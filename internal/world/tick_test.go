package world

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/config"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	cfg := config.WorldConfig{
		TickRate:    500 * time.Millisecond,
		AOICellSize: 50.0,
		AggroRange:  15.0,
		LeashRange:  10.0,
	}
	return NewWorld(cfg, config.FilesystemConfig{}, zap.NewNop(), 16)
}

func newTestInstance(w *World, id InstanceID) *Instance {
	in := NewInstance(id, 1, 0)
	w.instances[id] = in
	w.aoi[id] = NewAOIGrid(float32(w.cfg.AOICellSize))
	return in
}

// TestRestedExpCadence covers spec.md §8 property 8: "Over N ticks, a
// player standing in a sanctuary receives exactly floor(N/21)+1
// IncrementRestedExp messages."
func TestRestedExpCadence(t *testing.T) {
	w := newTestWorld(t)
	in := newTestInstance(w, 1)

	p := &Actor{ID: 100, Kind: KindPlayer, ClientID: 1, Common: CommonSpawn{Position: Vec3{}}}
	in.Insert(p)
	in.MapRanges = []MapRange{{Min: Vec3{X: -10, Y: -10, Z: -10}, Max: Vec3{X: 10, Y: 10, Z: 10}, Sanctuary: true}}

	out := make(chan FromServer, 1000)
	w.Register(1, out)

	const n = 100
	for i := 0; i < n; i++ {
		w.tickMapRangeTriggers(in)
		in.restedExpTickCounter = (in.restedExpTickCounter + 1) % restedExpCycle
	}

	count := 0
	for {
		select {
		case msg := <-out:
			if _, ok := msg.(IncrementRestedExp); ok {
				count++
			}
		default:
			goto done
		}
	}
done:
	want := n/restedExpCycle + 1
	if count != want {
		t.Fatalf("expected %d IncrementRestedExp messages over %d ticks, got %d", want, n, count)
	}
}

// TestConditionChurnTracksDuelRanges covers spec.md §8 property 5:
// "Conditions.InDuelingArea reflects whether any overlapping map range
// currently has duel=true."
func TestConditionChurnTracksDuelRanges(t *testing.T) {
	w := newTestWorld(t)
	in := newTestInstance(w, 1)

	p := &Actor{ID: 100, Kind: KindPlayer, ClientID: 1, Common: CommonSpawn{Position: Vec3{X: -100}}}
	in.Insert(p)
	in.MapRanges = []MapRange{{Min: Vec3{X: -10, Y: -10, Z: -10}, Max: Vec3{X: 10, Y: 10, Z: 10}, Duel: true}}

	out := make(chan FromServer, 16)
	w.Register(1, out)

	// Outside the duel range: no condition flip expected.
	w.tickMapRangeTriggers(in)
	if p.InDuelingArea {
		t.Fatalf("InDuelingArea true while outside any duel range")
	}
	drainConditionChanged(t, out, 0)

	// Walk into the duel range.
	p.Common.Position = Vec3{}
	w.tickMapRangeTriggers(in)
	if !p.InDuelingArea {
		t.Fatalf("InDuelingArea false while standing in a duel range")
	}
	drainConditionChanged(t, out, 1)

	// Staying inside must not re-fire the condition change.
	w.tickMapRangeTriggers(in)
	drainConditionChanged(t, out, 0)

	// Walk back out.
	p.Common.Position = Vec3{X: -100}
	w.tickMapRangeTriggers(in)
	if p.InDuelingArea {
		t.Fatalf("InDuelingArea true after leaving the duel range")
	}
	drainConditionChanged(t, out, 1)
}

func drainConditionChanged(t *testing.T, out chan FromServer, want int) {
	t.Helper()
	got := 0
	for {
		select {
		case msg := <-out:
			if _, ok := msg.(ConditionChanged); ok {
				got++
			}
		default:
			if got != want {
				t.Fatalf("expected %d ConditionChanged messages, got %d", want, got)
			}
			return
		}
	}
}

// TestInterruptibleCastCancelledOnMove covers spec.md §8 property 7: "If
// actor X is casting A with interruptible=true and X emits ActorMoved, the
// queued task for A is cancelled before it fires."
func TestInterruptibleCastCancelledOnMove(t *testing.T) {
	w := newTestWorld(t)
	in := newTestInstance(w, 1)

	a := &Actor{ID: 100, Kind: KindPlayer, ClientID: 1, Common: CommonSpawn{Position: Vec3{}}}
	in.Insert(a)

	in.Schedule(1, 100, time.Now().Add(time.Hour), CastAction{Request: 1, Interruptible: true})
	in.Schedule(1, 100, time.Now().Add(time.Hour), CastAction{Request: 2, Interruptible: false})

	w.onActorMoved(ActorMoved{ActorID: 100, Position: Vec3{X: 5}, Rotation: 0})

	if len(in.QueuedTasks) != 1 {
		t.Fatalf("expected 1 surviving queued task, got %d", len(in.QueuedTasks))
	}
	cast, ok := in.QueuedTasks[0].Data.(CastAction)
	if !ok || cast.Interruptible {
		t.Fatalf("interruptible cast survived move cancellation: %+v", in.QueuedTasks[0].Data)
	}
}

// TestVisibilitySymmetryWalkInWalkOut covers spec.md §8 property 3:
// "If viewer A currently sees B, then A has an allocated spawn slot for B
// iff B is in A's range and still present in A's instance." This exercises
// the world-side half (tickVisibility emits spawn/despawn on transition
// only); the per-viewer slot allocation itself lives in internal/zoneconn.
func TestVisibilitySymmetryWalkInWalkOut(t *testing.T) {
	w := newTestWorld(t)
	in := newTestInstance(w, 1)

	self := &Actor{ID: 100, Kind: KindPlayer, ClientID: 1, Common: CommonSpawn{Position: Vec3{}}}
	other := &Actor{ID: 200, Kind: KindPlayer, ClientID: 2, Common: CommonSpawn{Position: Vec3{X: 1000}}}
	in.Insert(self)
	in.Insert(other)
	w.aoi[1].Add(100, self.Common.Position)
	w.aoi[1].Add(200, other.Common.Position)

	out := make(chan FromServer, 16)
	w.Register(1, out)

	w.tickVisibility(in)
	if in.visibleTo[100][200] {
		t.Fatalf("other marked visible while far out of range")
	}
	drainSpawnDelete(t, out, 0, 0)

	other.Common.Position = Vec3{X: 1}
	w.aoi[1].Move(200, other.Common.Position)
	w.tickVisibility(in)
	if !in.visibleTo[100][200] {
		t.Fatalf("other not marked visible after walking in range")
	}
	drainSpawnDelete(t, out, 1, 0)

	// No transition: neither spawn nor despawn should re-fire.
	w.tickVisibility(in)
	drainSpawnDelete(t, out, 0, 0)

	other.Common.Position = Vec3{X: 1000}
	w.aoi[1].Move(200, other.Common.Position)
	w.tickVisibility(in)
	if in.visibleTo[100][200] {
		t.Fatalf("other still marked visible after walking out of range")
	}
	drainSpawnDelete(t, out, 0, 1)
}

func drainSpawnDelete(t *testing.T, out chan FromServer, wantSpawn, wantDelete int) {
	t.Helper()
	spawn, del := 0, 0
	for {
		select {
		case msg := <-out:
			switch msg.(type) {
			case ActorSpawn:
				spawn++
			case DeleteActor:
				del++
			}
		default:
			if spawn != wantSpawn || del != wantDelete {
				t.Fatalf("expected spawn=%d delete=%d, got spawn=%d delete=%d", wantSpawn, wantDelete, spawn, del)
			}
			return
		}
	}
}
