package zoneconn

import (
	"testing"

	"github.com/kvatch/worldserver/internal/ipc"
	"github.com/kvatch/worldserver/internal/world"
)

func TestTriggerKindToWorld(t *testing.T) {
	cases := []struct {
		in   ipc.TriggerKind
		want world.ClientTriggerKind
		ok   bool
	}{
		{ipc.TriggerTeleportQuery, world.TriggerTeleportQuery, true},
		{ipc.TriggerApplyWaymarkPreset, world.TriggerApplyWaymarkPreset, true},
		{ipc.TriggerExecuteGimmickJump, 0, false},
		{ipc.TriggerGimmickJumpLanded, world.TriggerGimmickJumpLanded, true},
		{ipc.TriggerPrepareCastGlamour, 0, false},
		{ipc.TriggerBeginContentsReplay, 0, false},
		{ipc.TriggerEndContentsReplay, 0, false},
	}
	for _, c := range cases {
		got, ok := triggerKindToWorld(c.in)
		if ok != c.ok {
			t.Fatalf("triggerKindToWorld(%v) ok = %v, want %v", c.in, ok, c.ok)
		}
		if ok && got != c.want {
			t.Fatalf("triggerKindToWorld(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

// itemOpKindToWorld must translate by name, not by numeric value: the wire
// and domain enums disagree on Merge/Split's positions.
func TestItemOpKindToWorldByName(t *testing.T) {
	cases := []struct {
		in   ipc.ItemOpKind
		want world.ItemOp
	}{
		{ipc.ItemOpMove, world.ItemOpMove},
		{ipc.ItemOpDiscard, world.ItemOpDiscard},
		{ipc.ItemOpSplit, world.ItemOpSplit},
		{ipc.ItemOpMerge, world.ItemOpMerge},
	}
	for _, c := range cases {
		if got := itemOpKindToWorld(c.in); got != c.want {
			t.Errorf("itemOpKindToWorld(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	if ipc.ItemOpSplit == ipc.ItemOpKind(world.ItemOpSplit) {
		t.Fatal("test fixture invalid: wire and domain Split values coincidentally match")
	}
}

func TestItemOpToWireKindRoundTrip(t *testing.T) {
	for _, op := range []world.ItemOp{world.ItemOpMove, world.ItemOpDiscard, world.ItemOpMerge, world.ItemOpSplit} {
		wire := itemOpToWireKind(op)
		if back := itemOpKindToWorld(wire); back != op {
			t.Errorf("round trip through wire kind changed %v into %v", op, back)
		}
	}
}

func TestHateEntriesToWireTranslatesFieldNames(t *testing.T) {
	list := []world.HateEntry{
		{Hater: 7, Amount: 100},
		{Hater: 9, Amount: 50},
	}
	entries, n := hateEntriesToWire(list)
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
	if entries[0].ActorID != 7 || entries[0].Amount != 100 {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].ActorID != 9 || entries[1].Amount != 50 {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestHateEntriesToWireTruncates(t *testing.T) {
	list := make([]world.HateEntry, ipc.MaxHateEntries+5)
	_, n := hateEntriesToWire(list)
	if int(n) != ipc.MaxHateEntries {
		t.Fatalf("n = %d, want %d", n, ipc.MaxHateEntries)
	}
}

func TestVisibleEntriesToWireComputesHPPercent(t *testing.T) {
	entries := []world.VisibleEntry{
		{ContentID: 1, Name: "Alice", ActorID: 42, HP: 50, MaxHP: 100},
		{ContentID: 2, Name: "Bob", HP: 0, MaxHP: 0},
	}
	wire, n := visibleEntriesToWire(entries)
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
	if wire[0].HPPercent != 50 || !wire[0].Online {
		t.Errorf("wire[0] = %+v", wire[0])
	}
	if wire[1].HPPercent != 0 || wire[1].Online {
		t.Errorf("wire[1] = %+v", wire[1])
	}
}

func TestBuildClientTriggerPlaceWaymarkPacksPosition(t *testing.T) {
	m := ipc.ClientTrigger{Kind: ipc.TriggerPlaceWaymark}
	m.Param1 = 3
	var zero world.Vec3
	got := buildClientTrigger(1, 2, world.TriggerPlaceWaymark, m)
	if got.WaymarkID != 3 {
		t.Errorf("WaymarkID = %d, want 3", got.WaymarkID)
	}
	if got.WaymarkPos != zero {
		t.Errorf("expected zero position for zero-valued params, got %+v", got.WaymarkPos)
	}
}
