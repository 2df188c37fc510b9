package world

import (
	"time"

	"github.com/kvatch/worldserver/internal/actor"
)

// QueuedTaskData is the payload of one scheduled per-instance task (§4.4
// "Queued task execution", §9 "Queued-task scheduler"). Task kinds named in
// the spec: CastAction, LoseStatusEffect, DeadFadeOut, DeadDespawn,
// CastEventAction, FishBite.
type QueuedTaskData interface{ isQueuedTaskData() }

// CastAction is a scheduled skill/action resolution. Interruptible casts are
// cancelled when the casting actor moves (§4.4 "Queued task execution").
type CastAction struct {
	Request       uint32
	Interruptible bool
}

func (CastAction) isQueuedTaskData() {}

// LoseStatusEffect schedules the removal of a status effect from an actor.
type LoseStatusEffect struct {
	EffectID uint16
	Param    uint8
	Source   actor.ActorId
}

func (LoseStatusEffect) isQueuedTaskData() {}

// DeadFadeOut schedules the fade-to-corpse visual for a dead actor.
type DeadFadeOut struct{ ActorID actor.ActorId }

func (DeadFadeOut) isQueuedTaskData() {}

// DeadDespawn schedules permanent removal of a dead actor's corpse.
type DeadDespawn struct{ ActorID actor.ActorId }

func (DeadDespawn) isQueuedTaskData() {}

// CastEventAction schedules an event-script-triggered action against target.
type CastEventAction struct{ Target actor.ActorId }

func (CastEventAction) isQueuedTaskData() {}

// FishBite schedules a fishing bite notification.
type FishBite struct{ ActorID actor.ActorId }

func (FishBite) isQueuedTaskData() {}

// QueuedTask is one entry in an instance's ordered task list (§4.4).
type QueuedTask struct {
	FromClient actor.ClientId
	FromActor  actor.ActorId
	Point      time.Time
	Data       QueuedTaskData
}

// Schedule appends a task with an absolute deadline.
func (in *Instance) Schedule(fromClient actor.ClientId, fromActor actor.ActorId, deadline time.Time, data QueuedTaskData) {
	in.QueuedTasks = append(in.QueuedTasks, QueuedTask{
		FromClient: fromClient,
		FromActor:  fromActor,
		Point:      deadline,
		Data:       data,
	})
}

// DrainDue removes and returns every task whose deadline has passed, leaving
// the rest in place (§4.4 "the tick drains all entries with point <= now").
func (in *Instance) DrainDue(now time.Time) []QueuedTask {
	if len(in.QueuedTasks) == 0 {
		return nil
	}
	var due []QueuedTask
	remaining := in.QueuedTasks[:0]
	for _, t := range in.QueuedTasks {
		if !t.Point.After(now) {
			due = append(due, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	in.QueuedTasks = remaining
	return due
}

// CancelInterruptibleCasts cancels (removes) any queued CastAction task for
// actorID whose Interruptible flag is set (§4.4, §8 property 7: "If actor X
// is casting A with interruptible=true and X emits ActorMoved, the queued
// task for A is cancelled before it fires").
func (in *Instance) CancelInterruptibleCasts(actorID actor.ActorId) {
	remaining := in.QueuedTasks[:0]
	for _, t := range in.QueuedTasks {
		if t.FromActor == actorID {
			if cast, ok := t.Data.(CastAction); ok && cast.Interruptible {
				continue
			}
		}
		remaining = append(remaining, t)
	}
	in.QueuedTasks = remaining
}

// CancelScheduledRemoval cancels a pending LoseStatusEffect task matching
// (effectID, source) for actorID — used by ManuallyRemoveEffect (§4.4).
func (in *Instance) CancelScheduledRemoval(actorID actor.ActorId, effectID uint16, source actor.ActorId) {
	remaining := in.QueuedTasks[:0]
	for _, t := range in.QueuedTasks {
		if t.FromActor == actorID {
			if lose, ok := t.Data.(LoseStatusEffect); ok && lose.EffectID == effectID && lose.Source == source {
				continue
			}
		}
		remaining = append(remaining, t)
	}
	in.QueuedTasks = remaining
}
