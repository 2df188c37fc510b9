package world

import "github.com/kvatch/worldserver/internal/actor"

// Director is a scripted controller that owns an instanced content's state
// machine (GLOSSARY "Director"). It carries only the data the world tick
// needs to drive it; the actual script invocation happens outside the
// world task, on the dispatcher goroutine fed by the DirectorEvent sink,
// since scripts must never run inside the tick loop.
type Director struct {
	HandlerID actor.HandlerId
	Vars      map[string]int32 // director_vars surfaced to ChangeZone (§4.3)

	ElapsedTicks uint32
}

// NewDirector creates a director bound to handlerID with an empty var table.
func NewDirector(handlerID actor.HandlerId) *Director {
	return &Director{HandlerID: handlerID, Vars: make(map[string]int32)}
}

// DirectorEventKind names the script entry point a DirectorEvent asks the
// dispatcher to invoke.
type DirectorEventKind uint8

const (
	// DirectorSetup fires once when the instance is created.
	DirectorSetup DirectorEventKind = iota
	// DirectorUpdate fires every world tick while the instance lives.
	DirectorUpdate
)

// DirectorEvent is handed off the world task to the director dispatcher
// goroutine, which invokes the matching script entry point. The world never
// calls into Lua itself.
type DirectorEvent struct {
	Kind       DirectorEventKind
	Handler    actor.HandlerId
	InstanceID InstanceID
	Elapsed    float32 // seconds since the instance was created
}
