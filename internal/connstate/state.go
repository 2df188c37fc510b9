// Package connstate implements the per-connection handshake and keep-alive
// state machine every Zone Connection Actor drives (§4.2): None before the
// Setup/Initialize exchange completes, then Zone, Chat, or CustomIpc for
// the remainder of the connection's life.
package connstate

import (
	"time"

	"github.com/kvatch/worldserver/internal/actor"
)

// Kind names which sibling connection a socket became after its handshake
// completed (§4.2 "None -> Zone|Chat|CustomIpc").
type Kind uint8

const (
	KindNone Kind = iota
	KindZone
	KindChat
	KindCustomIpc
)

func (k Kind) String() string {
	switch k {
	case KindZone:
		return "Zone"
	case KindChat:
		return "Chat"
	case KindCustomIpc:
		return "CustomIpc"
	default:
		return "None"
	}
}

// DefaultKeepAliveTimeout is how long a connection tolerates silence before
// it is considered dead (§4.2 keep-alive contract). Three missed
// KeepAliveRequest/Response round trips at the client's usual ~15s cadence.
const DefaultKeepAliveTimeout = 45 * time.Second

// State tracks one connection's handshake progress, keep-alive freshness,
// and logout disposition. It belongs exclusively to that connection's own
// goroutine.
type State struct {
	Kind Kind

	SetupComplete bool
	ActorID       actor.ActorId

	LastKeepAlive time.Time

	// GracefullyLoggedOut distinguishes a client-initiated logout (emits
	// Condition(LoggingOut) then LogOutComplete) from a forced disconnect,
	// which still commits player data but skips both IPCs (§4.2).
	GracefullyLoggedOut bool
}

// New creates a fresh, pre-handshake state for a connection of kind.
func New(kind Kind, now time.Time) *State {
	return &State{Kind: kind, LastKeepAlive: now}
}

// CompleteSetup records the actor id the Setup/Initialize exchange settled
// on and marks the handshake done.
func (s *State) CompleteSetup(id actor.ActorId) {
	s.ActorID = id
	s.SetupComplete = true
}

// Touch records a keep-alive round trip at now.
func (s *State) Touch(now time.Time) {
	s.LastKeepAlive = now
}

// TimedOut reports whether more than timeout has elapsed since the last
// keep-alive touch.
func (s *State) TimedOut(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastKeepAlive) > timeout
}

// BeginGracefulLogout marks the connection as closing by the client's own
// request rather than a forced drop.
func (s *State) BeginGracefulLogout() {
	s.GracefullyLoggedOut = true
}
