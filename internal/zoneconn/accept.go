package zoneconn

import (
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/actor"
	"github.com/kvatch/worldserver/internal/config"
	"github.com/kvatch/worldserver/internal/connstate"
	"github.com/kvatch/worldserver/internal/frame"
	"github.com/kvatch/worldserver/internal/persist"
	"github.com/kvatch/worldserver/internal/scripting"
	"github.com/kvatch/worldserver/internal/segment"
	"github.com/kvatch/worldserver/internal/world"
)

// connectionTypeKind maps the wire frame header's connection_type field to
// the handshake state machine's Kind (§4.2, §6 "Connection types on the
// header: None=0, Zone=1, Chat=2, KawariIpc=3").
func connectionTypeKind(wire uint16) connstate.Kind {
	switch wire {
	case 1:
		return connstate.KindZone
	case 2:
		return connstate.KindChat
	case 3:
		return connstate.KindCustomIpc
	default:
		return connstate.KindNone
	}
}

// Accept implements the Initial Setup task (§5 role 2): it reads the very
// first frame off a freshly accepted socket, discriminates the connection
// type from its header, and hands back a fully wired Conn with that first
// frame's segments already queued for processing — nothing the client
// sent before the type was known is lost.
func Accept(conn net.Conn, id actor.ClientId, w *world.World, db persist.WorldDatabase, scripts *scripting.Engine, netCfg config.NetworkConfig, serverID uint16, banner string, log *zap.Logger) (*Conn, error) {
	var scr *frame.Scrambler
	if netCfg.ObfuscationMode != 0 {
		scr = frame.NewScrambler(uint32(id), uint32(serverID), uint32(netCfg.ObfuscationMode))
	}

	first, err := frame.Decode(conn, frame.StandardDecompressor{}, scr)
	if err != nil {
		return nil, fmt.Errorf("read initial frame: %w", err)
	}

	kind := connectionTypeKind(first.Header.ConnectionType)
	if kind == connstate.KindNone {
		return nil, fmt.Errorf("initial frame declared connection type None")
	}

	segs, err := segment.DecodeAll(first.Payload)
	if err != nil {
		return nil, fmt.Errorf("malformed initial frame payload: %w", err)
	}

	c := New(conn, id, kind, w, db, scripts, netCfg, serverID, banner, log)
	// New derives its own fresh scrambler from the same seeds, but the
	// one used just above to decode the first frame has already advanced
	// its rolling state past frame 1; carry that exact instance forward
	// so frame 2 continues the stream instead of silently resetting it.
	c.scrambler = scr
	for _, seg := range segs {
		c.decodeSegment(seg)
	}
	return c, nil
}
