package world

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

// Navmesh is the loaded pathing data for one instance. The navmesh itself is
// produced by an external subprocess (§4.4.6, §1 "the navmesh generator
// subprocess" — a black-box component); this type only tracks whether it has
// been requested/produced and hands back straight-line waypoints, which is
// the only pathing capability this server implements natively.
type Navmesh struct {
	Path    string
	Loaded  bool
	Pending bool
}

// EnsureNavmesh spawns the navmesh generator subprocess for a zone if no
// navmesh is loaded or pending yet (§4.4.6). Failure is logged and leaves the
// instance without monster pathing rather than breaking players (§7).
func (in *Instance) EnsureNavmesh(navBinary, navDir string, log *zap.Logger) {
	if in.Navmesh == nil {
		in.Navmesh = &Navmesh{Path: filepath.Join(navDir, zoneNavFilename(in.ZoneID))}
	}
	nm := in.Navmesh
	if nm.Loaded || nm.Pending {
		return
	}
	if _, err := os.Stat(nm.Path); err == nil {
		nm.Loaded = true
		return
	}
	if navBinary == "" {
		return
	}
	nm.Pending = true
	cmd := exec.Command(navBinary, "--zone-id", strconv.Itoa(int(in.ZoneID)), "--out", nm.Path)
	if err := cmd.Start(); err != nil {
		log.Warn("navmesh generation failed to start", zap.Uint16("zone_id", in.ZoneID), zap.Error(err))
		nm.Pending = false
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Warn("navmesh generator exited with error", zap.Uint16("zone_id", in.ZoneID), zap.Error(err))
		}
	}()
}

// PollNavmesh checks whether a pending navmesh file has appeared on disk
// (§4.4.6 "next ticks poll for the produced file and load it").
func (in *Instance) PollNavmesh() {
	nm := in.Navmesh
	if nm == nil || nm.Loaded || !nm.Pending {
		return
	}
	if _, err := os.Stat(nm.Path); err == nil {
		nm.Loaded = true
		nm.Pending = false
	}
}

func zoneNavFilename(zoneID uint16) string { return strconv.Itoa(int(zoneID)) + ".nvm" }
