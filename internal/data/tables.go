// Package data loads the static zone and content-finder tables the world
// core consults when creating instances: which zone a content finder
// condition runs in, where its entrance sits, a zone's ambient weather,
// and the tagged map ranges (sanctuary/duel/entrance/gimmick) inside it.
// Tables are YAML files served through the asset resolver so unpacked
// overrides shadow the packed defaults like any other asset.
package data

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kvatch/worldserver/internal/asset"
)

const (
	zonesPath    = "tables/zones.yaml"
	contentsPath = "tables/content_finder_conditions.yaml"
)

// Vec3 is a plain coordinate triple as it appears in table files.
type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// GimmickDef is the optional jump-gimmick payload of a map range.
type GimmickDef struct {
	To   Vec3   `yaml:"to"`
	SGB  uint32 `yaml:"sgb"`
	EObj uint32 `yaml:"eobj"`
}

// MapRangeDef is one tagged axis-aligned box inside a zone.
type MapRangeDef struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`

	Sanctuary bool `yaml:"sanctuary,omitempty"`
	Duel      bool `yaml:"duel,omitempty"`
	Entrance  bool `yaml:"entrance,omitempty"`

	EntranceInstanceID uint32 `yaml:"entrance_instance_id,omitempty"`

	Jump *GimmickDef `yaml:"jump,omitempty"`
}

// Zone is one row of the zone table.
type Zone struct {
	ID      uint16 `yaml:"id"`
	Name    string `yaml:"name"`
	LuaZone string `yaml:"lua_zone,omitempty"`
	Weather uint16 `yaml:"weather"`

	Ranges []MapRangeDef `yaml:"ranges,omitempty"`
}

// ContentFinderCondition is one row of the content table: the instanced
// encounter a JoinContent request names, and where its entrance drops the
// party.
type ContentFinderCondition struct {
	ID        uint16 `yaml:"id"`
	ShortName string `yaml:"short_name"`
	ZoneID    uint16 `yaml:"zone_id"`

	Entrance         Vec3    `yaml:"entrance"`
	EntranceRotation float32 `yaml:"entrance_rotation"`
}

type zoneListFile struct {
	Zones []Zone `yaml:"zones"`
}

type contentListFile struct {
	Contents []ContentFinderCondition `yaml:"content_finder_conditions"`
}

// Tables bundles both loaded tables, indexed by id.
type Tables struct {
	zones    map[uint16]*Zone
	contents map[uint16]*ContentFinderCondition
}

// LoadTables reads both table files through res. A missing file yields an
// empty table rather than an error: a zone with no row simply has no
// weather or map ranges, and a content id with no row has no zone or
// entrance of its own.
func LoadTables(res asset.Resource) (*Tables, error) {
	t := &Tables{
		zones:    make(map[uint16]*Zone),
		contents: make(map[uint16]*ContentFinderCondition),
	}

	if raw, ok := res.Read(zonesPath); ok {
		var f zoneListFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", zonesPath, err)
		}
		for i := range f.Zones {
			z := &f.Zones[i]
			t.zones[z.ID] = z
		}
	}

	if raw, ok := res.Read(contentsPath); ok {
		var f contentListFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", contentsPath, err)
		}
		for i := range f.Contents {
			c := &f.Contents[i]
			t.contents[c.ID] = c
		}
	}

	return t, nil
}

// Zone returns the zone row for id.
func (t *Tables) Zone(id uint16) (*Zone, bool) {
	z, ok := t.zones[id]
	return z, ok
}

// Content returns the content-finder-condition row for id.
func (t *Tables) Content(id uint16) (*ContentFinderCondition, bool) {
	c, ok := t.contents[id]
	return c, ok
}

// ZoneCount and ContentCount report table sizes for startup logging.
func (t *Tables) ZoneCount() int    { return len(t.zones) }
func (t *Tables) ContentCount() int { return len(t.contents) }
