package data

import "testing"

type mapResource map[string][]byte

func (m mapResource) Read(path string) ([]byte, bool) {
	b, ok := m[path]
	return b, ok
}

func (m mapResource) Exists(path string) bool {
	_, ok := m[path]
	return ok
}

func TestLoadTables(t *testing.T) {
	res := mapResource{
		"tables/zones.yaml": []byte(`
zones:
  - id: 132
    name: "New Gridania"
    weather: 2
    ranges:
      - min: {x: -10, y: -10, z: -10}
        max: {x: 10, y: 10, z: 10}
        sanctuary: true
      - min: {x: 50, y: 0, z: 50}
        max: {x: 60, y: 10, z: 60}
        jump: {to: {x: 70, y: 5, z: 70}, sgb: 9, eobj: 4001}
`),
		"tables/content_finder_conditions.yaml": []byte(`
content_finder_conditions:
  - id: 4
    short_name: "tamtara"
    zone_id: 163
    entrance: {x: -8.0, y: 0.3, z: 3.5}
    entrance_rotation: 1.57
`),
	}

	tables, err := LoadTables(res)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}

	z, ok := tables.Zone(132)
	if !ok {
		t.Fatalf("zone 132 not loaded")
	}
	if z.Weather != 2 || len(z.Ranges) != 2 {
		t.Fatalf("zone 132 = %+v", z)
	}
	if !z.Ranges[0].Sanctuary {
		t.Errorf("first range not tagged sanctuary")
	}
	if z.Ranges[1].Jump == nil || z.Ranges[1].Jump.EObj != 4001 {
		t.Errorf("jump gimmick not parsed: %+v", z.Ranges[1].Jump)
	}

	c, ok := tables.Content(4)
	if !ok {
		t.Fatalf("content 4 not loaded")
	}
	if c.ZoneID != 163 || c.ShortName != "tamtara" {
		t.Fatalf("content 4 = %+v", c)
	}
	if c.Entrance.X != -8.0 || c.EntranceRotation != 1.57 {
		t.Errorf("entrance not parsed: %+v", c)
	}

	if _, ok := tables.Zone(999); ok {
		t.Errorf("unexpected zone 999")
	}
}

func TestLoadTablesMissingFilesAreEmpty(t *testing.T) {
	tables, err := LoadTables(mapResource{})
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if tables.ZoneCount() != 0 || tables.ContentCount() != 0 {
		t.Fatalf("expected empty tables, got %d zones, %d contents", tables.ZoneCount(), tables.ContentCount())
	}
}
