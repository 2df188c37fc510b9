package asset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirResourceReadExists(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/area.lvb", "zone-data")

	r := NewDirResource(root)
	b, ok := r.Read("zones/area.lvb")
	if !ok || string(b) != "zone-data" {
		t.Fatalf("Read = %q, %v", b, ok)
	}
	if !r.Exists("zones/area.lvb") {
		t.Fatal("Exists = false, want true")
	}
	if r.Exists("zones/missing.lvb") {
		t.Fatal("Exists = true for missing path")
	}
}

func TestChainResolverPrefersHigherPriority(t *testing.T) {
	overlay := t.TempDir()
	packed := t.TempDir()
	writeFile(t, overlay, "sheets/item.csv", "overlay-version")
	writeFile(t, packed, "sheets/item.csv", "packed-version")
	writeFile(t, packed, "sheets/status.csv", "packed-only")

	c := NewChainResolver(NewDirResource(overlay), NewDirResource(packed))

	b, ok := c.Read("sheets/item.csv")
	if !ok || string(b) != "overlay-version" {
		t.Fatalf("Read = %q, %v, want overlay-version", b, ok)
	}

	b, ok = c.Read("sheets/status.csv")
	if !ok || string(b) != "packed-only" {
		t.Fatalf("Read = %q, %v, want packed-only to fall through", b, ok)
	}

	if c.Exists("sheets/does-not-exist.csv") {
		t.Fatal("Exists = true for a path neither source has")
	}
}

func TestSpyResourceMirrorsSuccessfulReads(t *testing.T) {
	src := t.TempDir()
	mirror := t.TempDir()
	writeFile(t, src, "zones/area.lvb", "zone-data")

	spy := NewSpyResource(NewDirResource(src), mirror)

	if _, ok := spy.Read("zones/missing.lvb"); ok {
		t.Fatal("Read succeeded for a missing path")
	}
	if _, err := os.Stat(filepath.Join(mirror, "zones/missing.lvb")); err == nil {
		t.Fatal("a failed read should not mirror anything")
	}

	b, ok := spy.Read("zones/area.lvb")
	if !ok || string(b) != "zone-data" {
		t.Fatalf("Read = %q, %v", b, ok)
	}
	mirrored, err := os.ReadFile(filepath.Join(mirror, "zones/area.lvb"))
	if err != nil {
		t.Fatalf("mirrored file missing: %v", err)
	}
	if string(mirrored) != "zone-data" {
		t.Fatalf("mirrored content = %q, want zone-data", mirrored)
	}
}
