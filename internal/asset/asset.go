// Package asset provides the narrow read surface game logic uses to pull
// bytes out of the binary asset runtime (§4.6): packed archives and
// Excel-style tabular sheets, exposed here only through Resource so the
// rest of the tree never depends on the packed format itself. DirResource
// stands in for the packed-archive reader that real deployments would
// supply instead.
package asset

import (
	"os"
	"path/filepath"
)

// Resource is the two-operation surface every asset source implements.
type Resource interface {
	// Read returns the bytes at path and whether they were found.
	Read(path string) ([]byte, bool)
	// Exists reports whether path resolves in this source, without
	// necessarily reading its contents.
	Exists(path string) bool
}

// DirResource reads assets from a plain directory tree. It stands in for
// the packed-archive reader (§1 "binary asset runtime" is out of scope);
// real deployments wire the equivalent archive-backed Resource here
// instead, grounded on the teacher's loadDir directory walk in
// internal/scripting/engine.go generalized from "load every .lua" to
// "serve any path on demand".
type DirResource struct {
	root string
}

func NewDirResource(root string) *DirResource {
	return &DirResource{root: root}
}

func (d *DirResource) Read(path string) ([]byte, bool) {
	b, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, false
	}
	return b, true
}

func (d *DirResource) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(d.root, filepath.FromSlash(path)))
	return err == nil
}

// ChainResolver overlays a sequence of Resources in priority order: the
// first source that has path wins (§4.6 "unpacked-files source (higher
// priority) onto the packed archive source; paths not found in overlays
// fall through").
type ChainResolver struct {
	sources []Resource
}

// NewChainResolver builds a resolver trying sources in the given order,
// highest priority first.
func NewChainResolver(sources ...Resource) *ChainResolver {
	return &ChainResolver{sources: sources}
}

func (c *ChainResolver) Read(path string) ([]byte, bool) {
	for _, src := range c.sources {
		if b, ok := src.Read(path); ok {
			return b, true
		}
	}
	return nil, false
}

func (c *ChainResolver) Exists(path string) bool {
	for _, src := range c.sources {
		if src.Exists(path) {
			return true
		}
	}
	return false
}

// SpyResource wraps a Resource and mirrors every successfully read path
// into dir, for asset extraction (§4.6 "spy wrapper writes every
// successfully-read path to a mirror directory").
type SpyResource struct {
	inner Resource
	dir   string
}

func NewSpyResource(inner Resource, dir string) *SpyResource {
	return &SpyResource{inner: inner, dir: dir}
}

func (s *SpyResource) Read(path string) ([]byte, bool) {
	b, ok := s.inner.Read(path)
	if !ok {
		return nil, false
	}
	dst := filepath.Join(s.dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err == nil {
		os.WriteFile(dst, b, 0o644)
	}
	return b, true
}

func (s *SpyResource) Exists(path string) bool {
	return s.inner.Exists(path)
}
