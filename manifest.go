package texpos

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestEntry names one built-in tileset.
type ManifestEntry struct {
	Name       string `yaml:"name"`
	Path       string `yaml:"path"`
	TileWidth  int    `yaml:"tile_width,omitempty"`
	TileHeight int    `yaml:"tile_height,omitempty"`
}

// TileSize returns the entry's tile size, defaulting to
// TileWidthPx×TileHeightPx.
func (e ManifestEntry) TileSize() (int, int) {
	return tileSize(e.TileWidth, e.TileHeight)
}

// Manifest lists the built-in tilesets loaded by AssetRegistry.
type Manifest struct {
	Assets []ManifestEntry `yaml:"assets"`
}

// ManifestError describes an invalid manifest entry.
type ManifestError struct {
	Name   string
	Reason string
}

func (e *ManifestError) Error() string {
	return "texpos: invalid manifest entry " + e.Name + ": " + e.Reason
}

// DefaultArtDir is the directory, relative to the asset root, holding the
// built-in tilesets.
const DefaultArtDir = "hack/data/art"

// DefaultManifest returns the built-in tilesets shipped with the host.
func DefaultManifest() Manifest {
	art := func(name string) ManifestEntry {
		return ManifestEntry{Name: name, Path: DefaultArtDir + "/" + name + ".png"}
	}
	big := func(name string) ManifestEntry {
		e := art(name)
		e.TileWidth, e.TileHeight = 32, 32
		return e
	}
	return Manifest{Assets: []ManifestEntry{
		art("border-bold"),
		art("border-medium"),
		art("border-panel"),
		art("border-thin"),
		art("border-window"),
		art("control-panel"),
		art("dfhack"),
		art("green-pin"),
		art("icons"),
		art("on-off"),
		big("pathable"),
		art("red-pin"),
		big("unsuspend"),
	}}
}

// Validate checks names, paths and tile sizes, and rejects names that
// collide after normalization.
func (m Manifest) Validate() error {
	seen := make(map[string]string, len(m.Assets))
	for i, e := range m.Assets {
		if normalizeName(e.Name) == "" {
			return &ManifestError{Name: fmt.Sprintf("#%d", i), Reason: "name is empty"}
		}
		if e.Path == "" {
			return &ManifestError{Name: e.Name, Reason: "path is empty"}
		}
		if e.TileWidth < 0 || e.TileHeight < 0 {
			return &ManifestError{Name: e.Name, Reason: "tile size must be non-negative"}
		}
		key := normalizeName(e.Name)
		if prev, ok := seen[key]; ok {
			return &ManifestError{Name: e.Name, Reason: "duplicates " + prev}
		}
		seen[key] = e.Name
	}
	return nil
}

// ParseManifest decodes and validates a YAML manifest.
//
//	assets:
//	  - name: border-thin
//	    path: hack/data/art/border-thin.png
//	  - name: pathable
//	    path: hack/data/art/pathable.png
//	    tile_width: 32
//	    tile_height: 32
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("texpos: unmarshal manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// LoadManifest reads a YAML manifest from disk.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Manifest{}, fmt.Errorf("texpos: load manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}
