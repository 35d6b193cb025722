package texpos

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// normalizeName maps an asset name to its registry key: trimmed, NFC
// normalized and case folded.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	// Casers are stateful; one per call.
	return cases.Fold().String(norm.NFC.String(name))
}

// asset is one registry entry.
type asset struct {
	entry   ManifestEntry
	handles []Handle
}

// AssetRegistry maps built-in asset names to their tile handles.
// Entries are written once by Load and are read-only afterwards.
type AssetRegistry struct {
	mu     sync.RWMutex
	assets map[string]*asset
	byPath map[string]string // cleaned path -> registry key
}

// NewAssetRegistry creates an empty registry.
func NewAssetRegistry() *AssetRegistry {
	return &AssetRegistry{
		assets: make(map[string]*asset),
		byPath: make(map[string]string),
	}
}

// Load loads every manifest entry through loader. An entry that yields no
// tiles is still registered (every index is then out of range) and its
// failure is included in the joined error.
func (r *AssetRegistry) Load(loader *TilesetLoader, m Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}

	var errs []error
	for _, e := range m.Assets {
		w, h := e.TileSize()
		s, err := loader.Decode(e.Path)
		var handles []Handle
		if err != nil {
			loader.log.logger().Warn("texpos: built-in asset not loaded",
				"asset", e.Name, "path", e.Path, "err", err)
			errs = append(errs, fmt.Errorf("asset %s: %w", e.Name, err))
		} else if handles = loader.LoadSurface(s, w, h); len(handles) == 0 {
			errs = append(errs, fmt.Errorf("asset %s: %dx%d image has no whole %dx%d tiles",
				e.Name, s.Width(), s.Height(), w, h))
		}
		r.Register(e, handles)
	}
	return errors.Join(errs...)
}

// Register records handles under e.Name, replacing any previous entry.
func (r *AssetRegistry) Register(e ManifestEntry, handles []Handle) {
	key := normalizeName(e.Name)
	if key == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.assets[key] = &asset{entry: e, handles: slices.Clone(handles)}
	if e.Path != "" {
		r.byPath[cleanAssetPath(e.Path)] = key
	}
}

// Lookup returns the handle of tile index of the named asset.
func (r *AssetRegistry) Lookup(name string, index int) (Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assets[normalizeName(name)]
	if !ok {
		return NoHandle, fmt.Errorf("%w: %q", ErrUnknownAsset, name)
	}
	if index < 0 || index >= len(a.handles) {
		return NoHandle, fmt.Errorf("%w: %q has %d tiles, index %d",
			ErrIndexOutOfRange, name, len(a.handles), index)
	}
	return a.handles[index], nil
}

// Handles returns a copy of the named asset's handles.
func (r *AssetRegistry) Handles(name string) ([]Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assets[normalizeName(name)]
	if !ok {
		return nil, false
	}
	return slices.Clone(a.handles), true
}

// EntryForPath returns the manifest entry loaded from p and its handles.
func (r *AssetRegistry) EntryForPath(p string) (ManifestEntry, []Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.byPath[cleanAssetPath(p)]
	if !ok {
		return ManifestEntry{}, nil, false
	}
	a := r.assets[key]
	return a.entry, slices.Clone(a.handles), true
}

// Names returns the registered asset names, sorted.
func (r *AssetRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.assets))
	for _, a := range r.assets {
		names = append(names, a.entry.Name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered assets.
func (r *AssetRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.assets)
}

// Clear drops all bookkeeping. Backend resources are not touched.
func (r *AssetRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.assets)
	clear(r.byPath)
}

func cleanAssetPath(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}
