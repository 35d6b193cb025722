package texpos

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// State is the lifecycle state of a Manager.
type State int32

const (
	// StateUninitialized is the state of a new Manager.
	StateUninitialized State = iota

	// StateInitialized is entered by Init; the only state in which
	// loads and lookups return real values.
	StateInitialized

	// StateShuttingDown is held while Cleanup releases bookkeeping.
	StateShuttingDown

	// StateTerminated is final.
	StateTerminated
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitialized:
		return "Initialized"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateTerminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Manager is the host-facing context object. It owns the handle table,
// the reset coordinator, the tileset loader and the asset registry for
// the period bracketed by Init and Cleanup.
//
// Outside StateInitialized every load or lookup returns a sentinel and
// reports ErrNotInitialized; nothing panics.
type Manager struct {
	lifecycle sync.Mutex // serializes Init, Cleanup and Reload
	state     atomic.Int32

	opts     options
	log      logSource
	backend  Backend
	table    *HandleTable
	reset    *ResetCoordinator
	loader   *TilesetLoader
	registry *AssetRegistry
}

// New creates a Manager uploading to backend. Call Init before use.
func New(backend Backend, opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	decoder := o.decoder
	if decoder == nil {
		decoder = FileDecoder{FS: o.fsys}
	}
	if o.cache > 0 {
		decoder = NewCachingDecoder(decoder, o.cache)
	}

	table := NewHandleTable(backend, o.logger)
	return &Manager{
		opts:     o,
		log:      logSource{l: o.logger},
		backend:  backend,
		table:    table,
		reset:    NewResetCoordinator(table, o.logger),
		loader:   NewTilesetLoader(table, decoder, o.logger),
		registry: NewAssetRegistry(),
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Init installs the reset handler and loads the built-in asset manifest.
// It must be called once; later calls are ignored with a warning.
//
// Assets that fail to load are reported and listed in the returned error,
// but the manager still becomes initialized with whatever did load. An
// invalid manifest leaves the manager uninitialized.
func (m *Manager) Init() error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	l := m.log.logger()
	switch st := m.State(); st {
	case StateUninitialized:
	case StateInitialized:
		l.Warn("texpos: init called twice")
		return nil
	default:
		return fmt.Errorf("%w: init in state %s", ErrNotInitialized, st)
	}

	manifest := DefaultManifest()
	if m.opts.manifest != nil {
		manifest = *m.opts.manifest
	}
	if err := manifest.Validate(); err != nil {
		return err
	}

	if m.backend != nil {
		m.reset.Attach(m.backend)
	}
	err := m.registry.Load(m.loader, manifest)
	m.state.Store(int32(StateInitialized))

	l.Info("texpos: initialized",
		"assets", m.registry.Len(), "textures", m.table.Len())
	return err
}

// Cleanup detaches the reset handler and releases registry and table
// bookkeeping. Backend textures are left to the host. Handles held by
// callers keep resolving to InvalidTexpos.
func (m *Manager) Cleanup() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	switch m.State() {
	case StateUninitialized:
		m.state.Store(int32(StateTerminated))
		return
	case StateInitialized:
	default:
		return
	}

	m.state.Store(int32(StateShuttingDown))
	m.reset.Detach()
	m.registry.Clear()
	m.table.Close()
	m.state.Store(int32(StateTerminated))
	m.log.logger().Info("texpos: cleaned up")
}

// active reports whether the manager is initialized, reporting
// ErrNotInitialized for op otherwise.
func (m *Manager) active(op string) bool {
	if st := m.State(); st != StateInitialized {
		m.log.logger().Warn("texpos: call outside active period",
			"op", op, "state", st.String(), "err", ErrNotInitialized)
		return false
	}
	return true
}

// LoadTexture takes ownership of s and returns its handle, or NoHandle
// when the manager is not initialized.
func (m *Manager) LoadTexture(s *Surface) Handle {
	if !m.active("LoadTexture") {
		return NoHandle
	}
	return m.table.Allocate(s)
}

// LoadTileset decodes path and returns one handle per whole tile in
// row-major order. Non-positive tile sizes select the manager's default
// (8×12 unless changed with WithTileSize). Failures yield an empty slice.
func (m *Manager) LoadTileset(path string, tileW, tileH int) []Handle {
	if !m.active("LoadTileset") {
		return []Handle{}
	}
	if tileW <= 0 {
		tileW = m.opts.tileW
	}
	if tileH <= 0 {
		tileH = m.opts.tileH
	}
	return m.loader.Load(path, tileW, tileH)
}

// TexposByHandle returns the current position of h, or InvalidTexpos.
// Always resolve through the handle: positions change on backend resets.
func (m *Manager) TexposByHandle(h Handle) Texpos {
	if !m.active("TexposByHandle") {
		return InvalidTexpos
	}
	pos, err := m.table.Lookup(h)
	if err != nil {
		// Lookups run every frame; keep invalid ones out of Warn.
		m.log.logger().Debug("texpos: lookup failed", "err", err)
	}
	return pos
}

// GetAsset returns the current position of tile index of a built-in
// asset, or InvalidTexpos for unknown names and out-of-range indices.
func (m *Manager) GetAsset(name string, index int) Texpos {
	if !m.active("GetAsset") {
		return InvalidTexpos
	}
	h, err := m.registry.Lookup(name, index)
	if err != nil {
		m.log.logger().Warn("texpos: asset lookup failed", "err", err)
		return InvalidTexpos
	}
	return m.table.Resolve(h)
}

// Assets returns the registered built-in asset names, sorted.
func (m *Manager) Assets() []string {
	return m.registry.Names()
}

// AssetHandles returns a copy of the handles of a built-in asset.
func (m *Manager) AssetHandles(name string) []Handle {
	handles, _ := m.registry.Handles(name)
	return handles
}

// Resets returns the number of backend resets handled.
func (m *Manager) Resets() uint64 {
	return m.reset.Resets()
}

// Table exposes the manager's handle table, e.g. for read access to
// retained surfaces.
func (m *Manager) Table() *HandleTable {
	return m.table
}

// Reload re-decodes a built-in asset file after it changed on disk and
// swaps the new tiles into the asset's existing handles. Handles and
// positions stay the same: a backend implementing Updater receives the
// new pixels in place, any other backend picks them up on its next reset.
//
// path may be relative to the asset root or, with WithAssetDir, a path
// under that directory as reported by a Watcher.
func (m *Manager) Reload(path string) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if st := m.State(); st != StateInitialized {
		return fmt.Errorf("%w: reload in state %s", ErrNotInitialized, st)
	}

	rel := m.assetPath(path)
	entry, handles, ok := m.registry.EntryForPath(rel)
	if !ok {
		return fmt.Errorf("%w: no asset loaded from %s", ErrUnknownAsset, rel)
	}

	if f, ok := m.loader.decoder.(interface{ Forget(string) }); ok {
		f.Forget(entry.Path)
	}
	s, err := m.loader.Decode(entry.Path)
	if err != nil {
		m.log.logger().Warn("texpos: reload failed", "asset", entry.Name, "err", err)
		return err
	}
	w, h := entry.TileSize()
	tiles := SliceTileset(s, w, h)

	var errs []error
	if len(tiles) != len(handles) {
		errs = append(errs, fmt.Errorf("texpos: asset %s now has %d tiles, keeping %d handles",
			entry.Name, len(tiles), len(handles)))
	}
	updated := 0
	for i := range min(len(tiles), len(handles)) {
		ok, err := m.table.Update(handles[i], tiles[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			updated++
		}
	}

	err = errors.Join(errs...)
	if err != nil {
		m.log.logger().Warn("texpos: asset reloaded with problems", "asset", entry.Name, "err", err)
	} else {
		m.log.logger().Info("texpos: asset reloaded",
			"asset", entry.Name, "tiles", len(tiles), "updated", updated)
	}
	return err
}

// assetPath maps a watcher path back to an asset-root-relative path.
func (m *Manager) assetPath(p string) string {
	if m.opts.dir != "" && filepath.IsAbs(p) == filepath.IsAbs(m.opts.dir) {
		if rel, err := filepath.Rel(m.opts.dir, p); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Clean(p))
}
