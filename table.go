package texpos

import (
	"fmt"
	"log/slog"
	"sync"
)

// entry is one allocated handle: the retained pixels and the position the
// backend returned for them most recently.
type entry struct {
	surface *Surface
	texpos  Texpos
}

// HandleTable maps handles to retained surfaces and their current atlas
// positions. The set of valid handles is always exactly {1..Len()}.
//
// HandleTable is safe for concurrent use. Allocate, ReuploadAll and
// Update take the write lock; Resolve takes the read lock, so a lookup
// never observes a half-finished reset.
type HandleTable struct {
	mu      sync.RWMutex
	backend Backend
	entries []entry // entries[h-1] belongs to handle h
	closed  bool
	log     logSource
}

// NewHandleTable creates an empty table uploading to backend.
// A nil logger selects the package logger.
func NewHandleTable(backend Backend, logger *slog.Logger) *HandleTable {
	return &HandleTable{
		backend: backend,
		log:     logSource{l: logger},
	}
}

// Allocate takes ownership of s, uploads it and returns a new handle.
//
// A failed upload (or a nil surface) is reported and the entry is stored
// with InvalidTexpos; the handle is still valid and will be retried on the
// next ReuploadAll. Only a closed table returns NoHandle.
func (t *HandleTable) Allocate(s *Surface) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		t.log.logger().Warn("texpos: allocate on closed table", "err", ErrTableClosed)
		return NoHandle
	}

	h := Handle(len(t.entries) + 1)
	pos, err := t.upload(s)
	if err != nil {
		t.log.logger().Warn("texpos: texture stored without position",
			"handle", uint64(h), "err", err)
	} else {
		t.log.logger().Debug("texpos: texture uploaded",
			"handle", uint64(h), "texpos", int64(pos))
	}

	t.entries = append(t.entries, entry{surface: s, texpos: pos})
	return h
}

// upload sends s to the backend. Caller must hold the write lock.
func (t *HandleTable) upload(s *Surface) (Texpos, error) {
	if s == nil {
		return InvalidTexpos, ErrNilSurface
	}
	if t.backend == nil {
		return InvalidTexpos, fmt.Errorf("%w: no backend", ErrUpload)
	}
	pos, err := t.backend.Upload(s)
	if err != nil {
		return InvalidTexpos, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	if !pos.IsValid() {
		return InvalidTexpos, fmt.Errorf("%w: backend returned position %d", ErrUpload, pos)
	}
	return pos, nil
}

// Resolve returns the current position of h, or InvalidTexpos for
// NoHandle and handles beyond the allocated range. It has no side effects.
func (t *HandleTable) Resolve(h Handle) Texpos {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if h == NoHandle || uint64(h) > uint64(len(t.entries)) {
		return InvalidTexpos
	}
	return t.entries[h-1].texpos
}

// Lookup is Resolve with an explanation: it returns ErrInvalidHandle
// when h is outside {1..Len()}.
func (t *HandleTable) Lookup(h Handle) (Texpos, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if h == NoHandle || uint64(h) > uint64(len(t.entries)) {
		return InvalidTexpos, fmt.Errorf("%w: %d (allocated %d)", ErrInvalidHandle, h, len(t.entries))
	}
	return t.entries[h-1].texpos, nil
}

// ReuploadAll uploads every retained surface again, in allocation order,
// and overwrites each stored position. An entry whose upload fails is set
// to InvalidTexpos and reported; the loop always runs to completion.
// It returns the number of failed entries.
func (t *HandleTable) ReuploadAll() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	failed := 0
	for i := range t.entries {
		pos, err := t.upload(t.entries[i].surface)
		if err != nil {
			failed++
			t.log.logger().Error("texpos: re-upload failed",
				"handle", uint64(i+1), "err", err)
		}
		t.entries[i].texpos = pos
	}
	return failed
}

// Update swaps the retained surface of h for s. The stored position never
// changes. If the backend implements Updater and h has a position, the
// texture is overwritten in place and Update returns true; otherwise the
// new pixels reach the backend on the next ReuploadAll.
func (t *HandleTable) Update(h Handle, s *Surface) (bool, error) {
	if s == nil {
		return false, ErrNilSurface
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if h == NoHandle || uint64(h) > uint64(len(t.entries)) {
		return false, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	e := &t.entries[h-1]
	e.surface = s

	u, ok := t.backend.(Updater)
	if !ok || !e.texpos.IsValid() {
		return false, nil
	}
	if err := u.Update(e.texpos, s); err != nil {
		t.log.logger().Debug("texpos: in-place update failed, waiting for reset",
			"handle", uint64(h), "texpos", int64(e.texpos), "err", err)
		return false, nil
	}
	return true, nil
}

// Surface returns the retained surface of h. The surface must not be modified.
func (t *HandleTable) Surface(h Handle) (*Surface, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if h == NoHandle || uint64(h) > uint64(len(t.entries)) {
		return nil, false
	}
	return t.entries[h-1].surface, true
}

// Len returns the number of handles allocated so far.
func (t *HandleTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Close releases every retained surface. Afterwards all handles resolve
// to InvalidTexpos and Allocate returns NoHandle.
func (t *HandleTable) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = nil
	t.closed = true
}

// IsClosed returns true if the table has been closed.
func (t *HandleTable) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}
