// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gogpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/texpos"
	"github.com/gogpu/texpos/backend"
)


var (
	_ texpos.Backend = (*Backend)(nil)
	_ texpos.Updater = (*Backend)(nil)
)

// Backend errors.
var (
	// ErrNoCreator is returned when no texture creator has been set.
	ErrNoCreator = errors.New("gogpu: no texture creator")

	// ErrNilSurface is returned when Upload is called with nil.
	ErrNilSurface = errors.New("gogpu: nil surface")

	// ErrUnknownTexpos is returned by Update for a position with no live texture.
	ErrUnknownTexpos = errors.New("gogpu: unknown texpos")

	// ErrSizeMismatch is returned by Update when the surface and the
	// texture differ in size.
	ErrSizeMismatch = errors.New("gogpu: surface size differs from texture")

	// ErrNotUpdatable is returned by Update when the texture does not
	// implement gpucontext.TextureUpdater.
	ErrNotUpdatable = errors.New("gogpu: texture cannot be updated in place")
)

// textureDestroyer is implemented by textures that own GPU memory.
type textureDestroyer interface {
	Destroy()
}

// Backend uploads surfaces as individual GPU textures.
//
// Backend is safe for concurrent use. Reset callbacks are invoked
// without holding the backend's lock.
type Backend struct {
	mu        sync.Mutex
	creator   gpucontext.TextureCreator
	textures  []gpucontext.Texture
	base      texpos.Texpos
	listeners []func()
	losses    uint64
}

// New creates a backend creating textures with creator. creator may be
// nil until the renderer is ready; uploads fail with ErrNoCreator until
// SetCreator is called.
func New(creator gpucontext.TextureCreator) *Backend {
	return &Backend{creator: creator}
}

// SetCreator replaces the texture creator, e.g. after the renderer
// recreated its device.
func (b *Backend) SetCreator(creator gpucontext.TextureCreator) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.creator = creator
}

// Upload creates a texture from s and returns its position.
func (b *Backend) Upload(s *texpos.Surface) (texpos.Texpos, error) {
	if s == nil {
		return texpos.InvalidTexpos, ErrNilSurface
	}
	pixels := rgbaPixels(s)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.creator == nil {
		return texpos.InvalidTexpos, ErrNoCreator
	}
	tex, err := b.creator.NewTextureFromRGBA(s.Width(), s.Height(), pixels)
	if err != nil {
		return texpos.InvalidTexpos, fmt.Errorf("gogpu: NewTextureFromRGBA failed: %w", err)
	}

	b.textures = append(b.textures, tex)
	return b.base + texpos.Texpos(len(b.textures)-1), nil
}

// Update uploads s into the existing texture at pos, so pos stays valid
// and no new GPU memory is allocated.
func (b *Backend) Update(pos texpos.Texpos, s *texpos.Surface) error {
	if s == nil {
		return ErrNilSurface
	}
	pixels := rgbaPixels(s)

	b.mu.Lock()
	defer b.mu.Unlock()

	tex := b.texture(pos)
	if tex == nil {
		return fmt.Errorf("%w: %d", ErrUnknownTexpos, pos)
	}
	if tex.Width() != s.Width() || tex.Height() != s.Height() {
		return fmt.Errorf("%w: %dx%d into %dx%d",
			ErrSizeMismatch, s.Width(), s.Height(), tex.Width(), tex.Height())
	}
	u, ok := tex.(gpucontext.TextureUpdater)
	if !ok {
		return ErrNotUpdatable
	}
	if err := u.UpdateData(pixels); err != nil {
		return fmt.Errorf("gogpu: UpdateData failed: %w", err)
	}
	return nil
}

// rgbaPixels returns the straight-alpha RGBA8 bytes NewTextureFromRGBA
// expects, converting only when the surface is stored differently.
func rgbaPixels(s *texpos.Surface) []byte {
	f := s.Format()
	if f.TextureFormat() == gputypes.TextureFormatRGBA8Unorm && !f.IsPremultiplied() {
		return s.Packed()
	}
	return s.RGBA()
}

// OnReset registers fn to run after every DeviceLost.
func (b *Backend) OnReset(fn func()) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// DeviceLost destroys every texture and runs the reset callbacks.
// Positions handed out afterwards continue after the previous ones, so
// a stale position never aliases a new texture.
func (b *Backend) DeviceLost() {
	b.mu.Lock()
	for _, tex := range b.textures {
		if d, ok := tex.(textureDestroyer); ok {
			d.Destroy()
		}
	}
	b.base += texpos.Texpos(len(b.textures))
	b.textures = nil
	b.losses++
	losses := b.losses
	listeners := append([]func(){}, b.listeners...)
	b.mu.Unlock()

	texpos.Logger().Info("gogpu: device lost, textures dropped",
		"losses", losses, "listeners", len(listeners))
	for _, fn := range listeners {
		fn()
	}
}

// Texture returns the texture at pos, or nil.
func (b *Backend) Texture(pos texpos.Texpos) gpucontext.Texture {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.texture(pos)
}

// texture looks up pos. Caller must hold b.mu.
func (b *Backend) texture(pos texpos.Texpos) gpucontext.Texture {
	i := int64(pos) - int64(b.base)
	if i < 0 || i >= int64(len(b.textures)) {
		return nil
	}
	return b.textures[i]
}

// Len returns the number of live textures.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.textures)
}

// Losses returns how many times DeviceLost was called.
func (b *Backend) Losses() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.losses
}

// Register makes the backend available as backend.NameGoGPU, creating
// textures with creator. Unlike the software backend it cannot register
// itself on import because it needs the host's renderer.
func Register(creator gpucontext.TextureCreator) {
	backend.Register(backend.NameGoGPU, func() texpos.Backend {
		return New(creator)
	})
}
