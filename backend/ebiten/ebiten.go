// Package ebiten provides a texpos backend that keeps every texture as
// an *ebiten.Image.
//
// Ebitengine restores its own images after a context loss, so the host
// calls Invalidate only when it deliberately drops its image cache (for
// example when switching UI scale). Import the package to register it:
//
//	import _ "github.com/gogpu/texpos/backend/ebiten"
package ebiten

import (
	"errors"
	"fmt"
	"sync"

	eb "github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/texpos"
	"github.com/gogpu/texpos/backend"
)


var (
	_ texpos.Backend = (*Backend)(nil)
	_ texpos.Updater = (*Backend)(nil)
)

// Backend errors.
var (
	// ErrNilSurface is returned when Upload or Update is called with nil.
	ErrNilSurface = errors.New("ebiten: nil surface")

	// ErrUnknownTexpos is returned by Update for a position with no live image.
	ErrUnknownTexpos = errors.New("ebiten: unknown texpos")

	// ErrSizeMismatch is returned by Update when the surface and the
	// image differ in size.
	ErrSizeMismatch = errors.New("ebiten: surface size differs from image")
)

// Backend stores uploaded surfaces as ebiten images. The position of a
// texture is its index in the image list, counted across invalidations.
type Backend struct {
	mu        sync.Mutex
	images    []*eb.Image
	base      texpos.Texpos
	listeners []func()
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{}
}

// Upload creates an ebiten image from s.
func (b *Backend) Upload(s *texpos.Surface) (texpos.Texpos, error) {
	if s == nil {
		return texpos.InvalidTexpos, ErrNilSurface
	}
	img := eb.NewImageFromImage(s.ToStdImage())

	b.mu.Lock()
	defer b.mu.Unlock()
	b.images = append(b.images, img)
	return b.base + texpos.Texpos(len(b.images)-1), nil
}

// Update writes s into the existing image at pos.
func (b *Backend) Update(pos texpos.Texpos, s *texpos.Surface) error {
	if s == nil {
		return ErrNilSurface
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	img := b.image(pos)
	if img == nil {
		return fmt.Errorf("%w: %d", ErrUnknownTexpos, pos)
	}
	if size := img.Bounds().Size(); size.X != s.Width() || size.Y != s.Height() {
		return fmt.Errorf("%w: %dx%d into %dx%d",
			ErrSizeMismatch, s.Width(), s.Height(), size.X, size.Y)
	}
	img.WritePixels(s.RGBA())
	return nil
}

// OnReset registers fn to run after every Invalidate.
func (b *Backend) OnReset(fn func()) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Invalidate deallocates every image and runs the reset callbacks.
func (b *Backend) Invalidate() {
	b.mu.Lock()
	for _, img := range b.images {
		img.Deallocate()
	}
	b.base += texpos.Texpos(len(b.images))
	b.images = nil
	listeners := append([]func(){}, b.listeners...)
	b.mu.Unlock()

	texpos.Logger().Info("ebiten: images invalidated", "listeners", len(listeners))
	for _, fn := range listeners {
		fn()
	}
}

// Image returns the image at pos, or nil.
func (b *Backend) Image(pos texpos.Texpos) *eb.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.image(pos)
}

// image looks up pos. Caller must hold b.mu.
func (b *Backend) image(pos texpos.Texpos) *eb.Image {
	i := int64(pos) - int64(b.base)
	if i < 0 || i >= int64(len(b.images)) {
		return nil
	}
	return b.images[i]
}

// Len returns the number of live images.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.images)
}

func init() {
	backend.Register(backend.NameEbiten, func() texpos.Backend {
		return New()
	})
}
