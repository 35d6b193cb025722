// Package software provides a CPU texture atlas backend for texpos.
//
// Surfaces are packed into fixed-size RGBA8 pages with a shelf allocator.
// The position of a texture is FirstTexpos plus its upload order, so a
// reset followed by a full re-upload yields fresh positions that differ
// from the previous generation whenever textures were reserved.
//
// Import the package to register it:
//
//	import _ "github.com/gogpu/texpos/backend/software"
package software

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/texpos"
	"github.com/gogpu/texpos/backend"
	"github.com/gogpu/texpos/internal/image"
)

// Atlas page size limits.
const (
	// MinPageSize is the smallest accepted page dimension.
	MinPageSize = 64

	// DefaultPageSize is the default page width and height.
	DefaultPageSize = 1024

	// DefaultPadding is the default gap between packed textures.
	DefaultPadding = 1
)


var (
	_ texpos.Backend = (*Backend)(nil)
	_ texpos.Updater = (*Backend)(nil)
)

var (
	// ErrAtlasFull is returned when a texture does not fit and MaxPages
	// pages are already in use.
	ErrAtlasFull = errors.New("software: atlas full")

	// ErrTooLarge is returned for a texture larger than a page.
	ErrTooLarge = errors.New("software: texture larger than atlas page")

	// ErrNilSurface is returned when Upload is called with nil.
	ErrNilSurface = errors.New("software: nil surface")

	// ErrUnknownTexpos is returned by Update for a position that is not
	// part of the current generation.
	ErrUnknownTexpos = errors.New("software: unknown texpos")

	// ErrSizeMismatch is returned by Update when the surface and the
	// placed texture differ in size.
	ErrSizeMismatch = errors.New("software: surface size differs from texture")
)

// Config configures a software atlas.
type Config struct {
	// PageWidth and PageHeight are the page dimensions in pixels.
	PageWidth  int
	PageHeight int

	// Padding is the gap left right of and below each texture.
	Padding int

	// MaxPages limits the number of pages; zero means unlimited.
	MaxPages int

	// FirstTexpos is the position assigned to the first upload after
	// creation or a reset. Hosts reserve low positions for their own
	// textures this way.
	FirstTexpos texpos.Texpos
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return Config{
		PageWidth:  DefaultPageSize,
		PageHeight: DefaultPageSize,
		Padding:    DefaultPadding,
	}
}

func (c Config) normalized() Config {
	c.PageWidth = max(c.PageWidth, MinPageSize)
	c.PageHeight = max(c.PageHeight, MinPageSize)
	c.Padding = max(c.Padding, 0)
	c.MaxPages = max(c.MaxPages, 0)
	c.FirstTexpos = max(c.FirstTexpos, 0)
	return c
}

type page struct {
	pixels *image.ImageBuf
	alloc  *shelfAllocator
}

// Backend is a CPU texture atlas implementing texpos.Backend.
//
// Backend is safe for concurrent use. Reset callbacks are invoked
// without holding the backend's lock so they may call Upload.
type Backend struct {
	mu         sync.Mutex
	cfg        Config
	pool       *image.Pool
	pages      []page
	regions    []Region // regions[i] belongs to position base+i
	base       texpos.Texpos
	generation uint64
	listeners  []func()
}

// New creates a backend with DefaultConfig.
func New() *Backend {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a backend with cfg. Page sizes below MinPageSize
// are raised to it.
func NewWithConfig(cfg Config) *Backend {
	cfg = cfg.normalized()
	return &Backend{
		cfg:  cfg,
		pool: image.NewPool(4),
		base: cfg.FirstTexpos,
	}
}

// Config returns the effective configuration.
func (b *Backend) Config() Config {
	return b.cfg
}

// Upload copies s into the atlas and returns its position.
func (b *Backend) Upload(s *texpos.Surface) (texpos.Texpos, error) {
	if s == nil {
		return texpos.InvalidTexpos, ErrNilSurface
	}
	w, h := s.Bounds()
	if w+b.cfg.Padding > b.cfg.PageWidth || h+b.cfg.Padding > b.cfg.PageHeight {
		return texpos.InvalidTexpos, fmt.Errorf("%w: %dx%d in %dx%d page",
			ErrTooLarge, w, h, b.cfg.PageWidth, b.cfg.PageHeight)
	}
	pixels := s.RGBA()

	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.place(w, h)
	if err != nil {
		return texpos.InvalidTexpos, err
	}

	b.write(r, pixels)
	b.regions = append(b.regions, r)
	pos := b.base + texpos.Texpos(len(b.regions)-1)
	texpos.Logger().Debug("software: texture placed",
		"texpos", int64(pos), "region", r.String())
	return pos, nil
}

// Update overwrites the texture at pos with s. The region is reused, so
// the atlas does not grow and pos stays valid.
func (b *Backend) Update(pos texpos.Texpos, s *texpos.Surface) error {
	if s == nil {
		return ErrNilSurface
	}
	pixels := s.RGBA()

	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.region(pos)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexpos, pos)
	}
	if w, h := s.Bounds(); w != r.Width || h != r.Height {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrSizeMismatch, w, h, r.Width, r.Height)
	}
	b.write(r, pixels)
	return nil
}

// write copies packed RGBA rows into r. Caller must hold b.mu.
func (b *Backend) write(r Region, pixels []byte) {
	dst := b.pages[r.Page].pixels
	rowBytes := r.Width * 4
	for y := range r.Height {
		copy(dst.RowBytes(r.Y + y)[r.X*4:], pixels[y*rowBytes:(y+1)*rowBytes])
	}
}

// place finds room for a w×h texture, opening a new page if needed.
// Caller must hold b.mu.
func (b *Backend) place(w, h int) (Region, error) {
	for i := range b.pages {
		if r := b.pages[i].alloc.allocate(w, h); r.IsValid() {
			r.Page = i
			return r, nil
		}
	}

	if b.cfg.MaxPages > 0 && len(b.pages) >= b.cfg.MaxPages {
		return Region{}, fmt.Errorf("%w: %d pages in use", ErrAtlasFull, len(b.pages))
	}
	pixels := b.pool.Get(b.cfg.PageWidth, b.cfg.PageHeight, image.FormatRGBA8)
	if pixels == nil {
		return Region{}, fmt.Errorf("software: cannot create %dx%d page", b.cfg.PageWidth, b.cfg.PageHeight)
	}
	p := page{
		pixels: pixels,
		alloc:  newShelfAllocator(b.cfg.PageWidth, b.cfg.PageHeight, b.cfg.Padding),
	}
	b.pages = append(b.pages, p)

	r := p.alloc.allocate(w, h)
	r.Page = len(b.pages) - 1
	return r, nil
}

// OnReset registers fn to run after every Reset.
func (b *Backend) OnReset(fn func()) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Reset discards every texture, as a renderer does when its context is
// lost, and runs the reset callbacks.
func (b *Backend) Reset() {
	b.ResetReserving(0)
}

// ResetReserving resets the atlas with the first n positions reserved
// for the host, so textures re-uploaded by the callbacks receive
// positions starting at FirstTexpos+n.
func (b *Backend) ResetReserving(n int) {
	b.mu.Lock()
	for _, p := range b.pages {
		b.pool.Put(p.pixels)
	}
	b.pages = nil
	b.regions = nil
	b.base = b.cfg.FirstTexpos + texpos.Texpos(max(n, 0))
	b.generation++
	gen := b.generation
	listeners := append([]func(){}, b.listeners...)
	b.mu.Unlock()

	texpos.Logger().Info("software: atlas reset",
		"generation", gen, "reserved", n, "listeners", len(listeners))
	for _, fn := range listeners {
		fn()
	}
}

// Region returns the atlas region of pos in the current generation.
func (b *Backend) Region(pos texpos.Texpos) (Region, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.region(pos)
}

// region looks up pos. Caller must hold b.mu.
func (b *Backend) region(pos texpos.Texpos) (Region, bool) {
	i := int64(pos) - int64(b.base)
	if i < 0 || i >= int64(len(b.regions)) {
		return Region{}, false
	}
	return b.regions[i], true
}

// Pixels returns a copy of the texture at pos, or nil.
func (b *Backend) Pixels(pos texpos.Texpos) *texpos.Surface {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.region(pos)
	if !ok {
		return nil
	}
	return b.pages[r.Page].pixels.Crop(r.X, r.Y, r.Width, r.Height)
}

// Page returns page i of the atlas. The buffer is owned by the backend
// and is recycled on the next reset.
func (b *Backend) Page(i int) (*texpos.Surface, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.pages) {
		return nil, false
	}
	return b.pages[i].pixels, true
}

// Pages returns the number of pages in use.
func (b *Backend) Pages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pages)
}

// Len returns the number of textures in the current generation.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.regions)
}

// Generation returns the number of resets so far.
func (b *Backend) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// Utilization returns the fraction of page i's area holding textures.
func (b *Backend) Utilization(i int) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.pages) {
		return 0
	}
	return b.pages[i].alloc.utilization()
}

func init() {
	backend.Register(backend.NameSoftware, func() texpos.Backend {
		return New()
	})
}
