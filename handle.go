package texpos

import (
	stdimage "image"

	"github.com/gogpu/texpos/internal/image"
)

// Default tile size of built-in tilesets, in pixels.
const (
	TileWidthPx  = 8
	TileHeightPx = 12
)

// Handle is an opaque, stable reference to a texture.
//
// Handles are assigned sequentially starting at 1 and are never reused,
// so a handle stays resolvable for the lifetime of its table even after
// any number of backend resets.
type Handle uint64

// NoHandle is the reserved zero handle. It is never allocated and always
// resolves to InvalidTexpos.
const NoHandle Handle = 0

// IsValid reports whether h is not NoHandle. It does not check that the
// handle was allocated by a particular table.
func (h Handle) IsValid() bool {
	return h != NoHandle
}

// Texpos is a backend-assigned atlas position. It is volatile across
// backend resets: resolve it through a Handle every frame.
type Texpos int64

// InvalidTexpos is returned for every lookup that cannot produce a real
// position: NoHandle, unallocated handles, failed uploads, unknown assets,
// out-of-range tile indices and calls outside the initialized state.
const InvalidTexpos Texpos = -1

// IsValid reports whether p is a real atlas position.
func (p Texpos) IsValid() bool {
	return p >= 0
}

// Surface is the retained pixel buffer behind a handle.
type Surface = image.ImageBuf

// PixelFormat describes how a Surface stores its pixels.
type PixelFormat = image.Format

// Pixel formats a Surface can hold.
const (
	FormatGray8      = image.FormatGray8
	FormatGray16     = image.FormatGray16
	FormatRGB8       = image.FormatRGB8
	FormatRGBA8      = image.FormatRGBA8
	FormatRGBAPremul = image.FormatRGBAPremul
	FormatBGRA8      = image.FormatBGRA8
	FormatBGRAPremul = image.FormatBGRAPremul
)

// NewSurface creates a zeroed surface.
func NewSurface(width, height int, format PixelFormat) (*Surface, error) {
	return image.NewImageBuf(width, height, format)
}

// SurfaceFromPixels wraps existing pixel bytes without copying.
func SurfaceFromPixels(pix []byte, width, height int, format PixelFormat, stride int) (*Surface, error) {
	return image.FromRaw(pix, width, height, format, stride)
}

// SurfaceFromImage converts a standard library image into an RGBA8 surface.
// Returns nil for an empty image.
func SurfaceFromImage(img stdimage.Image) *Surface {
	return image.FromStdImage(img)
}
