// Package image provides the retained pixel buffers behind texture handles.
//
// Buffers keep the decoded pixels of every uploaded texture alive so a
// backend can be fed the same bytes again after it drops its atlas.
package image

import "github.com/gogpu/gputypes"

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatGray8 is 8-bit grayscale (1 byte per pixel).
	FormatGray8 Format = iota

	// FormatGray16 is 16-bit grayscale (2 bytes per pixel, little endian).
	FormatGray16

	// FormatRGB8 is 24-bit RGB (3 bytes per pixel, no alpha).
	FormatRGB8

	// FormatRGBA8 is 32-bit RGBA in sRGB color space (4 bytes per pixel).
	// Decoders always produce this format.
	FormatRGBA8

	// FormatRGBAPremul is 32-bit RGBA with premultiplied alpha.
	FormatRGBAPremul

	// FormatBGRA8 is 32-bit BGRA in sRGB color space (4 bytes per pixel).
	FormatBGRA8

	// FormatBGRAPremul is 32-bit BGRA with premultiplied alpha.
	FormatBGRAPremul

	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// BytesPerPixel is the number of bytes per pixel.
	BytesPerPixel int

	// Channels is the number of color channels.
	Channels int

	// HasAlpha indicates if the format has an alpha channel.
	HasAlpha bool

	// IsPremultiplied indicates if alpha is premultiplied.
	IsPremultiplied bool

	// Texture is the matching WebGPU texture format, or
	// gputypes.TextureFormatUndefined when there is none.
	Texture gputypes.TextureFormat
}

var formatInfoTable = [formatCount]FormatInfo{
	FormatGray8:      {BytesPerPixel: 1, Channels: 1, Texture: gputypes.TextureFormatR8Unorm},
	FormatGray16:     {BytesPerPixel: 2, Channels: 1, Texture: gputypes.TextureFormatR16Unorm},
	FormatRGB8:       {BytesPerPixel: 3, Channels: 3, Texture: gputypes.TextureFormatUndefined},
	FormatRGBA8:      {BytesPerPixel: 4, Channels: 4, HasAlpha: true, Texture: gputypes.TextureFormatRGBA8Unorm},
	FormatRGBAPremul: {BytesPerPixel: 4, Channels: 4, HasAlpha: true, IsPremultiplied: true, Texture: gputypes.TextureFormatRGBA8Unorm},
	FormatBGRA8:      {BytesPerPixel: 4, Channels: 4, HasAlpha: true, Texture: gputypes.TextureFormatBGRA8Unorm},
	FormatBGRAPremul: {BytesPerPixel: 4, Channels: 4, HasAlpha: true, IsPremultiplied: true, Texture: gputypes.TextureFormatBGRA8Unorm},
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel for this format.
func (f Format) BytesPerPixel() int {
	return f.Info().BytesPerPixel
}

// IsPremultiplied returns true if alpha is premultiplied.
func (f Format) IsPremultiplied() bool {
	return f.Info().IsPremultiplied
}

// TextureFormat returns the WebGPU texture format a backend should
// allocate for pixels of this format. RGB8 has no direct texture
// equivalent and reports gputypes.TextureFormatUndefined.
func (f Format) TextureFormat() gputypes.TextureFormat {
	return f.Info().Texture
}

// String returns a string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatGray8:
		return "Gray8"
	case FormatGray16:
		return "Gray16"
	case FormatRGB8:
		return "RGB8"
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBAPremul:
		return "RGBAPremul"
	case FormatBGRA8:
		return "BGRA8"
	case FormatBGRAPremul:
		return "BGRAPremul"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the format is a valid known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// RowBytes calculates the number of bytes needed for a row of the given width.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

// ImageBytes calculates the total number of bytes needed for an image.
func (f Format) ImageBytes(width, height int) int {
	return f.RowBytes(width) * height
}
