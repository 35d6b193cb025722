package image

import (
	"bytes"
	"errors"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("image: invalid format")

	// ErrInvalidStride is returned when stride is less than minimum required.
	ErrInvalidStride = errors.New("image: stride too small for width")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// ImageBuf is a retained pixel buffer.
//
// ImageBuf stores pixel data in a contiguous byte slice with optional stride.
// Buffers handed to a texture table are never written again, so concurrent
// readers need no synchronization.
type ImageBuf struct {
	data   []byte
	width  int
	height int
	stride int
	format Format
}

// NewImageBuf creates a new zeroed image buffer with the given dimensions and format.
func NewImageBuf(width, height int, format Format) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}

	stride := format.RowBytes(width)
	return &ImageBuf{
		data:   make([]byte, format.ImageBytes(width, height)),
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// FromRaw creates an ImageBuf from existing data without copying.
// The caller must not modify data afterwards.
// Stride must be at least format.RowBytes(width).
func FromRaw(data []byte, width, height int, format Format, stride int) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}

	minStride := format.RowBytes(width)
	if stride < minStride {
		return nil, ErrInvalidStride
	}

	// The last row only needs its pixel bytes, not the full stride.
	requiredSize := stride*(height-1) + minStride
	if len(data) < requiredSize {
		return nil, ErrDataTooSmall
	}

	return &ImageBuf{
		data:   data,
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// Clone creates a deep, densely packed copy of the image buffer.
func (b *ImageBuf) Clone() *ImageBuf {
	return b.Crop(0, 0, b.width, b.height)
}

// Width returns the image width in pixels.
func (b *ImageBuf) Width() int {
	return b.width
}

// Height returns the image height in pixels.
func (b *ImageBuf) Height() int {
	return b.height
}

// Stride returns the number of bytes per row (including padding).
func (b *ImageBuf) Stride() int {
	return b.stride
}

// Format returns the pixel format.
func (b *ImageBuf) Format() Format {
	return b.format
}

// Bounds returns the image dimensions as (width, height).
func (b *ImageBuf) Bounds() (int, int) {
	return b.width, b.height
}

// Data returns the raw pixel data slice, including row padding.
func (b *ImageBuf) Data() []byte {
	return b.data
}

// RowBytes returns a slice of the pixel data for row y.
// Returns nil if y is out of bounds.
func (b *ImageBuf) RowBytes(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.stride
	end := start + b.format.RowBytes(b.width)
	return b.data[start:end]
}

// Packed returns the pixels as width*height*bpp bytes with no row padding.
// The underlying data is returned directly when it is already packed.
func (b *ImageBuf) Packed() []byte {
	rowBytes := b.format.RowBytes(b.width)
	if b.stride == rowBytes && len(b.data) == rowBytes*b.height {
		return b.data
	}
	out := make([]byte, 0, rowBytes*b.height)
	for y := range b.height {
		out = append(out, b.RowBytes(y)...)
	}
	return out
}

// PixelOffset returns the byte offset of pixel (x, y) in the data slice.
// Returns -1 if coordinates are out of bounds.
func (b *ImageBuf) PixelOffset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return y*b.stride + x*b.format.BytesPerPixel()
}

// PixelBytes returns a slice of the raw bytes for pixel (x, y).
// Returns nil if coordinates are out of bounds.
func (b *ImageBuf) PixelBytes(x, y int) []byte {
	offset := b.PixelOffset(x, y)
	if offset < 0 {
		return nil
	}
	return b.data[offset : offset+b.format.BytesPerPixel()]
}

// GetRGBA returns the color at (x, y) as (r, g, b, a) in 0-255 range.
// For grayscale formats, r=g=b=gray and a=255.
// Returns (0,0,0,0) if coordinates are out of bounds.
func (b *ImageBuf) GetRGBA(x, y int) (r, g, bl, a uint8) {
	pixel := b.PixelBytes(x, y)
	if pixel == nil {
		return 0, 0, 0, 0
	}

	switch b.format {
	case FormatGray8:
		v := pixel[0]
		return v, v, v, 255
	case FormatGray16:
		v := pixel[1]
		return v, v, v, 255
	case FormatRGB8:
		return pixel[0], pixel[1], pixel[2], 255
	case FormatRGBA8, FormatRGBAPremul:
		return pixel[0], pixel[1], pixel[2], pixel[3]
	case FormatBGRA8, FormatBGRAPremul:
		return pixel[2], pixel[1], pixel[0], pixel[3]
	default:
		return 0, 0, 0, 0
	}
}

// SetRGBA sets the color at (x, y) from (r, g, b, a) in 0-255 range.
// For grayscale formats, uses standard luminance weights.
// Returns ErrOutOfBounds if coordinates are outside image bounds.
func (b *ImageBuf) SetRGBA(x, y int, r, g, bl, a uint8) error {
	offset := b.PixelOffset(x, y)
	if offset < 0 {
		return ErrOutOfBounds
	}

	switch b.format {
	case FormatGray8:
		// 0.299*R + 0.587*G + 0.114*B
		b.data[offset] = byte((int(r)*299 + int(g)*587 + int(bl)*114) / 1000)
	case FormatGray16:
		gray := byte((int(r)*299 + int(g)*587 + int(bl)*114) / 1000)
		b.data[offset] = gray
		b.data[offset+1] = gray
	case FormatRGB8:
		b.data[offset] = r
		b.data[offset+1] = g
		b.data[offset+2] = bl
	case FormatRGBA8, FormatRGBAPremul:
		b.data[offset] = r
		b.data[offset+1] = g
		b.data[offset+2] = bl
		b.data[offset+3] = a
	case FormatBGRA8, FormatBGRAPremul:
		b.data[offset] = bl
		b.data[offset+1] = g
		b.data[offset+2] = r
		b.data[offset+3] = a
	}
	return nil
}

// Fill sets all pixels to the given RGBA color.
func (b *ImageBuf) Fill(r, g, bl, a uint8) {
	for y := range b.height {
		for x := range b.width {
			_ = b.SetRGBA(x, y, r, g, bl, a)
		}
	}
}

// Clear zeroes every pixel, including row padding.
func (b *ImageBuf) Clear() {
	clear(b.data)
}

// Crop returns an independent, densely packed copy of a rectangular region.
// Returns nil if the bounds are invalid or outside the image.
func (b *ImageBuf) Crop(x, y, width, height int) *ImageBuf {
	if !b.inBounds(x, y, width, height) {
		return nil
	}

	rowBytes := b.format.RowBytes(width)
	bpp := b.format.BytesPerPixel()
	data := make([]byte, rowBytes*height)
	for row := range height {
		src := (y+row)*b.stride + x*bpp
		copy(data[row*rowBytes:(row+1)*rowBytes], b.data[src:src+rowBytes])
	}

	return &ImageBuf{
		data:   data,
		width:  width,
		height: height,
		stride: rowBytes,
		format: b.format,
	}
}

func (b *ImageBuf) inBounds(x, y, width, height int) bool {
	if x < 0 || y < 0 || width <= 0 || height <= 0 {
		return false
	}
	return x+width <= b.width && y+height <= b.height
}

// Equal reports whether two buffers have the same dimensions, format
// and visible pixels. Row padding is ignored.
func (b *ImageBuf) Equal(other *ImageBuf) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.width != other.width || b.height != other.height || b.format != other.format {
		return false
	}
	for y := range b.height {
		if !bytes.Equal(b.RowBytes(y), other.RowBytes(y)) {
			return false
		}
	}
	return true
}
