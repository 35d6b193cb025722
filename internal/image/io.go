package image

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// LoadImage loads an image from the given file path, auto-detecting the format.
// Supported formats: PNG, JPEG, GIF, BMP, TIFF, WebP.
func LoadImage(path string) (*ImageBuf, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// LoadImageFS loads an image from fsys, auto-detecting the format.
func LoadImageFS(fsys fs.FS, path string) (*ImageBuf, error) {
	f, err := fsys.Open(filepath.ToSlash(filepath.Clean(path)))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Decode decodes an image from the given reader, auto-detecting the format.
// The result is always FormatRGBA8.
func Decode(r io.Reader) (*ImageBuf, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	buf := FromStdImage(img)
	if buf == nil {
		return nil, ErrInvalidDimensions
	}
	return buf, nil
}

// EncodePNG encodes the image as PNG to the given writer.
func (b *ImageBuf) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, b.ToStdImage()); err != nil {
		return fmt.Errorf("image: encode PNG: %w", err)
	}
	return nil
}

// SavePNG saves the image as a PNG file.
func (b *ImageBuf) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}

	if err := b.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// FromStdImage creates an RGBA8 ImageBuf from a standard library image.Image.
// Returns nil for an empty image.
func FromStdImage(img image.Image) *ImageBuf {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	buf, err := NewImageBuf(width, height, FormatRGBA8)
	if err != nil {
		return nil
	}

	// NRGBA shares the non-premultiplied byte layout.
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := range height {
			srcStart := nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(buf.RowBytes(y), nrgba.Pix[srcStart:srcStart+width*4])
		}
		return buf
	}

	for y := range height {
		for x := range width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			_ = buf.SetRGBA(x, y, c.R, c.G, c.B, c.A)
		}
	}

	return buf
}

// ToStdImage converts the ImageBuf to a standard library image.Image.
// Returns *image.Gray for Gray8, *image.RGBA for premultiplied formats
// and *image.NRGBA for everything else.
func (b *ImageBuf) ToStdImage() image.Image {
	rect := image.Rect(0, 0, b.width, b.height)

	switch b.format {
	case FormatGray8:
		gray := image.NewGray(rect)
		for y := range b.height {
			copy(gray.Pix[y*gray.Stride:], b.RowBytes(y))
		}
		return gray

	case FormatRGBAPremul, FormatBGRAPremul:
		rgba := image.NewRGBA(rect)
		for y := range b.height {
			for x := range b.width {
				r, g, bl, a := b.GetRGBA(x, y)
				off := rgba.PixOffset(x, y)
				rgba.Pix[off] = r
				rgba.Pix[off+1] = g
				rgba.Pix[off+2] = bl
				rgba.Pix[off+3] = a
			}
		}
		return rgba

	default:
		nrgba := image.NewNRGBA(rect)
		for y := range b.height {
			for x := range b.width {
				r, g, bl, a := b.GetRGBA(x, y)
				off := nrgba.PixOffset(x, y)
				nrgba.Pix[off] = r
				nrgba.Pix[off+1] = g
				nrgba.Pix[off+2] = bl
				nrgba.Pix[off+3] = a
			}
		}
		return nrgba
	}
}

// RGBA returns densely packed non-premultiplied RGBA bytes, converting
// from the buffer's format when necessary.
func (b *ImageBuf) RGBA() []byte {
	if b.format == FormatRGBA8 {
		return b.Packed()
	}
	out := make([]byte, b.width*b.height*4)
	for y := range b.height {
		for x := range b.width {
			r, g, bl, a := b.GetRGBA(x, y)
			if b.format.IsPremultiplied() && a != 0 && a != 255 {
				r = unpremultiply(r, a)
				g = unpremultiply(g, a)
				bl = unpremultiply(bl, a)
			}
			off := (y*b.width + x) * 4
			out[off] = r
			out[off+1] = g
			out[off+2] = bl
			out[off+3] = a
		}
	}
	return out
}

// unpremultiply recovers a straight channel value. Malformed input with
// c > a saturates at 255.
func unpremultiply(c, a uint8) uint8 {
	return uint8(min(uint16(c)*255/uint16(a), 255))
}
