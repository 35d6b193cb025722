package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"golang.org/x/image/bmp"
)

func encodedPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func gradientNRGBA(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 7, A: 200})
		}
	}
	return img
}

func TestFromStdImage_NRGBA(t *testing.T) {
	src := gradientNRGBA(6, 4)
	buf := FromStdImage(src)
	if buf.Format() != FormatRGBA8 {
		t.Fatalf("Format() = %v, want RGBA8", buf.Format())
	}
	r, g, b, a := buf.GetRGBA(5, 3)
	if r != 50 || g != 30 || b != 7 || a != 200 {
		t.Errorf("GetRGBA(5, 3) = (%d, %d, %d, %d), want (50, 30, 7, 200)", r, g, b, a)
	}
}

func TestFromStdImage_SubImageOrigin(t *testing.T) {
	src := gradientNRGBA(6, 4).SubImage(image.Rect(2, 1, 6, 4))
	buf := FromStdImage(src)
	if buf.Width() != 4 || buf.Height() != 3 {
		t.Fatalf("Bounds() = %dx%d, want 4x3", buf.Width(), buf.Height())
	}
	if r, g, _, _ := buf.GetRGBA(0, 0); r != 20 || g != 10 {
		t.Errorf("origin pixel = (%d, %d), want (20, 10)", r, g)
	}
}

func TestFromStdImage_Gray(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.SetGray(1, 1, color.Gray{Y: 77})
	buf := FromStdImage(gray)
	r, g, b, a := buf.GetRGBA(1, 1)
	if r != 77 || g != 77 || b != 77 || a != 255 {
		t.Errorf("GetRGBA(1, 1) = (%d, %d, %d, %d), want (77, 77, 77, 255)", r, g, b, a)
	}
}

func TestFromStdImage_Empty(t *testing.T) {
	if FromStdImage(image.NewNRGBA(image.Rect(0, 0, 0, 5))) != nil {
		t.Error("FromStdImage(empty) should return nil")
	}
}

func TestToStdImage(t *testing.T) {
	buf, _ := NewImageBuf(2, 2, FormatBGRA8)
	_ = buf.SetRGBA(1, 0, 10, 20, 30, 255)

	img := buf.ToStdImage()
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("ToStdImage() = %T, want *image.NRGBA", img)
	}
	if got := nrgba.NRGBAAt(1, 0); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("NRGBAAt(1, 0) = %v", got)
	}

	gray, _ := NewImageBuf(2, 2, FormatGray8)
	if _, ok := gray.ToStdImage().(*image.Gray); !ok {
		t.Error("Gray8 should convert to *image.Gray")
	}

	premul, _ := NewImageBuf(2, 2, FormatRGBAPremul)
	if _, ok := premul.ToStdImage().(*image.RGBA); !ok {
		t.Error("RGBAPremul should convert to *image.RGBA")
	}
}

func TestImageBuf_RGBA(t *testing.T) {
	buf, _ := NewImageBuf(1, 1, FormatBGRAPremul)
	_ = buf.SetRGBA(0, 0, 50, 100, 0, 128)
	got := buf.RGBA()
	if len(got) != 4 {
		t.Fatalf("len(RGBA()) = %d, want 4", len(got))
	}
	if got[0] != 99 || got[1] != 199 || got[2] != 0 || got[3] != 128 {
		t.Errorf("RGBA() = %v, want [99 199 0 128]", got)
	}

	// Channels above alpha are invalid premultiplied data; they saturate.
	bad, _ := NewImageBuf(1, 1, FormatRGBAPremul)
	_ = bad.SetRGBA(0, 0, 200, 100, 101, 100)
	if got := bad.RGBA(); got[0] != 255 || got[1] != 255 || got[2] != 255 || got[3] != 100 {
		t.Errorf("RGBA() of malformed pixel = %v, want [255 255 255 100]", got)
	}

	rgba, _ := NewImageBuf(2, 1, FormatRGBA8)
	if out := rgba.RGBA(); &out[0] != &rgba.Data()[0] {
		t.Error("RGBA() on packed RGBA8 should not copy")
	}
}

func TestDecodeFormats(t *testing.T) {
	src := gradientNRGBA(8, 12)

	var bmpData bytes.Buffer
	if err := bmp.Encode(&bmpData, image.NewGray(image.Rect(0, 0, 8, 12))); err != nil {
		t.Fatalf("bmp.Encode() error = %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"png", encodedPNG(t, src)},
		{"bmp", bmpData.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Decode(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if buf.Width() != 8 || buf.Height() != 12 {
				t.Errorf("Bounds() = %dx%d, want 8x12", buf.Width(), buf.Height())
			}
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not an image")} {
		if _, err := Decode(bytes.NewReader(data)); err == nil {
			t.Errorf("Decode(%q) should fail", data)
		}
	}
}

func TestLoadImageFS(t *testing.T) {
	fsys := fstest.MapFS{
		"art/tiles.png": &fstest.MapFile{Data: encodedPNG(t, gradientNRGBA(16, 24))},
	}

	buf, err := LoadImageFS(fsys, "art/tiles.png")
	if err != nil {
		t.Fatalf("LoadImageFS() error = %v", err)
	}
	if buf.Width() != 16 || buf.Height() != 24 {
		t.Errorf("Bounds() = %dx%d, want 16x24", buf.Width(), buf.Height())
	}

	if _, err := LoadImageFS(fsys, "art/missing.png"); err == nil {
		t.Error("LoadImageFS(missing) should fail")
	}
}

func TestSavePNG_LoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	buf := FromStdImage(gradientNRGBA(3, 5))
	if err := buf.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}

	loaded, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}
	if !loaded.Equal(buf) {
		t.Error("round-tripped image differs")
	}

	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadImage(missing) error = %v, want not-exist", err)
	}
}
