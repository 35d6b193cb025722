package texpos

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"sync"
	"testing"
	"testing/fstest"
)

var errInjected = errors.New("injected upload failure")

// fakeBackend hands out strictly increasing positions that never restart,
// so every re-upload yields positions different from the previous ones.
type fakeBackend struct {
	mu        sync.Mutex
	next      Texpos
	uploads   int
	failAt    map[int]bool // upload number (1-based) -> fail
	failAll   bool
	listeners []func()
}

func (b *fakeBackend) Upload(s *Surface) (Texpos, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.uploads++
	if b.failAll || b.failAt[b.uploads] {
		return InvalidTexpos, errInjected
	}
	pos := b.next
	b.next++
	return pos, nil
}

func (b *fakeBackend) OnReset(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// reset simulates the backend invalidating its textures.
func (b *fakeBackend) reset() {
	b.mu.Lock()
	listeners := append([]func(){}, b.listeners...)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (b *fakeBackend) uploadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploads
}

func (b *fakeBackend) setFailAll(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAll = v
}

// updatingBackend is a fakeBackend that also overwrites textures in place.
type updatingBackend struct {
	fakeBackend
	updated map[Texpos]*Surface
	refuse  bool
}

func (b *updatingBackend) Update(pos Texpos, s *Surface) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refuse || pos < 0 || pos >= b.next {
		return errInjected
	}
	if b.updated == nil {
		b.updated = make(map[Texpos]*Surface)
	}
	b.updated[pos] = s
	return nil
}

func (b *updatingBackend) updatedAt(pos Texpos) *Surface {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updated[pos]
}

// badPositionBackend reports success with a negative position.
type badPositionBackend struct{}

func (badPositionBackend) Upload(*Surface) (Texpos, error) { return -5, nil }
func (badPositionBackend) OnReset(func())                  {}

// newTestSurface returns a w×h RGBA8 surface filled with one color.
func newTestSurface(t testing.TB, w, h int, v uint8) *Surface {
	t.Helper()
	s, err := NewSurface(w, h, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewSurface(%d, %d): %v", w, h, err)
	}
	s.Fill(v, v, v, 255)
	return s
}

// tilesetPNG encodes a w×h image whose tile (r, c) of size tw×th is
// filled with gray value r*cols+c+1.
func tilesetPNG(t testing.TB, w, h, tw, th int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cols := max(w/tw, 1)
	for y := range h {
		for x := range w {
			v := uint8((y/th)*cols + x/tw + 1)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func decodePNG(t testing.TB, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	return img
}

func encodeSurface(t testing.TB, s *Surface) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	return buf.Bytes()
}

// testFS returns a filesystem holding a PNG for every entry of m, each
// two tiles wide and one tile high.
func testFS(t testing.TB, m Manifest) fstest.MapFS {
	t.Helper()
	fsys := fstest.MapFS{}
	for _, e := range m.Assets {
		w, h := e.TileSize()
		fsys[e.Path] = &fstest.MapFile{Data: tilesetPNG(t, 2*w, h, w, h)}
	}
	return fsys
}

// captureLogger returns a debug-level logger writing to the returned buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
