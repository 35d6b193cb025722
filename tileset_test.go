package texpos

import (
	"errors"
	"io/fs"
	"slices"
	"testing"
	"testing/fstest"
)

func TestTileCount(t *testing.T) {
	tests := []struct {
		name         string
		w, h, tw, th int
		cols, rows   int
	}{
		{"exact", 16, 24, 8, 12, 2, 2},
		{"partial edges dropped", 20, 30, 8, 12, 2, 2},
		{"smaller than tile", 7, 11, 8, 12, 0, 0},
		{"single row", 32, 12, 8, 12, 4, 1},
		{"zero tile width", 16, 24, 0, 12, 0, 0},
		{"negative tile height", 16, 24, 8, -1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := TileCount(tt.w, tt.h, tt.tw, tt.th)
			if cols != tt.cols || rows != tt.rows {
				t.Errorf("TileCount(%d, %d, %d, %d) = %d, %d; want %d, %d",
					tt.w, tt.h, tt.tw, tt.th, cols, rows, tt.cols, tt.rows)
			}
		})
	}
}

func TestSliceTileset_RowMajor(t *testing.T) {
	s := SurfaceFromImage(decodePNG(t, tilesetPNG(t, 24, 24, 8, 12)))

	tiles := SliceTileset(s, 8, 12)
	if len(tiles) != 6 {
		t.Fatalf("got %d tiles, want 6", len(tiles))
	}
	for i, tile := range tiles {
		if tile.Width() != 8 || tile.Height() != 12 {
			t.Errorf("tile %d is %dx%d, want 8x12", i, tile.Width(), tile.Height())
		}
		r, _, _, _ := tile.GetRGBA(4, 6)
		if r != uint8(i+1) {
			t.Errorf("tile %d has value %d, want %d", i, r, i+1)
		}
	}
}

func TestSliceTileset_IndependentCopies(t *testing.T) {
	s := newTestSurface(t, 16, 12, 10)
	tiles := SliceTileset(s, 8, 12)

	s.Fill(200, 200, 200, 255)
	if r, _, _, _ := tiles[0].GetRGBA(0, 0); r != 10 {
		t.Errorf("tile changed with source: %d", r)
	}
	if SliceTileset(nil, 8, 12) != nil {
		t.Error("SliceTileset(nil) returned tiles")
	}
}

func TestTilesetLoader_Load(t *testing.T) {
	fsys := fstest.MapFS{
		"tiles.png":   {Data: tilesetPNG(t, 16, 24, 8, 12)},
		"partial.png": {Data: tilesetPNG(t, 20, 13, 8, 12)},
		"tiny.png":    {Data: tilesetPNG(t, 4, 4, 8, 12)},
		"broken.png":  {Data: []byte("not a png")},
	}
	tests := []struct {
		name  string
		path  string
		tw    int
		th    int
		count int
	}{
		{"2x2 grid", "tiles.png", 8, 12, 4},
		{"partial tiles dropped", "partial.png", 8, 12, 2},
		{"default tile size", "tiles.png", 0, 0, 4},
		{"whole image as one tile", "tiles.png", 16, 24, 1},
		{"image smaller than tile", "tiny.png", 8, 12, 0},
		{"missing file", "missing.png", 8, 12, 0},
		{"malformed file", "broken.png", 8, 12, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewHandleTable(&fakeBackend{}, nil)
			loader := NewTilesetLoader(table, FileDecoder{FS: fsys}, nil)

			handles := loader.Load(tt.path, tt.tw, tt.th)
			if handles == nil {
				t.Fatal("Load returned nil, want empty slice")
			}
			if len(handles) != tt.count {
				t.Fatalf("got %d handles, want %d", len(handles), tt.count)
			}
			want := make([]Handle, tt.count)
			for i := range want {
				want[i] = Handle(i + 1)
			}
			if !slices.Equal(handles, want) {
				t.Errorf("handles = %v, want %v", handles, want)
			}
			if table.Len() != tt.count {
				t.Errorf("table.Len() = %d, want %d", table.Len(), tt.count)
			}
		})
	}
}

func TestTilesetLoader_DecodeErrors(t *testing.T) {
	loader := NewTilesetLoader(NewHandleTable(nil, nil), FileDecoder{FS: fstest.MapFS{}}, nil)

	_, err := loader.Decode("missing.png")
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Decode error = %v, want ErrDecode", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Decode error = %v, want wrapped fs.ErrNotExist", err)
	}

	nilDecoder := NewTilesetLoader(NewHandleTable(nil, nil), decoderFunc(func(string) (*Surface, error) {
		return nil, nil
	}), nil)
	if _, err := nilDecoder.Decode("x.png"); !errors.Is(err, ErrNilSurface) {
		t.Errorf("Decode of nil surface error = %v, want ErrNilSurface", err)
	}
}

func TestTilesetLoader_LoggerReceivesFailure(t *testing.T) {
	logger, buf := captureLogger()
	loader := NewTilesetLoader(NewHandleTable(nil, nil), FileDecoder{FS: fstest.MapFS{}}, logger)

	loader.Load("missing.png", 8, 12)
	if buf.Len() == 0 {
		t.Error("decode failure was not logged")
	}
}

type decoderFunc func(string) (*Surface, error)

func (f decoderFunc) Decode(path string) (*Surface, error) { return f(path) }

func TestCachingDecoder(t *testing.T) {
	calls := 0
	inner := decoderFunc(func(path string) (*Surface, error) {
		calls++
		if path == "bad.png" {
			return nil, fs.ErrNotExist
		}
		return newTestSurface(t, 16, 12, 1), nil
	})
	d := NewCachingDecoder(inner, 4)

	first, err := d.Decode("art/a.png")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := d.Decode("art/./a.png")
	if first != second || calls != 1 {
		t.Errorf("second decode not served from cache (calls = %d)", calls)
	}

	d.Decode("bad.png")
	d.Decode("bad.png")
	if calls != 3 {
		t.Errorf("failures were cached (calls = %d, want 3)", calls)
	}

	d.Forget("art/a.png")
	d.Decode("art/a.png")
	if calls != 4 {
		t.Errorf("Forget did not drop entry (calls = %d, want 4)", calls)
	}
	if s := d.Stats(); s.Hits != 1 {
		t.Errorf("Stats().Hits = %d, want 1", s.Hits)
	}
}

func TestTilesetLoader_CachedTilesAreIndependent(t *testing.T) {
	fsys := fstest.MapFS{"tiles.png": {Data: tilesetPNG(t, 16, 12, 8, 12)}}
	table := NewHandleTable(&fakeBackend{}, nil)
	loader := NewTilesetLoader(table, NewCachingDecoder(FileDecoder{FS: fsys}, 2), nil)

	a := loader.Load("tiles.png", 8, 12)
	b := loader.Load("tiles.png", 8, 12)
	if len(a) != 2 || len(b) != 2 || a[0] == b[0] {
		t.Fatalf("loads = %v, %v; want two distinct pairs of handles", a, b)
	}
	sa, _ := table.Surface(a[0])
	sb, _ := table.Surface(b[0])
	if sa == sb || !sa.Equal(sb) {
		t.Error("tiles from cached decode should be equal copies")
	}
}
