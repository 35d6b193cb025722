package texpos

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/gogpu/texpos/internal/cache"
	"github.com/gogpu/texpos/internal/image"
)

// FileDecoder decodes PNG, JPEG, GIF, BMP, TIFF and WebP files.
// With a nil FS, paths are opened from the operating system.
type FileDecoder struct {
	FS fs.FS
}

// Decode implements Decoder.
func (d FileDecoder) Decode(path string) (*Surface, error) {
	if d.FS != nil {
		return image.LoadImageFS(d.FS, path)
	}
	return image.LoadImage(path)
}

// CachingDecoder keeps recently decoded images so repeated loads of one
// tileset decode the file once. Decoded surfaces are shared between
// callers and must not be modified.
type CachingDecoder struct {
	next  Decoder
	cache *cache.Cache[string, *Surface]
}

// NewCachingDecoder wraps next with an LRU cache of size entries.
func NewCachingDecoder(next Decoder, size int) *CachingDecoder {
	return &CachingDecoder{
		next:  next,
		cache: cache.New[string, *Surface](size),
	}
}

// Decode implements Decoder. Failures are not cached.
func (d *CachingDecoder) Decode(path string) (*Surface, error) {
	key := cleanAssetPath(path)
	if s, ok := d.cache.Get(key); ok {
		return s, nil
	}
	s, err := d.next.Decode(path)
	if err != nil {
		return nil, err
	}
	d.cache.Set(key, s)
	return s, nil
}

// Forget drops path from the cache so the next Decode reads the file again.
func (d *CachingDecoder) Forget(path string) {
	d.cache.Delete(cleanAssetPath(path))
}

// Stats returns the cache's hit and miss counts.
func (d *CachingDecoder) Stats() cache.Stats {
	return d.cache.Stats()
}

// TileCount returns the number of whole tiles in a width×height image.
// Partial tiles on the right and bottom edges are not counted.
func TileCount(width, height, tileW, tileH int) (cols, rows int) {
	if tileW <= 0 || tileH <= 0 {
		return 0, 0
	}
	return width / tileW, height / tileH
}

// SliceTileset cuts s into tileW×tileH tiles in row-major order, so tile
// (r, c) is at index r*cols+c. Each tile is an independent copy.
// Partial tiles on the right and bottom edges are dropped.
func SliceTileset(s *Surface, tileW, tileH int) []*Surface {
	if s == nil {
		return nil
	}
	cols, rows := TileCount(s.Width(), s.Height(), tileW, tileH)
	tiles := make([]*Surface, 0, cols*rows)
	for r := range rows {
		for c := range cols {
			tiles = append(tiles, s.Crop(c*tileW, r*tileH, tileW, tileH))
		}
	}
	return tiles
}

// TilesetLoader decodes tileset images and registers every tile in a
// HandleTable.
type TilesetLoader struct {
	table   *HandleTable
	decoder Decoder
	log     logSource
}

// NewTilesetLoader creates a loader allocating into table.
// A nil decoder selects FileDecoder on the OS filesystem; a nil logger
// selects the package logger.
func NewTilesetLoader(table *HandleTable, decoder Decoder, logger *slog.Logger) *TilesetLoader {
	if decoder == nil {
		decoder = FileDecoder{}
	}
	return &TilesetLoader{
		table:   table,
		decoder: decoder,
		log:     logSource{l: logger},
	}
}

// Load decodes path and allocates one handle per whole tile, row-major.
// Non-positive tile sizes select TileWidthPx×TileHeightPx. A decode
// failure is reported and yields an empty slice.
func (l *TilesetLoader) Load(path string, tileW, tileH int) []Handle {
	s, err := l.Decode(path)
	if err != nil {
		l.log.logger().Warn("texpos: tileset not loaded", "path", path, "err", err)
		return []Handle{}
	}
	return l.LoadSurface(s, tileW, tileH)
}

// Decode runs the loader's decoder and wraps failures in ErrDecode.
func (l *TilesetLoader) Decode(path string) (*Surface, error) {
	s, err := l.decoder.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, ErrNilSurface)
	}
	return s, nil
}

// LoadSurface slices an already decoded surface and allocates each tile.
func (l *TilesetLoader) LoadSurface(s *Surface, tileW, tileH int) []Handle {
	tileW, tileH = tileSize(tileW, tileH)
	tiles := SliceTileset(s, tileW, tileH)
	handles := make([]Handle, 0, len(tiles))
	for _, tile := range tiles {
		handles = append(handles, l.table.Allocate(tile))
	}
	l.log.logger().Debug("texpos: tileset sliced",
		"tile_w", tileW, "tile_h", tileH, "tiles", len(handles))
	return handles
}

func tileSize(w, h int) (int, int) {
	if w <= 0 {
		w = TileWidthPx
	}
	if h <= 0 {
		h = TileHeightPx
	}
	return w, h
}
