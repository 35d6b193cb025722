package texpos

import (
	"io/fs"
	"log/slog"
	"os"
)

// Option configures a Manager during creation.
//
// Example:
//
//	m := texpos.New(backend,
//	    texpos.WithAssetDir("/opt/host/data"),
//	    texpos.WithLogger(slog.Default()),
//	)
type Option func(*options)

type options struct {
	logger   *slog.Logger
	decoder  Decoder
	fsys     fs.FS
	dir      string
	manifest *Manifest
	tileW    int
	tileH    int
	cache    int
}

func defaultOptions() options {
	return options{
		tileW: TileWidthPx,
		tileH: TileHeightPx,
	}
}

// WithLogger sets the diagnostic sink for this manager instead of the
// package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDecoder replaces the default FileDecoder.
func WithDecoder(d Decoder) Option {
	return func(o *options) {
		o.decoder = d
	}
}

// WithFS reads asset and tileset paths from fsys.
func WithFS(fsys fs.FS) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

// WithAssetDir reads asset and tileset paths relative to dir. Reload
// accepts paths under dir, as reported by a Watcher.
func WithAssetDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
		o.fsys = os.DirFS(dir)
	}
}

// WithDecodeCache keeps up to n decoded images, so loading the same
// tileset repeatedly decodes it once. Reload bypasses the cache.
func WithDecodeCache(n int) Option {
	return func(o *options) {
		o.cache = n
	}
}

// WithManifest replaces DefaultManifest.
func WithManifest(m Manifest) Option {
	return func(o *options) {
		o.manifest = &m
	}
}

// WithTileSize sets the tile size LoadTileset uses when called with
// non-positive dimensions.
func WithTileSize(w, h int) Option {
	return func(o *options) {
		if w > 0 {
			o.tileW = w
		}
		if h > 0 {
			o.tileH = h
		}
	}
}
