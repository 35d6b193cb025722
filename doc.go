// Package texpos provides stable texture handles over a rendering backend
// whose texture atlas may be reset at any time.
//
// # Overview
//
// A host loads images or tilesets once and keeps the returned [Handle]
// values. Every frame it asks for the current atlas position ([Texpos]) of
// a handle. When the backend drops its atlas (display mode change, device
// loss) the [ResetCoordinator] re-uploads every retained surface in handle
// order; handles never change, only the positions they resolve to.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/texpos"
//	    "github.com/gogpu/texpos/backend/software"
//	)
//
//	atlas := software.New(software.DefaultConfig())
//	m := texpos.New(atlas, texpos.WithAssetDir("data"))
//	if err := m.Init(); err != nil {
//	    log.Printf("some built-in assets failed to load: %v", err)
//	}
//	defer m.Cleanup()
//
//	tiles := m.LoadTileset("art/tiles.png", texpos.TileWidthPx, texpos.TileHeightPx)
//	pos := m.TexposByHandle(tiles[0]) // resolve every frame, never cache
//
// # Failure model
//
// No operation panics or returns a failure to the caller in the hot path.
// Failures are reported to the configured [slog.Logger] and surface as
// sentinels: [InvalidTexpos], [NoHandle] or an empty handle slice.
//
// # Architecture
//
//   - Handle Table: [HandleTable], owns retained surfaces and positions
//   - Tileset Loader: [TilesetLoader], decodes and slices row-major
//   - Reset Coordinator: [ResetCoordinator], backend reset observer
//   - Asset Registry: [AssetRegistry], built-in tilesets by name
//   - Lifecycle: [Manager], explicit context object with Init/Cleanup
//
// Backends live under backend/: software (shelf-packed atlas), gogpu
// (textures through gpucontext) and ebiten.
package texpos
