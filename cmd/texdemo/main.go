// Command texdemo loads tilesets through texpos, simulates a backend
// reset and prints how handles keep resolving while positions move.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/gogpu/texpos"
	"github.com/gogpu/texpos/backend"
	"github.com/gogpu/texpos/backend/software"
)

func main() {
	var (
		assetDir    = flag.String("assets", "", "asset root holding "+texpos.DefaultArtDir)
		manifest    = flag.String("manifest", "", "YAML asset manifest (default: built-in list)")
		tileset     = flag.String("tileset", "", "tileset image to load, relative to -assets")
		tileW       = flag.Int("tw", texpos.TileWidthPx, "tile width")
		tileH       = flag.Int("th", texpos.TileHeightPx, "tile height")
		backendName = flag.String("backend", backend.NameSoftware, "texture backend")
		reserve     = flag.Int("reserve", 16, "positions reserved by the simulated reset")
		atlas       = flag.String("atlas", "", "write the first atlas page to this PNG")
		watch       = flag.Bool("watch", false, "reload assets when their files change")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	texpos.SetLogger(logger)

	b, err := backend.Open(*backendName)
	if err != nil {
		log.Fatalf("Failed to open backend: %v", err)
	}

	// Without an asset root there are no built-in files to load.
	mf := texpos.Manifest{}
	opts := []texpos.Option{texpos.WithLogger(logger), texpos.WithTileSize(*tileW, *tileH)}
	if *assetDir != "" {
		mf = texpos.DefaultManifest()
		opts = append(opts, texpos.WithAssetDir(*assetDir))
	}
	if *manifest != "" {
		if mf, err = texpos.LoadManifest(*manifest); err != nil {
			log.Fatalf("Failed to load manifest: %v", err)
		}
	}
	opts = append(opts, texpos.WithManifest(mf))

	m := texpos.New(b, opts...)
	if err := m.Init(); err != nil {
		log.Printf("Some assets failed to load: %v", err)
	}
	defer m.Cleanup()

	var handles []texpos.Handle
	if *tileset != "" {
		handles = m.LoadTileset(*tileset, *tileW, *tileH)
	} else {
		handles = loadDemoTiles(m, *tileW, *tileH)
	}
	log.Printf("Loaded %d tiles, %d built-in assets", len(handles), len(m.Assets()))
	printPositions(m, "before reset", handles)

	sb, ok := b.(*software.Backend)
	if !ok {
		log.Printf("Backend %s cannot simulate a reset", *backendName)
		return
	}
	sb.ResetReserving(*reserve)
	printPositions(m, "after reset", handles)

	if *atlas != "" {
		if page, ok := sb.Page(0); ok {
			if err := page.SavePNG(*atlas); err != nil {
				log.Fatalf("Failed to save atlas: %v", err)
			}
			log.Printf("Atlas page saved to %s (%dx%d, %.0f%% used)",
				*atlas, page.Width(), page.Height(), sb.Utilization(0)*100)
		}
	}

	if *watch {
		if *assetDir == "" {
			log.Fatal("-watch needs -assets")
		}
		if err := watchAssets(m, *assetDir, mf); err != nil {
			log.Fatalf("Watch failed: %v", err)
		}
	}
}

// loadDemoTiles builds a 2×2 grid of solid tiles in memory.
func loadDemoTiles(m *texpos.Manager, tw, th int) []texpos.Handle {
	sheet, err := texpos.NewSurface(2*tw, 2*th, texpos.FormatRGBA8)
	if err != nil {
		log.Fatalf("Failed to create demo tileset: %v", err)
	}
	colors := [][3]uint8{{220, 60, 60}, {60, 200, 80}, {60, 90, 220}, {230, 200, 40}}
	for i, c := range colors {
		x0, y0 := (i%2)*tw, (i/2)*th
		for y := y0; y < y0+th; y++ {
			for x := x0; x < x0+tw; x++ {
				_ = sheet.SetRGBA(x, y, c[0], c[1], c[2], 255)
			}
		}
	}

	tiles := texpos.SliceTileset(sheet, tw, th)
	handles := make([]texpos.Handle, 0, len(tiles))
	for _, tile := range tiles {
		handles = append(handles, m.LoadTexture(tile))
	}
	return handles
}

func printPositions(m *texpos.Manager, title string, handles []texpos.Handle) {
	fmt.Printf("\n%s\n", title)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HANDLE\tTEXPOS")
	for _, h := range handles {
		fmt.Fprintf(tw, "%d\t%d\n", h, m.TexposByHandle(h))
	}
	for _, name := range m.Assets() {
		fmt.Fprintf(tw, "%s[0]\t%d\n", name, m.GetAsset(name, 0))
	}
	_ = tw.Flush()
}

func watchAssets(m *texpos.Manager, root string, mf texpos.Manifest) error {
	w, err := texpos.NewWatcher(texpos.WatchDirs(root, mf)...)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("Watching %s, press Ctrl-C to stop", root)
	for {
		select {
		case path := <-w.Events:
			if err := m.Reload(path); err != nil {
				log.Printf("Reload %s: %v", path, err)
			}
		case err := <-w.Errors:
			log.Printf("Watch error: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}
