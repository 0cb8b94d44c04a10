package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"voxelengine.dev/internal/catalogs"
	"voxelengine.dev/internal/config"
	"voxelengine.dev/internal/texture"
)

func main() {
	var (
		configPath   = flag.String("config", "", "path to toolkit.yaml (default: "+config.DefaultPath+" if present)")
		configDir    = flag.String("configs", "./configs", "catalog directory (textures.json, blocks.json)")
		project      = flag.String("project", "", "Unity project root (overrides project_root)")
		previewScale = flag.Int("preview_scale", -1, "write an upscaled atlas preview at this scale (overrides atlas.preview_scale)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[texgen] ", log.LstdFlags)

	cfg, used, err := config.Find(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *project != "" {
		cfg.ProjectRoot = *project
	}
	if *previewScale >= 0 {
		cfg.Atlas.PreviewScale = *previewScale
	}
	if used != "" {
		logger.Printf("config: %s", used)
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "catalogs:", err)
		os.Exit(1)
	}

	written, err := texture.Generate(texture.Options{
		Textures:     cats.Textures.Palette,
		TilesDir:     cfg.TexturesDir(),
		AtlasPath:    cfg.AtlasPath(),
		AtlasSize:    cfg.Atlas.Size,
		TileSize:     cfg.Atlas.TileSize,
		PreviewScale: cfg.Atlas.PreviewScale,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(1)
	}

	var total int64
	for _, w := range written {
		logger.Printf("wrote %s (%s)", w.Path, humanize.Bytes(uint64(w.Bytes)))
		total += w.Bytes
	}
	logger.Printf("generated %d textures: tiles in %s, atlas %s (%s total)",
		len(cats.Textures.Palette), cfg.TexturesDir(), cfg.AtlasPath(), humanize.Bytes(uint64(total)))
}
