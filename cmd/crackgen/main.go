package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"voxelengine.dev/internal/config"
	"voxelengine.dev/internal/crack"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to toolkit.yaml (default: "+config.DefaultPath+" if present)")
		project    = flag.String("project", "", "Unity project root (overrides project_root)")
		outDir     = flag.String("out", "", "output directory (default: paths.crack_dir)")
		seed       = flag.Int64("seed", 0, "random seed (default: crack.seed)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[crackgen] ", log.LstdFlags)

	cfg, _, err := config.Find(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *project != "" {
		cfg.ProjectRoot = *project
	}
	if flagSet("seed") {
		cfg.Crack.Seed = *seed
	}
	dir := cfg.CrackDir()
	if *outDir != "" {
		dir = *outDir
	}

	m, err := crack.Generate(dir, crack.Params{
		Seed:      cfg.Crack.Seed,
		Size:      cfg.Crack.Size,
		Coverage:  cfg.Crack.Coverage,
		BaseAlpha: cfg.Crack.BaseAlpha,
		AlphaStep: cfg.Crack.AlphaStep,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(1)
	}

	for _, st := range m.Stages {
		path := filepath.Join(dir, st.File)
		size := "?"
		if fi, err := os.Stat(path); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}
		logger.Printf("wrote %s (%s): %d%% coverage, alpha=%d", path, size, st.Percent, st.Alpha)
	}
	logger.Printf("generated %d crack sprites in %s (seed %d)", len(m.Stages), dir, m.Seed)
}

// flagSet reports whether name was given on the command line, so zero values can be chosen.
func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
