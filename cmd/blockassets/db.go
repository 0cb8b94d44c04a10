package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"voxelengine.dev/internal/assets"
	"voxelengine.dev/internal/guid"
	"voxelengine.dev/internal/persistence/indexdb"
)

func indexCmd(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	c := commonFlags(fs)
	dbPath := fs.String("db", "", "sqlite index path (default: <data>/index.db)")
	_ = fs.Parse(args)

	logger := newLogger("index")
	cfg, cats := c.load(logger)
	path := *dbPath
	if path == "" {
		path = cfg.DataPath("index.db")
	}

	inv, err := assets.Scan(cfg.TexturesDir(), cfg.BlocksDir(), cats)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scan:", err)
		os.Exit(1)
	}
	for _, w := range inv.Warnings {
		logger.Printf("WARNING: %s", w)
	}

	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index:", err)
		os.Exit(1)
	}
	if err := idx.UpsertCatalogs(*c.configDir, cats); err != nil {
		_ = idx.Close()
		fmt.Fprintln(os.Stderr, "index catalogs:", err)
		os.Exit(1)
	}
	if err := idx.ReplaceInventory(inv); err != nil {
		_ = idx.Close()
		fmt.Fprintln(os.Stderr, "index inventory:", err)
		os.Exit(1)
	}
	if err := idx.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "close index:", err)
		os.Exit(1)
	}

	tex, blocks := 0, 0
	for _, t := range inv.Textures {
		if t.Present {
			tex++
		}
	}
	for _, b := range inv.Blocks {
		if b.Present {
			blocks++
		}
	}
	size := "?"
	if fi, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	logger.Printf("indexed %d/%d textures, %d/%d block assets into %s (%s)",
		tex, len(inv.Textures), blocks, len(inv.Blocks), path, size)
}

func lookupCmd(args []string) {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	c := commonFlags(fs)
	dbPath := fs.String("db", "", "sqlite index path (default: <data>/index.db)")
	guidArg := fs.String("guid", "", "resolve this guid to its asset")
	tile := fs.Int("tile", -1, "list blocks that use this tile index")
	_ = fs.Parse(args)

	g := strings.ToLower(strings.TrimSpace(*guidArg))
	if g == "" && *tile < 0 {
		fmt.Fprintln(os.Stderr, "missing -guid or -tile")
		os.Exit(2)
	}
	if g != "" && !guid.Valid(g) {
		fmt.Fprintf(os.Stderr, "bad -guid %q: want 32 hex chars\n", *guidArg)
		os.Exit(2)
	}

	logger := newLogger("lookup")
	cfg, _ := c.load(logger)
	path := *dbPath
	if path == "" {
		path = cfg.DataPath("index.db")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "no index at", path, "(run blockassets index first)")
		os.Exit(1)
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index:", err)
		os.Exit(1)
	}
	defer idx.Close()

	if g != "" {
		hits, err := idx.LookupGUID(g)
		if err != nil {
			fmt.Fprintln(os.Stderr, "lookup:", err)
			os.Exit(1)
		}
		if len(hits) == 0 {
			fmt.Printf("%s: not found\n", g)
		}
		for _, h := range hits {
			fmt.Printf("%s\t%s\t%d\t%s\n", h.Kind, h.Name, h.Index, h.Path)
		}
	}
	if *tile >= 0 {
		names, err := idx.BlocksUsingTexture(*tile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "lookup:", err)
			os.Exit(1)
		}
		if len(names) == 0 {
			fmt.Printf("tile %d: unused\n", *tile)
		}
		for _, n := range names {
			fmt.Println(n)
		}
	}
}
