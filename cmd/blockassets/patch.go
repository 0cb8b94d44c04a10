package main

import (
	"flag"
	"fmt"
	"os"

	"voxelengine.dev/internal/assets"
)

func generateCmd(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	c := commonFlags(fs)
	blocks := fs.String("blocks", "", "comma-separated block names (default: all catalog blocks)")
	force := fs.Bool("force", false, "overwrite existing assets")
	dryRun := fs.Bool("dry_run", false, "report what would be written without writing")
	noBackup := fs.Bool("no_backup", false, "do not back up overwritten files")
	_ = fs.Parse(args)

	logger := newLogger("generate")
	cfg, cats := c.load(logger)

	selected, err := assets.SelectBlocks(cats.Blocks, splitList(*blocks))
	if err != nil {
		fmt.Fprintln(os.Stderr, "blocks:", err)
		os.Exit(2)
	}

	s := openSession(cfg, "generate", *dryRun, *noBackup)
	res, err := assets.Generate(assets.GenerateOptions{
		BlocksDir:  cfg.BlocksDir(),
		Blocks:     selected,
		ScriptGUID: cfg.BlockScriptGUID,
		Force:      *force,
		Writer:     s.writer,
	})
	s.close(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(1)
	}

	written, skipped := 0, 0
	for _, g := range res {
		if g.ReplacedGUID != "" {
			logger.Printf("WARNING: %s: catalog asset_guid %s replaces meta guid %s; scene references to the old guid break", g.Block, g.GUID, g.ReplacedGUID)
		}
		switch {
		case g.Skipped:
			skipped++
			logger.Printf("exists %s (use -force to overwrite)", g.AssetPath)
		case !g.Changed:
			logger.Printf("unchanged %s", g.AssetPath)
		default:
			written++
			logger.Printf("wrote %s guid=%s (%s)", g.AssetPath, g.GUID, g.GUIDSource)
		}
	}
	logger.Printf("done: %d written, %d skipped", written, skipped)
}

func assignCmd(args []string) {
	fs := flag.NewFlagSet("assign", flag.ExitOnError)
	c := commonFlags(fs)
	dryRun := fs.Bool("dry_run", false, "report what would be patched without writing")
	noBackup := fs.Bool("no_backup", false, "do not back up patched files")
	_ = fs.Parse(args)

	logger := newLogger("assign")
	cfg, cats := c.load(logger)

	s := openSession(cfg, "assign", *dryRun, *noBackup)
	logger.Printf("building GUID map from .meta files in %s", cfg.TexturesDir())
	rep, err := assets.Assign(assets.AssignOptions{
		BlocksDir:   cfg.BlocksDir(),
		TexturesDir: cfg.TexturesDir(),
		Catalogs:    cats,
		Writer:      s.writer,
	})
	for _, w := range rep.Warnings {
		logger.Printf("WARNING: %s", w)
	}
	if err != nil {
		s.close(logger)
		fmt.Fprintln(os.Stderr, "assign:", err)
		os.Exit(1)
	}
	logger.Printf("found %d tile GUIDs", rep.GUIDs)

	for _, o := range rep.Outcomes {
		logger.Printf("%s %s: %s", o.Status, o.Block, o.Message)
	}
	s.close(logger)
	logger.Printf("done: %d updated, %d skipped", rep.Updated, rep.Skipped)
}

func sceneCmd(args []string) {
	fs := flag.NewFlagSet("scene", flag.ExitOnError)
	c := commonFlags(fs)
	scenePath := fs.String("scene", "", "scene file (default: paths.scene_path)")
	blocks := fs.String("blocks", "", "comma-separated block names to register (default: all catalog blocks)")
	dryRun := fs.Bool("dry_run", false, "report the new list without writing")
	noBackup := fs.Bool("no_backup", false, "do not back up the scene")
	_ = fs.Parse(args)

	logger := newLogger("scene")
	cfg, cats := c.load(logger)
	path := cfg.ScenePath()
	if *scenePath != "" {
		path = *scenePath
	}

	selected, err := assets.SelectBlocks(cats.Blocks, splitList(*blocks))
	if err != nil {
		fmt.Fprintln(os.Stderr, "blocks:", err)
		os.Exit(2)
	}

	s := openSession(cfg, "scene", *dryRun, *noBackup)
	res, err := assets.UpdateScene(assets.SceneOptions{
		ScenePath: path,
		BlocksDir: cfg.BlocksDir(),
		Blocks:    selected,
		Writer:    s.writer,
	})
	s.close(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scene:", err)
		os.Exit(1)
	}
	for i, r := range res.Refs {
		logger.Printf("  %s %s", selected[i].AssetName(), r.GUID)
	}
	if !res.Changed {
		logger.Printf("%s already up to date (%d definitions)", res.Path, len(res.Refs))
		return
	}
	logger.Printf("updated %s: %d -> %d block definitions", res.Path, res.Previous, len(res.Refs))
}
