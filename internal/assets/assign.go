package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"voxelengine.dev/internal/catalogs"
	"voxelengine.dev/internal/unityyaml"
)

const (
	blockPrefix = "Block_"
	assetExt    = ".asset"
)

type Status string

const (
	StatusOK    Status = "OK"
	StatusSkip  Status = "SKIP"
	StatusError Status = "ERROR"
)

type Outcome struct {
	Block   string
	Path    string
	Status  Status
	Message string
	Changed bool
}

type Report struct {
	GUIDs    int
	Outcomes []Outcome
	Updated  int
	Skipped  int
	Warnings []string
}

type AssignOptions struct {
	BlocksDir   string
	TexturesDir string
	Catalogs    *catalogs.Catalogs
	Writer      *Writer
}

// Assign points the top/side/bottom texture fields of every Block_*.asset in BlocksDir at the
// tile PNGs named by the block catalog.
func Assign(opts AssignOptions) (Report, error) {
	var rep Report
	if opts.Catalogs == nil {
		return rep, fmt.Errorf("no catalogs")
	}

	guids, warnings, err := BuildGUIDMap(opts.TexturesDir, opts.Catalogs.Textures.Palette)
	rep.Warnings = append(rep.Warnings, warnings...)
	if err != nil {
		return rep, err
	}
	rep.GUIDs = len(guids)

	files, err := ListBlockAssets(opts.BlocksDir)
	if err != nil {
		return rep, err
	}
	names := opts.Catalogs.Blocks.AssetNames()

	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), assetExt)
		out, err := assignOne(path, name, opts, guids, names, &rep)
		if err != nil {
			return rep, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		rep.Outcomes = append(rep.Outcomes, out)
		if out.Status == StatusOK {
			rep.Updated++
		} else {
			rep.Skipped++
		}
	}
	return rep, nil
}

func assignOne(path, name string, opts AssignOptions, guids GUIDMap, names []string, rep *Report) (Outcome, error) {
	out := Outcome{Block: name, Path: path}

	b, ok := opts.Catalogs.Blocks.Lookup(name)
	if !ok {
		out.Status = StatusSkip
		out.Message = name + " not in block catalog"
		if s, ok := Suggest(name, names); ok {
			out.Message += fmt.Sprintf(" (did you mean %s?)", s)
		}
		return out, nil
	}
	if b.IsAir() {
		out.Status = StatusSkip
		out.Message = name + " (Air, no textures)"
		return out, nil
	}

	tiles := b.Tiles()
	var refs [3]unityyaml.Ref
	for i, idx := range tiles {
		g, ok := guids[idx]
		if !ok {
			out.Status = StatusError
			out.Message = fmt.Sprintf("Missing GUID for %s (top=%d, side=%d, bottom=%d)", name, tiles[0], tiles[1], tiles[2])
			return out, nil
		}
		refs[i] = unityyaml.TextureRef(g)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	content := string(raw)
	rep.Warnings = append(rep.Warnings, tileMismatches(name, content, b)...)

	fields := [3]string{unityyaml.FieldTopTexture, unityyaml.FieldSideTexture, unityyaml.FieldBottomTexture}
	for i, f := range fields {
		var n int
		content, n = unityyaml.PatchRef(content, f, refs[i])
		if n == 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: no %s field", name, f))
		}
	}

	changed, err := opts.Writer.WriteFile(path, []byte(content))
	if err != nil {
		return out, err
	}
	out.Status = StatusOK
	out.Changed = changed
	out.Message = fmt.Sprintf("top=tile_%d, side=tile_%d, bottom=tile_%d", tiles[0], tiles[1], tiles[2])
	return out, nil
}

// tileMismatches compares the tile indices serialized in the asset against the catalog.
func tileMismatches(name, content string, b catalogs.BlockDef) []string {
	var out []string
	want := map[string]int{
		unityyaml.FieldTopTile:    b.Top,
		unityyaml.FieldSideTile:   b.Side,
		unityyaml.FieldBottomTile: b.Bottom,
	}
	for _, f := range []string{unityyaml.FieldTopTile, unityyaml.FieldSideTile, unityyaml.FieldBottomTile} {
		got, ok := unityyaml.FieldInt(content, f)
		if ok && got != want[f] {
			out = append(out, fmt.Sprintf("%s: asset %s=%d, catalog has %d", name, f, got, want[f]))
		}
	}
	return out
}

// ListBlockAssets returns the Block_*.asset files of dir in name order.
func ListBlockAssets(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, blockPrefix) || !strings.HasSuffix(name, assetExt) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}
