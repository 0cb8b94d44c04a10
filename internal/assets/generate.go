package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voxelengine.dev/internal/catalogs"
	"voxelengine.dev/internal/guid"
	"voxelengine.dev/internal/unityyaml"
)

// GUID sources, in precedence order.
const (
	GUIDFromCatalog = "catalog"
	GUIDFromMeta    = "meta"
	GUIDGenerated   = "new"
)

type GenerateOptions struct {
	BlocksDir  string
	Blocks     []catalogs.BlockDef
	ScriptGUID string
	Force      bool
	Writer     *Writer
}

type Generated struct {
	Block      string
	AssetPath  string
	GUID       string
	GUIDSource string
	// ReplacedGUID is the meta guid a catalog asset_guid overrode, when the two differ.
	ReplacedGUID string
	Skipped      bool
	Changed      bool
}

// Generate writes a Block_<Name>.asset and its .meta for every block. Existing assets are
// left alone unless Force is set.
func Generate(opts GenerateOptions) ([]Generated, error) {
	if !guid.Valid(opts.ScriptGUID) {
		return nil, fmt.Errorf("invalid block script guid %q", opts.ScriptGUID)
	}
	out := make([]Generated, 0, len(opts.Blocks))
	for _, b := range opts.Blocks {
		path := filepath.Join(opts.BlocksDir, b.AssetName()+assetExt)
		g := Generated{Block: b.AssetName(), AssetPath: path}

		if _, err := os.Stat(path); err == nil && !opts.Force {
			g.Skipped = true
			out = append(out, g)
			continue
		}

		id, src, err := blockGUID(b, path)
		if err != nil {
			return out, err
		}
		g.GUID, g.GUIDSource = id, src
		if src == GUIDFromCatalog {
			if prev, err := unityyaml.ReadMetaGUID(path); err == nil && prev != id {
				g.ReplacedGUID = prev
			}
		}

		asset, err := unityyaml.RenderBlockAsset(b, opts.ScriptGUID)
		if err != nil {
			return out, fmt.Errorf("%s: %w", b.AssetName(), err)
		}
		meta, err := unityyaml.RenderNativeMeta(id)
		if err != nil {
			return out, fmt.Errorf("%s: %w", b.AssetName(), err)
		}
		c1, err := opts.Writer.WriteFile(path, asset)
		if err != nil {
			return out, err
		}
		c2, err := opts.Writer.WriteFile(unityyaml.MetaPath(path), meta)
		if err != nil {
			return out, err
		}
		g.Changed = c1 || c2
		out = append(out, g)
	}
	return out, nil
}

func blockGUID(b catalogs.BlockDef, assetPath string) (string, string, error) {
	if b.AssetGUID != "" {
		return b.AssetGUID, GUIDFromCatalog, nil
	}
	id, err := unityyaml.ReadMetaGUID(assetPath)
	switch {
	case err == nil:
		return id, GUIDFromMeta, nil
	case errors.Is(err, os.ErrNotExist):
		return guid.New(), GUIDGenerated, nil
	default:
		return "", "", err
	}
}

// SelectBlocks returns the named blocks in palette order, or the whole palette when names is
// empty. Names may be given with or without the Block_ prefix.
func SelectBlocks(cat catalogs.BlockCatalog, names []string) ([]catalogs.BlockDef, error) {
	if len(names) == 0 {
		return append([]catalogs.BlockDef(nil), cat.Palette...), nil
	}
	want := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		asset := n
		if !strings.HasPrefix(asset, blockPrefix) {
			asset = blockPrefix + asset
		}
		if _, ok := cat.Lookup(asset); !ok {
			if s, ok := Suggest(asset, cat.AssetNames()); ok {
				return nil, fmt.Errorf("unknown block %q (did you mean %s?)", n, s)
			}
			return nil, fmt.Errorf("unknown block %q", n)
		}
		want[asset] = true
	}
	var out []catalogs.BlockDef
	for _, b := range cat.Palette {
		if want[b.AssetName()] {
			out = append(out, b)
		}
	}
	return out, nil
}
