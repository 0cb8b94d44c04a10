package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"voxelengine.dev/internal/catalogs"
	"voxelengine.dev/internal/unityyaml"
)

// DefinitionsKey is the serialized list of the block registry component in the scene.
const DefinitionsKey = "definitions"

type SceneOptions struct {
	ScenePath string
	BlocksDir string
	Blocks    []catalogs.BlockDef
	Writer    *Writer
}

type SceneResult struct {
	Path     string
	Previous int
	Refs     []unityyaml.Ref
	Changed  bool
}

// UpdateScene rewrites the scene's definitions list with one block-definition reference per
// block, in the given order.
func UpdateScene(opts SceneOptions) (SceneResult, error) {
	res := SceneResult{Path: opts.ScenePath}

	refs := make([]unityyaml.Ref, 0, len(opts.Blocks))
	for _, b := range opts.Blocks {
		id, err := definitionGUID(b, filepath.Join(opts.BlocksDir, b.AssetName()+assetExt))
		if err != nil {
			return res, err
		}
		refs = append(refs, unityyaml.BlockDefRef(id))
	}
	res.Refs = refs

	raw, err := os.ReadFile(opts.ScenePath)
	if err != nil {
		return res, err
	}
	content := string(raw)
	if prev, err := unityyaml.ReadList(content, DefinitionsKey); err == nil {
		res.Previous = len(prev)
	}

	updated, err := unityyaml.ReplaceList(content, DefinitionsKey, refs)
	if err != nil {
		return res, fmt.Errorf("%s: %w", filepath.Base(opts.ScenePath), err)
	}
	res.Changed, err = opts.Writer.WriteFile(opts.ScenePath, []byte(updated))
	return res, err
}

// definitionGUID prefers the guid Unity holds in the asset's meta, then the catalog's fixed guid.
func definitionGUID(b catalogs.BlockDef, assetPath string) (string, error) {
	id, err := unityyaml.ReadMetaGUID(assetPath)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if b.AssetGUID != "" {
		return b.AssetGUID, nil
	}
	return "", fmt.Errorf("%s: no block definition guid (no meta file, no asset_guid in catalog)", b.AssetName())
}
