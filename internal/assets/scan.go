package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"voxelengine.dev/internal/catalogs"
	"voxelengine.dev/internal/unityyaml"
)

type TextureRecord struct {
	Index   int
	File    string
	Path    string
	Present bool
	GUID    string
}

type BlockRecord struct {
	Name      string
	ID        int
	AssetPath string
	Present   bool
	GUID      string
	Tiles     [3]int
	// TextureGUIDs holds the (top, side, bottom) texture guids currently in the asset.
	TextureGUIDs [3]string
}

// Inventory is what is on disk for every catalog texture and block.
type Inventory struct {
	Textures []TextureRecord
	Blocks   []BlockRecord
	Warnings []string
}

func Scan(texturesDir, blocksDir string, cats *catalogs.Catalogs) (Inventory, error) {
	var inv Inventory
	for _, t := range cats.Textures.Palette {
		rec := TextureRecord{Index: t.Index, File: t.FileName(), Path: filepath.Join(texturesDir, t.FileName())}
		if _, err := os.Stat(rec.Path); err == nil {
			rec.Present = true
			g, err := unityyaml.ReadMetaGUID(rec.Path)
			if err != nil {
				inv.Warnings = append(inv.Warnings, err.Error())
			}
			rec.GUID = g
		}
		inv.Textures = append(inv.Textures, rec)
	}

	fields := [3]string{unityyaml.FieldTopTexture, unityyaml.FieldSideTexture, unityyaml.FieldBottomTexture}
	tileFields := [3]string{unityyaml.FieldTopTile, unityyaml.FieldSideTile, unityyaml.FieldBottomTile}
	for _, b := range cats.Blocks.Palette {
		rec := BlockRecord{
			Name:      b.AssetName(),
			ID:        b.ID,
			AssetPath: filepath.Join(blocksDir, b.AssetName()+assetExt),
			GUID:      b.AssetGUID,
			Tiles:     b.Tiles(),
		}
		raw, err := os.ReadFile(rec.AssetPath)
		switch {
		case err == nil:
			rec.Present = true
			content := string(raw)
			for i := range fields {
				if r, ok := unityyaml.ReadRef(content, fields[i]); ok && !r.IsNull() {
					rec.TextureGUIDs[i] = r.GUID
				}
				if v, ok := unityyaml.FieldInt(content, tileFields[i]); ok {
					rec.Tiles[i] = v
				}
			}
			if g, err := unityyaml.ReadMetaGUID(rec.AssetPath); err == nil {
				if rec.GUID != "" && rec.GUID != g {
					inv.Warnings = append(inv.Warnings, fmt.Sprintf("%s: meta guid %s differs from catalog %s", rec.Name, g, rec.GUID))
				}
				rec.GUID = g
			} else if !errors.Is(err, os.ErrNotExist) {
				inv.Warnings = append(inv.Warnings, err.Error())
			}
		case errors.Is(err, os.ErrNotExist):
			// not generated yet
		default:
			return inv, err
		}
		inv.Blocks = append(inv.Blocks, rec)
	}
	return inv, nil
}
