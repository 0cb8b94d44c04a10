package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"voxelengine.dev/internal/catalogs"
	"voxelengine.dev/internal/unityyaml"
)

// GUIDMap maps a tile index to the GUID Unity assigned to its PNG.
type GUIDMap map[int]string

// BuildGUIDMap reads the .meta sidecar of every tile PNG in texturesDir. Tiles whose PNG is
// missing are reported as warnings; a PNG without a readable meta guid is an error.
func BuildGUIDMap(texturesDir string, textures []catalogs.TextureDef) (GUIDMap, []string, error) {
	m := GUIDMap{}
	var warnings []string
	for _, t := range textures {
		png := filepath.Join(texturesDir, t.FileName())
		if _, err := os.Stat(png); err != nil {
			if os.IsNotExist(err) {
				warnings = append(warnings, fmt.Sprintf("%s not found, skipping tile %d", t.FileName(), t.Index))
				continue
			}
			return nil, warnings, err
		}
		guid, err := unityyaml.ReadMetaGUID(png)
		if err != nil {
			return nil, warnings, err
		}
		m[t.Index] = guid
	}
	return m, warnings, nil
}
