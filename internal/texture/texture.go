package texture

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"voxelengine.dev/internal/catalogs"
)

// Tile renders one size x size tile. Dual tiles use the upper color for rows < size/2.
func Tile(def catalogs.TextureDef, size int) *image.NRGBA {
	if !def.Dual() {
		return imaging.New(size, size, def.Fill())
	}
	img := imaging.New(size, size, color.NRGBA{})
	upper, lower := def.Upper(), def.Lower()
	for y := 0; y < size; y++ {
		c := lower
		if y < size/2 {
			c = upper
		}
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// AtlasPosition returns the top-left pixel of a tile inside the atlas. Rows are counted from
// the bottom of the image so tile 0 lands where Unity's UV origin is.
func AtlasPosition(index, atlasSize, tileSize int) image.Point {
	perRow := atlasSize / tileSize
	x := (index % perRow) * tileSize
	y := (atlasSize - tileSize) - (index/perRow)*tileSize
	return image.Pt(x, y)
}

func BuildAtlas(defs []catalogs.TextureDef, atlasSize, tileSize int) (*image.NRGBA, error) {
	capacity := (atlasSize / tileSize) * (atlasSize / tileSize)
	atlas := imaging.New(atlasSize, atlasSize, color.NRGBA{})
	for _, d := range defs {
		if d.Index < 0 || d.Index >= capacity {
			return nil, fmt.Errorf("tile %d (%s) does not fit a %dx%d atlas of %dpx tiles", d.Index, d.Suffix, atlasSize, atlasSize, tileSize)
		}
		atlas = imaging.Paste(atlas, Tile(d, tileSize), AtlasPosition(d.Index, atlasSize, tileSize))
	}
	return atlas, nil
}

type Options struct {
	Textures     []catalogs.TextureDef
	TilesDir     string
	AtlasPath    string
	AtlasSize    int
	TileSize     int
	PreviewScale int
}

type Written struct {
	Path  string
	Bytes int64
}

// Generate writes every individual tile and the atlas, plus an upscaled preview when
// PreviewScale > 1.
func Generate(opts Options) ([]Written, error) {
	// Every tile must fit the atlas before anything is written.
	atlas, err := BuildAtlas(opts.Textures, opts.AtlasSize, opts.TileSize)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.TilesDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(opts.AtlasPath), 0o755); err != nil {
		return nil, err
	}

	var out []Written
	save := func(img image.Image, path string) error {
		if err := imaging.Save(img, path); err != nil {
			return fmt.Errorf("save %s: %w", filepath.Base(path), err)
		}
		st, err := os.Stat(path)
		if err != nil {
			return err
		}
		out = append(out, Written{Path: path, Bytes: st.Size()})
		return nil
	}

	for _, d := range opts.Textures {
		if err := save(Tile(d, opts.TileSize), filepath.Join(opts.TilesDir, d.FileName())); err != nil {
			return out, err
		}
	}

	if err := save(atlas, opts.AtlasPath); err != nil {
		return out, err
	}

	if opts.PreviewScale > 1 {
		n := opts.AtlasSize * opts.PreviewScale
		preview := imaging.Resize(atlas, n, n, imaging.NearestNeighbor)
		if err := save(preview, PreviewPath(opts.AtlasPath)); err != nil {
			return out, err
		}
	}
	return out, nil
}

// PreviewPath maps BlockAtlas.png to BlockAtlas_preview.png.
func PreviewPath(atlasPath string) string {
	ext := filepath.Ext(atlasPath)
	return strings.TrimSuffix(atlasPath, ext) + "_preview" + ext
}
