package catalogs

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type Catalogs struct {
	Textures TextureCatalog
	Blocks   BlockCatalog
}

type TextureCatalog struct {
	Palette []TextureDef // sorted by index
	ByIndex map[int]TextureDef
	Digest  string
}

type TextureDef struct {
	Index  int    `json:"index"`
	Suffix string `json:"suffix"`
	Color  []int  `json:"color,omitempty"`
	Color1 []int  `json:"color1,omitempty"`
	Color2 []int  `json:"color2,omitempty"`
}

// Dual reports whether the tile is split into a top and a bottom color.
func (t TextureDef) Dual() bool { return len(t.Color1) == 3 && len(t.Color2) == 3 }

// FileName is the individual tile file name, e.g. tile_26_grass_side.png.
func (t TextureDef) FileName() string {
	return fmt.Sprintf("tile_%d_%s.png", t.Index, t.Suffix)
}

func (t TextureDef) Fill() color.NRGBA  { return rgb(t.Color) }
func (t TextureDef) Upper() color.NRGBA { return rgb(t.Color1) }
func (t TextureDef) Lower() color.NRGBA { return rgb(t.Color2) }

func rgb(c []int) color.NRGBA {
	if len(c) != 3 {
		return color.NRGBA{}
	}
	return color.NRGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 255}
}

type BlockCatalog struct {
	Palette []BlockDef // sorted by id, Air first
	ByName  map[string]BlockDef
	ByID    map[int]BlockDef
	Digest  string
}

type ToolType int

const (
	ToolNone ToolType = iota
	ToolPickaxe
	ToolAxe
	ToolShovel
	ToolShears
)

type BlockDef struct {
	Name        string   `json:"name"`
	ID          int      `json:"id"`
	Solid       bool     `json:"solid"`
	Transparent bool     `json:"transparent"`
	Top         int      `json:"top"`
	Side        int      `json:"side"`
	Bottom      int      `json:"bottom"`
	Emission    int      `json:"emission"`
	Hardness    float64  `json:"hardness"`
	Tool        ToolType `json:"tool"`
	AssetGUID   string   `json:"asset_guid,omitempty"`
}

// AssetName is the Unity asset (and file) base name, e.g. Block_Grass.
func (b BlockDef) AssetName() string { return "Block_" + b.Name }

// IsAir marks the empty block. It has no visible faces and never gets textures.
func (b BlockDef) IsAir() bool { return b.ID == 0 }

// Tiles returns the (top, side, bottom) tile indices.
func (b BlockDef) Tiles() [3]int { return [3]int{b.Top, b.Side, b.Bottom} }

// Lookup finds a block by its asset name (Block_<Name>).
func (c BlockCatalog) Lookup(assetName string) (BlockDef, bool) {
	for _, b := range c.Palette {
		if b.AssetName() == assetName {
			return b, true
		}
	}
	return BlockDef{}, false
}

func (c BlockCatalog) AssetNames() []string {
	out := make([]string, 0, len(c.Palette))
	for _, b := range c.Palette {
		out = append(out, b.AssetName())
	}
	return out
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadTextures(filepath.Join(configDir, "textures.json"), &c.Textures); err != nil {
		return nil, err
	}
	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	for _, b := range c.Blocks.Palette {
		for _, idx := range b.Tiles() {
			if _, ok := c.Textures.ByIndex[idx]; !ok {
				return nil, fmt.Errorf("blocks.json: %s references unknown tile %d", b.Name, idx)
			}
		}
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func validate(schemaName string, raw []byte) error {
	src, err := schemaFS.ReadFile("schemas/" + schemaName)
	if err != nil {
		return err
	}
	url := "mem://schemas/" + schemaName
	comp := jsonschema.NewCompiler()
	comp.Draft = jsonschema.Draft7
	if err := comp.AddResource(url, bytes.NewReader(src)); err != nil {
		return err
	}
	s, err := comp.Compile(url)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	return s.Validate(doc)
}

func loadTextures(path string, out *TextureCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := validate("textures.schema.json", raw); err != nil {
		return fmt.Errorf("textures.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	var defs []TextureDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("textures.json: %w", err)
	}
	out.ByIndex = make(map[int]TextureDef, len(defs))
	for _, d := range defs {
		if _, dup := out.ByIndex[d.Index]; dup {
			return fmt.Errorf("textures.json: duplicate index %d", d.Index)
		}
		out.ByIndex[d.Index] = d
	}
	out.Palette = append([]TextureDef(nil), defs...)
	sort.Slice(out.Palette, func(i, j int) bool { return out.Palette[i].Index < out.Palette[j].Index })
	return nil
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := validate("blocks.schema.json", raw); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.ByName = make(map[string]BlockDef, len(defs))
	out.ByID = make(map[int]BlockDef, len(defs))
	for _, d := range defs {
		if _, dup := out.ByName[d.Name]; dup {
			return fmt.Errorf("blocks.json: duplicate name %s", d.Name)
		}
		if prev, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("blocks.json: id %d used by both %s and %s", d.ID, prev.Name, d.Name)
		}
		out.ByName[d.Name] = d
		out.ByID[d.ID] = d
	}

	// Air must exist and is always palette entry 0.
	if _, ok := out.ByID[0]; !ok {
		return fmt.Errorf("blocks.json: missing air block (id 0)")
	}
	out.Palette = append([]BlockDef(nil), defs...)
	sort.Slice(out.Palette, func(i, j int) bool { return out.Palette[i].ID < out.Palette[j].ID })
	return nil
}
