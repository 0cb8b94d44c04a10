package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ProjectRoot string `yaml:"project_root"`
	DataDir     string `yaml:"data_dir"`

	Paths Paths       `yaml:"paths"`
	Atlas AtlasConfig `yaml:"atlas"`
	Crack CrackConfig `yaml:"crack"`

	// BlockScriptGUID is the m_Script guid of the BlockDefinitionSO MonoScript.
	BlockScriptGUID string `yaml:"block_script_guid"`
}

type Paths struct {
	BlocksDir   string `yaml:"blocks_dir"`
	TexturesDir string `yaml:"textures_dir"`
	AtlasPath   string `yaml:"atlas_path"`
	CrackDir    string `yaml:"crack_dir"`
	ScenePath   string `yaml:"scene_path"`
}

type AtlasConfig struct {
	Size         int `yaml:"size"`
	TileSize     int `yaml:"tile_size"`
	PreviewScale int `yaml:"preview_scale"`
}

func (a AtlasConfig) TilesPerRow() int {
	if a.TileSize <= 0 {
		return 0
	}
	return a.Size / a.TileSize
}

type CrackConfig struct {
	Seed      int64     `yaml:"seed"`
	Size      int       `yaml:"size"`
	Coverage  []float64 `yaml:"coverage"`
	BaseAlpha int       `yaml:"base_alpha"`
	AlphaStep int       `yaml:"alpha_step"`
}

var hexGUID = regexp.MustCompile(`^[0-9a-f]{32}$`)

func Defaults() Config {
	return Config{
		ProjectRoot: ".",
		DataDir:     "./data",
		Paths: Paths{
			BlocksDir:   "Assets/_Project/Data/Blocks",
			TexturesDir: "Assets/_Project/Art/Textures/Blocks/Individual",
			AtlasPath:   "Assets/_Project/Art/Textures/Blocks/BlockAtlas.png",
			CrackDir:    "Assets/_Project/Art/Textures/Blocks/Crack",
			ScenePath:   "Assets/Scenes/SampleScene.unity",
		},
		Atlas: AtlasConfig{Size: 256, TileSize: 16},
		Crack: CrackConfig{
			Seed:      42,
			Size:      16,
			Coverage:  []float64{0.06, 0.10, 0.15, 0.21, 0.28, 0.35, 0.42, 0.50, 0.58, 0.65},
			BaseAlpha: 120,
			AlphaStep: 15,
		},
		BlockScriptGUID: "0fed08878a38d04459f1f2881b12ea1e",
	}
}

// DefaultPath is where the commands look for toolkit.yaml when no -config is given.
const DefaultPath = "configs/toolkit.yaml"

// Find loads path, or DefaultPath when path is empty and that file exists, or the defaults.
// It returns the file actually loaded ("" for compiled-in defaults).
func Find(path string) (Config, string, error) {
	if strings.TrimSpace(path) == "" {
		if _, err := os.Stat(DefaultPath); err != nil {
			cfg, err := Load("")
			return cfg, "", err
		}
		path = DefaultPath
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Load reads toolkit.yaml over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("toolkit.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("toolkit.yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	d := Defaults()
	if strings.TrimSpace(c.ProjectRoot) == "" {
		c.ProjectRoot = d.ProjectRoot
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = d.DataDir
	}
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&c.Paths.BlocksDir, d.Paths.BlocksDir)
	fill(&c.Paths.TexturesDir, d.Paths.TexturesDir)
	fill(&c.Paths.AtlasPath, d.Paths.AtlasPath)
	fill(&c.Paths.CrackDir, d.Paths.CrackDir)
	fill(&c.Paths.ScenePath, d.Paths.ScenePath)
	fill(&c.BlockScriptGUID, d.BlockScriptGUID)
	c.BlockScriptGUID = strings.ToLower(strings.TrimSpace(c.BlockScriptGUID))

	// alpha_step 0 is a valid constant-alpha setup; only a missing crack section gets the default.
	crackUnset := c.Crack.Size == 0 && len(c.Crack.Coverage) == 0 && c.Crack.BaseAlpha == 0 && c.Crack.AlphaStep == 0

	if c.Atlas.Size == 0 {
		c.Atlas.Size = d.Atlas.Size
	}
	if c.Atlas.TileSize == 0 {
		c.Atlas.TileSize = d.Atlas.TileSize
	}
	if c.Crack.Size == 0 {
		c.Crack.Size = d.Crack.Size
	}
	if len(c.Crack.Coverage) == 0 {
		c.Crack.Coverage = append([]float64(nil), d.Crack.Coverage...)
	}
	if c.Crack.BaseAlpha == 0 {
		c.Crack.BaseAlpha = d.Crack.BaseAlpha
	}
	if crackUnset {
		c.Crack.AlphaStep = d.Crack.AlphaStep
	}
}

func (c Config) Validate() error {
	if c.Atlas.Size <= 0 || c.Atlas.TileSize <= 0 {
		return fmt.Errorf("atlas size and tile_size must be > 0")
	}
	if c.Atlas.Size%c.Atlas.TileSize != 0 {
		return fmt.Errorf("atlas size %d is not a multiple of tile_size %d", c.Atlas.Size, c.Atlas.TileSize)
	}
	if c.Atlas.PreviewScale < 0 {
		return fmt.Errorf("atlas preview_scale must be >= 0")
	}
	if c.Crack.Size <= 0 {
		return fmt.Errorf("crack size must be > 0")
	}
	if len(c.Crack.Coverage) == 0 {
		return fmt.Errorf("crack coverage must not be empty")
	}
	prev := 0.0
	for i, v := range c.Crack.Coverage {
		if v <= 0 || v > 1 {
			return fmt.Errorf("crack coverage[%d]=%v must be in (0, 1]", i, v)
		}
		if v < prev {
			return fmt.Errorf("crack coverage[%d]=%v is lower than the previous stage", i, v)
		}
		prev = v
	}
	if c.Crack.BaseAlpha <= 0 || c.Crack.BaseAlpha > 255 {
		return fmt.Errorf("crack base_alpha must be in [1, 255]")
	}
	if c.Crack.AlphaStep < 0 {
		return fmt.Errorf("crack alpha_step must be >= 0")
	}
	if !hexGUID.MatchString(c.BlockScriptGUID) {
		return fmt.Errorf("block_script_guid %q is not a 32-char hex guid", c.BlockScriptGUID)
	}
	return nil
}

// Resolve joins a project-relative path onto the project root. Absolute paths pass through.
func (c Config) Resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.ProjectRoot, rel)
}

func (c Config) BlocksDir() string   { return c.Resolve(c.Paths.BlocksDir) }
func (c Config) TexturesDir() string { return c.Resolve(c.Paths.TexturesDir) }
func (c Config) AtlasPath() string   { return c.Resolve(c.Paths.AtlasPath) }
func (c Config) CrackDir() string    { return c.Resolve(c.Paths.CrackDir) }
func (c Config) ScenePath() string   { return c.Resolve(c.Paths.ScenePath) }

// DataPath resolves a path under the data directory (backups, journals, index db).
func (c Config) DataPath(elem ...string) string {
	return filepath.Join(append([]string{c.Resolve(c.DataDir)}, elem...)...)
}
