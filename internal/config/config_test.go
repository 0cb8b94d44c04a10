package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Atlas.Size != 256 || cfg.Atlas.TileSize != 16 || cfg.Atlas.TilesPerRow() != 16 {
		t.Fatalf("atlas defaults: %+v", cfg.Atlas)
	}
	if cfg.Crack.Seed != 42 || len(cfg.Crack.Coverage) != 10 {
		t.Fatalf("crack defaults: %+v", cfg.Crack)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_OverlaysFileOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toolkit.yaml")
	raw := `
project_root: /tmp/game
paths:
  scene_path: Assets/Scenes/Main.unity
crack:
  seed: 7
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Crack.Seed != 7 {
		t.Fatalf("seed: got %d want 7", cfg.Crack.Seed)
	}
	if cfg.Crack.BaseAlpha != 120 {
		t.Fatalf("base_alpha should keep default, got %d", cfg.Crack.BaseAlpha)
	}
	if got, want := cfg.ScenePath(), filepath.Join("/tmp/game", "Assets/Scenes/Main.unity"); got != want {
		t.Fatalf("ScenePath: got %q want %q", got, want)
	}
	if got, want := cfg.BlocksDir(), filepath.Join("/tmp/game", "Assets/_Project/Data/Blocks"); got != want {
		t.Fatalf("BlocksDir: got %q want %q", got, want)
	}
}

func TestLoad_RepoToolkitYAML(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "toolkit.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Defaults()
	if cfg.BlockScriptGUID != want.BlockScriptGUID || cfg.Paths != want.Paths {
		t.Fatalf("configs/toolkit.yaml drifted from defaults: %+v", cfg)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"atlas not multiple", func(c *Config) { c.Atlas.Size = 250 }, "not a multiple"},
		{"coverage above one", func(c *Config) { c.Crack.Coverage = []float64{0.5, 1.5} }, "(0, 1]"},
		{"coverage decreasing", func(c *Config) { c.Crack.Coverage = []float64{0.5, 0.4} }, "lower than"},
		{"alpha", func(c *Config) { c.Crack.BaseAlpha = 300 }, "base_alpha"},
		{"script guid", func(c *Config) { c.BlockScriptGUID = "nope" }, "block_script_guid"},
		{"preview scale", func(c *Config) { c.Atlas.PreviewScale = -1 }, "preview_scale"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mut(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDataPath(t *testing.T) {
	cfg := Defaults()
	cfg.ProjectRoot = "/p"
	cfg.DataDir = "data"
	if got, want := cfg.DataPath("backups", "r1"), filepath.Join("/p", "data", "backups", "r1"); got != want {
		t.Fatalf("DataPath: got %q want %q", got, want)
	}
}

func TestFind(t *testing.T) {
	// The package directory has no configs/toolkit.yaml, so the defaults apply.
	cfg, used, err := Find("")
	if err != nil || used != "" || cfg.Atlas.Size != 256 {
		t.Fatalf("Find(\"\"): %q %v", used, err)
	}

	path := filepath.Join("..", "..", "configs", "toolkit.yaml")
	if _, used, err := Find(path); err != nil || used != path {
		t.Fatalf("Find(%q): %q %v", path, used, err)
	}
	if _, _, err := Find(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for explicit missing file")
	}
}

func TestLoad_KeepsExplicitZeroAlphaStep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolkit.yaml")
	if err := os.WriteFile(path, []byte("crack:\n  alpha_step: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Crack.AlphaStep != 0 || cfg.Crack.BaseAlpha != 120 {
		t.Fatalf("crack alpha: base=%d step=%d", cfg.Crack.BaseAlpha, cfg.Crack.AlphaStep)
	}

	var empty Config
	empty.Normalize()
	if empty.Crack.AlphaStep != 15 || empty.Crack.BaseAlpha != 120 {
		t.Fatalf("zero config should get crack defaults: %+v", empty.Crack)
	}
}
