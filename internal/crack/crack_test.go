package crack

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"voxelengine.dev/internal/encoding"
)

func defaultParams() Params {
	return Params{
		Seed:      42,
		Size:      16,
		Coverage:  []float64{0.06, 0.10, 0.15, 0.21, 0.28, 0.35, 0.42, 0.50, 0.58, 0.65},
		BaseAlpha: 120,
		AlphaStep: 15,
	}
}

func TestPattern_IsPermutation(t *testing.T) {
	for _, size := range [][2]int{{16, 16}, {8, 4}, {1, 1}} {
		w, h := size[0], size[1]
		p := Pattern(w, h, 42)
		if len(p) != w*h {
			t.Fatalf("%dx%d: len %d want %d", w, h, len(p), w*h)
		}
		seen := map[image.Point]bool{}
		for _, px := range p {
			if px.X < 0 || px.X >= w || px.Y < 0 || px.Y >= h {
				t.Fatalf("%dx%d: pixel out of bounds: %v", w, h, px)
			}
			if seen[px] {
				t.Fatalf("%dx%d: duplicate pixel %v", w, h, px)
			}
			seen[px] = true
		}
	}
}

func TestPattern_DeterministicPerSeed(t *testing.T) {
	a := Pattern(16, 16, 42)
	b := Pattern(16, 16, 42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seed 42 diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}
	c := Pattern(16, 16, 43)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced the same ordering")
	}
}

func TestPattern_StartsOnEdge(t *testing.T) {
	p := Pattern(16, 16, 7)
	first := p[0]
	if first.X != 0 && first.X != 15 && first.Y != 0 && first.Y != 15 {
		t.Fatalf("first crack pixel %v is not on an edge", first)
	}
}

func TestStages_CoverageAndAlpha(t *testing.T) {
	wantPixels := []int{15, 25, 38, 53, 71, 89, 107, 128, 148, 166}
	wantAlpha := []uint8{120, 135, 150, 165, 180, 195, 210, 225, 240, 255}

	stages := Stages(defaultParams())
	if len(stages) != 10 {
		t.Fatalf("stages: got %d want 10", len(stages))
	}
	for i, st := range stages {
		if st.Pixels != wantPixels[i] || st.Opaque() != wantPixels[i] {
			t.Fatalf("stage %d: pixels=%d opaque=%d want %d", i, st.Pixels, st.Opaque(), wantPixels[i])
		}
		if st.Alpha != wantAlpha[i] {
			t.Fatalf("stage %d: alpha=%d want %d", i, st.Alpha, wantAlpha[i])
		}
	}

	// Each stage contains every crack of the previous one.
	for i := 1; i < len(stages); i++ {
		prev, cur := stages[i-1].Image, stages[i].Image
		for p := 3; p < len(prev.Pix); p += 4 {
			if prev.Pix[p] > 0 && cur.Pix[p] == 0 {
				t.Fatalf("stage %d lost a crack pixel of stage %d", i, i-1)
			}
		}
	}
}

func TestStages_AlphaIsCapped(t *testing.T) {
	p := defaultParams()
	p.Coverage = []float64{0.1, 0.2, 0.3}
	p.BaseAlpha = 250
	p.AlphaStep = 10
	st := Stages(p)
	if st[0].Alpha != 250 || st[1].Alpha != 255 || st[2].Alpha != 255 {
		t.Fatalf("alpha not capped: %d %d %d", st[0].Alpha, st[1].Alpha, st[2].Alpha)
	}
}

func TestGenerate_WritesSpritesAndManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Crack")
	m, err := Generate(dir, defaultParams())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(m.Stages) != 10 {
		t.Fatalf("manifest stages: %d", len(m.Stages))
	}
	if m.Stages[0].Percent != 5 || m.Stages[9].Percent != 64 {
		t.Fatalf("percent: stage0=%d stage9=%d", m.Stages[0].Percent, m.Stages[9].Percent)
	}

	img, err := imaging.Open(filepath.Join(dir, "crack_stage_9.png"))
	if err != nil {
		t.Fatalf("open sprite: %v", err)
	}
	nrgba := imaging.Clone(img)
	opaque := 0
	for i := 3; i < len(nrgba.Pix); i += 4 {
		if nrgba.Pix[i] > 0 {
			opaque++
		}
	}
	if opaque != 166 {
		t.Fatalf("stage 9 opaque: got %d want 166", opaque)
	}

	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var back Manifest
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	mask, err := encoding.DecodeRLE(back.Stages[3].Mask, 256)
	if err != nil {
		t.Fatalf("DecodeRLE: %v", err)
	}
	n := 0
	for _, a := range mask {
		if a != 0 {
			if a != 165 {
				t.Fatalf("mask alpha %d want 165", a)
			}
			n++
		}
	}
	if n != 53 {
		t.Fatalf("stage 3 mask pixels: got %d want 53", n)
	}
}
