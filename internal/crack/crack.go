// Package crack builds the block-breaking overlay sprites. A single seeded pixel ordering is
// shared by every stage, so stage n+1 always contains the cracks of stage n.
package crack

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"voxelengine.dev/internal/encoding"
)

const (
	origins     = 4
	branchEvery = 12
)

var (
	stepChoices   = []int{-1, -1, 0, 0, 1, 1, 1}
	nudgeChoices  = []int{-1, 1}
	branchChoices = []int{-2, -1, 1, 2}
)

// Pattern orders every pixel of a w x h tile by when it cracks. Four random walks start on
// random edges; pixels they never reach follow in shuffled order.
func Pattern(w, h int, seed int64) []image.Point {
	rng := rand.New(rand.NewSource(seed))
	pick := func(c []int) int { return c[rng.Intn(len(c))] }
	clamp := func(v, hi int) int {
		if v < 0 {
			return 0
		}
		if v > hi {
			return hi
		}
		return v
	}

	ordered := make([]image.Point, 0, w*h)
	visited := make(map[image.Point]bool, w*h)
	visit := func(p image.Point) {
		if visited[p] {
			return
		}
		visited[p] = true
		ordered = append(ordered, p)
	}

	starts := make([]image.Point, 0, origins)
	for i := 0; i < origins; i++ {
		switch rng.Intn(4) {
		case 0:
			starts = append(starts, image.Pt(rng.Intn(w), 0))
		case 1:
			starts = append(starts, image.Pt(rng.Intn(w), h-1))
		case 2:
			starts = append(starts, image.Pt(0, rng.Intn(h)))
		default:
			starts = append(starts, image.Pt(w-1, rng.Intn(h)))
		}
	}

	walk := w * h / 2
	for _, p := range starts {
		x, y := p.X, p.Y
		for step := 0; step < walk; step++ {
			visit(image.Pt(x, y))

			dx, dy := pick(stepChoices), pick(stepChoices)
			if dx == 0 && dy == 0 {
				dx = pick(nudgeChoices)
			}
			x = clamp(x+dx, w-1)
			y = clamp(y+dy, h-1)

			if step > 0 && step%branchEvery == 0 {
				bx := clamp(x+pick(branchChoices), w-1)
				by := clamp(y+pick(branchChoices), h-1)
				visit(image.Pt(bx, by))
			}
		}
	}

	rest := make([]image.Point, 0, w*h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			rest = append(rest, image.Pt(x, y))
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	for _, p := range rest {
		visit(p)
	}
	return ordered
}

type Params struct {
	Seed      int64
	Size      int
	Coverage  []float64
	BaseAlpha int
	AlphaStep int
}

type Stage struct {
	Index  int
	Pixels int
	Alpha  uint8
	Image  *image.NRGBA
}

// FileName is crack_stage_<n>.png.
func (s Stage) FileName() string { return fmt.Sprintf("crack_stage_%d.png", s.Index) }

// Opaque counts pixels with non-zero alpha.
func (s Stage) Opaque() int {
	n := 0
	for i := 3; i < len(s.Image.Pix); i += 4 {
		if s.Image.Pix[i] > 0 {
			n++
		}
	}
	return n
}

func Stages(p Params) []Stage {
	total := p.Size * p.Size
	pattern := Pattern(p.Size, p.Size, p.Seed)

	out := make([]Stage, 0, len(p.Coverage))
	for i, pct := range p.Coverage {
		n := int(float64(total) * pct)
		if n > len(pattern) {
			n = len(pattern)
		}
		alpha := p.BaseAlpha + i*p.AlphaStep
		if alpha > 255 {
			alpha = 255
		}
		img := imaging.New(p.Size, p.Size, color.NRGBA{})
		for _, px := range pattern[:n] {
			img.SetNRGBA(px.X, px.Y, color.NRGBA{A: uint8(alpha)})
		}
		out = append(out, Stage{Index: i, Pixels: n, Alpha: uint8(alpha), Image: img})
	}
	return out
}

type Manifest struct {
	Seed   int64           `json:"seed"`
	Size   int             `json:"size"`
	Stages []ManifestStage `json:"stages"`
}

type ManifestStage struct {
	Stage   int    `json:"stage"`
	File    string `json:"file"`
	Opaque  int    `json:"opaque"`
	Percent int    `json:"percent"`
	Alpha   uint8  `json:"alpha"`
	Mask    string `json:"mask_rle"`
}

const ManifestName = "crack_manifest.json"

// Generate writes every stage sprite and the manifest into dir.
func Generate(dir string, p Params) (Manifest, error) {
	m := Manifest{Seed: p.Seed, Size: p.Size}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return m, err
	}
	total := p.Size * p.Size
	for _, st := range Stages(p) {
		if err := imaging.Save(st.Image, filepath.Join(dir, st.FileName())); err != nil {
			return m, fmt.Errorf("save %s: %w", st.FileName(), err)
		}
		opaque := st.Opaque()
		m.Stages = append(m.Stages, ManifestStage{
			Stage:   st.Index,
			File:    st.FileName(),
			Opaque:  opaque,
			Percent: 100 * opaque / total,
			Alpha:   st.Alpha,
			Mask:    encoding.EncodeRLE(alphaPlane(st.Image)),
		})
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return m, err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), append(b, '\n'), 0o644); err != nil {
		return m, err
	}
	return m, nil
}

func alphaPlane(img *image.NRGBA) []uint8 {
	out := make([]uint8, 0, len(img.Pix)/4)
	for i := 3; i < len(img.Pix); i += 4 {
		out = append(out, img.Pix[i])
	}
	return out
}
