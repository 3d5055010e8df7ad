// Package trail implements the trail-following simulation mode: particles
// deposit scent into a diffusing, decaying scalar field and steer by
// directional sampling of it. The field grid is independent of the
// spatial grid used for neighbor force queries; they serve different
// purposes and are never conflated.
package trail

import (
	"fmt"
	"math"

	"github.com/cazala/party-sub008/particle"
)

// Field defaults.
const (
	DefaultDecayRate   = 0.02
	DefaultDiffuseRate = 0.5
)

// Field is a 2D scalar grid of trail intensity. Alongside the intensity
// each cell carries intensity-weighted RGB accumulators, so the sensors
// can classify a trail as same- or different-colored without a per-color
// field. All four channels diffuse and decay together, keeping color and
// intensity consistent.
type Field struct {
	w, h           int
	worldW, worldH float32

	intensity []float32
	r, g, b   []float32
	tmp       []float32

	decayRate   float32
	diffuseRate float32
}

// NewField creates a trail field of w x h cells covering the world.
func NewField(w, h int, worldW, worldH float32) (*Field, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("trail: field resolution must be positive, got %dx%d", w, h)
	}
	if worldW <= 0 || worldH <= 0 {
		return nil, fmt.Errorf("trail: world size must be positive, got %vx%v", worldW, worldH)
	}
	n := w * h
	return &Field{
		w: w, h: h,
		worldW: worldW, worldH: worldH,
		intensity:   make([]float32, n),
		r:           make([]float32, n),
		g:           make([]float32, n),
		b:           make([]float32, n),
		tmp:         make([]float32, n),
		decayRate:   DefaultDecayRate,
		diffuseRate: DefaultDiffuseRate,
	}, nil
}

func (f *Field) DecayRate() float32   { return f.decayRate }
func (f *Field) DiffuseRate() float32 { return f.diffuseRate }

// SetDecayRate sets the per-step multiplicative decay in [0,1].
func (f *Field) SetDecayRate(rate float32) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("trail: decay rate must be in [0,1], got %v", rate)
	}
	f.decayRate = rate
	return nil
}

// SetDiffuseRate sets the neighbor-blend weight in [0,1].
func (f *Field) SetDiffuseRate(rate float32) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("trail: diffuse rate must be in [0,1], got %v", rate)
	}
	f.diffuseRate = rate
	return nil
}

// Dims returns the grid resolution.
func (f *Field) Dims() (w, h int) { return f.w, f.h }

// Intensity exposes the raw intensity grid for visualization.
func (f *Field) Intensity() []float32 { return f.intensity }

// CellColor returns the dominant color of cell i. Zero intensity yields
// a zero color.
func (f *Field) CellColor(i int) particle.Color {
	w := f.intensity[i]
	if w <= 0 {
		return particle.Color{}
	}
	return particle.Color{
		R: uint8(clamp01(f.r[i]/w/255) * 255),
		G: uint8(clamp01(f.g[i]/w/255) * 255),
		B: uint8(clamp01(f.b[i]/w/255) * 255),
		A: 255,
	}
}

// cellAt maps world coordinates to a cell index, clamping to the border.
func (f *Field) cellAt(x, y float32) int {
	cx := clampInt(int(x/f.worldW*float32(f.w)), 0, f.w-1)
	cy := clampInt(int(y/f.worldH*float32(f.h)), 0, f.h-1)
	return cy*f.w + cx
}

// Deposit adds a mark of the given intensity and color at a world
// position.
func (f *Field) Deposit(x, y, amount float32, c particle.Color) {
	if amount <= 0 {
		return
	}
	i := f.cellAt(x, y)
	f.intensity[i] += amount
	f.r[i] += amount * float32(c.R)
	f.g[i] += amount * float32(c.G)
	f.b[i] += amount * float32(c.B)
}

// Sample returns the bilinearly interpolated intensity at a world
// position.
func (f *Field) Sample(x, y float32) float32 {
	fx := x/f.worldW*float32(f.w) - 0.5
	fy := y/f.worldH*float32(f.h) - 0.5

	x0 := clampInt(int(math.Floor(float64(fx))), 0, f.w-1)
	y0 := clampInt(int(math.Floor(float64(fy))), 0, f.h-1)
	x1 := clampInt(x0+1, 0, f.w-1)
	y1 := clampInt(y0+1, 0, f.h-1)

	tx := clamp01(fx - float32(x0))
	ty := clamp01(fy - float32(y0))

	a := f.intensity[y0*f.w+x0]*(1-tx) + f.intensity[y0*f.w+x1]*tx
	bb := f.intensity[y1*f.w+x0]*(1-tx) + f.intensity[y1*f.w+x1]*tx
	return a*(1-ty) + bb*ty
}

// SampleColor returns the dominant trail color at a world position and
// the cell intensity it was derived from. Zero intensity yields a zero
// color.
func (f *Field) SampleColor(x, y float32) (c particle.Color, intensity float32) {
	i := f.cellAt(x, y)
	w := f.intensity[i]
	if w <= 0 {
		return particle.Color{}, 0
	}
	return particle.Color{
		R: uint8(clamp01(f.r[i]/w/255) * 255),
		G: uint8(clamp01(f.g[i]/w/255) * 255),
		B: uint8(clamp01(f.b[i]/w/255) * 255),
		A: 255,
	}, w
}

// Step diffuses the field (each cell blends toward its 4-neighbor
// average, weighted by the diffuse rate) and then decays it by
// (1 - decayRate). Values never go negative.
func (f *Field) Step() {
	if f.diffuseRate > 0 {
		f.diffuseChannel(f.intensity)
		f.diffuseChannel(f.r)
		f.diffuseChannel(f.g)
		f.diffuseChannel(f.b)
	}

	keep := 1 - f.decayRate
	for i := range f.intensity {
		f.intensity[i] *= keep
		f.r[i] *= keep
		f.g[i] *= keep
		f.b[i] *= keep
	}
}

// diffuseChannel applies one blend pass with clamped (replicated)
// borders.
func (f *Field) diffuseChannel(src []float32) {
	a := f.diffuseRate
	w, h := f.w, f.h
	for y := 0; y < h; y++ {
		yN := clampInt(y-1, 0, h-1)
		yS := clampInt(y+1, 0, h-1)
		for x := 0; x < w; x++ {
			xW := clampInt(x-1, 0, w-1)
			xE := clampInt(x+1, 0, w-1)

			i := y*w + x
			c := src[i]
			avg := (src[yN*w+x] + src[yS*w+x] + src[y*w+xE] + src[y*w+xW]) * 0.25
			f.tmp[i] = c + a*(avg-c)
		}
	}
	copy(src, f.tmp)
}

// Clear zeroes every cell. The field holds no state across a full clear.
func (f *Field) Clear() {
	for i := range f.intensity {
		f.intensity[i] = 0
		f.r[i] = 0
		f.g[i] = 0
		f.b[i] = 0
	}
}

// Total returns the summed intensity, used by telemetry.
func (f *Field) Total() float64 {
	var sum float64
	for _, v := range f.intensity {
		sum += float64(v)
	}
	return sum
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
