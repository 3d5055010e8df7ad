package viewer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/cazala/party-sub008/engine"
)

const (
	panelWidth   = 290
	rowHeight    = 26
	sliderHeight = 16
)

// Panel is the right-side parameter panel. Every widget reads its
// current value from the engine and writes changes straight back
// through the setters, so panel state can never drift from the
// simulation.
type Panel struct {
	sim     *engine.Simulation
	x       float32
	visible bool
}

// NewPanel creates the panel anchored to the right screen edge.
func NewPanel(sim *engine.Simulation, screenW int32) *Panel {
	return &Panel{sim: sim, x: float32(screenW - panelWidth)}
}

func (p *Panel) Visible() bool { return p.visible }
func (p *Panel) Toggle()       { p.visible = !p.visible }

// Contains reports whether a screen point falls inside the panel.
func (p *Panel) Contains(pt rl.Vector2) bool {
	return pt.X >= p.x
}

// Draw renders the panel and applies any edits.
func (p *Panel) Draw() {
	if !p.visible {
		return
	}

	pipe := p.sim.Pipeline()
	h := float32(rl.GetScreenHeight())
	rl.DrawRectangle(int32(p.x), 0, panelWidth, int32(h), rl.Color{R: 20, G: 20, B: 28, A: 235})
	rl.DrawLine(int32(p.x), 0, int32(p.x), int32(h), rl.DarkGray)

	x := p.x + 12
	y := float32(12)
	w := float32(panelWidth - 24)

	y = p.header(x, y, "Gravity")
	g := pipe.Gravity()
	g.SetStrength(p.slider(x, &y, w, "strength", g.Strength(), 0, 2000, "%.0f"))
	g.SetDirectionFromAngle(p.slider(x, &y, w, "direction", g.DirectionAngle(), -3.14, 3.14, "%.2f"))

	y = p.header(x, y, "Bounds")
	b := pipe.Bounds()
	_ = b.SetBounce(p.slider(x, &y, w, "bounce", b.Bounce(), 0, 1, "%.2f"))
	_ = b.SetFriction(p.slider(x, &y, w, "friction", b.Friction(), 0, 1, "%.2f"))

	y = p.header(x, y, "Collisions")
	p.toggle(x, &y, "collisions", pipe.Collisions())

	y = p.header(x, y, "Flock")
	fl := pipe.Flock()
	p.toggle(x, &y, "flock", fl)
	if fl.Enabled() {
		fl.SetCohesionWeight(p.slider(x, &y, w, "cohesion", fl.CohesionWeight(), 0, 5, "%.1f"))
		fl.SetAlignmentWeight(p.slider(x, &y, w, "alignment", fl.AlignmentWeight(), 0, 5, "%.1f"))
		fl.SetSeparationWeight(p.slider(x, &y, w, "separation", fl.SeparationWeight(), 0, 5, "%.1f"))
		_ = fl.SetNeighborRadius(p.slider(x, &y, w, "radius", fl.NeighborRadius(), 20, 250, "%.0f"))
		_ = fl.SetMaxSpeed(p.slider(x, &y, w, "max speed", fl.MaxSpeed(), 50, 600, "%.0f"))
		fl.SetWanderWeight(p.slider(x, &y, w, "wander", fl.WanderWeight(), 0, 2, "%.1f"))
	}

	y = p.header(x, y, "Fluid")
	fd := pipe.Fluid()
	p.toggle(x, &y, "fluid", fd)
	if fd.Enabled() {
		_ = fd.SetInfluenceRadius(p.slider(x, &y, w, "radius", fd.InfluenceRadius(), 10, 150, "%.0f"))
		_ = fd.SetTargetDensity(p.slider(x, &y, w, "density", fd.TargetDensity(), 0.1, 30, "%.1f"))
		fd.SetPressureMultiplier(p.slider(x, &y, w, "pressure", fd.PressureMultiplier(), 0, 500, "%.0f"))
		fd.SetViscosity(p.slider(x, &y, w, "viscosity", fd.Viscosity(), 0, 1, "%.2f"))
	}

	y = p.header(x, y, "Interaction")
	in := pipe.Interaction()
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w/2 - 4, Height: 22}, "mode: "+in.Mode()) {
		next := "repel"
		if in.Mode() == "repel" {
			next = "attract"
		}
		_ = in.SetMode(next)
	}
	if gui.Button(rl.Rectangle{X: x + w/2 + 4, Y: y, Width: w/2 - 4, Height: 22}, "action: "+in.Action()) {
		next := "emit"
		if in.Action() == "emit" {
			next = "force"
		}
		_ = in.SetAction(next)
	}
	y += rowHeight + 4
	in.SetStrength(p.slider(x, &y, w, "strength", in.Strength(), 0, 5000, "%.0f"))
	_ = in.SetRadius(p.slider(x, &y, w, "radius", in.Radius(), 20, 500, "%.0f"))

	if p.sim.Mode() == engine.ModeTrail {
		y = p.header(x, y, "Trail")
		field := p.sim.Trail().Field()
		_ = field.SetDecayRate(p.slider(x, &y, w, "decay", field.DecayRate(), 0, 0.2, "%.3f"))
		_ = field.SetDiffuseRate(p.slider(x, &y, w, "diffuse", field.DiffuseRate(), 0, 1, "%.2f"))
	}

	y = p.header(x, y, "Simulation")
	_ = p.sim.SetSpeed(p.slider(x, &y, w, "speed", p.sim.Speed(), 0.1, 4, "%.1fx"))

	settings := p.sim.RenderSettings()
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w/2 - 4, Height: 22}, "color: "+colorModeLabel(settings.ColorMode)) {
		settings.ColorMode = nextColorMode(settings.ColorMode)
		p.sim.SetRenderSettings(settings)
	}
	glowLabel := "glow: off"
	if settings.GlowEffects {
		glowLabel = "glow: on"
	}
	if gui.Button(rl.Rectangle{X: x + w/2 + 4, Y: y, Width: w/2 - 4, Height: 22}, glowLabel) {
		settings.GlowEffects = !settings.GlowEffects
		p.sim.SetRenderSettings(settings)
	}
}

func (p *Panel) header(x, y float32, title string) float32 {
	rl.DrawText(title, int32(x), int32(y), 15, rl.Color{R: 140, G: 180, B: 255, A: 255})
	return y + 22
}

func (p *Panel) slider(x float32, y *float32, w float32, label string, value, min, max float32, format string) float32 {
	rl.DrawText(label, int32(x), int32(*y), 12, rl.Gray)
	rl.DrawText(fmt.Sprintf(format, value), int32(x+w-50), int32(*y), 12, rl.RayWhite)
	out := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y + 13, Width: w - 56, Height: sliderHeight},
		"", "", value, min, max,
	)
	*y += rowHeight + 6
	return out
}

// toggleable is the slice of the force interface the toggle row needs.
type toggleable interface {
	Enabled() bool
	SetEnabled(bool)
}

func (p *Panel) toggle(x float32, y *float32, label string, f toggleable) {
	state := "off"
	if f.Enabled() {
		state = "on"
	}
	if gui.Button(rl.Rectangle{X: x, Y: *y, Width: 110, Height: 22}, label+": "+state) {
		f.SetEnabled(!f.Enabled())
	}
	*y += rowHeight
}

func colorModeLabel(mode string) string {
	if mode == "" {
		return "particle"
	}
	return mode
}

func nextColorMode(mode string) string {
	switch mode {
	case "", "particle":
		return "custom"
	case "custom":
		return "hue"
	default:
		return "particle"
	}
}

func textf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
