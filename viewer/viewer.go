// Package viewer is the raylib front end: it draws the simulation,
// forwards pointer and keyboard input to the engine, and hosts the
// parameter panel. The engine never imports this package, so headless
// runs carry no graphics dependency at runtime.
package viewer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/cazala/party-sub008/camera"
	"github.com/cazala/party-sub008/config"
	"github.com/cazala/party-sub008/engine"
	"github.com/cazala/party-sub008/particle"
)

// Options configures a Viewer.
type Options struct {
	ScreenW, ScreenH int32
	StepsPerUpdate   int
}

// Viewer owns the draw loop state for one Simulation.
type Viewer struct {
	sim   *engine.Simulation
	cam   *camera.Camera
	panel *Panel
	trail trailLayer

	screenW, screenH float32

	stepsPerUpdate int
	paused         bool
	stepOnce       bool
	showHUD        bool
}

// New creates a viewer for the given simulation. The raylib window
// must already exist.
func New(sim *engine.Simulation, opts Options) *Viewer {
	worldW, worldH := sim.Size()
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	return &Viewer{
		sim:            sim,
		cam:            camera.New(float32(opts.ScreenW), float32(opts.ScreenH), worldW, worldH),
		panel:          NewPanel(sim, opts.ScreenW),
		screenW:        float32(opts.ScreenW),
		screenH:        float32(opts.ScreenH),
		stepsPerUpdate: steps,
		showHUD:        true,
	}
}

// Update handles input and advances the simulation.
func (v *Viewer) Update() {
	v.handleInput()

	// Keep the engine's culling region in sync with what is on screen.
	if v.sim.FrustumCulling() {
		minX, minY, maxX, maxY := v.cam.VisibleWorldBounds()
		_ = v.sim.SetCullRect(minX, minY, maxX, maxY)
	}

	if v.paused && !v.stepOnce {
		return
	}
	v.stepOnce = false

	for i := 0; i < v.stepsPerUpdate; i++ {
		v.sim.Step()
	}
}

func (v *Viewer) handleInput() {
	switch {
	case rl.IsKeyPressed(rl.KeyTab):
		v.panel.Toggle()
	case rl.IsKeyPressed(rl.KeySpace):
		v.paused = !v.paused
	case rl.IsKeyPressed(rl.KeyN):
		v.stepOnce = true
	case rl.IsKeyPressed(rl.KeyH):
		v.showHUD = !v.showHUD
	case rl.IsKeyPressed(rl.KeyC):
		v.sim.Clear()
	case rl.IsKeyPressed(rl.KeyR):
		v.cam.Reset()
	}

	mouse := rl.GetMousePosition()
	overPanel := v.panel.Visible() && v.panel.Contains(mouse)

	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !overPanel {
		v.cam.ZoomAt(1+wheel*0.1, mouse.X, mouse.Y)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		delta := rl.GetMouseDelta()
		v.cam.Pan(-delta.X, -delta.Y)
	}

	// Pointer input only drives the interaction force when the cursor
	// is outside the panel, otherwise dragging a slider would also
	// attract particles.
	wx, wy := v.cam.ScreenToWorld(mouse.X, mouse.Y)
	active := rl.IsMouseButtonDown(rl.MouseButtonLeft) && !overPanel
	v.sim.SetPointer(wx, wy, active)
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 12, B: 18, A: 255})

	if v.sim.Mode() == engine.ModeTrail {
		v.trail.update(v.sim.Trail().Field())
		v.trail.draw(v.worldRect())
	}

	v.drawWorldBorder()
	v.drawJoints()
	v.drawParticles()
	v.drawPointer()

	if v.showHUD {
		v.drawHUD()
	}
	v.panel.Draw()

	rl.EndDrawing()
}

// worldRect returns the screen-space rectangle the world occupies
// under the current camera.
func (v *Viewer) worldRect() rl.Rectangle {
	worldW, worldH := v.sim.Size()
	x, y := v.cam.WorldToScreen(0, 0)
	return rl.Rectangle{X: x, Y: y, Width: worldW * v.cam.Zoom, Height: worldH * v.cam.Zoom}
}

func (v *Viewer) drawWorldBorder() {
	r := v.worldRect()
	rl.DrawRectangleLinesEx(r, 1, rl.Color{R: 60, G: 60, B: 80, A: 255})
}

func (v *Viewer) drawJoints() {
	store := v.sim.Store()
	for _, j := range store.Joints() {
		a := store.Get(j.A)
		b := store.Get(j.B)
		if a == nil || b == nil {
			continue
		}
		ax, ay := v.cam.WorldToScreen(a.X, a.Y)
		bx, by := v.cam.WorldToScreen(b.X, b.Y)
		rl.DrawLineV(
			rl.Vector2{X: ax, Y: ay},
			rl.Vector2{X: bx, Y: by},
			rl.Color{R: 90, G: 90, B: 110, A: 160},
		)
	}
}

func (v *Viewer) drawParticles() {
	settings := v.sim.RenderSettings()
	slots := v.sim.Store().Slots()
	zoom := v.cam.Zoom

	var custom rl.Color
	if settings.ColorMode == "custom" {
		if r, g, b, a, err := config.ParseHexColor(settings.CustomColor); err == nil {
			custom = rl.Color{R: r, G: g, B: b, A: a}
		} else {
			custom = rl.White
		}
	}
	hueBase := float32(math.Mod(float64(v.sim.Time())*settings.HueSpeed*360, 360))

	targetDensity := v.sim.Pipeline().Fluid().TargetDensity()

	if settings.GlowEffects {
		rl.BeginBlendMode(rl.BlendAdditive)
		for i := range slots {
			p := &slots[i]
			if !p.Alive || !v.cam.IsVisible(p.X, p.Y, p.Radius*3) {
				continue
			}
			x, y := v.cam.WorldToScreen(p.X, p.Y)
			c := v.particleColor(p.Color, settings, custom, hueBase, i)
			c.A = 60
			rl.DrawCircle(int32(x), int32(y), p.Radius*zoom*2.2, c)
		}
		rl.EndBlendMode()
	}

	for i := range slots {
		p := &slots[i]
		if !p.Alive || !v.cam.IsVisible(p.X, p.Y, p.Radius) {
			continue
		}
		x, y := v.cam.WorldToScreen(p.X, p.Y)
		c := v.particleColor(p.Color, settings, custom, hueBase, i)
		if p.Culled {
			c.A = 70
		}
		rl.DrawCircle(int32(x), int32(y), p.Radius*zoom, c)

		if settings.ShowDensity && targetDensity > 0 {
			ratio := p.Density / targetDensity
			if ratio > 1 {
				ratio = 1
			}
			rl.DrawCircleLines(int32(x), int32(y), p.Radius*zoom+2,
				rl.Color{R: 80, G: 160, B: 255, A: uint8(ratio * 200)})
		}
		if settings.ShowVelocity {
			rl.DrawLineV(
				rl.Vector2{X: x, Y: y},
				rl.Vector2{X: x + p.VX*zoom*0.25, Y: y + p.VY*zoom*0.25},
				rl.Color{R: 255, G: 220, B: 100, A: 180},
			)
		}
	}
}

func (v *Viewer) particleColor(own particle.Color, settings engine.RenderSettings, custom rl.Color, hueBase float32, index int) rl.Color {
	switch settings.ColorMode {
	case "custom":
		return custom
	case "hue":
		// Spread particles around the wheel so the cycle reads as a
		// rainbow rather than a uniform flash.
		hue := hueBase + float32(index%64)*(360.0/64.0)
		return rl.ColorFromHSV(float32(math.Mod(float64(hue), 360)), 0.8, 1)
	default:
		return rl.Color{R: own.R, G: own.G, B: own.B, A: own.A}
	}
}

func (v *Viewer) drawPointer() {
	in := v.sim.Pipeline().Interaction()
	if !in.Active() {
		return
	}
	mouse := rl.GetMousePosition()
	c := rl.Color{R: 120, G: 200, B: 255, A: 90}
	if in.Mode() == "repel" {
		c = rl.Color{R: 255, G: 140, B: 120, A: 90}
	}
	rl.DrawCircleLines(int32(mouse.X), int32(mouse.Y), in.Radius()*v.cam.Zoom, c)
}

func (v *Viewer) drawHUD() {
	m := v.sim.Metrics()

	rl.DrawFPS(10, 10)
	rl.DrawText(textf("particles: %d", m.Live), 10, 34, 16, rl.RayWhite)
	rl.DrawText(textf("joints: %d", m.Joints), 10, 54, 16, rl.RayWhite)
	rl.DrawText(textf("mode: %s", v.sim.Mode()), 10, 74, 16, rl.RayWhite)
	rl.DrawText(textf("zoom: %.2fx", v.cam.Zoom), 10, 94, 16, rl.Gray)
	rl.DrawText(textf("pool hit rate: %.0f%%", m.PoolHitRate*100), 10, 114, 16, rl.Gray)
	if v.paused {
		rl.DrawText("PAUSED (space resumes, N steps)", 10, 134, 16, rl.Orange)
	}
	rl.DrawText("tab: panel  space: pause  c: clear  r: reset view  h: hud", 10, int32(v.screenH)-26, 14, rl.Gray)
}

// Unload frees GPU resources. The simulation itself is closed by the
// caller.
func (v *Viewer) Unload() {
	v.trail.unload()
}
