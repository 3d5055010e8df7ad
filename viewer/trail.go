package viewer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/cazala/party-sub008/trail"
)

// trailLayer renders the trail field as a screen-filling texture.
// The texture is created lazily because raylib needs a window first.
type trailLayer struct {
	tex         rl.Texture2D
	texW, texH  int
	pixels      []color.RGBA
	initialized bool
}

func (l *trailLayer) init(w, h int) {
	l.texW = w
	l.texH = h
	l.pixels = make([]color.RGBA, w*h)

	img := rl.GenImageColor(w, h, rl.Black)
	l.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(l.tex, rl.FilterBilinear)
	rl.UnloadImage(img)

	l.initialized = true
}

// update uploads the current field contents to the GPU texture. Cell
// intensity maps to alpha, the dominant deposit color to RGB.
func (l *trailLayer) update(field *trail.Field) {
	w, h := field.Dims()
	if !l.initialized || w != l.texW || h != l.texH {
		if l.initialized {
			rl.UnloadTexture(l.tex)
		}
		l.init(w, h)
	}

	intensity := field.Intensity()
	for i, v := range intensity {
		if v <= 0 {
			l.pixels[i] = color.RGBA{}
			continue
		}
		a := v
		if a > 1 {
			a = 1
		}
		c := field.CellColor(i)
		l.pixels[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: uint8(a * 255)}
	}

	rl.UpdateTexture(l.tex, l.pixels)
}

func (l *trailLayer) draw(dst rl.Rectangle) {
	if !l.initialized {
		return
	}
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(l.texW), Height: float32(l.texH)}
	rl.DrawTexturePro(l.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

func (l *trailLayer) unload() {
	if !l.initialized {
		return
	}
	rl.UnloadTexture(l.tex)
	l.initialized = false
}
