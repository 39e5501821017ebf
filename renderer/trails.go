// Package renderer draws the colony with raylib.
package renderer

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trails/camera"
	"github.com/pthm-cable/trails/field"
)

// TrailRenderer rasterizes the signal channels into a texture with one
// texel per signal cell and stretches it over the world.
type TrailRenderer struct {
	texture  rl.Texture2D
	pixels   []color.RGBA
	cols     int
	rows     int
	cellSize float64
	worldW   float64
	worldH   float64
}

// NewTrailRenderer allocates a texture covering a worldW x worldH world
// centered on the origin.
func NewTrailRenderer(worldW, worldH, cellSize float64) *TrailRenderer {
	cols, rows := gridDims(worldW, worldH, cellSize)
	img := rl.GenImageColor(cols, rows, rl.Blank)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(tex, rl.FilterPoint)

	return &TrailRenderer{
		texture:  tex,
		pixels:   make([]color.RGBA, cols*rows),
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		worldW:   worldW,
		worldH:   worldH,
	}
}

func gridDims(worldW, worldH, cellSize float64) (cols, rows int) {
	cols = int(math.Ceil(worldW/cellSize)) + 1
	rows = int(math.Ceil(worldH/cellSize)) + 1
	return cols, rows
}

// Update refills the texture from the given channel snapshots. Channels
// later in the slice are blended over earlier ones.
func (r *TrailRenderer) Update(snaps []field.ChannelSnapshot) {
	fillTrailPixels(r.pixels, r.cols, r.rows, snaps)
	rl.UpdateTexture(r.texture, r.pixels)
}

// fillTrailPixels clears dst and paints every live cell with the channel
// color at an alpha proportional to its strength. Row 0 is the top of the
// world.
func fillTrailPixels(dst []color.RGBA, cols, rows int, snaps []field.ChannelSnapshot) {
	clear(dst)
	halfCols, halfRows := cols/2, rows/2
	for _, s := range snaps {
		if s.MaxStrength <= 0 {
			continue
		}
		for cell, v := range s.Cells {
			if v <= 0 {
				continue
			}
			col := int(cell.X) + halfCols
			row := halfRows - int(cell.Y)
			if col < 0 || col >= cols || row < 0 || row >= rows {
				continue
			}
			a := v / s.MaxStrength
			if a > 1 {
				a = 1
			}
			dst[row*cols+col] = blend(dst[row*cols+col], s.Color, a)
		}
	}
}

// blend composites src at alpha a over dst.
func blend(dst, src color.RGBA, a float64) color.RGBA {
	inv := 1 - a
	outA := a + float64(dst.A)/255*inv
	if outA <= 0 {
		return color.RGBA{}
	}
	mix := func(d, s uint8) uint8 {
		da := float64(dst.A) / 255
		return uint8((float64(s)*a + float64(d)*da*inv) / outA)
	}
	return color.RGBA{
		R: mix(dst.R, src.R),
		G: mix(dst.G, src.G),
		B: mix(dst.B, src.B),
		A: uint8(outA * 255),
	}
}

// Draw stretches the trail texture over the world rectangle on screen.
func (r *TrailRenderer) Draw(cam *camera.Camera) {
	// Texel centers sit on cell origins, so the texture extends half a cell
	// past the world edge.
	half := float32(r.cellSize / 2)
	left := -float32(r.cols/2)*float32(r.cellSize) - half
	top := float32(r.rows/2)*float32(r.cellSize) + half
	sx, sy := cam.WorldToScreen(left, top)
	w := float32(r.cols) * float32(r.cellSize) * cam.Zoom
	h := float32(r.rows) * float32(r.cellSize) * cam.Zoom

	rl.DrawTexturePro(
		r.texture,
		rl.Rectangle{X: 0, Y: 0, Width: float32(r.cols), Height: float32(r.rows)},
		rl.Rectangle{X: sx, Y: sy, Width: w, Height: h},
		rl.Vector2{},
		0,
		rl.White,
	)
}

// Unload releases the texture.
func (r *TrailRenderer) Unload() {
	rl.UnloadTexture(r.texture)
}
