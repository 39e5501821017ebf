package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trails/camera"
	"github.com/pthm-cable/trails/components"
	"github.com/pthm-cable/trails/systems"
)

const agentRadius = 3

var (
	seekingFoodColor = rl.NewColor(200, 200, 210, 255)
	seekingHomeColor = rl.NewColor(250, 200, 60, 255)
	homeColor        = rl.NewColor(90, 140, 255, 255)
	foodColor        = rl.NewColor(120, 230, 120, 255)
)

// drawAgents draws every visible agent as a triangle pointing along its
// direction of travel.
func drawAgents(cam *camera.Camera, agents []components.AgentSnapshot) {
	radius := agentRadius * cam.Zoom
	if radius < 2 {
		radius = 2
	}
	for i := range agents {
		a := &agents[i]
		x, y := float32(a.X), float32(a.Y)
		if !cam.IsVisible(x, y, agentRadius*2) {
			continue
		}
		sx, sy := cam.WorldToScreen(x, y)
		col := seekingFoodColor
		if a.Goal == components.SeekingHome {
			col = seekingHomeColor
		}
		drawOrientedTriangle(sx, sy, screenFacing(a.Heading), radius, col)
	}
}

// screenFacing converts an agent heading to a screen-space angle. The
// heading is a quarter turn behind the direction of travel and screen y
// points down.
func screenFacing(heading float64) float32 {
	return float32(-(heading + math.Pi/2))
}

// drawOrientedTriangle draws a triangle pointing in the heading direction.
func drawOrientedTriangle(x, y, heading, radius float32, color rl.Color) {
	cos := float32(math.Cos(float64(heading)))
	sin := float32(math.Sin(float64(heading)))

	frontX := x + cos*radius*1.5
	frontY := y + sin*radius*1.5

	backAngle := float64(heading) + math.Pi*0.8
	backLeftX := x + float32(math.Cos(backAngle))*radius
	backLeftY := y + float32(math.Sin(backAngle))*radius

	backAngle = float64(heading) - math.Pi*0.8
	backRightX := x + float32(math.Cos(backAngle))*radius
	backRightY := y + float32(math.Sin(backAngle))*radius

	v1 := rl.Vector2{X: frontX, Y: frontY}
	v2 := rl.Vector2{X: backLeftX, Y: backLeftY}
	v3 := rl.Vector2{X: backRightX, Y: backRightY}

	// DrawTriangle requires counter-clockwise winding (v1, v3, v2)
	rl.DrawTriangle(v1, v3, v2, color)
}

// drawLandmarks draws home and food with their pickup and pull rings.
func drawLandmarks(cam *camera.Camera, lm systems.Landmarks, homeRadius, foodRadius, pullRadius float32) {
	for _, l := range []struct {
		x, y   float64
		radius float32
		col    rl.Color
		label  string
	}{
		{lm.Home.X, lm.Home.Y, homeRadius, homeColor, "HOME"},
		{lm.Food.X, lm.Food.Y, foodRadius, foodColor, "FOOD"},
	} {
		sx, sy := cam.WorldToScreen(float32(l.x), float32(l.y))
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, l.radius*cam.Zoom, rl.Fade(l.col, 0.6))
		if pullRadius > 0 {
			rl.DrawCircleLines(int32(sx), int32(sy), pullRadius*cam.Zoom, rl.Fade(l.col, 0.35))
		}
		rl.DrawText(l.label, int32(sx)-16, int32(sy-l.radius*cam.Zoom)-18, 14, l.col)
	}
}
