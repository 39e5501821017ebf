package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trails/camera"
	"github.com/pthm-cable/trails/components"
	"github.com/pthm-cable/trails/config"
	"github.com/pthm-cable/trails/field"
	"github.com/pthm-cable/trails/systems"
	"github.com/pthm-cable/trails/telemetry"
)

// Source is the read-only view of the simulation the viewer draws.
type Source interface {
	AgentSnapshots(dst []components.AgentSnapshot) []components.AgentSnapshot
	FieldSnapshot(ch field.Channel) field.ChannelSnapshot
	Landmarks() systems.Landmarks
	Tick() int32
	Deliveries() int
	LastStats() telemetry.WindowStats
}

// Controls are the run controls the viewer can change.
type Controls interface {
	Paused() bool
	SetPaused(bool)
	StepsPerUpdate() int
	SetStepsPerUpdate(int)
}

const maxStepsPerUpdate = 10

// Viewer owns the camera and draw state for one window.
type Viewer struct {
	cam    *camera.Camera
	trails *TrailRenderer
	hud    *HUD

	show   [field.NumChannels]bool
	agents []components.AgentSnapshot
	snaps  []field.ChannelSnapshot

	homeRadius float32
	foodRadius float32
	pullRadius float32

	screenW, screenH float32
	dragging         bool
	lastMouse        rl.Vector2
}

// NewViewer creates a viewer for the current window size. Call after
// rl.InitWindow.
func NewViewer(cfg *config.Config) *Viewer {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	v := &Viewer{
		cam:        camera.New(w, h, float32(cfg.Derived.WorldW), float32(cfg.Derived.WorldH)),
		trails:     NewTrailRenderer(cfg.Derived.WorldW, cfg.Derived.WorldH, cfg.Pheromone.SignalCellSize),
		hud:        NewHUD(),
		homeRadius: float32(cfg.Colony.HomeRadius),
		foodRadius: float32(cfg.Colony.FoodPickupRadius),
		pullRadius: float32(cfg.Colony.AutoPullRadius),
		screenW:    w,
		screenH:    h,
	}
	for i := range v.show {
		v.show[i] = true
	}
	return v
}

// HandleInput processes keyboard and mouse input.
func (v *Viewer) HandleInput(ctl Controls) {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		ctl.SetPaused(!ctl.Paused())
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && ctl.StepsPerUpdate() > 1 {
		ctl.SetStepsPerUpdate(ctl.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && ctl.StepsPerUpdate() < maxStepsPerUpdate {
		ctl.SetStepsPerUpdate(ctl.StepsPerUpdate() + 1)
	}

	if rl.IsKeyPressed(rl.KeyOne) {
		v.show[field.ToFood] = !v.show[field.ToFood]
	}
	if rl.IsKeyPressed(rl.KeyTwo) {
		v.show[field.ToHome] = !v.show[field.ToHome]
	}

	v.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenW && h == v.screenH {
		return
	}
	v.screenW, v.screenH = w, h
	v.cam.Resize(w, h)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	const panSpeed = 8.0

	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed)
	}

	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		if v.dragging {
			v.cam.Pan(v.lastMouse.X-mouse.X, v.lastMouse.Y-mouse.Y)
		}
		v.dragging = true
	} else {
		v.dragging = false
	}
	v.lastMouse = mouse

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}
}

// Draw renders one frame. It must be called between rl.BeginDrawing and
// rl.EndDrawing.
func (v *Viewer) Draw(src Source, ctl Controls) {
	rl.ClearBackground(rl.NewColor(18, 16, 14, 255))

	v.snaps = v.snaps[:0]
	for ch := field.Channel(0); ch < field.NumChannels; ch++ {
		if v.show[ch] {
			v.snaps = append(v.snaps, src.FieldSnapshot(ch))
		}
	}
	v.trails.Update(v.snaps)
	v.trails.Draw(v.cam)

	drawLandmarks(v.cam, src.Landmarks(), v.homeRadius, v.foodRadius, v.pullRadius)

	v.agents = src.AgentSnapshots(v.agents)
	drawAgents(v.cam, v.agents)

	v.hud.Draw(HUDData{
		Tick:       src.Tick(),
		Agents:     len(v.agents),
		Deliveries: src.Deliveries(),
		Stats:      src.LastStats(),
		FPS:        rl.GetFPS(),
		ShowToFood: v.show[field.ToFood],
		ShowToHome: v.show[field.ToHome],
	}, ctl, v)
}

// Unload releases GPU resources.
func (v *Viewer) Unload() {
	v.trails.Unload()
}
