package renderer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trails/field"
	"github.com/pthm-cable/trails/telemetry"
)

// HUDData holds the values shown in the heads-up display.
type HUDData struct {
	Tick       int32
	Agents     int
	Deliveries int
	Stats      telemetry.WindowStats
	FPS        int32
	ShowToFood bool
	ShowToHome bool
}

// HUD renders the stats text and the run controls panel.
type HUD struct {
	panelW float32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{panelW: 220}
}

const controlsLegend = "SPACE pause | , . speed | 1 2 trails | wheel/+- zoom | right-drag pan | HOME reset"

// Draw renders the HUD and applies any control changes.
func (h *HUD) Draw(data HUDData, ctl Controls, v *Viewer) {
	rl.DrawText("Trails", 10, 10, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Ants: %d | Deliveries: %d | FPS: %d", data.Tick, data.Agents, data.Deliveries, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	s := data.Stats
	if s.WindowEndTick > 0 {
		rl.DrawText(
			fmt.Sprintf("Window: seeking food %d | seeking home %d | trips %.1fs p50 %.1fs p90 %.1fs",
				s.SeekingFood, s.SeekingHome, s.TripMean, s.TripP50, s.TripP90),
			10, 55, 16, rl.LightGray,
		)
		rl.DrawText(
			fmt.Sprintf("Cells: to-food %d | to-home %d | cache hit %.0f%%",
				s.ToFoodCells, s.ToHomeCells, s.CacheHitRate*100),
			10, 75, 16, rl.LightGray,
		)
	}

	status := "Running"
	if ctl.Paused() {
		status = "PAUSED"
	}
	rl.DrawText(status, 10, 95, 16, rl.Yellow)

	h.drawControls(data, ctl, v)
	rl.DrawText(controlsLegend, 10, int32(v.screenH)-25, 14, rl.Gray)
}

// drawControls draws the raygui panel in the top right corner.
func (h *HUD) drawControls(data HUDData, ctl Controls, v *Viewer) {
	x := v.screenW - h.panelW - 10
	y := float32(10)

	label := "Pause"
	if ctl.Paused() {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: h.panelW, Height: 24}, label) {
		ctl.SetPaused(!ctl.Paused())
	}
	y += 34

	rl.DrawText(fmt.Sprintf("Speed: %dx", ctl.StepsPerUpdate()), int32(x), int32(y), 14, rl.LightGray)
	y += 18
	speed := gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: y, Width: h.panelW - 40, Height: 18},
		"1", fmt.Sprint(maxStepsPerUpdate),
		float32(ctl.StepsPerUpdate()), 1, maxStepsPerUpdate,
	)
	if n := int(speed + 0.5); n != ctl.StepsPerUpdate() {
		ctl.SetStepsPerUpdate(n)
	}
	y += 28

	v.show[field.ToFood] = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "to-food trail", data.ShowToFood)
	y += 22
	v.show[field.ToHome] = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "to-home trail", data.ShowToHome)
}
