package main

import (
	"time"

	"icarus/internal/profiling"

	"go.uber.org/zap"
)

// slowFrame is the CPU time above which a frame is reported.
const slowFrame = 16 * time.Millisecond

// GameLoop drives one app until the window is closed.
type GameLoop struct {
	app   *app
	log   *zap.Logger
	frame *profiling.Frame

	frames int
}

func newGameLoop(a *app, log *zap.Logger) *GameLoop {
	return &GameLoop{app: a, log: log, frame: profiling.NewFrame()}
}

// Run ticks until the surface reports a close request.
func (gl *GameLoop) Run() {
	start := time.Now()
	for !gl.app.surface.CloseRequested() {
		gl.tick()
	}
	elapsed := time.Since(start)
	gl.log.Info("frame loop stopped",
		zap.Int("frames", gl.frames),
		zap.Duration("elapsed", elapsed),
		zap.Float64("avgFPS", float64(gl.frames)/elapsed.Seconds()))
}

func (gl *GameLoop) tick() {
	a := gl.app
	gl.frame.Begin()

	func() {
		defer gl.frame.Track("input")()
		a.controls.Poll(a.surface)
		a.camera.Update(a.controls)
	}()

	a.showcase.IncreaseRotation(0, 1, 0)

	func() {
		defer gl.frame.Track("render")()
		for _, e := range a.entities {
			a.renderer.Submit(e)
		}
		for _, t := range a.terrains {
			a.renderer.SubmitTerrain(t)
		}
		a.renderer.Render(a.light, a.camera)
	}()

	if work := gl.frame.Elapsed(); work > slowFrame {
		stats := a.renderer.Stats()
		gl.log.Warn("slow frame",
			zap.Duration("cpu", work),
			zap.Int("draws", stats.Draws),
			zap.Int("meshBinds", stats.MeshBinds),
			zap.Int("textureBinds", stats.TextureBinds),
			zap.String("top", gl.frame.TopN(3)))
	}

	a.surface.Update()
	gl.frames++
}
