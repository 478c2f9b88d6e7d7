package main

import (
	"fmt"
	"log"
	"time"

	"terrainstream/internal/input"
	"terrainstream/internal/profiling"
	"terrainstream/internal/streaming"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const slowFrame = 20 * time.Millisecond

func (a *app) run() {
	a.lastTime = time.Now()
	a.lastFPSCheckTime = a.lastTime
	for !a.window.ShouldClose() {
		a.tick()
	}
}

func (a *app) tick() {
	profiling.ResetFrame()
	now := time.Now()
	dt := now.Sub(a.lastTime).Seconds()
	a.lastTime = now

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	im := a.input
	if im.JustPressed(input.ActionQuit) {
		a.window.SetShouldClose(true)
	}
	if im.JustPressed(input.ActionToggleWireframe) {
		a.renderer.ToggleWireframe()
	}
	if im.JustPressed(input.ActionToggleGroundLock) {
		a.viewer.GroundLock = !a.viewer.GroundLock
	}
	if im.JustPressed(input.ActionToggleStats) {
		a.showStats = !a.showStats
	}

	func() {
		defer profiling.Track("viewer.Update")()
		a.viewer.Update(dt, movementFrom(im), a.engine)
	}()

	if err := a.engine.Update(a.viewer.Position); err != nil {
		log.Printf("streaming: %v", err)
	}

	items := a.engine.Visible(a.viewer.Position)
	a.renderer.Render(items, a.viewer.ViewMatrix(), a.camera.ProjectionMatrix())
	if a.showStats {
		a.text.RenderLines(a.statsLines(items), 10, 24, 20, 1, mgl32.Vec3{1, 1, 1})
	}

	func() { defer profiling.Track("glfw.SwapBuffers")(); a.window.SwapBuffers() }()
	im.PostUpdate()

	a.frames++
	if time.Since(a.lastFPSCheckTime) >= time.Second {
		a.fps = a.frames
		a.frames = 0
		a.lastFPSCheckTime = time.Now()
	}

	if d := time.Since(now); d > slowFrame {
		log.Printf("slow frame %.2fms: %s", float64(d.Microseconds())/1000, profiling.TopN(4))
	}
}

func (a *app) statsLines(items []streaming.DrawItem) []string {
	s := a.engine.Stats()
	var tiers [4]int
	for _, it := range items {
		tiers[min(it.Tier, len(tiers)-1)]++
	}
	c, _ := a.engine.ViewerChunk()
	p := a.viewer.Position
	return []string{
		fmt.Sprintf("FPS %d", a.fps),
		fmt.Sprintf("pos %.1f %.1f %.1f  chunk %v", p.X(), p.Y(), p.Z(), c),
		fmt.Sprintf("active %d  pending %d  queued %d/%d", s.Active, s.Pending, s.QueuedRequests, s.QueuedCompletions),
		fmt.Sprintf("generated %d  evicted %d  stale %d", s.Generated, s.Evicted, s.DroppedStale),
		fmt.Sprintf("tiers %d/%d/%d+  gl buffers %d", tiers[0], tiers[1], tiers[2]+tiers[3], a.uploader.Live()),
		profiling.TopN(3),
	}
}
