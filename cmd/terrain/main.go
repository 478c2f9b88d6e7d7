package main

import (
	"context"
	"flag"
	"log"
	"runtime"
	"time"

	"terrainstream/internal/config"
	"terrainstream/internal/graphics"
	"terrainstream/internal/input"
	"terrainstream/internal/streaming"
	"terrainstream/internal/viewer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML settings overlay")
	texturePath := flag.String("texture", "", "optional terrain texture (png or jpeg)")
	shaderDir := flag.String("shaders", "", "directory with terrain.vert/terrain.frag overriding the built-in shaders")
	warmup := flag.Duration("warmup", 30*time.Second, "max time to wait for the first square to become resident")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("glfw init: %v", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		log.Fatalf("window: %v", err)
	}

	app, err := setupApp(window, settings, *texturePath, *shaderDir)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}
	defer app.close()

	ctx, cancel := context.WithTimeout(context.Background(), *warmup)
	err = app.engine.WaitResident(ctx)
	cancel()
	if err != nil {
		log.Printf("warm-up incomplete: %v", err)
	}
	app.viewer.ClampToGround(app.engine)

	setupInputHandlers(window, app)
	app.run()
}

// app holds everything the frame loop touches. Owned by the main goroutine.
type app struct {
	window   *glfw.Window
	engine   *streaming.Engine
	uploader *graphics.GLUploader
	renderer *graphics.TerrainRenderer
	text     *graphics.FontRenderer
	camera   *graphics.Camera
	viewer   *viewer.Viewer
	input    *input.InputManager

	showStats bool
	fps       int

	frames           int
	lastFPSCheckTime time.Time
	lastTime         time.Time
}

func (a *app) close() {
	a.engine.Close()
	a.renderer.Delete()
	a.text.Delete()
}

// spawnPosition puts the viewer in the middle of chunk (0,0), above the highest terrain.
func spawnPosition(s config.Settings) mgl32.Vec3 {
	half := float32(s.ChunkSize / 2)
	return mgl32.Vec3{half, float32(s.Noise.BiomeAmplitudeMax), half}
}
