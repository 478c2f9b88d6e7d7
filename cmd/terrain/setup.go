package main

import (
	"fmt"

	"terrainstream/internal/config"
	"terrainstream/internal/graphics"
	"terrainstream/internal/input"
	"terrainstream/internal/streaming"
	"terrainstream/internal/viewer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	windowWidth  = 1024
	windowHeight = 768
)

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "terrainstream", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		return nil, err
	}

	glfw.SwapInterval(1)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	return window, nil
}

func setupApp(window *glfw.Window, s config.Settings, texturePath, shaderDir string) (*app, error) {
	var texture uint32
	if texturePath != "" {
		t, err := graphics.LoadTexture(texturePath)
		if err != nil {
			return nil, fmt.Errorf("texture: %w", err)
		}
		texture = t
	}

	renderer, err := graphics.NewTerrainRenderer(texture, float32(s.Noise.BiomeAmplitudeMax), shaderDir)
	if err != nil {
		return nil, err
	}

	w, h := window.GetSize()
	atlas, err := graphics.BuildFontAtlas(nil, 16)
	if err != nil {
		renderer.Delete()
		return nil, err
	}
	text, err := graphics.NewFontRenderer(atlas, w, h)
	if err != nil {
		renderer.Delete()
		return nil, err
	}

	uploader := graphics.NewGLUploader()
	engine, err := streaming.NewEngine(s, uploader, nil)
	if err != nil {
		renderer.Delete()
		text.Delete()
		return nil, err
	}

	// Far plane covers the whole streamed square plus a margin.
	far := float32(s.ChunkSize * float64(2*s.StreamingRadius+2))

	a := &app{
		window:   window,
		engine:   engine,
		uploader: uploader,
		renderer: renderer,
		text:     text,
		camera:   graphics.NewCamera(w, h, far),
		viewer:   viewer.New(spawnPosition(s)),
		input:    input.NewInputManager(),
	}
	if err := engine.Update(a.viewer.Position); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}
