package main

import (
	"terrainstream/internal/input"
	"terrainstream/internal/viewer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func setupInputHandlers(window *glfw.Window, a *app) {
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		a.viewer.HandleMouseMovement(xpos, ypos)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		a.input.HandleKeyEvent(key, action)
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	})

	window.SetSizeCallback(func(w *glfw.Window, width, height int) {
		a.camera.SetViewport(width, height)
		a.text.SetViewport(width, height)
	})

	window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if focused {
			a.viewer.ResetMouse()
		}
	})
}

func axis(im *input.InputManager, pos, neg input.Action) float32 {
	var v float32
	if im.IsActive(pos) {
		v++
	}
	if im.IsActive(neg) {
		v--
	}
	return v
}

func movementFrom(im *input.InputManager) viewer.Movement {
	return viewer.Movement{
		Forward:  axis(im, input.ActionMoveForward, input.ActionMoveBackward),
		Strafe:   axis(im, input.ActionMoveRight, input.ActionMoveLeft),
		Vertical: axis(im, input.ActionMoveUp, input.ActionMoveDown),
		Sprint:   im.IsActive(input.ActionSprint),
	}
}
