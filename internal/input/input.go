package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical viewer action, not a physical key.
type Action int

const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionSprint
	ActionToggleWireframe
	ActionToggleGroundLock
	ActionToggleStats
	ActionQuit
	ActionCount // sentinel for array sizing
)

// InputManager tracks key state per action and detects press/release edges.
// Key events arrive on the GLFW callback; queries come from the frame loop.
type InputManager struct {
	mu sync.RWMutex

	// one key may drive several actions
	keyToActions map[glfw.Key][]Action

	currentState [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// NewInputManager returns a manager with the default fly-camera bindings.
func NewInputManager() *InputManager {
	im := &InputManager{
		keyToActions: make(map[glfw.Key][]Action),
	}

	im.BindKey(glfw.KeyW, ActionMoveForward)
	im.BindKey(glfw.KeyUp, ActionMoveForward)
	im.BindKey(glfw.KeyS, ActionMoveBackward)
	im.BindKey(glfw.KeyDown, ActionMoveBackward)
	im.BindKey(glfw.KeyA, ActionMoveLeft)
	im.BindKey(glfw.KeyLeft, ActionMoveLeft)
	im.BindKey(glfw.KeyD, ActionMoveRight)
	im.BindKey(glfw.KeyRight, ActionMoveRight)
	im.BindKey(glfw.KeySpace, ActionMoveUp)
	im.BindKey(glfw.KeyLeftShift, ActionMoveDown)
	im.BindKey(glfw.KeyLeftControl, ActionSprint)
	im.BindKey(glfw.KeyF, ActionToggleWireframe)
	im.BindKey(glfw.KeyG, ActionToggleGroundLock)
	im.BindKey(glfw.KeyV, ActionToggleStats)
	im.BindKey(glfw.KeyEscape, ActionQuit)

	return im
}

// BindKey adds a binding from key to action.
func (im *InputManager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	im.keyToActions[key] = append(im.keyToActions[key], action)
}

// UnbindKey removes every binding for key.
func (im *InputManager) UnbindKey(key glfw.Key) {
	im.mu.Lock()
	defer im.mu.Unlock()
	delete(im.keyToActions, key)
}

// HandleKeyEvent records a key event. Safe to call from the GLFW callback.
func (im *InputManager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	isPressed := action == glfw.Press || action == glfw.Repeat

	im.mu.Lock()
	defer im.mu.Unlock()
	for _, act := range im.keyToActions[key] {
		if isPressed && !im.currentState[act] {
			im.justPressed[act] = true
		}
		if !isPressed && im.currentState[act] {
			im.justReleased[act] = true
		}
		im.currentState[act] = isPressed
	}
}

// PostUpdate clears edge flags. Call once at the end of every frame.
func (im *InputManager) PostUpdate() {
	im.mu.Lock()
	defer im.mu.Unlock()
	clear(im.justPressed[:])
	clear(im.justReleased[:])
}

// IsActive reports whether the action is held.
func (im *InputManager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.currentState[action]
}

// JustPressed reports whether the action went down during this frame.
func (im *InputManager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.justPressed[action]
}

// JustReleased reports whether the action went up during this frame.
func (im *InputManager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.justReleased[action]
}
