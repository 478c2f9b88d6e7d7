package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	EyeHeight        = 1.8
	FlySpeed         = 40.0 // world units per second
	SprintMultiplier = 4.0
	MouseSensitivity = 0.1
)

// HeightSampler returns terrain elevation at world (x, z).
type HeightSampler interface {
	HeightAt(x, z float64) float32
}

// Movement is one frame's worth of movement intent, each axis in [-1, 1].
type Movement struct {
	Forward  float32
	Strafe   float32
	Vertical float32
	Sprint   bool
}

// Viewer is a free-flying camera that can optionally be held above the terrain.
type Viewer struct {
	Position mgl32.Vec3
	Yaw      float64
	Pitch    float64

	// GroundLock keeps the eye at least EyeHeight above the terrain.
	GroundLock bool

	lastMouseX float64
	lastMouseY float64
	firstMouse bool
}

func New(position mgl32.Vec3) *Viewer {
	return &Viewer{
		Position:   position,
		Yaw:        -90,
		GroundLock: true,
		firstMouse: true,
	}
}

// ResetMouse makes the next cursor event re-anchor instead of turning.
func (v *Viewer) ResetMouse() {
	v.firstMouse = true
}

func (v *Viewer) HandleMouseMovement(xpos, ypos float64) {
	if v.firstMouse {
		v.lastMouseX = xpos
		v.lastMouseY = ypos
		v.firstMouse = false
		return
	}

	xoffset := (xpos - v.lastMouseX) * MouseSensitivity
	yoffset := (v.lastMouseY - ypos) * MouseSensitivity
	v.lastMouseX = xpos
	v.lastMouseY = ypos

	v.Yaw += xoffset
	v.Pitch += yoffset

	// Constrain pitch
	if v.Pitch > 89.0 {
		v.Pitch = 89.0
	}
	if v.Pitch < -89.0 {
		v.Pitch = -89.0
	}
}

func (v *Viewer) FrontVector() mgl32.Vec3 {
	y := mgl32.DegToRad(float32(v.Yaw))
	pt := mgl32.DegToRad(float32(v.Pitch))
	fx := float32(math.Cos(float64(y)) * math.Cos(float64(pt)))
	fy := float32(math.Sin(float64(pt)))
	fz := float32(math.Sin(float64(y)) * math.Cos(float64(pt)))
	return mgl32.Vec3{fx, fy, fz}.Normalize()
}

func (v *Viewer) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(v.Position, v.Position.Add(v.FrontVector()), mgl32.Vec3{0, 1, 0})
}

// Update moves the viewer for dt seconds. Forward/strafe move in the XZ plane
// along the current yaw; vertical moves straight up or down.
func (v *Viewer) Update(dt float64, m Movement, ground HeightSampler) {
	speed := float32(FlySpeed * dt)
	if m.Sprint {
		speed *= SprintMultiplier
	}

	yaw := mgl32.DegToRad(float32(v.Yaw))
	forward := mgl32.Vec3{float32(math.Cos(float64(yaw))), 0, float32(math.Sin(float64(yaw)))}
	right := forward.Cross(mgl32.Vec3{0, 1, 0})

	move := forward.Mul(m.Forward).Add(right.Mul(m.Strafe))
	if move.Len() > 1 {
		move = move.Normalize()
	}
	move = move.Add(mgl32.Vec3{0, m.Vertical, 0})
	v.Position = v.Position.Add(move.Mul(speed))

	if v.GroundLock && ground != nil {
		v.ClampToGround(ground)
	}
}

// ClampToGround lifts the viewer so the eye stays EyeHeight above the terrain.
func (v *Viewer) ClampToGround(ground HeightSampler) {
	floor := ground.HeightAt(float64(v.Position.X()), float64(v.Position.Z())) + EyeHeight
	if v.Position.Y() < floor {
		v.Position[1] = floor
	}
}
