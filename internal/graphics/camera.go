package graphics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera handles the projection matrix
type Camera struct {
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

// NewCamera returns a 75 degree camera. Callers size farPlane to cover the
// streamed square.
func NewCamera(width, height int, farPlane float32) *Camera {
	return &Camera{
		AspectRatio: float32(width) / float32(height),
		FOV:         75.0,
		NearPlane:   0.1,
		FarPlane:    farPlane,
	}
}

// SetViewport updates the aspect ratio after a resize.
func (c *Camera) SetViewport(width, height int) {
	if height == 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}
