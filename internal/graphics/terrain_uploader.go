package graphics

import (
	"fmt"

	"terrainstream/internal/meshing"
	"terrainstream/internal/streaming"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GLUploader creates one VAO/VBO/EBO triple per chunk LOD. It must only be
// used on the goroutine that owns the GL context.
type GLUploader struct {
	live int
}

func NewGLUploader() *GLUploader {
	return &GLUploader{}
}

func (u *GLUploader) Upload(m meshing.ChunkMeshData) (streaming.Buffers, error) {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return streaming.Buffers{}, fmt.Errorf("empty mesh for chunk %v", m.Coord)
	}
	floats := m.Floats()

	var b streaming.Buffers
	gl.GenVertexArrays(1, &b.VAO)
	gl.GenBuffers(1, &b.VBO)
	gl.GenBuffers(1, &b.EBO)

	gl.BindVertexArray(b.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, b.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(floats)*meshing.FloatSize, gl.Ptr(floats), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	stride := int32(meshing.VertexSize * meshing.FloatSize)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*meshing.FloatSize)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*meshing.FloatSize)

	gl.BindVertexArray(0)

	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		u.Release(b)
		return streaming.Buffers{}, fmt.Errorf("chunk %v: gl out of memory", m.Coord)
	}
	u.live++
	return b, nil
}

func (u *GLUploader) Release(b streaming.Buffers) {
	gl.DeleteVertexArrays(1, &b.VAO)
	gl.DeleteBuffers(1, &b.VBO)
	gl.DeleteBuffers(1, &b.EBO)
	if u.live > 0 {
		u.live--
	}
}

// Live returns the number of LOD buffer triples currently allocated.
func (u *GLUploader) Live() int {
	return u.live
}
