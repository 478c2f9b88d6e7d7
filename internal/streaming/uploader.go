package streaming

import (
	"fmt"

	"terrainstream/internal/meshing"
)

// Buffers names the render-side storage of one LOD.
type Buffers struct {
	VAO, VBO, EBO uint32
}

// Uploader turns plain mesh arrays into render-ready buffers. Every call is
// made from the goroutine that owns the Engine.
type Uploader interface {
	Upload(m meshing.ChunkMeshData) (Buffers, error)
	Release(b Buffers)
}

// HeadlessUploader hands out fake buffer names and tracks which are live.
// It backs tests that run the pipeline without a GL context.
type HeadlessUploader struct {
	next     uint32
	live     map[uint32]int32
	uploaded int
}

// NewHeadlessUploader returns an uploader with no live buffers.
func NewHeadlessUploader() *HeadlessUploader {
	return &HeadlessUploader{live: make(map[uint32]int32)}
}

func (u *HeadlessUploader) Upload(m meshing.ChunkMeshData) (Buffers, error) {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return Buffers{}, fmt.Errorf("empty mesh for chunk %v", m.Coord)
	}
	u.next++
	u.live[u.next] = m.IndexCount()
	u.uploaded++
	return Buffers{VAO: u.next, VBO: u.next, EBO: u.next}, nil
}

func (u *HeadlessUploader) Release(b Buffers) {
	delete(u.live, b.VAO)
}

// Live returns the number of buffers uploaded and not yet released.
func (u *HeadlessUploader) Live() int {
	return len(u.live)
}

// Uploaded returns the total number of successful uploads.
func (u *HeadlessUploader) Uploaded() int {
	return u.uploaded
}
