package meshing

import (
	"fmt"

	"terrainstream/internal/profiling"
	"terrainstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// HeightSampler answers ground elevation queries. *world.HeightField satisfies it.
type HeightSampler interface {
	HeightAt(x, z float64) float32
}

// Vertex is the interleaved layout uploaded to the GPU.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

const (
	// Position(3) + Normal(3) + UV(2)
	VertexSize = 8
	FloatSize  = 4
)

// ChunkMeshData is one LOD of one chunk. Positions are relative to Offset.
type ChunkMeshData struct {
	Coord      world.ChunkCoord
	Offset     mgl32.Vec3
	Resolution int
	Vertices   []Vertex
	Indices    []uint32
}

// IndexCount returns the number of indices as the GL draw call wants it.
func (m ChunkMeshData) IndexCount() int32 {
	return int32(len(m.Indices))
}

// Floats flattens the vertices into the interleaved float layout.
func (m ChunkMeshData) Floats() []float32 {
	out := make([]float32, 0, len(m.Vertices)*VertexSize)
	for _, v := range m.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV[0], v.UV[1],
		)
	}
	return out
}

var up = mgl32.Vec3{0, 1, 0}

// Build produces a (resolution+1)^2 vertex grid over the chunk footprint.
// Grid positions are footprint*i/resolution so every tier places its shared
// boundary vertices on identical coordinates.
func Build(coord world.ChunkCoord, resolution int, footprint float64, heights HeightSampler) ChunkMeshData {
	if resolution < 1 {
		panic(fmt.Sprintf("meshing: resolution %d must be >= 1", resolution))
	}
	defer profiling.Track("meshing.Build")()

	originX := float64(coord.X) * footprint
	originZ := float64(coord.Z) * footprint
	stride := resolution + 1

	vertices := make([]Vertex, 0, stride*stride)
	for j := 0; j <= resolution; j++ {
		lz := footprint * float64(j) / float64(resolution)
		for i := 0; i <= resolution; i++ {
			lx := footprint * float64(i) / float64(resolution)
			h := heights.HeightAt(originX+lx, originZ+lz)
			vertices = append(vertices, Vertex{
				Position: mgl32.Vec3{float32(lx), h, float32(lz)},
				Normal:   up,
				UV:       mgl32.Vec2{float32(i) / float32(resolution), float32(j) / float32(resolution)},
			})
		}
	}

	indices := make([]uint32, 0, resolution*resolution*6)
	for j := 0; j < resolution; j++ {
		for i := 0; i < resolution; i++ {
			topLeft := uint32(j*stride + i)
			topRight := topLeft + 1
			bottomLeft := uint32((j+1)*stride + i)
			bottomRight := bottomLeft + 1

			indices = append(indices,
				topLeft, bottomLeft, topRight,
				topRight, bottomLeft, bottomRight,
			)
		}
	}

	return ChunkMeshData{
		Coord:      coord,
		Offset:     coord.Origin(footprint),
		Resolution: resolution,
		Vertices:   vertices,
		Indices:    indices,
	}
}
