package streaming

import (
	"cmp"
	"slices"

	"terrainstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// LODLevel is one uploaded resolution tier of a chunk.
type LODLevel struct {
	Buffers    Buffers
	IndexCount int32
	Resolution int
}

// Chunk is an active, render-ready terrain chunk.
type Chunk struct {
	Coord  world.ChunkCoord
	Origin mgl32.Vec3
	LODs   []LODLevel
}

// Registry is the active-chunk map. It belongs to the render goroutine and is
// never shared with the worker.
type Registry struct {
	chunks map[world.ChunkCoord]*Chunk
}

func newRegistry() *Registry {
	return &Registry{chunks: make(map[world.ChunkCoord]*Chunk)}
}

// Get returns the active chunk at coord, or nil.
func (r *Registry) Get(coord world.ChunkCoord) *Chunk {
	return r.chunks[coord]
}

// Has reports whether coord is active.
func (r *Registry) Has(coord world.ChunkCoord) bool {
	_, ok := r.chunks[coord]
	return ok
}

// Len returns the number of active chunks.
func (r *Registry) Len() int {
	return len(r.chunks)
}

// Sorted returns the active chunks ordered by X then Z.
func (r *Registry) Sorted() []*Chunk {
	out := make([]*Chunk, 0, len(r.chunks))
	for _, c := range r.chunks {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Chunk) int {
		if c := cmp.Compare(a.Coord.X, b.Coord.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Coord.Z, b.Coord.Z)
	})
	return out
}

func (r *Registry) insert(c *Chunk) {
	r.chunks[c.Coord] = c
}

func (r *Registry) remove(coord world.ChunkCoord) {
	delete(r.chunks, coord)
}
