package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkCoord identifies a square terrain chunk on the XZ grid.
type ChunkCoord struct {
	X, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// ChunkCoordAt returns the chunk containing world position (x, z).
func ChunkCoordAt(x, z, chunkSize float64) ChunkCoord {
	return ChunkCoord{
		X: int(math.Floor(x / chunkSize)),
		Z: int(math.Floor(z / chunkSize)),
	}
}

// Origin returns the world-space corner of the chunk at y=0.
func (c ChunkCoord) Origin(chunkSize float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(float64(c.X) * chunkSize), 0, float32(float64(c.Z) * chunkSize)}
}

// Center returns the world-space XZ center of the chunk.
func (c ChunkCoord) Center(chunkSize float64) mgl32.Vec2 {
	return mgl32.Vec2{
		float32((float64(c.X) + 0.5) * chunkSize),
		float32((float64(c.Z) + 0.5) * chunkSize),
	}
}

// ChebyshevDistance is the max of the per-axis chunk distances.
func ChebyshevDistance(a, b ChunkCoord) int {
	return max(abs(a.X-b.X), abs(a.Z-b.Z))
}

// Square lists every coordinate within Chebyshev radius r of center,
// ordered by ring so nearer chunks come first.
func Square(center ChunkCoord, r int) []ChunkCoord {
	if r < 0 {
		return nil
	}
	side := 2*r + 1
	out := make([]ChunkCoord, 0, side*side)
	out = append(out, center)
	for ring := 1; ring <= r; ring++ {
		x0, x1 := center.X-ring, center.X+ring
		z0, z1 := center.Z-ring, center.Z+ring
		for x := x0; x <= x1; x++ {
			out = append(out, ChunkCoord{X: x, Z: z0})
		}
		for z := z0 + 1; z <= z1-1; z++ {
			out = append(out, ChunkCoord{X: x1, Z: z})
		}
		for x := x1; x >= x0; x-- {
			out = append(out, ChunkCoord{X: x, Z: z1})
		}
		for z := z1 - 1; z >= z0+1; z-- {
			out = append(out, ChunkCoord{X: x0, Z: z})
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
