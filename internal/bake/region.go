package bake

import (
	"context"
	"fmt"
	"log"
	"time"

	"terrainstream/internal/config"
	"terrainstream/internal/meshing"
	"terrainstream/internal/queue"
	"terrainstream/internal/world"
)

// Region is an inclusive rectangle of chunk coordinates.
type Region struct {
	Min, Max world.ChunkCoord
}

// RegionAround returns the square of radius r centred on c.
func RegionAround(c world.ChunkCoord, r int) Region {
	return Region{
		Min: world.ChunkCoord{X: c.X - r, Z: c.Z - r},
		Max: world.ChunkCoord{X: c.X + r, Z: c.Z + r},
	}
}

func (r Region) Valid() bool {
	return r.Min.X <= r.Max.X && r.Min.Z <= r.Max.Z
}

// Coords lists the region row-major by Z then X.
func (r Region) Coords() []world.ChunkCoord {
	if !r.Valid() {
		return nil
	}
	out := make([]world.ChunkCoord, 0, (r.Max.X-r.Min.X+1)*(r.Max.Z-r.Min.Z+1))
	for z := r.Min.Z; z <= r.Max.Z; z++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			out = append(out, world.ChunkCoord{X: x, Z: z})
		}
	}
	return out
}

// Bake runs the generation worker over every chunk of region and collects the
// results in request order.
func Bake(ctx context.Context, s config.Settings, region Region, logger *log.Logger) (Archive, error) {
	if err := s.Validate(); err != nil {
		return Archive{}, err
	}
	if !region.Valid() {
		return Archive{}, fmt.Errorf("bake: empty region %v..%v", region.Min, region.Max)
	}
	if logger == nil {
		logger = log.Default()
	}

	heights := world.NewHeightField(s.Noise)
	requests := queue.New[meshing.ChunkRequest]()
	results := queue.New[meshing.ChunkLODSet]()
	w := meshing.NewWorker(requests, results, heights, meshing.WorkerOptions{
		Resolutions: s.LODResolutions,
		Footprint:   s.ChunkSize,
		IdleBackoff: s.IdleBackoff,
		Logger:      logger,
	})

	coords := region.Coords()
	for _, c := range coords {
		requests.Push(meshing.ChunkRequest{Coord: c})
	}

	start := time.Now()
	w.Start()
	defer w.Stop()

	sets := make([]meshing.ChunkLODSet, 0, len(coords))
	backoff := max(s.IdleBackoff, time.Millisecond)
	for len(sets) < len(coords) {
		if err := ctx.Err(); err != nil {
			return Archive{}, err
		}
		if got := results.Drain(); len(got) > 0 {
			sets = append(sets, got...)
			continue
		}
		select {
		case <-ctx.Done():
			return Archive{}, ctx.Err()
		case <-time.After(backoff):
		}
	}
	logger.Printf("baked %d chunks in %v", len(sets), time.Since(start).Round(time.Millisecond))

	return Archive{
		Header: Header{
			Seed:        s.Noise.Seed,
			ChunkSize:   s.ChunkSize,
			Resolutions: append([]int(nil), s.LODResolutions...),
			Min:         region.Min,
			Max:         region.Max,
		},
		Sets: sets,
	}, nil
}
