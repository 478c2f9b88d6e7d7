package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"terrainstream/internal/bake"
	"terrainstream/internal/config"
	"terrainstream/internal/world"
)

func main() {
	configPath := flag.String("config", "", "YAML settings overlay")
	out := flag.String("out", "terrain.tsb", "archive output path")
	preview := flag.String("preview", "", "optional heightmap PNG output path")
	previewSize := flag.Int("preview-size", 512, "longer side of the preview in pixels")
	cx := flag.Int("x", 0, "centre chunk X")
	cz := flag.Int("z", 0, "centre chunk Z")
	radius := flag.Int("radius", -1, "chunk radius to bake (defaults to the streaming radius)")
	flag.Parse()

	s, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	r := *radius
	if r < 0 {
		r = s.StreamingRadius
	}
	region := bake.RegionAround(world.ChunkCoord{X: *cx, Z: *cz}, r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := bake.Bake(ctx, s, region, nil)
	if err != nil {
		log.Fatalf("bake: %v", err)
	}
	if err := bake.WriteArchive(*out, a); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	log.Printf("wrote %d chunks to %s", len(a.Sets), *out)

	if *preview == "" {
		return
	}
	heights := world.NewHeightField(s.Noise)
	img, err := bake.Heightmap(heights, region, s.ChunkSize, s.LODResolutions[0], float32(s.Noise.BiomeAmplitudeMax))
	if err != nil {
		log.Fatalf("preview: %v", err)
	}
	if err := bake.WritePNG(*preview, bake.Scale(img, *previewSize)); err != nil {
		log.Fatalf("write %s: %v", *preview, err)
	}
	log.Printf("wrote preview to %s", *preview)
}
