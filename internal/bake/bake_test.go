package bake

import (
	"context"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"terrainstream/internal/config"
	"terrainstream/internal/world"
)

func testSettings() config.Settings {
	s := config.Default()
	s.LODResolutions = []int{8, 4, 2}
	s.IdleBackoff = 100 * time.Microsecond
	return s
}

var quietLogger = log.New(io.Discard, "", 0)

func TestRegionCoords(t *testing.T) {
	r := RegionAround(world.ChunkCoord{X: 1, Z: -1}, 1)
	coords := r.Coords()
	if len(coords) != 9 {
		t.Fatalf("got %d coords, want 9", len(coords))
	}
	if coords[0] != (world.ChunkCoord{X: 0, Z: -2}) || coords[8] != (world.ChunkCoord{X: 2, Z: 0}) {
		t.Errorf("unexpected order: first %v last %v", coords[0], coords[8])
	}
	if coords[1] != (world.ChunkCoord{X: 1, Z: -2}) {
		t.Errorf("coords should advance X first, got %v", coords[1])
	}

	if (Region{Min: world.ChunkCoord{X: 1}, Max: world.ChunkCoord{}}).Coords() != nil {
		t.Error("inverted region should have no coords")
	}
}

func TestBakeAndRoundTrip(t *testing.T) {
	s := testSettings()
	region := RegionAround(world.ChunkCoord{}, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, err := Bake(ctx, s, region, quietLogger)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if len(a.Sets) != 9 {
		t.Fatalf("baked %d sets, want 9", len(a.Sets))
	}
	for i, c := range region.Coords() {
		if a.Sets[i].Coord != c {
			t.Fatalf("set %d is %v, want %v", i, a.Sets[i].Coord, c)
		}
		if len(a.Sets[i].LODs) != 3 {
			t.Fatalf("set %v has %d LODs", c, len(a.Sets[i].LODs))
		}
	}

	path := filepath.Join(t.TempDir(), "out", "region.tsb")
	if err := WriteArchive(path, a); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	got, err := ReadArchive(path)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}

	if got.Header.Version != ArchiveVersion || got.Header.Chunks != 9 || got.Header.Seed != s.Noise.Seed {
		t.Errorf("header = %+v", got.Header)
	}
	if got.Header.Min != region.Min || got.Header.Max != region.Max {
		t.Errorf("header region = %v..%v", got.Header.Min, got.Header.Max)
	}
	want := a.Sets[4].LODs[0]
	have := got.Sets[4].LODs[0]
	if have.Coord != want.Coord || have.Resolution != want.Resolution || len(have.Vertices) != len(want.Vertices) {
		t.Fatalf("mesh mismatch: %v/%d/%d", have.Coord, have.Resolution, len(have.Vertices))
	}
	for i := range want.Vertices {
		if have.Vertices[i] != want.Vertices[i] {
			t.Fatalf("vertex %d differs: %v vs %v", i, have.Vertices[i], want.Vertices[i])
		}
	}
	if len(have.Indices) != len(want.Indices) {
		t.Errorf("indices %d vs %d", len(have.Indices), len(want.Indices))
	}
}

func TestBakeHonoursContext(t *testing.T) {
	s := testSettings()
	s.LODResolutions = []int{200}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Bake(ctx, s, RegionAround(world.ChunkCoord{}, 3), quietLogger)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReadArchiveRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tsb")
	if err := os.WriteFile(path, []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadArchive(path); err == nil {
		t.Fatal("expected error")
	}
}

type slope struct{}

// rises 1 unit per world unit along +X
func (slope) HeightAt(x, z float64) float32 { return float32(x) }

func TestHeightmapAndScale(t *testing.T) {
	region := Region{Min: world.ChunkCoord{}, Max: world.ChunkCoord{X: 1}}
	img, err := Heightmap(slope{}, region, 100, 10, 200)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("bounds = %v, want 20x10", b)
	}
	if img.GrayAt(0, 0) != (color.Gray{Y: 0}) {
		t.Errorf("left edge = %v, want black", img.GrayAt(0, 0))
	}
	// x = 190 -> 190/200 of full scale
	if got := img.GrayAt(19, 5).Y; got != 242 {
		t.Errorf("right edge = %d, want 242", got)
	}

	small := Scale(img, 8)
	if b := small.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("scaled bounds = %v, want 8x4", b)
	}
	if small.GrayAt(0, 2).Y >= small.GrayAt(7, 2).Y {
		t.Error("scaling lost the gradient")
	}

	path := filepath.Join(t.TempDir(), "preview.png")
	if err := WritePNG(path, small); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("preview not written: %v", err)
	}
}

func TestHeightmapRejectsBadInput(t *testing.T) {
	r := RegionAround(world.ChunkCoord{}, 0)
	if _, err := Heightmap(slope{}, r, 100, 0, 10); err == nil {
		t.Error("zero samples should fail")
	}
	if _, err := Heightmap(slope{}, Region{Min: world.ChunkCoord{X: 2}}, 100, 4, 10); err == nil {
		t.Error("empty region should fail")
	}
}
