package bake

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"terrainstream/internal/profiling"

	"golang.org/x/image/draw"
)

// HeightSampler returns terrain elevation at world (x, z).
type HeightSampler interface {
	HeightAt(x, z float64) float32
}

// Heightmap samples region at samplesPerChunk points per chunk edge and maps
// [0, maxHeight] to black..white. Row 0 is the minimum Z edge.
func Heightmap(heights HeightSampler, region Region, chunkSize float64, samplesPerChunk int, maxHeight float32) (*image.Gray, error) {
	if !region.Valid() {
		return nil, fmt.Errorf("bake: empty region")
	}
	if samplesPerChunk < 1 || maxHeight <= 0 {
		return nil, fmt.Errorf("bake: bad heightmap parameters (%d samples, max %v)", samplesPerChunk, maxHeight)
	}
	defer profiling.Track("bake.Heightmap")()

	w := (region.Max.X - region.Min.X + 1) * samplesPerChunk
	h := (region.Max.Z - region.Min.Z + 1) * samplesPerChunk
	img := image.NewGray(image.Rect(0, 0, w, h))

	step := chunkSize / float64(samplesPerChunk)
	x0 := float64(region.Min.X) * chunkSize
	z0 := float64(region.Min.Z) * chunkSize
	for py := 0; py < h; py++ {
		z := z0 + float64(py)*step
		for px := 0; px < w; px++ {
			v := heights.HeightAt(x0+float64(px)*step, z) / maxHeight
			v = min(max(v, 0), 1)
			img.SetGray(px, py, color.Gray{Y: uint8(v*255 + 0.5)})
		}
	}
	return img, nil
}

// Scale resizes src so its longer side is size pixels.
func Scale(src image.Image, size int) *image.Gray {
	b := src.Bounds()
	w, h := size, size
	if b.Dx() > b.Dy() {
		h = max(1, size*b.Dy()/b.Dx())
	} else if b.Dy() > b.Dx() {
		w = max(1, size*b.Dx()/b.Dy())
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
