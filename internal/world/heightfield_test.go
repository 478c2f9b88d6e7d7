package world

import (
	"math/rand"
	"sync"
	"testing"

	"terrainstream/internal/config"
)

func noiseSettings(kind config.NoiseKind) config.NoiseSettings {
	s := config.DefaultNoise()
	s.Kind = kind
	return s
}

func TestHeightAtDeterministic(t *testing.T) {
	for _, kind := range []config.NoiseKind{config.NoisePerlin, config.NoiseValue} {
		t.Run(string(kind), func(t *testing.T) {
			hf := NewHeightField(noiseSettings(kind))
			rng := rand.New(rand.NewSource(12345))
			for i := 0; i < 500; i++ {
				x := rng.Float64()*20000 - 10000
				z := rng.Float64()*20000 - 10000
				a := hf.HeightAt(x, z)
				b := hf.HeightAt(x, z)
				if a != b {
					t.Fatalf("HeightAt(%f, %f) not deterministic: %f != %f", x, z, a, b)
				}
			}
		})
	}
}

func TestHeightFieldSameSeedSameTerrain(t *testing.T) {
	a := NewHeightField(config.DefaultNoise())
	b := NewHeightField(config.DefaultNoise())
	for x := -500.0; x <= 500; x += 37.5 {
		for z := -500.0; z <= 500; z += 41.25 {
			if ha, hb := a.HeightAt(x, z), b.HeightAt(x, z); ha != hb {
				t.Fatalf("two fields with one seed disagree at (%f,%f): %f vs %f", x, z, ha, hb)
			}
		}
	}
}

func TestHeightAtWithinBiomeRange(t *testing.T) {
	s := config.DefaultNoise()
	for _, kind := range []config.NoiseKind{config.NoisePerlin, config.NoiseValue} {
		s.Kind = kind
		hf := NewHeightField(s)
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 1000; i++ {
			x := rng.Float64()*50000 - 25000
			z := rng.Float64()*50000 - 25000
			h := hf.HeightAt(x, z)
			if h < 0 || float64(h) > s.BiomeAmplitudeMax {
				t.Fatalf("%s: HeightAt(%f,%f) = %f outside [0,%f]", kind, x, z, h, s.BiomeAmplitudeMax)
			}
			amp := hf.BiomeAmplitude(x, z)
			if amp < s.BiomeAmplitudeMin || amp > s.BiomeAmplitudeMax {
				t.Fatalf("%s: BiomeAmplitude(%f,%f) = %f outside range", kind, x, z, amp)
			}
		}
	}
}

func TestHeightAtFlatBiomeRange(t *testing.T) {
	s := config.DefaultNoise()
	s.BiomeAmplitudeMin = 0
	s.BiomeAmplitudeMax = 0
	hf := NewHeightField(s)
	if h := hf.HeightAt(123.4, -567.8); h != 0 {
		t.Errorf("zero amplitude should flatten terrain, got %f", h)
	}
}

func TestHeightAtConcurrent(t *testing.T) {
	hf := NewHeightField(config.DefaultNoise())

	points := make([][2]float64, 256)
	want := make([]float32, len(points))
	for i := range points {
		points[i] = [2]float64{float64(i)*13.7 - 1500, float64(i)*-7.3 + 800}
		want[i] = hf.HeightAt(points[i][0], points[i][1])
	}

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, p := range points {
				if got := hf.HeightAt(p[0], p[1]); got != want[i] {
					errs <- "concurrent HeightAt mismatch"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestUnitClamps(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{1, 1},
		{0, 0.5},
		{-3, 0},
		{2, 1},
	}
	for _, tt := range tests {
		if got := unit(tt.in); got != tt.want {
			t.Errorf("unit(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func BenchmarkHeightAt(b *testing.B) {
	hf := NewHeightField(config.DefaultNoise())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = hf.HeightAt(float64(i%1024), float64((i*31)%1024))
	}
}
