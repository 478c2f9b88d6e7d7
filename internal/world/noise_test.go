package world

import (
	"math"
	"math/rand"
	"testing"
)

// TestHash2Deterministic verifies hash2 produces identical results for same inputs
func TestHash2Deterministic(t *testing.T) {
	first := hash2(10, 30, 42)
	for i := 0; i < 100; i++ {
		if h := hash2(10, 30, 42); h != first {
			t.Fatalf("hash2 not deterministic: %d != %d", h, first)
		}
	}
}

func TestHash2DifferentInputs(t *testing.T) {
	seed := int64(42)
	if hash2(1, 0, seed) == hash2(2, 0, seed) {
		t.Error("hash2 should differ for different X")
	}
	if hash2(0, 1, seed) == hash2(0, 2, seed) {
		t.Error("hash2 should differ for different Z")
	}
	if hash2(1, 1, 100) == hash2(1, 1, 200) {
		t.Error("hash2 should differ for different seed")
	}
}

// TestValueNoise2DRange verifies valueNoise2D outputs are in [0,1]
func TestValueNoise2DRange(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	for i := 0; i < 1000; i++ {
		x := rng.Float64()*200 - 100
		z := rng.Float64()*200 - 100
		if v := valueNoise2D(x, z, 42); v < 0 || v > 1 {
			t.Errorf("valueNoise2D(%f, %f) = %f, expected in [0,1]", x, z, v)
		}
	}
}

func TestValueNoise2DContinuity(t *testing.T) {
	v1 := valueNoise2D(1.0, 1.0, 42)
	v2 := valueNoise2D(1.01, 1.0, 42)
	if diff := math.Abs(v1 - v2); diff >= 0.1 {
		t.Errorf("valueNoise2D not continuous: %f vs %f (diff %f)", v1, v2, diff)
	}
}

func TestValueNoiseSignedRange(t *testing.T) {
	n := valueNoise{seed: 5, octaves: 4, gain: 0.5, lacunarity: 2}
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 1000; i++ {
		x := rng.Float64()*1000 - 500
		z := rng.Float64()*1000 - 500
		if v := n.Noise2D(x, z); v < -1 || v > 1 {
			t.Fatalf("valueNoise.Noise2D(%f,%f) = %f, expected in [-1,1]", x, z, v)
		}
	}
}

func TestOctaveNoise2DZeroOctaves(t *testing.T) {
	if v := octaveNoise2D(3.2, 1.1, 1, 0, 0.5, 2); v != 0 {
		t.Errorf("zero octaves should yield 0, got %f", v)
	}
}
