package world

import (
	"terrainstream/internal/config"
)

// biomeSeedOffset keeps the biome channel decorrelated from the detail layers.
const biomeSeedOffset = 7919

// HeightField maps world (x, z) to terrain elevation. It is immutable after
// construction, so HeightAt may be called from any goroutine without locking.
type HeightField struct {
	base  noise2D
	biome noise2D

	frequency float64
	scales    [3]float64
	weights   [3]float64

	biomeFrequency float64
	ampMin, ampMax float64
}

// NewHeightField builds a height field from fixed noise parameters.
func NewHeightField(s config.NoiseSettings) *HeightField {
	hf := &HeightField{
		frequency:      s.Frequency,
		scales:         s.LayerScales,
		weights:        s.LayerWeights,
		biomeFrequency: s.BiomeFrequency,
		ampMin:         s.BiomeAmplitudeMin,
		ampMax:         s.BiomeAmplitudeMax,
	}
	switch s.Kind {
	case config.NoiseValue:
		hf.base = valueNoise{seed: s.Seed, octaves: s.Octaves, gain: s.Gain, lacunarity: s.Lacunarity}
		hf.biome = valueNoise{seed: s.Seed + biomeSeedOffset, octaves: 1, gain: s.Gain, lacunarity: s.Lacunarity}
	default:
		hf.base = newPerlinNoise(s.Seed, s.Octaves, s.Lacunarity, s.Gain)
		hf.biome = newPerlinNoise(s.Seed+biomeSeedOffset, 1, s.Lacunarity, s.Gain)
	}
	return hf
}

// HeightAt returns the elevation at world position (x, z).
func (hf *HeightField) HeightAt(x, z float64) float32 {
	sum := 0.0
	for i := range hf.weights {
		f := hf.frequency * hf.scales[i]
		sum += hf.weights[i] * hf.base.Noise2D(x*f, z*f)
	}
	return float32(unit(sum) * hf.BiomeAmplitude(x, z))
}

// BiomeAmplitude returns the vertical scale of the biome at (x, z), somewhere
// in [min, max].
func (hf *HeightField) BiomeAmplitude(x, z float64) float64 {
	b := unit(hf.biome.Noise2D(x*hf.biomeFrequency, z*hf.biomeFrequency))
	return lerp(hf.ampMin, hf.ampMax, b)
}

// unit remaps [-1,1] to [0,1], clamping overshoot.
func unit(v float64) float64 {
	v = (v + 1) * 0.5
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
