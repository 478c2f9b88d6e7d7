package config

import "fmt"

// NoiseKind selects the base noise used by the height field.
type NoiseKind string

const (
	NoisePerlin NoiseKind = "perlin"
	NoiseValue  NoiseKind = "value"
)

// NoiseSettings holds the fixed parameters of the height field.
type NoiseSettings struct {
	Kind       NoiseKind `yaml:"kind"`
	Seed       int64     `yaml:"seed"`
	Frequency  float64   `yaml:"frequency"`
	Octaves    int       `yaml:"octaves"`
	Lacunarity float64   `yaml:"lacunarity"`
	Gain       float64   `yaml:"gain"`

	// Three layers sampled at Frequency*LayerScales[i], blended by LayerWeights.
	LayerScales  [3]float64 `yaml:"layer_scales"`
	LayerWeights [3]float64 `yaml:"layer_weights"`

	BiomeFrequency    float64 `yaml:"biome_frequency"`
	BiomeAmplitudeMin float64 `yaml:"biome_amplitude_min"`
	BiomeAmplitudeMax float64 `yaml:"biome_amplitude_max"`
}

// DefaultNoise returns the built-in height field parameters.
func DefaultNoise() NoiseSettings {
	return NoiseSettings{
		Kind:              NoisePerlin,
		Seed:              1337,
		Frequency:         0.004,
		Octaves:           4,
		Lacunarity:        2.0,
		Gain:              0.5,
		LayerScales:       [3]float64{1, 2, 4},
		LayerWeights:      [3]float64{0.5, 0.3, 0.2},
		BiomeFrequency:    0.0004,
		BiomeAmplitudeMin: 10,
		BiomeAmplitudeMax: 120,
	}
}

func (n NoiseSettings) validate() error {
	switch n.Kind {
	case NoisePerlin, NoiseValue:
	default:
		return fmt.Errorf("%w: unknown noise kind %q", ErrInvalid, n.Kind)
	}
	if n.Octaves < 1 {
		return fmt.Errorf("%w: octaves %d must be >= 1", ErrInvalid, n.Octaves)
	}
	if n.Frequency <= 0 || n.BiomeFrequency <= 0 {
		return fmt.Errorf("%w: noise frequencies must be positive", ErrInvalid)
	}
	if n.Gain <= 0 || n.Lacunarity <= 0 {
		return fmt.Errorf("%w: gain and lacunarity must be positive", ErrInvalid)
	}
	if n.BiomeAmplitudeMin > n.BiomeAmplitudeMax {
		return fmt.Errorf("%w: biome amplitude min %v exceeds max %v", ErrInvalid, n.BiomeAmplitudeMin, n.BiomeAmplitudeMax)
	}
	return nil
}
