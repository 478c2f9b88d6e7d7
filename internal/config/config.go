package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid settings")

// StalePolicy decides what the poller does with a completion whose coordinate
// left the required square while it was being generated.
type StalePolicy string

const (
	// StaleKeep uploads the chunk anyway; the next eviction pass removes it.
	StaleKeep StalePolicy = "keep"
	// StaleDrop discards completions issued before the coordinate was last
	// dropped from the required square.
	StaleDrop StalePolicy = "drop"
)

// Defaults. The streaming geometry is fixed for the life of an engine.
const (
	DefaultChunkSize       = 100.0
	DefaultStreamingRadius = 5
	DefaultIdleBackoff     = time.Millisecond
)

// DefaultLODResolutions lists grid subdivisions per tier, finest first.
var DefaultLODResolutions = []int{100, 50, 25}

// DefaultLODThresholds are the ascending distances at which the next tier kicks in.
var DefaultLODThresholds = []float32{400, 800}

// Settings holds everything the streaming core needs to know up front.
type Settings struct {
	ChunkSize       float64       `yaml:"chunk_size"`
	StreamingRadius int           `yaml:"streaming_radius"`
	LODResolutions  []int         `yaml:"lod_resolutions"`
	LODThresholds   []float32     `yaml:"lod_thresholds"`
	IdleBackoff     time.Duration `yaml:"idle_backoff"`
	StalePolicy     StalePolicy   `yaml:"stale_policy"`

	Noise NoiseSettings `yaml:"noise"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		ChunkSize:       DefaultChunkSize,
		StreamingRadius: DefaultStreamingRadius,
		LODResolutions:  append([]int(nil), DefaultLODResolutions...),
		LODThresholds:   append([]float32(nil), DefaultLODThresholds...),
		IdleBackoff:     DefaultIdleBackoff,
		StalePolicy:     StaleKeep,
		Noise:           DefaultNoise(),
	}
}

// TierCount returns the number of LOD tiers every active chunk carries.
func (s Settings) TierCount() int {
	return len(s.LODResolutions)
}

// Validate reports the first problem found in s.
func (s Settings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size %v must be positive", ErrInvalid, s.ChunkSize)
	}
	if s.StreamingRadius < 0 {
		return fmt.Errorf("%w: streaming radius %d is negative", ErrInvalid, s.StreamingRadius)
	}
	if len(s.LODResolutions) == 0 {
		return fmt.Errorf("%w: at least one LOD resolution is required", ErrInvalid)
	}
	for i, r := range s.LODResolutions {
		if r < 1 {
			return fmt.Errorf("%w: LOD %d resolution %d must be >= 1", ErrInvalid, i, r)
		}
	}
	for i := 1; i < len(s.LODThresholds); i++ {
		if s.LODThresholds[i] <= s.LODThresholds[i-1] {
			return fmt.Errorf("%w: LOD thresholds must be strictly ascending (%v)", ErrInvalid, s.LODThresholds)
		}
	}
	if s.IdleBackoff < 0 {
		return fmt.Errorf("%w: idle backoff %v is negative", ErrInvalid, s.IdleBackoff)
	}
	switch s.StalePolicy {
	case StaleKeep, StaleDrop:
	default:
		return fmt.Errorf("%w: unknown stale policy %q", ErrInvalid, s.StalePolicy)
	}
	return s.Noise.validate()
}
