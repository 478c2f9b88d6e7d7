package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
	if s.TierCount() != 3 {
		t.Errorf("expected 3 tiers, got %d", s.TierCount())
	}
}

func TestDefaultReturnsIndependentSlices(t *testing.T) {
	a := Default()
	a.LODResolutions[0] = 7
	b := Default()
	if b.LODResolutions[0] != 100 {
		t.Errorf("Default shares slices between calls: got %d", b.LODResolutions[0])
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"zero chunk size", func(s *Settings) { s.ChunkSize = 0 }},
		{"negative radius", func(s *Settings) { s.StreamingRadius = -1 }},
		{"no tiers", func(s *Settings) { s.LODResolutions = nil }},
		{"zero resolution", func(s *Settings) { s.LODResolutions = []int{100, 0} }},
		{"thresholds not ascending", func(s *Settings) { s.LODThresholds = []float32{800, 400} }},
		{"equal thresholds", func(s *Settings) { s.LODThresholds = []float32{400, 400} }},
		{"unknown stale policy", func(s *Settings) { s.StalePolicy = "maybe" }},
		{"unknown noise", func(s *Settings) { s.Noise.Kind = "simplex" }},
		{"zero octaves", func(s *Settings) { s.Noise.Octaves = 0 }},
		{"biome range inverted", func(s *Settings) { s.Noise.BiomeAmplitudeMin = 200 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.modify(&s)
			err := s.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	data := []byte(`
streaming_radius: 3
lod_resolutions: [64, 32]
lod_thresholds: [300]
idle_backoff: 2ms
stale_policy: drop
noise:
  kind: value
  seed: 99
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.StreamingRadius != 3 {
		t.Errorf("radius = %d, want 3", s.StreamingRadius)
	}
	if len(s.LODResolutions) != 2 || s.LODResolutions[1] != 32 {
		t.Errorf("resolutions = %v", s.LODResolutions)
	}
	if s.IdleBackoff != 2*time.Millisecond {
		t.Errorf("idle backoff = %v", s.IdleBackoff)
	}
	if s.StalePolicy != StaleDrop {
		t.Errorf("stale policy = %q", s.StalePolicy)
	}
	if s.Noise.Kind != NoiseValue || s.Noise.Seed != 99 {
		t.Errorf("noise = %+v", s.Noise)
	}
	// untouched keys keep defaults
	if s.ChunkSize != DefaultChunkSize {
		t.Errorf("chunk size = %v, want default", s.ChunkSize)
	}
	if s.Noise.Octaves != DefaultNoise().Octaves {
		t.Errorf("octaves = %d, want default", s.Noise.Octaves)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("chunk_size: -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if s.StreamingRadius != DefaultStreamingRadius {
		t.Errorf("radius = %d", s.StreamingRadius)
	}
}
