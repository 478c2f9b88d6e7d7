package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML overlay on top of Default and validates the result.
// Keys missing from the file keep their default value. An empty path returns
// the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, s.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
