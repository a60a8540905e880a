// Package config provides user-tunable settings for the registration tools.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

/* Example config file ...

placement_offset: 0.3
jpeg_quality: 100
registered_suffix: _registered_to_

*/

// Settings holds the knobs shared by the command line tools.
type Settings struct {
	// PlacementOffset is the proportional inset for freshly created
	// control points (0.3 puts them at 30%/70% of each canvas dimension).
	PlacementOffset float64 `yaml:"placement_offset"`

	// JPEGQuality is the quality used when writing JPEG outputs.
	JPEGQuality int `yaml:"jpeg_quality"`

	// RegisteredSuffix is the token inserted before the extension of
	// registered output filenames.
	RegisteredSuffix string `yaml:"registered_suffix"`
}

// Default returns the settings used when no config file is given.
func Default() Settings {
	return Settings{
		PlacementOffset:  0.3,
		JPEGQuality:      100,
		RegisteredSuffix: "_registered_to_",
	}
}

// Load reads settings from a YAML file on top of the defaults.
func Load(path string) (Settings, error) {
	s := Default()

	contents, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("config read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(contents, &s); err != nil {
		return s, fmt.Errorf("config parse %s: %w", path, err)
	}

	return s, s.Finalize()
}

// Finalize does sanity checks on loaded values.
func (s *Settings) Finalize() error {
	if s.PlacementOffset <= 0 || s.PlacementOffset >= 0.5 {
		return fmt.Errorf("placement_offset %g out of range (0, 0.5)", s.PlacementOffset)
	}
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality %d out of range 1..100", s.JPEGQuality)
	}
	if s.RegisteredSuffix == "" {
		return fmt.Errorf("registered_suffix must not be empty")
	}
	return nil
}
