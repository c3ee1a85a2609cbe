// Package project holds the authored project settings and the autosaved
// session state around the animation core.
package project

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings are the project-level parameters of a composition.
type Settings struct {
	Width           int      `yaml:"width"`
	Height          int      `yaml:"height"`
	FPS             float64  `yaml:"fps"`
	DurationSeconds float64  `yaml:"durationSeconds"`
	Background      [4]uint8 `yaml:"background"` // sRGB RGBA
}

// Default returns the settings of a fresh project.
func Default() Settings {
	return Settings{
		Width:           1280,
		Height:          720,
		FPS:             30,
		DurationSeconds: 10,
		Background:      [4]uint8{0, 0, 0, 255},
	}
}

// Validate checks the settings for values the core cannot work with.
func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("project: viewport %dx%d must be positive", s.Width, s.Height)
	}
	if s.FPS <= 0 || math.IsNaN(s.FPS) || math.IsInf(s.FPS, 0) {
		return fmt.Errorf("project: fps %v must be positive and finite", s.FPS)
	}
	if s.DurationSeconds < 0 || math.IsNaN(s.DurationSeconds) || math.IsInf(s.DurationSeconds, 0) {
		return fmt.Errorf("project: duration %v must be non-negative and finite", s.DurationSeconds)
	}
	return nil
}

// FrameCount returns the number of frames in the composition.
func (s Settings) FrameCount() int {
	return int(math.Round(s.DurationSeconds * s.FPS))
}

// Marshal serializes the settings as YAML.
func (s Settings) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("project: marshal settings: %w", err)
	}
	return data, nil
}

// Parse deserializes YAML settings and validates them.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("project: parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadFile reads and parses a settings file.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("project: read settings: %w", err)
	}
	return Parse(data)
}

// SaveFile writes the settings to a file.
func (s Settings) SaveFile(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("project: write settings: %w", err)
	}
	return nil
}
