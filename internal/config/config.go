// Package config provides the typed notification settings: defaults,
// TOML file loading, range validation and live reload.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Parameter ranges. Out-of-range settings are rejected as a whole; a
// settings update is applied atomically or not at all.
const (
	MinThresholdDB = -96.0
	MaxThresholdDB = 0.0
	MinTimeMs      = 0
	MaxTimeMs      = 10000
	MinIndicatorPx = 5
	MaxIndicatorPx = 500
)

// Settings is the full configuration of one filter instance. Field names
// in the TOML file match the original filter's settings keys.
type Settings struct {
	// Noise gate
	OpenThresholdDB  float64 `toml:"open_threshold"`
	CloseThresholdDB float64 `toml:"close_threshold"`
	AttackMs         int     `toml:"attack_time"`
	HoldMs           int     `toml:"hold_time"`
	ReleaseMs        int     `toml:"release_time"`
	CooldownMs       int     `toml:"cooldown"`

	// Audio indicator
	AudioIndicator bool   `toml:"audio_indicator"`
	File           string `toml:"file"`
	Device         string `toml:"device"`

	// Visual indicator
	VisualIndicator     bool `toml:"visual_indicator"`
	VisualIndicatorSize int  `toml:"visual_indicator_size"`

	// Capture (which microphone to monitor; empty means the system
	// default input device)
	InputDevice string `toml:"input_device"`
}

// Default returns the settings the original filter ships with.
func Default() Settings {
	return Settings{
		OpenThresholdDB:     -26.0,
		CloseThresholdDB:    -32.0,
		AttackMs:            25,
		HoldMs:              200,
		ReleaseMs:           150,
		CooldownMs:          1500,
		AudioIndicator:      false,
		VisualIndicator:     true,
		VisualIndicatorSize: 45,
	}
}

// Load reads a TOML settings file on top of the defaults and validates the
// result. Fields absent from the file keep their default values.
func Load(path string) (Settings, error) {
	s := Default()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// Validate checks every field against its allowed range.
func (s Settings) Validate() error {
	if err := validateThreshold("open_threshold", s.OpenThresholdDB); err != nil {
		return err
	}
	if err := validateThreshold("close_threshold", s.CloseThresholdDB); err != nil {
		return err
	}
	if err := validateTimeMs("attack_time", s.AttackMs); err != nil {
		return err
	}
	if err := validateTimeMs("hold_time", s.HoldMs); err != nil {
		return err
	}
	if err := validateTimeMs("release_time", s.ReleaseMs); err != nil {
		return err
	}
	if err := validateTimeMs("cooldown", s.CooldownMs); err != nil {
		return err
	}
	if s.VisualIndicatorSize < MinIndicatorPx || s.VisualIndicatorSize > MaxIndicatorPx {
		return fmt.Errorf("visual_indicator_size: %d out of range [%d, %d]",
			s.VisualIndicatorSize, MinIndicatorPx, MaxIndicatorPx)
	}
	return nil
}

func validateThreshold(field string, db float64) error {
	if db < MinThresholdDB || db > MaxThresholdDB {
		return fmt.Errorf("%s: %g dB out of range [%g, %g]", field, db, MinThresholdDB, MaxThresholdDB)
	}
	return nil
}

func validateTimeMs(field string, ms int) error {
	if ms < MinTimeMs || ms > MaxTimeMs {
		return fmt.Errorf("%s: %d ms out of range [%d, %d]", field, ms, MinTimeMs, MaxTimeMs)
	}
	return nil
}
