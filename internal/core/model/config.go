package model

import "time"

// SessionConfig defines a countdown length for one kind of session.
type SessionConfig struct {
	Duration time.Duration
}

// TimeKeeperConfig contains runtime settings for the focus/break coordinator.
type TimeKeeperConfig struct {
	Focus      SessionConfig
	ShortBreak SessionConfig
}

const (
	DefaultFocusDuration      = 25 * time.Minute
	DefaultShortBreakDuration = 5 * time.Minute
)

// DefaultTimeKeeperConfig returns the 25/5 focus and break split.
func DefaultTimeKeeperConfig() TimeKeeperConfig {
	return TimeKeeperConfig{
		Focus:      SessionConfig{Duration: DefaultFocusDuration},
		ShortBreak: SessionConfig{Duration: DefaultShortBreakDuration},
	}
}

// Normalized replaces non-positive durations with defaults.
func (config TimeKeeperConfig) Normalized() TimeKeeperConfig {
	if config.Focus.Duration <= 0 {
		config.Focus.Duration = DefaultFocusDuration
	}
	if config.ShortBreak.Duration <= 0 {
		config.ShortBreak.Duration = DefaultShortBreakDuration
	}
	return config
}
