package timer

import (
	"fmt"
	"time"
)

// Config holds the interval lengths and the long-break cadence.
type Config struct {
	Focus      time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration

	// SessionsPerLongBreak is how many focus intervals make up one row.
	SessionsPerLongBreak int
}

// DefaultConfig returns the classic 25/5/20 schedule with a long break every 4 focus intervals.
func DefaultConfig() Config {
	return Config{
		Focus:                25 * time.Minute,
		ShortBreak:           5 * time.Minute,
		LongBreak:            20 * time.Minute,
		SessionsPerLongBreak: 4,
	}
}

// Validate rejects non-positive durations and counts.
func (c Config) Validate() error {
	if c.Focus <= 0 {
		return fmt.Errorf("focus duration must be positive, got %s", c.Focus)
	}
	if c.ShortBreak <= 0 {
		return fmt.Errorf("short break duration must be positive, got %s", c.ShortBreak)
	}
	if c.LongBreak <= 0 {
		return fmt.Errorf("long break duration must be positive, got %s", c.LongBreak)
	}
	if c.SessionsPerLongBreak <= 0 {
		return fmt.Errorf("sessions per long break must be positive, got %d", c.SessionsPerLongBreak)
	}
	return nil
}
