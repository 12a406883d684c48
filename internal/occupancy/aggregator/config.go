package aggregator

import "time"

// Config controls the occupancy aggregation job.
type Config struct {
	// WindowDays is the trailing number of calendar days recomputed per run.
	WindowDays int
	// RunTimeout bounds a full run across all lots.
	RunTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		WindowDays: 32,
		RunTimeout: 10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.WindowDays <= 0 {
		c.WindowDays = defaults.WindowDays
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	return c
}
