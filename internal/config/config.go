// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob for the API server and the aggregation job.
type Config struct {
	Environment string
	HTTPAddr    string
	DatabaseDSN string

	Aggregation AggregationConfig
	Tracing     TracingConfig

	SeedDemoLots bool
}

// AggregationConfig controls the hourly occupancy job.
type AggregationConfig struct {
	// WindowDays is the trailing number of calendar days recomputed per run.
	WindowDays int
	// DailyAt is the local wall-clock time ("15:04") the scheduled run fires.
	DailyAt string
	// RunTimeout bounds a single aggregation run.
	RunTimeout time.Duration
}

// TracingConfig configures the OTLP exporter.
type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment: getenv("PARKSCOPE_ENV", "development"),
		HTTPAddr:    getenv("PARKSCOPE_HTTP_ADDR", ":8080"),
		DatabaseDSN: os.Getenv("PARKSCOPE_DATABASE_DSN"),
		Aggregation: AggregationConfig{
			WindowDays: 32,
			DailyAt:    getenv("PARKSCOPE_AGGREGATION_DAILY_AT", "02:00"),
			RunTimeout: 10 * time.Minute,
		},
		Tracing: TracingConfig{
			ExporterEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ExporterProtocol: getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    0.1,
		},
	}

	if cfg.DatabaseDSN == "" {
		return cfg, fmt.Errorf("PARKSCOPE_DATABASE_DSN is required")
	}

	if raw := os.Getenv("PARKSCOPE_AGGREGATION_WINDOW_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return cfg, fmt.Errorf("invalid PARKSCOPE_AGGREGATION_WINDOW_DAYS %q", raw)
		}
		cfg.Aggregation.WindowDays = days
	}
	if raw := os.Getenv("PARKSCOPE_AGGREGATION_RUN_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return cfg, fmt.Errorf("invalid PARKSCOPE_AGGREGATION_RUN_TIMEOUT %q", raw)
		}
		cfg.Aggregation.RunTimeout = timeout
	}
	if _, err := time.Parse("15:04", cfg.Aggregation.DailyAt); err != nil {
		return cfg, fmt.Errorf("invalid PARKSCOPE_AGGREGATION_DAILY_AT %q", cfg.Aggregation.DailyAt)
	}

	if raw := os.Getenv("PARKSCOPE_TRACING_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid PARKSCOPE_TRACING_ENABLED %q", raw)
		}
		cfg.Tracing.Enabled = enabled
	}
	if raw := os.Getenv("PARKSCOPE_TRACING_SAMPLING_RATIO"); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid PARKSCOPE_TRACING_SAMPLING_RATIO %q", raw)
		}
		cfg.Tracing.SamplingRatio = ratio
	}

	if raw := os.Getenv("PARKSCOPE_SEED_DEMO_LOTS"); raw != "" {
		seed, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid PARKSCOPE_SEED_DEMO_LOTS %q", raw)
		}
		cfg.SeedDemoLots = seed
	}

	return cfg, nil
}

// IsProduction reports whether the server runs with production hardening.
func (c Config) IsProduction() bool { return c.Environment == "production" }

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
