// Package observability assembles logging, tracing and metrics modules.
package observability

import (
	"go.uber.org/fx"

	"github.com/parkscope/parkscope/internal/config"
	"github.com/parkscope/parkscope/internal/observability/logger"
	"github.com/parkscope/parkscope/internal/observability/metrics"
	"github.com/parkscope/parkscope/internal/observability/tracing"
)

var Module = fx.Module("observability",
	logger.Module,
	fx.Invoke(tracing.NewProvider),
	fx.Provide(func(cfg config.Config) metrics.Config {
		return metrics.Config{ServiceName: "parkscope", Environment: cfg.Environment}
	}),
	fx.Provide(metrics.HTTPWithConfig),
	fx.Provide(metrics.AggregationWithConfig),
)
