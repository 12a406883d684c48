package aggregator

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/parkscope/parkscope/internal/config"
)

var Module = fx.Module("occupancy.aggregator",
	fx.Provide(func(cfg config.Config) Config {
		return Config{
			WindowDays: cfg.Aggregation.WindowDays,
			RunTimeout: cfg.Aggregation.RunTimeout,
		}
	}),
	fx.Provide(NewWorker),
	fx.Invoke(schedule),
)

// schedule runs the aggregation once a day. The scheduler does not overlap
// runs; multi-instance exclusion is the deployment's responsibility.
func schedule(lc fx.Lifecycle, worker *Worker, cfg config.Config, log *zap.Logger) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(1).Day().At(cfg.Aggregation.DailyAt).Do(func() {
		if err := worker.RunOnce(context.Background()); err != nil {
			log.Warn("scheduled occupancy aggregation failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			scheduler.StartAsync()
			return nil
		},
		OnStop: func(context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
	return nil
}
