// Command parkscope-aggregate runs a single occupancy aggregation pass and
// exits. Deployments that prefer an external scheduler (cron, a Kubernetes
// CronJob with concurrency control) run this instead of the in-process timer.
package main

import (
	"context"
	"os"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/parkscope/parkscope/internal/clock"
	"github.com/parkscope/parkscope/internal/config"
	"github.com/parkscope/parkscope/internal/history"
	"github.com/parkscope/parkscope/internal/lot"
	"github.com/parkscope/parkscope/internal/migration"
	"github.com/parkscope/parkscope/internal/observability"
	"github.com/parkscope/parkscope/internal/occupancy"
	"github.com/parkscope/parkscope/internal/occupancy/aggregator"
	"github.com/parkscope/parkscope/internal/transaction"
	"github.com/parkscope/parkscope/pkg/db"
)

func main() {
	exitCode := 0
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(func() (*snowflake.Node, error) {
			return snowflake.NewNode(2)
		}),
		db.Module,
		clock.Module,

		lot.Module,
		transaction.Module,
		history.Module,
		occupancy.Module,
		fx.Provide(func(cfg config.Config) aggregator.Config {
			return aggregator.Config{
				WindowDays: cfg.Aggregation.WindowDays,
				RunTimeout: cfg.Aggregation.RunTimeout,
			}
		}),
		fx.Provide(aggregator.NewWorker),

		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return migration.RunMigrations(sqlDB)
		}),
		fx.Invoke(func(lc fx.Lifecycle, worker *aggregator.Worker, log *zap.Logger, shutdowner fx.Shutdowner) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						if err := worker.RunOnce(context.Background()); err != nil {
							log.Error("aggregation run failed", zap.Error(err))
							exitCode = 1
						}
						_ = shutdowner.Shutdown()
					}()
					return nil
				},
			})
		}),
	)
	app.Run()
	os.Exit(exitCode)
}
