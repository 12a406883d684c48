package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/parkscope/parkscope/internal/clock"
	"github.com/parkscope/parkscope/internal/config"
	"github.com/parkscope/parkscope/internal/dashboard"
	"github.com/parkscope/parkscope/internal/history"
	"github.com/parkscope/parkscope/internal/importer"
	"github.com/parkscope/parkscope/internal/lot"
	"github.com/parkscope/parkscope/internal/migration"
	"github.com/parkscope/parkscope/internal/observability"
	"github.com/parkscope/parkscope/internal/occupancy"
	"github.com/parkscope/parkscope/internal/occupancy/aggregator"
	"github.com/parkscope/parkscope/internal/seed"
	"github.com/parkscope/parkscope/internal/server"
	"github.com/parkscope/parkscope/internal/transaction"
	"github.com/parkscope/parkscope/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,

		lot.Module,
		transaction.Module,
		history.Module,
		occupancy.Module,
		aggregator.Module,
		dashboard.Module,
		importer.Module,

		fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.SeedDemoLots && !cfg.IsProduction() {
				return seed.EnsureDemoLots(conn, node)
			}
			return nil
		}),

		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
