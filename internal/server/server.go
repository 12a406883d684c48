// Package server exposes the HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/parkscope/parkscope/internal/clock"
	"github.com/parkscope/parkscope/internal/config"
	dashboarddomain "github.com/parkscope/parkscope/internal/dashboard/domain"
	"github.com/parkscope/parkscope/internal/importer"
	lotdomain "github.com/parkscope/parkscope/internal/lot/domain"
	"github.com/parkscope/parkscope/internal/observability/logger"
	"github.com/parkscope/parkscope/internal/observability/metrics"
	"github.com/parkscope/parkscope/internal/observability/tracing"
	"github.com/parkscope/parkscope/internal/occupancy/aggregator"
	txndomain "github.com/parkscope/parkscope/internal/transaction/domain"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

type Server struct {
	cfg          config.Config
	db           *gorm.DB
	log          *zap.Logger
	engine       *gin.Engine
	genID        *snowflake.Node
	clock        clock.Clock
	dashboardSvc dashboarddomain.Service
	importSvc    *importer.Service
	lotRepo      lotdomain.Repository
	txnRepo      txndomain.Repository
	aggWorker    *aggregator.Worker
}

type Params struct {
	fx.In

	Cfg          config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	Engine       *gin.Engine
	GenID        *snowflake.Node
	Clock        clock.Clock
	DashboardSvc dashboarddomain.Service
	ImportSvc    *importer.Service
	LotRepo      lotdomain.Repository
	TxnRepo      txndomain.Repository
	AggWorker    *aggregator.Worker
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("server"),
		engine:       p.Engine,
		genID:        p.GenID,
		clock:        p.Clock,
		dashboardSvc: p.DashboardSvc,
		importSvc:    p.ImportSvc,
		lotRepo:      p.LotRepo,
		txnRepo:      p.TxnRepo,
		aggWorker:    p.AggWorker,
	}
}

// NewEngine builds the gin engine with the shared middleware stack.
func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(tracing.GinMiddleware())
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

func (s *Server) RegisterRoutes() {
	r := s.engine

	r.GET("/healthz", s.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/summary/", s.GetSummary)
	r.GET("/parking-lots/", s.ListParkingLots)
	r.POST("/parking-lots/", s.CreateParkingLot)
	r.DELETE("/parking-lots/:id", s.DeleteParkingLot)

	r.POST("/transactions/entry/", s.RecordEntry)
	r.POST("/transactions/exit/", s.RecordExit)

	r.GET("/revenue-line/", s.GetRevenueLine)
	r.GET("/revenue-bar/", s.GetRevenueBar)

	r.GET("/parking-lot/:id/historical-occupancy/", s.GetHistoricalOccupancy)
	r.GET("/parking-lot/:id/peak-hours/", s.GetPeakHours)
	r.GET("/parking-lot/:id/revenue/", s.GetLotRevenue)
	r.GET("/parking-lot/:id/monthly-revenue/", s.GetLotMonthlyRevenue)

	r.POST("/parking-history/import/", s.ImportParkingHistory)
	r.POST("/parking-transactions/import/", s.ImportParkingTransactions)
	r.GET("/parking-history/template/", s.ParkingHistoryTemplate)
	r.GET("/parking-transactions/template/", s.ParkingTransactionsTemplate)

	r.POST("/jobs/occupancy/run", s.RunOccupancyJob)
}

func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseSnowflake(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
