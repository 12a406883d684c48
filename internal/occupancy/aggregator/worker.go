// Package aggregator computes hourly occupancy rates from raw transactions.
//
// For every lot and every day of a trailing window it discretizes the stay
// intervals into 24 hour buckets and upserts one rate row per bucket. Re-runs
// over an unchanged transaction set write identical values, so the stored rows
// are the only progress marker the job needs.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/parkscope/parkscope/internal/clock"
	lotdomain "github.com/parkscope/parkscope/internal/lot/domain"
	"github.com/parkscope/parkscope/internal/observability/metrics"
	occdomain "github.com/parkscope/parkscope/internal/occupancy/domain"
	txndomain "github.com/parkscope/parkscope/internal/transaction/domain"
)

// ErrZeroCapacity marks a lot whose capacity makes the rate undefined. It is a
// configuration error for that lot, not a reason to stop the run.
var ErrZeroCapacity = errors.New("zero_capacity_lot")

const hoursPerDay = 24

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	LotRepo lotdomain.Repository
	TxnRepo txndomain.Repository
	OccRepo occdomain.Repository
	Metrics *metrics.AggregationMetrics `optional:"true"`
	Config  Config                      `optional:"true"`
}

type Worker struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	lotRepo lotdomain.Repository
	txnRepo txndomain.Repository
	occRepo occdomain.Repository
	metrics *metrics.AggregationMetrics
	cfg     Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		db:      p.DB,
		log:     p.Log.Named("occupancy.aggregator"),
		genID:   p.GenID,
		clock:   p.Clock,
		lotRepo: p.LotRepo,
		txnRepo: p.TxnRepo,
		occRepo: p.OccRepo,
		metrics: p.Metrics,
		cfg:     p.Config.withDefaults(),
	}
}

// RunOnce recomputes the trailing window for every lot. A failing lot is
// reported and skipped; the remaining lots still run. The returned error joins
// all per-lot failures.
func (w *Worker) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.RunTimeout)
	defer cancel()

	now := w.clock.Now().UTC()
	windowEnd := truncateToDay(now)
	windowStart := windowEnd.AddDate(0, 0, -w.cfg.WindowDays)

	lots, err := w.lotRepo.List(ctx, w.db)
	if err != nil {
		w.observeRun("failed", now)
		return fmt.Errorf("list lots: %w", err)
	}

	var lotErrs []error
	buckets := 0
	for _, lot := range lots {
		n, err := w.aggregateLot(ctx, lot, windowStart, windowEnd, now)
		buckets += n
		if err != nil {
			w.log.Warn("lot aggregation failed",
				zap.String("lot", lot.Name),
				zap.Error(err),
			)
			w.metrics.IncLotFailure()
			lotErrs = append(lotErrs, fmt.Errorf("lot %q: %w", lot.Name, err))
		}
	}
	w.metrics.AddUpsertedBuckets(buckets)

	if len(lotErrs) > 0 {
		result := "partial"
		if len(lotErrs) == len(lots) && len(lots) > 0 {
			result = "failed"
		}
		w.observeRun(result, now)
		return errors.Join(lotErrs...)
	}

	w.observeRun("success", now)
	w.log.Info("occupancy aggregation completed",
		zap.Int("lots", len(lots)),
		zap.Int("buckets", buckets),
		zap.Time("window_start", windowStart),
		zap.Time("window_end", windowEnd),
	)
	return nil
}

// aggregateLot writes the lot's bucket rows for the window. The first store
// failure aborts the lot's remaining buckets; already-written buckets stay in
// place and the next run recomputes them.
func (w *Worker) aggregateLot(ctx context.Context, lot lotdomain.ParkingLot, windowStart, windowEnd, now time.Time) (int, error) {
	if lot.Capacity <= 0 {
		return 0, ErrZeroCapacity
	}

	// One fetch per lot for the whole window; counting happens in memory.
	txns, err := w.txnRepo.ListOverlapping(ctx, w.db, lot.ID, windowStart, windowEnd)
	if err != nil {
		return 0, fmt.Errorf("load transactions: %w", err)
	}

	days := int(windowEnd.Sub(windowStart).Hours()) / hoursPerDay
	counts := bucketCounts(txns, windowStart, days, now)

	capacity := decimal.NewFromInt(int64(lot.Capacity))
	written := 0
	for dayIdx := 0; dayIdx < days; dayIdx++ {
		date := windowStart.AddDate(0, 0, dayIdx)
		for hour := 0; hour < hoursPerDay; hour++ {
			rate := decimal.NewFromInt(int64(counts[dayIdx*hoursPerDay+hour])).
				Mul(decimal.NewFromInt(100)).
				Div(capacity).
				Round(2)

			row := &occdomain.HourlyOccupancy{
				ID:            w.genID.Generate(),
				LotID:         lot.ID,
				Date:          date,
				Hour:          hour,
				OccupancyRate: rate,
			}
			if err := w.occRepo.Upsert(ctx, w.db, row); err != nil {
				return written, fmt.Errorf("upsert bucket %s %02d:00: %w", date.Format("2006-01-02"), hour, err)
			}
			written++
		}
	}
	return written, nil
}

// bucketCounts returns per-bucket stay counts, indexed day*24+hour. A
// transaction occupies every bucket its interval overlaps, where overlap means
// entry_time < bucket_end AND exit_time >= bucket_start. An open transaction
// (nil exit) is treated as still occupying up to the current instant.
func bucketCounts(txns []txndomain.ParkingTransaction, windowStart time.Time, days int, now time.Time) []int {
	counts := make([]int, days*hoursPerDay)
	windowEnd := windowStart.AddDate(0, 0, days)

	for _, txn := range txns {
		exit := now
		if txn.ExitTime != nil {
			exit = *txn.ExitTime
		}
		if !exit.After(txn.EntryTime) && !exit.Equal(txn.EntryTime) {
			continue
		}

		// First bucket whose end lies after the entry; last bucket whose start
		// is not after the exit (bucket-start equality counts).
		first := txn.EntryTime.Truncate(time.Hour)
		if first.Before(windowStart) {
			first = windowStart
		}
		last := exit.Truncate(time.Hour)
		if !last.Before(windowEnd) {
			last = windowEnd.Add(-time.Hour)
		}

		for bucket := first; !bucket.After(last); bucket = bucket.Add(time.Hour) {
			offset := int(bucket.Sub(windowStart) / time.Hour)
			if offset < 0 || offset >= len(counts) {
				continue
			}
			counts[offset]++
		}
	}
	return counts
}

func (w *Worker) observeRun(result string, start time.Time) {
	w.metrics.ObserveRun(result, w.clock.Now().UTC().Sub(start))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
