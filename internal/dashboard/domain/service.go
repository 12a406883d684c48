package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Service exposes the dashboard aggregation queries. All methods are stateless
// reads over stored rows.
type Service interface {
	Summary(ctx context.Context) (Summary, error)
	// RevenueLine groups transaction revenue by calendar month, ascending.
	RevenueLine(ctx context.Context) ([]RevenueLinePoint, error)
	// RevenueBar sums history revenue per lot for the given month. A zero
	// month means the most recent month present in history.
	RevenueBar(ctx context.Context, month time.Time) ([]RevenueBarPoint, error)
	HistoricalOccupancy(ctx context.Context, lotID snowflake.ID, month time.Time) ([]OccupancyPoint, error)
	PeakHours(ctx context.Context, lotID snowflake.ID, date time.Time) ([]PeakHourPoint, error)
	Revenue(ctx context.Context, lotID snowflake.ID, month time.Time) ([]DailyRevenuePoint, error)
	MonthlyRevenue(ctx context.Context, lotID snowflake.ID, year int) ([]MonthlyRevenuePoint, error)
}

var (
	ErrLotNotFound     = errors.New("parking_lot_not_found")
	ErrNoDataAvailable = errors.New("no_data_available")
)
