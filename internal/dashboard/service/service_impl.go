// Package service implements the dashboard aggregation queries.
package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	dashboarddomain "github.com/parkscope/parkscope/internal/dashboard/domain"
	historydomain "github.com/parkscope/parkscope/internal/history/domain"
	lotdomain "github.com/parkscope/parkscope/internal/lot/domain"
)

const monthLabel = "January 2006"

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	lotRepo     lotdomain.Repository
	historyRepo historydomain.Repository
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	LotRepo     lotdomain.Repository
	HistoryRepo historydomain.Repository
}

func NewService(p Params) dashboarddomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("dashboard.service"),
		lotRepo:     p.LotRepo,
		historyRepo: p.HistoryRepo,
	}
}

func (s *Service) Summary(ctx context.Context) (dashboarddomain.Summary, error) {
	var summary dashboarddomain.Summary

	var totalRevenue decimal.NullDecimal
	if err := s.db.WithContext(ctx).
		Raw(`SELECT SUM(revenue) FROM parking_transactions`).
		Row().Scan(&totalRevenue); err != nil {
		return summary, err
	}
	if totalRevenue.Valid {
		summary.TotalRevenue = totalRevenue.Decimal
	}

	if err := s.db.WithContext(ctx).
		Raw(`SELECT COUNT(1) FROM parking_lots`).
		Scan(&summary.TotalLots).Error; err != nil {
		return summary, err
	}

	var totalCapacity sql.NullInt64
	if err := s.db.WithContext(ctx).
		Raw(`SELECT SUM(capacity) FROM parking_lots`).
		Row().Scan(&totalCapacity); err != nil {
		return summary, err
	}
	if totalCapacity.Valid {
		summary.TotalCapacity = totalCapacity.Int64
	}

	return summary, nil
}

func (s *Service) RevenueLine(ctx context.Context) ([]dashboarddomain.RevenueLinePoint, error) {
	var rows []struct {
		EntryTime time.Time
		Revenue   decimal.Decimal
	}
	if err := s.db.WithContext(ctx).
		Raw(`SELECT entry_time, revenue FROM parking_transactions`).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	// Month bucketing happens here rather than in SQL so the query stays
	// portable across postgres and the sqlite test store.
	totals := make(map[time.Time]decimal.Decimal)
	for _, row := range rows {
		month := time.Date(row.EntryTime.Year(), row.EntryTime.Month(), 1, 0, 0, 0, 0, time.UTC)
		totals[month] = totals[month].Add(row.Revenue)
	}

	months := make([]time.Time, 0, len(totals))
	for month := range totals {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	points := make([]dashboarddomain.RevenueLinePoint, 0, len(months))
	for _, month := range months {
		points = append(points, dashboarddomain.RevenueLinePoint{
			Month:   month.Format(monthLabel),
			Revenue: totals[month],
		})
	}
	return points, nil
}

func (s *Service) RevenueBar(ctx context.Context, month time.Time) ([]dashboarddomain.RevenueBarPoint, error) {
	if month.IsZero() {
		latest, err := s.historyRepo.LatestDate(ctx, s.db)
		if err != nil {
			return nil, err
		}
		if latest.IsZero() {
			return nil, dashboarddomain.ErrNoDataAvailable
		}
		month = latest
	}
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var rows []struct {
		Name    string
		Revenue decimal.Decimal
	}
	if err := s.db.WithContext(ctx).
		Raw(`SELECT l.name AS name, SUM(h.total_revenue) AS revenue
		     FROM parking_histories h
		     JOIN parking_lots l ON l.id = h.lot_id
		     WHERE h.date >= ? AND h.date < ?
		     GROUP BY l.name
		     ORDER BY l.name ASC`, start, end).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, dashboarddomain.ErrNoDataAvailable
	}

	points := make([]dashboarddomain.RevenueBarPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, dashboarddomain.RevenueBarPoint{LotName: row.Name, Revenue: row.Revenue})
	}
	return points, nil
}

func (s *Service) HistoricalOccupancy(ctx context.Context, lotID snowflake.ID, month time.Time) ([]dashboarddomain.OccupancyPoint, error) {
	if err := s.requireLot(ctx, lotID); err != nil {
		return nil, err
	}
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var rows []struct {
		Date          time.Time
		OccupancyRate *decimal.Decimal
	}
	if err := s.db.WithContext(ctx).
		Raw(`SELECT date, occupancy_rate FROM parking_histories
		     WHERE lot_id = ? AND date >= ? AND date < ?
		     ORDER BY date ASC`, lotID, start, end).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	points := make([]dashboarddomain.OccupancyPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, dashboarddomain.OccupancyPoint{
			Date:          row.Date.Format("2006-01-02"),
			OccupancyRate: row.OccupancyRate,
		})
	}
	return points, nil
}

func (s *Service) PeakHours(ctx context.Context, lotID snowflake.ID, date time.Time) ([]dashboarddomain.PeakHourPoint, error) {
	if err := s.requireLot(ctx, lotID); err != nil {
		return nil, err
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var rows []struct {
		Hour          int
		OccupancyRate decimal.Decimal
	}
	if err := s.db.WithContext(ctx).
		Raw(`SELECT hour, occupancy_rate FROM hourly_occupancies
		     WHERE lot_id = ? AND date >= ? AND date < ?
		     ORDER BY hour ASC`, lotID, start, end).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	points := make([]dashboarddomain.PeakHourPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, dashboarddomain.PeakHourPoint{Hour: row.Hour, OccupancyRate: row.OccupancyRate})
	}
	return points, nil
}

func (s *Service) Revenue(ctx context.Context, lotID snowflake.ID, month time.Time) ([]dashboarddomain.DailyRevenuePoint, error) {
	if err := s.requireLot(ctx, lotID); err != nil {
		return nil, err
	}
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var rows []struct {
		Date         time.Time
		TotalRevenue decimal.Decimal
	}
	if err := s.db.WithContext(ctx).
		Raw(`SELECT date, total_revenue FROM parking_histories
		     WHERE lot_id = ? AND date >= ? AND date < ?
		     ORDER BY date ASC`, lotID, start, end).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	points := make([]dashboarddomain.DailyRevenuePoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, dashboarddomain.DailyRevenuePoint{
			Date:         row.Date.Format("2006-01-02"),
			TotalRevenue: row.TotalRevenue,
		})
	}
	return points, nil
}

func (s *Service) MonthlyRevenue(ctx context.Context, lotID snowflake.ID, year int) ([]dashboarddomain.MonthlyRevenuePoint, error) {
	if err := s.requireLot(ctx, lotID); err != nil {
		return nil, err
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var rows []struct {
		Date         time.Time
		TotalRevenue decimal.Decimal
	}
	if err := s.db.WithContext(ctx).
		Raw(`SELECT date, total_revenue FROM parking_histories
		     WHERE lot_id = ? AND date >= ? AND date < ?
		     ORDER BY date ASC`, lotID, start, end).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[time.Month]decimal.Decimal)
	for _, row := range rows {
		totals[row.Date.Month()] = totals[row.Date.Month()].Add(row.TotalRevenue)
	}

	points := make([]dashboarddomain.MonthlyRevenuePoint, 0, len(totals))
	for month := time.January; month <= time.December; month++ {
		total, ok := totals[month]
		if !ok {
			continue
		}
		points = append(points, dashboarddomain.MonthlyRevenuePoint{
			Month:        time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(monthLabel),
			TotalRevenue: total,
		})
	}
	return points, nil
}

func (s *Service) requireLot(ctx context.Context, lotID snowflake.ID) error {
	lot, err := s.lotRepo.FindByID(ctx, s.db, lotID)
	if err != nil {
		return err
	}
	if lot == nil {
		return dashboarddomain.ErrLotNotFound
	}
	return nil
}
