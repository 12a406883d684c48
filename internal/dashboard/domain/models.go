// Package domain defines the dashboard read models.
package domain

import "github.com/shopspring/decimal"

// Summary is the headline card of the dashboard.
type Summary struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalLots     int64           `json:"totalLots"`
	TotalCapacity int64           `json:"totalCapacity"`
}

// RevenueLinePoint is one month of the revenue trend, e.g. {"March 2024", 150}.
type RevenueLinePoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RevenueBarPoint is one lot's revenue for the selected month.
type RevenueBarPoint struct {
	LotName string          `json:"lotName"`
	Revenue decimal.Decimal `json:"revenue"`
}

// OccupancyPoint is one day of a lot's historical occupancy.
type OccupancyPoint struct {
	Date          string           `json:"date"`
	OccupancyRate *decimal.Decimal `json:"occupancy_rate"`
}

// PeakHourPoint is one hour bucket of a lot's day.
type PeakHourPoint struct {
	Hour          int             `json:"hour"`
	OccupancyRate decimal.Decimal `json:"occupancy_rate"`
}

// DailyRevenuePoint is one day of a lot's revenue.
type DailyRevenuePoint struct {
	Date         string          `json:"date"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// MonthlyRevenuePoint is one month of a lot's revenue for a year.
type MonthlyRevenuePoint struct {
	Month        string          `json:"month"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
