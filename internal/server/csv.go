package server

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	dashboarddomain "github.com/parkscope/parkscope/internal/dashboard/domain"
)

func csvWriter(c *gin.Context, filename string) *csv.Writer {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return csv.NewWriter(c.Writer)
}

func writeRevenueLineCSV(c *gin.Context, points []dashboarddomain.RevenueLinePoint) {
	w := csvWriter(c, "revenue_line.csv")
	defer w.Flush()
	_ = w.Write([]string{"Month", "Revenue"})
	for _, p := range points {
		_ = w.Write([]string{p.Month, p.Revenue.StringFixed(2)})
	}
}

func writeRevenueBarCSV(c *gin.Context, points []dashboarddomain.RevenueBarPoint) {
	w := csvWriter(c, "revenue_bar.csv")
	defer w.Flush()
	_ = w.Write([]string{"Lot", "Revenue"})
	for _, p := range points {
		_ = w.Write([]string{p.LotName, p.Revenue.StringFixed(2)})
	}
}

func writeOccupancyCSV(c *gin.Context, points []dashboarddomain.OccupancyPoint) {
	w := csvWriter(c, "historical_occupancy.csv")
	defer w.Flush()
	_ = w.Write([]string{"Date", "Occupancy Rate"})
	for _, p := range points {
		rate := ""
		if p.OccupancyRate != nil {
			rate = p.OccupancyRate.StringFixed(2)
		}
		_ = w.Write([]string{p.Date, rate})
	}
}

func writePeakHoursCSV(c *gin.Context, points []dashboarddomain.PeakHourPoint) {
	w := csvWriter(c, "peak_hours.csv")
	defer w.Flush()
	_ = w.Write([]string{"Hour", "Occupancy Rate"})
	for _, p := range points {
		_ = w.Write([]string{strconv.Itoa(p.Hour), p.OccupancyRate.StringFixed(2)})
	}
}

func writeDailyRevenueCSV(c *gin.Context, points []dashboarddomain.DailyRevenuePoint) {
	w := csvWriter(c, "revenue.csv")
	defer w.Flush()
	_ = w.Write([]string{"Date", "Total Revenue"})
	for _, p := range points {
		_ = w.Write([]string{p.Date, p.TotalRevenue.StringFixed(2)})
	}
}

func writeMonthlyRevenueCSV(c *gin.Context, points []dashboarddomain.MonthlyRevenuePoint) {
	w := csvWriter(c, "monthly_revenue.csv")
	defer w.Flush()
	_ = w.Write([]string{"Month", "Total Revenue"})
	for _, p := range points {
		_ = w.Write([]string{p.Month, p.TotalRevenue.StringFixed(2)})
	}
}
