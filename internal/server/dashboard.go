package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetSummary(c *gin.Context) {
	summary, err := s.dashboardSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) GetRevenueLine(c *gin.Context) {
	points, err := s.dashboardSvc.RevenueLine(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if c.Query("format") == "csv" {
		writeRevenueLineCSV(c, points)
		return
	}
	c.JSON(http.StatusOK, points)
}

// GetRevenueBar accepts optional ?month=&year= numeric parameters; without
// them the most recent month present in history is used.
func (s *Server) GetRevenueBar(c *gin.Context) {
	var month time.Time
	monthRaw := strings.TrimSpace(c.Query("month"))
	yearRaw := strings.TrimSpace(c.Query("year"))
	if monthRaw != "" || yearRaw != "" {
		monthNum, err := strconv.Atoi(monthRaw)
		if err != nil || monthNum < 1 || monthNum > 12 {
			AbortWithError(c, newValidationError("month", "invalid_month", "month must be 1-12"))
			return
		}
		yearNum, err := strconv.Atoi(yearRaw)
		if err != nil || yearNum < 1 {
			AbortWithError(c, newValidationError("year", "invalid_year", "year must be a positive number"))
			return
		}
		month = time.Date(yearNum, time.Month(monthNum), 1, 0, 0, 0, 0, time.UTC)
	}

	points, err := s.dashboardSvc.RevenueBar(c.Request.Context(), month)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if c.Query("format") == "csv" {
		writeRevenueBarCSV(c, points)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) GetHistoricalOccupancy(c *gin.Context) {
	lotID, ok := s.lotIDParam(c)
	if !ok {
		return
	}
	month, ok := monthParam(c)
	if !ok {
		return
	}

	points, err := s.dashboardSvc.HistoricalOccupancy(c.Request.Context(), lotID, month)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if c.Query("format") == "csv" {
		writeOccupancyCSV(c, points)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) GetPeakHours(c *gin.Context) {
	lotID, ok := s.lotIDParam(c)
	if !ok {
		return
	}
	raw := strings.TrimSpace(c.Query("date"))
	date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "date must be YYYY-MM-DD"))
		return
	}

	points, err := s.dashboardSvc.PeakHours(c.Request.Context(), lotID, date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if c.Query("format") == "csv" {
		writePeakHoursCSV(c, points)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) GetLotRevenue(c *gin.Context) {
	lotID, ok := s.lotIDParam(c)
	if !ok {
		return
	}
	month, ok := monthParam(c)
	if !ok {
		return
	}

	points, err := s.dashboardSvc.Revenue(c.Request.Context(), lotID, month)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if c.Query("format") == "csv" {
		writeDailyRevenueCSV(c, points)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) GetLotMonthlyRevenue(c *gin.Context) {
	lotID, ok := s.lotIDParam(c)
	if !ok {
		return
	}
	raw := strings.TrimSpace(c.Query("year"))
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 {
		AbortWithError(c, newValidationError("year", "invalid_year", "year must be YYYY"))
		return
	}

	points, err := s.dashboardSvc.MonthlyRevenue(c.Request.Context(), lotID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if c.Query("format") == "csv" {
		writeMonthlyRevenueCSV(c, points)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) lotIDParam(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_lot_id", "invalid parking lot id"))
		return 0, false
	}
	return id, true
}

func monthParam(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("month"))
	month, err := time.ParseInLocation("2006-01", raw, time.UTC)
	if err != nil {
		AbortWithError(c, newValidationError("month", "invalid_month", "month must be YYYY-MM"))
		return time.Time{}, false
	}
	return month, true
}
