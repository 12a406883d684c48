package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/parkscope/parkscope/internal/observability/logger"
	txndomain "github.com/parkscope/parkscope/internal/transaction/domain"
)

// RecordEntry opens a transaction for a vehicle entering a lot. The entry
// time defaults to now.
func (s *Server) RecordEntry(c *gin.Context) {
	var req struct {
		LotID        string     `json:"lot_id"`
		LicensePlate string     `json:"license_plate"`
		EntryTime    *time.Time `json:"entry_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lotID, err := parseSnowflake(req.LotID)
	if err != nil {
		AbortWithError(c, newValidationError("lot_id", "invalid_lot_id", "invalid parking lot id"))
		return
	}
	plate := strings.TrimSpace(req.LicensePlate)
	if plate == "" {
		AbortWithError(c, txndomain.ErrInvalidPlate)
		return
	}

	ctx := c.Request.Context()
	lot, err := s.lotRepo.FindByID(ctx, s.db, lotID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if lot == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	entry := s.clock.Now()
	if req.EntryTime != nil {
		entry = req.EntryTime.UTC()
	}

	txn := &txndomain.ParkingTransaction{
		ID:           s.genID.Generate(),
		LotID:        lot.ID,
		LicensePlate: plate,
		EntryTime:    entry,
		Revenue:      decimal.Zero,
	}
	if err := s.txnRepo.Insert(ctx, s.db, txn); err != nil {
		AbortWithError(c, err)
		return
	}
	s.log.Info("vehicle entry recorded",
		zap.String("lot", lot.Name),
		zap.String("plate", logger.MaskPlate(plate)),
	)
	c.JSON(http.StatusCreated, txn)
}

// RecordExit closes the plate's open transaction and records the revenue.
func (s *Server) RecordExit(c *gin.Context) {
	var req struct {
		LotID        string     `json:"lot_id"`
		LicensePlate string     `json:"license_plate"`
		ExitTime     *time.Time `json:"exit_time"`
		Revenue      string     `json:"revenue"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lotID, err := parseSnowflake(req.LotID)
	if err != nil {
		AbortWithError(c, newValidationError("lot_id", "invalid_lot_id", "invalid parking lot id"))
		return
	}
	plate := strings.TrimSpace(req.LicensePlate)
	if plate == "" {
		AbortWithError(c, txndomain.ErrInvalidPlate)
		return
	}

	revenue := decimal.Zero
	if strings.TrimSpace(req.Revenue) != "" {
		revenue, err = decimal.NewFromString(strings.TrimSpace(req.Revenue))
		if err != nil || revenue.IsNegative() {
			AbortWithError(c, newValidationError("revenue", "invalid_revenue", "revenue must be a non-negative amount"))
			return
		}
	}

	ctx := c.Request.Context()
	txn, err := s.txnRepo.FindOpenByPlate(ctx, s.db, lotID, plate)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if txn == nil {
		AbortWithError(c, txndomain.ErrNoOpenTransaction)
		return
	}
	if len(txn.Metadata) > 0 {
		s.log.Debug("closing imported transaction",
			zap.Any("metadata", logger.MaskJSON(map[string]any(txn.Metadata))),
		)
	}

	exit := s.clock.Now()
	if req.ExitTime != nil {
		exit = req.ExitTime.UTC()
	}
	if exit.Before(txn.EntryTime) {
		AbortWithError(c, txndomain.ErrExitBeforeEntry)
		return
	}

	if err := s.txnRepo.Close(ctx, s.db, txn.ID, exit, revenue.StringFixed(2)); err != nil {
		AbortWithError(c, err)
		return
	}
	s.log.Info("vehicle exit recorded",
		zap.String("plate", logger.MaskPlate(plate)),
		zap.String("revenue", revenue.StringFixed(2)),
	)
	c.JSON(http.StatusOK, gin.H{"status": "closed", "transaction_id": txn.ID.String()})
}
