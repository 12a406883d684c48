// Package domain contains persistence models for daily parking summaries.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ParkingHistory is a daily per-lot summary, populated by bulk import. One
// logical row per (lot, date).
type ParkingHistory struct {
	ID            snowflake.ID     `gorm:"primaryKey" json:"id"`
	LotID         snowflake.ID     `gorm:"column:lot_id;not null;index" json:"lot_id"`
	Date          time.Time        `gorm:"type:date;not null;index" json:"date"`
	OccupancyRate *decimal.Decimal `gorm:"type:numeric(5,2)" json:"occupancy_rate"`
	TotalRevenue  decimal.Decimal  `gorm:"type:numeric(10,2);not null;default:0" json:"total_revenue"`
	CreatedAt     time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (ParkingHistory) TableName() string { return "parking_histories" }

var ErrNoData = errors.New("no_history_data")
