// Package domain contains persistence models for hourly occupancy buckets.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// HourlyOccupancy stores the occupancy rate of one lot for one hour bucket.
// The (lot, date, hour) key is unique; the aggregator replaces rows in place.
type HourlyOccupancy struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	LotID         snowflake.ID    `gorm:"column:lot_id;not null;uniqueIndex:idx_hourly_occupancy_bucket" json:"lot_id"`
	Date          time.Time       `gorm:"type:date;not null;uniqueIndex:idx_hourly_occupancy_bucket" json:"date"`
	Hour          int             `gorm:"not null;uniqueIndex:idx_hourly_occupancy_bucket" json:"hour"`
	OccupancyRate decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"occupancy_rate"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (HourlyOccupancy) TableName() string { return "hourly_occupancies" }
