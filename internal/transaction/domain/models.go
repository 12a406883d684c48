// Package domain contains persistence models for parking transactions.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ParkingTransaction records a single vehicle stay. ExitTime stays nil while
// the vehicle is parked.
type ParkingTransaction struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	LotID        snowflake.ID      `gorm:"column:lot_id;not null;index" json:"lot_id"`
	LicensePlate string            `gorm:"type:text;not null" json:"license_plate"`
	EntryTime    time.Time         `gorm:"not null;index" json:"entry_time"`
	ExitTime     *time.Time        `gorm:"index" json:"exit_time"`
	Revenue      decimal.Decimal   `gorm:"type:numeric(10,2);not null;default:0" json:"revenue"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (ParkingTransaction) TableName() string { return "parking_transactions" }

// Open reports whether the vehicle is still parked.
func (t ParkingTransaction) Open() bool { return t.ExitTime == nil }

var (
	ErrExitBeforeEntry   = errors.New("exit_before_entry")
	ErrNoOpenTransaction = errors.New("no_open_transaction")
	ErrInvalidPlate      = errors.New("invalid_license_plate")
)
