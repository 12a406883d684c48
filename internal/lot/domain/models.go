// Package domain contains persistence models for parking lots.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ParkingLot is an operator-managed parking facility.
type ParkingLot struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Capacity  int          `gorm:"not null" json:"capacity"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (ParkingLot) TableName() string { return "parking_lots" }

var (
	ErrNotFound        = errors.New("parking_lot_not_found")
	ErrDuplicateName   = errors.New("duplicate_parking_lot_name")
	ErrInvalidName     = errors.New("invalid_parking_lot_name")
	ErrInvalidCapacity = errors.New("invalid_parking_lot_capacity")
)
