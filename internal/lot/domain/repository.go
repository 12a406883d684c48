package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, lot *ParkingLot) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ParkingLot, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*ParkingLot, error)
	List(ctx context.Context, db *gorm.DB) ([]ParkingLot, error)
	// Delete removes the lot together with its transactions, history and
	// hourly occupancy rows.
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
