package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, txn *ParkingTransaction) error
	InsertBatch(ctx context.Context, db *gorm.DB, txns []ParkingTransaction) error
	// FindOpenByPlate returns the most recent still-open transaction for the
	// plate at the lot, or nil.
	FindOpenByPlate(ctx context.Context, db *gorm.DB, lotID snowflake.ID, plate string) (*ParkingTransaction, error)
	Close(ctx context.Context, db *gorm.DB, id snowflake.ID, exitTime time.Time, revenue string) error
	// ListOverlapping returns the lot's transactions whose stay interval may
	// overlap [start, end); open transactions are included.
	ListOverlapping(ctx context.Context, db *gorm.DB, lotID snowflake.ID, start, end time.Time) ([]ParkingTransaction, error)
}
