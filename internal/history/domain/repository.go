package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, rows []ParkingHistory) error
	// LatestDate returns the most recent history date, or a zero time when the
	// table is empty.
	LatestDate(ctx context.Context, db *gorm.DB) (time.Time, error)
}
