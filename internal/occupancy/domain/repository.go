package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Upsert writes the bucket row, replacing the stored rate when the
	// (lot, date, hour) key already exists.
	Upsert(ctx context.Context, db *gorm.DB, row *HourlyOccupancy) error
}
