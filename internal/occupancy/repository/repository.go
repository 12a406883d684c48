// Package repository implements the hourly occupancy store on GORM.
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parkscope/parkscope/internal/occupancy/domain"
)

type gormRepository struct{}

// Provide returns the GORM-backed hourly occupancy repository.
func Provide() domain.Repository {
	return gormRepository{}
}

func (gormRepository) Upsert(ctx context.Context, db *gorm.DB, row *domain.HourlyOccupancy) error {
	row.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lot_id"}, {Name: "date"}, {Name: "hour"}},
			DoUpdates: clause.AssignmentColumns([]string{"occupancy_rate", "updated_at"}),
		}).
		Create(row).Error
}
