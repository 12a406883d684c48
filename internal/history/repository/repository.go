// Package repository implements the parking history store on GORM.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/parkscope/parkscope/internal/history/domain"
)

type gormRepository struct{}

// Provide returns the GORM-backed history repository.
func Provide() domain.Repository {
	return gormRepository{}
}

func (gormRepository) InsertBatch(ctx context.Context, db *gorm.DB, rows []domain.ParkingHistory) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(rows, 200).Error
}

func (gormRepository) LatestDate(ctx context.Context, db *gorm.DB) (time.Time, error) {
	var row domain.ParkingHistory
	err := db.WithContext(ctx).
		Order("date DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return row.Date, nil
}
