// Package repository implements the parking transaction store on GORM.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/parkscope/parkscope/internal/transaction/domain"
)

type gormRepository struct{}

// Provide returns the GORM-backed transaction repository.
func Provide() domain.Repository {
	return gormRepository{}
}

func (gormRepository) Insert(ctx context.Context, db *gorm.DB, txn *domain.ParkingTransaction) error {
	return db.WithContext(ctx).Create(txn).Error
}

func (gormRepository) InsertBatch(ctx context.Context, db *gorm.DB, txns []domain.ParkingTransaction) error {
	if len(txns) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(txns, 200).Error
}

func (gormRepository) FindOpenByPlate(ctx context.Context, db *gorm.DB, lotID snowflake.ID, plate string) (*domain.ParkingTransaction, error) {
	var txn domain.ParkingTransaction
	err := db.WithContext(ctx).
		Where("lot_id = ? AND license_plate = ? AND exit_time IS NULL", lotID, strings.TrimSpace(plate)).
		Order("entry_time DESC").
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (gormRepository) Close(ctx context.Context, db *gorm.DB, id snowflake.ID, exitTime time.Time, revenue string) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE parking_transactions
		 SET exit_time = ?, revenue = ?, updated_at = ?
		 WHERE id = ? AND exit_time IS NULL`,
		exitTime,
		revenue,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNoOpenTransaction
	}
	return nil
}

func (gormRepository) ListOverlapping(ctx context.Context, db *gorm.DB, lotID snowflake.ID, start, end time.Time) ([]domain.ParkingTransaction, error) {
	var txns []domain.ParkingTransaction
	err := db.WithContext(ctx).
		Where("lot_id = ? AND entry_time < ? AND (exit_time IS NULL OR exit_time >= ?)", lotID, end, start).
		Order("entry_time ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
