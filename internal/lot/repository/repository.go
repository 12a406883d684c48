// Package repository implements the parking lot store on GORM.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/parkscope/parkscope/internal/lot/domain"
)

type gormRepository struct{}

// Provide returns the GORM-backed lot repository.
func Provide() domain.Repository {
	return gormRepository{}
}

func (gormRepository) Insert(ctx context.Context, db *gorm.DB, lot *domain.ParkingLot) error {
	err := db.WithContext(ctx).Create(lot).Error
	if err != nil && isUniqueViolation(err) {
		return domain.ErrDuplicateName
	}
	return err
}

func (gormRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ParkingLot, error) {
	var lot domain.ParkingLot
	err := db.WithContext(ctx).First(&lot, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (gormRepository) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.ParkingLot, error) {
	var lot domain.ParkingLot
	err := db.WithContext(ctx).First(&lot, "name = ?", strings.TrimSpace(name)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (gormRepository) List(ctx context.Context, db *gorm.DB) ([]domain.ParkingLot, error) {
	var lots []domain.ParkingLot
	if err := db.WithContext(ctx).Order("name ASC").Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

func (gormRepository) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	// Child rows first; the schema's ON DELETE CASCADE covers PostgreSQL, the
	// explicit deletes keep sqlite test databases consistent too.
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, query := range []string{
			`DELETE FROM hourly_occupancies WHERE lot_id = ?`,
			`DELETE FROM parking_histories WHERE lot_id = ?`,
			`DELETE FROM parking_transactions WHERE lot_id = ?`,
		} {
			if err := tx.Exec(query, id).Error; err != nil {
				return err
			}
		}
		result := tx.Exec(`DELETE FROM parking_lots WHERE id = ?`, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
