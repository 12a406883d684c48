// Package seed bootstraps demo data for non-production environments.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	lotdomain "github.com/parkscope/parkscope/internal/lot/domain"
)

var demoLots = []struct {
	Name     string
	Capacity int
}{
	{Name: "Central Garage", Capacity: 120},
	{Name: "Riverside Surface Lot", Capacity: 45},
	{Name: "Airport Long Stay", Capacity: 300},
}

// EnsureDemoLots inserts the demo lots when they are missing. Existing lots
// with the same name are left untouched.
func EnsureDemoLots(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, demo := range demoLots {
			var count int64
			if err := tx.Model(&lotdomain.ParkingLot{}).
				Where("name = ?", demo.Name).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			lot := lotdomain.ParkingLot{
				ID:       node.Generate(),
				Name:     demo.Name,
				Capacity: demo.Capacity,
			}
			if err := tx.Create(&lot).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
