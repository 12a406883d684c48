package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	historydomain "github.com/parkscope/parkscope/internal/history/domain"
	"github.com/parkscope/parkscope/internal/lot/domain"
	occdomain "github.com/parkscope/parkscope/internal/occupancy/domain"
	txndomain "github.com/parkscope/parkscope/internal/transaction/domain"
)

var testNode = func() *snowflake.Node {
	node, err := snowflake.NewNode(5)
	if err != nil {
		panic(err)
	}
	return node
}()

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.ParkingLot{},
		&txndomain.ParkingTransaction{},
		&historydomain.ParkingHistory{},
		&occdomain.HourlyOccupancy{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestInsertRejectsDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	repo := Provide()
	ctx := context.Background()

	first := &domain.ParkingLot{ID: testNode.Generate(), Name: "Central", Capacity: 10}
	if err := repo.Insert(ctx, db, first); err != nil {
		t.Fatalf("insert: %v", err)
	}

	second := &domain.ParkingLot{ID: testNode.Generate(), Name: "Central", Capacity: 20}
	if err := repo.Insert(ctx, db, second); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestFindByNameMissingReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := Provide()

	lot, err := repo.FindByName(context.Background(), db, "Nowhere")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if lot != nil {
		t.Fatalf("expected nil for missing lot, got %+v", lot)
	}
}

func TestDeleteRemovesDependentRows(t *testing.T) {
	db := setupTestDB(t)
	repo := Provide()
	ctx := context.Background()

	lot := &domain.ParkingLot{ID: testNode.Generate(), Name: "Central", Capacity: 10}
	if err := repo.Insert(ctx, db, lot); err != nil {
		t.Fatalf("insert lot: %v", err)
	}
	day := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)
	if err := db.Create(&txndomain.ParkingTransaction{
		ID: testNode.Generate(), LotID: lot.ID, LicensePlate: "AB-123",
		EntryTime: day, Revenue: decimal.Zero,
	}).Error; err != nil {
		t.Fatalf("insert transaction: %v", err)
	}
	if err := db.Create(&historydomain.ParkingHistory{
		ID: testNode.Generate(), LotID: lot.ID, Date: day, TotalRevenue: decimal.Zero,
	}).Error; err != nil {
		t.Fatalf("insert history: %v", err)
	}
	if err := db.Create(&occdomain.HourlyOccupancy{
		ID: testNode.Generate(), LotID: lot.ID, Date: day, Hour: 9,
		OccupancyRate: decimal.Zero,
	}).Error; err != nil {
		t.Fatalf("insert occupancy: %v", err)
	}

	if err := repo.Delete(ctx, db, lot.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for name, model := range map[string]any{
		"transactions": &txndomain.ParkingTransaction{},
		"histories":    &historydomain.ParkingHistory{},
		"occupancies":  &occdomain.HourlyOccupancy{},
	} {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count != 0 {
			t.Errorf("expected %s to be removed with the lot, found %d", name, count)
		}
	}
}

func TestDeleteMissingLot(t *testing.T) {
	db := setupTestDB(t)
	repo := Provide()

	err := repo.Delete(context.Background(), db, testNode.Generate())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
