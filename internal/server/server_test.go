package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parkscope/parkscope/internal/clock"
	"github.com/parkscope/parkscope/internal/config"
	dashboardservice "github.com/parkscope/parkscope/internal/dashboard/service"
	historydomain "github.com/parkscope/parkscope/internal/history/domain"
	historyrepository "github.com/parkscope/parkscope/internal/history/repository"
	"github.com/parkscope/parkscope/internal/importer"
	lotdomain "github.com/parkscope/parkscope/internal/lot/domain"
	lotrepository "github.com/parkscope/parkscope/internal/lot/repository"
	"github.com/parkscope/parkscope/internal/occupancy/aggregator"
	occdomain "github.com/parkscope/parkscope/internal/occupancy/domain"
	occrepository "github.com/parkscope/parkscope/internal/occupancy/repository"
	txndomain "github.com/parkscope/parkscope/internal/transaction/domain"
	txnrepository "github.com/parkscope/parkscope/internal/transaction/repository"
)

var testNode = func() *snowflake.Node {
	node, err := snowflake.NewNode(4)
	if err != nil {
		panic(err)
	}
	return node
}()

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func setupTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&lotdomain.ParkingLot{},
		&txndomain.ParkingTransaction{},
		&historydomain.ParkingHistory{},
		&occdomain.HourlyOccupancy{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := zap.NewNop()
	clk := clock.Fixed(testNow)
	lotRepo := lotrepository.Provide()
	txnRepo := txnrepository.Provide()
	historyRepo := historyrepository.Provide()
	occRepo := occrepository.Provide()

	engine := gin.New()
	srv := NewServer(Params{
		Cfg:    config.Config{},
		DB:     db,
		Log:    log,
		Engine: engine,
		GenID:  testNode,
		Clock:  clk,
		DashboardSvc: dashboardservice.NewService(dashboardservice.Params{
			DB:          db,
			Log:         log,
			LotRepo:     lotRepo,
			HistoryRepo: historyRepo,
		}),
		ImportSvc: importer.NewService(importer.Params{
			DB:          db,
			Log:         log,
			GenID:       testNode,
			LotRepo:     lotRepo,
			HistoryRepo: historyRepo,
			TxnRepo:     txnRepo,
		}),
		LotRepo: lotRepo,
		TxnRepo: txnRepo,
		AggWorker: aggregator.NewWorker(aggregator.Params{
			DB:      db,
			Log:     log,
			GenID:   testNode,
			Clock:   clk,
			LotRepo: lotRepo,
			TxnRepo: txnRepo,
			OccRepo: occRepo,
			Config:  aggregator.Config{WindowDays: 2},
		}),
	})
	srv.RegisterRoutes()
	return engine, db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func createLot(t *testing.T, db *gorm.DB, name string, capacity int) lotdomain.ParkingLot {
	t.Helper()
	lot := lotdomain.ParkingLot{ID: testNode.Generate(), Name: name, Capacity: capacity}
	if err := db.Create(&lot).Error; err != nil {
		t.Fatalf("insert lot: %v", err)
	}
	return lot
}

func TestHealthz(t *testing.T) {
	engine, _ := setupTestServer(t)

	rec := doJSON(t, engine, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateParkingLot(t *testing.T) {
	engine, db := setupTestServer(t)

	rec := doJSON(t, engine, http.MethodPost, "/parking-lots/", gin.H{"name": "Central", "capacity": 120})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var count int64
	if err := db.Model(&lotdomain.ParkingLot{}).Where("name = ?", "Central").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stored lot, got %d", count)
	}

	// Same name again is rejected.
	rec = doJSON(t, engine, http.MethodPost, "/parking-lots/", gin.H{"name": "Central", "capacity": 10})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate name, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateParkingLotValidation(t *testing.T) {
	engine, _ := setupTestServer(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing name", gin.H{"capacity": 10}},
		{"blank name", gin.H{"name": "   ", "capacity": 10}},
		{"zero capacity", gin.H{"name": "A", "capacity": 0}},
		{"negative capacity", gin.H{"name": "A", "capacity": -5}},
	}
	for _, tc := range cases {
		rec := doJSON(t, engine, http.MethodPost, "/parking-lots/", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestDeleteParkingLot(t *testing.T) {
	engine, db := setupTestServer(t)
	lot := createLot(t, db, "Central", 50)

	rec := doJSON(t, engine, http.MethodDelete, "/parking-lots/"+lot.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodDelete, "/parking-lots/"+lot.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for second delete, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodDelete, "/parking-lots/not-a-number", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestEntryExitFlow(t *testing.T) {
	engine, db := setupTestServer(t)
	lot := createLot(t, db, "Central", 50)

	rec := doJSON(t, engine, http.MethodPost, "/transactions/entry/", gin.H{
		"lot_id":        lot.ID.String(),
		"license_plate": "AB-123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("entry: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/transactions/exit/", gin.H{
		"lot_id":        lot.ID.String(),
		"license_plate": "AB-123",
		"revenue":       "4.50",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("exit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var txn txndomain.ParkingTransaction
	if err := db.First(&txn).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if txn.ExitTime == nil || !txn.ExitTime.Equal(testNow) {
		t.Errorf("expected exit at fixed clock time, got %v", txn.ExitTime)
	}
	if txn.Revenue.StringFixed(2) != "4.50" {
		t.Errorf("expected revenue 4.50, got %s", txn.Revenue)
	}

	// No open transaction remains for the plate.
	rec = doJSON(t, engine, http.MethodPost, "/transactions/exit/", gin.H{
		"lot_id":        lot.ID.String(),
		"license_plate": "AB-123",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for repeated exit, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestEntryUnknownLot(t *testing.T) {
	engine, _ := setupTestServer(t)

	rec := doJSON(t, engine, http.MethodPost, "/transactions/entry/", gin.H{
		"lot_id":        testNode.Generate().String(),
		"license_plate": "AB-123",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetSummary(t *testing.T) {
	engine, db := setupTestServer(t)
	lot := createLot(t, db, "Central", 50)
	exit := testNow.Add(-time.Hour)
	if err := db.Create(&txndomain.ParkingTransaction{
		ID:           testNode.Generate(),
		LotID:        lot.ID,
		LicensePlate: "AB-123",
		EntryTime:    testNow.Add(-2 * time.Hour),
		ExitTime:     &exit,
		Revenue:      decimal.RequireFromString("9.75"),
	}).Error; err != nil {
		t.Fatalf("insert transaction: %v", err)
	}

	rec := doJSON(t, engine, http.MethodGet, "/summary/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		TotalRevenue  string `json:"totalRevenue"`
		TotalLots     int    `json:"totalLots"`
		TotalCapacity int    `json:"totalCapacity"`
	}
	decodeBody(t, rec, &body)
	if body.TotalRevenue != "9.75" {
		t.Errorf("expected totalRevenue 9.75, got %q", body.TotalRevenue)
	}
	if body.TotalLots != 1 || body.TotalCapacity != 50 {
		t.Errorf("unexpected summary: %+v", body)
	}
}

func TestRevenueBarValidation(t *testing.T) {
	engine, _ := setupTestServer(t)

	rec := doJSON(t, engine, http.MethodGet, "/revenue-bar/?month=13&year=2024", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for month=13, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/revenue-bar/?month=3", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for month without year, got %d", rec.Code)
	}

	// No history at all: the latest-month default has nothing to point at.
	rec = doJSON(t, engine, http.MethodGet, "/revenue-bar/", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for empty history, got %d", rec.Code)
	}
}

func TestHistoricalOccupancyMonthValidation(t *testing.T) {
	engine, db := setupTestServer(t)
	lot := createLot(t, db, "Central", 50)

	rec := doJSON(t, engine, http.MethodGet, "/parking-lot/"+lot.ID.String()+"/historical-occupancy/?month=March", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed month, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/parking-lot/"+testNode.Generate().String()+"/historical-occupancy/?month=2024-03", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown lot, got %d", rec.Code)
	}
}

func TestPeakHoursCSVExport(t *testing.T) {
	engine, db := setupTestServer(t)
	lot := createLot(t, db, "Central", 50)
	if err := db.Create(&occdomain.HourlyOccupancy{
		ID:            testNode.Generate(),
		LotID:         lot.ID,
		Date:          time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
		Hour:          9,
		OccupancyRate: decimal.RequireFromString("42.00"),
	}).Error; err != nil {
		t.Fatalf("insert occupancy: %v", err)
	}

	rec := doJSON(t, engine, http.MethodGet, "/parking-lot/"+lot.ID.String()+"/peak-hours/?date=2024-03-14&format=csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "9,42.00") {
		t.Errorf("expected csv row for hour 9, got %q", rec.Body.String())
	}
}

func TestImportEndpointRequiresFile(t *testing.T) {
	engine, _ := setupTestServer(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/parking-history/import/", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file field, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestImportEndpointHappyPath(t *testing.T) {
	engine, db := setupTestServer(t)
	createLot(t, db, "Central", 50)

	sheet := excelize.NewFile()
	sheetName := sheet.GetSheetName(0)
	for i, value := range []string{"parking_lot", "date", "occupancy_rate", "total_revenue"} {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := sheet.SetCellValue(sheetName, cellRef, value); err != nil {
			t.Fatalf("set header: %v", err)
		}
	}
	for i, value := range []string{"Central", "2024-03-01", "50", "125.00"} {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := sheet.SetCellValue(sheetName, cellRef, value); err != nil {
			t.Fatalf("set cell: %v", err)
		}
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "history.xlsx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if err := sheet.Write(part); err != nil {
		t.Fatalf("write sheet: %v", err)
	}
	sheet.Close()
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/parking-history/import/", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success  bool `json:"success"`
		Imported int  `json:"imported"`
	}
	decodeBody(t, rec, &body)
	if !body.Success || body.Imported != 1 {
		t.Errorf("unexpected import response: %+v", body)
	}

	var count int64
	if err := db.Model(&historydomain.ParkingHistory{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 history row, got %d", count)
	}
}

func TestRunOccupancyJob(t *testing.T) {
	engine, db := setupTestServer(t)
	lot := createLot(t, db, "Central", 10)
	entry := testNow.Add(-26 * time.Hour)
	exit := testNow.Add(-25 * time.Hour)
	if err := db.Create(&txndomain.ParkingTransaction{
		ID:           testNode.Generate(),
		LotID:        lot.ID,
		LicensePlate: "AB-123",
		EntryTime:    entry,
		ExitTime:     &exit,
		Revenue:      decimal.Zero,
	}).Error; err != nil {
		t.Fatalf("insert transaction: %v", err)
	}

	rec := doJSON(t, engine, http.MethodPost, "/jobs/occupancy/run", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var count int64
	if err := db.Model(&occdomain.HourlyOccupancy{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2*24 {
		t.Errorf("expected %d bucket rows, got %d", 2*24, count)
	}
}

func TestTemplateDownload(t *testing.T) {
	engine, _ := setupTestServer(t)

	rec := doJSON(t, engine, http.MethodGet, "/parking-transactions/template/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type %q", ct)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("template not a readable workbook: %v", err)
	}
	f.Close()
}
