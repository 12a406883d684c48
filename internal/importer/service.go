// Package importer bulk-loads history and transaction rows from xlsx files
// and generates the matching empty templates.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	historydomain "github.com/parkscope/parkscope/internal/history/domain"
	lotdomain "github.com/parkscope/parkscope/internal/lot/domain"
	txndomain "github.com/parkscope/parkscope/internal/transaction/domain"
)

// RowError reports the first failing spreadsheet row. The whole batch is
// abandoned; nothing is committed.
type RowError struct {
	Row    int
	Reason error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Reason)
}

func (e *RowError) Unwrap() error { return e.Reason }

var (
	ErrUnreadableFile = errors.New("unreadable_spreadsheet")
	ErrEmptySheet     = errors.New("empty_sheet")
	ErrUnknownLot     = errors.New("unknown_parking_lot")
)

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	lotRepo lotdomain.Repository
	history historydomain.Repository
	txns    txndomain.Repository
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	LotRepo     lotdomain.Repository
	HistoryRepo historydomain.Repository
	TxnRepo     txndomain.Repository
}

func NewService(p Params) *Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("importer"),
		genID:   p.GenID,
		lotRepo: p.LotRepo,
		history: p.HistoryRepo,
		txns:    p.TxnRepo,
	}
}

// ImportHistory loads daily summary rows. The import is all-or-nothing: the
// first bad row aborts the database transaction.
func (s *Service) ImportHistory(ctx context.Context, r io.Reader) (int, error) {
	rows, err := sheetRows(r, historySchema)
	if err != nil {
		return 0, err
	}

	imported := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lots := newLotResolver(s.lotRepo)
		records := make([]historydomain.ParkingHistory, 0, len(rows))

		for i, row := range rows {
			rowNum := i + 2 // 1-based, after the header row
			record, err := s.parseHistoryRow(ctx, tx, lots, row)
			if err != nil {
				return &RowError{Row: rowNum, Reason: err}
			}
			records = append(records, record)
		}

		if err := s.history.InsertBatch(ctx, tx, records); err != nil {
			return err
		}
		imported = len(records)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("history import committed", zap.Int("rows", imported))
	return imported, nil
}

// ImportTransactions loads stay records, also all-or-nothing.
func (s *Service) ImportTransactions(ctx context.Context, r io.Reader) (int, error) {
	rows, err := sheetRows(r, transactionSchema)
	if err != nil {
		return 0, err
	}

	imported := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lots := newLotResolver(s.lotRepo)
		records := make([]txndomain.ParkingTransaction, 0, len(rows))

		for i, row := range rows {
			rowNum := i + 2
			record, err := s.parseTransactionRow(ctx, tx, lots, row)
			if err != nil {
				return &RowError{Row: rowNum, Reason: err}
			}
			records = append(records, record)
		}

		if err := s.txns.InsertBatch(ctx, tx, records); err != nil {
			return err
		}
		imported = len(records)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("transaction import committed", zap.Int("rows", imported))
	return imported, nil
}

func (s *Service) parseHistoryRow(ctx context.Context, tx *gorm.DB, lots *lotResolver, row []string) (historydomain.ParkingHistory, error) {
	var record historydomain.ParkingHistory

	lot, err := lots.resolve(ctx, tx, cell(row, 0))
	if err != nil {
		return record, err
	}

	date, err := parseDate(cell(row, 1))
	if err != nil {
		return record, err
	}

	record = historydomain.ParkingHistory{
		ID:    s.genID.Generate(),
		LotID: lot.ID,
		Date:  date,
	}

	if raw := cell(row, 2); raw != "" {
		rate, err := parseRate(raw)
		if err != nil {
			return record, err
		}
		record.OccupancyRate = &rate
	}

	revenue, err := parseAmount(cell(row, 3))
	if err != nil {
		return record, err
	}
	record.TotalRevenue = revenue

	return record, nil
}

func (s *Service) parseTransactionRow(ctx context.Context, tx *gorm.DB, lots *lotResolver, row []string) (txndomain.ParkingTransaction, error) {
	var record txndomain.ParkingTransaction

	lot, err := lots.resolve(ctx, tx, cell(row, 0))
	if err != nil {
		return record, err
	}

	plate := cell(row, 1)
	if plate == "" {
		return record, txndomain.ErrInvalidPlate
	}

	entry, err := parseTimestamp(cell(row, 2))
	if err != nil {
		return record, err
	}

	record = txndomain.ParkingTransaction{
		ID:           s.genID.Generate(),
		LotID:        lot.ID,
		LicensePlate: plate,
		EntryTime:    entry,
		Metadata:     datatypes.JSONMap{"source": "bulk_import"},
	}

	if raw := cell(row, 3); raw != "" {
		exit, err := parseTimestamp(raw)
		if err != nil {
			return record, err
		}
		if exit.Before(entry) {
			return record, txndomain.ErrExitBeforeEntry
		}
		record.ExitTime = &exit
	}

	revenue, err := parseAmount(cell(row, 4))
	if err != nil {
		return record, err
	}
	record.Revenue = revenue

	return record, nil
}

// HistoryTemplate writes an empty spreadsheet with the history header row.
func (s *Service) HistoryTemplate(w io.Writer) error {
	return writeTemplate(w, historySchema)
}

// TransactionsTemplate writes an empty spreadsheet with the transaction
// header row.
func (s *Service) TransactionsTemplate(w io.Writer) error {
	return writeTemplate(w, transactionSchema)
}

// sheetRows reads the first sheet, validates the header against the schema
// and returns the data rows. The whole file is read into memory; uploads are
// expected to be bounded.
func sheetRows(r io.Reader, schema []Column) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	if err := validateHeader(schema, rows[0]); err != nil {
		return nil, err
	}
	return rows[1:], nil
}

func writeTemplate(w io.Writer, schema []Column) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := headerNames(schema)
	for i, name := range header {
		cellRef, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellRef, name); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// lotResolver caches name lookups for the duration of one import.
type lotResolver struct {
	repo  lotdomain.Repository
	cache map[string]*lotdomain.ParkingLot
}

func newLotResolver(repo lotdomain.Repository) *lotResolver {
	return &lotResolver{repo: repo, cache: make(map[string]*lotdomain.ParkingLot)}
}

func (r *lotResolver) resolve(ctx context.Context, tx *gorm.DB, name string) (*lotdomain.ParkingLot, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty lot name", ErrUnknownLot)
	}
	if lot, ok := r.cache[name]; ok {
		return lot, nil
	}
	lot, err := r.repo.FindByName(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLot, name)
	}
	r.cache[name] = lot
	return lot, nil
}
