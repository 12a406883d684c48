package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Column couples a header name with a typed parser. Imports validate the
// header row against the schema before any data row is touched, and every
// cell goes through its column parser rather than positional unpacking.
type Column struct {
	Name     string
	Required bool
}

var historySchema = []Column{
	{Name: "parking_lot", Required: true},
	{Name: "date", Required: true},
	{Name: "occupancy_rate", Required: false},
	{Name: "total_revenue", Required: true},
}

var transactionSchema = []Column{
	{Name: "parking_lot", Required: true},
	{Name: "license_plate", Required: true},
	{Name: "entry_time", Required: true},
	{Name: "exit_time", Required: false},
	{Name: "revenue", Required: true},
}

func headerNames(schema []Column) []string {
	names := make([]string, len(schema))
	for i, col := range schema {
		names[i] = col.Name
	}
	return names
}

func validateHeader(schema []Column, header []string) error {
	if len(header) < len(schema) {
		return fmt.Errorf("expected %d header columns, got %d", len(schema), len(header))
	}
	for i, col := range schema {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col.Name) {
			return fmt.Errorf("header column %d must be %q, got %q", i+1, col.Name, strings.TrimSpace(header[i]))
		}
	}
	return nil
}

// cell returns the trimmed value at index i; short rows read as empty cells.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return date, nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

func parseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", value)
	}
	return amount.Round(2), nil
}

func parseRate(value string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid occupancy rate %q", value)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Decimal{}, fmt.Errorf("occupancy rate %q outside 0..100", value)
	}
	return rate.Round(2), nil
}
