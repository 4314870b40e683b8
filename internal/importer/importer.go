// Package importer pulls historical conversions out of spreadsheet rows
// recorded outside this system. Rows whose client cannot be matched against
// the affiliate links on file are set aside for manual review instead of
// being dropped.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"afftrack/internal/core"
	"afftrack/internal/metrics"
	"afftrack/internal/services"
)

// ClientMatcher resolves a free-form client name to an affiliate link.
type ClientMatcher interface {
	MatchClient(ctx context.Context, name string) (core.AffiliateLink, bool, error)
}

// ConversionRecorder persists one imported conversion.
type ConversionRecorder interface {
	RecordConversion(ctx context.Context, in services.RecordConversionInput) (core.Conversion, error)
}

// ColumnMap holds the column index of each recognized field. Optional
// fields are -1 when the header does not carry them.
type ColumnMap struct {
	Date     int
	Client   int
	Amount   int
	Type     int
	Status   int
	Customer int
}

// RowIssue describes one row that could not be imported automatically.
type RowIssue struct {
	RowNumber int
	Row       []string
	Reason    string
}

// Result summarizes one import run.
type Result struct {
	Imported     int
	ManualReview []RowIssue
}

type Importer struct {
	matcher  ClientMatcher
	recorder ConversionRecorder
	metrics  *metrics.Metrics
}

func New(matcher ClientMatcher, recorder ConversionRecorder, m *metrics.Metrics) *Importer {
	return &Importer{matcher: matcher, recorder: recorder, metrics: m}
}

// Header mapping tolerates small spelling variations in column names.
const headerMatchThreshold = 0.3

var headerFields = []string{"date", "client", "amount", "type", "status", "customer"}

// DetectHeader reports whether the row looks like a header rather than
// data: no cell parses as a date or a number and at least one cell matches
// a known field name.
func DetectHeader(row []string) bool {
	for _, cell := range row {
		if _, err := parseDate(cell); err == nil {
			return false
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return false
		}
	}
	for _, cell := range row {
		if _, ok := matchHeaderField(cell); ok {
			return true
		}
	}
	return false
}

// MapColumns resolves each header cell to a field. Date, client and amount
// are required; the rest default to -1 when absent.
func MapColumns(header []string) (ColumnMap, error) {
	m := ColumnMap{Date: -1, Client: -1, Amount: -1, Type: -1, Status: -1, Customer: -1}
	for i, cell := range header {
		field, ok := matchHeaderField(cell)
		if !ok {
			continue
		}
		switch field {
		case "date":
			m.Date = i
		case "client":
			m.Client = i
		case "amount":
			m.Amount = i
		case "type":
			m.Type = i
		case "status":
			m.Status = i
		case "customer":
			m.Customer = i
		}
	}
	if m.Date < 0 || m.Client < 0 || m.Amount < 0 {
		return ColumnMap{}, fmt.Errorf("header %v missing required columns (date, client, amount)", header)
	}
	return m, nil
}

func matchHeaderField(cell string) (string, bool) {
	return core.ClosestMatch(cell, headerFields, func(s string) string { return s }, headerMatchThreshold)
}

// ImportRows imports every data row, skipping a leading header row when one
// is detected. Rows that fail to parse or whose client has no close enough
// affiliate link go to the manual review list; they never abort the run.
func (im *Importer) ImportRows(ctx context.Context, rows [][]string) (Result, error) {
	var res Result

	start := 0
	var columns ColumnMap
	if len(rows) > 0 && DetectHeader(rows[0]) {
		m, err := MapColumns(rows[0])
		if err != nil {
			return Result{}, err
		}
		columns = m
		start = 1
	} else {
		// Positional fallback for headerless sheets.
		columns = ColumnMap{Date: 0, Client: 1, Type: 2, Amount: 3, Status: 5, Customer: 6}
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if err := im.importRow(ctx, row, columns); err != nil {
			res.ManualReview = append(res.ManualReview, RowIssue{
				RowNumber: i + 1,
				Row:       row,
				Reason:    err.Error(),
			})
			im.recordRow("manual_review")
			continue
		}
		res.Imported++
		im.recordRow("imported")
	}

	slog.InfoContext(ctx, "Import run finished",
		"imported", res.Imported,
		"manual_review", len(res.ManualReview))

	return res, nil
}

func (im *Importer) importRow(ctx context.Context, row []string, columns ColumnMap) error {
	date, err := parseDate(cell(row, columns.Date))
	if err != nil {
		return fmt.Errorf("bad date %q", cell(row, columns.Date))
	}

	amount, ok := parseAmount(cell(row, columns.Amount))
	if !ok {
		return fmt.Errorf("bad amount %q", cell(row, columns.Amount))
	}

	clientName := cell(row, columns.Client)
	if clientName == "" {
		return errors.New("empty client name")
	}
	link, ok, err := im.matcher.MatchClient(ctx, clientName)
	if err != nil {
		return fmt.Errorf("match client: %w", err)
	}
	if !ok {
		return fmt.Errorf("no affiliate link close to %q", clientName)
	}

	status := core.ConversionStatus(strings.ToLower(cell(row, columns.Status)))
	if status == "" {
		status = core.StatusApproved
	}
	if err := status.Validate(); err != nil {
		return fmt.Errorf("bad status %q", cell(row, columns.Status))
	}

	customer := cell(row, columns.Customer)
	if customer == "" {
		customer = clientName
	}

	_, err = im.recorder.RecordConversion(ctx, services.RecordConversionInput{
		LinkID:       link.ID,
		Amount:       amount,
		Status:       status,
		DateOccurred: date,
		CustomerName: customer,
	})
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	return nil
}

func (im *Importer) recordRow(outcome string) {
	if im.metrics != nil {
		im.metrics.RecordImportRow(outcome)
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseAmount accepts cell values like "123.45", "123,45" or "$1,234.50"
// and returns the amount as dollars.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ".") {
		// Period is the decimal separator; commas are thousands grouping.
		s = strings.ReplaceAll(s, ",", "")
	} else if i := strings.Index(s, ","); i >= 0 && strings.Count(s, ",") == 1 && len(s)-i-1 <= 2 {
		// A lone comma followed by at most two digits is a decimal comma;
		// "1,000" stays thousands grouping.
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
