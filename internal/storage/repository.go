package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"afftrack/internal/core"
)

var ErrNotFound = errors.New("not found")

// SQLiteRepository persists affiliate links, conversions and payouts in a
// local sqlite database.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateAffiliateLink(ctx context.Context, link core.AffiliateLink) error {
	return r.queries.CreateAffiliateLink(ctx, linkToRow(link))
}

func (r *SQLiteRepository) GetAffiliateLink(ctx context.Context, id string) (core.AffiliateLink, error) {
	row, err := r.queries.GetAffiliateLink(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AffiliateLink{}, ErrNotFound
	}
	if err != nil {
		return core.AffiliateLink{}, err
	}
	return rowToLink(row), nil
}

func (r *SQLiteRepository) ListAffiliateLinks(ctx context.Context, enabledOnly bool) ([]core.AffiliateLink, error) {
	rows, err := r.queries.ListAffiliateLinks(ctx, enabledOnly)
	if err != nil {
		return nil, err
	}
	links := make([]core.AffiliateLink, len(rows))
	for i, row := range rows {
		links[i] = rowToLink(row)
	}
	return links, nil
}

func (r *SQLiteRepository) CreateConversion(ctx context.Context, conv core.Conversion) error {
	return r.queries.CreateConversion(ctx, conversionToRow(conv))
}

func (r *SQLiteRepository) GetConversion(ctx context.Context, id string) (core.Conversion, error) {
	row, err := r.queries.GetConversion(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Conversion{}, ErrNotFound
	}
	if err != nil {
		return core.Conversion{}, err
	}
	return rowToConversion(row), nil
}

func (r *SQLiteRepository) ListConversions(ctx context.Context) ([]core.Conversion, error) {
	rows, err := r.queries.ListConversions(ctx)
	if err != nil {
		return nil, err
	}
	return rowsToConversions(rows), nil
}

func (r *SQLiteRepository) ListConversionsSince(ctx context.Context, since time.Time) ([]core.Conversion, error) {
	rows, err := r.queries.ListConversionsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return rowsToConversions(rows), nil
}

func (r *SQLiteRepository) DeleteConversion(ctx context.Context, id string) error {
	err := r.queries.DeleteConversion(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *SQLiteRepository) GetPendingSyncConversions(ctx context.Context, limit int) ([]core.Conversion, error) {
	rows, err := r.queries.GetPendingSyncConversions(ctx, limit)
	if err != nil {
		return nil, err
	}
	return rowsToConversions(rows), nil
}

func (r *SQLiteRepository) MarkConversionSynced(ctx context.Context, id string) error {
	return r.queries.MarkConversionSynced(ctx, id)
}

func (r *SQLiteRepository) MarkConversionSyncError(ctx context.Context, id string) error {
	return r.queries.MarkConversionSyncError(ctx, id)
}

func (r *SQLiteRepository) CreatePayout(ctx context.Context, payout core.Payout) error {
	return r.queries.CreatePayout(ctx, PayoutRow{
		ID:           payout.ID,
		ClientID:     payout.ClientID,
		Amount:       payout.Amount,
		DateOccurred: payout.DateOccurred,
	})
}

func (r *SQLiteRepository) ListPayouts(ctx context.Context, clientID string) ([]core.Payout, error) {
	rows, err := r.queries.ListPayouts(ctx, clientID)
	if err != nil {
		return nil, err
	}
	payouts := make([]core.Payout, len(rows))
	for i, row := range rows {
		payouts[i] = core.Payout{
			ID:           row.ID,
			ClientID:     row.ClientID,
			Amount:       row.Amount,
			DateOccurred: row.DateOccurred,
		}
	}
	return payouts, nil
}

func linkToRow(link core.AffiliateLink) AffiliateLinkRow {
	return AffiliateLinkRow{
		ID:              link.ID,
		ClientID:        link.ClientID,
		ClientName:      link.ClientName,
		Type:            string(link.Type),
		Commission:      link.Commission,
		CPA:             link.CPA,
		MinBetSize:      link.MinBetSize,
		MonthlyLimit:    int64(link.MonthlyLimit),
		Enabled:         link.Enabled,
		BetMatchEnabled: link.BetMatchEnabled,
	}
}

func rowToLink(row AffiliateLinkRow) core.AffiliateLink {
	return core.AffiliateLink{
		ID:              row.ID,
		ClientID:        row.ClientID,
		ClientName:      row.ClientName,
		Type:            core.ReferralType(row.Type),
		Commission:      row.Commission,
		CPA:             row.CPA,
		MinBetSize:      row.MinBetSize,
		MonthlyLimit:    int(row.MonthlyLimit),
		Enabled:         row.Enabled,
		BetMatchEnabled: row.BetMatchEnabled,
	}
}

func conversionToRow(conv core.Conversion) ConversionRow {
	return ConversionRow{
		ID:                  conv.ID,
		DateOccurred:        conv.DateOccurred.UTC(),
		Amount:              conv.Amount,
		Status:              string(conv.Status),
		CustomerID:          conv.Customer.ID,
		CustomerName:        conv.Customer.FullName,
		CompensationGroupID: conv.CompensationGroupID,
		Link:                linkToRow(conv.AffiliateLink),
	}
}

func rowToConversion(row ConversionRow) core.Conversion {
	return core.Conversion{
		ID:            row.ID,
		DateOccurred:  row.DateOccurred,
		Amount:        row.Amount,
		Status:        core.ConversionStatus(row.Status),
		AffiliateLink: rowToLink(row.Link),
		Customer: core.Customer{
			ID:       row.CustomerID,
			FullName: row.CustomerName,
		},
		CompensationGroupID: row.CompensationGroupID,
	}
}

func rowsToConversions(rows []ConversionRow) []core.Conversion {
	convs := make([]core.Conversion, len(rows))
	for i, row := range rows {
		convs[i] = rowToConversion(row)
	}
	return convs
}
