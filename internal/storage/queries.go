package storage

import (
	"context"
	"database/sql"
	"time"
)

// Sync lifecycle of a recorded conversion with respect to the spreadsheet
// export.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// Queries bundles the raw SQL against the sqlite database. Row structs
// mirror the table layout; mapping to core types happens in the repository.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

type AffiliateLinkRow struct {
	ID              string
	ClientID        string
	ClientName      string
	Type            string
	Commission      float64
	CPA             float64
	MinBetSize      float64
	MonthlyLimit    int64
	Enabled         bool
	BetMatchEnabled bool
}

type ConversionRow struct {
	ID                  string
	DateOccurred        time.Time
	Amount              float64
	Status              string
	CustomerID          string
	CustomerName        string
	CompensationGroupID string
	SyncStatus          string
	Version             int64
	Link                AffiliateLinkRow
}

type PayoutRow struct {
	ID           string
	ClientID     string
	Amount       float64
	DateOccurred time.Time
}

const linkColumns = `id, client_id, client_name, type, commission, cpa, min_bet_size, monthly_limit, enabled, bet_match_enabled`

func (q *Queries) CreateAffiliateLink(ctx context.Context, row AffiliateLinkRow) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO affiliate_links (`+linkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.ClientID, row.ClientName, row.Type, row.Commission,
		row.CPA, row.MinBetSize, row.MonthlyLimit, row.Enabled, row.BetMatchEnabled)
	return err
}

func (q *Queries) GetAffiliateLink(ctx context.Context, id string) (AffiliateLinkRow, error) {
	var row AffiliateLinkRow
	err := q.db.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM affiliate_links WHERE id = ?`, id).
		Scan(&row.ID, &row.ClientID, &row.ClientName, &row.Type, &row.Commission,
			&row.CPA, &row.MinBetSize, &row.MonthlyLimit, &row.Enabled, &row.BetMatchEnabled)
	return row, err
}

func (q *Queries) ListAffiliateLinks(ctx context.Context, enabledOnly bool) ([]AffiliateLinkRow, error) {
	query := `SELECT ` + linkColumns + ` FROM affiliate_links ORDER BY client_name, type`
	if enabledOnly {
		query = `SELECT ` + linkColumns + ` FROM affiliate_links WHERE enabled = 1 ORDER BY client_name, type`
	}
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AffiliateLinkRow
	for rows.Next() {
		var row AffiliateLinkRow
		if err := rows.Scan(&row.ID, &row.ClientID, &row.ClientName, &row.Type, &row.Commission,
			&row.CPA, &row.MinBetSize, &row.MonthlyLimit, &row.Enabled, &row.BetMatchEnabled); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const conversionSelect = `
	SELECT c.id, c.date_occurred, c.amount, c.status, c.customer_id, c.customer_name,
	       c.compensation_group_id, c.sync_status, c.version,
	       l.id, l.client_id, l.client_name, l.type, l.commission, l.cpa,
	       l.min_bet_size, l.monthly_limit, l.enabled, l.bet_match_enabled
	FROM conversions c
	JOIN affiliate_links l ON l.id = c.link_id`

func scanConversion(scanner interface{ Scan(...any) error }) (ConversionRow, error) {
	var row ConversionRow
	err := scanner.Scan(&row.ID, &row.DateOccurred, &row.Amount, &row.Status,
		&row.CustomerID, &row.CustomerName, &row.CompensationGroupID,
		&row.SyncStatus, &row.Version,
		&row.Link.ID, &row.Link.ClientID, &row.Link.ClientName, &row.Link.Type,
		&row.Link.Commission, &row.Link.CPA, &row.Link.MinBetSize,
		&row.Link.MonthlyLimit, &row.Link.Enabled, &row.Link.BetMatchEnabled)
	return row, err
}

func (q *Queries) CreateConversion(ctx context.Context, row ConversionRow) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO conversions
			(id, date_occurred, amount, status, link_id, customer_id, customer_name,
			 compensation_group_id, sync_status, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.DateOccurred, row.Amount, row.Status, row.Link.ID,
		row.CustomerID, row.CustomerName, row.CompensationGroupID, SyncPending, 1)
	return err
}

func (q *Queries) GetConversion(ctx context.Context, id string) (ConversionRow, error) {
	return scanConversion(q.db.QueryRowContext(ctx, conversionSelect+` WHERE c.id = ?`, id))
}

func (q *Queries) ListConversionsSince(ctx context.Context, since time.Time) ([]ConversionRow, error) {
	rows, err := q.db.QueryContext(ctx, conversionSelect+`
		WHERE c.date_occurred >= ?
		ORDER BY c.date_occurred`, since)
	if err != nil {
		return nil, err
	}
	return collectConversions(rows)
}

func (q *Queries) ListConversions(ctx context.Context) ([]ConversionRow, error) {
	rows, err := q.db.QueryContext(ctx, conversionSelect+` ORDER BY c.date_occurred`)
	if err != nil {
		return nil, err
	}
	return collectConversions(rows)
}

func collectConversions(rows *sql.Rows) ([]ConversionRow, error) {
	defer rows.Close()
	var out []ConversionRow
	for rows.Next() {
		row, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteConversion(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM conversions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (q *Queries) GetPendingSyncConversions(ctx context.Context, limit int) ([]ConversionRow, error) {
	rows, err := q.db.QueryContext(ctx, conversionSelect+`
		WHERE c.sync_status = ?
		ORDER BY c.created_at
		LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, err
	}
	return collectConversions(rows)
}

func (q *Queries) MarkConversionSynced(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE conversions SET sync_status = ?, version = version + 1 WHERE id = ?`,
		SyncDone, id)
	return err
}

func (q *Queries) MarkConversionSyncError(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE conversions SET sync_status = ? WHERE id = ?`,
		SyncError, id)
	return err
}

func (q *Queries) CreatePayout(ctx context.Context, row PayoutRow) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO payouts (id, client_id, amount, date_occurred)
		VALUES (?, ?, ?, ?)`,
		row.ID, row.ClientID, row.Amount, row.DateOccurred)
	return err
}

func (q *Queries) ListPayouts(ctx context.Context, clientID string) ([]PayoutRow, error) {
	query := `SELECT id, client_id, amount, date_occurred FROM payouts ORDER BY date_occurred`
	args := []any{}
	if clientID != "" {
		query = `SELECT id, client_id, amount, date_occurred FROM payouts WHERE client_id = ? ORDER BY date_occurred`
		args = append(args, clientID)
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PayoutRow
	for rows.Next() {
		var row PayoutRow
		if err := rows.Scan(&row.ID, &row.ClientID, &row.Amount, &row.DateOccurred); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
